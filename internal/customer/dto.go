package customer

type UpsertCustomerRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Company     string `json:"company,omitempty"`
	ContactName string `json:"contactName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Street      string `json:"street,omitempty"`
	Zip         string `json:"zip,omitempty"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
}

type CustomerResponse struct {
	Customer *Customer `json:"customer"`
}

type CustomersResponse struct {
	Customers []*Customer `json:"customers"`
}

// PatchRequest multiplexes the admin actions on a customer record.
type PatchRequest struct {
	Action     string `json:"action"`
	CustomerID string `json:"customerId,omitempty"`
	CodeID     string `json:"codeId,omitempty"`
	CodeLength int    `json:"codeLength,omitempty"`
	Active     *bool  `json:"active,omitempty"`
}

type AccessCodeResponse struct {
	Code AccessCode `json:"code"`
}

type DeleteCustomerRequest struct {
	CustomerID string `json:"customerId"`
}
