package customer

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/slsoft/permission-portal/internal/transport"
	"github.com/slsoft/permission-portal/pkg/logger"
)

type ServiceAPI interface {
	SearchCustomers(query string) ([]*Customer, error)
	CreateCustomer(req *UpsertCustomerRequest) (*Customer, error)
	UpdateCustomer(req *UpsertCustomerRequest) (*Customer, error)
	SetLocked(customerID string, locked bool) (*Customer, error)
	NewAccessCode(customerID string, length int) (*AccessCode, error)
	SetAccessCodeActive(codeID string, active bool) (*AccessCode, error)
	DeleteCustomer(customerID string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.SearchCustomers(r.URL.Query().Get("q"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CustomersResponse{Customers: customers})
}

// UpsertCustomer creates a customer when the body has no id, otherwise
// updates the existing record.
func (h *Handler) UpsertCustomer(w http.ResponseWriter, r *http.Request) {
	var req UpsertCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		customer *Customer
		err      error
	)
	if req.ID == "" {
		customer, err = h.Service.CreateCustomer(&req)
	} else {
		customer, err = h.Service.UpdateCustomer(&req)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CustomerResponse{Customer: customer})
}

func (h *Handler) PatchCustomer(w http.ResponseWriter, r *http.Request) {
	var req PatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Action {
	case "lock", "unlock":
		customer, err := h.Service.SetLocked(req.CustomerID, req.Action == "lock")
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, CustomerResponse{Customer: customer})
	case "code:new":
		length := req.CodeLength
		if length <= 0 {
			length = 10
		}
		code, err := h.Service.NewAccessCode(req.CustomerID, length)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, AccessCodeResponse{Code: *code})
	case "code:setActive":
		if req.Active == nil {
			h.WriteError(w, http.StatusBadRequest, "active flag is missing")
			return
		}
		code, err := h.Service.SetAccessCodeActive(req.CodeID, *req.Active)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, AccessCodeResponse{Code: *code})
	default:
		h.WriteError(w, http.StatusBadRequest, "unknown action")
	}
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	var req DeleteCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerID == "" {
		h.WriteError(w, http.StatusBadRequest, "customerId is missing")
		return
	}

	if err := h.Service.DeleteCustomer(req.CustomerID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
