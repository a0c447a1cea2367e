package customer

import (
	"crypto/rand"
	"math/big"
	"time"

	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

type Customer struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Code          string       `json:"code"`
	Company       string       `json:"company,omitempty"`
	ContactName   string       `json:"contactName,omitempty"`
	Email         string       `json:"email,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	Street        string       `json:"street,omitempty"`
	Zip           string       `json:"zip,omitempty"`
	City          string       `json:"city,omitempty"`
	Country       string       `json:"country,omitempty"`
	LockedAt      *time.Time   `json:"lockedAt"`
	DraftSavedAt  *time.Time   `json:"draftSavedAt"`
	AssignVersion int64        `json:"assignVersion"`
	CreatedAt     time.Time    `json:"createdAt"`
	AccessCodes   []AccessCode `json:"accessCodes,omitempty"`
}

type AccessCode struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromDataModel(c *customerDatamodel.Customer, codes []*customerDatamodel.AccessCode) *Customer {
	out := &Customer{
		ID:            c.ID,
		Name:          c.Name,
		Code:          c.Code,
		Company:       c.Company,
		ContactName:   c.ContactName,
		Email:         c.Email,
		Phone:         c.Phone,
		Street:        c.Street,
		Zip:           c.Zip,
		City:          c.City,
		Country:       c.Country,
		LockedAt:      c.LockedAt,
		DraftSavedAt:  c.DraftSavedAt,
		AssignVersion: c.AssignVersion,
		CreatedAt:     c.CreatedAt,
	}
	for _, code := range codes {
		out.AccessCodes = append(out.AccessCodes, AccessCodeFromDataModel(code))
	}
	return out
}

func AccessCodeFromDataModel(a *customerDatamodel.AccessCode) AccessCode {
	return AccessCode{
		ID:        a.ID,
		Code:      a.Code,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

// codeAlphabet avoids ambiguous characters (no I, O, 0, 1).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandomCode generates an access code of the given length.
func RandomCode(length int) string {
	if length <= 0 {
		length = 10
	}
	max := big.NewInt(int64(len(codeAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing is unrecoverable for credential generation
			panic(err)
		}
		out[i] = codeAlphabet[n.Int64()]
	}
	return string(out)
}
