package auth

import (
	"strings"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/customer"
)

type LoginRequest struct {
	Code string `json:"code"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return internal.NewValidationError("code is missing", internal.ErrCodeValidationFailed)
	}
	return nil
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

func (r *AdminLoginRequest) Validate() error {
	if r.Password == "" {
		return internal.NewValidationError("password is missing", internal.ErrCodeValidationFailed)
	}
	return nil
}

type LoginResponse struct {
	OK         bool   `json:"ok"`
	CustomerID string `json:"customerId,omitempty"`
}

type WhoAmIResponse struct {
	IsAdmin    bool   `json:"isAdmin"`
	IsCustomer bool   `json:"isCustomer"`
	CustomerID string `json:"customerId,omitempty"`
}

type SessionResponse struct {
	Customer *customer.Customer `json:"customer"`
}
