package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/customer"
	"github.com/slsoft/permission-portal/internal/transport"
	"github.com/slsoft/permission-portal/pkg/logger"
)

type ServiceAPI interface {
	LoginWithAccessCode(req *LoginRequest) (token string, customerID string, err error)
	AdminLogin(req *AdminLoginRequest) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	SessionCustomer(customerID string) (*customer.Customer, error)
}

type Handler struct {
	*transport.BaseHandler
	Service       ServiceAPI
	CookieName    string
	CookieMaxAge  time.Duration
	SecureCookies bool
}

func NewHandler(svc ServiceAPI, cookieName string, maxAge time.Duration, secure bool) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:   transport.NewBaseHandler(lg),
		Service:       svc,
		CookieName:    cookieName,
		CookieMaxAge:  maxAge,
		SecureCookies: secure,
	}
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) sessionClaims(r *http.Request) *Claims {
	cookie, err := r.Cookie(h.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := h.Service.ValidateToken(cookie.Value)
	if err != nil {
		return nil
	}
	return claims
}

// Login exchanges an access code for a customer session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, customerID, err := h.Service.LoginWithAccessCode(&req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	h.WriteJSON(w, http.StatusOK, LoginResponse{OK: true, CustomerID: customerID})
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.Service.AdminLogin(&req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	h.WriteJSON(w, http.StatusOK, LoginResponse{OK: true})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	h.WriteJSON(w, http.StatusOK, LoginResponse{OK: true})
}

// WhoAmI reports the session kind without requiring one.
func (h *Handler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	claims := h.sessionClaims(r)
	if claims == nil {
		h.WriteJSON(w, http.StatusOK, WhoAmIResponse{})
		return
	}
	h.WriteJSON(w, http.StatusOK, WhoAmIResponse{
		IsAdmin:    claims.IsAdmin(),
		IsCustomer: claims.IsCustomer(),
		CustomerID: claims.CustomerID,
	})
}

// Session returns the logged-in customer's profile.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	customerID := internal.CustomerIDFromContext(r.Context())
	if customerID == "" {
		h.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	profile, err := h.Service.SessionCustomer(customerID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SessionResponse{Customer: profile})
}

// RequireCustomer only passes requests carrying a valid customer session and
// puts the customer id on the request context.
func (h *Handler) RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := h.sessionClaims(r)
		if claims == nil || !claims.IsCustomer() {
			h.WriteError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		ctx := internal.ContextWithCustomerID(r.Context(), claims.CustomerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin only passes requests carrying a valid admin session.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := h.sessionClaims(r)
		if claims == nil || !claims.IsAdmin() {
			h.WriteError(w, http.StatusUnauthorized, "admin session required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
