package assignment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/transport"
	"github.com/slsoft/permission-portal/pkg/logger"
)

type ServiceAPI interface {
	GetState(customerID string) (*StateResponse, error)
	SaveDraft(ctx context.Context, customerID string, req *SaveRequest) (*SaveResponse, error)
	Submit(ctx context.Context, customerID string, req *SubmitRequest) (*SubmitResponse, error)
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

// GetState serves GET /permissions: roles, catalogue, assignment set and
// version for the logged-in customer.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	customerID := internal.CustomerIDFromContext(r.Context())
	if customerID == "" {
		h.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	state, err := h.Service.GetState(customerID)
	if err != nil {
		h.Logger.Error("GetState: service error", "error", err, "customer_id", customerID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	customerID := internal.CustomerIDFromContext(r.Context())
	if customerID == "" {
		h.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("SaveDraft: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.SaveDraft(r.Context(), customerID, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	customerID := internal.CustomerIDFromContext(r.Context())
	if customerID == "" {
		h.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("Submit: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Submit(r.Context(), customerID, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
