package role

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/transport"
	"github.com/slsoft/permission-portal/pkg/logger"
)

type ServiceAPI interface {
	ListRoles(customerID string) ([]*Role, error)
	CreateRole(customerID, name string) (*Role, error)
	RenameRole(customerID, roleID, name string) (*Role, error)
	DeleteRole(customerID, roleID string) error
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

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	customerID := internal.CustomerIDFromContext(r.Context())
	if customerID == "" {
		h.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	roles, err := h.Service.ListRoles(customerID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: roles})
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	customerID := internal.CustomerIDFromContext(r.Context())
	if customerID == "" {
		h.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateRole(customerID, req.Name)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RoleResponse{Role: created})
}

func (h *Handler) RenameRole(w http.ResponseWriter, r *http.Request) {
	customerID := internal.CustomerIDFromContext(r.Context())
	if customerID == "" {
		h.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var req RenameRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	renamed, err := h.Service.RenameRole(customerID, req.ID, req.Name)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RoleResponse{Role: renamed})
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	customerID := internal.CustomerIDFromContext(r.Context())
	if customerID == "" {
		h.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var req DeleteRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.DeleteRole(customerID, req.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
