package export

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/transport"
	"github.com/slsoft/permission-portal/pkg/logger"
)

type ServiceAPI interface {
	ExportPDF(customerID string, variant Variant) ([]byte, string, error)
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

// ExportPDF serves the customer's own matrix.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	customerID := internal.CustomerIDFromContext(r.Context())
	if customerID == "" {
		h.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	h.servePDF(w, customerID, VariantCustomer)
}

// AdminExportPDF serves the key-annotated variant for any customer.
func (h *Handler) AdminExportPDF(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customerId")
	if customerID == "" {
		h.WriteError(w, http.StatusBadRequest, "customerId is missing")
		return
	}
	h.servePDF(w, customerID, VariantAdmin)
}

func (h *Handler) servePDF(w http.ResponseWriter, customerID string, variant Variant) {
	out, filename, err := h.Service.ExportPDF(customerID, variant)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		h.Logger.Error("failed to stream pdf", "error", err)
	}
}
