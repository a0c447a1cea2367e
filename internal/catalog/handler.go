package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/transport"
	"github.com/slsoft/permission-portal/pkg/logger"
)

type ServiceAPI interface {
	ImportCSV(ctx context.Context, r io.Reader) (*ImportSummary, error)
	BackfillCategoryPath(ctx context.Context) (int, error)
	FixDuplicatePrefix(ctx context.Context, prefix string) (renamed, merged int, err error)
}

type Handler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	MaxUploadBytes int64
}

func NewHandler(service ServiceAPI, maxUploadBytes int64) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 * 1024 * 1024
	}
	return &Handler{
		BaseHandler:    transport.NewBaseHandler(lg),
		Service:        service,
		MaxUploadBytes: maxUploadBytes,
	}
}

// ImportCSV handles the admin multipart upload of the master permission list.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		h.Logger.Error("ImportCSV: failed to parse multipart form", "error", err)
		h.HandleServiceError(w, internal.NewValidationError(
			fmt.Sprintf("upload too large or malformed (limit %d bytes)", h.MaxUploadBytes),
			internal.ErrCodeCSVTooLarge))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.Logger.Error("ImportCSV: missing file field", "error", err)
		h.WriteError(w, http.StatusBadRequest, "CSV file is missing or empty")
		return
	}
	defer file.Close()

	summary, err := h.Service.ImportCSV(r.Context(), file)
	if err != nil {
		h.Logger.Error("ImportCSV: import failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ImportResponse{
		Message: fmt.Sprintf("import ok, %d permissions processed, duplicates merged", summary.Rows),
		Summary: summary,
	})
}

func (h *Handler) BackfillCategoryPath(w http.ResponseWriter, r *http.Request) {
	updated, err := h.Service.BackfillCategoryPath(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, BackfillResponse{OK: true, Updated: updated})
}

func (h *Handler) FixDuplicatePrefix(w http.ResponseWriter, r *http.Request) {
	var req FixPrefixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prefix == "" {
		// historical repair targeted the doubled function group prefix
		req.Prefix = "funktion"
	}
	renamed, merged, err := h.Service.FixDuplicatePrefix(r.Context(), NormalizeToken(req.Prefix))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FixPrefixResponse{OK: true, Renamed: renamed, Merged: merged})
}
