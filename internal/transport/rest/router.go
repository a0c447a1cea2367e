package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/slsoft/permission-portal/internal/assignment"
	"github.com/slsoft/permission-portal/internal/auth"
	"github.com/slsoft/permission-portal/internal/catalog"
	"github.com/slsoft/permission-portal/internal/customer"
	"github.com/slsoft/permission-portal/internal/export"
	"github.com/slsoft/permission-portal/internal/role"
	"github.com/slsoft/permission-portal/internal/transport/middleware"
	"github.com/slsoft/permission-portal/internal/transport/swagger"
)

type Handlers struct {
	Auth       *auth.Handler
	Assignment *assignment.Handler
	Role       *role.Handler
	Catalog    *catalog.Handler
	Customer   *customer.Handler
	Export     *export.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(splitOrigins(allowedOrigins)))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/admin/login", h.Auth.AdminLogin)
			sr.Post("/logout", h.Auth.Logout)
			sr.Get("/whoami", h.Auth.WhoAmI)
		})

		// Customer session routes
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.RequireCustomer)

			pr.Get("/session", h.Auth.Session)
			pr.Get("/permissions", h.Assignment.GetState)
			pr.Post("/save", h.Assignment.SaveDraft)
			pr.Post("/submit", h.Assignment.Submit)

			pr.Route("/roles", func(rr chi.Router) {
				rr.Get("/", h.Role.ListRoles)
				rr.Post("/", h.Role.CreateRole)
				rr.Patch("/", h.Role.RenameRole)
				rr.Delete("/", h.Role.DeleteRole)
			})

			pr.Get("/export/pdf", h.Export.ExportPDF)
		})

		// Admin session routes
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(h.Auth.RequireAdmin)

			ar.Route("/customers", func(cr chi.Router) {
				cr.Get("/", h.Customer.ListCustomers)
				cr.Post("/", h.Customer.UpsertCustomer)
				cr.Patch("/", h.Customer.PatchCustomer)
				cr.Delete("/", h.Customer.DeleteCustomer)
			})

			ar.Route("/permissions", func(pr chi.Router) {
				pr.Post("/import", h.Catalog.ImportCSV)
				pr.Post("/backfill-category-path", h.Catalog.BackfillCategoryPath)
				pr.Post("/fix-duplicate-prefix", h.Catalog.FixDuplicatePrefix)
			})

			ar.Get("/export/pdf", h.Export.AdminExportPDF)
		})
	})
}

func splitOrigins(origins string) []string {
	if origins == "" || origins == "*" {
		return nil
	}
	var out []string
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" && origin != "*" {
			out = append(out, origin)
		}
	}
	return out
}
