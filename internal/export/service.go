package export

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/assignment"
	"github.com/slsoft/permission-portal/internal/catalog"

	assignmentDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/assignment"
	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

type RepositoryAPI interface {
	GetCustomer(customerID string) (*customerDatamodel.Customer, error)
	GetRoles(customerID string) ([]*assignmentDatamodel.Role, error)
	GetAssigned(customerID string) ([]*assignmentDatamodel.RolePermission, error)
}

type CatalogAPI interface {
	ListPermissions() ([]catalog.Permission, error)
}

type Service struct {
	repo    RepositoryAPI
	catalog CatalogAPI
	appName string
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, catalogSvc CatalogAPI, appName string, logger *slog.Logger) *Service {
	if appName == "" {
		appName = "SL-RoleDesk"
	}
	return &Service{
		repo:    repo,
		catalog: catalogSvc,
		appName: appName,
		logger:  logger,
	}
}

// ExportPDF renders the matrix for one customer. The admin variant adds raw
// permission keys under every row.
func (s *Service) ExportPDF(customerID string, variant Variant) ([]byte, string, error) {
	record, err := s.repo.GetCustomer(customerID)
	if err != nil {
		return nil, "", err
	}
	if record == nil {
		return nil, "", internal.ErrCustomerNotFound
	}

	roleRecords, err := s.repo.GetRoles(customerID)
	if err != nil {
		return nil, "", err
	}
	roles := make([]assignment.Role, 0, len(roleRecords))
	for _, r := range roleRecords {
		roles = append(roles, assignment.RoleFromDataModel(r))
	}

	permissions, err := s.catalog.ListPermissions()
	if err != nil {
		return nil, "", err
	}

	assignedRecords, err := s.repo.GetAssigned(customerID)
	if err != nil {
		return nil, "", err
	}
	assigned := make(map[string]struct{}, len(assignedRecords))
	for _, a := range assignedRecords {
		assigned[assignment.AssignKey(a.RoleID, a.PermissionID)] = struct{}{}
	}

	title := "Rollen & Berechtigungen"
	if variant == VariantAdmin {
		title = "Rollen & Berechtigungen (Admin-Export)"
	}
	code := record.Code
	if code == "" {
		code = record.ID
	}

	doc := &Document{
		AppName:         s.appName,
		Title:           title,
		Subtitle:        fmt.Sprintf("%s (%s)", record.Name, code),
		Variant:         variant,
		RoleCount:       len(roles),
		PermissionCount: len(permissions),
		Sections:        ShapeSections(permissions),
	}

	out, err := RenderPDF(doc, NewRoleNames(roles, assigned))
	if err != nil {
		s.logger.Error("pdf export failed", "error", err, "customer_id", customerID)
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_%s_%s.pdf",
		strings.ReplaceAll(s.appName, " ", ""), code, string(variant))

	s.logger.Info("pdf exported",
		"customer_id", customerID, "variant", string(variant), "bytes", len(out))
	return out, filename, nil
}
