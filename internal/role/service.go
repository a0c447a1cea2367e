package role

import (
	"log/slog"
	"strings"

	"github.com/slsoft/permission-portal/internal"

	assignmentDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/assignment"
	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

type RepositoryAPI interface {
	GetCustomer(customerID string) (*customerDatamodel.Customer, error)
	GetAll(customerID string) ([]*assignmentDatamodel.Role, error)
	GetByID(customerID, roleID string) (*assignmentDatamodel.Role, error)
	GetByName(customerID, name string) (*assignmentDatamodel.Role, error)
	Create(r *assignmentDatamodel.Role) error
	Update(r *assignmentDatamodel.Role) error
	// DeleteWithAssignments removes the role and its role_permissions rows.
	DeleteWithAssignments(customerID, roleID string) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListRoles(customerID string) ([]*Role, error) {
	records, err := s.repo.GetAll(customerID)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err, "customer_id", customerID)
		return nil, err
	}
	roles := make([]*Role, 0, len(records))
	for _, r := range records {
		roles = append(roles, FromDataModel(r))
	}
	return roles, nil
}

func (s *Service) CreateRole(customerID, name string) (*Role, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, internal.NewValidationError("name is missing", internal.ErrCodeValidationFailed)
	}

	if err := s.ensureEditable(customerID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(customerID, trimmed)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrDuplicateRoleName
	}

	record := &assignmentDatamodel.Role{CustomerID: customerID, Name: trimmed}
	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to create role", "error", err, "customer_id", customerID, "name", trimmed)
		return nil, err
	}

	s.logger.Info("role created", "customer_id", customerID, "role_id", record.ID, "name", trimmed)
	return FromDataModel(record), nil
}

func (s *Service) RenameRole(customerID, roleID, name string) (*Role, error) {
	trimmed := strings.TrimSpace(name)
	if roleID == "" || trimmed == "" {
		return nil, internal.NewValidationError("id or name is missing", internal.ErrCodeValidationFailed)
	}

	if err := s.ensureEditable(customerID); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(customerID, roleID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, internal.ErrRoleNotFound
	}

	if other, err := s.repo.GetByName(customerID, trimmed); err != nil {
		return nil, err
	} else if other != nil && other.ID != roleID {
		return nil, internal.ErrDuplicateRoleName
	}

	record.Name = trimmed
	if err := s.repo.Update(record); err != nil {
		s.logger.Error("failed to rename role", "error", err, "role_id", roleID)
		return nil, err
	}
	return FromDataModel(record), nil
}

func (s *Service) DeleteRole(customerID, roleID string) error {
	if roleID == "" {
		return internal.NewValidationError("id is missing", internal.ErrCodeValidationFailed)
	}

	if err := s.ensureEditable(customerID); err != nil {
		return err
	}

	record, err := s.repo.GetByID(customerID, roleID)
	if err != nil {
		return err
	}
	if record == nil {
		return internal.ErrRoleNotFound
	}

	if err := s.repo.DeleteWithAssignments(customerID, roleID); err != nil {
		s.logger.Error("failed to delete role", "error", err, "role_id", roleID)
		return err
	}

	s.logger.Info("role deleted", "customer_id", customerID, "role_id", roleID)
	return nil
}

func (s *Service) ensureEditable(customerID string) error {
	customer, err := s.repo.GetCustomer(customerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return internal.ErrCustomerNotFound
	}
	if customer.LockedAt != nil {
		return internal.ErrRecordLocked
	}
	return nil
}
