package assignment

import (
	"context"
	"log/slog"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/catalog"
	"github.com/slsoft/permission-portal/internal/core/events"

	assignmentDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/assignment"
	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

type RepositoryAPI interface {
	GetCustomer(customerID string) (*customerDatamodel.Customer, error)
	GetRoles(customerID string) ([]*assignmentDatamodel.Role, error)
	GetAssigned(customerID string) ([]*assignmentDatamodel.RolePermission, error)
	// ApplyChanges persists deltas, bumping assign_version atomically against
	// expectedVersion. A stale expectedVersion yields a VersionConflict and
	// no mutation.
	ApplyChanges(customerID string, expectedVersion int64, changes []Change) (*SaveResult, error)
	// ReplaceAll swaps the complete assignment set, optionally locking the
	// record, under the same version guard.
	ReplaceAll(customerID string, expectedVersion int64, items []Item, lock bool) (*SaveResult, error)
}

// CatalogAPI is the slice of the catalog service the assignment session
// needs.
type CatalogAPI interface {
	ListPermissions() ([]catalog.Permission, error)
}

type Service struct {
	repo    RepositoryAPI
	catalog CatalogAPI
	bus     *events.EventBus
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, catalogService CatalogAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalogService,
		bus:     bus,
		logger:  logger,
	}
}

// GetState loads everything the assignment screens need in one call.
func (s *Service) GetState(customerID string) (*StateResponse, error) {
	customer, err := s.repo.GetCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, internal.ErrCustomerNotFound
	}

	roleRecords, err := s.repo.GetRoles(customerID)
	if err != nil {
		s.logger.Error("failed to load roles", "error", err, "customer_id", customerID)
		return nil, err
	}
	roles := make([]Role, 0, len(roleRecords))
	for _, r := range roleRecords {
		roles = append(roles, RoleFromDataModel(r))
	}

	permissions, err := s.catalog.ListPermissions()
	if err != nil {
		return nil, err
	}

	assignedRecords, err := s.repo.GetAssigned(customerID)
	if err != nil {
		s.logger.Error("failed to load assignments", "error", err, "customer_id", customerID)
		return nil, err
	}
	assigned := make([]string, 0, len(assignedRecords))
	seen := make(map[string]struct{}, len(assignedRecords))
	for _, a := range assignedRecords {
		key := AssignKey(a.RoleID, a.PermissionID)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		assigned = append(assigned, key)
	}

	return &StateResponse{
		LockedAt:      customer.LockedAt,
		DraftSavedAt:  customer.DraftSavedAt,
		AssignVersion: customer.AssignVersion,
		Roles:         roles,
		Permissions:   permissions,
		Assigned:      assigned,
	}, nil
}

// SaveDraft flushes pending deltas (or a full replacement set) while the
// record is editable. The version guard makes concurrent saves of the same
// customer fail cleanly instead of silently overwriting each other.
func (s *Service) SaveDraft(ctx context.Context, customerID string, req *SaveRequest) (*SaveResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.repo.GetCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, internal.ErrCustomerNotFound
	}
	if customer.LockedAt != nil {
		return nil, internal.ErrRecordLocked
	}

	expectedVersion := customer.AssignVersion
	if req.ClientVersion != nil {
		if *req.ClientVersion != customer.AssignVersion {
			return nil, internal.NewVersionConflictError(customer.AssignVersion)
		}
		expectedVersion = *req.ClientVersion
	}

	var result *SaveResult
	var saved int
	if req.Items != nil {
		result, err = s.repo.ReplaceAll(customerID, expectedVersion, req.Items, false)
		saved = len(req.Items)
	} else {
		result, err = s.repo.ApplyChanges(customerID, expectedVersion, req.Changes)
		saved = len(req.Changes)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("draft saved",
		"customer_id", customerID, "saved", saved, "assign_version", result.AssignVersion)

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewBaseEvent(events.EventAssignmentSaved, map[string]interface{}{
			"customerId":    customerID,
			"saved":         saved,
			"assignVersion": result.AssignVersion,
		}))
	}

	draftSavedAt := result.DraftSavedAt
	return &SaveResponse{
		OK:            true,
		Saved:         saved,
		DraftSavedAt:  &draftSavedAt,
		AssignVersion: result.AssignVersion,
	}, nil
}

// Submit writes the final replacement set and locks the record. The
// transition to locked is one-way for the customer.
func (s *Service) Submit(ctx context.Context, customerID string, req *SubmitRequest) (*SubmitResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.repo.GetCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, internal.ErrCustomerNotFound
	}
	if customer.LockedAt != nil {
		return nil, internal.ErrRecordLocked
	}

	expectedVersion := customer.AssignVersion
	if req.ClientVersion != nil {
		if *req.ClientVersion != customer.AssignVersion {
			return nil, internal.NewVersionConflictError(customer.AssignVersion)
		}
		expectedVersion = *req.ClientVersion
	}

	result, err := s.repo.ReplaceAll(customerID, expectedVersion, req.Items, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("assignment submitted",
		"customer_id", customerID, "items", len(req.Items), "assign_version", result.AssignVersion)

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewBaseEvent(events.EventAssignmentSubmitted, map[string]interface{}{
			"customerId":    customerID,
			"items":         len(req.Items),
			"assignVersion": result.AssignVersion,
		}))
		_ = s.bus.Publish(ctx, events.NewBaseEvent(events.EventCustomerLocked, map[string]interface{}{
			"customerId": customerID,
		}))
	}

	return &SubmitResponse{
		OK:            true,
		LockedAt:      result.LockedAt,
		AssignVersion: result.AssignVersion,
	}, nil
}
