package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/assignment"
	assignmentDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/assignment"
	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) assignment.RepositoryAPI {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) GetCustomer(customerID string) (*customerDatamodel.Customer, error) {
	var customer customerDatamodel.Customer
	err := r.db.Where("id = ?", customerID).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *AssignmentRepository) GetRoles(customerID string) ([]*assignmentDatamodel.Role, error) {
	var roles []*assignmentDatamodel.Role
	err := r.db.Where("customer_id = ?", customerID).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *AssignmentRepository) GetAssigned(customerID string) ([]*assignmentDatamodel.RolePermission, error) {
	var assigned []*assignmentDatamodel.RolePermission
	err := r.db.Where("customer_id = ?", customerID).Find(&assigned).Error
	return assigned, err
}

func (r *AssignmentRepository) ApplyChanges(customerID string, expectedVersion int64, changes []assignment.Change) (*assignment.SaveResult, error) {
	var result *assignment.SaveResult
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, ch := range changes {
			if ch.Allow {
				row := assignmentDatamodel.RolePermission{
					CustomerID:   customerID,
					RoleID:       ch.RoleID,
					PermissionID: ch.PermissionID,
				}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
					return err
				}
			} else {
				err := tx.Where("customer_id = ? AND role_id = ? AND permission_id = ?",
					customerID, ch.RoleID, ch.PermissionID).
					Delete(&assignmentDatamodel.RolePermission{}).Error
				if err != nil {
					return err
				}
			}
		}
		var err error
		result, err = bumpVersion(tx, customerID, expectedVersion, false)
		return err
	})
	return result, err
}

func (r *AssignmentRepository) ReplaceAll(customerID string, expectedVersion int64, items []assignment.Item, lock bool) (*assignment.SaveResult, error) {
	var result *assignment.SaveResult
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customerID).
			Delete(&assignmentDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		for _, it := range items {
			row := assignmentDatamodel.RolePermission{
				CustomerID:   customerID,
				RoleID:       it.RoleID,
				PermissionID: it.PermissionID,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return err
			}
		}
		var err error
		result, err = bumpVersion(tx, customerID, expectedVersion, lock)
		return err
	})
	return result, err
}

// bumpVersion is the atomic check-and-increment of the optimistic-concurrency
// counter: the guarded UPDATE only matches when the persisted version still
// equals expectedVersion, so a racing save of the same customer loses cleanly.
func bumpVersion(tx *gorm.DB, customerID string, expectedVersion int64, lock bool) (*assignment.SaveResult, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"draft_saved_at": now,
		"assign_version": gorm.Expr("assign_version + 1"),
		"updated_at":     now,
	}
	if lock {
		updates["locked_at"] = now
	}

	res := tx.Model(&customerDatamodel.Customer{}).
		Where("id = ? AND assign_version = ? AND locked_at IS NULL", customerID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var current customerDatamodel.Customer
		if err := tx.Where("id = ?", customerID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, internal.ErrCustomerNotFound
			}
			return nil, err
		}
		if current.LockedAt != nil {
			return nil, internal.ErrRecordLocked
		}
		return nil, internal.NewVersionConflictError(current.AssignVersion)
	}

	result := &assignment.SaveResult{
		AssignVersion: expectedVersion + 1,
		DraftSavedAt:  now,
	}
	if lock {
		result.LockedAt = &now
	}
	return result, nil
}
