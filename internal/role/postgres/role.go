package postgres

import (
	"errors"

	"gorm.io/gorm"

	assignmentDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/assignment"
	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
	"github.com/slsoft/permission-portal/internal/role"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetCustomer(customerID string) (*customerDatamodel.Customer, error) {
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

func (r *RoleRepository) GetAll(customerID string) ([]*assignmentDatamodel.Role, error) {
	var roles []*assignmentDatamodel.Role
	err := r.db.Where("customer_id = ?", customerID).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) GetByID(customerID, roleID string) (*assignmentDatamodel.Role, error) {
	var record assignmentDatamodel.Role
	err := r.db.Where("customer_id = ? AND id = ?", customerID, roleID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *RoleRepository) GetByName(customerID, name string) (*assignmentDatamodel.Role, error) {
	var record assignmentDatamodel.Role
	err := r.db.Where("customer_id = ? AND name = ?", customerID, name).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *RoleRepository) Create(record *assignmentDatamodel.Role) error {
	return r.db.Create(record).Error
}

func (r *RoleRepository) Update(record *assignmentDatamodel.Role) error {
	return r.db.Save(record).Error
}

func (r *RoleRepository) DeleteWithAssignments(customerID, roleID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ? AND role_id = ?", customerID, roleID).
			Delete(&assignmentDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Where("customer_id = ? AND id = ?", customerID, roleID).
			Delete(&assignmentDatamodel.Role{}).Error
	})
}
