package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/slsoft/permission-portal/internal/customer"

	assignmentDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/assignment"
	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) customer.RepositoryAPI {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) GetAll() ([]*customerDatamodel.Customer, error) {
	var customers []*customerDatamodel.Customer
	err := r.db.Order("created_at DESC").Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) GetByID(customerID string) (*customerDatamodel.Customer, error) {
	var record customerDatamodel.Customer
	err := r.db.Where("id = ?", customerID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *CustomerRepository) GetAccessCodes(customerID string) ([]*customerDatamodel.AccessCode, error) {
	var codes []*customerDatamodel.AccessCode
	err := r.db.Where("customer_id = ?", customerID).Order("created_at DESC").Find(&codes).Error
	return codes, err
}

func (r *CustomerRepository) GetAccessCodeByID(codeID string) (*customerDatamodel.AccessCode, error) {
	var record customerDatamodel.AccessCode
	err := r.db.Where("id = ?", codeID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *CustomerRepository) Create(record *customerDatamodel.Customer) error {
	return r.db.Create(record).Error
}

func (r *CustomerRepository) Update(record *customerDatamodel.Customer) error {
	return r.db.Save(record).Error
}

func (r *CustomerRepository) CreateAccessCode(record *customerDatamodel.AccessCode) error {
	return r.db.Create(record).Error
}

func (r *CustomerRepository) UpdateAccessCode(record *customerDatamodel.AccessCode) error {
	return r.db.Save(record).Error
}

func (r *CustomerRepository) DeleteCascade(customerID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customerID).
			Delete(&assignmentDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customerID).
			Delete(&assignmentDatamodel.Role{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customerID).
			Delete(&customerDatamodel.AccessCode{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", customerID).
			Delete(&customerDatamodel.Customer{}).Error
	})
}
