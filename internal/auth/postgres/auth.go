package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/slsoft/permission-portal/internal/auth"

	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.RepositoryAPI {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetActiveAccessCode(code string) (*customerDatamodel.AccessCode, error) {
	var record customerDatamodel.AccessCode
	err := r.db.Where("code = ? AND active = ?", code, true).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *AuthRepository) GetCustomerByID(customerID string) (*customerDatamodel.Customer, error) {
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
