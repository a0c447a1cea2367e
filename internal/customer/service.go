package customer

import (
	"log/slog"
	"strings"
	"time"

	"github.com/slsoft/permission-portal/internal"

	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

type RepositoryAPI interface {
	GetAll() ([]*customerDatamodel.Customer, error)
	GetByID(customerID string) (*customerDatamodel.Customer, error)
	GetAccessCodes(customerID string) ([]*customerDatamodel.AccessCode, error)
	GetAccessCodeByID(codeID string) (*customerDatamodel.AccessCode, error)
	Create(c *customerDatamodel.Customer) error
	Update(c *customerDatamodel.Customer) error
	CreateAccessCode(a *customerDatamodel.AccessCode) error
	UpdateAccessCode(a *customerDatamodel.AccessCode) error
	// DeleteCascade removes the customer with its roles, role_permissions
	// and access codes in one transaction.
	DeleteCascade(customerID string) error
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

// SearchCustomers lists all customers, newest first, filtered by a free-text
// query over name, company, contact, email, city and code.
func (s *Service) SearchCustomers(query string) ([]*Customer, error) {
	records, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list customers", "error", err)
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	customers := make([]*Customer, 0, len(records))
	for _, record := range records {
		if q != "" && !matchesQuery(record, q) {
			continue
		}
		codes, err := s.repo.GetAccessCodes(record.ID)
		if err != nil {
			return nil, err
		}
		customers = append(customers, FromDataModel(record, codes))
	}
	return customers, nil
}

func matchesQuery(c *customerDatamodel.Customer, q string) bool {
	haystack := strings.ToLower(strings.Join([]string{
		c.Name, c.Company, c.ContactName, c.Email, c.City, c.Code,
	}, " "))
	return strings.Contains(haystack, q)
}

// CreateCustomer registers a new customer and its first active access code.
func (s *Service) CreateCustomer(req *UpsertCustomerRequest) (*Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, internal.NewValidationError("name is missing", internal.ErrCodeValidationFailed)
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = RandomCode(8)
	}

	record := &customerDatamodel.Customer{
		Name:        req.Name,
		Code:        code,
		Company:     req.Company,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Street:      req.Street,
		Zip:         req.Zip,
		City:        req.City,
		Country:     req.Country,
	}
	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to create customer", "error", err, "name", req.Name)
		return nil, err
	}

	accessCode := &customerDatamodel.AccessCode{
		Code:       code,
		CustomerID: record.ID,
		Active:     true,
	}
	if err := s.repo.CreateAccessCode(accessCode); err != nil {
		s.logger.Error("failed to create initial access code", "error", err, "customer_id", record.ID)
		return nil, err
	}

	s.logger.Info("customer created", "customer_id", record.ID, "name", record.Name)
	return FromDataModel(record, []*customerDatamodel.AccessCode{accessCode}), nil
}

func (s *Service) UpdateCustomer(req *UpsertCustomerRequest) (*Customer, error) {
	record, err := s.repo.GetByID(req.ID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, internal.ErrCustomerNotFound
	}

	record.Name = req.Name
	record.Company = req.Company
	record.ContactName = req.ContactName
	record.Email = req.Email
	record.Phone = req.Phone
	record.Street = req.Street
	record.Zip = req.Zip
	record.City = req.City
	record.Country = req.Country

	if err := s.repo.Update(record); err != nil {
		s.logger.Error("failed to update customer", "error", err, "customer_id", req.ID)
		return nil, err
	}
	return FromDataModel(record, nil), nil
}

// SetLocked sets or clears lockedAt. Clearing is the admin-only escape hatch
// out of the submitted state.
func (s *Service) SetLocked(customerID string, locked bool) (*Customer, error) {
	record, err := s.repo.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, internal.ErrCustomerNotFound
	}

	if locked {
		now := time.Now()
		record.LockedAt = &now
	} else {
		record.LockedAt = nil
	}
	if err := s.repo.Update(record); err != nil {
		s.logger.Error("failed to change lock state", "error", err, "customer_id", customerID)
		return nil, err
	}

	s.logger.Info("lock state changed", "customer_id", customerID, "locked", locked)
	return FromDataModel(record, nil), nil
}

func (s *Service) NewAccessCode(customerID string, length int) (*AccessCode, error) {
	record, err := s.repo.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, internal.ErrCustomerNotFound
	}

	accessCode := &customerDatamodel.AccessCode{
		Code:       RandomCode(length),
		CustomerID: customerID,
		Active:     true,
	}
	if err := s.repo.CreateAccessCode(accessCode); err != nil {
		s.logger.Error("failed to create access code", "error", err, "customer_id", customerID)
		return nil, err
	}

	out := AccessCodeFromDataModel(accessCode)
	return &out, nil
}

func (s *Service) SetAccessCodeActive(codeID string, active bool) (*AccessCode, error) {
	record, err := s.repo.GetAccessCodeByID(codeID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, internal.ErrAccessCodeNotFound
	}

	record.Active = active
	if err := s.repo.UpdateAccessCode(record); err != nil {
		s.logger.Error("failed to update access code", "error", err, "code_id", codeID)
		return nil, err
	}

	out := AccessCodeFromDataModel(record)
	return &out, nil
}

func (s *Service) DeleteCustomer(customerID string) error {
	record, err := s.repo.GetByID(customerID)
	if err != nil {
		return err
	}
	if record == nil {
		return internal.ErrCustomerNotFound
	}

	if err := s.repo.DeleteCascade(customerID); err != nil {
		s.logger.Error("failed to delete customer", "error", err, "customer_id", customerID)
		return err
	}

	s.logger.Info("customer deleted", "customer_id", customerID)
	return nil
}
