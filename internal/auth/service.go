package auth

import (
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/customer"

	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

type RepositoryAPI interface {
	GetActiveAccessCode(code string) (*customerDatamodel.AccessCode, error)
	GetCustomerByID(customerID string) (*customerDatamodel.Customer, error)
}

type Service struct {
	repo              RepositoryAPI
	tokens            TokenGenerator
	adminPasswordHash string
	logger            *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGenerator, adminPasswordHash string, logger *slog.Logger) *Service {
	return &Service{
		repo:              repo,
		tokens:            tokens,
		adminPasswordHash: adminPasswordHash,
		logger:            logger,
	}
}

// LoginWithAccessCode exchanges an active access code for a customer session
// token. Codes are matched case-insensitively.
func (s *Service) LoginWithAccessCode(req *LoginRequest) (string, string, error) {
	if err := req.Validate(); err != nil {
		return "", "", err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	accessCode, err := s.repo.GetActiveAccessCode(code)
	if err != nil {
		s.logger.Error("access code lookup failed", "error", err)
		return "", "", err
	}
	if accessCode == nil {
		s.logger.Warn("login rejected", "reason", "unknown or inactive code")
		return "", "", internal.ErrInvalidAccessCode
	}

	token, err := s.tokens.GenerateCustomerToken(accessCode.CustomerID)
	if err != nil {
		s.logger.Error("failed to sign session token", "error", err)
		return "", "", err
	}

	s.logger.Info("customer logged in", "customer_id", accessCode.CustomerID)
	return token, accessCode.CustomerID, nil
}

// AdminLogin checks the password against the configured bcrypt hash.
func (s *Service) AdminLogin(req *AdminLoginRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if s.adminPasswordHash == "" {
		s.logger.Error("admin login attempted without configured password hash")
		return "", internal.ErrInvalidAdminLogin
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("admin login rejected")
		return "", internal.ErrInvalidAdminLogin
	}

	token, err := s.tokens.GenerateAdminToken()
	if err != nil {
		s.logger.Error("failed to sign admin token", "error", err)
		return "", err
	}

	s.logger.Info("admin logged in")
	return token, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

// SessionCustomer resolves the logged-in customer's profile.
func (s *Service) SessionCustomer(customerID string) (*customer.Customer, error) {
	record, err := s.repo.GetCustomerByID(customerID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, internal.ErrCustomerNotFound
	}
	return customer.FromDataModel(record, nil), nil
}
