package auth_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/auth"

	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Module Suite")
}

type mockAuthRepository struct {
	accessCodes map[string]*customerDatamodel.AccessCode
	customers   map[string]*customerDatamodel.Customer
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		accessCodes: make(map[string]*customerDatamodel.AccessCode),
		customers:   make(map[string]*customerDatamodel.Customer),
	}
}

func (m *mockAuthRepository) GetActiveAccessCode(code string) (*customerDatamodel.AccessCode, error) {
	accessCode, ok := m.accessCodes[code]
	if !ok || !accessCode.Active {
		return nil, nil
	}
	return accessCode, nil
}

func (m *mockAuthRepository) GetCustomerByID(customerID string) (*customerDatamodel.Customer, error) {
	return m.customers[customerID], nil
}

var _ = Describe("Auth Service", func() {
	var (
		service *auth.Service
		repo    *mockAuthRepository
		tokens  *auth.JWTTokenGenerator
	)

	adminHash := func(password string) string {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).ToNot(HaveOccurred())
		return string(hash)
	}

	BeforeEach(func() {
		repo = newMockAuthRepository()
		repo.customers["c1"] = &customerDatamodel.Customer{ID: "c1", Name: "Demo Treuhand AG", Code: "DEMO"}
		repo.accessCodes["DEMO2024"] = &customerDatamodel.AccessCode{ID: "a1", Code: "DEMO2024", CustomerID: "c1", Active: true}
		repo.accessCodes["STALE"] = &customerDatamodel.AccessCode{ID: "a2", Code: "STALE", CustomerID: "c1", Active: false}

		tokens = auth.NewJWTTokenGenerator("test-secret", time.Hour)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(repo, tokens, adminHash("hunter2"), logger)
	})

	Describe("LoginWithAccessCode", func() {
		It("issues a customer token for an active code", func() {
			token, customerID, err := service.LoginWithAccessCode(&auth.LoginRequest{Code: "DEMO2024"})
			Expect(err).ToNot(HaveOccurred())
			Expect(customerID).To(Equal("c1"))

			claims, err := service.ValidateToken(token)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.IsCustomer()).To(BeTrue())
			Expect(claims.IsAdmin()).To(BeFalse())
			Expect(claims.CustomerID).To(Equal("c1"))
		})

		It("matches codes case-insensitively", func() {
			_, customerID, err := service.LoginWithAccessCode(&auth.LoginRequest{Code: "  demo2024 "})
			Expect(err).ToNot(HaveOccurred())
			Expect(customerID).To(Equal("c1"))
		})

		It("rejects unknown codes", func() {
			_, _, err := service.LoginWithAccessCode(&auth.LoginRequest{Code: "NOPE"})
			Expect(err).To(MatchError(internal.ErrInvalidAccessCode))
		})

		It("rejects inactive codes", func() {
			_, _, err := service.LoginWithAccessCode(&auth.LoginRequest{Code: "STALE"})
			Expect(err).To(MatchError(internal.ErrInvalidAccessCode))
		})

		It("rejects an empty code", func() {
			_, _, err := service.LoginWithAccessCode(&auth.LoginRequest{Code: "   "})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("AdminLogin", func() {
		It("issues an admin token for the right password", func() {
			token, err := service.AdminLogin(&auth.AdminLoginRequest{Password: "hunter2"})
			Expect(err).ToNot(HaveOccurred())

			claims, err := service.ValidateToken(token)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.IsAdmin()).To(BeTrue())
			Expect(claims.IsCustomer()).To(BeFalse())
		})

		It("rejects a wrong password", func() {
			_, err := service.AdminLogin(&auth.AdminLoginRequest{Password: "wrong"})
			Expect(err).To(MatchError(internal.ErrInvalidAdminLogin))
		})

		It("rejects logins when no hash is configured", func() {
			unconfigured := auth.NewService(repo, tokens, "", slog.New(slog.NewTextHandler(os.Stdout, nil)))
			_, err := unconfigured.AdminLogin(&auth.AdminLoginRequest{Password: "hunter2"})
			Expect(err).To(MatchError(internal.ErrInvalidAdminLogin))
		})
	})

	Describe("ValidateToken", func() {
		It("rejects tokens signed with another secret", func() {
			other := auth.NewJWTTokenGenerator("other-secret", time.Hour)
			token, err := other.GenerateAdminToken()
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ValidateToken(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects garbage", func() {
			_, err := service.ValidateToken("not.a.token")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects expired tokens", func() {
			expired := &auth.JWTTokenGenerator{Secret: []byte("test-secret"), SessionTTL: -time.Minute}
			token, err := expired.GenerateCustomerToken("c1")
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ValidateToken(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})

	Describe("SessionCustomer", func() {
		It("resolves the customer profile", func() {
			profile, err := service.SessionCustomer("c1")
			Expect(err).ToNot(HaveOccurred())
			Expect(profile.Name).To(Equal("Demo Treuhand AG"))
			Expect(profile.Code).To(Equal("DEMO"))
		})

		It("rejects unknown customers", func() {
			_, err := service.SessionCustomer("nope")
			Expect(err).To(MatchError(internal.ErrCustomerNotFound))
		})
	})
})
