package customer_test

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/customer"

	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

func TestCustomer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Customer Module Suite")
}

type mockCustomerRepository struct {
	customers map[string]*customerDatamodel.Customer
	codes     map[string]*customerDatamodel.AccessCode
	nextID    int
	deleted   []string
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{
		customers: make(map[string]*customerDatamodel.Customer),
		codes:     make(map[string]*customerDatamodel.AccessCode),
		nextID:    1,
	}
}

func (m *mockCustomerRepository) id(prefix string) string {
	out := fmt.Sprintf("%s%d", prefix, m.nextID)
	m.nextID++
	return out
}

func (m *mockCustomerRepository) GetAll() ([]*customerDatamodel.Customer, error) {
	var out []*customerDatamodel.Customer
	for _, c := range m.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCustomerRepository) GetByID(customerID string) (*customerDatamodel.Customer, error) {
	return m.customers[customerID], nil
}

func (m *mockCustomerRepository) GetAccessCodes(customerID string) ([]*customerDatamodel.AccessCode, error) {
	var out []*customerDatamodel.AccessCode
	for _, a := range m.codes {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCustomerRepository) GetAccessCodeByID(codeID string) (*customerDatamodel.AccessCode, error) {
	return m.codes[codeID], nil
}

func (m *mockCustomerRepository) Create(c *customerDatamodel.Customer) error {
	c.ID = m.id("c")
	c.CreatedAt = time.Now()
	m.customers[c.ID] = c
	return nil
}

func (m *mockCustomerRepository) Update(c *customerDatamodel.Customer) error {
	m.customers[c.ID] = c
	return nil
}

func (m *mockCustomerRepository) CreateAccessCode(a *customerDatamodel.AccessCode) error {
	a.ID = m.id("a")
	a.CreatedAt = time.Now()
	m.codes[a.ID] = a
	return nil
}

func (m *mockCustomerRepository) UpdateAccessCode(a *customerDatamodel.AccessCode) error {
	m.codes[a.ID] = a
	return nil
}

func (m *mockCustomerRepository) DeleteCascade(customerID string) error {
	m.deleted = append(m.deleted, customerID)
	delete(m.customers, customerID)
	for id, a := range m.codes {
		if a.CustomerID == customerID {
			delete(m.codes, id)
		}
	}
	return nil
}

var _ = Describe("Customer Service", func() {
	var (
		service *customer.Service
		repo    *mockCustomerRepository
	)

	BeforeEach(func() {
		repo = newMockCustomerRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = customer.NewService(repo, logger)
	})

	Describe("CreateCustomer", func() {
		It("creates the customer with an initial active access code", func() {
			created, err := service.CreateCustomer(&customer.UpsertCustomerRequest{
				Name: "Demo Treuhand AG",
				Code: "DEMO",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(created.Code).To(Equal("DEMO"))
			Expect(created.AccessCodes).To(HaveLen(1))
			Expect(created.AccessCodes[0].Code).To(Equal("DEMO"))
			Expect(created.AccessCodes[0].Active).To(BeTrue())
		})

		It("generates a code when none is given", func() {
			created, err := service.CreateCustomer(&customer.UpsertCustomerRequest{Name: "Ohne Code"})
			Expect(err).ToNot(HaveOccurred())
			Expect(created.Code).To(HaveLen(8))
		})

		It("rejects a missing name", func() {
			_, err := service.CreateCustomer(&customer.UpsertCustomerRequest{Name: "  "})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("SearchCustomers", func() {
		BeforeEach(func() {
			for _, fixture := range []*customer.UpsertCustomerRequest{
				{Name: "Alpha Treuhand", Company: "Alpha AG", City: "Zürich", Code: "ALPHA"},
				{Name: "Beta Consulting", Company: "Beta GmbH", City: "Bern", Code: "BETA"},
			} {
				_, err := service.CreateCustomer(fixture)
				Expect(err).ToNot(HaveOccurred())
			}
		})

		It("returns everything for an empty query", func() {
			customers, err := service.SearchCustomers("")
			Expect(err).ToNot(HaveOccurred())
			Expect(customers).To(HaveLen(2))
		})

		It("matches case insensitively across fields", func() {
			customers, err := service.SearchCustomers("zürich")
			Expect(err).ToNot(HaveOccurred())
			Expect(customers).To(HaveLen(1))
			Expect(customers[0].Name).To(Equal("Alpha Treuhand"))

			customers, err = service.SearchCustomers("BETA")
			Expect(err).ToNot(HaveOccurred())
			Expect(customers).To(HaveLen(1))
			Expect(customers[0].Code).To(Equal("BETA"))
		})

		It("returns an empty list when nothing matches", func() {
			customers, err := service.SearchCustomers("gamma")
			Expect(err).ToNot(HaveOccurred())
			Expect(customers).To(BeEmpty())
		})
	})

	Describe("SetLocked", func() {
		It("sets and clears lockedAt", func() {
			created, err := service.CreateCustomer(&customer.UpsertCustomerRequest{Name: "Demo"})
			Expect(err).ToNot(HaveOccurred())

			locked, err := service.SetLocked(created.ID, true)
			Expect(err).ToNot(HaveOccurred())
			Expect(locked.LockedAt).ToNot(BeNil())

			unlocked, err := service.SetLocked(created.ID, false)
			Expect(err).ToNot(HaveOccurred())
			Expect(unlocked.LockedAt).To(BeNil())
		})

		It("rejects unknown customers", func() {
			_, err := service.SetLocked("nope", true)
			Expect(err).To(MatchError(internal.ErrCustomerNotFound))
		})
	})

	Describe("NewAccessCode", func() {
		It("creates an additional active code of the requested length", func() {
			created, err := service.CreateCustomer(&customer.UpsertCustomerRequest{Name: "Demo", Code: "DEMO"})
			Expect(err).ToNot(HaveOccurred())

			code, err := service.NewAccessCode(created.ID, 12)
			Expect(err).ToNot(HaveOccurred())
			Expect(code.Code).To(HaveLen(12))
			Expect(code.Active).To(BeTrue())

			codes, err := repo.GetAccessCodes(created.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(codes).To(HaveLen(2))
		})

		It("rejects unknown customers", func() {
			_, err := service.NewAccessCode("nope", 10)
			Expect(err).To(MatchError(internal.ErrCustomerNotFound))
		})
	})

	Describe("SetAccessCodeActive", func() {
		It("deactivates and reactivates a code", func() {
			created, err := service.CreateCustomer(&customer.UpsertCustomerRequest{Name: "Demo", Code: "DEMO"})
			Expect(err).ToNot(HaveOccurred())
			codeID := created.AccessCodes[0].ID

			updated, err := service.SetAccessCodeActive(codeID, false)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Active).To(BeFalse())

			updated, err = service.SetAccessCodeActive(codeID, true)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Active).To(BeTrue())
		})

		It("rejects unknown codes", func() {
			_, err := service.SetAccessCodeActive("nope", false)
			Expect(err).To(MatchError(internal.ErrAccessCodeNotFound))
		})
	})

	Describe("DeleteCustomer", func() {
		It("cascades the deletion", func() {
			created, err := service.CreateCustomer(&customer.UpsertCustomerRequest{Name: "Demo"})
			Expect(err).ToNot(HaveOccurred())

			Expect(service.DeleteCustomer(created.ID)).To(Succeed())
			Expect(repo.deleted).To(ConsistOf(created.ID))

			customers, err := service.SearchCustomers("")
			Expect(err).ToNot(HaveOccurred())
			Expect(customers).To(BeEmpty())
		})

		It("rejects unknown customers", func() {
			Expect(service.DeleteCustomer("nope")).To(MatchError(internal.ErrCustomerNotFound))
		})
	})

	Describe("RandomCode", func() {
		It("uses only the unambiguous alphabet", func() {
			code := customer.RandomCode(64)
			Expect(code).To(HaveLen(64))
			for _, r := range code {
				Expect(strings.ContainsRune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789", r)).To(BeTrue())
			}
		})

		It("falls back to length 10 for non-positive lengths", func() {
			Expect(customer.RandomCode(0)).To(HaveLen(10))
			Expect(customer.RandomCode(-3)).To(HaveLen(10))
		})
	})
})
