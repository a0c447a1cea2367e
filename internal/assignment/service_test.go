package assignment_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/assignment"
	"github.com/slsoft/permission-portal/internal/catalog"

	assignmentDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/assignment"
	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

func TestAssignment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Assignment Module Suite")
}

type mockAssignmentRepository struct {
	customer *customerDatamodel.Customer
	roles    []*assignmentDatamodel.Role
	assigned []*assignmentDatamodel.RolePermission

	applyCalls   int
	replaceCalls int
	lastLock     bool
}

func (m *mockAssignmentRepository) GetCustomer(customerID string) (*customerDatamodel.Customer, error) {
	if m.customer == nil || m.customer.ID != customerID {
		return nil, nil
	}
	return m.customer, nil
}

func (m *mockAssignmentRepository) GetRoles(customerID string) ([]*assignmentDatamodel.Role, error) {
	return m.roles, nil
}

func (m *mockAssignmentRepository) GetAssigned(customerID string) ([]*assignmentDatamodel.RolePermission, error) {
	return m.assigned, nil
}

func (m *mockAssignmentRepository) bump(expectedVersion int64) (*assignment.SaveResult, error) {
	if m.customer.AssignVersion != expectedVersion {
		return nil, internal.NewVersionConflictError(m.customer.AssignVersion)
	}
	m.customer.AssignVersion++
	now := time.Now()
	m.customer.DraftSavedAt = &now
	return &assignment.SaveResult{
		AssignVersion: m.customer.AssignVersion,
		DraftSavedAt:  now,
	}, nil
}

func (m *mockAssignmentRepository) ApplyChanges(customerID string, expectedVersion int64, changes []assignment.Change) (*assignment.SaveResult, error) {
	m.applyCalls++
	return m.bump(expectedVersion)
}

func (m *mockAssignmentRepository) ReplaceAll(customerID string, expectedVersion int64, items []assignment.Item, lock bool) (*assignment.SaveResult, error) {
	m.replaceCalls++
	m.lastLock = lock
	result, err := m.bump(expectedVersion)
	if err != nil {
		return nil, err
	}
	if lock {
		now := time.Now()
		m.customer.LockedAt = &now
		result.LockedAt = &now
	}
	return result, nil
}

type mockCatalogAPI struct {
	permissions []catalog.Permission
}

func (m *mockCatalogAPI) ListPermissions() ([]catalog.Permission, error) {
	return m.permissions, nil
}

var _ = Describe("Assignment Service", func() {
	var (
		service *assignment.Service
		repo    *mockAssignmentRepository
		ctx     context.Context
	)

	version := func(v int64) *int64 { return &v }

	BeforeEach(func() {
		repo = &mockAssignmentRepository{
			customer: &customerDatamodel.Customer{
				ID:            "c1",
				Name:          "Demo",
				AssignVersion: 3,
			},
			roles: []*assignmentDatamodel.Role{
				{ID: "r1", CustomerID: "c1", Name: "Admin"},
			},
			assigned: []*assignmentDatamodel.RolePermission{
				{ID: "a1", CustomerID: "c1", RoleID: "r1", PermissionID: "p1"},
				{ID: "a2", CustomerID: "c1", RoleID: "r1", PermissionID: "p1"},
				{ID: "a3", CustomerID: "c1", RoleID: "r1", PermissionID: "p2"},
			},
		}
		mockCatalog := &mockCatalogAPI{permissions: []catalog.Permission{
			{ID: "p1", Key: "funktion.beleg.access"},
			{ID: "p2", Key: "funktion.beleg.read"},
		}}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = assignment.NewService(repo, mockCatalog, nil, logger)
		ctx = context.Background()
	})

	Describe("GetState", func() {
		It("returns roles, catalogue and the deduplicated assignment set", func() {
			state, err := service.GetState("c1")
			Expect(err).ToNot(HaveOccurred())
			Expect(state.AssignVersion).To(Equal(int64(3)))
			Expect(state.Roles).To(HaveLen(1))
			Expect(state.Permissions).To(HaveLen(2))
			Expect(state.Assigned).To(ConsistOf("r1:p1", "r1:p2"))
		})

		It("rejects unknown customers", func() {
			_, err := service.GetState("nope")
			Expect(err).To(MatchError(internal.ErrCustomerNotFound))
		})
	})

	Describe("SaveDraft", func() {
		It("applies deltas and bumps the version", func() {
			resp, err := service.SaveDraft(ctx, "c1", &assignment.SaveRequest{
				Changes:       []assignment.Change{{RoleID: "r1", PermissionID: "p2", Allow: false}},
				ClientVersion: version(3),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.OK).To(BeTrue())
			Expect(resp.Saved).To(Equal(1))
			Expect(resp.AssignVersion).To(Equal(int64(4)))
			Expect(repo.applyCalls).To(Equal(1))
		})

		It("prefers a full replacement set when items are present", func() {
			resp, err := service.SaveDraft(ctx, "c1", &assignment.SaveRequest{
				Items: []assignment.Item{{RoleID: "r1", PermissionID: "p1"}},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.Saved).To(Equal(1))
			Expect(repo.replaceCalls).To(Equal(1))
			Expect(repo.lastLock).To(BeFalse())
		})

		It("rejects a stale client version with the server version", func() {
			_, err := service.SaveDraft(ctx, "c1", &assignment.SaveRequest{
				Changes:       []assignment.Change{{RoleID: "r1", PermissionID: "p2", Allow: false}},
				ClientVersion: version(2),
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeVersionConflict))
			Expect(appErr.Details).To(HaveKeyWithValue("serverVersion", int64(3)))
			Expect(repo.applyCalls).To(BeZero())
		})

		It("rejects saves on a locked record", func() {
			now := time.Now()
			repo.customer.LockedAt = &now
			_, err := service.SaveDraft(ctx, "c1", &assignment.SaveRequest{
				Changes: []assignment.Change{{RoleID: "r1", PermissionID: "p2", Allow: false}},
			})
			Expect(err).To(MatchError(internal.ErrRecordLocked))
		})

		It("rejects empty requests", func() {
			_, err := service.SaveDraft(ctx, "c1", &assignment.SaveRequest{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("accepts an explicit empty replacement set", func() {
			resp, err := service.SaveDraft(ctx, "c1", &assignment.SaveRequest{
				Items: []assignment.Item{},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.Saved).To(BeZero())
			Expect(repo.replaceCalls).To(Equal(1))
		})
	})

	Describe("Submit", func() {
		It("replaces the set and locks the record", func() {
			resp, err := service.Submit(ctx, "c1", &assignment.SubmitRequest{
				Items:         []assignment.Item{{RoleID: "r1", PermissionID: "p1"}},
				ClientVersion: version(3),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.OK).To(BeTrue())
			Expect(resp.LockedAt).ToNot(BeNil())
			Expect(repo.lastLock).To(BeTrue())
			Expect(repo.customer.LockedAt).ToNot(BeNil())
		})

		It("refuses a second submit", func() {
			_, err := service.Submit(ctx, "c1", &assignment.SubmitRequest{
				Items: []assignment.Item{},
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Submit(ctx, "c1", &assignment.SubmitRequest{
				Items: []assignment.Item{},
			})
			Expect(err).To(MatchError(internal.ErrRecordLocked))
		})

		It("requires the items field", func() {
			_, err := service.Submit(ctx, "c1", &assignment.SubmitRequest{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})
	})
})
