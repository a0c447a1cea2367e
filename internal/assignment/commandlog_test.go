package assignment_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/slsoft/permission-portal/internal/assignment"
)

var _ = Describe("CommandLog", func() {
	var log *assignment.CommandLog

	BeforeEach(func() {
		log = assignment.NewCommandLog([]string{"r1:p1", "r1:p2"})
	})

	It("starts from the persisted set", func() {
		Expect(log.Has("r1", "p1")).To(BeTrue())
		Expect(log.Has("r1", "p2")).To(BeTrue())
		Expect(log.Has("r2", "p1")).To(BeFalse())
		Expect(log.CanUndo()).To(BeFalse())
		Expect(log.CanRedo()).To(BeFalse())
	})

	It("applies toggles", func() {
		log.Toggle("r2", "p1", true)
		Expect(log.Has("r2", "p1")).To(BeTrue())

		log.Toggle("r1", "p1", false)
		Expect(log.Has("r1", "p1")).To(BeFalse())
	})

	It("skips no-op toggles", func() {
		log.Toggle("r1", "p1", true)
		Expect(log.CanUndo()).To(BeFalse())
	})

	Describe("undo and redo", func() {
		It("reverts and replays in order", func() {
			log.Toggle("r2", "p1", true)
			log.Toggle("r1", "p1", false)

			Expect(log.Undo()).To(BeTrue())
			Expect(log.Has("r1", "p1")).To(BeTrue())

			Expect(log.Undo()).To(BeTrue())
			Expect(log.Has("r2", "p1")).To(BeFalse())

			Expect(log.Undo()).To(BeFalse())

			Expect(log.Redo()).To(BeTrue())
			Expect(log.Has("r2", "p1")).To(BeTrue())

			Expect(log.Redo()).To(BeTrue())
			Expect(log.Has("r1", "p1")).To(BeFalse())

			Expect(log.Redo()).To(BeFalse())
		})

		It("clears the redo stack on a fresh toggle", func() {
			log.Toggle("r2", "p1", true)
			Expect(log.Undo()).To(BeTrue())
			Expect(log.CanRedo()).To(BeTrue())

			log.Toggle("r3", "p1", true)
			Expect(log.CanRedo()).To(BeFalse())
		})
	})

	Describe("PendingChanges", func() {
		It("diffs against the baseline", func() {
			log.Toggle("r2", "p1", true)
			log.Toggle("r1", "p2", false)

			changes := log.PendingChanges()
			Expect(changes).To(ConsistOf(
				assignment.Change{RoleID: "r2", PermissionID: "p1", Allow: true},
				assignment.Change{RoleID: "r1", PermissionID: "p2", Allow: false},
			))
		})

		It("cancels out a toggle and its reversal", func() {
			log.Toggle("r1", "p1", false)
			log.Toggle("r1", "p1", true)
			Expect(log.PendingChanges()).To(BeEmpty())
		})
	})

	Describe("Items", func() {
		It("returns the full current set for submit", func() {
			log.Toggle("r2", "p1", true)
			Expect(log.Items()).To(ConsistOf(
				assignment.Item{RoleID: "r1", PermissionID: "p1"},
				assignment.Item{RoleID: "r1", PermissionID: "p2"},
				assignment.Item{RoleID: "r2", PermissionID: "p1"},
			))
		})
	})

	Describe("Rebase", func() {
		It("replays pending toggles on a fresh server state", func() {
			log.Toggle("r2", "p1", true)
			log.Toggle("r1", "p1", false)

			log.Rebase([]string{"r1:p1", "r1:p2", "r9:p9"})

			Expect(log.Has("r9", "p9")).To(BeTrue())
			Expect(log.Has("r2", "p1")).To(BeTrue())
			Expect(log.Has("r1", "p1")).To(BeFalse())
			Expect(log.PendingChanges()).To(ConsistOf(
				assignment.Change{RoleID: "r2", PermissionID: "p1", Allow: true},
				assignment.Change{RoleID: "r1", PermissionID: "p1", Allow: false},
			))
		})

		It("drops pending toggles the server already has", func() {
			log.Toggle("r2", "p1", true)
			log.Rebase([]string{"r1:p1", "r1:p2", "r2:p1"})
			Expect(log.PendingChanges()).To(BeEmpty())
			Expect(log.CanUndo()).To(BeFalse())
		})
	})
})
