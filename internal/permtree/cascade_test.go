package permtree_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/slsoft/permission-portal/internal/catalog"
	"github.com/slsoft/permission-portal/internal/permtree"
)

func fullGroup() *permtree.FunctionGroup {
	actions := map[string]catalog.Permission{}
	for _, code := range []string{"access", "read", "edit", "create", "copy", "delete", "print"} {
		actions[code] = catalog.Permission{ID: "id-" + code, Key: "funktion.beleg." + code}
	}
	return &permtree.FunctionGroup{
		BaseKey: "funktion.beleg",
		Title:   "Beleg",
		Actions: actions,
		Extras: map[string]catalog.Permission{
			"belegearchivieren": {ID: "id-extra", Key: "funktion.beleg.belegearchivieren"},
		},
	}
}

func ids(toggles []permtree.Toggle) []string {
	out := make([]string, 0, len(toggles))
	for _, t := range toggles {
		out = append(out, t.PermissionID)
	}
	return out
}

var _ = Describe("CascadeToggle", func() {
	var group *permtree.FunctionGroup

	BeforeEach(func() {
		group = fullGroup()
	})

	Describe("granting", func() {
		It("pulls in all ancestors of copy", func() {
			toggles := permtree.CascadeToggle(group, "copy", true)
			Expect(ids(toggles)).To(ConsistOf("id-copy", "id-create", "id-edit", "id-read"))
			for _, t := range toggles {
				Expect(t.Allow).To(BeTrue())
			}
		})

		It("pulls in edit and read for create", func() {
			toggles := permtree.CascadeToggle(group, "create", true)
			Expect(ids(toggles)).To(ConsistOf("id-create", "id-edit", "id-read"))
		})

		It("grants read alone", func() {
			toggles := permtree.CascadeToggle(group, "read", true)
			Expect(ids(toggles)).To(ConsistOf("id-read"))
		})
	})

	Describe("revoking", func() {
		It("removes all descendants of read", func() {
			toggles := permtree.CascadeToggle(group, "read", false)
			Expect(ids(toggles)).To(ConsistOf(
				"id-read", "id-edit", "id-create", "id-copy", "id-delete", "id-print"))
			for _, t := range toggles {
				Expect(t.Allow).To(BeFalse())
			}
		})

		It("removes create and copy when edit goes", func() {
			toggles := permtree.CascadeToggle(group, "edit", false)
			Expect(ids(toggles)).To(ConsistOf("id-edit", "id-create", "id-copy", "id-delete"))
		})

		It("revokes print alone", func() {
			toggles := permtree.CascadeToggle(group, "print", false)
			Expect(ids(toggles)).To(ConsistOf("id-print"))
		})
	})

	Describe("access", func() {
		It("is independent when granting", func() {
			toggles := permtree.CascadeToggle(group, "access", true)
			Expect(ids(toggles)).To(ConsistOf("id-access"))
		})

		It("is independent when revoking", func() {
			toggles := permtree.CascadeToggle(group, "access", false)
			Expect(ids(toggles)).To(ConsistOf("id-access"))
		})
	})

	Describe("extras", func() {
		It("toggles only the extra permission", func() {
			toggles := permtree.CascadeToggle(group, "belegearchivieren", true)
			Expect(ids(toggles)).To(ConsistOf("id-extra"))
		})

		It("ignores unknown codes", func() {
			Expect(permtree.CascadeToggle(group, "gibtesnicht", true)).To(BeEmpty())
		})
	})

	Describe("sparse groups", func() {
		It("only toggles actions the group has", func() {
			sparse := &permtree.FunctionGroup{
				BaseKey: "funktion.rechnung",
				Actions: map[string]catalog.Permission{
					"read": {ID: "sp-read"},
					"copy": {ID: "sp-copy"},
				},
			}
			toggles := permtree.CascadeToggle(sparse, "copy", true)
			Expect(ids(toggles)).To(ConsistOf("sp-copy", "sp-read"))
		})
	})
})

var _ = Describe("Action order", func() {
	It("exposes parents per code", func() {
		Expect(permtree.ActionParents("copy")).To(ConsistOf("create", "edit", "read"))
		Expect(permtree.ActionParents("read")).To(BeEmpty())
	})

	It("exposes transitive descendants per code", func() {
		Expect(permtree.ActionDescendants("edit")).To(ConsistOf("create", "copy", "delete"))
		Expect(permtree.ActionDescendants("copy")).To(BeEmpty())
	})
})
