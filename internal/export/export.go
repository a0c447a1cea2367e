// Package export renders the customer's role/permission matrix as a PDF
// document, either as the customer-facing summary or as the admin variant
// with raw permission keys.
package export

import (
	"sort"

	"github.com/slsoft/permission-portal/internal/assignment"
	"github.com/slsoft/permission-portal/internal/catalog"
	"github.com/slsoft/permission-portal/internal/permtree"
)

type Variant string

const (
	VariantCustomer Variant = "customer"
	VariantAdmin    Variant = "admin"
)

// Document carries everything the renderer needs, pre-shaped and sorted.
type Document struct {
	AppName  string
	Title    string
	Subtitle string
	Variant  Variant

	RoleCount       int
	PermissionCount int

	Sections []Section
}

// Section is one category heading with its function groups.
type Section struct {
	Category string
	Groups   []*permtree.FunctionGroup
}

// RoleNames resolves the role names assigned to a permission, sorted the way
// the roles were loaded.
type RoleNames struct {
	roles    []assignment.Role
	assigned map[string]struct{}
}

func NewRoleNames(roles []assignment.Role, assigned map[string]struct{}) *RoleNames {
	return &RoleNames{roles: roles, assigned: assigned}
}

func (rn *RoleNames) For(permissionID string) []string {
	var names []string
	for _, role := range rn.roles {
		if _, ok := rn.assigned[assignment.AssignKey(role.ID, permissionID)]; ok {
			names = append(names, role.Name)
		}
	}
	return names
}

// ShapeSections groups the catalogue by category path, functions sorted by
// title within each category and categories sorted lexically.
func ShapeSections(permissions []catalog.Permission) []Section {
	tree := permtree.BuildTree(permissions)

	var sections []Section
	for i := range tree.Nodes {
		node := &tree.Nodes[i]
		if len(node.Groups) == 0 {
			continue
		}
		sections = append(sections, Section{
			Category: node.Path,
			Groups:   node.Groups,
		})
	}
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Category < sections[j].Category
	})
	return sections
}
