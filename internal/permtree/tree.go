// Package permtree builds the navigable permission hierarchy shared by every
// presentation surface (sidebar tree, matrix table, compact accordion, PDF
// export). It is pure data shaping with no transport or storage dependency.
package permtree

import (
	"sort"
	"strings"

	"github.com/slsoft/permission-portal/internal/catalog"
)

const (
	// DefaultCategory buckets permissions without any usable category.
	DefaultCategory = "Allgemein"
	// PathSeparator joins category segments into stable node paths.
	PathSeparator = " / "
)

// standardCodes in display order, access first.
var standardCodes = []string{"access", "read", "edit", "create", "copy", "delete", "print"}

var standardSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(standardCodes))
	for _, c := range standardCodes {
		m[c] = struct{}{}
	}
	return m
}()

func IsStandardAction(code string) bool {
	_, ok := standardSet[code]
	return ok
}

// FunctionGroup collects all actions of one function (one baseKey) inside a
// category node.
type FunctionGroup struct {
	BaseKey      string
	Title        string
	CategoryPath []string
	Actions      map[string]catalog.Permission // the seven standard codes
	Extras       map[string]catalog.Permission // everything else
}

// OnlyAccess reports whether the group consists of a bare access permission,
// which renders as a simple allowed/not-allowed toggle.
func (g *FunctionGroup) OnlyAccess() bool {
	if _, ok := g.Actions["access"]; !ok {
		return false
	}
	for code := range g.Actions {
		if code != "access" {
			return false
		}
	}
	return len(g.Extras) == 0
}

// ExtraCodes returns the group's extra action codes sorted for stable output.
func (g *FunctionGroup) ExtraCodes() []string {
	codes := make([]string, 0, len(g.Extras))
	for code := range g.Extras {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Node is one hierarchy level. Nodes live in the tree's arena and reference
// children by index, so the structure is serializable and testable headlessly.
type Node struct {
	Name     string
	Path     string
	Children []int
	Groups   []*FunctionGroup
}

// Tree is an arena of nodes addressed by stable path keys. Nodes[0] is the
// synthetic root.
type Tree struct {
	Nodes []Node
	index map[string]int

	// Collisions counts (baseKey, action) pairs that appeared more than once
	// in the input. The canonicalizer guarantees key uniqueness upstream, so
	// a non-zero count on a raw feed is a data-integrity warning, not an
	// error.
	Collisions int
}

// Root returns the synthetic root node.
func (t *Tree) Root() *Node {
	return &t.Nodes[0]
}

// NodeAt resolves a node by its path ("Daten / Anlagen"). The empty path
// resolves to the root.
func (t *Tree) NodeAt(path string) (*Node, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return t.Root(), true
	}
	ix, ok := t.index[strings.Join(parts, PathSeparator)]
	if !ok {
		return nil, false
	}
	return &t.Nodes[ix], true
}

// ChildrenOf lists the child nodes of the given node in insertion order.
func (t *Tree) ChildrenOf(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, ix := range n.Children {
		children = append(children, &t.Nodes[ix])
	}
	return children
}

// GroupsUnder collects the function groups of the node and all descendants.
func (t *Tree) GroupsUnder(n *Node) []*FunctionGroup {
	var out []*FunctionGroup
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur.Groups...)
		for _, ix := range cur.Children {
			stack = append(stack, &t.Nodes[ix])
		}
	}
	return out
}

// CategoryPathOf prefers the structured categoryPath; the legacy category
// string split on "/" is the fallback, and "Allgemein" the default bucket.
func CategoryPathOf(p catalog.Permission) []string {
	if len(p.CategoryPath) > 0 {
		return p.CategoryPath
	}
	parts := splitPath(p.Category)
	if len(parts) == 0 {
		return []string{DefaultCategory}
	}
	return parts
}

// FunctionTitleOf takes the description part before " – ", falling back to
// the base key's last segment.
func FunctionTitleOf(p catalog.Permission) string {
	if ix := strings.Index(p.Description, " – "); ix > -1 {
		if title := strings.TrimSpace(p.Description[:ix]); title != "" {
			return title
		}
	} else if d := strings.TrimSpace(p.Description); d != "" {
		return d
	}
	base := catalog.BaseKeyOf(p.Key)
	segments := strings.Split(base, ".")
	if last := segments[len(segments)-1]; last != "" {
		return last
	}
	return p.Key
}

func splitPath(s string) []string {
	var parts []string
	for _, part := range strings.Split(s, "/") {
		if t := strings.TrimSpace(part); t != "" {
			parts = append(parts, t)
		}
	}
	return parts
}

// BuildTree organizes the flat permission list into the category hierarchy
// with function groups at the leaves. Duplicate (baseKey, action) pairs
// overwrite earlier entries and are counted as collisions.
func BuildTree(permissions []catalog.Permission) *Tree {
	type groupKey struct {
		catPath string
		baseKey string
	}

	groups := make(map[groupKey]*FunctionGroup)
	var groupOrder []groupKey
	collisions := 0

	for _, p := range permissions {
		catParts := CategoryPathOf(p)
		gk := groupKey{catPath: strings.Join(catParts, PathSeparator), baseKey: catalog.BaseKeyOf(p.Key)}

		g, ok := groups[gk]
		if !ok {
			g = &FunctionGroup{
				BaseKey:      gk.baseKey,
				Title:        FunctionTitleOf(p),
				CategoryPath: catParts,
				Actions:      make(map[string]catalog.Permission),
				Extras:       make(map[string]catalog.Permission),
			}
			groups[gk] = g
			groupOrder = append(groupOrder, gk)
		}

		act := catalog.ActionOf(p.Key)
		if IsStandardAction(act) {
			if _, dup := g.Actions[act]; dup {
				collisions++
			}
			g.Actions[act] = p
		} else {
			if _, dup := g.Extras[act]; dup {
				collisions++
			}
			g.Extras[act] = p
		}
	}

	tree := &Tree{
		Nodes:      []Node{{Name: "", Path: ""}},
		index:      make(map[string]int),
		Collisions: collisions,
	}

	nodeFor := func(parts []string) int {
		if len(parts) == 0 {
			parts = []string{DefaultCategory}
		}
		cur := 0
		agg := make([]string, 0, len(parts))
		for _, part := range parts {
			agg = append(agg, part)
			path := strings.Join(agg, PathSeparator)
			ix, ok := tree.index[path]
			if !ok {
				tree.Nodes = append(tree.Nodes, Node{Name: part, Path: path})
				ix = len(tree.Nodes) - 1
				tree.index[path] = ix
				tree.Nodes[cur].Children = append(tree.Nodes[cur].Children, ix)
			}
			cur = ix
		}
		return cur
	}

	for _, gk := range groupOrder {
		g := groups[gk]
		ix := nodeFor(g.CategoryPath)
		tree.Nodes[ix].Groups = append(tree.Nodes[ix].Groups, g)
	}

	for i := range tree.Nodes {
		node := &tree.Nodes[i]
		sort.Slice(node.Groups, func(a, b int) bool {
			return node.Groups[a].Title < node.Groups[b].Title
		})
	}
	return tree
}

// Column describes one standard action column of a category section.
type Column struct {
	Key   string
	Title string
}

var columnTitles = map[string]string{
	"access": "Erlaubt",
	"read":   "Lesen",
	"edit":   "Bearbeiten",
	"create": "Hinzufügen",
	"copy":   "Kopieren",
	"delete": "Löschen",
	"print":  "Drucken",
}

// VisibleColumns returns the standard action columns shown for a category
// section: a column appears only if at least one group in the section has
// that action, and access is ordered first when present.
func (t *Tree) VisibleColumns(n *Node) []Column {
	present := make(map[string]bool)
	for _, g := range n.Groups {
		for code := range g.Actions {
			present[code] = true
		}
	}
	columns := make([]Column, 0, len(standardCodes))
	for _, code := range standardCodes {
		if present[code] {
			columns = append(columns, Column{Key: code, Title: columnTitles[code]})
		}
	}
	return columns
}
