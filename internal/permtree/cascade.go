package permtree

// actionParents is the fixed partial order between the standard actions.
// Granting an action pulls in every ancestor; revoking one removes every
// transitive descendant. access is independent of all of them.
var actionParents = map[string][]string{
	"read":   {},
	"edit":   {"read"},
	"create": {"edit", "read"},
	"copy":   {"create", "edit", "read"},
	"delete": {"edit", "read"},
	"print":  {"read"},
}

// actionDescendants is the transitive closure of the child relation derived
// from actionParents.
var actionDescendants = buildDescendants()

func buildDescendants() map[string][]string {
	children := make(map[string][]string, len(actionParents))
	for code := range actionParents {
		children[code] = nil
	}
	for child, parents := range actionParents {
		for _, parent := range parents {
			children[parent] = append(children[parent], child)
		}
	}

	closure := make(map[string][]string, len(children))
	for code := range children {
		acc := make(map[string]struct{})
		var visit func(string)
		visit = func(node string) {
			for _, c := range children[node] {
				if _, ok := acc[c]; ok {
					continue
				}
				acc[c] = struct{}{}
				visit(c)
			}
		}
		visit(code)
		out := make([]string, 0, len(acc))
		for c := range acc {
			out = append(out, c)
		}
		closure[code] = out
	}
	return closure
}

// ActionParents exposes the direct parent set of a standard action code.
func ActionParents(code string) []string {
	return actionParents[code]
}

// ActionDescendants exposes the transitive descendant set of a code.
func ActionDescendants(code string) []string {
	return actionDescendants[code]
}

// Toggle is one elementary grant or revoke of a permission.
type Toggle struct {
	PermissionID string
	Allow        bool
}

// CascadeToggle expands a single action toggle on a function group into the
// elementary toggles required by the dependency order. Only permissions the
// group actually has produce toggles; the result is deduplicated.
func CascadeToggle(group *FunctionGroup, actionCode string, allow bool) []Toggle {
	var toggles []Toggle
	add := func(code string, value bool) {
		if p, ok := group.Actions[code]; ok {
			toggles = append(toggles, Toggle{PermissionID: p.ID, Allow: value})
		}
	}

	switch {
	case actionCode == "access":
		// no hierarchy
		add("access", allow)
	case !IsStandardAction(actionCode):
		if p, ok := group.Extras[actionCode]; ok {
			toggles = append(toggles, Toggle{PermissionID: p.ID, Allow: allow})
		}
	case allow:
		for _, parent := range actionParents[actionCode] {
			add(parent, true)
		}
		add(actionCode, true)
	default:
		add(actionCode, false)
		for _, descendant := range actionDescendants[actionCode] {
			add(descendant, false)
		}
	}

	seen := make(map[Toggle]struct{}, len(toggles))
	out := toggles[:0]
	for _, t := range toggles {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
