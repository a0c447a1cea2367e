package assignment

// Command is one recorded, reversible toggle.
type Command struct {
	RoleID       string
	PermissionID string
	Allow        bool
	prev         bool
}

// CommandLog keeps the assignment set together with undo/redo stacks of
// discrete toggle commands. It is independent of any UI state handling:
// toggles accumulate here until a save flushes the pending deltas.
type CommandLog struct {
	baseline map[string]struct{}
	current  map[string]struct{}
	undo     []Command
	redo     []Command
}

// NewCommandLog starts a log from the persisted assignment set, given as
// "roleID:permissionID" keys.
func NewCommandLog(assigned []string) *CommandLog {
	baseline := make(map[string]struct{}, len(assigned))
	current := make(map[string]struct{}, len(assigned))
	for _, key := range assigned {
		baseline[key] = struct{}{}
		current[key] = struct{}{}
	}
	return &CommandLog{baseline: baseline, current: current}
}

// Has reports current membership.
func (l *CommandLog) Has(roleID, permissionID string) bool {
	_, ok := l.current[AssignKey(roleID, permissionID)]
	return ok
}

// Toggle records and applies one command. A new command clears the redo
// stack. No-op toggles (already in the requested state) are not recorded.
func (l *CommandLog) Toggle(roleID, permissionID string, allow bool) {
	key := AssignKey(roleID, permissionID)
	_, has := l.current[key]
	if has == allow {
		return
	}
	l.apply(key, allow)
	l.undo = append(l.undo, Command{RoleID: roleID, PermissionID: permissionID, Allow: allow, prev: has})
	l.redo = nil
}

// Undo reverts the latest command. Returns false when there is nothing to
// undo.
func (l *CommandLog) Undo() bool {
	if len(l.undo) == 0 {
		return false
	}
	cmd := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	l.apply(AssignKey(cmd.RoleID, cmd.PermissionID), cmd.prev)
	l.redo = append(l.redo, cmd)
	return true
}

// Redo replays the latest undone command. Returns false when there is
// nothing to redo.
func (l *CommandLog) Redo() bool {
	if len(l.redo) == 0 {
		return false
	}
	cmd := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	l.apply(AssignKey(cmd.RoleID, cmd.PermissionID), cmd.Allow)
	l.undo = append(l.undo, cmd)
	return true
}

func (l *CommandLog) CanUndo() bool { return len(l.undo) > 0 }
func (l *CommandLog) CanRedo() bool { return len(l.redo) > 0 }

func (l *CommandLog) apply(key string, member bool) {
	if member {
		l.current[key] = struct{}{}
	} else {
		delete(l.current, key)
	}
}

// PendingChanges diffs the current set against the baseline and returns the
// net deltas, ready for a save request. Toggling back and forth yields no
// delta.
func (l *CommandLog) PendingChanges() []Change {
	var changes []Change
	for key := range l.current {
		if _, was := l.baseline[key]; !was {
			roleID, permissionID := splitKey(key)
			changes = append(changes, Change{RoleID: roleID, PermissionID: permissionID, Allow: true})
		}
	}
	for key := range l.baseline {
		if _, is := l.current[key]; !is {
			roleID, permissionID := splitKey(key)
			changes = append(changes, Change{RoleID: roleID, PermissionID: permissionID, Allow: false})
		}
	}
	return changes
}

// Items returns the complete current set as replacement items for submit.
func (l *CommandLog) Items() []Item {
	items := make([]Item, 0, len(l.current))
	for key := range l.current {
		roleID, permissionID := splitKey(key)
		items = append(items, Item{RoleID: roleID, PermissionID: permissionID})
	}
	return items
}

// Rebase adopts a freshly loaded server state as the new baseline while
// keeping local pending toggles applied on top, used after a version
// conflict forced a reload.
func (l *CommandLog) Rebase(assigned []string) {
	pending := l.PendingChanges()
	baseline := make(map[string]struct{}, len(assigned))
	current := make(map[string]struct{}, len(assigned))
	for _, key := range assigned {
		baseline[key] = struct{}{}
		current[key] = struct{}{}
	}
	l.baseline = baseline
	l.current = current
	l.undo = nil
	l.redo = nil
	for _, ch := range pending {
		l.Toggle(ch.RoleID, ch.PermissionID, ch.Allow)
	}
}

func splitKey(key string) (roleID, permissionID string) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
