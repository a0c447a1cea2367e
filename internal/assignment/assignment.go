package assignment

import (
	"time"

	assignmentDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/assignment"
)

// Role as exposed to the client.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func RoleFromDataModel(r *assignmentDatamodel.Role) Role {
	return Role{ID: r.ID, Name: r.Name}
}

// AssignKey is the membership key of the assignment set: "roleID:permissionID".
func AssignKey(roleID, permissionID string) string {
	return roleID + ":" + permissionID
}

// Change is one grant or revoke delta.
type Change struct {
	RoleID       string `json:"roleId"`
	PermissionID string `json:"permissionId"`
	Allow        bool   `json:"allow"`
}

// Item is one entry of a full replacement set.
type Item struct {
	RoleID       string `json:"roleId"`
	PermissionID string `json:"permissionId"`
}

// SaveResult reports the authoritative state after a successful save or
// submit.
type SaveResult struct {
	AssignVersion int64
	DraftSavedAt  time.Time
	LockedAt      *time.Time
}
