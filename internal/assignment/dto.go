package assignment

import (
	"time"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/catalog"
)

// StateResponse is the full assignment session state fetched by the client.
type StateResponse struct {
	LockedAt      *time.Time           `json:"lockedAt"`
	DraftSavedAt  *time.Time           `json:"draftSavedAt"`
	AssignVersion int64                `json:"assignVersion"`
	Roles         []Role               `json:"roles"`
	Permissions   []catalog.Permission `json:"permissions"`
	Assigned      []string             `json:"assigned"`
}

// SaveRequest carries either deltas or a full replacement set, plus the
// client's last-known version for the optimistic-concurrency check.
type SaveRequest struct {
	Changes       []Change `json:"changes,omitempty"`
	Items         []Item   `json:"items,omitempty"`
	ClientVersion *int64   `json:"clientVersion,omitempty"`
}

func (r *SaveRequest) Validate() error {
	if r.Items != nil {
		for _, it := range r.Items {
			if it.RoleID == "" || it.PermissionID == "" {
				return internal.NewValidationError("items contains invalid entries", internal.ErrCodeValidationFailed)
			}
		}
		return nil
	}
	if len(r.Changes) == 0 {
		return internal.NewValidationError("no changes submitted", internal.ErrCodeValidationFailed)
	}
	for _, ch := range r.Changes {
		if ch.RoleID == "" || ch.PermissionID == "" {
			return internal.NewValidationError("changes contains invalid entries", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

type SaveResponse struct {
	OK            bool       `json:"ok"`
	Saved         int        `json:"saved"`
	DraftSavedAt  *time.Time `json:"draftSavedAt"`
	AssignVersion int64      `json:"assignVersion"`
}

// SubmitRequest writes the final set and locks the record.
type SubmitRequest struct {
	Items         []Item `json:"items"`
	ClientVersion *int64 `json:"clientVersion,omitempty"`
}

func (r *SubmitRequest) Validate() error {
	if r.Items == nil {
		return internal.NewValidationError("items missing", internal.ErrCodeValidationFailed)
	}
	for _, it := range r.Items {
		if it.RoleID == "" || it.PermissionID == "" {
			return internal.NewValidationError("items contains invalid entries", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

type SubmitResponse struct {
	OK            bool       `json:"ok"`
	LockedAt      *time.Time `json:"lockedAt"`
	AssignVersion int64      `json:"assignVersion"`
}
