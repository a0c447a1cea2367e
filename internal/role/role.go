package role

import (
	"time"

	assignmentDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/assignment"
)

type Role struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"-"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func FromDataModel(r *assignmentDatamodel.Role) *Role {
	return &Role{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		Name:       r.Name,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (r *Role) ToDataModel() *assignmentDatamodel.Role {
	return &assignmentDatamodel.Role{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		Name:       r.Name,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
