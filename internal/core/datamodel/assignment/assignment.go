package assignment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is owned by exactly one customer; its name is unique per customer.
type Role struct {
	ID         string    `gorm:"primaryKey"`
	CustomerID string    `gorm:"column:customer_id;index:idx_roles_customer_name,unique;not null"`
	Name       string    `gorm:"column:name;index:idx_roles_customer_name,unique;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// RolePermission records that a role of a customer is granted a permission.
// Composite-unique on (customer, role, permission).
type RolePermission struct {
	ID           string    `gorm:"primaryKey"`
	CustomerID   string    `gorm:"column:customer_id;index:idx_rp_triple,unique;not null"`
	RoleID       string    `gorm:"column:role_id;index:idx_rp_triple,unique;not null"`
	PermissionID string    `gorm:"column:permission_id;index:idx_rp_triple,unique;index;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (rp *RolePermission) BeforeCreate(tx *gorm.DB) error {
	if rp.ID == "" {
		rp.ID = uuid.NewString()
	}
	return nil
}
