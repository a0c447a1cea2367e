package customer

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is the tenant root. LockedAt set means the assignment was finally
// submitted and no customer-side mutation is allowed anymore. AssignVersion
// is the optimistic-concurrency counter bumped on every save or submit.
type Customer struct {
	ID            string     `gorm:"primaryKey"`
	Name          string     `gorm:"column:name;not null"`
	Code          string     `gorm:"column:code;uniqueIndex;not null"`
	Company       string     `gorm:"column:company"`
	ContactName   string     `gorm:"column:contact_name"`
	Email         string     `gorm:"column:email"`
	Phone         string     `gorm:"column:phone"`
	Street        string     `gorm:"column:street"`
	Zip           string     `gorm:"column:zip"`
	City          string     `gorm:"column:city"`
	Country       string     `gorm:"column:country"`
	LockedAt      *time.Time `gorm:"column:locked_at"`
	DraftSavedAt  *time.Time `gorm:"column:draft_saved_at"`
	AssignVersion int64      `gorm:"column:assign_version;default:0"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// AccessCode is a login credential mapped to one customer.
type AccessCode struct {
	ID         string    `gorm:"primaryKey"`
	Code       string    `gorm:"column:code;uniqueIndex;not null"`
	CustomerID string    `gorm:"column:customer_id;index;not null"`
	Active     bool      `gorm:"column:active;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (a *AccessCode) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
