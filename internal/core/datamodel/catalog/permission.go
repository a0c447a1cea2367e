package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringSlice is stored as a JSON array so the same model works on postgres
// (jsonb) and the sqlite test driver (text).
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported type for StringSlice: %T", value)
	}
}

// Permission is one entry of the global catalogue. Key is the canonical
// dotted identifier group.sub...name.action and is globally unique.
type Permission struct {
	ID           string      `gorm:"primaryKey"`
	Key          string      `gorm:"column:key;uniqueIndex;not null"`
	Category     string      `gorm:"column:category;not null"`
	CategoryPath StringSlice `gorm:"column:category_path;type:text"`
	Description  string      `gorm:"column:description"`
	CreatedAt    time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
