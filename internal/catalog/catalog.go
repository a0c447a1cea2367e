package catalog

import (
	catalogDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/catalog"
)

// Row is one canonical permission row produced by the CSV parser.
type Row struct {
	Key          string
	Category     string
	CategoryPath []string
	Description  string
	BaseKey      string
	ActionCode   string
}

// Permission is the catalogue entry shape consumed by clients and by the
// tree builder.
type Permission struct {
	ID           string   `json:"id"`
	Key          string   `json:"key"`
	Category     string   `json:"category"`
	CategoryPath []string `json:"categoryPath,omitempty"`
	Description  string   `json:"description"`
}

func FromDataModel(p *catalogDatamodel.Permission) Permission {
	return Permission{
		ID:           p.ID,
		Key:          p.Key,
		Category:     p.Category,
		CategoryPath: p.CategoryPath,
		Description:  p.Description,
	}
}

// ImportSummary reports what an import run did.
type ImportSummary struct {
	Rows    int `json:"rows"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Renamed int `json:"renamed"`
	Merged  int `json:"merged"`
}

// BaseKeyOf returns all dot-segments of a canonical key except the last.
func BaseKeyOf(key string) string {
	ix := lastDot(key)
	if ix < 0 {
		return ""
	}
	return key[:ix]
}

// ActionOf returns the last dot-segment of a canonical key.
func ActionOf(key string) string {
	ix := lastDot(key)
	return key[ix+1:]
}

func lastDot(key string) int {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '.' {
			return i
		}
	}
	return -1
}
