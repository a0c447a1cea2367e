package catalog

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/slsoft/permission-portal/internal/core/events"

	catalogDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/catalog"
)

type RepositoryAPI interface {
	GetAll() ([]*catalogDatamodel.Permission, error)
	Create(p *catalogDatamodel.Permission) error
	Update(p *catalogDatamodel.Permission) error
	Delete(id string) error
	RepointAssignments(fromPermissionID, toPermissionID string) error
	WithinTransaction(fn func(RepositoryAPI) error) error
}

type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// ListPermissions returns the whole catalogue ordered by category, then key.
func (s *Service) ListPermissions() ([]Permission, error) {
	records, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, err
	}

	permissions := make([]Permission, 0, len(records))
	for _, record := range records {
		permissions = append(permissions, FromDataModel(record))
	}
	sort.Slice(permissions, func(i, j int) bool {
		if permissions[i].Category != permissions[j].Category {
			return permissions[i].Category < permissions[j].Category
		}
		return permissions[i].Key < permissions[j].Key
	})
	return permissions, nil
}

// ImportCSV parses the upload and reconciles it against the stored catalogue.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, rows)
}

// Import runs the three-tier reconciliation inside one transaction:
// exact-key update, legacy-variant rename, create - followed by a merge of
// any (baseKey, action) bucket that still holds duplicates. Existing role
// assignments reference permission ids, so updates and renames never orphan
// them; bucket merge re-points them explicitly.
func (s *Service) Import(ctx context.Context, rows []Row) (*ImportSummary, error) {
	summary := &ImportSummary{Rows: len(rows)}

	err := s.repo.WithinTransaction(func(tx RepositoryAPI) error {
		existing, err := tx.GetAll()
		if err != nil {
			return err
		}

		byKey := make(map[string]*catalogDatamodel.Permission, len(existing))
		buckets := make(map[string]map[string][]*catalogDatamodel.Permission)
		addToBucket := func(p *catalogDatamodel.Permission) {
			base := BaseKeyOf(p.Key)
			act := NormalizeToken(ActionOf(p.Key))
			if buckets[base] == nil {
				buckets[base] = make(map[string][]*catalogDatamodel.Permission)
			}
			buckets[base][act] = append(buckets[base][act], p)
		}
		for _, p := range existing {
			byKey[p.Key] = p
			addToBucket(p)
		}

		touched := make(map[string]struct{}, len(rows))

		for _, row := range rows {
			if found := byKey[row.Key]; found != nil {
				found.Category = row.Category
				found.CategoryPath = row.CategoryPath
				found.Description = row.Description
				if err := tx.Update(found); err != nil {
					return err
				}
				touched[found.ID] = struct{}{}
				summary.Updated++
				continue
			}

			base := BaseKeyOf(row.Key)
			act := NormalizeToken(ActionOf(row.Key))
			if variants := buckets[base][act]; len(variants) > 0 {
				legacy := variants[0]
				delete(byKey, legacy.Key)
				legacy.Key = row.Key
				legacy.Category = row.Category
				legacy.CategoryPath = row.CategoryPath
				legacy.Description = row.Description
				if err := tx.Update(legacy); err != nil {
					return err
				}
				byKey[row.Key] = legacy
				touched[legacy.ID] = struct{}{}
				summary.Renamed++
				continue
			}

			created := &catalogDatamodel.Permission{
				Key:          row.Key,
				Category:     row.Category,
				CategoryPath: row.CategoryPath,
				Description:  row.Description,
			}
			if err := tx.Create(created); err != nil {
				return err
			}
			byKey[row.Key] = created
			addToBucket(created)
			touched[created.ID] = struct{}{}
			summary.Created++
		}

		// consolidate leftover duplicates per (baseKey, action) bucket
		for _, actionMap := range buckets {
			for _, list := range actionMap {
				if len(list) <= 1 {
					continue
				}
				survivor := pickSurvivor(list, touched)
				for _, p := range list {
					if p.ID == survivor.ID {
						continue
					}
					if err := tx.RepointAssignments(p.ID, survivor.ID); err != nil {
						return err
					}
					if err := tx.Delete(p.ID); err != nil {
						return err
					}
					summary.Merged++
				}
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("catalog import failed", "error", err, "rows", len(rows))
		return nil, err
	}

	s.logger.Info("catalog import finished",
		"rows", summary.Rows, "created", summary.Created,
		"updated", summary.Updated, "renamed", summary.Renamed, "merged", summary.Merged)

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewBaseEvent(events.EventCatalogImported, map[string]interface{}{
			"rows":    summary.Rows,
			"created": summary.Created,
			"updated": summary.Updated,
			"renamed": summary.Renamed,
			"merged":  summary.Merged,
		}))
	}
	return summary, nil
}

// pickSurvivor prefers a permission touched in this import; ties and the
// untouched case resolve by oldest creation time, then lowest id, so the
// outcome never depends on list order.
func pickSurvivor(list []*catalogDatamodel.Permission, touched map[string]struct{}) *catalogDatamodel.Permission {
	candidates := make([]*catalogDatamodel.Permission, 0, len(list))
	for _, p := range list {
		if _, ok := touched[p.ID]; ok {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = list
	}
	survivor := candidates[0]
	for _, p := range candidates[1:] {
		if p.CreatedAt.Before(survivor.CreatedAt) ||
			(p.CreatedAt.Equal(survivor.CreatedAt) && p.ID < survivor.ID) {
			survivor = p
		}
	}
	return survivor
}

// BackfillCategoryPath fills categoryPath for legacy rows that only carry the
// joined category string.
func (s *Service) BackfillCategoryPath(ctx context.Context) (int, error) {
	updated := 0
	err := s.repo.WithinTransaction(func(tx RepositoryAPI) error {
		all, err := tx.GetAll()
		if err != nil {
			return err
		}
		for _, p := range all {
			if len(p.CategoryPath) > 0 {
				continue
			}
			var parts []string
			if strings.Contains(p.Category, " / ") {
				for _, part := range strings.Split(p.Category, " / ") {
					if t := strings.TrimSpace(part); t != "" {
						parts = append(parts, t)
					}
				}
			} else if p.Category != "" {
				parts = []string{p.Category}
			} else {
				parts = []string{"Allgemein"}
			}
			p.CategoryPath = parts
			if err := tx.Update(p); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("backfill category path failed", "error", err)
		return 0, err
	}
	s.logger.Info("backfill category path finished", "updated", updated)
	return updated, nil
}

// FixDuplicatePrefix repairs keys that were imported with a doubled group
// prefix ("funktion.funktion."), merging into an existing canonical row when
// one is present.
func (s *Service) FixDuplicatePrefix(ctx context.Context, prefix string) (renamed, merged int, err error) {
	doubled := prefix + "." + prefix + "."
	err = s.repo.WithinTransaction(func(tx RepositoryAPI) error {
		all, err := tx.GetAll()
		if err != nil {
			return err
		}
		byKey := make(map[string]*catalogDatamodel.Permission, len(all))
		for _, p := range all {
			byKey[p.Key] = p
		}
		for _, p := range all {
			if !strings.HasPrefix(p.Key, doubled) {
				continue
			}
			corrected := prefix + "." + strings.TrimPrefix(p.Key, doubled)
			if existing := byKey[corrected]; existing != nil && existing.ID != p.ID {
				if err := tx.RepointAssignments(p.ID, existing.ID); err != nil {
					return err
				}
				if err := tx.Delete(p.ID); err != nil {
					return err
				}
				merged++
				continue
			}
			delete(byKey, p.Key)
			p.Key = corrected
			if err := tx.Update(p); err != nil {
				return err
			}
			byKey[corrected] = p
			renamed++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("fix duplicate prefix failed", "error", err, "prefix", prefix)
		return 0, 0, err
	}
	s.logger.Info("fix duplicate prefix finished", "prefix", prefix, "renamed", renamed, "merged", merged)
	return renamed, merged, nil
}
