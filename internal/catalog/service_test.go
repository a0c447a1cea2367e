package catalog_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/slsoft/permission-portal/internal/catalog"

	catalogDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/catalog"
)

type repoint struct {
	from, to string
}

type mockCatalogRepository struct {
	perms     map[string]*catalogDatamodel.Permission
	nextID    int
	clock     time.Time
	repoints  []repoint
	getError  error
	saveError error
}

func newMockCatalogRepository() *mockCatalogRepository {
	return &mockCatalogRepository{
		perms:  make(map[string]*catalogDatamodel.Permission),
		nextID: 1,
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *mockCatalogRepository) seed(key string, createdAt time.Time) *catalogDatamodel.Permission {
	p := &catalogDatamodel.Permission{
		ID:        fmt.Sprintf("p%03d", m.nextID),
		Key:       key,
		Category:  "Seed",
		CreatedAt: createdAt,
	}
	m.nextID++
	m.perms[p.ID] = p
	return p
}

func (m *mockCatalogRepository) GetAll() ([]*catalogDatamodel.Permission, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	out := make([]*catalogDatamodel.Permission, 0, len(m.perms))
	for i := 1; i < m.nextID; i++ {
		if p, ok := m.perms[fmt.Sprintf("p%03d", i)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalogRepository) Create(p *catalogDatamodel.Permission) error {
	if m.saveError != nil {
		return m.saveError
	}
	p.ID = fmt.Sprintf("p%03d", m.nextID)
	m.nextID++
	m.clock = m.clock.Add(time.Second)
	p.CreatedAt = m.clock
	m.perms[p.ID] = p
	return nil
}

func (m *mockCatalogRepository) Update(p *catalogDatamodel.Permission) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.perms[p.ID] = p
	return nil
}

func (m *mockCatalogRepository) Delete(id string) error {
	delete(m.perms, id)
	return nil
}

func (m *mockCatalogRepository) RepointAssignments(fromID, toID string) error {
	m.repoints = append(m.repoints, repoint{from: fromID, to: toID})
	return nil
}

func (m *mockCatalogRepository) WithinTransaction(fn func(catalog.RepositoryAPI) error) error {
	return fn(m)
}

func (m *mockCatalogRepository) byKey(key string) *catalogDatamodel.Permission {
	for _, p := range m.perms {
		if p.Key == key {
			return p
		}
	}
	return nil
}

var _ = Describe("Catalog Service", func() {
	var (
		service *catalog.Service
		repo    *mockCatalogRepository
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockCatalogRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = catalog.NewService(repo, nil, logger)
		ctx = context.Background()
	})

	row := func(key, category, description string, path ...string) catalog.Row {
		return catalog.Row{
			Key:          key,
			Category:     category,
			CategoryPath: path,
			Description:  description,
			BaseKey:      catalog.BaseKeyOf(key),
			ActionCode:   catalog.ActionOf(key),
		}
	}

	Describe("Import", func() {
		It("creates every row on an empty catalogue", func() {
			summary, err := service.Import(ctx, []catalog.Row{
				row("funktion.auftrag.beleg.access", "Funktion / Auftrag", "Beleg – Erlaubt", "Funktion", "Auftrag"),
				row("funktion.auftrag.beleg.read", "Funktion / Auftrag", "Beleg – Lesen", "Funktion", "Auftrag"),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.Created).To(Equal(2))
			Expect(summary.Updated).To(BeZero())
			Expect(summary.Renamed).To(BeZero())
			Expect(summary.Merged).To(BeZero())
			Expect(repo.byKey("funktion.auftrag.beleg.access")).ToNot(BeNil())
		})

		It("keeps ids stable across an identical re-import", func() {
			rows := []catalog.Row{
				row("funktion.auftrag.beleg.access", "Funktion / Auftrag", "Beleg – Erlaubt", "Funktion", "Auftrag"),
			}
			_, err := service.Import(ctx, rows)
			Expect(err).ToNot(HaveOccurred())
			firstID := repo.byKey("funktion.auftrag.beleg.access").ID

			summary, err := service.Import(ctx, rows)
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.Updated).To(Equal(1))
			Expect(summary.Created).To(BeZero())
			Expect(repo.byKey("funktion.auftrag.beleg.access").ID).To(Equal(firstID))
		})

		It("refreshes category and description on exact matches", func() {
			existing := repo.seed("funktion.beleg.read", time.Now())
			existing.Description = "old"

			_, err := service.Import(ctx, []catalog.Row{
				row("funktion.beleg.read", "Funktion", "Beleg – Lesen", "Funktion"),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(existing.Description).To(Equal("Beleg – Lesen"))
			Expect(existing.Category).To(Equal("Funktion"))
			Expect([]string(existing.CategoryPath)).To(Equal([]string{"Funktion"}))
		})

		It("renames a legacy variant instead of creating a duplicate", func() {
			legacy := repo.seed("funktion.auftrag.beleg.Belege-Archivieren", time.Now())

			summary, err := service.Import(ctx, []catalog.Row{
				row("funktion.auftrag.beleg.belegearchivieren", "Funktion / Auftrag", "Beleg – Belege archivieren", "Funktion", "Auftrag"),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.Renamed).To(Equal(1))
			Expect(summary.Created).To(BeZero())
			Expect(legacy.Key).To(Equal("funktion.auftrag.beleg.belegearchivieren"))
		})

		It("merges leftover duplicates into the row touched by the import", func() {
			canonical := repo.seed("funktion.beleg.belegdrucken", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
			duplicate := repo.seed("funktion.beleg.Beleg-Drucken", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

			summary, err := service.Import(ctx, []catalog.Row{
				row("funktion.beleg.belegdrucken", "Funktion", "Beleg – Beleg drucken", "Funktion"),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.Merged).To(Equal(1))
			Expect(repo.repoints).To(ConsistOf(repoint{from: duplicate.ID, to: canonical.ID}))
			Expect(repo.perms).ToNot(HaveKey(duplicate.ID))
		})

		It("lets the oldest row survive a merge when none was touched", func() {
			older := repo.seed("daten.adressen.Export", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
			newer := repo.seed("daten.adressen.export", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))

			summary, err := service.Import(ctx, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.Merged).To(Equal(1))
			Expect(repo.repoints).To(ConsistOf(repoint{from: newer.ID, to: older.ID}))
			Expect(repo.perms).To(HaveKey(older.ID))
		})

		It("breaks creation-time ties by lowest id", func() {
			at := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
			first := repo.seed("daten.adressen.Export", at)
			second := repo.seed("daten.adressen.export", at)

			_, err := service.Import(ctx, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(repo.repoints).To(ConsistOf(repoint{from: second.ID, to: first.ID}))
		})
	})

	Describe("BackfillCategoryPath", func() {
		It("derives the path from the joined category string", func() {
			p := repo.seed("daten.anlagen.anlagestamm.read", time.Now())
			p.Category = "Daten / Anlagen"

			updated, err := service.BackfillCategoryPath(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated).To(Equal(1))
			Expect([]string(p.CategoryPath)).To(Equal([]string{"Daten", "Anlagen"}))
		})

		It("falls back to the default category for empty rows", func() {
			p := repo.seed("einzeln.read", time.Now())
			p.Category = ""

			_, err := service.BackfillCategoryPath(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect([]string(p.CategoryPath)).To(Equal([]string{"Allgemein"}))
		})

		It("leaves rows with an existing path alone", func() {
			p := repo.seed("funktion.beleg.read", time.Now())
			p.CategoryPath = catalogDatamodel.StringSlice{"Funktion"}

			updated, err := service.BackfillCategoryPath(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated).To(BeZero())
		})
	})

	Describe("FixDuplicatePrefix", func() {
		It("strips a doubled prefix segment", func() {
			p := repo.seed("funktion.funktion.beleg.access", time.Now())

			renamed, merged, err := service.FixDuplicatePrefix(ctx, "funktion")
			Expect(err).ToNot(HaveOccurred())
			Expect(renamed).To(Equal(1))
			Expect(merged).To(BeZero())
			Expect(p.Key).To(Equal("funktion.beleg.access"))
		})

		It("merges into the canonical row when it already exists", func() {
			canonical := repo.seed("funktion.beleg.access", time.Now())
			doubled := repo.seed("funktion.funktion.beleg.access", time.Now())

			renamed, merged, err := service.FixDuplicatePrefix(ctx, "funktion")
			Expect(err).ToNot(HaveOccurred())
			Expect(renamed).To(BeZero())
			Expect(merged).To(Equal(1))
			Expect(repo.repoints).To(ConsistOf(repoint{from: doubled.ID, to: canonical.ID}))
			Expect(repo.perms).ToNot(HaveKey(doubled.ID))
		})
	})
})
