package cmd

import (
	"context"
	"log"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/slsoft/permission-portal/internal/catalog"
	catalogPostgres "github.com/slsoft/permission-portal/internal/catalog/postgres"
	"github.com/slsoft/permission-portal/internal/core/events"

	assignmentDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/assignment"
	customerDatamodel "github.com/slsoft/permission-portal/internal/core/datamodel/customer"
)

// sampleCatalogue is a small semicolon CSV in the export format of the
// source application, enough to click through every screen.
const sampleCatalogue = `Gruppe;SubGruppe1;SubGruppe2;SubGruppe3;SubGruppe4;SubGruppe5;Berechtigungsname;Erlaubt;Lesen;Bearbeiten;Hinzufügen;Kopieren;Löschen;Drucken;Weitere
Funktion;Auftrag;;;;;Beleg;1;1;1;1;1;1;1;Belege archivieren
Funktion;Auftrag;;;;;Rechnung;1;1;1;1;;1;1;
Daten;Anlagen;;;;;Anlagestamm;1;1;1;;;;;
Daten;;;;;;Adressen;1;1;1;1;1;1;1;Adressen exportieren
Administration;;;;;;Benutzerverwaltung;1;;;;;;;
`

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a demo customer, access code, roles and a small permission catalogue.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, model := range []interface{}{
				&assignmentDatamodel.RolePermission{},
				&assignmentDatamodel.Role{},
				&customerDatamodel.AccessCode{},
				&customerDatamodel.Customer{},
			} {
				if err := db.Where("1 = 1").Delete(model).Error; err != nil {
					log.Fatalf("failed to clear data: %v", err)
				}
			}
			log.Println("cleared customers, roles and assignments")
		}

		seedCatalogue(db)
		customerID := seedCustomer(db)
		seedRoles(db, customerID)
	},
}

func seedCatalogue(db *gorm.DB) {
	service := catalog.NewService(
		catalogPostgres.NewCatalogRepository(db),
		events.NewEventBus(slog.Default()),
		slog.Default())

	summary, err := service.ImportCSV(context.Background(), strings.NewReader(sampleCatalogue))
	if err != nil {
		log.Fatalf("failed to seed catalogue: %v", err)
	}
	log.Printf("seeded catalogue: %d rows, %d created, %d updated", summary.Rows, summary.Created, summary.Updated)
}

func seedCustomer(db *gorm.DB) string {
	var existing customerDatamodel.Customer
	err := db.Where("code = ?", "DEMO").First(&existing).Error
	if err == nil {
		log.Println("demo customer already exists")
		return existing.ID
	}

	demo := &customerDatamodel.Customer{
		Name:    "Demo Treuhand AG",
		Code:    "DEMO",
		Company: "Demo Treuhand AG",
		City:    "Zürich",
		Country: "CH",
	}
	if err := db.Create(demo).Error; err != nil {
		log.Fatalf("failed to seed customer: %v", err)
	}

	code := &customerDatamodel.AccessCode{
		Code:       "DEMO2024",
		CustomerID: demo.ID,
		Active:     true,
	}
	if err := db.Create(code).Error; err != nil {
		log.Fatalf("failed to seed access code: %v", err)
	}

	log.Printf("seeded demo customer %s with access code %s", demo.Name, code.Code)
	return demo.ID
}

func seedRoles(db *gorm.DB, customerID string) {
	for _, name := range []string{"Sachbearbeiter", "Buchhaltung", "Administrator"} {
		var existing assignmentDatamodel.Role
		if err := db.Where("customer_id = ? AND name = ?", customerID, name).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&assignmentDatamodel.Role{
			CustomerID: customerID,
			Name:       name,
		}).Error; err != nil {
			log.Fatalf("failed to seed role %s: %v", name, err)
		}
	}
	log.Println("seeded demo roles")
}
