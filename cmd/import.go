package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/slsoft/permission-portal/internal/catalog"
	catalogPostgres "github.com/slsoft/permission-portal/internal/catalog/postgres"
	"github.com/slsoft/permission-portal/internal/core/events"
)

var importCmd = &cobra.Command{
	Use:   "import [csv-file]",
	Short: "Import a permission catalogue CSV",
	Long:  `Import a semicolon-delimited permission catalogue export into the database.`,
	Args:  cobra.ExactArgs(1),
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

		file, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("failed to open %s: %v", args[0], err)
		}
		defer file.Close()

		service := catalog.NewService(
			catalogPostgres.NewCatalogRepository(db),
			events.NewEventBus(slog.Default()),
			slog.Default())

		summary, err := service.ImportCSV(context.Background(), file)
		if err != nil {
			log.Fatalf("import failed: %v", err)
		}

		log.Printf("import done: %d rows, %d created, %d updated, %d renamed, %d merged",
			summary.Rows, summary.Created, summary.Updated, summary.Renamed, summary.Merged)
	},
}
