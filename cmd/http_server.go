package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slsoft/permission-portal/internal"
	"github.com/slsoft/permission-portal/internal/assignment"
	assignmentPostgres "github.com/slsoft/permission-portal/internal/assignment/postgres"
	"github.com/slsoft/permission-portal/internal/auth"
	authPostgres "github.com/slsoft/permission-portal/internal/auth/postgres"
	"github.com/slsoft/permission-portal/internal/catalog"
	catalogPostgres "github.com/slsoft/permission-portal/internal/catalog/postgres"
	"github.com/slsoft/permission-portal/internal/core/events"
	"github.com/slsoft/permission-portal/internal/customer"
	customerPostgres "github.com/slsoft/permission-portal/internal/customer/postgres"
	"github.com/slsoft/permission-portal/internal/export"
	"github.com/slsoft/permission-portal/internal/role"
	rolePostgres "github.com/slsoft/permission-portal/internal/role/postgres"
	"github.com/slsoft/permission-portal/internal/transport/rest"
	"github.com/slsoft/permission-portal/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
	Bus    *events.EventBus
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config

	tokens := auth.NewJWTTokenGenerator(cfg.Security.SessionSecret, cfg.Security.SessionDuration)

	authRepo := authPostgres.NewAuthRepository(deps.GormDB)
	catalogRepo := catalogPostgres.NewCatalogRepository(deps.GormDB)
	assignmentRepo := assignmentPostgres.NewAssignmentRepository(deps.GormDB)
	roleRepo := rolePostgres.NewRoleRepository(deps.GormDB)
	customerRepo := customerPostgres.NewCustomerRepository(deps.GormDB)

	catalogService := catalog.NewService(catalogRepo, deps.Bus, deps.Logger)
	assignmentService := assignment.NewService(assignmentRepo, catalogService, deps.Bus, deps.Logger)
	roleService := role.NewService(roleRepo, deps.Logger)
	customerService := customer.NewService(customerRepo, deps.Logger)
	authService := auth.NewService(authRepo, tokens, cfg.Security.AdminPasswordHash, deps.Logger)
	exportService := export.NewService(assignmentRepo, catalogService, os.Getenv("APP_NAME"), deps.Logger)

	handlers := rest.Handlers{
		Auth: auth.NewHandler(authService,
			cfg.Security.CookieName, cfg.Security.SessionDuration, cfg.Security.SecureCookies),
		Assignment: assignment.NewHandler(assignmentService),
		Role:       role.NewHandler(roleService),
		Catalog:    catalog.NewHandler(catalogService, cfg.Import.MaxUploadBytes),
		Customer:   customer.NewHandler(customerService),
		Export:     export.NewHandler(exportService),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, cfg.Server.AllowedOrigins, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(lg)
	audit := events.AuditLogHandler(lg)
	bus.Subscribe(events.EventCatalogImported, audit)
	bus.Subscribe(events.EventAssignmentSaved, audit)
	bus.Subscribe(events.EventAssignmentSubmitted, audit)
	bus.Subscribe(events.EventCustomerLocked, audit)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
		Bus:    bus,
	}, nil
}

// initDB opens the pgx-backed connection pool shared by the ORM and the
// health checker.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
