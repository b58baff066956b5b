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

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/mlavigne/client-management/internal"
	"github.com/mlavigne/client-management/internal/access"
	accessPostgres "github.com/mlavigne/client-management/internal/access/postgres"
	"github.com/mlavigne/client-management/internal/client"
	clientPostgres "github.com/mlavigne/client-management/internal/client/postgres"
	"github.com/mlavigne/client-management/internal/codeset"
	codesetPostgres "github.com/mlavigne/client-management/internal/codeset/postgres"
	"github.com/mlavigne/client-management/internal/core/events"
	"github.com/mlavigne/client-management/internal/repository"
	"github.com/mlavigne/client-management/internal/transport/middleware"
	"github.com/mlavigne/client-management/internal/transport/rest"
	"github.com/mlavigne/client-management/pkg/logger"
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
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

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

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	publicKey, err := config.Security.GetPublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to parse jwt public key: %w", err)
	}

	// Event bus carries code-set invalidations from commits to the cache.
	bus := events.NewEventBus(log)

	codeSetStore := codesetPostgres.NewCodeSetStore(gormDB)
	cache := codeset.NewCache(codeSetStore, log)
	cache.SubscribeInvalidation(bus)

	begin := repository.NewTxFactory(gormDB,
		repository.WithNotifier(codeset.NewBusNotifier(bus)),
	)

	codeSetService := codeset.NewService(codeSetStore, cache, begin, log)
	codeSetHandler := codeset.NewHandler(codeSetService, log)

	accessStore := accessPostgres.NewAccessStore(gormDB)
	resolver := access.NewResolver(accessStore, log)
	accessService := access.NewService(accessStore, begin, log)
	accessHandler := access.NewHandler(accessService, resolver, log)

	clientStore := clientPostgres.NewClientStore(gormDB)
	clientService := client.NewService(clientStore, codeSetService, begin, log)
	clientHandler := client.NewHandler(clientService, log)

	verifier := middleware.NewTokenVerifier(publicKey, log)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, verifier, resolver,
		codeSetHandler, clientHandler, accessHandler, log)

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		Router: router,
	}, nil
}

// initDB initializes the database connection
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

// initGorm layers the ORM on the already-pooled *sql.DB so both share one
// pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
