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

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	authPostgres "github.com/frahmantamala/training-management/internal/auth/postgres"
	"github.com/frahmantamala/training-management/internal/core/events"
	"github.com/frahmantamala/training-management/internal/course"
	coursePostgres "github.com/frahmantamala/training-management/internal/course/postgres"
	"github.com/frahmantamala/training-management/internal/dashboard"
	"github.com/frahmantamala/training-management/internal/importer"
	"github.com/frahmantamala/training-management/internal/organization"
	"github.com/frahmantamala/training-management/internal/transport"
	"github.com/frahmantamala/training-management/internal/transport/rest"
	"github.com/frahmantamala/training-management/internal/user"
	userPostgres "github.com/frahmantamala/training-management/internal/user/postgres"
	"github.com/frahmantamala/training-management/internal/workspace"
	"github.com/frahmantamala/training-management/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
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
	Config   *internal.Config
	DB       *Database
	Router   *chi.Mux
	Bus      *events.EventBus
	Sessions *importer.SessionStore
	Manager  *workspace.Manager
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startWorkers(ctx, deps)
	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "driver", deps.Config.Database.DriverName())

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	cancel()
	deps.Bus.Wait()
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(deps.Router, deps.DB.SQL, deps.Handlers, rest.RouterOptions{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		OpenAPIPath:    deps.Config.Server.OpenAPIPath,
		MetricsEnabled: deps.Config.Observability.Metrics.Enabled,
		MetricsPath:    deps.Config.Observability.Metrics.Path,
	}, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	if config.Server.OpenAPIPath != "" {
		doc, err := rest.LoadOpenAPI(context.Background(), config.Server.OpenAPIPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load openapi document: %w", err)
		}
		lg.Info("openapi document loaded", "version", doc.Info.Version, "paths", doc.Paths.Len())
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	taxonomy := organization.NewTaxonomy(organization.FromConfig(config.Organization))
	bus := events.NewEventBus(lg)
	courseRepo := coursePostgres.NewCourseRepository(db.Gorm)

	manager := workspace.NewManager(courseRepo, bus, config.Workspace.RemoteTimeout, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.JWTAccessSecret,
		config.Security.JWTRefreshSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(db.Gorm), tokenGen, config.Security.BCryptCost, lg)
	userService := user.NewService(userPostgres.NewUserRepository(db.Gorm), taxonomy, config.Security.BCryptCost, lg)

	sessions := importer.NewSessionStore(config.Import.SessionTTL, time.Now)
	pipeline := importer.NewPipeline(importer.NewNormalizer(time.Now, uuid.NewString), lg)
	importService := importer.NewService(pipeline, sessions, workspaceCommitters(manager), bus, lg)

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService, lg),
		Organization: organization.NewHandler(transport.NewBaseHandler(lg), taxonomy),
		Course:       course.NewHandler(course.NewService(taxonomy, lg), manager, lg),
		Dashboard:    dashboard.NewHandler(manager, lg),
		Workspace:    workspace.NewHandler(manager, lg),
		Import:       importer.NewHandler(importService, config.Import.MaxUploadBytes, lg),
		User:         user.NewHandler(userService, lg),
	}

	return &Dependencies{
		Config:   config,
		DB:       db,
		Router:   chi.NewRouter(),
		Bus:      bus,
		Sessions: sessions,
		Manager:  manager,
		Handlers: handlers,
		Logger:   lg,
	}, nil
}

// workspaceCommitters commits imports through the caller's workspace so the
// local copy and the store stay in step.
func workspaceCommitters(m *workspace.Manager) importer.CommitterFunc {
	return func(ctx context.Context, p *auth.Principal) (importer.Committer, error) {
		c, err := m.Controller(ctx, p)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
