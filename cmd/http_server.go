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

	"github.com/appealsdesk/appeals-registry/internal"
	"github.com/appealsdesk/appeals-registry/internal/appeal"
	appealPostgres "github.com/appealsdesk/appeals-registry/internal/appeal/postgres"
	"github.com/appealsdesk/appeals-registry/internal/audit"
	auditPostgres "github.com/appealsdesk/appeals-registry/internal/audit/postgres"
	"github.com/appealsdesk/appeals-registry/internal/auth"
	authPostgres "github.com/appealsdesk/appeals-registry/internal/auth/postgres"
	"github.com/appealsdesk/appeals-registry/internal/core/events"
	"github.com/appealsdesk/appeals-registry/internal/group"
	groupPostgres "github.com/appealsdesk/appeals-registry/internal/group/postgres"
	"github.com/appealsdesk/appeals-registry/internal/permission"
	permissionPostgres "github.com/appealsdesk/appeals-registry/internal/permission/postgres"
	"github.com/appealsdesk/appeals-registry/internal/role"
	rolePostgres "github.com/appealsdesk/appeals-registry/internal/role/postgres"
	"github.com/appealsdesk/appeals-registry/internal/transport"
	"github.com/appealsdesk/appeals-registry/internal/transport/rest"
	"github.com/appealsdesk/appeals-registry/internal/user"
	userPostgres "github.com/appealsdesk/appeals-registry/internal/user/postgres"
	"github.com/appealsdesk/appeals-registry/pkg/logger"

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
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

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
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	lg := deps.Logger
	cfg := deps.Config
	baseHandler := transport.NewBaseHandler(lg)

	eventBus := events.NewEventBus(lg)

	auditRepo := auditPostgres.NewAuditRepository(deps.GormDB)
	audit.NewEventHandler(auditRepo, lg).RegisterHandlers(eventBus)
	auditService := audit.NewService(auditRepo, lg)

	permissionRepo := permissionPostgres.NewPermissionRepository(deps.GormDB)
	permissionService := permission.NewService(permissionRepo, lg)

	roleRepo := rolePostgres.NewRoleRepository(deps.GormDB)
	roleService := role.NewService(roleRepo, permissionService, eventBus, lg)

	groupRepo := groupPostgres.NewGroupRepository(deps.GormDB)
	groupService := group.NewService(groupRepo, permissionService, eventBus, lg)

	userRepo := userPostgres.NewUserRepository(deps.GormDB)
	userService := user.NewService(
		userRepo,
		roleService,
		groupService,
		permissionService,
		eventBus,
		lg,
		cfg.Security.BCryptCost,
	)

	appealRepo := appealPostgres.NewAppealRepository(deps.GormDB)
	appealService := appeal.NewService(appealRepo, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authRepo := authPostgres.NewAuthRepository(deps.GormDB)
	authService := auth.NewService(authRepo, tokenGen, lg)

	handlers := rest.Handlers{
		Auth:       auth.NewHandler(baseHandler, authService),
		Permission: permission.NewHandler(baseHandler, permissionService),
		Role:       role.NewHandler(baseHandler, roleService),
		Group:      group.NewHandler(baseHandler, groupService),
		User:       user.NewHandler(baseHandler, userService),
		Appeal:     appeal.NewHandler(baseHandler, appealService),
		Audit:      audit.NewHandler(baseHandler, auditService),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, &cfg.Server, handlers, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

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

// initGorm layers the ORM over the already opened pgx connection pool so the
// repositories and the health check share one pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{})
}
