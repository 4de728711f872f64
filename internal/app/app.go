package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/catalog/internal/config"
	"github.com/simp-lee/catalog/internal/middleware"
	"github.com/simp-lee/catalog/internal/module/category"
	"github.com/simp-lee/catalog/internal/pkg"
)

const (
	defaultServerTimeout = 30 * time.Second
	shutdownTimeout      = 5 * time.Second
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       4 * timeout,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New wires a ready-to-run App from cfg: logger, database, the category
// gateway, service and handler, middleware and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}

	db, err := config.OpenDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		closeDatabase(db, log.Logger)
	}()

	if cfg.Database.AutoMigrate {
		if err := category.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	catalog, err := newCategoryModule(cfg, db, log.Logger)
	if err != nil {
		return nil, err
	}

	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	corsConfig, err := resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)
	if err != nil {
		return nil, err
	}

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger),
		middleware.CORSWithConfig(corsConfig),
	)

	if cfg.Server.RateLimit.Enabled {
		period, err := time.ParseDuration(cfg.Server.RateLimit.Period)
		if err != nil {
			return nil, fmt.Errorf("parse server.rate_limit.period: %w", err)
		}
		engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Limit:  cfg.Server.RateLimit.Limit,
			Period: period,
		}, log.Logger))
	}

	if err := RegisterRoutes(engine, &RouteDeps{
		Modules: []Module{catalog},
		DB:      db,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// Handler exposes the configured engine, mainly for in-process tests.
func (a *App) Handler() http.Handler {
	return a.engine
}

func newCategoryModule(cfg *config.Config, db *gorm.DB, log *slog.Logger) (*category.CategoryModule, error) {
	policy, err := category.ParseGatewayErrorPolicy(cfg.Catalog.GatewayErrorPolicy)
	if err != nil {
		return nil, fmt.Errorf("catalog.gateway_error_policy: %w", err)
	}

	repo := category.NewCategoryRepository(db)
	svc := category.NewService(repo,
		category.WithErrorPolicy(policy),
		category.WithLogger(log),
	)
	handler := category.NewCategoryHandler(svc, pkg.QueryDefaults{
		PerPage:    cfg.Catalog.DefaultPerPage,
		MaxPerPage: cfg.Catalog.MaxPerPage,
	})
	return category.NewModule(handler), nil
}

// resolveCORSConfig builds the middleware settings from configuration. In
// release mode an empty allowlist denies every cross-origin request.
func resolveCORSConfig(mode string, cfg *config.CORSConfig) (middleware.CORSConfig, error) {
	corsConfig := middleware.DefaultCORSConfig()
	if cfg == nil {
		return corsConfig, nil
	}

	switch {
	case len(cfg.AllowOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		corsConfig.AllowOrigins = []string{}
	}
	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials

	if cfg.MaxAge != "" {
		maxAge, err := time.ParseDuration(cfg.MaxAge)
		if err != nil {
			return middleware.CORSConfig{}, fmt.Errorf("parse server.cors.max_age: %w", err)
		}
		corsConfig.MaxAge = maxAge
	}

	return corsConfig, nil
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

func serverTimeout(value string) time.Duration {
	if value == "" {
		return defaultServerTimeout
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultServerTimeout
	}
	return d
}

func closeDatabase(db *gorm.DB, log *slog.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close error", slog.Any("error", err))
		return
	}
	log.Info("database connection closed")
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM arrives or
// the listener fails. On shutdown it drains in-flight requests for up to
// five seconds, then closes the database and the logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, serverTimeout(a.cfg.Server.Timeout))

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	closeDatabase(a.db, log)

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}
