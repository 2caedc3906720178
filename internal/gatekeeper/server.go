// Package gatekeeper assembles the access decision service.
package gatekeeper

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/glebarez/sqlite"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/biz"
	"github.com/kart-io/gatekeeper/internal/gatekeeper/router"
	"github.com/kart-io/gatekeeper/internal/gatekeeper/store"
	"github.com/kart-io/gatekeeper/pkg/cache"
	cacheopts "github.com/kart-io/gatekeeper/pkg/options/cache"
	httpopts "github.com/kart-io/gatekeeper/pkg/options/http"
	jwtopts "github.com/kart-io/gatekeeper/pkg/options/jwt"
	logopts "github.com/kart-io/gatekeeper/pkg/options/logger"
	mysqlopts "github.com/kart-io/gatekeeper/pkg/options/mysql"
	redisopts "github.com/kart-io/gatekeeper/pkg/options/redis"
	sqliteopts "github.com/kart-io/gatekeeper/pkg/options/sqlite"
)

// Name is the name of the application.
const Name = "gatekeeper"

// Database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config contains everything needed to assemble the server.
type Config struct {
	HTTPOptions   *httpopts.Options
	LogOptions    *logopts.Options
	JWTOptions    *jwtopts.Options
	CacheOptions  *cacheopts.Options
	MySQLOptions  *mysqlopts.Options
	SQLiteOptions *sqliteopts.Options
	RedisOptions  *redisopts.Options

	// DBDriver selects the restriction store backend.
	DBDriver string

	// AuditWorkers sizes the async audit writer pool.
	AuditWorkers int

	// AdminRoles may manage restrictions and read the audit trail.
	AdminRoles []string
}

// Server is the assembled gatekeeper service.
type Server struct {
	httpSrv         *http.Server
	factory         store.Factory
	auditor         biz.AuditRecorder
	shutdownTimeout time.Duration
}

// NewServer wires the storage, cache, business, and HTTP layers.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	cfg.LogOptions.AddInitialField("service.name", Name)
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting gatekeeper service...")

	db, err := cfg.openDB()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	factory := store.NewFactory(db)
	if err := factory.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("Database migration completed")

	ruleCache, err := cfg.newRuleCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rule cache: %w", err)
	}

	auditor, err := biz.NewAsyncAuditor(factory.Audits(), cfg.AuditWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit writer: %w", err)
	}

	accessService := biz.NewAccessService(factory.Restrictions(), ruleCache, auditor, cfg.CacheOptions.TTL)
	restrictionService := biz.NewRestrictionService(factory.Restrictions(), accessService)
	logger.Info("Business layer initialized")

	engine := router.New(router.Config{
		Access:       accessService,
		Restrictions: restrictionService,
		Audits:       factory.Audits(),
		JWTSecret:    cfg.JWTOptions.Key,
		AdminRoles:   cfg.AdminRoles,
	})

	httpSrv := &http.Server{
		Addr:         cfg.HTTPOptions.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
		WriteTimeout: cfg.HTTPOptions.WriteTimeout,
		IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
	}

	return &Server{
		httpSrv:         httpSrv,
		factory:         factory,
		auditor:         auditor,
		shutdownTimeout: cfg.HTTPOptions.ShutdownTimeout,
	}, nil
}

func (cfg *Config) openDB() (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	switch cfg.DBDriver {
	case DriverSQLite:
		return gorm.Open(sqlite.Open(cfg.SQLiteOptions.Path), gormCfg)
	case DriverMySQL:
		db, err := gorm.Open(mysql.Open(cfg.MySQLOptions.DSN()), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(cfg.MySQLOptions.MaxIdleConnections)
		sqlDB.SetMaxOpenConns(cfg.MySQLOptions.MaxOpenConnections)
		sqlDB.SetConnMaxLifetime(cfg.MySQLOptions.MaxConnectionLifeTime)
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}
}

func (cfg *Config) newRuleCache(ctx context.Context) (cache.Cache[string, biz.Selection], error) {
	switch cfg.CacheOptions.Backend {
	case cacheopts.BackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:         cfg.RedisOptions.Addr(),
			Password:     cfg.RedisOptions.Password,
			DB:           cfg.RedisOptions.Database,
			MaxRetries:   cfg.RedisOptions.MaxRetries,
			PoolSize:     cfg.RedisOptions.PoolSize,
			MinIdleConns: cfg.RedisOptions.MinIdleConns,
			DialTimeout:  cfg.RedisOptions.DialTimeout,
			ReadTimeout:  cfg.RedisOptions.ReadTimeout,
			WriteTimeout: cfg.RedisOptions.WriteTimeout,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return cache.NewRedis[biz.Selection](client, cfg.CacheOptions.KeyPrefix), nil
	default:
		return cache.NewMemory[string, biz.Selection](), nil
	}
}

// Run starts the HTTP server and blocks until a termination signal,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gatekeeper service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("HTTP server shutdown failed", "error", err.Error())
	}

	// Drain pending audit writes before closing storage.
	s.auditor.Close()

	if err := s.factory.Close(); err != nil {
		logger.Errorw("storage close failed", "error", err.Error())
	}

	logger.Info("Gatekeeper service stopped")
	return nil
}
