// Package database handles database connections, migrations, and seeding.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"medley/internal/config"
	"medley/internal/middleware"
	"medley/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrUnavailable is returned by Handle.Get while the database connection has
// not (yet) been established. Handlers translate it to 503.
var ErrUnavailable = errors.New("database unavailable")

// retryInterval is how long the background connector waits between attempts.
const retryInterval = 5 * time.Second

// Handle is the explicitly-scoped database resource passed to repositories.
// It starts empty when the database is unreachable at boot and is filled in
// by the background connector, so the HTTP listener never waits on it.
type Handle struct {
	mu sync.RWMutex
	db *gorm.DB
}

// Get acquires the connection for one request's worth of statements.
func (h *Handle) Get() (*gorm.DB, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.db == nil {
		return nil, ErrUnavailable
	}
	return h.db, nil
}

// Set installs a live connection.
func (h *Handle) Set(db *gorm.DB) {
	h.mu.Lock()
	h.db = db
	h.mu.Unlock()
}

// Close releases the underlying connection pool.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.db == nil {
		return nil
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	h.db = nil
	return sqlDB.Close()
}

// Wrap builds a Handle around an existing connection. Used by tests.
func Wrap(db *gorm.DB) *Handle {
	h := &Handle{}
	h.Set(db)
	return h
}

// Open connects in the background and returns the Handle immediately.
// A failed first attempt is logged, not fatal: the service comes up degraded
// and data routes answer 503 until a retry succeeds.
func Open(cfg *config.Config) *Handle {
	h := &Handle{}
	go func() {
		for {
			db, err := Connect(cfg)
			if err == nil {
				if err := Bootstrap(db, cfg); err != nil {
					middleware.Logger.Error("database bootstrap failed", slog.String("error", err.Error()))
				}
				h.Set(db)
				middleware.Logger.Info("database connected")
				return
			}
			middleware.Logger.Error("database connection failed, retrying",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", retryInterval))
			time.Sleep(retryInterval)
		}
	}()
	return h
}

// Connect opens a database connection using the provided configuration.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: NewSlogGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

// NewSlogGormLogger returns a GORM logger backed by the application's slog
// logger, warning on slow queries and suppressing record-not-found noise.
func NewSlogGormLogger() logger.Interface {
	return &slogGormLogger{
		logger: middleware.Logger,
		config: logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	}
}

type slogGormLogger struct {
	logger *slog.Logger
	config logger.Config
}

func (l *slogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	copied := *l
	copied.config.LogLevel = level
	return &copied
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.config.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.config.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.config.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.config.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.ErrorContext(ctx, "GORM query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	case elapsed > l.config.SlowThreshold && l.config.SlowThreshold != 0 && l.config.LogLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "GORM slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	case l.config.LogLevel >= logger.Info:
		l.logger.InfoContext(ctx, "GORM query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}

// Migrate creates or updates the schema for all domain models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Media{},
		&models.Comment{},
		&models.Like{},
	)
}
