package database

import (
	"Launchpad-Backend/internal/config"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultSlowQuery      = 200 * time.Millisecond
	defaultConnectTimeout = 5 * time.Second
	defaultConnLifetime   = time.Hour
)

// NewConnection открывает пул соединений с PostgreSQL. Логи GORM
// пишутся через zap под именем "gorm", медленные запросы на уровне Warn.
func NewConnection(cfg *config.Database, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormLogger(cfg, log),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(connLifetime(cfg.ConnMaxLifetime, log))

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database %s@%s: %w", cfg.DBName, cfg.Host, err)
	}

	log.Info("connected to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.DBName),
		zap.Int("max_open_conns", cfg.MaxOpenConns))

	return db, nil
}

func gormLogger(cfg *config.Database, log *zap.Logger) logger.Interface {
	level := logger.Warn
	if cfg.LogQueries {
		level = logger.Info
	}
	slow := cfg.SlowQuery
	if slow <= 0 {
		slow = defaultSlowQuery
	}
	return logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
		SlowThreshold: slow,
		LogLevel:      level,
		IgnoreRecordNotFoundError: true,
	})
}

func connLifetime(raw string, log *zap.Logger) time.Duration {
	if raw == "" {
		return defaultConnLifetime
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn("invalid conn_max_lifetime, using 1h", zap.String("value", raw), zap.Error(err))
		return defaultConnLifetime
	}
	return d
}

// Close закрывает пул соединений
func Close(db *gorm.DB, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	log.Info("database connection closed")
	return nil
}
