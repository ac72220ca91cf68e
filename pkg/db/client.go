// Package db opens the shared gorm connection (postgres in production,
// sqlite for local runs and tests).
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type Client struct {
	conn   *gorm.DB
	driver string
}

func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is required")
	}
	driver := driverName(cfg)

	conn, err := gorm.Open(dialector(driver, cfg.DSN), &gorm.Config{
		Logger:                 queryLogger(logg, cfg.SlowQuery),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", driver, err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if logg != nil {
		logg.Info(logg.WithField(ctx, "driver", driver), "database connection established")
	}
	return &Client{conn: conn, driver: driver}, nil
}

func driverName(cfg config.DBConfig) string {
	if strings.EqualFold(cfg.Driver, config.DriverSQLite) || strings.HasPrefix(cfg.DSN, "file:") {
		return config.DriverSQLite
	}
	return config.DriverPostgres
}

func dialector(driver, dsn string) gorm.Dialector {
	if driver == config.DriverSQLite {
		return sqlite.Open(dsn)
	}
	// simple protocol keeps the DSN usable behind pgbouncer transaction pooling
	return postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true})
}

// slowQueryWriter routes gorm's slow-query and error lines into the service log.
type slowQueryWriter struct {
	logg *logger.Logger
}

func (w slowQueryWriter) Printf(format string, args ...any) {
	w.logg.Warn(context.Background(), "db.query "+fmt.Sprintf(format, args...))
}

func queryLogger(logg *logger.Logger, slow time.Duration) gormlogger.Interface {
	if logg == nil || slow <= 0 {
		return gormlogger.Discard
	}
	return gormlogger.New(slowQueryWriter{logg: logg}, gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	})
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

func (c *Client) IsSQLite() bool {
	return c.driver == config.DriverSQLite
}

func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn in a transaction that commits when fn returns nil and rolls
// back on error or panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.conn.WithContext(ctx).Transaction(fn)
}

// SetLockTimeout bounds row-lock waits for the rest of tx. No-op off postgres.
func SetLockTimeout(tx *gorm.DB, timeout time.Duration) error {
	if tx == nil || timeout <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())).Error
}
