package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/angelmondragon/opspulse-backend/pkg/config"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client wraps the shared GORM connection.
type Client struct {
	conn    *gorm.DB
	dialect string
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New boots a GORM client for the configured driver. sqlite is the default so
// the audit log works on a laptop without any external database.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	dialector, dialect, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}

	applyPoolSettings(sqlDB, cfg, dialect)

	if logg != nil {
		ctx = logg.WithField(ctx, "db_driver", dialect)
		logg.Info(ctx, "database connection established")
	}

	return &Client{conn: conn, dialect: dialect}, nil
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, string, error) {
	if cfg.IsPostgres() {
		return postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		}), config.DBDriverPostgres, nil
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver != "" && driver != config.DBDriverSQLite {
		return nil, "", fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	if dir := sqliteDir(cfg.DSN); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, "", fmt.Errorf("creating sqlite directory: %w", err)
		}
	}
	return sqlite.Open(cfg.DSN), config.DBDriverSQLite, nil
}

// sqliteDir returns the parent directory of a file backed DSN, or "" for
// in-memory databases.
func sqliteDir(dsn string) string {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	path := strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

func applyPoolSettings(sqlDB *sql.DB, cfg config.DBConfig, dialect string) {
	// sqlite serialises writers; a single connection avoids SQLITE_BUSY.
	if dialect == config.DBDriverSQLite {
		sqlDB.SetMaxOpenConns(1)
		return
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

// NewFromGorm wraps an existing connection. Used by tests and tooling that
// open their own handle.
func NewFromGorm(conn *gorm.DB, dialect string) *Client {
	return &Client{conn: conn, dialect: dialect}
}

// DB returns the underlying GORM connection.
func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Dialect names the goose dialect matching the open connection.
func (c *Client) Dialect() string {
	if c.dialect == config.DBDriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close shuts down the pooled connections.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx executes fn inside a transaction, rolling back on error/panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := c.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
