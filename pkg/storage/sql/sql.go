// Package sql is the relational storage adapter: a database/sql pool over
// the pgx or sqlite3 drivers.
package sql

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/mattn/go-sqlite3"    // registers "sqlite3"

	"github.com/toyz/weaver/pkg/storage"
)

// Config configures the connection pool
type Config struct {
	// Driver is a registered database/sql driver, pgx or sqlite3
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DefaultConfig uses a shared in-memory sqlite database
func DefaultConfig() Config {
	return Config{
		Driver:          "sqlite3",
		DSN:             "file::memory:?cache=shared",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Adapter is the SQL storage adapter
type Adapter = storage.Adapter[*sql.DB, Config]

// Default is the default SQL adapter
var Default storage.DefaultHandle[*sql.DB, Config]

// NewAdapter creates a SQL adapter. Call Initialize to connect.
func NewAdapter() *Adapter {
	return storage.NewAdapter("sql", DefaultConfig(), open, func(db *sql.DB) error {
		return db.Close()
	})
}

func open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if !slices.Contains(sql.Drivers(), cfg.Driver) {
		return nil, fmt.Errorf("unknown sql driver %q", cfg.Driver)
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return db, nil
}

// WithDriver selects the driver
func WithDriver(driver string) storage.Option[Config] {
	return func(cfg *Config) { cfg.Driver = driver }
}

// WithDSN sets the data source name
func WithDSN(dsn string) storage.Option[Config] {
	return func(cfg *Config) { cfg.DSN = dsn }
}

// WithConfig replaces the whole configuration
func WithConfig(c Config) storage.Option[Config] {
	return func(cfg *Config) { *cfg = c }
}

// DB returns the pool of a, or of the default adapter when a is not
// initialized
func DB(a *Adapter) (*sql.DB, error) {
	return Default.Ensure(a)
}

// Tx runs fn in a transaction, committing when fn returns nil
func Tx(ctx context.Context, a *Adapter, fn func(tx *sql.Tx) error) (err error) {
	db, err := DB(a)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
