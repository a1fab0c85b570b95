// Package postgres manages the PostgreSQL connection pool and schema
// migrations of the profile row store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/turtacn/hbond-profiler/internal/config"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/migrations"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

// driverName is the database/sql driver registered by pgx/v5/stdlib.
const driverName = "pgx"

const (
	pingTimeout         = 5 * time.Second
	defaultIdleConns    = 2
	defaultConnLifetime = 30 * time.Minute
	poolWarnRatio       = 0.8
)

// sqlOpen is replaced in tests.
var sqlOpen = sql.Open

// Connection owns the profile store's connection pool.
type Connection struct {
	db        *sql.DB
	logger    logging.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewConnection opens the pool described by cfg and verifies it with a ping.
func NewConnection(cfg config.DatabaseConfig, log logging.Logger) (*Connection, error) {
	db, err := sqlOpen(driverName, buildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to open database connection")
	}
	applyPool(db, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed")
	}

	conn := NewConnectionWithDB(db, log)
	conn.logger.Info("profile store connected",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName))
	return conn, nil
}

// NewConnectionWithDB wraps an already open pool.
func NewConnectionWithDB(db *sql.DB, log logging.Logger) *Connection {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Connection{db: db, logger: log}
}

func (c *Connection) DB() *sql.DB        { return c.db }
func (c *Connection) Stats() sql.DBStats { return c.db.Stats() }

// HealthCheck pings the store.  A pool running above poolWarnRatio of its open
// connections is logged but still healthy.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "database health check failed")
	}
	s := c.db.Stats()
	if s.OpenConnections == 0 {
		return nil
	}
	if ratio := float64(s.InUse) / float64(s.OpenConnections); ratio > poolWarnRatio {
		c.logger.Warn("profile store pool nearly exhausted",
			logging.Int("in_use", s.InUse),
			logging.Int("open", s.OpenConnections),
			logging.Float64("ratio", ratio))
	}
	return nil
}

// WithTx runs fn in a transaction, committing on success and rolling back
// when fn fails.  fn's error is returned unchanged.
func (c *Connection) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	if fnErr := fn(tx); fnErr != nil {
		if err := tx.Rollback(); err != nil {
			c.logger.Error("transaction rollback failed", logging.Err(err))
		}
		return fnErr
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit transaction")
	}
	return nil
}

// Close closes the pool once; later calls return the first result.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.db.Close()
		if c.closeErr != nil {
			c.logger.Error("failed to close profile store", logging.Err(c.closeErr))
			return
		}
		c.logger.Info("profile store closed")
	})
	return c.closeErr
}

// RunMigrations applies the pending embedded migrations over the open pool.
// The migrator is left open because closing it would close the pool.
func (c *Connection) RunMigrations() error {
	driver, err := postgres.WithInstance(c.db, &postgres.Config{})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create migration driver")
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to open embedded migrations")
	}
	m, err := migrate.NewWithInstance(sourceName, src, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create migrate instance")
	}

	if err := applyUp(m); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to run migrations")
	}
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		c.logger.Warn("could not read schema version", logging.Err(err))
	}
	c.logger.Info("schema up to date",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty))
	return nil
}

func applyPool(db *sql.DB, cfg config.DatabaseConfig) {
	db.SetMaxOpenConns(positiveOr(cfg.MaxConns, config.DefaultDBMaxConns))
	db.SetMaxIdleConns(positiveOr(cfg.MaxIdleConns, defaultIdleConns))
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = defaultConnLifetime
	}
	db.SetConnMaxLifetime(lifetime)
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// URL returns the postgres:// URL for cfg, as accepted by golang-migrate.
func URL(cfg config.DatabaseConfig) string {
	return buildDSN(cfg)
}

func buildDSN(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q := url.Values{"sslmode": {sslMode}}
	if cfg.StatementTimeout > 0 {
		q.Set("statement_timeout", strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     cfg.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

//Personal.AI order the ending
