package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotConnected is returned by Connector methods used before Connect or
// after Close.
var ErrNotConnected = errors.New("database: not connected")

type dialFunc func(ctx context.Context, cfg *PostgresConfig, logger *slog.Logger) (Pool, error)

func dialPostgres(ctx context.Context, cfg *PostgresConfig, logger *slog.Logger) (Pool, error) {
	return NewPostgresPool(ctx, cfg, logger)
}

// Connector owns the lifecycle of the Postgres pool. Connect is idempotent and
// safe for concurrent use; every caller after the first gets the same pool.
// A Connector that has been closed can be connected again.
type Connector struct {
	cfg    PostgresConfig
	logger *slog.Logger
	dial   dialFunc

	mu   sync.Mutex
	pool Pool
}

// NewConnector returns an unconnected Connector for cfg.
func NewConnector(cfg PostgresConfig, logger *slog.Logger) *Connector {
	return &Connector{cfg: cfg, logger: logger, dial: dialPostgres}
}

// Connect opens the pool if it is not open yet.
func (c *Connector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		c.logger.DebugContext(ctx, "postgres already connected")
		return nil
	}

	pool, err := c.dial(ctx, &c.cfg, c.logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	c.pool = pool

	c.logger.InfoContext(ctx, "connected to postgres",
		slog.String("host", c.cfg.Host),
		slog.Int("port", c.cfg.Port),
		slog.String("database", c.cfg.DBName),
	)
	return nil
}

// DB returns the open pool.
func (c *Connector) DB() (Pool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool == nil {
		return nil, ErrNotConnected
	}
	return c.pool, nil
}

// PgxPool returns the underlying *pgxpool.Pool when the connector was dialled
// against a real server. It reports false for test doubles.
func (c *Connector) PgxPool() (*pgxpool.Pool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pool.(*pgxpool.Pool)
	return p, ok
}

// Ping checks the pool. It returns ErrNotConnected when Connect has not
// succeeded.
func (c *Connector) Ping(ctx context.Context) error {
	pool, err := c.DB()
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Close releases the pool. Closing an unconnected Connector is a no-op.
func (c *Connector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool == nil {
		return
	}
	c.pool.Close()
	c.pool = nil
	c.logger.Info("postgres connection closed")
}
