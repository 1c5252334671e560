package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotConnected is returned by Database.Pool before Connect succeeded.
var ErrNotConnected = errors.New("database is not connected")

// Database owns the process-wide connection pool. Connect opens it once, Close releases it.
type Database struct {
	config DatabaseConfig
	mu     sync.RWMutex
	pool   *pgxpool.Pool
}

// NewDatabase creates a Database that connects with config.
func NewDatabase(config DatabaseConfig) *Database {
	return &Database{config: config}
}

// Connect opens and verifies the pool. A second call is a no-op.
func (d *Database) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pool != nil {
		return nil
	}
	pool, err := NewDatabaseConnection(ctx, d.config)
	if err != nil {
		return err
	}
	d.pool = pool
	return nil
}

// Pool returns the connected pool.
func (d *Database) Pool() (*pgxpool.Pool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.pool == nil {
		return nil, ErrNotConnected
	}
	return d.pool, nil
}

// IsHealthy checks if the database answers a ping.
func (d *Database) IsHealthy(ctx context.Context) bool {
	d.mu.RLock()
	pool := d.pool
	d.mu.RUnlock()
	return NewDatabaseHealthChecker(pool).IsHealthy(ctx)
}

// Close releases the pool. It is safe to call before Connect and more than once.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
	return nil
}
