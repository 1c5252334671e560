package repository

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrator applies the embedded schema migrations.
type Migrator struct {
	pool   *pgxpool.Pool
	schema string
	tx     *TxRunner
}

// NewMigrator creates a migrator for the given schema.
func NewMigrator(pool *pgxpool.Pool, schema string) *Migrator {
	return &Migrator{
		pool:   pool,
		schema: schema,
		tx:     NewTxRunner(pool),
	}
}

// MigrationNames lists the embedded migrations in the order they are applied.
func MigrationNames() ([]string, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Up creates the schema if needed and applies every migration in one transaction.
// It returns the names of the applied migrations.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	names, err := MigrationNames()
	if err != nil {
		return nil, err
	}

	err = m.tx.Run(ctx, func(txCtx context.Context) error {
		qi := querierFor(txCtx, m.pool)
		if m.schema != "" {
			stmt := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q; SET LOCAL search_path TO %q", m.schema, m.schema)
			if _, err := qi.Exec(txCtx, stmt); err != nil {
				return ClassifyError(err, "create schema")
			}
		}
		for _, name := range names {
			raw, err := migrationFS.ReadFile("migrations/" + name)
			if err != nil {
				return fmt.Errorf("read migration %s: %w", name, err)
			}
			if _, err := qi.Exec(txCtx, string(raw)); err != nil {
				return ClassifyError(err, "apply migration "+name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}
