package cmd

import (
	"context"
	"fmt"

	"userapi/internal/adapter/outbound/repository"
	"userapi/internal/application/common/slogger"

	"github.com/spf13/cobra"
)

// newMigrateCmd creates and returns the migrate command.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Create the configured schema and apply the embedded migrations
(users and posts tables) in a single transaction.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context())
		},
	}
}

func runMigrate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	dbConfig := databaseConfig(GetConfig())

	pool, err := repository.NewDatabaseConnection(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	applied, err := repository.NewMigrator(pool, dbConfig.Schema).Up(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slogger.Info(ctx, "Migrations applied", slogger.Fields{
		"schema":     dbConfig.Schema,
		"migrations": applied,
	})
	return nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newMigrateCmd())
}
