package commands

import (
	"context"
	"fmt"

	"affiliate-market/internal/config"
	"affiliate-market/internal/database"
	"affiliate-market/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(db database.Service, log *zap.Logger) error {
			if err := database.RunMigrations(db.DB(), log); err != nil {
				return err
			}
			version, err := database.CurrentVersion(db.DB())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(db database.Service, log *zap.Logger) error {
			return database.GetMigrationStatus(db.DB())
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func withDatabase(ctx context.Context, fn func(database.Service, *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.Load()

	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(cfg.Server.Env, level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db, log)
}
