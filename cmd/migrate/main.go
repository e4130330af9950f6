// Command migrate manages the attractions schema and seeds it from the
// built-in feed.
//
//	migrate up
//	migrate down [--steps 1]
//	migrate version
//	migrate seed
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/samirrijal/tourguide/internal/adapters/postgres"
	"github.com/samirrijal/tourguide/internal/adapters/simulated"
	"github.com/samirrijal/tourguide/internal/pkg/config"
	"github.com/samirrijal/tourguide/internal/pkg/logging"
)

var (
	dsn   string
	steps int
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage the TourGuide attractions database",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		if dsn != "" {
			return nil
		}
		cfg, err := config.Load("tourguide-migrate")
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logging.Setup(cfg.Log.Level, cfg.Log.Format)
		dsn = cfg.Database.DSN()
		return nil
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withMigrator(func(m *postgres.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(m)
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withMigrator(func(m *postgres.Migrator) error {
			if err := m.Down(steps); err != nil {
				return err
			}
			return printVersion(m)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withMigrator(printVersion)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the built-in attraction feed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		db, err := postgres.New(ctx, dsn, 2)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()

		attractions, err := simulated.NewFeed().All(ctx)
		if err != nil {
			return err
		}
		if err := postgres.NewAttractionRepo(db.Pool).UpsertBatch(ctx, attractions); err != nil {
			return err
		}
		slog.Info("attractions seeded", "count", len(attractions))
		return nil
	},
}

func withMigrator(fn func(m *postgres.Migrator) error) error {
	m, err := postgres.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			slog.Warn("close migrator", "error", err)
		}
	}()
	return fn(m)
}

func printVersion(m *postgres.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	fmt.Printf("schema version %d (dirty=%t)\n", v, dirty)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "postgres connection URL (default from config)")
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	rootCmd.AddCommand(upCmd, downCmd, versionCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
