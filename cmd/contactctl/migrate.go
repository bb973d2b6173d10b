package main

import (
	"fmt"
	"log/slog"

	"github.com/portfolio/backend/internal/migrate"
	"github.com/portfolio/backend/internal/repository"
	"github.com/spf13/cobra"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|fresh|status]",
	Short: "Apply PostgreSQL migrations",
	Long: `up      apply pending migrations (default)
fresh   drop every table, then apply all migrations
status  list migrations and whether they are applied`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "fresh", "status"},
	RunE:      runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "migrations directory (default: ./migrations or ../migrations)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Driver != repository.DriverPostgres {
		return fmt.Errorf("migrations only apply to the postgres driver (STORE_DRIVER=%s)", cfg.Store.Driver)
	}

	ctx := cmd.Context()
	pool, err := repository.NewPool(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer pool.Close()

	dir := migrationsDir
	if dir == "" {
		dir = migrate.FindDir()
	}
	m := migrate.New(pool, dir)

	action := "up"
	if len(args) == 1 {
		action = args[0]
	}
	switch action {
	case "fresh":
		if err := m.DropAll(ctx); err != nil {
			return err
		}
		fallthrough
	case "up":
		n, err := m.Up(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			slog.Info("all migrations already applied")
		} else {
			slog.Info("migrations completed", "count", n)
		}
		return nil
	case "status":
		status, err := m.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range status {
			mark := "pending"
			if s.Applied {
				mark = "applied"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", mark, s.Name)
		}
		return nil
	}
	return fmt.Errorf("unknown migrate action %q", action)
}
