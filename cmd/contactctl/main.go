// Command contactctl runs maintenance tasks for the contact backend:
// schema migrations, admin password hashing and submission export.
package main

import (
	"github.com/portfolio/backend/internal/config"
	"github.com/portfolio/backend/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "contactctl",
	Short:         "Maintenance commands for the portfolio contact backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd, hashPasswordCmd, exportCmd)
}

// loadConfig reads .env and the environment and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.Fatal("contactctl failed", "error", err)
	}
}
