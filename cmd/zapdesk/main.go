package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zapdesk/zapdesk/internal/config"
	"github.com/zapdesk/zapdesk/internal/db"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:   "zapdesk",
		Short: "Multi-tenant WhatsApp helpdesk server",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.toml")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe(cfgPath)
			return nil
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := db.Migrate(cfg.Postgres.DSN()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			return nil
		},
	}

	root.AddCommand(serveCmd, migrateCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
