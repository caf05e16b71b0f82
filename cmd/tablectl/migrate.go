package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/kv/postgres"
	"github.com/vncsmyrnk/tablepoll/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the poll_items relation on PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		if cfg.Backend != config.BackendPostgres {
			return fmt.Errorf("migrate needs the %s backend, got %s", config.BackendPostgres, cfg.Backend)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		db, err := postgres.Open(ctx, cfg.PostgresConnString())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "migrations executed successfully")
		return nil
	},
}
