package main

import (
	"github.com/spf13/cobra"

	"github.com/CameronXie/canteen-admin/internal/repository/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pool, err := postgres.NewPool(cmd.Context(), cfg.PostgresURL())
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.Migrate(cmd.Context(), pool); err != nil {
			return err
		}

		logger.Info("schema_migrated", "database", cfg.PostgresDB)
		return nil
	},
}
