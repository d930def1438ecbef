package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"haircare-backend/internal/shared/storage/db"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				sqlDB, err := connect(cmd.Context())
				if err != nil {
					return err
				}
				defer sqlDB.Close()
				if err := db.RunMigrations(cmd.Context(), sqlDB); err != nil {
					return fmt.Errorf("run migrations: %w", err)
				}
				return printVersion(cmd, sqlDB)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				sqlDB, err := connect(cmd.Context())
				if err != nil {
					return err
				}
				defer sqlDB.Close()
				if err := db.RollbackMigration(cmd.Context(), sqlDB); err != nil {
					return fmt.Errorf("rollback migration: %w", err)
				}
				return printVersion(cmd, sqlDB)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				sqlDB, err := connect(cmd.Context())
				if err != nil {
					return err
				}
				defer sqlDB.Close()
				return printVersion(cmd, sqlDB)
			},
		},
	)
	return cmd
}

func printVersion(cmd *cobra.Command, sqlDB *sql.DB) error {
	version, err := db.MigrationVersion(cmd.Context(), sqlDB)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d\n", version)
	return nil
}
