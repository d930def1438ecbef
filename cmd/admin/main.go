// Command admin runs operational tasks: schema migrations and catalog imports.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"haircare-backend/internal/shared/config"
	"haircare-backend/internal/shared/storage/db"
)

var databaseURL string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Operational commands for the hair-care backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")
	root.AddCommand(newMigrateCmd(), newCatalogCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*sql.DB, error) {
	url := databaseURL
	if url == "" {
		url = config.Load().DatabaseURL
	}
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL or --database-url is required")
	}
	return db.Connect(ctx, url, db.OptionsFromEnv(db.DefaultMigrateOptions()))
}
