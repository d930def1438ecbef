package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"haircare-backend/internal/products"
)

// Importer stores catalog products.
type Importer interface {
	Import(ctx context.Context, items []products.Product) (int, error)
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the product catalog",
	}
	var file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert products from a JSON array file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			sqlDB, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			svc := products.NewService(&products.PGRepo{DB: sqlDB}, nil, nil, 0)
			n, err := importCatalog(cmd.Context(), svc, f)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products\n", n)
			return err
		},
	}
	importCmd.Flags().StringVar(&file, "file", "", "Path to a JSON array of products")
	cmd.AddCommand(importCmd)
	return cmd
}

func importCatalog(ctx context.Context, importer Importer, r io.Reader) (int, error) {
	var items []products.Product
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return 0, fmt.Errorf("decode catalog: %w", err)
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("catalog file has no products")
	}
	return importer.Import(ctx, items)
}
