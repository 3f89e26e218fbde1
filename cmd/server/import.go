package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/config"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/storage/sqlite"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/validation"
)

// productCreator is the catalog write used by the importer
type productCreator interface {
	CreateProduct(ctx context.Context, p *models.Product) error
}

func importCmd(load func() (*config.Server, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "import <products.yaml>",
		Short: "Load catalog products from a YAML file",
		Long: `Load catalog products from a YAML list. Keys follow the product JSON
fields: type, brand, name, size, wrapper, length, ring_gauge, abv, vintage.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open catalog: %w", err)
			}
			defer f.Close()

			store, err := sqlite.New(cmd.Context(), cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			n, err := importProducts(cmd.Context(), store, f, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d product(s)\n", n)
			return nil
		},
	}
}

// importProducts validates every product before inserting any of them
func importProducts(ctx context.Context, store productCreator, r io.Reader, progress io.Writer) (int, error) {
	products, err := decodeProducts(r)
	if err != nil {
		return 0, err
	}
	for i, p := range products {
		p.Type = models.ProductType(strings.ToLower(string(p.Type)))
		if err := validation.ValidateProduct(p); err != nil {
			return 0, fmt.Errorf("product #%d (%s %s): %w", i+1, p.Brand, p.Name, err)
		}
	}

	bar := progressbar.NewOptions(len(products),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("Importing products"),
		progressbar.OptionShowCount(),
	)
	for i, p := range products {
		if err := store.CreateProduct(ctx, p); err != nil {
			return i, fmt.Errorf("product #%d (%s %s): %w", i+1, p.Brand, p.Name, err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(progress)
	return len(products), nil
}

// decodeProducts reads a YAML list into products using their JSON field names
func decodeProducts(r io.Reader) ([]*models.Product, error) {
	var raw []map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	// YAML -> JSON, чтобы использовать json-теги модели
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert catalog: %w", err)
	}
	var products []*models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return products, nil
}
