package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

type productSearch struct {
	Type   string
	Brand  string
	Query  string
	Limit  int
	Offset int
}

func (c *Cli) runProducts(ctx context.Context, opts productSearch) error {
	if opts.Type != "" {
		if _, err := models.ParseProductType(opts.Type); err != nil {
			return err
		}
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	page, err := c.catalog.ListProducts(ctx, token, opts.Type, opts.Brand, opts.Query, opts.Limit, opts.Offset)
	if err != nil {
		return fmt.Errorf("failed to search products: %w", err)
	}

	c.io.Println("=== Products ===")
	if len(page.Products) == 0 {
		c.io.Println("No products found.")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tBRAND\tNAME\tSIZE\tRATING")
	for _, p := range page.Products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1f (%d)\n",
			p.ID, p.Type, p.Brand, p.Name, p.Size, p.AverageRating, p.RatingCount)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(page.Products) == page.Limit {
		c.io.Printf("\nMore results: --offset %d\n", page.Offset+page.Limit)
	}
	return nil
}

func (c *Cli) runRecognize(ctx context.Context, path, productType string) error {
	pt, err := models.ParseProductType(productType)
	if err != nil {
		return err
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	c.io.Println("Analyzing image...")
	result, err := c.catalog.Recognize(ctx, token, filepath.Base(path), f, string(pt))
	if err != nil {
		return fmt.Errorf("recognition failed: %w", err)
	}

	c.io.Println()
	c.io.Println("=== Recognition ===")
	if result.Message != "" {
		c.io.Println(result.Message)
	}
	c.io.Printf("Confidence: %.0f%%\n", result.Confidence*100)
	if result.Brand != "" {
		c.io.Printf("Brand:      %s\n", result.Brand)
	}
	if result.Model != "" {
		c.io.Printf("Model:      %s\n", result.Model)
	}
	if result.Size != "" {
		c.io.Printf("Size:       %s\n", result.Size)
	}
	if result.Wrapper != "" {
		c.io.Printf("Wrapper:    %s\n", result.Wrapper)
	}
	if result.Length > 0 && result.RingGauge > 0 {
		c.io.Printf("Vitola:     %g x %d\n", result.Length, result.RingGauge)
	}

	if len(result.Candidates) == 0 {
		return nil
	}
	c.io.Println()
	c.io.Println("Possible matches:")
	for i, cand := range result.Candidates {
		c.io.Printf("  %d. %s %s [%s] %.0f%%\n", i+1, cand.Product.Brand, cand.Product.Name, cand.Product.ID, cand.Confidence*100)
	}
	return nil
}
