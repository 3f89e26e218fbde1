package storage

import (
	"context"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

// ProductStorage defines catalog persistence
type ProductStorage interface {
	// SearchProducts returns products matching filter, brand exact matches
	// first, then brand substring matches
	SearchProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)

	// GetProduct retrieves a product by id.
	// Returns ErrProductNotFound if it doesn't exist.
	GetProduct(ctx context.Context, id string) (*models.Product, error)

	// CreateProduct inserts a product, assigning an id if empty
	CreateProduct(ctx context.Context, p *models.Product) error
}
