package repository

import (
	"context"
	"io"

	"github.com/httech/pos-api/internal/domain/entity"
)

// ProductCatalog reads the store's product list from its tabular source.
type ProductCatalog interface {
	// Load returns every product in the catalog.
	Load(ctx context.Context) ([]entity.Product, error)

	// Search returns products whose name, model, categories or brands
	// contain the query, case-insensitively. An empty query returns the
	// whole catalog.
	Search(ctx context.Context, query string) ([]entity.Product, error)

	// Replace swaps the catalog source for the uploaded CSV content and
	// returns the number of products it parsed.
	Replace(ctx context.Context, r io.Reader) (int, error)
}
