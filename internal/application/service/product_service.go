package service

import (
	"context"
	"io"

	"github.com/httech/pos-api/internal/domain/entity"
	"github.com/httech/pos-api/internal/domain/repository"
)

// ProductService exposes the read-only product catalog.
type ProductService struct {
	catalog repository.ProductCatalog
}

// NewProductService creates a new product service
func NewProductService(catalog repository.ProductCatalog) *ProductService {
	return &ProductService{catalog: catalog}
}

// List returns the full catalog.
func (s *ProductService) List(ctx context.Context) ([]entity.Product, error) {
	return s.catalog.Load(ctx)
}

// Search filters the catalog by a free-text query.
func (s *ProductService) Search(ctx context.Context, query string) ([]entity.Product, error) {
	return s.catalog.Search(ctx, query)
}

// Import replaces the catalog with an uploaded CSV and returns the number
// of products it contained.
func (s *ProductService) Import(ctx context.Context, r io.Reader) (int, error) {
	return s.catalog.Replace(ctx, r)
}
