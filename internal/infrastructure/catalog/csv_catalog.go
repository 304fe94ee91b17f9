package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/httech/pos-api/internal/domain/entity"
	"github.com/httech/pos-api/internal/domain/repository"
	"github.com/httech/pos-api/pkg/apperror"
	"github.com/httech/pos-api/pkg/money"
)

// CSVCatalog reads the product list from a single CSV file. Supplier
// exports tend to be messy: leading blank rows before the header and blank
// separator rows between sections are tolerated and skipped.
type CSVCatalog struct {
	path string
	mu   sync.RWMutex
}

// NewCSVCatalog creates a catalog over the given CSV file path.
func NewCSVCatalog(path string) *CSVCatalog {
	return &CSVCatalog{path: path}
}

var _ repository.ProductCatalog = (*CSVCatalog)(nil)

// Load parses the catalog file into products.
func (c *CSVCatalog) Load(ctx context.Context) ([]entity.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.NewNotFoundError("Product catalog file")
		}
		return nil, fmt.Errorf("catalog: open %s: %w", c.path, err)
	}
	defer f.Close()
	return parseProducts(f)
}

// Search filters the catalog by case-insensitive substring match on name,
// model, categories and brands.
func (c *CSVCatalog) Search(ctx context.Context, query string) ([]entity.Product, error) {
	products, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products, nil
	}

	matched := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if containsFold(p.Name, query) ||
			containsFold(p.Model, query) ||
			containsFold(p.Categories, query) ||
			containsFold(p.Brands, query) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Replace validates the uploaded CSV and swaps it in as the new catalog
// file. The write goes through a temp file and rename so a concurrent Load
// never sees a half-written catalog.
func (c *CSVCatalog) Replace(ctx context.Context, r io.Reader) (int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("catalog: read upload: %w", err)
	}
	products, err := parseProducts(bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("catalog: create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "products-*.csv")
	if err != nil {
		return 0, fmt.Errorf("catalog: create temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("catalog: write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("catalog: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("catalog: replace catalog file: %w", err)
	}
	return len(products), nil
}

func parseProducts(r io.Reader) ([]entity.Product, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperror.NewBadRequestError("Could not parse product CSV: " + err.Error())
	}

	// Drop leading empty rows, then take the first remaining row as header.
	for len(rows) > 0 && emptyRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, apperror.NewBadRequestError("Product CSV has no valid header or data")
	}
	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.TrimSpace(name)] = i
	}
	rows = rows[1:]

	field := func(row []string, name string) string {
		i, ok := header[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	products := make([]entity.Product, 0, len(rows))
	for _, row := range rows {
		if emptyRow(row) {
			continue
		}
		products = append(products, entity.Product{
			Name:              field(row, "Name"),
			Model:             field(row, "Model"),
			Specifications:    field(row, "Specifications"),
			PurchasePrice:     money.FromDecimal(parseFloat(field(row, "Purchase Price"))),
			SellingPrice:      money.FromDecimal(parseFloat(field(row, "Selling Price"))),
			WarrantyPeriod:    parseInt(field(row, "Warranty Period")),
			WarrantyType:      defaultString(field(row, "Warranty Type"), "none"),
			Quantity:          parseInt(field(row, "quantity")),
			Categories:        field(row, "Categories"),
			Brands:            field(row, "Brands"),
			Description:       field(row, "Description"),
			Weight:            parseFloat(field(row, "Weight")),
			SupplierInvoiceNo: field(row, "Supplier Invoice No"),
		})
	}
	return products, nil
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func containsFold(haystack, lowered string) bool {
	return strings.Contains(strings.ToLower(haystack), lowered)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
