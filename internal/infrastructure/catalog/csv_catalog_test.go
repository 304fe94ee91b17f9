package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/httech/pos-api/pkg/money"
)

const sampleCSV = `
,,,,,,,,,,,,

Name,Model,Specifications,Purchase Price,Selling Price,Warranty Period,Warranty Type,quantity,Categories,Brands,Description,Weight,Supplier Invoice No
Gaming Mouse,GM-200,8000 DPI,1500,2500,12,months,10,Accessories,Logi,Wired optical mouse,0.12,SUP-991
,,,,,,,,,,,,
Laptop Stand,LS-1,,800,1500,0,,4,Accessories,Generic,Aluminium stand,0.9,SUP-992
`

func writeCatalog(t *testing.T, content string) *CSVCatalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return NewCSVCatalog(path)
}

func TestLoadSkipsEmptyRows(t *testing.T) {
	c := writeCatalog(t, sampleCSV)

	products, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	first := products[0]
	require.Equal(t, "Gaming Mouse", first.Name)
	require.Equal(t, "GM-200", first.Model)
	require.Equal(t, money.FromDecimal(2500), first.SellingPrice)
	require.Equal(t, 12, first.WarrantyPeriod)
	require.Equal(t, 10, first.Quantity)

	// Missing warranty type falls back to "none".
	require.Equal(t, "none", products[1].WarrantyType)
}

func TestLoadMissingFile(t *testing.T) {
	c := NewCSVCatalog(filepath.Join(t.TempDir(), "nope.csv"))

	_, err := c.Load(context.Background())
	require.Error(t, err)
}

func TestSearch(t *testing.T) {
	c := writeCatalog(t, sampleCSV)
	ctx := context.Background()

	byName, err := c.Search(ctx, "gaming")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, "Gaming Mouse", byName[0].Name)

	byBrand, err := c.Search(ctx, "LOGI")
	require.NoError(t, err)
	require.Len(t, byBrand, 1)

	byCategory, err := c.Search(ctx, "accessories")
	require.NoError(t, err)
	require.Len(t, byCategory, 2)

	none, err := c.Search(ctx, "printer")
	require.NoError(t, err)
	require.Empty(t, none)

	all, err := c.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestReplace(t *testing.T) {
	c := writeCatalog(t, sampleCSV)
	ctx := context.Background()

	replacement := `Name,Model,Selling Price,quantity
Webcam,WC-9,4500,3
`
	count, err := c.Replace(ctx, strings.NewReader(replacement))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	products, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Webcam", products[0].Name)
}

func TestReplaceRejectsGarbage(t *testing.T) {
	c := writeCatalog(t, sampleCSV)

	_, err := c.Replace(context.Background(), strings.NewReader("\n \n"))
	require.Error(t, err)

	// Original catalog untouched after a failed replace.
	products, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
}
