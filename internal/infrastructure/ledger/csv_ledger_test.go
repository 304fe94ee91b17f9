package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/httech/pos-api/internal/domain/entity"
	"github.com/httech/pos-api/internal/domain/enum"
	"github.com/httech/pos-api/internal/domain/repository"
	"github.com/httech/pos-api/pkg/invoice"
	"github.com/httech/pos-api/pkg/money"
)

func newTestLedger(t *testing.T) *CSVLedger {
	t.Helper()
	dir := t.TempDir()
	l := NewCSVLedger(
		filepath.Join(dir, "sales.csv"),
		filepath.Join(dir, "sales_items.csv"),
		filepath.Join(dir, "exports"),
		time.Second,
	)
	require.NoError(t, l.Initialize())
	return l
}

func testSale(createdAt time.Time) *entity.Sale {
	items := []entity.SaleItem{
		{Name: "Mechanical Keyboard", Model: "K-100", Quantity: 2, UnitPrice: money.FromDecimal(500), TotalPrice: money.FromDecimal(1000)},
		{Name: "USB Hub", Quantity: 1, UnitPrice: money.FromDecimal(1000), TotalPrice: money.FromDecimal(1000)},
	}
	return &entity.Sale{
		CustomerName:   "Ali",
		CustomerPhone:  "0300-1234567",
		Subtotal:       money.FromDecimal(2000),
		DiscountAmount: 0,
		TaxAmount:      money.FromDecimal(320),
		TotalAmount:    money.FromDecimal(2320),
		PaymentMethod:  enum.PaymentCash,
		Note:           "walk-in",
		CreatedAt:      createdAt,
		Items:          items,
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	sale := testSale(time.Now().Truncate(time.Second))
	require.NoError(t, l.Append(ctx, sale))

	// A second Initialize must not truncate what is already stored.
	require.NoError(t, l.Initialize())

	sales, err := l.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
}

func TestAppendAssignsUniqueInvoiceNumber(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	sale := testSale(time.Now().Truncate(time.Second))
	require.NoError(t, l.Append(ctx, sale))
	require.True(t, invoice.Valid(sale.InvoiceNumber))
}

func TestAppendRejectsEmptySale(t *testing.T) {
	l := newTestLedger(t)

	sale := testSale(time.Now())
	sale.Items = nil
	require.Error(t, l.Append(context.Background(), sale))
}

func TestRoundTrip(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	createdAt := time.Date(2024, 6, 1, 14, 5, 9, 0, time.UTC)
	sale := testSale(createdAt)
	require.NoError(t, l.Append(ctx, sale))

	got, err := l.GetByInvoice(ctx, sale.InvoiceNumber)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, sale.Subtotal, got.Subtotal)
	require.Equal(t, sale.DiscountAmount, got.DiscountAmount)
	require.Equal(t, sale.TaxAmount, got.TaxAmount)
	require.Equal(t, sale.TotalAmount, got.TotalAmount)
	require.Equal(t, sale.CustomerName, got.CustomerName)
	require.Equal(t, sale.Note, got.Note)
	require.Equal(t, createdAt.Format(entity.TimeLayout), got.CreatedAt.Format(entity.TimeLayout))
	require.Len(t, got.Items, 2)
	require.Equal(t, sale.Items[0].Name, got.Items[0].Name)
	require.Equal(t, sale.Items[0].Quantity, got.Items[0].Quantity)
	require.Equal(t, sale.Items[0].UnitPrice, got.Items[0].UnitPrice)
	require.Equal(t, sale.Items[1].TotalPrice, got.Items[1].TotalPrice)
}

func TestGetByInvoiceMissing(t *testing.T) {
	l := newTestLedger(t)

	got, err := l.GetByInvoice(context.Background(), "INV-20240101-00000")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestGetAllOrdering(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	older := testSale(base)
	newer := testSale(base.Add(time.Hour))
	tieFirst := testSale(base.Add(2 * time.Hour))
	tieSecond := testSale(base.Add(2 * time.Hour))

	for _, s := range []*entity.Sale{older, newer, tieFirst, tieSecond} {
		require.NoError(t, l.Append(ctx, s))
	}

	sales, err := l.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 4)
	// Most recent first; the two tied sales keep insertion order.
	require.Equal(t, tieFirst.InvoiceNumber, sales[0].InvoiceNumber)
	require.Equal(t, tieSecond.InvoiceNumber, sales[1].InvoiceNumber)
	require.Equal(t, newer.InvoiceNumber, sales[2].InvoiceNumber)
	require.Equal(t, older.InvoiceNumber, sales[3].InvoiceNumber)
}

func TestGetByDateRange(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	may := testSale(time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))
	june := testSale(time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC))
	july := testSale(time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC))
	for _, s := range []*entity.Sale{may, june, july} {
		require.NoError(t, l.Append(ctx, s))
	}

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	inJune, err := l.GetByDateRange(ctx, repository.DateRange{Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, inJune, 1)
	require.Equal(t, june.InvoiceNumber, inJune[0].InvoiceNumber)

	fromJune, err := l.GetByDateRange(ctx, repository.DateRange{Start: &start})
	require.NoError(t, err)
	require.Len(t, fromJune, 2)

	everything, err := l.GetByDateRange(ctx, repository.DateRange{})
	require.NoError(t, err)
	require.Len(t, everything, 3)
}

func TestSummarize(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	first := testSale(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	second := testSale(time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC))
	second.DiscountAmount = money.FromDecimal(100)
	for _, s := range []*entity.Sale{first, second} {
		require.NoError(t, l.Append(ctx, s))
	}

	summary, err := l.Summarize(ctx, repository.DateRange{})
	require.NoError(t, err)
	require.Equal(t, 2, summary.TotalSales)
	require.Equal(t, money.FromDecimal(4640), summary.TotalAmount)
	require.Equal(t, money.FromDecimal(640), summary.TotalTax)
	require.Equal(t, money.FromDecimal(100), summary.TotalDiscount)
	require.Equal(t, money.FromDecimal(2320), summary.AverageSale)
}

func TestSummarizeEmptyRange(t *testing.T) {
	l := newTestLedger(t)

	summary, err := l.Summarize(context.Background(), repository.DateRange{})
	require.NoError(t, err)
	require.Equal(t, 0, summary.TotalSales)
	require.Equal(t, money.Cents(0), summary.TotalAmount)
	require.Equal(t, money.Cents(0), summary.AverageSale)
}

func TestExportRange(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	sale := testSale(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, l.Append(ctx, sale))

	path, err := l.ExportRange(ctx, repository.DateRange{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "Invoice Number,Customer Name")
	require.Contains(t, content, sale.InvoiceNumber)
	require.Contains(t, content, "Mechanical Keyboard (Qty: 2, Price: 500.00); USB Hub (Qty: 1, Price: 1000.00)")

	// A second export must land in a fresh file.
	second, err := l.ExportRange(ctx, repository.DateRange{})
	require.NoError(t, err)
	require.NotEqual(t, path, second)
}

func TestReadsOnMissingStoresAreEmpty(t *testing.T) {
	dir := t.TempDir()
	l := NewCSVLedger(
		filepath.Join(dir, "sales.csv"),
		filepath.Join(dir, "sales_items.csv"),
		filepath.Join(dir, "exports"),
		time.Second,
	)
	// No Initialize on purpose.

	sales, err := l.GetAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, sales)

	items, err := l.GetItemsFor(context.Background(), "INV-20240101-12345")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestConcurrentAppendsKeepInvoicesUniqueAndJoined(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	createdAt := time.Now().Truncate(time.Second)

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- l.Append(ctx, testSale(createdAt))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	sales, err := l.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, sales, writers)

	seen := make(map[string]bool, writers)
	for _, sale := range sales {
		require.False(t, seen[sale.InvoiceNumber], "duplicate invoice %s", sale.InvoiceNumber)
		seen[sale.InvoiceNumber] = true
		require.Len(t, sale.Items, 2, "items must join to exactly one header")
	}

	// Every item row must reference an existing header.
	for inv := range seen {
		items, err := l.GetItemsFor(ctx, inv)
		require.NoError(t, err)
		require.Len(t, items, 2)
	}
}

func TestNoteWithCommasAndQuotesSurvives(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	sale := testSale(time.Now().Truncate(time.Second))
	sale.Note = `urgent, deliver to "warehouse 7"` + "\nsecond line"
	require.NoError(t, l.Append(ctx, sale))

	got, err := l.GetByInvoice(ctx, sale.InvoiceNumber)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, strings.Contains(got.Note, `"warehouse 7"`))
	require.Equal(t, sale.Note, got.Note)
}
