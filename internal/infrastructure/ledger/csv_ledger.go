package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/httech/pos-api/internal/domain/entity"
	"github.com/httech/pos-api/internal/domain/enum"
	"github.com/httech/pos-api/internal/domain/repository"
	"github.com/httech/pos-api/pkg/apperror"
	"github.com/httech/pos-api/pkg/invoice"
	"github.com/httech/pos-api/pkg/money"
)

// Column headers of the two stores. These are external file formats; they
// must stay stable for interoperability with the UI shell and spreadsheets.
var (
	salesColumns = []string{
		"invoice_number", "customer_name", "customer_phone", "subtotal",
		"discount_amount", "tax_amount", "total_amount", "payment_method",
		"sale_date", "sale_time", "created_at", "note",
	}
	itemColumns = []string{
		"invoice_number", "item_name", "item_model", "quantity",
		"unit_price", "total_price", "created_at",
	}
	exportColumns = []string{
		"Invoice Number", "Customer Name", "Customer Phone", "Items",
		"Subtotal", "Discount", "Tax", "Total Amount", "Payment Method",
		"Sale Date", "Sale Time",
	}
)

// invoiceAttempts bounds regeneration when a generated invoice number
// collides with a persisted one.
const invoiceAttempts = 10

// CSVLedger stores sale headers and line items in two correlated CSV files
// joined by invoice_number. Appends are serialized by a single write lock
// with a bounded acquisition timeout; items are flushed before the header
// row so a reader can never join a header to missing items.
type CSVLedger struct {
	salesPath   string
	itemsPath   string
	exportDir   string
	lockTimeout time.Duration

	// capacity-1 semaphore; held for the whole of any append and for the
	// file scans of reads so a scan sees whole sales only.
	lock chan struct{}
}

// NewCSVLedger creates a ledger over the given file paths. Call Initialize
// before first use.
func NewCSVLedger(salesPath, itemsPath, exportDir string, lockTimeout time.Duration) *CSVLedger {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &CSVLedger{
		salesPath:   salesPath,
		itemsPath:   itemsPath,
		exportDir:   exportDir,
		lockTimeout: lockTimeout,
		lock:        make(chan struct{}, 1),
	}
}

var _ repository.SaleLedger = (*CSVLedger)(nil)

// Initialize ensures both store files exist with their column headers. It
// never truncates existing data and is safe to call on every startup.
func (l *CSVLedger) Initialize() error {
	for _, store := range []struct {
		path    string
		columns []string
	}{
		{l.salesPath, salesColumns},
		{l.itemsPath, itemColumns},
	} {
		if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
			return fmt.Errorf("ledger: create store directory: %w", err)
		}
		f, err := os.OpenFile(store.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return fmt.Errorf("ledger: create %s: %w", store.path, err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(store.columns); err != nil {
			f.Close()
			return fmt.Errorf("ledger: write header of %s: %w", store.path, err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return fmt.Errorf("ledger: write header of %s: %w", store.path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("ledger: close %s: %w", store.path, err)
		}
	}
	return nil
}

func (l *CSVLedger) acquire(ctx context.Context) error {
	select {
	case l.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return apperror.ErrStoreBusy
	case <-time.After(l.lockTimeout):
		return apperror.ErrStoreBusy
	}
}

func (l *CSVLedger) release() {
	<-l.lock
}

// Append persists one sale. It assigns sale.InvoiceNumber when empty,
// verifying uniqueness against the header store under the write lock and
// regenerating on collision up to invoiceAttempts times.
func (l *CSVLedger) Append(ctx context.Context, sale *entity.Sale) error {
	if len(sale.Items) == 0 {
		return apperror.NewBadRequestError("A sale must contain at least one item")
	}
	if err := l.acquire(ctx); err != nil {
		return err
	}
	defer l.release()

	existing, err := l.invoiceSet()
	if err != nil {
		return err
	}

	if sale.InvoiceNumber == "" {
		assigned := false
		for attempt := 0; attempt < invoiceAttempts; attempt++ {
			candidate := invoice.Number(sale.CreatedAt)
			if _, taken := existing[candidate]; !taken {
				sale.InvoiceNumber = candidate
				assigned = true
				break
			}
		}
		if !assigned {
			return apperror.NewIDGenerationError()
		}
	} else if _, taken := existing[sale.InvoiceNumber]; taken {
		return apperror.NewAppError(http.StatusConflict,
			"Invoice number "+sale.InvoiceNumber+" already exists")
	}

	for i := range sale.Items {
		sale.Items[i].InvoiceNumber = sale.InvoiceNumber
	}

	// Items first. Until the header row lands, these rows are unreachable
	// by any read path, so a failure here leaves no visible partial sale.
	if err := l.appendItems(sale); err != nil {
		return apperror.NewPartialWriteError(err.Error())
	}
	if err := l.appendHeader(sale); err != nil {
		return apperror.NewPartialWriteError(err.Error())
	}
	return nil
}

func (l *CSVLedger) appendItems(sale *entity.Sale) error {
	f, err := os.OpenFile(l.itemsPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	created := sale.CreatedAt.Format(entity.TimeLayout)
	for _, item := range sale.Items {
		record := []string{
			sale.InvoiceNumber,
			item.Name,
			item.Model,
			strconv.Itoa(item.Quantity),
			item.UnitPrice.String(),
			item.TotalPrice.String(),
			created,
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (l *CSVLedger) appendHeader(sale *entity.Sale) error {
	f, err := os.OpenFile(l.salesPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	record := []string{
		sale.InvoiceNumber,
		sale.CustomerName,
		sale.CustomerPhone,
		sale.Subtotal.String(),
		sale.DiscountAmount.String(),
		sale.TaxAmount.String(),
		sale.TotalAmount.String(),
		string(sale.PaymentMethod),
		sale.SaleDate(),
		sale.SaleTime(),
		sale.CreatedAt.Format(entity.TimeLayout),
		sale.Note,
	}
	if err := w.Write(record); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// GetAll returns every sale with its items joined, most recent first. Sales
// sharing a created_at keep their insertion order.
func (l *CSVLedger) GetAll(ctx context.Context) ([]entity.Sale, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()
	return l.scanJoined()
}

func (l *CSVLedger) scanJoined() ([]entity.Sale, error) {
	sales, err := l.readHeaders()
	if err != nil {
		return nil, err
	}
	itemsByInvoice, err := l.readItemsGrouped()
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Items = itemsByInvoice[sales[i].InvoiceNumber]
	}
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
	return sales, nil
}

// GetByInvoice returns one sale with items, or nil when no header carries
// the invoice number.
func (l *CSVLedger) GetByInvoice(ctx context.Context, invoiceNo string) (*entity.Sale, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()

	sales, err := l.readHeaders()
	if err != nil {
		return nil, err
	}
	for i := range sales {
		if sales[i].InvoiceNumber == invoiceNo {
			items, err := l.readItemsFor(invoiceNo)
			if err != nil {
				return nil, err
			}
			sales[i].Items = items
			return &sales[i], nil
		}
	}
	return nil, nil
}

// GetItemsFor returns the line items stored under an invoice number.
func (l *CSVLedger) GetItemsFor(ctx context.Context, invoiceNo string) ([]entity.SaleItem, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()
	return l.readItemsFor(invoiceNo)
}

// GetByDateRange returns sales whose sale date falls inside the range.
func (l *CSVLedger) GetByDateRange(ctx context.Context, r repository.DateRange) ([]entity.Sale, error) {
	sales, err := l.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]entity.Sale, 0, len(sales))
	for _, sale := range sales {
		if r.Contains(sale.CreatedAt) {
			filtered = append(filtered, sale)
		}
	}
	return filtered, nil
}

// Summarize aggregates count, sums and average over the range.
func (l *CSVLedger) Summarize(ctx context.Context, r repository.DateRange) (*entity.SalesSummary, error) {
	sales, err := l.GetByDateRange(ctx, r)
	if err != nil {
		return nil, err
	}
	summary := &entity.SalesSummary{TotalSales: len(sales)}
	for _, sale := range sales {
		summary.TotalAmount += sale.TotalAmount
		summary.TotalTax += sale.TaxAmount
		summary.TotalDiscount += sale.DiscountAmount
	}
	if summary.TotalSales > 0 {
		summary.AverageSale = summary.TotalAmount / money.Cents(summary.TotalSales)
	}
	return summary, nil
}

// ExportRange writes a flattened one-row-per-sale CSV export and returns its
// path. Each export gets a fresh timestamped file.
func (l *CSVLedger) ExportRange(ctx context.Context, r repository.DateRange) (string, error) {
	sales, err := l.GetByDateRange(ctx, r)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("ledger: create export directory: %w", err)
	}

	f, path, err := l.createExportFile()
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportColumns); err != nil {
		return "", err
	}
	for _, sale := range sales {
		if err := w.Write([]string{
			sale.InvoiceNumber,
			sale.CustomerName,
			sale.CustomerPhone,
			flattenItems(sale.Items),
			sale.Subtotal.String(),
			sale.DiscountAmount.String(),
			sale.TaxAmount.String(),
			sale.TotalAmount.String(),
			string(sale.PaymentMethod),
			sale.SaleDate(),
			sale.SaleTime(),
		}); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// createExportFile opens a new export file, suffixing a counter if two
// exports land within the same second.
func (l *CSVLedger) createExportFile() (*os.File, string, error) {
	stamp := time.Now().Format("2006-01-02_15-04-05")
	for n := 0; ; n++ {
		name := "sales_export_" + stamp + ".csv"
		if n > 0 {
			name = fmt.Sprintf("sales_export_%s_%d.csv", stamp, n)
		}
		path := filepath.Join(l.exportDir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", fmt.Errorf("ledger: create export file: %w", err)
		}
	}
}

func flattenItems(items []entity.SaleItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (Qty: %d, Price: %s)",
			item.Name, item.Quantity, item.UnitPrice.String()))
	}
	return strings.Join(parts, "; ")
}

// invoiceSet reads every persisted invoice number from the header store.
func (l *CSVLedger) invoiceSet() (map[string]struct{}, error) {
	records, err := readRecords(l.salesPath)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(records))
	for _, record := range records {
		if len(record) > 0 {
			set[record[0]] = struct{}{}
		}
	}
	return set, nil
}

func (l *CSVLedger) readHeaders() ([]entity.Sale, error) {
	records, err := readRecords(l.salesPath)
	if err != nil {
		return nil, err
	}
	sales := make([]entity.Sale, 0, len(records))
	for _, record := range records {
		if len(record) < len(salesColumns) {
			continue
		}
		sales = append(sales, entity.Sale{
			InvoiceNumber:  record[0],
			CustomerName:   record[1],
			CustomerPhone:  record[2],
			Subtotal:       parseCents(record[3]),
			DiscountAmount: parseCents(record[4]),
			TaxAmount:      parseCents(record[5]),
			TotalAmount:    parseCents(record[6]),
			PaymentMethod:  enum.PaymentMethod(record[7]),
			CreatedAt:      parseCreatedAt(record[10], record[8], record[9]),
			Note:           record[11],
		})
	}
	return sales, nil
}

func (l *CSVLedger) readItemsGrouped() (map[string][]entity.SaleItem, error) {
	records, err := readRecords(l.itemsPath)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]entity.SaleItem)
	for _, record := range records {
		if len(record) < len(itemColumns) {
			continue
		}
		item := parseItem(record)
		grouped[item.InvoiceNumber] = append(grouped[item.InvoiceNumber], item)
	}
	return grouped, nil
}

func (l *CSVLedger) readItemsFor(invoiceNo string) ([]entity.SaleItem, error) {
	records, err := readRecords(l.itemsPath)
	if err != nil {
		return nil, err
	}
	var items []entity.SaleItem
	for _, record := range records {
		if len(record) < len(itemColumns) || record[0] != invoiceNo {
			continue
		}
		items = append(items, parseItem(record))
	}
	return items, nil
}

func parseItem(record []string) entity.SaleItem {
	qty, _ := strconv.Atoi(strings.TrimSpace(record[3]))
	return entity.SaleItem{
		InvoiceNumber: record[0],
		Name:          record[1],
		Model:         record[2],
		Quantity:      qty,
		UnitPrice:     parseCents(record[4]),
		TotalPrice:    parseCents(record[5]),
	}
}

// readRecords returns the data rows of a store file, skipping its header
// row. A missing file reads as empty so the ledger is usable before the
// first sale.
func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ledger: read %s: %w", path, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func parseCents(s string) money.Cents {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return money.FromDecimal(v)
}

func parseCreatedAt(created, saleDate, saleTime string) time.Time {
	if t, err := time.Parse(entity.TimeLayout, created); err == nil {
		return t
	}
	// Older rows may carry only the split date/time columns.
	if t, err := time.Parse(entity.TimeLayout, saleDate+" "+saleTime); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02", saleDate)
	return t
}
