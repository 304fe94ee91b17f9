package repository

import (
	"context"
	"time"

	"github.com/httech/pos-api/internal/domain/entity"
)

// DateRange filters sales on the calendar-date component of created_at.
// Bounds are inclusive; a nil bound is unbounded on that side.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether the given sale date falls inside the range.
func (r DateRange) Contains(saleDate time.Time) bool {
	day := saleDate.Format("2006-01-02")
	if r.Start != nil && day < r.Start.Format("2006-01-02") {
		return false
	}
	if r.End != nil && day > r.End.Format("2006-01-02") {
		return false
	}
	return true
}

// SaleLedger is the durable append-only store of sale headers and their line
// items. Implementations must guarantee that a reader never observes a
// header without its items, and that invoice numbers are unique across all
// persisted sales.
type SaleLedger interface {
	// Initialize idempotently ensures both stores exist with their column
	// headers. Safe to call on every startup; never truncates data.
	Initialize() error

	// Append assigns sale.InvoiceNumber (verified unique under the write
	// lock) and persists the header with all items. On failure the sale is
	// not persisted.
	Append(ctx context.Context, sale *entity.Sale) error

	// GetAll returns every sale with items joined, ordered by created_at
	// descending; ties keep insertion order.
	GetAll(ctx context.Context) ([]entity.Sale, error)

	// GetByInvoice returns the sale with the given invoice number, or nil
	// when no such sale exists.
	GetByInvoice(ctx context.Context, invoiceNo string) (*entity.Sale, error)

	// GetItemsFor returns the line items recorded under an invoice number.
	GetItemsFor(ctx context.Context, invoiceNo string) ([]entity.SaleItem, error)

	// GetByDateRange returns sales whose sale date falls inside the range,
	// ordered like GetAll.
	GetByDateRange(ctx context.Context, r DateRange) ([]entity.Sale, error)

	// Summarize aggregates the sales in the range. An empty range yields a
	// zero summary, never a division fault.
	Summarize(ctx context.Context, r DateRange) (*entity.SalesSummary, error)

	// ExportRange writes a flattened CSV export of the range to a new
	// timestamped file and returns its path. It never overwrites a prior
	// export.
	ExportRange(ctx context.Context, r DateRange) (string, error)
}
