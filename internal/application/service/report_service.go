package service

import (
	"context"
	"time"

	"github.com/httech/pos-api/internal/domain/entity"
	"github.com/httech/pos-api/internal/domain/repository"
)

// ReportService composes the ledger's range, summary and export operations
// for the reporting endpoints. It holds no state of its own.
type ReportService struct {
	ledger repository.SaleLedger
}

// NewReportService creates a new report service
func NewReportService(ledger repository.SaleLedger) *ReportService {
	return &ReportService{ledger: ledger}
}

// Summary aggregates the sales between the optional date bounds.
func (s *ReportService) Summary(ctx context.Context, start, end *time.Time) (*entity.SalesSummary, error) {
	return s.ledger.Summarize(ctx, repository.DateRange{Start: start, End: end})
}

// Export writes a CSV export of the range and returns the artifact path.
func (s *ReportService) Export(ctx context.Context, start, end *time.Time) (string, error) {
	return s.ledger.ExportRange(ctx, repository.DateRange{Start: start, End: end})
}
