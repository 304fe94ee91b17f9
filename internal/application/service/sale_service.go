package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/httech/pos-api/internal/domain/entity"
	"github.com/httech/pos-api/internal/domain/enum"
	"github.com/httech/pos-api/internal/domain/repository"
	"github.com/httech/pos-api/pkg/apperror"
	"github.com/httech/pos-api/pkg/money"
)

// SaleService runs the sale transaction pipeline: validate the cart,
// compute totals, persist through the ledger and produce the receipt.
type SaleService struct {
	ledger   repository.SaleLedger
	receipts *ReceiptService
	taxRate  float64
	now      func() time.Time
}

// NewSaleService creates a sale service with the configured tax rate.
func NewSaleService(ledger repository.SaleLedger, receipts *ReceiptService, taxRate float64) *SaleService {
	return &SaleService{
		ledger:   ledger,
		receipts: receipts,
		taxRate:  taxRate,
		now:      time.Now,
	}
}

// SaleItemInput is one cart line as submitted by the client.
type SaleItemInput struct {
	Name     string  `json:"name"`
	Model    string  `json:"model"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CreateSaleInput is the cart payload for a new sale.
type CreateSaleInput struct {
	Items          []SaleItemInput `json:"items"`
	CustomerName   string          `json:"customer_name"`
	CustomerPhone  string          `json:"customer_phone"`
	PaymentMethod  string          `json:"payment_method"`
	DiscountAmount float64         `json:"discount_amount"`
	Note           string          `json:"note"`
}

// CreateSaleResult carries the persisted sale and its receipt artifact.
type CreateSaleResult struct {
	Sale        *entity.Sale
	ReceiptPath string
}

// CreateSale validates the cart, computes totals, persists the sale and
// writes its receipt. All validation happens before any write; a returned
// error other than the receipt path being empty means nothing was persisted.
func (s *SaleService) CreateSale(ctx context.Context, input *CreateSaleInput) (*CreateSaleResult, error) {
	var fieldErrors []apperror.FieldError

	if len(input.Items) == 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field: "items", Message: "at least one item is required",
		})
	}
	for i, item := range input.Items {
		if item.Name == "" {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field: fmt.Sprintf("items[%d].name", i), Message: "is required",
			})
		}
	}
	method, ok := enum.ParsePaymentMethod(input.PaymentMethod)
	if !ok {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field:   "payment_method",
			Message: "must be one of cash, card, mobile_payment, account_payable, bank_transfer",
		})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	lines := make([]money.Line, len(input.Items))
	for i, item := range input.Items {
		lines[i] = money.Line{Quantity: item.Quantity, UnitPrice: money.FromDecimal(item.Price)}
	}
	totals, err := money.ComputeTotals(lines, money.FromDecimal(input.DiscountAmount), s.taxRate)
	if err != nil {
		var verr *money.ValidationError
		if errors.As(err, &verr) {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: verr.Field, Message: verr.Message},
			})
		}
		return nil, err
	}

	items := make([]entity.SaleItem, len(input.Items))
	for i, item := range input.Items {
		items[i] = entity.SaleItem{
			Name:       item.Name,
			Model:      item.Model,
			Quantity:   item.Quantity,
			UnitPrice:  lines[i].UnitPrice,
			TotalPrice: lines[i].Total(),
		}
	}

	sale := &entity.Sale{
		CustomerName:   input.CustomerName,
		CustomerPhone:  input.CustomerPhone,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.Discount,
		TaxAmount:      totals.Tax,
		TotalAmount:    totals.Total,
		PaymentMethod:  method,
		Note:           input.Note,
		CreatedAt:      s.now().Truncate(time.Second),
		Items:          items,
	}

	if err := s.ledger.Append(ctx, sale); err != nil {
		return nil, err
	}

	receiptPath, err := s.receipts.Generate(sale)
	if err != nil {
		// The sale is committed; the receipt can be regenerated from the
		// ledger at any time.
		return &CreateSaleResult{Sale: sale}, err
	}
	return &CreateSaleResult{Sale: sale, ReceiptPath: receiptPath}, nil
}

// ListSales returns sales most recent first, optionally filtered by an
// inclusive sale-date range.
func (s *SaleService) ListSales(ctx context.Context, start, end *time.Time) ([]entity.Sale, error) {
	if start == nil && end == nil {
		return s.ledger.GetAll(ctx)
	}
	return s.ledger.GetByDateRange(ctx, repository.DateRange{Start: start, End: end})
}

// GetSale returns one sale by invoice number.
func (s *SaleService) GetSale(ctx context.Context, invoiceNo string) (*entity.Sale, error) {
	sale, err := s.ledger.GetByInvoice(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale " + invoiceNo)
	}
	return sale, nil
}
