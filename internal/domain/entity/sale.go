package entity

import (
	"encoding/json"
	"time"

	"github.com/httech/pos-api/internal/domain/enum"
	"github.com/httech/pos-api/pkg/money"
)

// TimeLayout is the second-precision timestamp format persisted to the
// ledger and exposed over the API.
const TimeLayout = "2006-01-02 15:04:05"

// Sale is the aggregate record of one completed transaction. Once persisted
// it is immutable: the ledger defines no update or delete operation.
type Sale struct {
	InvoiceNumber  string             `json:"invoice_number"`
	CustomerName   string             `json:"customer_name,omitempty"`
	CustomerPhone  string             `json:"customer_phone,omitempty"`
	Subtotal       money.Cents        `json:"-"`
	DiscountAmount money.Cents        `json:"-"`
	TaxAmount      money.Cents        `json:"-"`
	TotalAmount    money.Cents        `json:"-"`
	PaymentMethod  enum.PaymentMethod `json:"payment_method"`
	Note           string             `json:"note,omitempty"`
	CreatedAt      time.Time          `json:"-"`
	Items          []SaleItem         `json:"items"`
}

// SaleItem is one product line within a sale.
type SaleItem struct {
	InvoiceNumber string      `json:"-"`
	Name          string      `json:"name"`
	Model         string      `json:"model,omitempty"`
	Quantity      int         `json:"quantity"`
	UnitPrice     money.Cents `json:"-"`
	TotalPrice    money.Cents `json:"-"`
}

// SaleDate returns the calendar-date component of CreatedAt.
func (s *Sale) SaleDate() string {
	return s.CreatedAt.Format("2006-01-02")
}

// SaleTime returns the time-of-day component of CreatedAt.
func (s *Sale) SaleTime() string {
	return s.CreatedAt.Format("15:04:05")
}

// MarshalJSON converts cents to decimal amounts and expands the derived
// sale_date/sale_time fields for API responses.
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		Subtotal       float64 `json:"subtotal"`
		DiscountAmount float64 `json:"discount_amount"`
		TaxAmount      float64 `json:"tax_amount"`
		TotalAmount    float64 `json:"total_amount"`
		SaleDate       string  `json:"sale_date"`
		SaleTime       string  `json:"sale_time"`
		CreatedAt      string  `json:"created_at"`
	}{
		Alias:          Alias(s),
		Subtotal:       s.Subtotal.Decimal(),
		DiscountAmount: s.DiscountAmount.Decimal(),
		TaxAmount:      s.TaxAmount.Decimal(),
		TotalAmount:    s.TotalAmount.Decimal(),
		SaleDate:       s.SaleDate(),
		SaleTime:       s.SaleTime(),
		CreatedAt:      s.CreatedAt.Format(TimeLayout),
	})
}

// MarshalJSON converts cents to decimal amounts for API responses.
func (i SaleItem) MarshalJSON() ([]byte, error) {
	type Alias SaleItem
	return json.Marshal(&struct {
		Alias
		UnitPrice  float64 `json:"price"`
		TotalPrice float64 `json:"total_price"`
	}{
		Alias:      Alias(i),
		UnitPrice:  i.UnitPrice.Decimal(),
		TotalPrice: i.TotalPrice.Decimal(),
	})
}

// SalesSummary aggregates a collection of sales for reporting.
type SalesSummary struct {
	TotalSales    int         `json:"total_sales"`
	TotalAmount   money.Cents `json:"-"`
	TotalTax      money.Cents `json:"-"`
	TotalDiscount money.Cents `json:"-"`
	AverageSale   money.Cents `json:"-"`
}

// MarshalJSON converts cents to decimal amounts for API responses.
func (s SalesSummary) MarshalJSON() ([]byte, error) {
	type Alias SalesSummary
	return json.Marshal(&struct {
		Alias
		TotalAmount   float64 `json:"total_amount"`
		TotalTax      float64 `json:"total_tax"`
		TotalDiscount float64 `json:"total_discount"`
		AverageSale   float64 `json:"average_sale"`
	}{
		Alias:         Alias(s),
		TotalAmount:   s.TotalAmount.Decimal(),
		TotalTax:      s.TotalTax.Decimal(),
		TotalDiscount: s.TotalDiscount.Decimal(),
		AverageSale:   s.AverageSale.Decimal(),
	})
}
