package money

import (
	"fmt"
	"math"
)

// Cents is a monetary amount in integer cents. All arithmetic in the sale
// pipeline happens on Cents so repeated runs over the same cart can never
// drift the way float accumulation would.
type Cents int64

// FromDecimal converts a decimal amount (e.g. 12.34) to Cents, rounding to
// the nearest cent.
func FromDecimal(v float64) Cents {
	return Cents(math.Round(v * 100))
}

// Decimal returns the amount as a decimal value for JSON responses.
func (c Cents) Decimal() float64 {
	return float64(c) / 100
}

// Whole returns the amount rounded to the nearest whole currency unit.
// Receipts display whole units for compactness on 32-column paper.
func (c Cents) Whole() int64 {
	return int64(math.Round(float64(c) / 100))
}

// String formats the amount with two fractional digits, the representation
// persisted to the ledger CSV files.
func (c Cents) String() string {
	return fmt.Sprintf("%.2f", c.Decimal())
}

// Line is one cart line for totals computation.
type Line struct {
	Quantity  int
	UnitPrice Cents
}

// Total returns quantity x unit price for the line.
func (l Line) Total() Cents {
	return Cents(int64(l.Quantity)) * l.UnitPrice
}

// Totals holds the computed monetary breakdown of a sale.
type Totals struct {
	Subtotal Cents
	Discount Cents
	Tax      Cents
	Total    Cents
}

// ValidationError reports an out-of-range input to ComputeTotals.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ComputeTotals computes subtotal, tax and grand total for a cart.
//
// Each line total is computed exactly before summation. The taxable base is
// subtotal minus discount, floored at zero, so tax is never computed on a
// negative base and a discount larger than the subtotal yields a zero total.
func ComputeTotals(lines []Line, discount Cents, taxRate float64) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, &ValidationError{Field: "items", Message: "at least one item is required"}
	}
	if discount < 0 {
		return Totals{}, &ValidationError{Field: "discount_amount", Message: "must not be negative"}
	}
	if taxRate < 0 {
		return Totals{}, &ValidationError{Field: "tax_rate", Message: "must not be negative"}
	}

	var subtotal Cents
	for i, line := range lines {
		if line.Quantity < 1 {
			return Totals{}, &ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "must be at least 1",
			}
		}
		if line.UnitPrice < 0 {
			return Totals{}, &ValidationError{
				Field:   fmt.Sprintf("items[%d].price", i),
				Message: "must not be negative",
			}
		}
		subtotal += line.Total()
	}

	taxable := subtotal - discount
	if taxable < 0 {
		taxable = 0
	}
	tax := Cents(math.Round(float64(taxable) * taxRate))

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    taxable + tax,
	}, nil
}
