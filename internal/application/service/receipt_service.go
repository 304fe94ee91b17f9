package service

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/httech/pos-api/internal/domain/entity"
	"github.com/httech/pos-api/pkg/printer"
	"github.com/httech/pos-api/pkg/receipt"
)

// ReceiptOptions control how receipts are rendered.
type ReceiptOptions struct {
	Header  entity.ReceiptHeader
	Footer  entity.ReceiptFooter
	Width   int
	TaxRate float64
}

// DefaultFooter is the thank-you block printed when none is configured.
var DefaultFooter = entity.ReceiptFooter{
	Lines: []string{"Thank you for shopping!", "Visit us again!"},
}

// ReceiptService renders receipts, stores the .txt artifact per invoice and
// forwards the same text to the thermal printer when one is configured.
type ReceiptService struct {
	dir         string
	printer     printer.Printer
	printerType string
	opts        ReceiptOptions
}

// NewReceiptService creates a receipt service writing artifacts under dir.
func NewReceiptService(dir string, p printer.Printer, printerType string, opts ReceiptOptions) *ReceiptService {
	if opts.Width <= 0 {
		opts.Width = receipt.DefaultWidth
	}
	if len(opts.Footer.Lines) == 0 {
		opts.Footer = DefaultFooter
	}
	return &ReceiptService{dir: dir, printer: p, printerType: printerType, opts: opts}
}

// FormatReceipt renders a sale as fixed-width receipt text. It is pure:
// the same sale and options always produce byte-identical output.
func FormatReceipt(sale *entity.Sale, opts ReceiptOptions) string {
	width := opts.Width
	if width <= 0 {
		width = receipt.DefaultWidth
	}
	if len(opts.Footer.Lines) == 0 {
		opts.Footer = DefaultFooter
	}
	doc := receipt.NewDocument(width)

	// Store block
	doc.Center(opts.Header.StoreName)
	if opts.Header.Tagline != "" {
		doc.Center(opts.Header.Tagline)
	}
	if opts.Header.Address != "" {
		doc.Center(opts.Header.Address)
	}
	doc.Rule('=')

	doc.Line("Invoice: " + sale.InvoiceNumber)
	doc.Line("Date: " + sale.CreatedAt.Format("02/01/2006 15:04"))
	if sale.CustomerName != "" {
		doc.Line("Customer: " + sale.CustomerName)
	}
	if sale.CustomerPhone != "" {
		doc.Line("Phone: " + sale.CustomerPhone)
	}
	if sale.Note != "" {
		doc.Line("Note: " + sale.Note)
	}
	doc.Rule('-')

	doc.KeyValue("Item", "Qty Price")
	doc.Rule('-')
	for _, item := range sale.Items {
		doc.Line(receipt.Truncate(item.Name, width-12))
		doc.Right(fmt.Sprintf("%d x %s = %s",
			item.Quantity,
			receipt.FormatWhole(item.UnitPrice.Whole()),
			receipt.FormatWhole(item.TotalPrice.Whole())))
	}
	doc.Rule('-')

	doc.KeyValue("Subtotal:", receipt.FormatWhole(sale.Subtotal.Whole()))
	if sale.DiscountAmount > 0 {
		doc.KeyValue("Discount:", receipt.FormatWhole(sale.DiscountAmount.Whole()))
	}
	doc.KeyValue("Tax ("+formatRate(opts.TaxRate)+"):", receipt.FormatWhole(sale.TaxAmount.Whole()))
	doc.Rule('=')
	doc.KeyValue("TOTAL:", receipt.FormatWhole(sale.TotalAmount.Whole()))
	doc.Rule('=')

	doc.Line("Payment: " + sale.PaymentMethod.Display())
	doc.Rule('-')

	for _, line := range opts.Footer.Lines {
		doc.Center(line)
	}
	// Paper feed
	doc.Blank().Blank().Blank()

	return doc.String()
}

// Generate renders the sale, writes its receipt artifact and returns the
// artifact path. Printing is best-effort: a printer failure is logged, not
// surfaced, because the sale is already persisted and the artifact is the
// record of truth.
func (s *ReceiptService) Generate(sale *entity.Sale) (string, error) {
	text := FormatReceipt(sale, s.opts)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("receipt: create receipts directory: %w", err)
	}
	path := filepath.Join(s.dir, "receipt_"+sale.InvoiceNumber+".txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("receipt: write %s: %w", path, err)
	}

	if s.printer != nil {
		if err := s.printer.Print([]byte(text)); err != nil {
			log.Printf("Printer error (invoice %s): %v", sale.InvoiceNumber, err)
		}
	}
	return path, nil
}

// PrinterStatus reports thermal printer connectivity.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// Status returns printer connection status.
func (s *ReceiptService) Status() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer != nil && s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// TestPrint sends a short test page to the printer and returns its text so
// the handler can show it even when no printer is attached.
func (s *ReceiptService) TestPrint() (string, error) {
	doc := receipt.NewDocument(s.opts.Width)
	doc.Center("PRINTER TEST")
	doc.Center(s.opts.Header.StoreName)
	doc.Rule('-')
	doc.KeyValue("Width:", fmt.Sprintf("%d cols", s.opts.Width))
	doc.Rule('-')
	doc.Blank().Blank()
	text := doc.String()

	if s.printer != nil {
		if err := s.printer.Print([]byte(text)); err != nil {
			return text, fmt.Errorf("test print failed: %w", err)
		}
	}
	return text, nil
}

func formatRate(rate float64) string {
	percent := fmt.Sprintf("%.2f", rate*100)
	percent = strings.TrimRight(percent, "0")
	percent = strings.TrimSuffix(percent, ".")
	return percent + "%"
}
