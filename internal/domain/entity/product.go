package entity

import (
	"encoding/json"

	"github.com/httech/pos-api/pkg/money"
)

// Product is one catalog row loaded from the products CSV. The catalog is
// read-only from the API's point of view; it is maintained by uploading a
// replacement CSV.
type Product struct {
	Name              string      `json:"name"`
	Model             string      `json:"model"`
	Specifications    string      `json:"specifications"`
	PurchasePrice     money.Cents `json:"-"`
	SellingPrice      money.Cents `json:"-"`
	WarrantyPeriod    int         `json:"warranty_period"`
	WarrantyType      string      `json:"warranty_type"`
	Quantity          int         `json:"quantity"`
	Categories        string      `json:"categories"`
	Brands            string      `json:"brands"`
	Description       string      `json:"description"`
	Weight            float64     `json:"weight"`
	SupplierInvoiceNo string      `json:"supplier_invoice_no"`
}

// MarshalJSON converts cents to decimal prices for API responses.
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		PurchasePrice float64 `json:"purchase_price"`
		SellingPrice  float64 `json:"selling_price"`
	}{
		Alias:         Alias(p),
		PurchasePrice: p.PurchasePrice.Decimal(),
		SellingPrice:  p.SellingPrice.Decimal(),
	})
}
