package entity

// ReceiptHeader holds the store block printed at the top of every receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Tagline   string `json:"tagline,omitempty"`
	Address   string `json:"address,omitempty"`
}

// ReceiptFooter holds the centered thank-you block at the bottom.
type ReceiptFooter struct {
	Lines []string `json:"lines"`
}
