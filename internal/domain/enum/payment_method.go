package enum

import "strings"

// PaymentMethod is how a sale was paid for.
type PaymentMethod string

const (
	PaymentCash           PaymentMethod = "cash"
	PaymentCard           PaymentMethod = "card"
	PaymentMobile         PaymentMethod = "mobile_payment"
	PaymentAccountPayable PaymentMethod = "account_payable"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

// PaymentMethods lists every accepted payment method.
var PaymentMethods = []PaymentMethod{
	PaymentCash,
	PaymentCard,
	PaymentMobile,
	PaymentAccountPayable,
	PaymentBankTransfer,
}

// ParsePaymentMethod normalizes s and reports whether it is an accepted
// payment method.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	pm := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range PaymentMethods {
		if pm == known {
			return pm, true
		}
	}
	return "", false
}

// Display returns the capitalized form printed on receipts, e.g.
// "mobile_payment" becomes "Mobile payment".
func (pm PaymentMethod) Display() string {
	s := strings.ReplaceAll(string(pm), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
