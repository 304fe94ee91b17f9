package invoice

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

// Prefix is the invoice number prefix shared by every sale.
const Prefix = "INV"

var pattern = regexp.MustCompile(`^INV-\d{8}-\d{5}$`)

// Number produces an invoice number of the form INV-YYYYMMDD-NNNNN, where
// the suffix is a random 5-digit number. Collision resistance is best-effort
// here; the ledger re-checks uniqueness under its write lock before a number
// is accepted.
func Number(now time.Time) string {
	return fmt.Sprintf("%s-%s-%05d", Prefix, now.Format("20060102"), suffix())
}

// Valid reports whether s matches the invoice number format.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

func suffix() int64 {
	// 10000..99999 inclusive
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		// crypto/rand failing means the platform is broken; fall back to a
		// time-derived suffix rather than aborting the sale.
		return 10000 + time.Now().UnixNano()%90000
	}
	return 10000 + n.Int64()
}
