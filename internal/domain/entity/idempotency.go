package entity

import "time"

// IdempotencyKey caches the response of a processed mutating request so a
// client retry with the same key replays it instead of re-running checkout.
type IdempotencyKey struct {
	Key          string // The idempotency key from client
	Endpoint     string // API endpoint (e.g., "POST /sales")
	ResponseCode int    // HTTP status code of original response
	ResponseBody string // JSON response body (cached)
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
