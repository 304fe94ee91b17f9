package middleware

import (
	"bytes"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/httech/pos-api/internal/domain/entity"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// DefaultIdempotencyTTL is how long keys are valid
	DefaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyStore keeps processed keys and their cached responses in memory.
// A single store instance is shared by the whole server; entries expire after
// the configured TTL and are swept by a background goroutine.
type IdempotencyStore struct {
	mu      sync.RWMutex
	entries map[string]*entity.IdempotencyKey
	ttl     time.Duration
}

// NewIdempotencyStore creates a store with the given TTL and starts its sweep
// loop.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	s := &IdempotencyStore{
		entries: make(map[string]*entity.IdempotencyKey),
		ttl:     ttl,
	}
	go s.sweepLoop()
	return s
}

// Get returns the cached entry for a key, or nil when absent or expired.
func (s *IdempotencyStore) Get(key string) *entity.IdempotencyKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || entry.IsExpired() {
		return nil
	}
	return entry
}

// Put stores a processed request's response under its key.
func (s *IdempotencyStore) Put(key, endpoint string, code int, body string) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &entity.IdempotencyKey{
		Key:          key,
		Endpoint:     endpoint,
		ResponseCode: code,
		ResponseBody: body,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
}

func (s *IdempotencyStore) sweepLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		for key, entry := range s.entries {
			if entry.IsExpired() {
				delete(s.entries, key)
			}
		}
		s.mu.Unlock()
	}
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency middleware prevents duplicate requests using idempotency keys.
// Requests without an Idempotency-Key header pass through untouched.
func Idempotency(store *IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to POST, PUT, PATCH methods
		if c.Request.Method != "POST" && c.Request.Method != "PUT" && c.Request.Method != "PATCH" {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		// If key exists and not expired, return cached response
		if existing := store.Get(idempotencyKey); existing != nil {
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		// Capture the response
		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses: a failed checkout must be
		// retryable with the same key.
		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			store.Put(idempotencyKey, c.Request.Method+" "+c.FullPath(), c.Writer.Status(), blw.body.String())
		}
	}
}
