// Package rotation provides a round-robin pool of interchangeable upstream
// API credentials with fail-over across the pool.
package rotation

import (
	"strings"
	"sync"
)

// Rotator hands out credentials in insertion order, wrapping around the end
// of the pool. It is intentionally a fairness rotation, not a health-aware
// scheduler: success and failure reports both move the cursor past the
// reported credential.
type Rotator struct {
	mu   sync.Mutex
	keys []string
	pos  int
}

// NewRotator builds a rotator over the given credentials. Blank entries are
// dropped after trimming surrounding whitespace.
func NewRotator(keys []string) *Rotator {
	cleaned := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key != "" {
			cleaned = append(cleaned, key)
		}
	}
	return &Rotator{keys: cleaned}
}

// ParseKeys splits a comma-separated credential list into individual keys,
// dropping blank entries.
func ParseKeys(csv string) []string {
	parts := strings.Split(csv, ",")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			keys = append(keys, part)
		}
	}
	return keys
}

// Size returns the number of credentials in the pool.
func (r *Rotator) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

// Acquire returns the credential at the cursor and advances the cursor by
// one, wrapping modulo the pool size. The second return is false when the
// pool is empty.
func (r *Rotator) Acquire() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.keys) == 0 {
		return "", false
	}
	key := r.keys[r.pos]
	r.pos = (r.pos + 1) % len(r.keys)
	return key, true
}

// ReportSuccess moves the cursor past the reported credential so the next
// acquisition starts from its successor. Unknown credentials are ignored.
func (r *Rotator) ReportSuccess(key string) {
	r.advancePast(key)
}

// ReportFailure behaves exactly like ReportSuccess. Failing credentials are
// not penalized beyond losing their turn in the rotation order.
func (r *Rotator) ReportFailure(key string) {
	r.advancePast(key)
}

func (r *Rotator) advancePast(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, candidate := range r.keys {
		if candidate == key {
			r.pos = (i + 1) % len(r.keys)
			return
		}
	}
}
