package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for audit-result caching. Results are
// never persisted across runs; the only implementation is in-memory.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from the project path and a configuration
// fingerprint, so a config change never serves a stale report.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "claimlens:v1:" + hex.EncodeToString(hash[:])
}
