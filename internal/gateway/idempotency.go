package gateway

import (
	"crypto/rand"
	"encoding/hex"
)

// IdempotencyKey deduplicates retried charge requests on the gateway
// side. One key is minted per logical charge attempt and reused across
// transport-level retries of that attempt; a genuinely new attempt
// (manual retry, QR regeneration) gets a fresh key.
type IdempotencyKey string

// NewIdempotencyKey returns 16 random bytes hex-encoded.
func NewIdempotencyKey() IdempotencyKey {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return IdempotencyKey(hex.EncodeToString(buf))
}

func (k IdempotencyKey) String() string {
	return string(k)
}
