package util

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// BlockHash mixes a state family and a raw key into a shard selector.
func BlockHash(family, key string) uint64 {
	return xxhash.Sum64String(key) ^ (xxhash.Sum64String(family) * 0x9E3779B97F4A7C15)
}

// Redact returns a short stable digest of a raw key, safe for logs.
func Redact(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:8])
}
