// Package entropy builds the random sources the arena runs on.
// A fixed seed gives a replayable game; seed 0 asks crypto/rand for one.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mrand "math/rand"
	"time"
)

// NewRand returns a generator for seed and the seed actually used.
// A zero seed is replaced by a crypto-random one.
func NewRand(seed int64) (*mrand.Rand, int64) {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return mrand.New(mrand.NewSource(seed)), seed
}

// CryptoSeed draws a non-zero seed from crypto/rand, falling back to the
// clock if the system source is unavailable.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		slog.Warn("crypto seed unavailable, using clock", "error", err)
		return time.Now().UnixNano() | 1
	}
	// Keep it positive so it prints cleanly and round-trips through flags.
	n := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if n == 0 {
		n = 1
	}
	return n
}
