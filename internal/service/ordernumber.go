package service

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderNumber produces the human-readable order number written to the
// primary store, distinct from the internal draft identifier. Format:
// ORD-<epoch millis>-<6-char base36 suffix>, uppercased.
func GenerateOrderNumber(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = orderNumberAlphabet[rand.IntN(len(orderNumberAlphabet))] // #nosec G404 -- uniqueness, not secrecy
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
