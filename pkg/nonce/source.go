// Package nonce hands out sign-in nonces. A nonce is the latest oracle round id,
// so it needs no per-client bookkeeping and can be served from a short-lived cache.
package nonce

import (
	"context"
	"time"

	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/chainlink"
)

const (
	// DefaultTTL is how long a cached round is served before the oracle is read again
	DefaultTTL = 5 * time.Second
)

// Source returns the sample clients embed in the message they sign.
// Freshness checks must not go through a Source; they read the oracle directly.
type Source interface {
	Latest(ctx context.Context) (*chainlink.Sample, error)
}

// Direct reads the oracle on every call
type Direct struct {
	reader chainlink.RoundReader
}

// Compile-time interface compliance check
var _ Source = (*Direct)(nil)

// NewDirect creates an uncached source
func NewDirect(reader chainlink.RoundReader) *Direct {
	return &Direct{reader: reader}
}

// Latest reads the current round
func (d *Direct) Latest(ctx context.Context) (*chainlink.Sample, error) {
	return d.reader.ReadLatestRound(ctx)
}
