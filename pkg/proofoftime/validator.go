// Package proofoftime decides whether a signed round-id nonce is recent enough to accept.
//
// Round ids are oracle round counters. They exceed the 53-bit float range, so every
// comparison is done on math/big integers parsed from their decimal form.
package proofoftime

import (
	"errors"
	"fmt"
	"math/big"
)

// DefaultMaxRoundAge is the number of rounds a nonce stays valid (roughly ten hours on an hourly feed)
const DefaultMaxRoundAge uint64 = 10

var (
	// ErrSignatureExpired is the umbrella error for any nonce outside the window
	ErrSignatureExpired = errors.New("signature expired")
	// ErrStaleRound means the claimed round is older than the window
	ErrStaleRound = fmt.Errorf("%w: round is too old", ErrSignatureExpired)
	// ErrFutureRound means the claimed round is ahead of the current round
	ErrFutureRound = fmt.Errorf("%w: round is ahead of the oracle", ErrSignatureExpired)
	// ErrInvalidRound means a round id is not an unsigned decimal integer
	ErrInvalidRound = fmt.Errorf("%w: round id is not an unsigned integer", ErrSignatureExpired)
)

// Validator checks claimed rounds against the current one
type Validator struct {
	maxRoundAge uint64
}

// NewValidator creates a validator accepting rounds at most maxRoundAge behind the current one
func NewValidator(maxRoundAge uint64) *Validator {
	return &Validator{maxRoundAge: maxRoundAge}
}

// MaxRoundAge returns the configured window
func (v *Validator) MaxRoundAge() uint64 {
	return v.maxRoundAge
}

// Check returns nil when claimed is fresh relative to current
func (v *Validator) Check(claimed, current string) error {
	age, err := Age(claimed, current)
	if err != nil {
		return err
	}
	if age.Sign() < 0 {
		return ErrFutureRound
	}
	if age.Cmp(new(big.Int).SetUint64(v.maxRoundAge)) > 0 {
		return ErrStaleRound
	}
	return nil
}

// IsFresh reports whether 0 <= current - claimed <= maxRoundAge
func IsFresh(claimed, current string, maxRoundAge uint64) bool {
	return NewValidator(maxRoundAge).Check(claimed, current) == nil
}

// Age returns current - claimed. A negative result means the claim is from the future.
func Age(claimed, current string) (*big.Int, error) {
	c, err := parseRound(claimed)
	if err != nil {
		return nil, err
	}
	cur, err := parseRound(current)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(cur, c), nil
}

func parseRound(s string) (*big.Int, error) {
	if s == "" {
		return nil, ErrInvalidRound
	}
	// SetString accepts a sign; only plain digits are valid round ids
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, ErrInvalidRound
		}
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, ErrInvalidRound
	}
	return n, nil
}
