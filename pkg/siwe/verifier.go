package siwe

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Verifier recovers and checks personal_sign signatures over sign-in messages
type Verifier interface {
	// RecoverAddress returns the address whose key produced signature over message
	RecoverAddress(message, signature string) (common.Address, error)

	// Verify recovers the signer and requires it to equal claimed
	Verify(message, signature string, claimed common.Address) (common.Address, error)
}

// Error definitions
var (
	ErrMalformedMessage = errors.New("malformed sign-in message")
	ErrInvalidParams    = errors.New("invalid message parameters")

	ErrInvalidSignature    = errors.New("invalid signature")
	ErrInvalidSignatureLen = fmt.Errorf("%w: signature must be 65 bytes", ErrInvalidSignature)
	ErrInvalidRecoveryID   = fmt.Errorf("%w: invalid recovery id", ErrInvalidSignature)
	ErrAddressMismatch     = fmt.Errorf("%w: recovered address does not match", ErrInvalidSignature)
)
