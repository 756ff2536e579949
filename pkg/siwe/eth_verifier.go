package siwe

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// EthVerifier implements Verifier using go-ethereum
type EthVerifier struct {
	logger *zap.Logger
}

// Compile-time interface compliance check
var _ Verifier = (*EthVerifier)(nil)

// NewEthVerifier creates a new personal_sign verifier
func NewEthVerifier(logger *zap.Logger) *EthVerifier {
	return &EthVerifier{logger: logger}
}

// RecoverAddress recovers the signer of a personal_sign signature
func (v *EthVerifier) RecoverAddress(message, signature string) (common.Address, error) {
	sig, err := DecodeSignature(signature)
	if err != nil {
		return common.Address{}, err
	}

	// "\x19Ethereum Signed Message:\n" + len(message) + message, keccak256
	digest := accounts.TextHash([]byte(message))

	pubKey, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: failed to recover public key: %v", ErrInvalidSignature, err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// Verify recovers the signer and compares it to claimed (case-insensitive)
func (v *EthVerifier) Verify(message, signature string, claimed common.Address) (common.Address, error) {
	recovered, err := v.RecoverAddress(message, signature)
	if err != nil {
		return common.Address{}, err
	}

	if !strings.EqualFold(recovered.Hex(), claimed.Hex()) {
		v.logger.Debug("signature recovered to a different address",
			zap.String("claimed", claimed.Hex()),
			zap.String("recovered", recovered.Hex()),
		)
		return common.Address{}, ErrAddressMismatch
	}

	return recovered, nil
}

// DecodeSignature parses a hex [R || S || V] signature and normalizes V (27/28 -> 0/1)
func DecodeSignature(signature string) ([]byte, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(signature, "0x"), "0X")
	if len(raw) != 130 {
		return nil, ErrInvalidSignatureLen
	}

	sig, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: not hex", ErrInvalidSignature)
	}

	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return nil, ErrInvalidRecoveryID
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[64], r, s, false) {
		return nil, fmt.Errorf("%w: signature values out of range", ErrInvalidSignature)
	}

	return sig, nil
}

// SignMessage produces a wallet-style personal_sign signature (V in 27/28).
// Used by tooling and tests; the service itself never holds keys.
func SignMessage(message string, key *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	sig[64] += 27
	return "0x" + hex.EncodeToString(sig), nil
}
