// Package identity persists wallet-bound identities, unique per (realm, wallet).
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
)

// MaxDisplayNameLen bounds display names in runes
const MaxDisplayNameLen = 64

// Store defines the interface for identity storage.
// Implementations: MySQL, PostgreSQL, in-memory.
type Store interface {
	// FindByWallet returns nil, nil when the realm has no identity for address
	FindByWallet(ctx context.Context, realm Realm, address string) (*Identity, error)

	// Create inserts a new identity.
	// Returns ErrDuplicateWallet if (realm, wallet) already exists.
	Create(ctx context.Context, in NewIdentity) (*Identity, error)

	// Get returns nil, nil when id is unknown
	Get(ctx context.Context, id string) (*Identity, error)

	// Ping checks the backend is reachable
	Ping(ctx context.Context) error
}

// Error definitions
var (
	ErrDuplicateWallet    = errors.New("identity already exists for wallet")
	ErrInvalidWallet      = errors.New("invalid wallet address")
	ErrInvalidRealm       = errors.New("invalid realm")
	ErrInvalidDisplayName = errors.New("invalid display name")
)

// NormalizeWallet validates a 0x-prefixed address and lower-cases it
func NormalizeWallet(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return "", fmt.Errorf("%w: %q", ErrInvalidWallet, address)
	}
	return strings.ToLower(address), nil
}

// DefaultDisplayName derives "Human-abcdef" / "Agent-abcdef" from the first six hex digits
func DefaultDisplayName(realm Realm, address string) string {
	prefix := "Human-"
	if realm == RealmAgent {
		prefix = "Agent-"
	}
	hex := strings.TrimPrefix(strings.ToLower(address), "0x")
	if len(hex) > 6 {
		hex = hex[:6]
	}
	return prefix + hex
}

// ValidateDisplayName trims name and checks its length
func ValidateDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDisplayName)
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen || strings.ContainsAny(name, "\r\n") {
		return "", fmt.Errorf("%w: %q", ErrInvalidDisplayName, name)
	}
	return name, nil
}

// prepare validates in and fills defaults shared by every backend
func prepare(in NewIdentity) (NewIdentity, error) {
	if !in.Realm.Valid() {
		return in, fmt.Errorf("%w: %q", ErrInvalidRealm, in.Realm)
	}
	wallet, err := NormalizeWallet(in.WalletAddress)
	if err != nil {
		return in, err
	}
	in.WalletAddress = wallet
	if in.DisplayName == "" {
		in.DisplayName = DefaultDisplayName(in.Realm, wallet)
	}
	if in.DisplayName, err = ValidateDisplayName(in.DisplayName); err != nil {
		return in, err
	}
	return in, nil
}

// now is truncated to what every backend stores
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
