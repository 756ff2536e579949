package identity

import (
	"fmt"
	"strings"
	"time"
)

// Realm separates identity namespaces. The same wallet may hold one identity per realm.
type Realm string

const (
	RealmHuman Realm = "human"
	RealmAgent Realm = "agent"
)

// Realms lists every realm in lookup order
var Realms = []Realm{RealmHuman, RealmAgent}

// ParseRealm accepts singular or plural realm names. Empty means human.
func ParseRealm(s string) (Realm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "human", "humans":
		return RealmHuman, nil
	case "agent", "agents":
		return RealmAgent, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRealm, s)
	}
}

// Valid reports whether r is a known realm
func (r Realm) Valid() bool {
	return r == RealmHuman || r == RealmAgent
}

// Identity is a wallet-bound account
type Identity struct {
	ID             string    `json:"id"`
	Realm          Realm     `json:"realm"`
	WalletAddress  string    `json:"walletAddress"`
	DisplayName    string    `json:"displayName"`
	GithubUsername string    `json:"githubUsername,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewIdentity holds the fields a caller supplies on creation.
// The store assigns ID and timestamps.
type NewIdentity struct {
	Realm          Realm
	WalletAddress  string
	DisplayName    string
	GithubUsername string
}
