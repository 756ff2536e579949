package auth

import (
	"time"

	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/identity"
)

// ============================================================================
// Request DTOs
// ============================================================================

// VerifyRequest represents the request body for sign-in verification
type VerifyRequest struct {
	Message string `json:"message" example:"oracle.example wants you to sign in with your Ethereum account:\n0x2c7536E3605D9C16a7a3D7b1898e529396a65c23\n\nSign in to OracleNet. BTC: $98000.00\n\nURI: https://oracle.example\nVersion: 1\nChain ID: 1\nNonce: 110680464442257320247\nIssued At: 2026-02-03T12:00:00Z"`
	// Signature: optional 0x prefix + 130 hex chars (65 bytes)
	Signature string `json:"signature" example:"0xb91467e570a6466aa9e9876cbcd013baba02900b8979d43fe208a4a4f339f5fd6007e74cd82e037b800186422fc2da167c747ef045e5d18a5f5d4300f8e1a0291c"`
	Realm     string `json:"realm,omitempty" example:"human"`
	Name      string `json:"name,omitempty" example:"Shrimp"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// IdentityResponse represents an identity in API responses
type IdentityResponse struct {
	ID             string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	WalletAddress  string    `json:"walletAddress" example:"0x2c7536e3605d9c16a7a3d7b1898e529396a65c23"`
	DisplayName    string    `json:"displayName" example:"Human-2c7536"`
	GithubUsername string    `json:"githubUsername,omitempty" example:"shrimp-bot"`
	Realm          string    `json:"realm" example:"human"`
	CreatedAt      time.Time `json:"createdAt"`
}

// VerifyResponse represents a successful sign-in
type VerifyResponse struct {
	Success     bool              `json:"success" example:"true"`
	Created     bool              `json:"created" example:"true"`
	Realm       string            `json:"realm" example:"human"`
	Token       string            `json:"token"`
	ExpiresAt   time.Time         `json:"expiresAt"`
	ProofOfTime ProofOfTime       `json:"proofOfTime"`
	Identity    *IdentityResponse `json:"identity"`
}

// NonceResponse carries the round clients embed as their nonce
type NonceResponse struct {
	RoundID   string  `json:"roundId" example:"110680464442257320247"`
	Price     float64 `json:"price" example:"98000.12"`
	Timestamp int64   `json:"timestamp" example:"1738584000"`
	Feed      string  `json:"feed" example:"BTC/USD"`
	Message   string  `json:"message" example:"Sign in to OracleNet. BTC: $98000.12"`
}

// CheckResponse reports whether a wallet is registered in a realm
type CheckResponse struct {
	Registered bool              `json:"registered" example:"true"`
	Realm      string            `json:"realm" example:"human"`
	Identity   *IdentityResponse `json:"identity,omitempty"`
}

// LookupResponse reports a wallet's identities across realms
type LookupResponse struct {
	Address string            `json:"address" example:"0x2c7536e3605d9c16a7a3d7b1898e529396a65c23"`
	Human   *IdentityResponse `json:"human,omitempty"`
	Agent   *IdentityResponse `json:"agent,omitempty"`
}

// MeResponse represents the identity behind a session token
type MeResponse struct {
	Identity *IdentityResponse `json:"identity"`
}

// ============================================================================
// Converters
// ============================================================================

// ToIdentityResponse converts identity.Identity to IdentityResponse
func ToIdentityResponse(id *identity.Identity) *IdentityResponse {
	if id == nil {
		return nil
	}
	return &IdentityResponse{
		ID:             id.ID,
		WalletAddress:  id.WalletAddress,
		DisplayName:    id.DisplayName,
		GithubUsername: id.GithubUsername,
		Realm:          string(id.Realm),
		CreatedAt:      id.CreatedAt,
	}
}

// ToVerifyResponse converts a VerifyResult to VerifyResponse
func ToVerifyResponse(result *VerifyResult) *VerifyResponse {
	return &VerifyResponse{
		Success:     true,
		Created:     result.Created,
		Realm:       string(result.Identity.Realm),
		Token:       result.Token,
		ExpiresAt:   result.ExpiresAt,
		ProofOfTime: result.ProofOfTime,
		Identity:    ToIdentityResponse(result.Identity),
	}
}
