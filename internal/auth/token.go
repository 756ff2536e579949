package auth

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/identity"
)

// TokenIssuer issues session tokens for resolved identities
type TokenIssuer interface {
	Issue(id *identity.Identity) (token string, expiresAt time.Time, err error)
}

// Claims are the session token claims
type Claims struct {
	Wallet string         `json:"wallet"`
	Realm  identity.Realm `json:"realm"`
	jwtlib.RegisteredClaims
}

// ErrInvalidToken is returned for any token that fails parsing or validation
var ErrInvalidToken = errors.New("invalid session token")

// JWTIssuer issues and parses HS256 session tokens
type JWTIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Compile-time interface compliance check
var _ TokenIssuer = (*JWTIssuer)(nil)

// NewJWTIssuer creates an issuer. secret must not be empty.
func NewJWTIssuer(secret, issuer string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive")
	}
	return &JWTIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token whose subject is the identity id
func (j *JWTIssuer) Issue(id *identity.Identity) (string, time.Time, error) {
	issuedAt := j.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(j.ttl)

	claims := Claims{
		Wallet: id.WalletAddress,
		Realm:  id.Realm,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    j.issuer,
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse validates signature, issuer and expiry and returns the claims
func (j *JWTIssuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwtlib.ParseWithClaims(token, claims,
		func(*jwtlib.Token) (interface{}, error) { return j.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(j.issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
