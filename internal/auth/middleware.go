package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/common/errors"
	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/common/middleware"
)

// ClaimsKey is the gin context key holding *Claims after RequireToken
const ClaimsKey = "auth_claims"

// RequireToken rejects requests without a valid Bearer session token
func RequireToken(issuer *JWTIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			middleware.RespondError(c, errors.Unauthorized("Missing bearer token"))
			return
		}

		claims, err := issuer.Parse(strings.TrimSpace(token))
		if err != nil {
			middleware.RespondError(c, errors.Unauthorized("Invalid or expired token").WithError(err))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetClaims extracts the claims stored by RequireToken
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
