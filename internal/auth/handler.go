package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/common/errors"
	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/common/middleware"
	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/identity"
)

// Handler handles HTTP requests for sign-in and identity lookups
type Handler struct {
	service *Service
	tokens  *JWTIssuer
}

// NewHandler creates a new auth handler
func NewHandler(service *Service, tokens *JWTIssuer) *Handler {
	return &Handler{service: service, tokens: tokens}
}

// RegisterRoutes registers auth routes on the router group.
// verifyLimit guards the verify endpoints; pass nothing to leave them unlimited.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, verifyLimit ...gin.HandlerFunc) {
	rg.GET("/nonce-source", h.NonceSource)

	authGroup := rg.Group("/auth")
	{
		verify := authGroup.Group("", verifyLimit...)
		verify.POST("/verify", h.Verify)
		verify.POST("/humans/verify", h.verifyIn(identity.RealmHuman))
		verify.POST("/agents/verify", h.verifyIn(identity.RealmAgent))

		authGroup.GET("/check", h.Check)
		authGroup.GET("/lookup", h.Lookup)
		authGroup.GET("/me", RequireToken(h.tokens), h.Me)
	}
}

// NonceSource godoc
// @Summary Current sign-in nonce
// @Description Returns the latest Chainlink round. Clients use roundId as the message nonce and message as the statement.
// @Tags auth
// @Produce json
// @Success 200 {object} NonceResponse "Current round"
// @Failure 503 {object} middleware.ErrorResponse "Oracle unavailable"
// @Router /api/v1/nonce-source [get]
func (h *Handler) NonceSource(c *gin.Context) {
	n, err := h.service.Nonce(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	middleware.RespondOK(c, NonceResponse{
		RoundID:   n.Sample.RoundID,
		Price:     n.Sample.Price,
		Timestamp: n.Sample.Timestamp,
		Feed:      n.Sample.Feed,
		Message:   n.Statement,
	})
}

// Verify godoc
// @Summary Sign in with Ethereum
// @Description Verifies a signed EIP-4361 message whose nonce is a recent Chainlink round, then finds or creates the identity
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Signed message"
// @Success 200 {object} VerifyResponse "Signed in"
// @Failure 400 {object} middleware.ErrorResponse "Malformed message or invalid input"
// @Failure 401 {object} middleware.ErrorResponse "Invalid signature or expired nonce"
// @Failure 429 {object} middleware.ErrorResponse "Rate limited"
// @Failure 500 {object} middleware.ErrorResponse "Store error"
// @Failure 503 {object} middleware.ErrorResponse "Oracle unavailable"
// @Router /api/v1/auth/verify [post]
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if !bindVerifyRequest(c, &req) {
		return
	}
	h.verify(c, req, identity.Realm(req.Realm))
}

// VerifyInRealm godoc
// @Summary Sign in with Ethereum to a fixed realm
// @Description Same as /auth/verify with the realm taken from the path; any realm in the body is ignored
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Signed message"
// @Success 200 {object} VerifyResponse "Signed in"
// @Failure 400 {object} middleware.ErrorResponse "Malformed message or invalid input"
// @Failure 401 {object} middleware.ErrorResponse "Invalid signature or expired nonce"
// @Failure 503 {object} middleware.ErrorResponse "Oracle unavailable"
// @Router /api/v1/auth/humans/verify [post]
// @Router /api/v1/auth/agents/verify [post]
func (h *Handler) verifyIn(realm identity.Realm) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyRequest
		if !bindVerifyRequest(c, &req) {
			return
		}
		h.verify(c, req, realm)
	}
}

// bindVerifyRequest decodes the body. Content checks are left to the pipeline so
// a missing message or signature fails with the same code as a bad one.
func bindVerifyRequest(c *gin.Context, req *VerifyRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(err)
		middleware.RespondError(c, errors.MalformedMessage("Request body must be a JSON object with message and signature"))
		return false
	}
	return true
}

func (h *Handler) verify(c *gin.Context, req VerifyRequest, realm identity.Realm) {
	result, err := h.service.Verify(c.Request.Context(), VerifyInput{
		Message:   req.Message,
		Signature: req.Signature,
		Realm:     realm,
		Name:      req.Name,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	middleware.RespondOK(c, ToVerifyResponse(result))
}

// Check godoc
// @Summary Check wallet registration
// @Description Reports whether a wallet has an identity in the realm (default human)
// @Tags auth
// @Produce json
// @Param address query string true "Wallet address (0x...)"
// @Param realm query string false "human or agent"
// @Success 200 {object} CheckResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid address or realm"
// @Failure 500 {object} middleware.ErrorResponse "Store error"
// @Router /api/v1/auth/check [get]
func (h *Handler) Check(c *gin.Context) {
	realm, err := identity.ParseRealm(c.Query("realm"))
	if err != nil {
		middleware.RespondError(c, errors.InvalidInput("Unknown realm"))
		return
	}

	found, err := h.service.Check(c.Request.Context(), realm, c.Query("address"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	middleware.RespondOK(c, CheckResponse{
		Registered: found != nil,
		Realm:      string(realm),
		Identity:   ToIdentityResponse(found),
	})
}

// Lookup godoc
// @Summary Look up a wallet in every realm
// @Tags auth
// @Produce json
// @Param address query string true "Wallet address (0x...)"
// @Success 200 {object} LookupResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid address"
// @Failure 500 {object} middleware.ErrorResponse "Store error"
// @Router /api/v1/auth/lookup [get]
func (h *Handler) Lookup(c *gin.Context) {
	result, err := h.service.Lookup(c.Request.Context(), c.Query("address"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	middleware.RespondOK(c, LookupResponse{
		Address: result.Address,
		Human:   ToIdentityResponse(result.Human),
		Agent:   ToIdentityResponse(result.Agent),
	})
}

// Me godoc
// @Summary Current identity
// @Description Returns the identity the bearer token was issued for
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} middleware.ErrorResponse "Identity not found"
// @Router /api/v1/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	claims, ok := GetClaims(c)
	if !ok {
		middleware.RespondError(c, errors.Unauthorized("Missing bearer token"))
		return
	}

	found, err := h.service.Me(c.Request.Context(), claims.Subject)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	middleware.RespondOK(c, MeResponse{Identity: ToIdentityResponse(found)})
}
