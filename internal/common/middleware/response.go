package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/common/errors"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error     string         `json:"error" example:"SIGNATURE_EXPIRED"`
	Message   string         `json:"message" example:"Nonce round 100 is not within the accepted window of current round 120"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// RespondError sends an error JSON response.
// Anything that is not an *errors.AppError becomes INTERNAL_ERROR.
func RespondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.Internal("An unexpected error occurred").WithError(err)
	}

	// keep the cause for the request log
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}

	c.AbortWithStatusJSON(appErr.StatusCode, ErrorResponse{
		Error:     appErr.Code,
		Message:   appErr.Message,
		RequestID: GetRequestID(c),
		Details:   appErr.Details,
	})
}

// RespondOK sends a 200 OK response
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
