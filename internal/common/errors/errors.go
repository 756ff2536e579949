package errors

import (
	"fmt"
	"net/http"
)

// Error codes
const (
	// 4xx Client Errors
	CodeMalformedMessage = "MALFORMED_MESSAGE"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodeSignatureExpired = "SIGNATURE_EXPIRED"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeRateLimited      = "RATE_LIMITED"

	// 5xx Server Errors
	CodeOracleUnavailable = "ORACLE_UNAVAILABLE"
	CodeStoreError        = "STORE_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

// statusByCode is the single mapping from error code to HTTP status
var statusByCode = map[string]int{
	CodeMalformedMessage:  http.StatusBadRequest,
	CodeInvalidSignature:  http.StatusUnauthorized,
	CodeSignatureExpired:  http.StatusUnauthorized,
	CodeInvalidInput:      http.StatusBadRequest,
	CodeUnauthorized:      http.StatusUnauthorized,
	CodeNotFound:          http.StatusNotFound,
	CodeRateLimited:       http.StatusTooManyRequests,
	CodeOracleUnavailable: http.StatusServiceUnavailable,
	CodeStoreError:        http.StatusInternalServerError,
	CodeInternal:          http.StatusInternalServerError,
}

// StatusOf returns the HTTP status for code; unknown codes are 500
func StatusOf(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// AppError represents a structured application error
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	StatusCode int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New builds an AppError whose status follows from code
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: StatusOf(code)}
}

func MalformedMessage(message string) *AppError { return New(CodeMalformedMessage, message) }

func InvalidSignature(message string) *AppError { return New(CodeInvalidSignature, message) }

func InvalidInput(message string) *AppError { return New(CodeInvalidInput, message) }

func Unauthorized(message string) *AppError { return New(CodeUnauthorized, message) }

func Internal(message string) *AppError { return New(CodeInternal, message) }

// SignatureExpired reports both rounds so clients can fetch a new nonce
func SignatureExpired(claimed, current string) *AppError {
	return New(CodeSignatureExpired,
		fmt.Sprintf("Nonce round %s is not within the accepted window of current round %s", claimed, current),
	).WithDetails(map[string]any{
		"nonce":          claimed,
		"currentRoundId": current,
	})
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func RateLimited() *AppError {
	return New(CodeRateLimited, "Too many requests, try again later")
}

// OracleUnavailable and StoreError keep the cause for logs; the message stays generic

func OracleUnavailable(err error) *AppError {
	return New(CodeOracleUnavailable, "Price oracle is unavailable").WithError(err)
}

func StoreError(err error) *AppError {
	return New(CodeStoreError, "Identity store error occurred").WithError(err)
}
