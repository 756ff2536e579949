package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors_StatusCodes(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		err    *AppError
		code   string
		status int
	}{
		{MalformedMessage("bad"), CodeMalformedMessage, http.StatusBadRequest},
		{InvalidSignature("bad"), CodeInvalidSignature, http.StatusUnauthorized},
		{SignatureExpired("100", "120"), CodeSignatureExpired, http.StatusUnauthorized},
		{InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{Unauthorized("no"), CodeUnauthorized, http.StatusUnauthorized},
		{NotFound("identity"), CodeNotFound, http.StatusNotFound},
		{RateLimited(), CodeRateLimited, http.StatusTooManyRequests},
		{OracleUnavailable(cause), CodeOracleUnavailable, http.StatusServiceUnavailable},
		{StoreError(cause), CodeStoreError, http.StatusInternalServerError},
		{Internal("oops"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestAppError_Wrapping(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := StoreError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORE_ERROR")
	assert.Contains(t, err.Error(), "refused")
	// the client-facing message never carries the cause
	assert.NotContains(t, err.Message, "refused")

	var appErr *AppError
	assert.True(t, stderrors.As(error(err), &appErr))

	plain := NotFound("identity").WithError(cause)
	assert.Equal(t, "NOT_FOUND: identity not found: dial tcp: refused", plain.Error())
}

func TestSignatureExpired_Details(t *testing.T) {
	err := SignatureExpired("100", "120")
	assert.Equal(t, "100", err.Details["nonce"])
	assert.Equal(t, "120", err.Details["currentRoundId"])
}

func TestStatusOf_UnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf("SOMETHING_ELSE"))
	assert.Equal(t, http.StatusInternalServerError, New("SOMETHING_ELSE", "x").StatusCode)
}
