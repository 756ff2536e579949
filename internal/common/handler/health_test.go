package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *HealthHandler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func ok(context.Context) error { return nil }

func TestHealth(t *testing.T) {
	w := serve(NewHealthHandler(), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReady(t *testing.T) {
	t.Run("all ok", func(t *testing.T) {
		w := serve(NewHealthHandler(Check{"store", ok}, Check{"redis", ok}), "/ready")
		assert.Equal(t, http.StatusOK, w.Code)

		var body ReadyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, map[string]string{"store": "ok", "redis": "ok"}, body.Checks)
	})

	t.Run("one failing", func(t *testing.T) {
		failing := func(context.Context) error { return errors.New("connection refused") }
		w := serve(NewHealthHandler(Check{"store", ok}, Check{"rpc", failing}), "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body ReadyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "error", body.Checks["rpc"])
		assert.Equal(t, "ok", body.Checks["store"])
		assert.NotContains(t, w.Body.String(), "refused")
	})
}
