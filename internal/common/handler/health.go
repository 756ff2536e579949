package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readyTimeout = 3 * time.Second

// Check probes one dependency
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	checks []Check
}

// NewHealthHandler creates a new HealthHandler. Checks run in the given order.
func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ReadyResponse represents readiness check response
type ReadyResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
}

// Health godoc
// @Summary Health check
// @Description Returns server health status
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready godoc
// @Summary Readiness check
// @Description Returns server readiness including identity store, Redis and chain RPC connectivity
// @Tags health
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	response := ReadyResponse{
		Status: "ok",
		Checks: make(map[string]string, len(h.checks)),
	}
	statusCode := http.StatusOK

	for _, check := range h.checks {
		if err := check.Probe(ctx); err != nil {
			_ = c.Error(err)
			response.Checks[check.Name] = "error"
			response.Status = "degraded"
			statusCode = http.StatusServiceUnavailable
			continue
		}
		response.Checks[check.Name] = "ok"
	}

	c.JSON(statusCode, response)
}
