package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports whether one dependency answers
type Check func(ctx context.Context) error

// HealthHandler liveness plus dependency checks
type HealthHandler struct {
	deps map[string]Check
}

// NewHealthHandler creates a HealthHandler; nil checks are skipped
func NewHealthHandler(deps map[string]Check) *HealthHandler {
	clean := make(map[string]Check, len(deps))
	for name, check := range deps {
		if check != nil {
			clean[name] = check
		}
	}
	return &HealthHandler{deps: clean}
}

// Health GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(gin.H, len(h.deps))
	for name, check := range h.deps {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
