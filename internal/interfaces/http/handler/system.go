package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Ping() error
}

// HealthCheckFunc adapts a function to the HealthChecker interface
type HealthCheckFunc func() error

// Ping calls the wrapped function
func (f HealthCheckFunc) Ping() error { return f() }

// SystemHandler serves health and readiness endpoints
type SystemHandler struct {
	version string
	checks  map[string]HealthChecker
}

// NewSystemHandler creates a SystemHandler with the given named
// dependency checks.
func NewSystemHandler(version string, checks map[string]HealthChecker) *SystemHandler {
	return &SystemHandler{version: version, checks: checks}
}

// Health handles GET /health. It reports 200 when every dependency
// responds and 503 otherwise, with a per-dependency breakdown.
func (h *SystemHandler) Health(c *gin.Context) {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(); err != nil {
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	body := gin.H{
		"status":  "ok",
		"version": h.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
