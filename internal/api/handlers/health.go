package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/courtvision/lineup-service/pkg/logger"
)

// Pinger is the store surface the health handler needs.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// BreakerStates reports per-upstream circuit breaker state.
type BreakerStates interface {
	State(upstream string) gobreaker.State
}

// HealthHandler handles health and readiness endpoints
type HealthHandler struct {
	store     Pinger
	breakers  BreakerStates
	upstreams []string
	startedAt time.Time
	logger    *logrus.Entry
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Ready     bool            `json:"ready"`
	Timestamp time.Time       `json:"timestamp"`
	Checks    map[string]bool `json:"checks"`
}

// NewHealthHandler creates a health handler over the store and the
// upstream circuit breakers.
func NewHealthHandler(store Pinger, breakers BreakerStates, upstreams []string) *HealthHandler {
	return &HealthHandler{
		store:     store,
		breakers:  breakers,
		upstreams: upstreams,
		startedAt: time.Now(),
		logger:    logger.WithComponent("health_handler"),
	}
}

// Health reports liveness plus the state of each dependency. Redis
// being down degrades the status without failing the endpoint.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if err := h.store.HealthCheck(c.Request.Context()); err != nil {
		checks["redis"] = "unhealthy: " + err.Error()
		status = "degraded"
	} else {
		checks["redis"] = "healthy"
	}

	for _, upstream := range h.upstreams {
		state := h.breakers.State(upstream)
		checks["breaker_"+upstream] = state.String()
		if state == gobreaker.StateOpen {
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   "lineup-service",
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Checks:    checks,
	})
}

// Ready reports whether the service can take a run request. Only Redis
// is a hard requirement.
func (h *HealthHandler) Ready(c *gin.Context) {
	redisOK := h.store.HealthCheck(c.Request.Context()) == nil

	status := http.StatusOK
	if !redisOK {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, ReadinessResponse{
		Ready:     redisOK,
		Timestamp: time.Now().UTC(),
		Checks:    map[string]bool{"redis": redisOK},
	})
}
