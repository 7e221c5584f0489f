package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"edulog/internal/attendance"
	"edulog/internal/auth"
	"edulog/internal/config"
	"edulog/internal/events"
	"edulog/internal/identity"
	"edulog/internal/queue"
)

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// Handler carries the wired application services for the HTTP surface.
// Everything is injected at startup; there is no package-level state.
type Handler struct {
	cfg       config.App
	identity  *identity.Service
	users     identity.Store
	att       *attendance.Service
	events    events.Store
	queue     queue.Queue
	blacklist *auth.Blacklist
	redis     HealthChecker
	dbHealthy func() bool
}

// New creates the handler set.
func New(cfg config.App, idSvc *identity.Service, users identity.Store, att *attendance.Service, ev events.Store, q queue.Queue, bl *auth.Blacklist) *Handler {
	return &Handler{
		cfg:       cfg,
		identity:  idSvc,
		users:     users,
		att:       att,
		events:    ev,
		queue:     q,
		blacklist: bl,
		dbHealthy: func() bool { return true },
	}
}

// WithHealth wires the health probe dependencies.
func (h *Handler) WithHealth(redis HealthChecker, dbHealthy func() bool) *Handler {
	h.redis = redis
	if dbHealthy != nil {
		h.dbHealthy = dbHealthy
	}
	return h
}

// Healthz reports db and redis reachability, 503 when either is down.
func (h *Handler) Healthz(c *gin.Context) {
	redisHealthy := h.redis != nil && h.redis.Healthy(c.Request.Context())
	dbHealthy := h.dbHealthy()
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}
