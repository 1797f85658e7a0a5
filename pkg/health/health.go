// Package health reports service liveness and storage reachability.
package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"

	defaultPingTimeout = 2 * time.Second
)

// Pinger is satisfied by database.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Response is the body of GET /api/health. The endpoint answers 200 even when storage is
// unreachable; Database tells the two apart.
type Response struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	Database       string `json:"database"`
	ResponseTimeMs int64  `json:"response_time_ms"`
}

// ReadyResponse is the body of GET /api/health/ready
type ReadyResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// Checker handles health check endpoints
type Checker struct {
	db          Pinger
	pingTimeout time.Duration
	startTime   time.Time
	ready       atomic.Bool
	now         func() time.Time
}

// NewChecker creates a new health checker. A non-positive pingTimeout uses two seconds.
func NewChecker(db Pinger, pingTimeout time.Duration) *Checker {
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	return &Checker{
		db:          db,
		pingTimeout: pingTimeout,
		startTime:   time.Now(),
		now:         time.Now,
	}
}

// SetReady sets the readiness state
func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

// RegisterRoutes registers health check endpoints
func (c *Checker) RegisterRoutes(g *echo.Group) {
	g.GET("/health", c.Health)
	g.GET("/health/ready", c.Ready)
}

// Check pings storage once, bounded by the ping timeout.
func (c *Checker) Check(ctx context.Context) Response {
	pingCtx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	start := c.now()
	err := c.db.PingContext(pingCtx)
	elapsed := c.now().Sub(start)

	database := DatabaseConnected
	if err != nil {
		database = DatabaseDisconnected
	}

	return Response{
		Status:         StatusHealthy,
		Timestamp:      c.now().UTC().Format(time.RFC3339),
		Database:       database,
		ResponseTimeMs: elapsed.Milliseconds(),
	}
}

// Health godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router /health [get]
func (c *Checker) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.Check(ctx.Request().Context()))
}

// Ready answers 503 until startup has finished.
func (c *Checker) Ready(ctx echo.Context) error {
	status, code := StatusHealthy, http.StatusOK
	if !c.ready.Load() {
		status, code = StatusUnhealthy, http.StatusServiceUnavailable
	}
	return ctx.JSON(code, ReadyResponse{
		Status: status,
		Uptime: time.Since(c.startTime).Round(time.Second).String(),
	})
}
