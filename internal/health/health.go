package health

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Status represents the health status of a service or dependency.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

var errNotRunning = errors.New("not running")

// CheckResult represents the health check result for a single dependency.
type CheckResult struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthStatus represents the overall health status of the service.
type HealthStatus struct {
	Status  Status                 `json:"status"`
	Version string                 `json:"version,omitempty"`
	Mode    string                 `json:"mode,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// Pinger is satisfied by domain.BlobStore.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// RunningFunc adapts a background worker's running flag into a Pinger.
func RunningFunc(running func() bool) Pinger {
	return PingFunc(func(context.Context) error {
		if !running() {
			return errNotRunning
		}
		return nil
	})
}

// Checker performs health checks on service dependencies.
type Checker struct {
	checks  map[string]Pinger
	version string
	mode    string
}

// NewChecker creates a new health checker. mode is the delivery mode
// reported alongside the checks.
func NewChecker(version, mode string) *Checker {
	return &Checker{
		checks:  make(map[string]Pinger),
		version: version,
		mode:    mode,
	}
}

// Register adds a named dependency check. Not safe after serving starts.
func (c *Checker) Register(name string, p Pinger) *Checker {
	if p != nil {
		c.checks[name] = p
	}
	return c
}

// Check performs health checks on all dependencies and returns the overall status.
func (c *Checker) Check(ctx context.Context) *HealthStatus {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status:  StatusHealthy,
		Version: c.version,
		Mode:    c.mode,
		Checks:  make(map[string]CheckResult, len(c.checks)),
	}

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		start := time.Now()
		if err := c.checks[name].Ping(checkCtx); err != nil {
			status.Status = StatusUnhealthy
			status.Checks[name] = CheckResult{
				Status: StatusUnhealthy,
				Error:  err.Error(),
			}
			continue
		}
		status.Checks[name] = CheckResult{
			Status:    StatusHealthy,
			LatencyMs: time.Since(start).Milliseconds(),
		}
	}

	return status
}

// LiveHandler returns a Gin handler for liveness probes.
func (c *Checker) LiveHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ReadyHandler returns a Gin handler for readiness probes.
func (c *Checker) ReadyHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := c.Check(ctx.Request.Context())

		httpStatus := http.StatusOK
		if status.Status != StatusHealthy {
			httpStatus = http.StatusServiceUnavailable
		}

		ctx.JSON(httpStatus, status)
	}
}
