package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker defines interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthCheckFunc lets a plain function act as a HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Check(ctx context.Context) error { return f(ctx) }

// Dependency is one named health check. A failing optional one marks the service
// degraded but keeps /health at 200, since analysis still works without it.
type Dependency struct {
	Name     string
	Checker  HealthChecker
	Optional bool
}

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthStatus represents the health status
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus represents individual check status
type CheckStatus struct {
	Status    string `json:"status"`
	Optional  bool   `json:"optional,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
	Message   string `json:"message,omitempty"`
}

// HealthHandler runs every dependency concurrently under one 5s budget.
func HealthHandler(deps []Dependency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := HealthStatus{
			Status:    statusHealthy,
			Timestamp: time.Now(),
			Checks:    make(map[string]CheckStatus, len(deps)),
		}

		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, d := range deps {
			wg.Add(1)
			go func(d Dependency) {
				defer wg.Done()
				start := time.Now()
				err := d.Checker.Check(ctx)

				cs := CheckStatus{
					Status:    statusHealthy,
					Optional:  d.Optional,
					LatencyMs: time.Since(start).Milliseconds(),
				}
				if err != nil {
					cs.Status = statusUnhealthy
					cs.Message = err.Error()
				}

				mu.Lock()
				defer mu.Unlock()
				health.Checks[d.Name] = cs
				switch {
				case err == nil:
				case d.Optional:
					if health.Status == statusHealthy {
						health.Status = statusDegraded
					}
				default:
					health.Status = statusUnhealthy
				}
			}(d)
		}
		wg.Wait()

		statusCode := http.StatusOK
		if health.Status == statusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(health)
	}
}

// ReadinessHandler reports ready once the router is serving.
func ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessHandler creates a liveness check handler (simplest check)
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
