// Package health provides health checks for long running simulations.
// It implements HTTP endpoints for liveness and readiness probes served
// next to the metrics endpoint.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HealthCheck defines the interface for individual health checks.
// Each component can implement this interface to provide its health status.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check performs the health check and returns an error if unhealthy
	Check(ctx context.Context) error
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker manages and executes health checks for the application.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a new health check with the health checker.
// If a check with the same name already exists, it will be replaced.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth executes all registered health checks and returns the aggregated status.
// The overall status is "healthy" only if all individual checks pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth),
	}

	// Execute all health checks
	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
		} else {
			status.Checks[name] = ComponentHealth{
				Status: "healthy",
			}
		}
	}

	return status
}

// LivenessHandler provides a simple liveness probe endpoint.
// This endpoint returns 200 OK while the process is able to handle requests.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]string{"status": "alive"}
	json.NewEncoder(w).Encode(response)
}

// ReadinessHandler provides a readiness probe endpoint that executes all health checks.
// This endpoint returns 200 OK if every check passes, or 503 Service Unavailable
// if any health check fails.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	// Create context with timeout for health checks
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")

	if health.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(health)
}

// SimulationMonitor records per-frame facts from the simulation loop so
// that checks running on HTTP goroutines never touch the scene itself.
type SimulationMonitor struct {
	frames    atomic.Uint64
	diverged  atomic.Bool
	lastFrame atomic.Int64 // nanoseconds
}

// NewSimulationMonitor creates a monitor with no frames recorded.
func NewSimulationMonitor() *SimulationMonitor {
	return &SimulationMonitor{}
}

// Record stores the outcome of one frame. Divergence is sticky.
func (m *SimulationMonitor) Record(frame uint64, finite bool, duration time.Duration) {
	m.frames.Store(frame)
	m.lastFrame.Store(int64(duration))
	if !finite {
		m.diverged.Store(true)
	}
}

// Frames returns the last recorded frame number.
func (m *SimulationMonitor) Frames() uint64 {
	return m.frames.Load()
}

// Diverged reports whether any recorded frame had non-finite state.
func (m *SimulationMonitor) Diverged() bool {
	return m.diverged.Load()
}

// LastFrameDuration returns the duration of the last recorded frame.
func (m *SimulationMonitor) LastFrameDuration() time.Duration {
	return time.Duration(m.lastFrame.Load())
}

// SimulationHealthCheck implements HealthCheck for the simulation state.
type SimulationHealthCheck struct {
	monitor *SimulationMonitor
}

// NewSimulationHealthCheck creates a health check for the simulation state.
func NewSimulationHealthCheck(monitor *SimulationMonitor) *SimulationHealthCheck {
	return &SimulationHealthCheck{
		monitor: monitor,
	}
}

// Name returns the name of this health check.
func (s *SimulationHealthCheck) Name() string {
	return "simulation"
}

// Check fails before the first frame and once the state has diverged.
func (s *SimulationHealthCheck) Check(ctx context.Context) error {
	if s.monitor.Diverged() {
		return fmt.Errorf("simulation diverged by frame %d", s.monitor.Frames())
	}
	if s.monitor.Frames() == 0 {
		return fmt.Errorf("simulation has not stepped yet")
	}
	return nil
}

// FrameBudgetHealthCheck implements HealthCheck for per-frame cost.
type FrameBudgetHealthCheck struct {
	monitor *SimulationMonitor
	budget  time.Duration
}

// NewFrameBudgetHealthCheck creates a health check failing when the last
// frame took longer than budget.
func NewFrameBudgetHealthCheck(monitor *SimulationMonitor, budget time.Duration) *FrameBudgetHealthCheck {
	return &FrameBudgetHealthCheck{
		monitor: monitor,
		budget:  budget,
	}
}

// Name returns the name of this health check.
func (f *FrameBudgetHealthCheck) Name() string {
	return "frame_budget"
}

// Check verifies that the last frame fit in the budget.
func (f *FrameBudgetHealthCheck) Check(ctx context.Context) error {
	if last := f.monitor.LastFrameDuration(); last > f.budget {
		return fmt.Errorf("last frame took %s, budget %s", last, f.budget)
	}
	return nil
}

// MemoryHealthCheck implements HealthCheck for memory usage monitoring.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this health check.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}
