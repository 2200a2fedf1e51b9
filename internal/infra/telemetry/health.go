package telemetry

import (
	"context"
	"sort"
	"sync"
	"time"
)

const healthProbeTimeout = 2 * time.Second

// HealthProbe reports whether a dependency is usable.
type HealthProbe func(ctx context.Context) error

type HealthCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthReport struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks,omitempty"`
}

type HealthTracker struct {
	mu     sync.RWMutex
	probes map[string]HealthProbe
}

func NewHealthTracker() *HealthTracker {
	return &HealthTracker{probes: make(map[string]HealthProbe)}
}

// Register adds or replaces the probe stored under name.
func (h *HealthTracker) Register(name string, probe HealthProbe) {
	if h == nil || probe == nil {
		return
	}
	h.mu.Lock()
	h.probes[name] = probe
	h.mu.Unlock()
}

func (h *HealthTracker) Report(ctx context.Context) HealthReport {
	report := HealthReport{Status: "ok"}
	if h == nil {
		return report
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	probes := make(map[string]HealthProbe, len(h.probes))
	for name, probe := range h.probes {
		probes[name] = probe
	}
	h.mu.RUnlock()
	sort.Strings(names)

	for _, name := range names {
		probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
		err := probes[name](probeCtx)
		cancel()

		check := HealthCheck{Name: name, Status: "ok"}
		if err != nil {
			check.Status = "failing"
			check.Error = err.Error()
			report.Status = "degraded"
		}
		report.Checks = append(report.Checks, check)
	}
	return report
}
