package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ProbeStatus encodes the outcome of a health probe.
type ProbeStatus string

const (
	StatusUp       ProbeStatus = "up"
	StatusDown     ProbeStatus = "down"
	StatusDegraded ProbeStatus = "degraded"
)

const defaultProbeTimeout = 2 * time.Second

// ProbeResult captures a single dependency check outcome.
type ProbeResult struct {
	Component string        `json:"component"`
	Status    ProbeStatus   `json:"status"`
	Details   string        `json:"details,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Report aggregates probe results.
type Report struct {
	Status ProbeStatus   `json:"status"`
	Checks []ProbeResult `json:"checks"`
}

// Healthy reports whether every probe is up.
func (r Report) Healthy() bool {
	return r.Status == StatusUp
}

// Probe checks one dependency; a nil error means up.
type Probe struct {
	Name    string
	Timeout time.Duration
	Check   func(ctx context.Context) error
}

// Pinger is implemented by dependencies that can be pinged, such as cache.RedisStore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingProbe wraps a Pinger in a Probe.
func PingProbe(name string, target Pinger) Probe {
	return Probe{
		Name: name,
		Check: func(ctx context.Context) error {
			if target == nil {
				return errors.New("not configured")
			}
			return target.Ping(ctx)
		},
	}
}

// HealthChecker evaluates readiness probes.
type HealthChecker struct {
	probes []Probe
}

// NewHealthChecker constructs a checker with the supplied probes. Unnamed probes are ignored.
func NewHealthChecker(probes ...Probe) *HealthChecker {
	h := &HealthChecker{}
	for _, probe := range probes {
		h.Register(probe)
	}
	return h
}

// Register appends a probe.
func (h *HealthChecker) Register(probe Probe) {
	if probe.Name == "" || probe.Check == nil {
		return
	}
	h.probes = append(h.probes, probe)
}

// Evaluate runs every probe sequentially. A probe that times out degrades the
// report; any other failure takes it down.
func (h *HealthChecker) Evaluate(ctx context.Context) Report {
	if ctx == nil {
		ctx = context.Background()
	}

	report := Report{Status: StatusUp, Checks: make([]ProbeResult, 0, len(h.probes))}
	for _, probe := range h.probes {
		result := runProbe(ctx, probe)
		report.Checks = append(report.Checks, result)
		report.Status = worst(report.Status, result.Status)
	}
	return report
}

func runProbe(ctx context.Context, probe Probe) (result ProbeResult) {
	timeout := probe.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			result = ProbeResult{Status: StatusDown, Details: fmt.Sprint(rec)}
		}
		result.Component = probe.Name
		result.Duration = time.Since(start)
	}()

	return resultFromError(probe.Check(probeCtx))
}

func resultFromError(err error) ProbeResult {
	switch {
	case err == nil:
		return ProbeResult{Status: StatusUp}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ProbeResult{Status: StatusDegraded, Details: err.Error()}
	default:
		return ProbeResult{Status: StatusDown, Details: err.Error()}
	}
}

func worst(a, b ProbeStatus) ProbeStatus {
	rank := map[ProbeStatus]int{StatusUp: 0, StatusDegraded: 1, StatusDown: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
