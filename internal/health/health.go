// Package health aggregates component health checks. Aggregation is
// worst-status-wins across HEALTHY/DEGRADED/UNHEALTHY, and a check that
// misses its deadline counts as UNHEALTHY.
package health

import (
	"context"
	"time"
)

// Status is a component health level. Higher is worse.
type Status int

const (
	Healthy Status = iota
	Degraded
	Unhealthy
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "HEALTHY"
	case Degraded:
		return "DEGRADED"
	default:
		return "UNHEALTHY"
	}
}

// Check probes one component.
type Check struct {
	Name  string
	Probe func(ctx context.Context) Status
}

// Report is the outcome of one aggregation pass.
type Report struct {
	Status     Status            `json:"status"`
	Components map[string]string `json:"components"`
}

// Aggregator runs a fixed set of checks with a per-check timeout.
type Aggregator struct {
	checks  []Check
	timeout time.Duration
}

// NewAggregator creates an aggregator. A zero timeout defaults to 2s.
func NewAggregator(timeout time.Duration, checks ...Check) *Aggregator {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Aggregator{checks: checks, timeout: timeout}
}

// Run executes every check and aggregates worst-status-wins. Checks run
// sequentially; each gets its own deadline.
func (a *Aggregator) Run(ctx context.Context) Report {
	report := Report{Status: Healthy, Components: make(map[string]string, len(a.checks))}
	for _, check := range a.checks {
		status := a.runOne(ctx, check)
		report.Components[check.Name] = status.String()
		if status > report.Status {
			report.Status = status
		}
	}
	return report
}

func (a *Aggregator) runOne(ctx context.Context, check Check) Status {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan Status, 1)
	go func() {
		done <- check.Probe(ctx)
	}()

	select {
	case status := <-done:
		return status
	case <-ctx.Done():
		return Unhealthy
	}
}
