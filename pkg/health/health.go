// Package health reports whether the tabkit server can render its panel
// and reach its session store.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gabrielmiguelok/tabkit/pkg/state"
	"github.com/gabrielmiguelok/tabkit/pkg/tabbable"
)

// Status represents the health status of a service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// DefaultTimeout bounds a check registered without a timeout.
const DefaultTimeout = 5 * time.Second

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Status     Status `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Report is the overall health.
type Report struct {
	Status    Status                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

type check struct {
	name     string
	fn       func(ctx context.Context) error
	timeout  time.Duration
	critical bool
}

// Checker runs registered checks concurrently.
type Checker struct {
	mu      sync.RWMutex
	checks  []check
	version string
}

// NewChecker creates a checker reporting version.
func NewChecker(version string) *Checker {
	return &Checker{version: version}
}

// AddCheck registers a check whose failure degrades the service.
func (hc *Checker) AddCheck(name string, fn func(context.Context) error, timeout time.Duration) {
	hc.add(check{name: name, fn: fn, timeout: timeout})
}

// AddCriticalCheck registers a check whose failure makes the service unhealthy.
func (hc *Checker) AddCriticalCheck(name string, fn func(context.Context) error, timeout time.Duration) {
	hc.add(check{name: name, fn: fn, timeout: timeout, critical: true})
}

func (hc *Checker) add(c check) {
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks = append(hc.checks, c)
}

// Check runs all checks and returns the combined report.
func (hc *Checker) Check(ctx context.Context) Report {
	hc.mu.RLock()
	checks := make([]check, len(hc.checks))
	copy(checks, hc.checks)
	hc.mu.RUnlock()

	report := Report{
		Status:    StatusHealthy,
		Checks:    make(map[string]CheckResult, len(checks)),
		Timestamp: time.Now(),
		Version:   hc.version,
	}

	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		i, c := i, c
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = run(ctx, c)
		}()
	}
	wg.Wait()

	for i, c := range checks {
		r := results[i]
		report.Checks[c.name] = r
		if r.Status == StatusHealthy {
			continue
		}
		if c.critical {
			report.Status = StatusUnhealthy
		} else if report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	}
	return report
}

func run(ctx context.Context, c check) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := c.fn(ctx)
	result := CheckResult{
		Status:     StatusHealthy,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

// Handler serves the report as JSON. It answers 503 when a critical check
// fails and 200 otherwise.
func (hc *Checker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := hc.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		json.NewEncoder(w).Encode(report)
	})
}

// PanelCheck fails when cfg no longer renders with panel.
func PanelCheck(panel *tabbable.Panel, cfg tabbable.Config) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := panel.Render(cfg)
		return err
	}
}

// StoreCheck writes, reads back and deletes a check key.
func StoreCheck(store state.Store) func(context.Context) error {
	return func(ctx context.Context) error {
		const key = "tabkit:health:check"
		want := []byte(time.Now().UTC().Format(time.RFC3339Nano))
		if err := store.Set(ctx, key, want, time.Minute); err != nil {
			return fmt.Errorf("set check key: %w", err)
		}
		got, err := store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("get check key: %w", err)
		}
		if string(got) != string(want) {
			return errors.New("check key value mismatch")
		}
		return store.Delete(ctx, key)
	}
}
