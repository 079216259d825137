// Package metrics counts live panel activity and exposes it in the
// Prometheus text format.
package metrics

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds the live-session metrics. A nil *Metrics discards every
// observation.
type Metrics struct {
	namespace string

	SessionsActive *Gauge
	SessionsTotal  *Counter
	Events         *CounterVec
	Errors         *CounterVec
	RenderDuration *Histogram
}

// NewMetrics creates a metrics set whose names start with namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		namespace:      namespace,
		SessionsActive: NewGauge("sessions_active", "Live sessions currently connected"),
		SessionsTotal:  NewCounter("sessions_total", "Live sessions opened"),
		Events:         NewCounterVec("events_total", "Client events handled", "event"),
		Errors:         NewCounterVec("errors_total", "Client events rejected", "event"),
		RenderDuration: NewHistogram("render_duration_seconds", "Panel render duration"),
	}
}

// SessionOpened records a new live session.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
	m.SessionsTotal.Inc()
}

// SessionClosed records the end of a live session.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

// EventHandled records one client event and whether it was rejected.
func (m *Metrics) EventHandled(event string, err error) {
	if m == nil {
		return
	}
	m.Events.Inc(event)
	if err != nil {
		m.Errors.Inc(event)
	}
}

// ObserveRender records the duration of one render.
func (m *Metrics) ObserveRender(d time.Duration) {
	if m == nil {
		return
	}
	m.RenderDuration.ObserveDuration(d)
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		m.WriteTo(w)
	})
}

// WriteTo writes every metric to w.
func (m *Metrics) WriteTo(w io.Writer) (int64, error) {
	pw := &promWriter{w: w, namespace: m.namespace}
	pw.single("gauge", m.SessionsActive.name, m.SessionsActive.help, m.SessionsActive.Value())
	pw.single("counter", m.SessionsTotal.name, m.SessionsTotal.help, m.SessionsTotal.Value())
	pw.vec(m.Events)
	pw.vec(m.Errors)
	pw.histogram(m.RenderDuration)
	return pw.n, pw.err
}

type promWriter struct {
	w         io.Writer
	namespace string
	n         int64
	err       error
}

func (pw *promWriter) printf(format string, args ...any) {
	if pw.err != nil {
		return
	}
	n, err := fmt.Fprintf(pw.w, format, args...)
	pw.n += int64(n)
	pw.err = err
}

func (pw *promWriter) header(kind, name, help string) string {
	full := pw.namespace + "_" + name
	pw.printf("# HELP %s %s\n# TYPE %s %s\n", full, help, full, kind)
	return full
}

func (pw *promWriter) single(kind, name, help string, value float64) {
	full := pw.header(kind, name, help)
	pw.printf("%s %g\n", full, value)
}

func (pw *promWriter) vec(cv *CounterVec) {
	full := pw.header("counter", cv.name, cv.help)
	values := cv.Values()
	labels := make([]string, 0, len(values))
	for l := range values {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		pw.printf("%s{%s=%q} %g\n", full, cv.label, l, values[l])
	}
}

func (pw *promWriter) histogram(h *Histogram) {
	full := pw.header("summary", h.name, h.help)
	stats := h.Stats()
	pw.printf("%s_sum %g\n%s_count %d\n", full, stats.Sum, full, stats.Count)
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name  string
	help  string
	value int64
}

// NewCounter creates a new counter.
func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	atomic.AddInt64(&c.value, 1)
}

// Value returns the current value.
func (c *Counter) Value() float64 {
	return float64(atomic.LoadInt64(&c.value))
}

// Gauge is a value that can go up and down.
type Gauge struct {
	name  string
	help  string
	value int64
}

// NewGauge creates a new gauge.
func NewGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc() {
	atomic.AddInt64(&g.value, 1)
}

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() {
	atomic.AddInt64(&g.value, -1)
}

// Value returns the current value.
func (g *Gauge) Value() float64 {
	return float64(atomic.LoadInt64(&g.value))
}

// CounterVec is a counter partitioned by one label.
type CounterVec struct {
	name   string
	help   string
	label  string
	mu     sync.RWMutex
	values map[string]*Counter
}

// NewCounterVec creates a new counter vector.
func NewCounterVec(name, help, label string) *CounterVec {
	return &CounterVec{
		name:   name,
		help:   help,
		label:  label,
		values: make(map[string]*Counter),
	}
}

// WithLabel returns the counter for a label value.
func (cv *CounterVec) WithLabel(value string) *Counter {
	cv.mu.RLock()
	c, ok := cv.values[value]
	cv.mu.RUnlock()
	if ok {
		return c
	}

	cv.mu.Lock()
	defer cv.mu.Unlock()
	if c, ok := cv.values[value]; ok {
		return c
	}
	c = NewCounter(cv.name, cv.help)
	cv.values[value] = c
	return c
}

// Inc increments the counter for label.
func (cv *CounterVec) Inc(label string) {
	cv.WithLabel(label).Inc()
}

// Values returns all counter values by label.
func (cv *CounterVec) Values() map[string]float64 {
	cv.mu.RLock()
	defer cv.mu.RUnlock()

	result := make(map[string]float64, len(cv.values))
	for label, counter := range cv.values {
		result[label] = counter.Value()
	}
	return result
}

// Histogram tracks the sum and count of observed values.
type Histogram struct {
	name string
	help string

	mu    sync.Mutex
	sum   float64
	count int64
	min   float64
	max   float64
}

// HistogramStats is a snapshot of a histogram.
type HistogramStats struct {
	Sum   float64
	Count int64
	Min   float64
	Max   float64
}

// NewHistogram creates a new histogram.
func NewHistogram(name, help string) *Histogram {
	return &Histogram{name: name, help: help, min: math.Inf(1), max: math.Inf(-1)}
}

// Observe records a value.
func (h *Histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sum += value
	h.count++
	h.min = math.Min(h.min, value)
	h.max = math.Max(h.max, value)
}

// ObserveDuration records a duration in seconds.
func (h *Histogram) ObserveDuration(d time.Duration) {
	h.Observe(d.Seconds())
}

// Stats returns a snapshot. Min and Max are zero when nothing was observed.
func (h *Histogram) Stats() HistogramStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		return HistogramStats{}
	}
	return HistogramStats{Sum: h.sum, Count: h.count, Min: h.min, Max: h.max}
}
