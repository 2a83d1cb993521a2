// Package-level request monitoring: structured logs plus in-process counters.
package utils

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType represents the type of metric being recorded
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric represents a single recorded metric
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Count     int64             `json:"count"`
	Labels    map[string]string `json:"labels,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Monitor handles structured request logging and metrics collection for the
// client pipeline. Counters accumulate in process; Snapshot exposes them for
// the status command.
type Monitor struct {
	logger  *slog.Logger
	enabled bool

	mu      sync.RWMutex
	metrics map[string]*Metric
}

// NewMonitor creates a new monitoring instance
func NewMonitor(logger *slog.Logger, enabled bool) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		logger:  logger,
		enabled: enabled,
		metrics: make(map[string]*Metric),
	}
}

// LogAPIRequest logs an API request with structured information
func (m *Monitor) LogAPIRequest(ctx context.Context, method, endpoint string, statusCode int, duration time.Duration, err error) {
	attributes := []any{
		"method", method,
		"endpoint", endpoint,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"success", err == nil,
	}

	if err != nil {
		attributes = append(attributes, "error", err.Error())
		m.logger.ErrorContext(ctx, "API request failed", attributes...)
	} else {
		m.logger.InfoContext(ctx, "API request completed", attributes...)
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	m.RecordCounter("requests_total", 1, map[string]string{
		"method": method,
		"status": status,
	})
	m.RecordHistogram("request_duration_seconds", duration.Seconds(), map[string]string{
		"method": method,
	})
}

// LogTokenRefresh logs credential refresh events
func (m *Monitor) LogTokenRefresh(ctx context.Context, success bool, duration time.Duration, err error) {
	attributes := []any{
		"success", success,
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		attributes = append(attributes, "error", err.Error())
		m.logger.ErrorContext(ctx, "Token refresh failed", attributes...)
	} else {
		m.logger.InfoContext(ctx, "Token refresh completed", attributes...)
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	m.RecordCounter("token_refresh_total", 1, map[string]string{"status": status})
}

// LogRetry logs a recovery retry (credential refresh or CSRF reissue path).
func (m *Monitor) LogRetry(ctx context.Context, reason, endpoint string) {
	m.logger.InfoContext(ctx, "Retrying request after recovery",
		"reason", reason,
		"endpoint", endpoint)
	m.RecordCounter("request_retries_total", 1, map[string]string{"reason": reason})
}

// RecordCounter accumulates a counter metric
func (m *Monitor) RecordCounter(name string, value float64, labels map[string]string) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := metricKey(name, labels)
	if existing, ok := m.metrics[key]; ok {
		existing.Value += value
		existing.Count++
		existing.UpdatedAt = time.Now()
		return
	}
	m.metrics[key] = &Metric{
		Name:      name,
		Type:      MetricTypeCounter,
		Value:     value,
		Count:     1,
		Labels:    labels,
		UpdatedAt: time.Now(),
	}
}

// RecordHistogram accumulates an observation; Value holds the running sum and
// Count the number of observations.
func (m *Monitor) RecordHistogram(name string, value float64, labels map[string]string) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := metricKey(name, labels)
	if existing, ok := m.metrics[key]; ok {
		existing.Value += value
		existing.Count++
		existing.UpdatedAt = time.Now()
		return
	}
	m.metrics[key] = &Metric{
		Name:      name,
		Type:      MetricTypeHistogram,
		Value:     value,
		Count:     1,
		Labels:    labels,
		UpdatedAt: time.Now(),
	}
}

// Snapshot returns a copy of all recorded metrics sorted by name.
func (m *Monitor) Snapshot() []Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make([]Metric, 0, len(m.metrics))
	for _, metric := range m.metrics {
		snapshot = append(snapshot, *metric)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].Name != snapshot[j].Name {
			return snapshot[i].Name < snapshot[j].Name
		}
		return metricKey("", snapshot[i].Labels) < metricKey("", snapshot[j].Labels)
	})
	return snapshot
}

func metricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range keys {
		sb.WriteByte('|')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(labels[k])
	}
	return sb.String()
}
