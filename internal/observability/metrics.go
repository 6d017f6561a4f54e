package observability

import (
	"sync"
	"time"
)

// RouteStats aggregates request outcomes for one method and path.
type RouteStats struct {
	Requests     int64         `json:"requests"`
	ServerErrors int64         `json:"server_errors"`
	TotalTime    time.Duration `json:"total_time_ns"`
	MaxTime      time.Duration `json:"max_time_ns"`
}

// Metrics keeps in-memory counters for the helpdesk HTTP surface: request
// volume and latency per route, plus handled errors by domain code. Served
// through the health metrics endpoint.
type Metrics struct {
	mu     sync.Mutex
	routes map[string]*RouteStats
	errors map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		routes: make(map[string]*RouteStats),
		errors: make(map[string]int64),
	}
}

// RecordRequest folds one completed request into the route's aggregate.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := method + " " + path
	stats := m.routes[key]
	if stats == nil {
		stats = &RouteStats{}
		m.routes[key] = stats
	}
	stats.Requests++
	if status >= 500 {
		stats.ServerErrors++
	}
	stats.TotalTime += duration
	if duration > stats.MaxTime {
		stats.MaxTime = duration
	}
}

// RecordError counts a handled error by route and domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[method+" "+path+" "+code]++
}

// Snapshot copies the current counters for reporting.
func (m *Metrics) Snapshot() (map[string]RouteStats, map[string]int64) {
	if m == nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	routes := make(map[string]RouteStats, len(m.routes))
	for key, stats := range m.routes {
		routes[key] = *stats
	}
	errors := make(map[string]int64, len(m.errors))
	for key, count := range m.errors {
		errors[key] = count
	}
	return routes, errors
}
