package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates counters for the date API.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64
	matchTotal    atomic.Int64
	parsingErrors atomic.Int64

	operations map[string]*operationMetrics

	// Last maxDurations request durations, oldest first.
	durations    []time.Duration
	maxDurations int
}

type operationMetrics struct {
	count         atomic.Int64
	errors        atomic.Int64
	totalDuration atomic.Int64 // milliseconds
}

// NewMetrics creates a metrics collector keeping at most maxDurations samples.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		operations:   make(map[string]*operationMetrics),
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

// RecordRequest counts one call of operation.
func (m *Metrics) RecordRequest(operation string) {
	m.requestTotal.Add(1)
	m.operation(operation).count.Add(1)
}

// RecordFailure counts one failed call of operation.
func (m *Metrics) RecordFailure(operation string) {
	m.requestFailed.Add(1)
	m.operation(operation).errors.Add(1)
}

// RecordDuration records how long one call of operation took.
func (m *Metrics) RecordDuration(operation string, d time.Duration) {
	m.operation(operation).totalDuration.Add(d.Milliseconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, d)
}

// RecordMatches counts recognized spans and how many of them failed to resolve.
func (m *Metrics) RecordMatches(total, failed int) {
	m.matchTotal.Add(int64(total))
	m.parsingErrors.Add(int64(failed))
}

func (m *Metrics) operation(name string) *operationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	om, ok := m.operations[name]
	if !ok {
		om = &operationMetrics{}
		m.operations[name] = om
	}
	return om
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)
	m.matchTotal.Store(0)
	m.parsingErrors.Store(0)

	m.mu.Lock()
	m.operations = make(map[string]*operationMetrics)
	m.durations = make([]time.Duration, 0, m.maxDurations)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	ops := make(map[string]*OperationSnapshot, len(m.operations))
	for name, om := range m.operations {
		s := &OperationSnapshot{
			Count:         om.count.Load(),
			Errors:        om.errors.Load(),
			TotalDuration: om.totalDuration.Load(),
		}
		if s.Count > 0 {
			s.AverageDuration = s.TotalDuration / s.Count
		}
		ops[name] = s
	}

	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		MatchTotal:    m.matchTotal.Load(),
		ParsingErrors: m.parsingErrors.Load(),
		Operations:    ops,
		P95Duration:   percentile(m.durations, 0.95).Milliseconds(),
	}
}

func percentile(samples []time.Duration, p float64) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// MetricsSnapshot is served by the system metrics endpoint.
type MetricsSnapshot struct {
	RequestTotal  int64                         `json:"request_total"`
	RequestFailed int64                         `json:"request_failed"`
	MatchTotal    int64                         `json:"match_total"`
	ParsingErrors int64                         `json:"parsing_errors"`
	Operations    map[string]*OperationSnapshot `json:"operations"`
	P95Duration   int64                         `json:"p95_duration_ms"`
}

// OperationSnapshot holds per-operation totals. Durations are in milliseconds.
type OperationSnapshot struct {
	Count           int64 `json:"count"`
	Errors          int64 `json:"errors"`
	TotalDuration   int64 `json:"total_duration_ms"`
	AverageDuration int64 `json:"average_duration_ms"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
