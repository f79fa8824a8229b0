package telemetry

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

type Counter struct {
	val atomic.Int64
}

func (c *Counter) Inc()         { c.val.Add(1) }
func (c *Counter) Add(n int64)  { c.val.Add(n) }
func (c *Counter) Value() int64 { return c.val.Load() }

type Gauge struct {
	val atomic.Int64
}

func (g *Gauge) Set(v int64)  { g.val.Store(v) }
func (g *Gauge) Inc()         { g.val.Add(1) }
func (g *Gauge) Dec()         { g.val.Add(-1) }
func (g *Gauge) Value() int64 { return g.val.Load() }

// LatencyTracker keeps the most recent maxKeep samples.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []time.Duration
	maxKeep int
}

func NewLatencyTracker(maxKeep int) *LatencyTracker {
	return &LatencyTracker{maxKeep: maxKeep}
}

func (lt *LatencyTracker) Record(d time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.samples = append(lt.samples, d)
	if len(lt.samples) > lt.maxKeep {
		lt.samples = lt.samples[len(lt.samples)-lt.maxKeep:]
	}
}

// Since records the time elapsed from start.
func (lt *LatencyTracker) Since(start time.Time) { lt.Record(time.Since(start)) }

func (lt *LatencyTracker) P50() time.Duration { return lt.percentile(0.50) }
func (lt *LatencyTracker) P99() time.Duration { return lt.percentile(0.99) }

func (lt *LatencyTracker) percentile(p float64) time.Duration {
	lt.mu.Lock()
	sorted := slices.Clone(lt.samples)
	lt.mu.Unlock()
	if len(sorted) == 0 {
		return 0
	}
	slices.Sort(sorted)
	return sorted[int(float64(len(sorted)-1)*p)]
}

// Metrics is the global metrics registry.
var Metrics = struct {
	GamesIngested   Counter
	GamesRejected   Counter
	GamesSkipped    Counter
	ScrapeRequests  Counter
	ScrapeErrors    Counter
	Recomputes      Counter
	RecomputeErrors Counter
	APIRequests     Counter
	AlertsSent      Counter
	FanoutClients   Gauge
	FanoutDropped   Counter
	ScrapeLatency   *LatencyTracker
	RecomputeTime   *LatencyTracker
}{
	ScrapeLatency: NewLatencyTracker(500),
	RecomputeTime: NewLatencyTracker(500),
}

// Snapshot is a point-in-time copy of Metrics for the debug endpoint.
type Snapshot struct {
	GamesIngested   int64  `json:"games_ingested"`
	GamesRejected   int64  `json:"games_rejected"`
	GamesSkipped    int64  `json:"games_skipped"`
	ScrapeRequests  int64  `json:"scrape_requests"`
	ScrapeErrors    int64  `json:"scrape_errors"`
	Recomputes      int64  `json:"recomputes"`
	RecomputeErrors int64  `json:"recompute_errors"`
	APIRequests     int64  `json:"api_requests"`
	AlertsSent      int64  `json:"alerts_sent"`
	FanoutClients   int64  `json:"fanout_clients"`
	FanoutDropped   int64  `json:"fanout_dropped"`
	ScrapeP50       string `json:"scrape_p50"`
	ScrapeP99       string `json:"scrape_p99"`
	RecomputeP50    string `json:"recompute_p50"`
	RecomputeP99    string `json:"recompute_p99"`
}

func TakeSnapshot() Snapshot {
	m := &Metrics
	return Snapshot{
		GamesIngested:   m.GamesIngested.Value(),
		GamesRejected:   m.GamesRejected.Value(),
		GamesSkipped:    m.GamesSkipped.Value(),
		ScrapeRequests:  m.ScrapeRequests.Value(),
		ScrapeErrors:    m.ScrapeErrors.Value(),
		Recomputes:      m.Recomputes.Value(),
		RecomputeErrors: m.RecomputeErrors.Value(),
		APIRequests:     m.APIRequests.Value(),
		AlertsSent:      m.AlertsSent.Value(),
		FanoutClients:   m.FanoutClients.Value(),
		FanoutDropped:   m.FanoutDropped.Value(),
		ScrapeP50:       m.ScrapeLatency.P50().String(),
		ScrapeP99:       m.ScrapeLatency.P99().String(),
		RecomputeP50:    m.RecomputeTime.P50().String(),
		RecomputeP99:    m.RecomputeTime.P99().String(),
	}
}
