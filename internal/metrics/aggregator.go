// internal/metrics/aggregator.go
// Package metrics aggregates request statistics for the analytics gateway.
package metrics

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Aggregator collects per-endpoint request metrics. It is safe for
// concurrent use; export fetches record from several goroutines.
type Aggregator struct {
	mutex   sync.Mutex
	metrics map[string]*EndpointMetrics
	now     func() time.Time
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		metrics: make(map[string]*EndpointMetrics),
		now:     time.Now,
	}
}

// Record adds one finished request. Failed requests count towards latency
// but not response size.
func (a *Aggregator) Record(endpoint string, latency time.Duration, size int, err error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	m, exists := a.metrics[endpoint]
	if !exists {
		m = &EndpointMetrics{Endpoint: endpoint}
		a.metrics[endpoint] = m
	}
	m.LastUpdatedUTC = a.now().UTC()
	m.Requests++
	updateRunningStat(&m.LatencyMillis, float64(latency)/float64(time.Millisecond))
	if err != nil {
		m.Failures++
		return
	}
	updateRunningStat(&m.ResponseBytes, float64(size))
}

// Snapshot returns a copy of every endpoint's metrics sorted by endpoint.
func (a *Aggregator) Snapshot() []EndpointMetrics {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	out := make([]EndpointMetrics, 0, len(a.metrics))
	for _, m := range a.metrics {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}

// Report writes one line per endpoint.
func (a *Aggregator) Report(w io.Writer) {
	snapshot := a.Snapshot()
	if len(snapshot) == 0 {
		fmt.Fprintln(w, "No requests recorded.")
		return
	}
	fmt.Fprintf(w, "%-26s %8s %8s %10s %10s %10s\n", "Endpoint", "Requests", "Failed", "Avg ms", "Max ms", "Avg size")
	for _, m := range snapshot {
		fmt.Fprintf(w, "%-26s %8d %8d %10.1f %10.1f %10s\n",
			m.Endpoint, m.Requests, m.Failures, m.LatencyMillis.Mean, m.LatencyMillis.Max,
			humanize.Bytes(uint64(m.ResponseBytes.Mean)))
	}
}

// StdDev returns the sample standard deviation.
func (rs RunningStat) StdDev() float64 {
	if rs.Count < 2 {
		return 0
	}
	return math.Sqrt(rs.M2 / float64(rs.Count-1))
}

// updateRunningStat updates a single running statistic using Welford's online algorithm.
func updateRunningStat(rs *RunningStat, value float64) {
	rs.Count++
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2
}
