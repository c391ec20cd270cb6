package metrics

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRecordAggregatesPerEndpoint(t *testing.T) {
	agg := NewAggregator()
	agg.Record("/top-defects", 10*time.Millisecond, 1000, nil)
	agg.Record("/top-defects", 30*time.Millisecond, 3000, nil)
	agg.Record("/top-defects", 20*time.Millisecond, 0, errors.New("boom"))
	agg.Record("/defect-rate-trend", 5*time.Millisecond, 200, nil)

	snap := agg.Snapshot()
	if len(snap) != 2 || snap[0].Endpoint != "/defect-rate-trend" {
		t.Fatalf("expected two endpoints sorted by name, got %+v", snap)
	}
	top := snap[1]
	if top.Requests != 3 || top.Failures != 1 {
		t.Fatalf("unexpected counts %+v", top)
	}
	if top.LatencyMillis.Mean != 20 || top.LatencyMillis.Min != 10 || top.LatencyMillis.Max != 30 {
		t.Fatalf("unexpected latency %+v", top.LatencyMillis)
	}
	if top.ResponseBytes.Mean != 2000 || top.ResponseBytes.Count != 2 {
		t.Fatalf("failed requests must not count towards size: %+v", top.ResponseBytes)
	}
	if math.Abs(top.LatencyMillis.StdDev()-10) > 1e-9 {
		t.Fatalf("expected stddev 10, got %f", top.LatencyMillis.StdDev())
	}
}

func TestRecordConcurrently(t *testing.T) {
	agg := NewAggregator()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			agg.Record("/machines", time.Millisecond, 10, nil)
		}()
	}
	wg.Wait()
	if snap := agg.Snapshot(); snap[0].Requests != 50 {
		t.Fatalf("expected 50 requests, got %d", snap[0].Requests)
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	NewAggregator().Report(&buf)
	if !strings.Contains(buf.String(), "No requests recorded.") {
		t.Fatalf("unexpected empty report %q", buf.String())
	}

	agg := NewAggregator()
	agg.Record("/machines", 12*time.Millisecond, 2048, nil)
	buf.Reset()
	agg.Report(&buf)
	if !strings.Contains(buf.String(), "/machines") || !strings.Contains(buf.String(), "2.0 kB") {
		t.Fatalf("unexpected report:\n%s", buf.String())
	}
}
