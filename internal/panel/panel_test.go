package panel

import (
	"errors"
	"strings"
	"testing"

	"github.com/mwiater/defectdash/internal/gateway"
)

func TestTrendLifecycle(t *testing.T) {
	h := newHarness()
	h.gw.trend = func(gateway.Query) (gateway.Trend, error) { return sampleTrend(), nil }
	p := NewTrend(h.deps(), "day")

	if p.Status() != Idle {
		t.Fatalf("expected Idle before Start, got %s", p.Status())
	}
	p.Start()
	if p.Status() != Loading {
		t.Fatalf("expected Loading after Start, got %s", p.Status())
	}
	if len(h.binding.calls) != 0 {
		t.Fatalf("nothing should be drawn while loading: %v", h.binding.calls)
	}
	if !p.Apply(h.queue.result(t, 0)) {
		t.Fatal("expected current result to apply")
	}
	if p.Status() != Loaded {
		t.Fatalf("expected Loaded, got %s (%s)", p.Status(), p.Message())
	}
	if got := strings.Join(h.binding.calls, ","); got != "create:trend,render:trend" {
		t.Fatalf("unexpected binding calls %s", got)
	}

	want := map[string]string{
		"Average Rate":   "74.8%",
		"Min Rate":       "68.8%",
		"Max Rate":       "81.3%",
		"Total Products": "755",
	}
	for _, s := range p.Summary() {
		if w, ok := want[s.Label]; ok && s.Value != w {
			t.Fatalf("%s: expected %s, got %s", s.Label, w, s.Value)
		}
		delete(want, s.Label)
	}
	if len(want) != 0 {
		t.Fatalf("missing summary figures: %v", want)
	}

	opts, ok := p.Options()
	if !ok || len(opts.Series) != 1 || len(opts.Series[0].Values) != 3 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.XAxis.Categories[0] != "Jun 1" {
		t.Fatalf("unexpected first label %q", opts.XAxis.Categories[0])
	}
	if tip := opts.TooltipAt(0); !strings.Contains(tip, "74.2%") || !strings.Contains(tip, "185 rejected") {
		t.Fatalf("unexpected tooltip %q", tip)
	}
}

func TestLatestResultWins(t *testing.T) {
	h := newHarness()
	h.gw.trend = func(q gateway.Query) (gateway.Trend, error) {
		tr := sampleTrend()
		if q.MachineID == "molding-machine-2" {
			tr.Summary.TotalProducts = 2
		}
		return tr, nil
	}
	p := NewTrend(h.deps(), "day")
	p.Start()
	p.Apply(h.queue.result(t, 0))

	h.filters.SetMachine("molding-machine-1") // A
	h.filters.SetMachine("molding-machine-2") // B
	a, b := h.queue.result(t, 1), h.queue.result(t, 2)

	if !p.Apply(b) {
		t.Fatal("expected B to apply")
	}
	if p.Apply(a) {
		t.Fatal("A resolved after B and must be dropped")
	}
	if got := p.Summary()[3].Value; got != "2" {
		t.Fatalf("expected B's total, got %s", got)
	}
	if n := h.binding.count("render"); n != 2 {
		t.Fatalf("expected 2 renders (initial and B), got %d", n)
	}
}

func TestRemountedPanelIgnoresPreviousInstance(t *testing.T) {
	h := newHarness()
	h.gw.trend = func(gateway.Query) (gateway.Trend, error) { return sampleTrend(), nil }
	old := NewTrend(h.deps(), "day")
	old.Start()
	old.Stop()

	fresh := NewTrend(h.deps(), "day")
	fresh.Start()
	late := h.queue.result(t, 0)
	if fresh.Apply(late) {
		t.Fatal("a result issued by a stopped instance must not apply to its replacement")
	}
	if fresh.Status() != Loading {
		t.Fatalf("expected to keep waiting, got %s", fresh.Status())
	}
	if !fresh.Apply(h.queue.result(t, 1)) || fresh.Status() != Loaded {
		t.Fatalf("own result should apply, got %s", fresh.Status())
	}
}

func TestEarlierResultDoesNotSettlePendingFetch(t *testing.T) {
	h := newHarness()
	h.gw.trend = func(gateway.Query) (gateway.Trend, error) { return sampleTrend(), nil }
	p := NewTrend(h.deps(), "day")
	p.Start()
	h.filters.SetMachine("molding-machine-1")

	if p.Apply(h.queue.result(t, 0)) {
		t.Fatal("superseded result must be dropped")
	}
	if p.Status() != Loading {
		t.Fatalf("expected to keep waiting for the latest fetch, got %s", p.Status())
	}
	if len(h.binding.calls) != 0 {
		t.Fatalf("stale result rendered: %v", h.binding.calls)
	}
}

func TestEmptyAndFailed(t *testing.T) {
	h := newHarness()
	heat := NewHeatmap(h.deps())
	heat.Start()
	heat.Apply(h.queue.result(t, 0))
	if heat.Status() != Empty || heat.Message() != "No defect data available" {
		t.Fatalf("expected Empty with heatmap text, got %s %q", heat.Status(), heat.Message())
	}
	if len(h.binding.calls) != 0 {
		t.Fatalf("Empty must not draw: %v", h.binding.calls)
	}
	if heat.Summary() != nil {
		t.Fatal("summary only applies to loaded panels")
	}

	h2 := newHarness()
	h2.gw.err = &gateway.ServerError{Endpoint: "/api/v1/analytics/top-defects", Code: 500, Status: "500 Internal Server Error", Body: "boom"}
	top := NewTopDefects(h2.deps(), 10)
	top.Start()
	top.Apply(h2.queue.result(t, 0))
	if top.Status() != Failed || !strings.HasPrefix(top.Message(), "Error loading chart: ") {
		t.Fatalf("expected Failed, got %s %q", top.Status(), top.Message())
	}

	h3 := newHarness()
	h3.gw.err = &gateway.TransportError{Endpoint: "/x", Err: errors.New("connection refused")}
	dist := NewDistribution(h3.deps())
	dist.Start()
	dist.Apply(h3.queue.result(t, 0))
	if dist.Status() != Failed || !strings.Contains(dist.Message(), "cannot reach analytics API") {
		t.Fatalf("unexpected transport failure message %q", dist.Message())
	}
}

func TestFailureKeepsHandleForNextSuccess(t *testing.T) {
	h := newHarness()
	fail := false
	h.gw.trend = func(gateway.Query) (gateway.Trend, error) {
		if fail {
			return gateway.Trend{}, errors.New("boom")
		}
		return sampleTrend(), nil
	}
	p := NewTrend(h.deps(), "day")
	p.Start()
	p.Apply(h.queue.result(t, 0))
	handle := p.Handle()

	fail = true
	p.Reload()
	p.Apply(h.queue.result(t, 1))
	if p.Status() != Failed {
		t.Fatalf("expected Failed, got %s", p.Status())
	}
	if _, ok := p.Options(); ok {
		t.Fatal("options must not be reported while Failed")
	}

	fail = false
	p.Reload()
	p.Apply(h.queue.result(t, 2))
	if p.Handle() != handle || h.binding.count("create") != 1 {
		t.Fatalf("expected the original handle to be reused, calls %v", h.binding.calls)
	}
}

func TestPanicBecomesFailed(t *testing.T) {
	h := newHarness()
	h.gw.trend = func(gateway.Query) (gateway.Trend, error) { panic("decoder exploded") }
	p := NewTrend(h.deps(), "day")
	p.Start()
	p.Apply(h.queue.result(t, 0))
	if p.Status() != Failed || !strings.Contains(p.Message(), "decoder exploded") {
		t.Fatalf("expected panic to surface as Failed, got %s %q", p.Status(), p.Message())
	}
}

func TestStopDisposesOnce(t *testing.T) {
	h := newHarness()
	h.gw.trend = func(gateway.Query) (gateway.Trend, error) { return sampleTrend(), nil }
	p := NewTrend(h.deps(), "day")
	p.Start()
	p.Apply(h.queue.result(t, 0))
	p.Reload()

	p.Stop()
	p.Stop()
	if n := h.binding.count("dispose"); n != 1 {
		t.Fatalf("expected one dispose, got %d", n)
	}
	if h.filters.Subscribers() != 0 {
		t.Fatal("Stop must unsubscribe from filters")
	}
	before := len(h.binding.calls)
	if p.Apply(h.queue.result(t, 1)) {
		t.Fatal("results after Stop must be dropped")
	}
	p.Resize(80, 20)
	p.Reload()
	h.filters.SetMachine("molding-machine-3")
	if len(h.binding.calls) != before || len(h.queue.cmds) != 2 {
		t.Fatalf("no calls may follow Stop: %v", h.binding.calls[before:])
	}
}

func TestStopBeforeStart(t *testing.T) {
	h := newHarness()
	p := NewHeatmap(h.deps())
	p.Stop()
	p.Start()
	if len(h.queue.cmds) != 0 || p.Status() != Idle {
		t.Fatal("a stopped panel must not start")
	}
}

func TestDedupeAndReload(t *testing.T) {
	h := newHarness()
	p := NewTopDefects(h.deps(), 10)
	p.Start()

	h.filters.ClearFilters()
	h.filters.SetMachine("")
	if len(h.queue.cmds) != 1 {
		t.Fatalf("unchanged parameters must not refetch, got %d fetches", len(h.queue.cmds))
	}
	p.Reload()
	if len(h.queue.cmds) != 2 {
		t.Fatal("Reload must fetch even with unchanged parameters")
	}
	if err := p.SetLimit(10); err != nil {
		t.Fatal(err)
	}
	if len(h.queue.cmds) != 2 {
		t.Fatal("same limit must not refetch")
	}
	if err := p.SetLimit(7); err == nil {
		t.Fatal("expected error for limit outside the offered choices")
	}
	p.CycleLimit()
	if p.Limit() != 15 || len(h.queue.cmds) != 3 {
		t.Fatalf("expected limit 15 and a new fetch, got %d / %d", p.Limit(), len(h.queue.cmds))
	}
	h.queue.result(t, 2)
	if q := h.gw.seen("topDefects"); q[len(q)-1].Limit != 15 {
		t.Fatalf("expected limit 15 on the wire, got %+v", q)
	}
}

func TestFilterPropagation(t *testing.T) {
	h := newHarness()
	var panels []Panel
	for _, id := range IDs() {
		p, err := New(id, h.deps(), Params{})
		if err != nil {
			t.Fatal(err)
		}
		p.Start()
		panels = append(panels, p)
	}
	mounted := len(h.queue.cmds)
	if mounted != len(panels) {
		t.Fatalf("expected one initial fetch per panel, got %d", mounted)
	}

	h.filters.SetMachine("molding-machine-2")
	for _, cmd := range h.queue.cmds[mounted:] {
		cmd()
	}
	for _, id := range []string{"trend", "topDefects", "rejectDistribution", "cycleTime"} {
		qs := h.gw.seen(id)
		if len(qs) != 1 || qs[0].MachineID != "molding-machine-2" {
			t.Fatalf("%s: expected exactly one fetch for molding-machine-2, got %+v", id, qs)
		}
	}
	for _, id := range []string{"heatmap", "machineComparison"} {
		if qs := h.gw.seen(id); len(qs) != 0 {
			t.Fatalf("%s does not depend on the machine and must not refetch, got %+v", id, qs)
		}
	}
}

func TestResizeRequiresHandle(t *testing.T) {
	h := newHarness()
	h.gw.trend = func(gateway.Query) (gateway.Trend, error) { return sampleTrend(), nil }
	p := NewTrend(h.deps(), "day")
	p.Start()
	p.Resize(60, 12)
	if h.binding.count("resize") != 0 {
		t.Fatal("resize without a handle must not reach the binding")
	}
	p.Apply(h.queue.result(t, 0))
	p.Resize(60, 12)
	if h.binding.count("resize") != 0 {
		t.Fatal("unchanged size must not resize")
	}
	p.Resize(100, 30)
	if h.binding.count("resize") != 1 {
		t.Fatalf("expected one resize, got %v", h.binding.calls)
	}
	if c := p.Container(); c.Width != 100 || c.Height != 30 {
		t.Fatalf("container not updated: %+v", c)
	}
}

func TestForeignResultIgnored(t *testing.T) {
	h := newHarness()
	p := NewHeatmap(h.deps())
	p.Start()
	if p.Apply(ResultMsg{PanelID: "trend", Seq: p.seq}) {
		t.Fatal("results for another panel must be ignored")
	}
}

func TestUnexpectedPayloadType(t *testing.T) {
	h := newHarness()
	p := NewHeatmap(h.deps())
	p.Start()
	p.Apply(ResultMsg{PanelID: p.ID(), Seq: p.seq, Payload: "nope"})
	if p.Status() != Failed {
		t.Fatalf("expected Failed, got %s", p.Status())
	}
}
