package panel

import (
	"context"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
)

type fakeHandle struct {
	id       string
	disposed bool
}

func (h *fakeHandle) ContainerID() string { return h.id }

// recorder is an engine.Binding that remembers every call.
type recorder struct {
	calls   []string
	renders []engine.Options
}

func (r *recorder) Create(c *engine.Container) (engine.Handle, error) {
	r.calls = append(r.calls, "create:"+c.ID)
	return &fakeHandle{id: c.ID}, nil
}

func (r *recorder) Render(h engine.Handle, opts engine.Options) error {
	if h.(*fakeHandle).disposed {
		return engine.ErrDisposed
	}
	r.calls = append(r.calls, "render:"+h.ContainerID())
	r.renders = append(r.renders, opts)
	return nil
}

func (r *recorder) Resize(h engine.Handle) error {
	if h.(*fakeHandle).disposed {
		return engine.ErrDisposed
	}
	r.calls = append(r.calls, "resize:"+h.ContainerID())
	return nil
}

func (r *recorder) Dispose(h engine.Handle) error {
	fh := h.(*fakeHandle)
	if fh.disposed {
		return engine.ErrDisposed
	}
	fh.disposed = true
	r.calls = append(r.calls, "dispose:"+h.ContainerID())
	return nil
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, c := range r.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// fakeGateway answers from canned payloads and records the queries it saw.
type fakeGateway struct {
	mu      sync.Mutex
	queries map[string][]gateway.Query

	trend       func(gateway.Query) (gateway.Trend, error)
	top         gateway.TopDefects
	machines    gateway.MachineComparison
	dist        gateway.Distribution
	scatter     gateway.Scatter
	heatmap     gateway.Heatmap
	product     gateway.ProductDetail
	err         error
	machineList gateway.MachineList
}

func (f *fakeGateway) record(endpoint string, q gateway.Query) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queries == nil {
		f.queries = make(map[string][]gateway.Query)
	}
	f.queries[endpoint] = append(f.queries[endpoint], q)
}

func (f *fakeGateway) seen(endpoint string) []gateway.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.Query(nil), f.queries[endpoint]...)
}

func (f *fakeGateway) DefectRateTrend(_ context.Context, q gateway.Query) (gateway.Trend, error) {
	f.record("trend", q)
	if f.trend != nil {
		return f.trend(q)
	}
	return gateway.Trend{}, f.err
}

func (f *fakeGateway) TopDefects(_ context.Context, q gateway.Query) (gateway.TopDefects, error) {
	f.record("topDefects", q)
	return f.top, f.err
}

func (f *fakeGateway) MachineComparison(_ context.Context) (gateway.MachineComparison, error) {
	f.record("machineComparison", gateway.Query{})
	return f.machines, f.err
}

func (f *fakeGateway) DefectDistribution(_ context.Context, q gateway.Query) (gateway.Distribution, error) {
	f.record("rejectDistribution", q)
	return f.dist, f.err
}

func (f *fakeGateway) CycleTimeScatter(_ context.Context, q gateway.Query) (gateway.Scatter, error) {
	f.record("cycleTime", q)
	return f.scatter, f.err
}

func (f *fakeGateway) MachineDefectHeatmap(_ context.Context, q gateway.Query) (gateway.Heatmap, error) {
	f.record("heatmap", q)
	return f.heatmap, f.err
}

func (f *fakeGateway) Machines(context.Context) (gateway.MachineList, error) {
	return f.machineList, f.err
}

func (f *fakeGateway) ProductDefects(_ context.Context, id int64) (gateway.ProductDetail, error) {
	if f.err != nil {
		return gateway.ProductDetail{}, f.err
	}
	if id != f.product.Product.ID {
		return gateway.ProductDetail{}, fmt.Errorf("product %d not found", id)
	}
	return f.product, nil
}

// queue collects fetch commands so tests decide when and in which order
// they complete.
type queue struct {
	cmds []tea.Cmd
}

func (q *queue) run(cmd tea.Cmd) { q.cmds = append(q.cmds, cmd) }

func (q *queue) result(t *testing.T, i int) ResultMsg {
	t.Helper()
	if i >= len(q.cmds) {
		t.Fatalf("expected at least %d fetches, got %d", i+1, len(q.cmds))
	}
	msg, ok := q.cmds[i]().(ResultMsg)
	if !ok {
		t.Fatalf("fetch %d did not produce a ResultMsg", i)
	}
	return msg
}

type harness struct {
	gw      *fakeGateway
	filters *filters.State
	binding *recorder
	queue   *queue
}

func newHarness() *harness {
	return &harness{
		gw:      &fakeGateway{},
		filters: filters.New(),
		binding: &recorder{},
		queue:   &queue{},
	}
}

func (h *harness) deps() Deps {
	return Deps{
		Gateway: h.gw,
		Filters: h.filters,
		Binding: h.binding,
		Run:     h.queue.run,
		Palette: engine.LightPalette,
	}
}

func sampleTrend() gateway.Trend {
	return gateway.Trend{
		DataPoints: []gateway.TrendPoint{
			{Timestamp: "2025-06-01T00:00:00", TotalProducts: 250, RejectedProducts: 185, DefectRate: 0.742},
			{Timestamp: "2025-06-02T00:00:00", TotalProducts: 250, RejectedProducts: 172, DefectRate: 0.688},
			{Timestamp: "2025-06-03T00:00:00", TotalProducts: 255, RejectedProducts: 207, DefectRate: 0.813},
		},
		Summary: gateway.TrendSummary{AvgRate: 0.748, MinRate: 0.688, MaxRate: 0.813, TotalProducts: 755},
	}
}
