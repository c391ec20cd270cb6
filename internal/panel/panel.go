// Package panel implements the fetch, transform and render lifecycle shared
// by every dashboard chart.
//
// A Controller derives a gateway.Query from the shared filter selection and
// its own local parameters, issues a fetch whenever that query changes, and
// renders the result through an engine.Binding. Fetches run off the event
// loop and come back as ResultMsg values; only the result of the most
// recently issued fetch is ever applied.
package panel

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/logging"
)

// Status is the load state of a panel.
type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Failed
	Empty
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	case Empty:
		return "empty"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// fetchSeq numbers fetches across every controller, so a result issued by a
// stopped controller never matches one remounted under the same id.
var fetchSeq atomic.Uint64

// ResultMsg carries a completed fetch back to the event loop.
type ResultMsg struct {
	PanelID string
	Seq     uint64
	Payload any
	Err     error
}

// Stat is one summary figure shown under a chart.
type Stat struct {
	Label    string
	Value    string
	Severity engine.Severity
}

// Runner schedules a fetch command. The dashboard hands commands to
// bubbletea; export and tests run them on their own terms.
type Runner func(tea.Cmd)

// Deps are the collaborators every panel needs.
type Deps struct {
	Gateway gateway.Fetcher
	Filters *filters.State
	Binding engine.Binding
	Run     Runner
	Palette engine.Palette
}

// Panel is the type-erased view of a Controller used by hosts.
type Panel interface {
	ID() string
	Title() string
	Status() Status
	Message() string
	Summary() []Stat
	Container() *engine.Container
	Handle() engine.Handle
	Options() (engine.Options, bool)
	Start()
	Stop()
	Reload()
	Resize(width, height int)
	SetPalette(p engine.Palette)
	Apply(msg ResultMsg) bool
}

// Spec is the variable part of a panel: how it derives its query, fetches,
// and turns a payload into chart options.
type Spec[T any] struct {
	ID        string
	Title     string
	EmptyText string
	ErrorText string

	Derive    func(filters.Selection) gateway.Query
	Fetch     func(context.Context, gateway.Query) (T, error)
	Plottable func(T) int
	Options   func(T, engine.Palette) engine.Options
	Summary   func(T, engine.Palette) []Stat
}

// Controller runs the lifecycle for one metric.
type Controller[T any] struct {
	spec    Spec[T]
	filters *filters.State
	binding engine.Binding
	run     Runner
	palette engine.Palette

	container engine.Container
	handle    engine.Handle
	opts      engine.Options

	status  Status
	message string
	payload T
	loaded  bool

	seq    uint64
	last   gateway.Query
	issued bool
	cancel context.CancelFunc

	unsubscribe func()
	started     bool
	stopped     bool
}

// NewController builds an idle controller. Nothing is fetched until Start.
func NewController[T any](spec Spec[T], d Deps) *Controller[T] {
	if spec.EmptyText == "" {
		spec.EmptyText = "No data available"
	}
	if spec.ErrorText == "" {
		spec.ErrorText = "Error loading chart"
	}
	return &Controller[T]{
		spec:      spec,
		filters:   d.Filters,
		binding:   d.Binding,
		run:       d.Run,
		palette:   d.Palette,
		container: engine.Container{ID: spec.ID},
	}
}

func (c *Controller[T]) ID() string                   { return c.spec.ID }
func (c *Controller[T]) Title() string                { return c.spec.Title }
func (c *Controller[T]) Status() Status               { return c.status }
func (c *Controller[T]) Container() *engine.Container { return &c.container }
func (c *Controller[T]) Handle() engine.Handle        { return c.handle }

// Message is the notification shown instead of the chart while the panel is
// Failed or Empty.
func (c *Controller[T]) Message() string { return c.message }

// Options returns the options of the last successful render.
func (c *Controller[T]) Options() (engine.Options, bool) {
	return c.opts, c.status == Loaded
}

// Payload returns the last applied payload.
func (c *Controller[T]) Payload() (T, bool) { return c.payload, c.loaded }

// Summary returns the summary figures for the current payload. It is empty
// unless the panel is Loaded.
func (c *Controller[T]) Summary() []Stat {
	if c.status != Loaded || c.spec.Summary == nil {
		return nil
	}
	return c.spec.Summary(c.payload, c.palette)
}

// Start subscribes to the filter state and issues the first fetch.
func (c *Controller[T]) Start() {
	if c.started || c.stopped {
		return
	}
	c.started = true
	c.unsubscribe = c.filters.Subscribe(c.onFilters)
	c.fetch(c.filters.Snapshot(), true)
}

// Stop unsubscribes, disposes the chart handle and makes any in-flight fetch
// irrelevant. It is safe to call more than once and before Start.
func (c *Controller[T]) Stop() {
	if c.stopped {
		return
	}
	c.stopped = true
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.handle != nil {
		if err := c.binding.Dispose(c.handle); err != nil {
			logging.LogEvent("panel %s: dispose: %v", c.spec.ID, err)
		}
		c.handle = nil
	}
}

// Reload fetches again even when the derived query is unchanged.
func (c *Controller[T]) Reload() {
	if !c.live() {
		return
	}
	c.fetch(c.filters.Snapshot(), true)
}

// Refresh re-derives the query after a local parameter changed and fetches
// if it differs from the last one issued.
func (c *Controller[T]) Refresh() {
	if !c.live() {
		return
	}
	c.fetch(c.filters.Snapshot(), false)
}

func (c *Controller[T]) live() bool { return c.started && !c.stopped }

func (c *Controller[T]) onFilters(sel filters.Selection) {
	if !c.live() {
		return
	}
	c.fetch(sel, false)
}

func (c *Controller[T]) fetch(sel filters.Selection, force bool) {
	q := c.spec.Derive(sel)
	if !force && c.issued && q == c.last {
		return
	}
	c.last, c.issued = q, true
	c.seq = fetchSeq.Add(1)
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.status = Loading
	c.message = ""

	id, seq, fetch := c.spec.ID, c.seq, c.spec.Fetch
	logging.LogDebug("panel %s: fetch #%d %+v", id, seq, q)
	c.run(func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = ResultMsg{PanelID: id, Seq: seq, Err: fmt.Errorf("panic during fetch: %v", r)}
			}
		}()
		payload, err := fetch(ctx, q)
		return ResultMsg{PanelID: id, Seq: seq, Payload: payload, Err: err}
	})
}

// Apply consumes a fetch result. It reports whether the result was current
// and changed the panel; stale results and results arriving after Stop are
// dropped.
func (c *Controller[T]) Apply(msg ResultMsg) bool {
	if msg.PanelID != c.spec.ID {
		return false
	}
	if c.stopped || msg.Seq != c.seq {
		logging.LogDebug("panel %s: dropping stale result #%d (latest #%d)", c.spec.ID, msg.Seq, c.seq)
		return false
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if msg.Err != nil {
		c.fail(msg.Err)
		return true
	}
	payload, ok := msg.Payload.(T)
	if !ok {
		c.fail(fmt.Errorf("unexpected payload %T", msg.Payload))
		return true
	}
	c.payload, c.loaded = payload, true
	if c.spec.Plottable(payload) == 0 {
		c.status = Empty
		c.message = c.spec.EmptyText
		return true
	}
	c.status = Loaded
	c.message = ""
	c.render()
	return true
}

func (c *Controller[T]) fail(err error) {
	c.status = Failed
	c.message = fmt.Sprintf("%s: %s", c.spec.ErrorText, describe(err))
	logging.LogEvent("panel %s: %v", c.spec.ID, err)
}

func (c *Controller[T]) render() {
	opts := c.spec.Options(c.payload, c.palette)
	if c.handle == nil {
		h, err := c.binding.Create(&c.container)
		if err != nil {
			c.fail(err)
			return
		}
		c.handle = h
	}
	if err := c.binding.Render(c.handle, opts); err != nil {
		c.fail(err)
		return
	}
	c.opts = opts
}

// Resize updates the container and asks the binding to redraw at the new
// size. It is a no-op when the size is unchanged or no chart exists yet.
func (c *Controller[T]) Resize(width, height int) {
	if !c.container.SetSize(width, height) || c.handle == nil || c.stopped {
		return
	}
	if err := c.binding.Resize(c.handle); err != nil {
		logging.LogEvent("panel %s: resize: %v", c.spec.ID, err)
	}
}

// SetPalette switches colours and redraws a loaded chart.
func (c *Controller[T]) SetPalette(p engine.Palette) {
	c.palette = p
	if c.status == Loaded && c.handle != nil && !c.stopped {
		c.render()
	}
}

func describe(err error) string {
	var te *gateway.TransportError
	if errors.As(err, &te) {
		return fmt.Sprintf("cannot reach analytics API (%v)", te.Err)
	}
	var se *gateway.ServerError
	if errors.As(err, &se) {
		return se.Error()
	}
	return err.Error()
}
