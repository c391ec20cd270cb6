// Package term is a chart binding that draws engine.Options as styled text
// for the terminal dashboard.
package term

import (
	"fmt"

	"github.com/mwiater/defectdash/internal/engine"
)

// Binding renders charts as lipgloss-styled strings.
type Binding struct {
	palette engine.Palette
	live    int
}

// New returns a binding drawing with palette p.
func New(p engine.Palette) *Binding {
	return &Binding{palette: p}
}

// SetPalette switches colours. Charts pick it up on their next Render or Resize.
func (b *Binding) SetPalette(p engine.Palette) { b.palette = p }

// Palette returns the active palette.
func (b *Binding) Palette() engine.Palette { return b.palette }

// Live returns the number of charts created and not yet disposed.
func (b *Binding) Live() int { return b.live }

// Chart is the handle returned by Create.
type Chart struct {
	binding   *Binding
	container *engine.Container
	opts      engine.Options
	hasOpts   bool
	view      string
	cursor    int
	disposed  bool
}

// ContainerID implements engine.Handle.
func (c *Chart) ContainerID() string { return c.container.ID }

// View returns the last drawn chart. It is empty until the chart has been
// rendered into a non-empty container.
func (c *Chart) View() string { return c.view }

// Options returns the options of the last Render.
func (c *Chart) Options() engine.Options { return c.opts }

// Cursor returns the hovered data index.
func (c *Chart) Cursor() int { return c.cursor }

// MoveCursor moves the hover position, wrapping at both ends.
func (c *Chart) MoveCursor(delta int) {
	n := c.opts.DataLen()
	if n == 0 {
		c.cursor = 0
		return
	}
	c.cursor = ((c.cursor+delta)%n + n) % n
}

// Tooltip returns the tooltip for the hovered data index.
func (c *Chart) Tooltip() string {
	if !c.hasOpts {
		return ""
	}
	return c.opts.TooltipAt(c.cursor)
}

func (b *Binding) chart(h engine.Handle) (*Chart, error) {
	c, ok := h.(*Chart)
	if !ok || c.binding != b {
		return nil, fmt.Errorf("term: foreign chart handle %T", h)
	}
	if c.disposed {
		return nil, engine.ErrDisposed
	}
	return c, nil
}

// Create implements engine.Binding.
func (b *Binding) Create(container *engine.Container) (engine.Handle, error) {
	if container == nil {
		return nil, fmt.Errorf("term: nil container")
	}
	b.live++
	return &Chart{binding: b, container: container}, nil
}

// Render implements engine.Binding.
func (b *Binding) Render(h engine.Handle, opts engine.Options) error {
	c, err := b.chart(h)
	if err != nil {
		return err
	}
	c.opts = opts
	c.hasOpts = true
	if n := opts.DataLen(); c.cursor >= n {
		c.cursor = 0
	}
	c.draw()
	return nil
}

// Resize implements engine.Binding. It redraws at the container's current size.
func (b *Binding) Resize(h engine.Handle) error {
	c, err := b.chart(h)
	if err != nil {
		return err
	}
	c.draw()
	return nil
}

// Dispose implements engine.Binding.
func (b *Binding) Dispose(h engine.Handle) error {
	c, err := b.chart(h)
	if err != nil {
		return err
	}
	c.disposed = true
	c.view = ""
	b.live--
	return nil
}

func (c *Chart) draw() {
	if !c.hasOpts || c.container.Empty() {
		c.view = ""
		return
	}
	w, h := c.container.Width, c.container.Height
	p := c.binding.palette
	switch {
	case c.opts.Heatmap != nil || c.opts.Kind == engine.KindHeatmap:
		c.view = renderHeatmap(c.opts, w, h, p)
	case c.opts.Kind == engine.KindBar:
		c.view = renderBars(c.opts, w, h, p)
	case c.opts.Kind == engine.KindScatter:
		c.view = renderScatter(c.opts, w, h, p)
	default:
		c.view = renderLine(c.opts, w, h, p)
	}
}
