// Package gochart is a chart binding that renders engine.Options to PNG or
// SVG with go-chart. It backs the headless export command; container sizes
// are in pixels.
package gochart

import (
	"bytes"
	"fmt"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/mwiater/defectdash/internal/engine"
)

// Format is an output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts "png" or "svg" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatSVG:
		return f, nil
	case "":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("gochart: unsupported format %q", s)
	}
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

// Binding draws charts into in-memory images.
type Binding struct {
	format  Format
	palette engine.Palette
	live    int
}

// New returns a binding producing format images coloured with p.
func New(format Format, p engine.Palette) *Binding {
	if format == "" {
		format = FormatPNG
	}
	return &Binding{format: format, palette: p}
}

// Format returns the output encoding.
func (b *Binding) Format() Format { return b.format }

// Live returns the number of charts created and not yet disposed.
func (b *Binding) Live() int { return b.live }

// Chart is the handle returned by Create.
type Chart struct {
	binding   *Binding
	container *engine.Container
	opts      engine.Options
	hasOpts   bool
	data      []byte
	disposed  bool
}

// ContainerID implements engine.Handle.
func (c *Chart) ContainerID() string { return c.container.ID }

// Bytes returns the encoded image, or nil if nothing has been drawn yet.
func (c *Chart) Bytes() []byte { return c.data }

// Ext returns the file extension for the image, including the dot.
func (c *Chart) Ext() string { return "." + string(c.binding.format) }

func (b *Binding) chart(h engine.Handle) (*Chart, error) {
	c, ok := h.(*Chart)
	if !ok || c.binding != b {
		return nil, fmt.Errorf("gochart: foreign chart handle %T", h)
	}
	if c.disposed {
		return nil, engine.ErrDisposed
	}
	return c, nil
}

// Create implements engine.Binding.
func (b *Binding) Create(container *engine.Container) (engine.Handle, error) {
	if container == nil {
		return nil, fmt.Errorf("gochart: nil container")
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
	return c.draw()
}

// Resize implements engine.Binding.
func (b *Binding) Resize(h engine.Handle) error {
	c, err := b.chart(h)
	if err != nil {
		return err
	}
	return c.draw()
}

// Dispose implements engine.Binding.
func (b *Binding) Dispose(h engine.Handle) error {
	c, err := b.chart(h)
	if err != nil {
		return err
	}
	c.disposed = true
	c.data = nil
	b.live--
	return nil
}

func (c *Chart) draw() error {
	if !c.hasOpts || c.container.Empty() {
		c.data = nil
		return nil
	}
	var buf bytes.Buffer
	w, h := c.container.Width, c.container.Height
	p := c.binding.palette
	rp := c.binding.format.provider()

	var err error
	switch {
	case c.opts.Heatmap != nil || c.opts.Kind == engine.KindHeatmap:
		err = renderHeatmap(rp, &buf, c.opts, w, h, p)
	case c.opts.Kind == engine.KindBar && len(c.opts.Series) == 1:
		err = renderBars(rp, &buf, c.opts, w, h, p)
	default:
		err = renderSeries(rp, &buf, c.opts, w, h, p)
	}
	if err == errNothingToDraw {
		c.data = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("gochart: render %s: %w", c.container.ID, err)
	}
	c.data = buf.Bytes()
	return nil
}
