// Package engine defines the contract between panels and a chart renderer.
// Panels build an engine-neutral Options value; a Binding turns it into
// something visible inside a Container.
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects how a chart or series is drawn.
type Kind string

const (
	KindLine    Kind = "line"
	KindBar     Kind = "bar"
	KindScatter Kind = "scatter"
	KindHeatmap Kind = "heatmap"
)

// ErrDisposed is returned when a handle is used after Dispose.
var ErrDisposed = errors.New("engine: chart handle disposed")

// Container is the box a chart is drawn into. Its owner mutates Width and
// Height and then asks the binding to Resize.
type Container struct {
	ID     string
	Width  int
	Height int
}

// SetSize updates the container and reports whether anything changed.
func (c *Container) SetSize(width, height int) bool {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if c.Width == width && c.Height == height {
		return false
	}
	c.Width, c.Height = width, height
	return true
}

// Empty reports whether the container has no drawable area.
func (c *Container) Empty() bool { return c.Width <= 0 || c.Height <= 0 }

// Handle is a live chart owned by exactly one panel.
type Handle interface {
	ContainerID() string
}

// Binding wraps a renderer. Render on a zero-size container must not fail;
// the binding draws once the container has area.
type Binding interface {
	Create(c *Container) (Handle, error)
	Render(h Handle, opts Options) error
	Resize(h Handle) error
	Dispose(h Handle) error
}

// Options is the declarative chart description.
type Options struct {
	Title   string
	Kind    Kind
	XAxis   Axis
	YAxes   []Axis
	Series  []Series
	Heatmap *HeatmapData
	Tooltip Tooltip
	Legend  []string
}

// Axis describes one axis. Categories are set for category axes; Format
// renders tick values on value axes.
type Axis struct {
	Name       string
	Categories []string
	Format     func(float64) string
}

// FormatValue applies the axis formatter, defaulting to %g.
func (a Axis) FormatValue(v float64) string {
	if a.Format != nil {
		return a.Format(v)
	}
	return fmt.Sprintf("%g", v)
}

// Series is one data series. Category charts use Values indexed like the x
// axis categories; scatter charts use Points.
type Series struct {
	Name   string
	Kind   Kind
	Values []float64
	Points []Point
	YAxis  int
	Color  string
}

// Len returns the number of marks the series produces.
func (s Series) Len() int {
	if s.Kind == KindScatter {
		return len(s.Points)
	}
	return len(s.Values)
}

// Point is a scatter mark.
type Point struct {
	X, Y  float64
	Label string
}

// HeatmapData is a sparse matrix of cells addressed by (X, Y) label index.
type HeatmapData struct {
	XLabels []string
	YLabels []string
	Cells   []Cell
	Max     float64
}

// Cell is one populated heatmap cell.
type Cell struct {
	X, Y  int
	Value float64
}

// Tooltip formats the hover text for one data index.
type Tooltip struct {
	Formatter func([]TooltipParam) string
}

// TooltipParam describes one series' mark at the hovered index.
type TooltipParam struct {
	SeriesName  string
	SeriesIndex int
	DataIndex   int
	Name        string
	Value       float64
	Point       *Point
	Color       string
}

// DataLen returns the number of hover positions the chart exposes. Scatter
// positions run across all series, matching TooltipAt.
func (o Options) DataLen() int {
	if o.Heatmap != nil {
		return len(o.Heatmap.Cells)
	}
	if o.Kind == KindScatter {
		n := 0
		for _, s := range o.Series {
			n += len(s.Points)
		}
		return n
	}
	n := len(o.XAxis.Categories)
	for _, s := range o.Series {
		if s.Len() > n {
			n = s.Len()
		}
	}
	return n
}

// TooltipAt renders the tooltip for data index i. For scatter charts the
// index runs across all series in order.
func (o Options) TooltipAt(i int) string {
	params := o.tooltipParams(i)
	if len(params) == 0 {
		return ""
	}
	if o.Tooltip.Formatter != nil {
		return o.Tooltip.Formatter(params)
	}
	var lines []string
	if params[0].Name != "" {
		lines = append(lines, params[0].Name)
	}
	for _, p := range params {
		lines = append(lines, fmt.Sprintf("%s: %g", p.SeriesName, p.Value))
	}
	return strings.Join(lines, "\n")
}

func (o Options) tooltipParams(i int) []TooltipParam {
	if i < 0 {
		return nil
	}
	if o.Heatmap != nil {
		if i >= len(o.Heatmap.Cells) {
			return nil
		}
		c := o.Heatmap.Cells[i]
		name := ""
		if c.X >= 0 && c.Y >= 0 && c.X < len(o.Heatmap.XLabels) && c.Y < len(o.Heatmap.YLabels) {
			name = o.Heatmap.XLabels[c.X] + " / " + o.Heatmap.YLabels[c.Y]
		}
		return []TooltipParam{{SeriesName: o.Title, DataIndex: i, Name: name, Value: c.Value}}
	}
	if o.Kind == KindScatter {
		offset := i
		for si, s := range o.Series {
			if offset < len(s.Points) {
				p := s.Points[offset]
				return []TooltipParam{{SeriesName: s.Name, SeriesIndex: si, DataIndex: offset, Name: p.Label, Value: p.Y, Point: &p, Color: s.Color}}
			}
			offset -= len(s.Points)
		}
		return nil
	}
	name := ""
	if i < len(o.XAxis.Categories) {
		name = o.XAxis.Categories[i]
	}
	var params []TooltipParam
	for si, s := range o.Series {
		if i >= len(s.Values) {
			continue
		}
		params = append(params, TooltipParam{SeriesName: s.Name, SeriesIndex: si, DataIndex: i, Name: name, Value: s.Values[i], Color: s.Color})
	}
	return params
}
