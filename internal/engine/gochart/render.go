package gochart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mwiater/defectdash/internal/engine"
)

var errNothingToDraw = errors.New("nothing to draw")

// maxCategoryTicks keeps x labels from overlapping on long trends.
const maxCategoryTicks = 8

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func seriesColor(s engine.Series, i int, p engine.Palette) drawing.Color {
	if s.Color != "" {
		return color(s.Color)
	}
	return color(p.SeriesColor(i))
}

func axisAt(axes []engine.Axis, i int) engine.Axis {
	if i >= 0 && i < len(axes) {
		return axes[i]
	}
	return engine.Axis{}
}

func formatter(a engine.Axis) chart.ValueFormatter {
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return a.FormatValue(f)
		}
		return fmt.Sprintf("%v", v)
	}
}

// paddedRange widens [lo, hi] so go-chart never sees a zero-width range.
func paddedRange(lo, hi float64, fromZero bool) *chart.ContinuousRange {
	if fromZero && lo > 0 {
		lo = 0
	}
	if hi <= lo {
		pad := math.Max(math.Abs(hi)*0.1, 1)
		return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}
	pad := (hi - lo) * 0.05
	if fromZero && lo == 0 {
		return &chart.ContinuousRange{Min: 0, Max: hi + pad}
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func canvasStyle(p engine.Palette) chart.Style {
	return chart.Style{FillColor: color(p.Background)}
}

func axisStyle(p engine.Palette) chart.Style {
	return chart.Style{FontColor: color(p.Text), StrokeColor: color(p.Border)}
}

func categoryTicks(cats []string) []chart.Tick {
	step := 1
	if len(cats) > maxCategoryTicks {
		step = int(math.Ceil(float64(len(cats)) / maxCategoryTicks))
	}
	ticks := make([]chart.Tick, 0, len(cats)/step+1)
	for i := 0; i < len(cats); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: cats[i]})
	}
	return ticks
}

// renderSeries draws line, scatter and multi-series bar charts as continuous
// series. Bars with more than one series become markers joined per series,
// with YAxis 1 on the secondary axis.
func renderSeries(rp chart.RendererProvider, w io.Writer, o engine.Options, width, height int, p engine.Palette) error {
	var (
		series         []chart.Series
		lo, hi         = math.Inf(1), math.Inf(-1)
		lo2, hi2       = math.Inf(1), math.Inf(-1)
		xlo, xhi       = math.Inf(1), math.Inf(-1)
		secondary      bool
		categoryXValue = o.Kind != engine.KindScatter
	)
	for si, s := range o.Series {
		if s.Len() == 0 {
			continue
		}
		col := seriesColor(s, si, p)
		cs := chart.ContinuousSeries{Name: s.Name}
		if categoryXValue {
			for i, v := range s.Values {
				cs.XValues = append(cs.XValues, float64(i))
				cs.YValues = append(cs.YValues, v)
			}
		} else {
			for _, pt := range s.Points {
				cs.XValues = append(cs.XValues, pt.X)
				cs.YValues = append(cs.YValues, pt.Y)
			}
		}
		switch {
		case o.Kind == engine.KindScatter:
			cs.Style = chart.Style{StrokeColor: drawing.ColorTransparent, DotWidth: 4, DotColor: col}
		case o.Kind == engine.KindBar:
			cs.Style = chart.Style{StrokeColor: col, StrokeWidth: 1, DotWidth: 6, DotColor: col}
		default:
			cs.Style = chart.Style{StrokeColor: col, StrokeWidth: 2, DotWidth: 3, DotColor: col}
		}
		for i := range cs.XValues {
			xlo, xhi = math.Min(xlo, cs.XValues[i]), math.Max(xhi, cs.XValues[i])
			if s.YAxis == 1 {
				lo2, hi2 = math.Min(lo2, cs.YValues[i]), math.Max(hi2, cs.YValues[i])
			} else {
				lo, hi = math.Min(lo, cs.YValues[i]), math.Max(hi, cs.YValues[i])
			}
		}
		if s.YAxis == 1 {
			cs.YAxis = chart.YAxisSecondary
			secondary = true
		}
		series = append(series, cs)
	}
	if len(series) == 0 {
		return errNothingToDraw
	}

	ch := chart.Chart{
		Title:      o.Title,
		Width:      width,
		Height:     height,
		Background: canvasStyle(p),
		Canvas:     canvasStyle(p),
		Series:     series,
	}
	x := o.XAxis
	ch.XAxis = chart.XAxis{Name: x.Name, Style: axisStyle(p), ValueFormatter: formatter(x)}
	if categoryXValue {
		n := float64(len(x.Categories))
		if n == 0 {
			n = xhi + 1
		}
		ch.XAxis.Range = &chart.ContinuousRange{Min: -0.5, Max: n - 0.5}
		ch.XAxis.Ticks = categoryTicks(x.Categories)
	} else {
		ch.XAxis.Range = paddedRange(xlo, xhi, false)
	}

	fromZero := o.Kind == engine.KindBar
	y := axisAt(o.YAxes, 0)
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	ch.YAxis = chart.YAxis{Name: y.Name, Style: axisStyle(p), Range: paddedRange(lo, hi, fromZero), ValueFormatter: formatter(y)}
	if secondary {
		y2 := axisAt(o.YAxes, 1)
		ch.YAxisSecondary = chart.YAxis{Name: y2.Name, Style: axisStyle(p), Range: paddedRange(lo2, hi2, fromZero), ValueFormatter: formatter(y2)}
	}
	if len(series) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch.Render(rp, w)
}

func renderBars(rp chart.RendererProvider, w io.Writer, o engine.Options, width, height int, p engine.Palette) error {
	s := o.Series[0]
	cats := o.XAxis.Categories
	n := min(len(cats), len(s.Values))
	if n == 0 {
		return errNothingToDraw
	}
	col := seriesColor(s, 0, p)
	bars := make([]chart.Value, n)
	hi := 0.0
	for i := 0; i < n; i++ {
		bars[i] = chart.Value{
			Label: cats[i],
			Value: s.Values[i],
			Style: chart.Style{FillColor: col, StrokeColor: col},
		}
		hi = math.Max(hi, s.Values[i])
	}
	barW := max((width-120)/(n*2), 4)
	bc := chart.BarChart{
		Title:      o.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barW,
		BarSpacing: barW,
		Background: canvasStyle(p),
		Canvas:     canvasStyle(p),
		XAxis:      axisStyle(p),
		YAxis: chart.YAxis{
			Style:          axisStyle(p),
			Range:          paddedRange(0, hi, true),
			ValueFormatter: formatter(axisAt(o.YAxes, 0)),
		},
		Bars: bars,
	}
	return bc.Render(rp, w)
}

// renderHeatmap paints the matrix directly with the renderer since go-chart
// has no heatmap series.
func renderHeatmap(rp chart.RendererProvider, w io.Writer, o engine.Options, width, height int, p engine.Palette) error {
	hm := o.Heatmap
	if hm == nil || len(hm.XLabels) == 0 || len(hm.YLabels) == 0 {
		return errNothingToDraw
	}
	r, err := rp(width, height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)

	fillRect(r, 0, 0, width, height, color(p.Background), color(p.Background))

	const top, bottom, right = 32, 28, 12
	left := min(width/4, 140)
	cols, rows := len(hm.XLabels), len(hm.YLabels)
	cellW := max((width-left-right)/cols, 1)
	cellH := max((height-top-bottom)/rows, 1)

	peak := hm.Max
	for _, c := range hm.Cells {
		peak = math.Max(peak, c.Value)
	}

	r.SetFontColor(color(p.Text))
	if o.Title != "" {
		r.SetFontSize(12)
		r.Text(o.Title, left, top/2+4)
	}

	r.SetFontSize(9)
	for y, label := range hm.YLabels {
		r.Text(label, 4, top+y*cellH+cellH/2+4)
	}
	for x, label := range hm.XLabels {
		tw := r.MeasureText(label).Width()
		r.Text(label, left+x*cellW+(cellW-tw)/2, height-bottom/2+4)
	}

	border := color(p.Border)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			fillRect(r, left+x*cellW, top+y*cellH, cellW, cellH, color(p.Background), border)
		}
	}
	for _, c := range hm.Cells {
		if c.X < 0 || c.X >= cols || c.Y < 0 || c.Y >= rows {
			continue
		}
		ratio := 0.0
		if peak > 0 {
			ratio = c.Value / peak
		}
		x0, y0 := left+c.X*cellW, top+c.Y*cellH
		fillRect(r, x0, y0, cellW, cellH, color(p.HeatColor(ratio)), border)
		label := fmt.Sprintf("%g", c.Value)
		if ratio > 0.5 {
			r.SetFontColor(drawing.ColorWhite)
		} else {
			r.SetFontColor(color(p.Text))
		}
		tw := r.MeasureText(label).Width()
		r.Text(label, x0+(cellW-tw)/2, y0+cellH/2+4)
	}
	return r.Save(w)
}

func fillRect(r chart.Renderer, x, y, w, h int, fill, stroke drawing.Color) {
	r.SetFillColor(fill)
	r.SetStrokeColor(stroke)
	r.SetStrokeWidth(1)
	r.MoveTo(x, y)
	r.LineTo(x+w, y)
	r.LineTo(x+w, y+h)
	r.LineTo(x, y+h)
	r.Close()
	r.FillStroke()
}
