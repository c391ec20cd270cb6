package term

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/util"
)

type cell struct {
	r      rune
	fg, bg string
}

// canvas is a fixed grid of coloured runes.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	cells := make([][]cell, h)
	for y := range cells {
		cells[y] = make([]cell, w)
		for x := range cells[y] {
			cells[y][x] = cell{r: ' '}
		}
	}
	return &canvas{w: w, h: h, cells: cells}
}

func (c *canvas) set(x, y int, r rune, fg string) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = cell{r: r, fg: fg}
}

func (c *canvas) text(x, y int, s, fg string) {
	for _, r := range s {
		c.set(x, y, r, fg)
		x++
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x == len(row) || row[x].fg != row[start].fg || row[x].bg != row[start].bg {
				b.WriteString(styleRun(row[start:x]))
				start = x
			}
		}
	}
	return b.String()
}

func styleRun(cells []cell) string {
	rs := make([]rune, len(cells))
	for i, c := range cells {
		rs[i] = c.r
	}
	return paint(string(rs), cells[0].fg, cells[0].bg)
}

func paint(s, fg, bg string) string {
	if fg == "" && bg == "" {
		return s
	}
	st := lipgloss.NewStyle()
	if fg != "" {
		st = st.Foreground(lipgloss.Color(fg))
	}
	if bg != "" {
		st = st.Background(lipgloss.Color(bg))
	}
	return st.Render(s)
}

func axisAt(axes []engine.Axis, i int) engine.Axis {
	if i >= 0 && i < len(axes) {
		return axes[i]
	}
	return engine.Axis{}
}

func seriesColor(s engine.Series, i int, p engine.Palette) string {
	if s.Color != "" {
		return s.Color
	}
	return p.SeriesColor(i)
}

func valueRange(series []engine.Series) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		if s.YAxis != 0 {
			continue
		}
		for _, v := range s.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0, false
	}
	return lo, hi, true
}

func column(i, n, width int) int {
	if n <= 1 {
		return width / 2
	}
	return i * (width - 1) / (n - 1)
}

func rowFor(v, lo, hi float64, height int) int {
	if hi <= lo {
		return height / 2
	}
	ratio := (v - lo) / (hi - lo)
	return height - 1 - int(math.Round(ratio*float64(height-1)))
}

// plotFrame draws the y gutter and returns the plot origin and size.
func plotFrame(cv *canvas, yAxis engine.Axis, lo, hi float64, p engine.Palette) (gutter, plotW, plotH int) {
	top, bottom := yAxis.FormatValue(hi), yAxis.FormatValue(lo)
	gutter = max(util.RuneLen(top), util.RuneLen(bottom)) + 1
	plotW, plotH = cv.w-gutter, cv.h-1
	if plotW < 2 || plotH < 1 {
		return gutter, 0, 0
	}
	cv.text(0, 0, util.PadLeft(top, gutter-1), p.Muted)
	if plotH > 1 {
		cv.text(0, plotH-1, util.PadLeft(bottom, gutter-1), p.Muted)
	}
	for y := 0; y < plotH; y++ {
		cv.set(gutter-1, y, '│', p.Border)
	}
	return gutter, plotW, plotH
}

func renderLine(o engine.Options, w, h int, p engine.Palette) string {
	lo, hi, ok := valueRange(o.Series)
	if !ok {
		return ""
	}
	cv := newCanvas(w, h)
	gutter, plotW, plotH := plotFrame(cv, axisAt(o.YAxes, 0), lo, hi, p)
	if plotW == 0 {
		return ""
	}
	for si, s := range o.Series {
		if s.YAxis != 0 {
			continue
		}
		color := seriesColor(s, si, p)
		prevX, prevY := -1, -1
		for i, v := range s.Values {
			x := gutter + column(i, len(s.Values), plotW)
			y := rowFor(v, lo, hi, plotH)
			if prevX >= 0 {
				for cx := prevX + 1; cx < x; cx++ {
					cy := prevY + (y-prevY)*(cx-prevX)/(x-prevX)
					cv.set(cx, cy, '·', color)
				}
			}
			cv.set(x, y, '●', color)
			prevX, prevY = x, y
		}
	}
	if cats := o.XAxis.Categories; len(cats) > 0 {
		half := max(plotW/2-1, 1)
		cv.text(gutter, h-1, util.TruncateRunes(cats[0], half), p.Muted)
		if len(cats) > 1 {
			last := util.TruncateRunes(cats[len(cats)-1], half)
			cv.text(w-util.RuneLen(last), h-1, last, p.Muted)
		}
	}
	return cv.String()
}

var markers = []rune{'●', '✕', '◆', '▲'}

func renderScatter(o engine.Options, w, h int, p engine.Palette) string {
	xlo, xhi := math.Inf(1), math.Inf(-1)
	ylo, yhi := math.Inf(1), math.Inf(-1)
	for _, s := range o.Series {
		for _, pt := range s.Points {
			xlo, xhi = math.Min(xlo, pt.X), math.Max(xhi, pt.X)
			ylo, yhi = math.Min(ylo, pt.Y), math.Max(yhi, pt.Y)
		}
	}
	if math.IsInf(xlo, 1) {
		return ""
	}
	cv := newCanvas(w, h)
	gutter, plotW, plotH := plotFrame(cv, axisAt(o.YAxes, 0), ylo, yhi, p)
	if plotW == 0 {
		return ""
	}
	for si, s := range o.Series {
		color := seriesColor(s, si, p)
		mark := markers[si%len(markers)]
		for _, pt := range s.Points {
			x := gutter
			if xhi > xlo {
				x += int(math.Round((pt.X - xlo) / (xhi - xlo) * float64(plotW-1)))
			} else {
				x += plotW / 2
			}
			cv.set(x, rowFor(pt.Y, ylo, yhi, plotH), mark, color)
		}
	}
	left, right := o.XAxis.FormatValue(xlo), o.XAxis.FormatValue(xhi)
	cv.text(gutter, h-1, left, p.Muted)
	cv.text(w-util.RuneLen(right), h-1, right, p.Muted)
	if name := o.XAxis.Name; name != "" && plotW > util.RuneLen(left)+util.RuneLen(right)+util.RuneLen(name)+2 {
		cv.text(gutter+(plotW-util.RuneLen(name))/2, h-1, name, p.Muted)
	}
	return cv.String()
}

func renderBars(o engine.Options, w, h int, p engine.Palette) string {
	cats := o.XAxis.Categories
	if len(cats) == 0 || len(o.Series) == 0 {
		return ""
	}
	labelW := 0
	for _, c := range cats {
		labelW = max(labelW, util.RuneLen(c))
	}
	labelW = min(labelW, max(4, w/3))

	peaks := make([]float64, len(o.Series))
	valueW := 0
	for si, s := range o.Series {
		axis := axisAt(o.YAxes, s.YAxis)
		for _, v := range s.Values {
			peaks[si] = math.Max(peaks[si], v)
			valueW = max(valueW, util.RuneLen(axis.FormatValue(v)))
		}
	}
	barW := max(w-labelW-valueW-2, 1)

	var lines []string
	total := len(cats) * len(o.Series)
	for i, cat := range cats {
		for si, s := range o.Series {
			if i >= len(s.Values) {
				continue
			}
			if len(lines) >= h-1 && total-len(lines) > 1 {
				lines = append(lines, paint(fmt.Sprintf("… %d more", total-len(lines)), p.Muted, ""))
				return strings.Join(lines, "\n")
			}
			label := ""
			if si == 0 {
				label = util.TruncateRunes(cat, labelW)
			}
			v := s.Values[i]
			n := 0
			if peaks[si] > 0 {
				n = int(math.Round(v / peaks[si] * float64(barW)))
			}
			if v > 0 && n == 0 {
				n = 1
			}
			n = min(max(n, 0), barW)
			bar := paint(strings.Repeat("█", n), seriesColor(s, si, p), "")
			value := axisAt(o.YAxes, s.YAxis).FormatValue(v)
			lines = append(lines, paint(util.PadRight(label, labelW), p.Text, "")+" "+bar+strings.Repeat(" ", barW-n)+" "+value)
		}
	}
	return strings.Join(lines, "\n")
}

// abbreviate shortens "Molding Machine 1" to "MM1" for narrow column headers.
func abbreviate(label string, width int) string {
	if util.RuneLen(label) <= width {
		return label
	}
	var b strings.Builder
	for _, word := range strings.Fields(label) {
		r := []rune(word)
		if unicode.IsDigit(r[0]) {
			b.WriteString(word)
			continue
		}
		b.WriteRune(unicode.ToUpper(r[0]))
	}
	return util.TruncateRunes(b.String(), width)
}

func renderHeatmap(o engine.Options, w, h int, p engine.Palette) string {
	hm := o.Heatmap
	if hm == nil || len(hm.XLabels) == 0 || len(hm.YLabels) == 0 {
		return ""
	}
	labelW := 0
	for _, l := range hm.YLabels {
		labelW = max(labelW, util.RuneLen(l))
	}
	labelW = min(labelW, max(4, w/3))

	cols := len(hm.XLabels)
	cellW := min(max((w-labelW-1)/cols, 3), 8)
	if labelW+1+cols*cellW > w {
		cols = max((w-labelW-1)/cellW, 1)
	}
	rows := len(hm.YLabels)
	if rows > h-2 {
		rows = max(h-2, 1)
	}

	values := make(map[[2]int]float64, len(hm.Cells))
	for _, c := range hm.Cells {
		values[[2]int{c.X, c.Y}] = c.Value
	}
	peak := hm.Max
	if peak <= 0 {
		for _, v := range values {
			peak = math.Max(peak, v)
		}
	}

	var lines []string
	var header strings.Builder
	header.WriteString(strings.Repeat(" ", labelW+1))
	for x := 0; x < cols; x++ {
		header.WriteString(paint(util.Center(abbreviate(hm.XLabels[x], cellW-1), cellW), p.Muted, ""))
	}
	lines = append(lines, header.String())

	for y := 0; y < rows; y++ {
		var line strings.Builder
		line.WriteString(paint(util.PadRight(util.TruncateRunes(hm.YLabels[y], labelW), labelW), p.Text, ""))
		line.WriteByte(' ')
		for x := 0; x < cols; x++ {
			v, ok := values[[2]int{x, y}]
			if !ok {
				line.WriteString(paint(util.Center("·", cellW), p.Muted, ""))
				continue
			}
			ratio := 0.0
			if peak > 0 {
				ratio = v / peak
			}
			fg := p.Text
			if ratio > 0.5 {
				fg = "#ffffff"
			}
			line.WriteString(paint(util.Center(fmt.Sprintf("%g", v), cellW), fg, p.HeatColor(ratio)))
		}
		lines = append(lines, line.String())
	}

	if len(lines) < h {
		var legend strings.Builder
		legend.WriteString(paint("0 ", p.Muted, ""))
		for i := 0; i <= 4; i++ {
			legend.WriteString(paint("  ", "", p.HeatColor(float64(i)/4)))
		}
		legend.WriteString(paint(fmt.Sprintf(" %g", peak), p.Muted, ""))
		lines = append(lines, legend.String())
	}
	return strings.Join(lines, "\n")
}
