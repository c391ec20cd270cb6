package panel

import (
	"context"
	"fmt"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/preferences"
)

// CycleTime plots cycle time against defect count, split by outcome.
type CycleTime struct {
	*Controller[gateway.Scatter]
	limit int
}

// NewCycleTime builds the scatter panel. limit caps the number of points;
// zero leaves it to the API.
func NewCycleTime(d Deps, limit int) *CycleTime {
	c := &CycleTime{limit: max(limit, 0)}
	c.Controller = NewController(Spec[gateway.Scatter]{
		ID:    preferences.ChartCycleTime,
		Title: "Cycle Time vs Defect Count",
		Derive: func(sel filters.Selection) gateway.Query {
			return gateway.Query{
				MachineID: sel.MachineID,
				StartDate: sel.StartDate,
				EndDate:   sel.EndDate,
				Limit:     c.limit,
			}
		},
		Fetch: func(ctx context.Context, q gateway.Query) (gateway.Scatter, error) {
			return d.Gateway.CycleTimeScatter(ctx, q)
		},
		Plottable: func(p gateway.Scatter) int { return len(p.Points) },
		Options:   scatterOptions,
		Summary:   scatterSummary,
	}, d)
	return c
}

// Limit returns the point cap, zero meaning the API default.
func (c *CycleTime) Limit() int { return c.limit }

// SetLimit changes the point cap and refetches if it changed.
func (c *CycleTime) SetLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("cycleTime: limit must not be negative, got %d", limit)
	}
	c.limit = limit
	c.Refresh()
	return nil
}

// ProductAt maps a hover index, counted across the Accepted then Rejected
// series, back to the product it came from.
func (c *CycleTime) ProductAt(i int) (int64, bool) {
	p, ok := c.Payload()
	if !ok || c.Status() != Loaded {
		return 0, false
	}
	accepted, rejected := partition(p.Points)
	all := append(accepted, rejected...)
	if i < 0 || i >= len(all) {
		return 0, false
	}
	return all[i].ProductID, true
}

func partition(points []gateway.ScatterPoint) (accepted, rejected []gateway.ScatterPoint) {
	for _, pt := range points {
		if pt.IsRejected {
			rejected = append(rejected, pt)
		} else {
			accepted = append(accepted, pt)
		}
	}
	return accepted, rejected
}

func scatterPoints(points []gateway.ScatterPoint) []engine.Point {
	out := make([]engine.Point, len(points))
	for i, pt := range points {
		out[i] = engine.Point{X: pt.CycleTime, Y: float64(pt.DefectCount), Label: fmt.Sprintf("Product #%d", pt.ProductID)}
	}
	return out
}

func scatterOptions(p gateway.Scatter, pal engine.Palette) engine.Options {
	accepted, rejected := partition(p.Points)
	return engine.Options{
		Title: "Cycle Time vs Defect Count",
		Kind:  engine.KindScatter,
		XAxis: engine.Axis{Name: "Cycle Time (s)", Format: func(v float64) string { return fmt.Sprintf("%.1fs", v) }},
		YAxes: []engine.Axis{{Name: "Defects", Format: func(v float64) string { return fmt.Sprintf("%.0f", v) }}},
		Series: []engine.Series{
			{Name: "Accepted", Kind: engine.KindScatter, Points: scatterPoints(accepted), Color: pal.Success},
			{Name: "Rejected", Kind: engine.KindScatter, Points: scatterPoints(rejected), Color: pal.Danger},
		},
		Legend: []string{"Accepted", "Rejected"},
		Tooltip: engine.Tooltip{Formatter: func(params []engine.TooltipParam) string {
			pt := params[0].Point
			return fmt.Sprintf("%s (%s)\nCycle Time: %.1fs\nDefects: %.0f", pt.Label, params[0].SeriesName, pt.X, pt.Y)
		}},
	}
}

func scatterSummary(p gateway.Scatter, _ engine.Palette) []Stat {
	s := p.Stats
	strength, sev := CorrelationStrength(s.Correlation)
	return []Stat{
		{Label: "Correlation", Value: fmt.Sprintf("%.3f (%s)", s.Correlation, strength), Severity: sev},
		{Label: "Avg Cycle Time", Value: fmt.Sprintf("%.1fs", s.AverageCycleTime)},
		{Label: "Avg Defects", Value: fmt.Sprintf("%.2f", s.AverageDefectCount)},
		{Label: "Sample Size", Value: Comma(s.SampleSize)},
	}
}
