package panel

import (
	"context"
	"fmt"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/preferences"
)

// NewDistribution builds the defects-per-product histogram.
func NewDistribution(d Deps) *Controller[gateway.Distribution] {
	return NewController(Spec[gateway.Distribution]{
		ID:    preferences.ChartRejectDistribution,
		Title: "Defect Count Distribution",
		Derive: func(sel filters.Selection) gateway.Query {
			return gateway.Query{MachineID: sel.MachineID, StartDate: sel.StartDate, EndDate: sel.EndDate}
		},
		Fetch: func(ctx context.Context, q gateway.Query) (gateway.Distribution, error) {
			return d.Gateway.DefectDistribution(ctx, q)
		},
		Plottable: func(p gateway.Distribution) int { return len(p.Buckets) },
		Options:   func(p gateway.Distribution, _ engine.Palette) engine.Options { return distributionOptions(p) },
		Summary: func(p gateway.Distribution, _ engine.Palette) []Stat {
			s := p.Summary
			return []Stat{
				{Label: "Zero Defects", Value: Comma(s.ZeroDefects), Severity: engine.SeveritySuccess},
				{Label: "Perfect Rate", Value: fmt.Sprintf("%.1f%%", s.PerfectRate)},
				{Label: "Total Products", Value: Comma(s.TotalProducts)},
			}
		},
	}, d)
}

func distributionOptions(p gateway.Distribution) engine.Options {
	buckets := p.Buckets
	labels := make([]string, len(buckets))
	counts := make([]float64, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label()
		counts[i] = float64(b.ProductCount)
	}
	return engine.Options{
		Title:  "Defect Count Distribution",
		Kind:   engine.KindBar,
		XAxis:  engine.Axis{Name: "Defects per Product", Categories: labels},
		YAxes:  []engine.Axis{{Name: "Products", Format: func(v float64) string { return Comma(int(v)) }}},
		Series: []engine.Series{{Name: "Products", Kind: engine.KindBar, Values: counts}},
		Tooltip: engine.Tooltip{Formatter: func(params []engine.TooltipParam) string {
			b := buckets[params[0].DataIndex]
			return fmt.Sprintf("%s\nProducts: %s\nPercentage: %.1f%%", b.Label(), Comma(b.ProductCount), b.Percentage)
		}},
	}
}
