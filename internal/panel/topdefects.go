package panel

import (
	"context"
	"fmt"
	"sort"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/preferences"
)

// Limits are the top-N choices offered for defect rankings.
var Limits = []int{5, 10, 15, 20}

// TopDefects ranks defect types by occurrence.
type TopDefects struct {
	*Controller[gateway.TopDefects]
	limit int
}

// NewTopDefects builds the ranking panel. A limit outside Limits falls back
// to 10.
func NewTopDefects(d Deps, limit int) *TopDefects {
	t := &TopDefects{limit: 10}
	if validLimit(limit) {
		t.limit = limit
	}
	t.Controller = NewController(Spec[gateway.TopDefects]{
		ID:    preferences.ChartTopDefects,
		Title: "Top Defect Types",
		Derive: func(sel filters.Selection) gateway.Query {
			return gateway.Query{
				MachineID: sel.MachineID,
				StartDate: sel.StartDate,
				EndDate:   sel.EndDate,
				Limit:     t.limit,
			}
		},
		Fetch: func(ctx context.Context, q gateway.Query) (gateway.TopDefects, error) {
			return d.Gateway.TopDefects(ctx, q)
		},
		Plottable: func(p gateway.TopDefects) int { return len(p.Defects) },
		Options: func(p gateway.TopDefects, _ engine.Palette) engine.Options {
			return topDefectsOptions(p, t.limit)
		},
		Summary: func(p gateway.TopDefects, _ engine.Palette) []Stat {
			return []Stat{
				{Label: "Total Defects", Value: Comma(p.Summary.TotalDefects)},
				{Label: "Most Common", Value: HumanizeID(p.Summary.MostCommon)},
				{Label: "Affected Products", Value: Comma(p.Summary.AffectedProducts)},
			}
		},
	}, d)
	return t
}

// Limit returns the current top-N.
func (t *TopDefects) Limit() int { return t.limit }

// SetLimit changes the top-N and refetches if it changed.
func (t *TopDefects) SetLimit(limit int) error {
	if !validLimit(limit) {
		return fmt.Errorf("topDefects: limit must be one of %v, got %d", Limits, limit)
	}
	t.limit = limit
	t.Refresh()
	return nil
}

// CycleLimit steps through Limits.
func (t *TopDefects) CycleLimit() {
	for i, l := range Limits {
		if l == t.limit {
			_ = t.SetLimit(Limits[(i+1)%len(Limits)])
			return
		}
	}
}

func validLimit(limit int) bool {
	for _, l := range Limits {
		if l == limit {
			return true
		}
	}
	return false
}

// rankDefects sorts by descending count and keeps the first limit entries.
// Ties keep the order the API returned them in.
func rankDefects(defects []gateway.DefectCount, limit int) []gateway.DefectCount {
	ranked := append([]gateway.DefectCount(nil), defects...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func topDefectsOptions(p gateway.TopDefects, limit int) engine.Options {
	ranked := rankDefects(p.Defects, limit)
	labels := make([]string, len(ranked))
	counts := make([]float64, len(ranked))
	for i, d := range ranked {
		labels[i] = HumanizeID(d.DefectType)
		counts[i] = float64(d.Count)
	}
	return engine.Options{
		Title:  "Top Defect Types",
		Kind:   engine.KindBar,
		XAxis:  engine.Axis{Categories: labels},
		YAxes:  []engine.Axis{{Name: "Count", Format: func(v float64) string { return Comma(int(v)) }}},
		Series: []engine.Series{{Name: "Count", Kind: engine.KindBar, Values: counts}},
		Tooltip: engine.Tooltip{Formatter: func(params []engine.TooltipParam) string {
			d := ranked[params[0].DataIndex]
			return fmt.Sprintf("%s\nCount: %s\nShare: %.1f%%", HumanizeID(d.DefectType), Comma(d.Count), d.Percentage)
		}},
	}
}
