package panel

import (
	"context"
	"fmt"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/preferences"
)

// NewHeatmap builds the machine by defect type matrix. Only the date range
// applies; every machine is always shown.
func NewHeatmap(d Deps) *Controller[gateway.Heatmap] {
	return NewController(Spec[gateway.Heatmap]{
		ID:        preferences.ChartHeatmap,
		Title:     "Machine × Defect Type Analysis",
		EmptyText: "No defect data available",
		ErrorText: "Error loading heatmap",
		Derive: func(sel filters.Selection) gateway.Query {
			return gateway.Query{StartDate: sel.StartDate, EndDate: sel.EndDate}
		},
		Fetch: func(ctx context.Context, q gateway.Query) (gateway.Heatmap, error) {
			return d.Gateway.MachineDefectHeatmap(ctx, q)
		},
		Plottable: func(p gateway.Heatmap) int { return len(p.Cells) },
		Options:   func(p gateway.Heatmap, _ engine.Palette) engine.Options { return heatmapOptions(p) },
		Summary: func(p gateway.Heatmap, _ engine.Palette) []Stat {
			m := p.Metadata
			return []Stat{
				{Label: "Total Defects", Value: Comma(m.TotalDefects)},
				{Label: "Max per Cell", Value: Comma(m.MaxDefectsPerCell), Severity: engine.SeverityWarning},
				{Label: "Machines", Value: Comma(m.MachineCount)},
				{Label: "Defect Types", Value: Comma(m.DefectTypeCount)},
			}
		},
	}, d)
}

func heatmapOptions(p gateway.Heatmap) engine.Options {
	machines := humanizeAll(p.MachineLabels)
	defects := humanizeAll(p.DefectLabels)
	cells := make([]engine.Cell, 0, len(p.Cells))
	peak := float64(p.Metadata.MaxDefectsPerCell)
	for _, c := range p.Cells {
		cells = append(cells, engine.Cell{X: c.MachineIndex, Y: c.DefectIndex, Value: float64(c.Count)})
		if float64(c.Count) > peak {
			peak = float64(c.Count)
		}
	}
	raw := p.Cells
	return engine.Options{
		Title: "Machine × Defect Type Analysis",
		Kind:  engine.KindHeatmap,
		XAxis: engine.Axis{Name: "Machine", Categories: machines},
		YAxes: []engine.Axis{{Name: "Defect Type", Categories: defects}},
		Heatmap: &engine.HeatmapData{
			XLabels: machines,
			YLabels: defects,
			Cells:   cells,
			Max:     peak,
		},
		Tooltip: engine.Tooltip{Formatter: func(params []engine.TooltipParam) string {
			c := raw[params[0].DataIndex]
			return fmt.Sprintf("%s\n%s: %s defects", HumanizeID(c.MachineID), HumanizeID(c.DefectType), Comma(c.Count))
		}},
	}
}

func humanizeAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = HumanizeID(id)
	}
	return out
}
