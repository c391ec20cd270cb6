package panel

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/preferences"
)

// NewMachineComparison builds the per-machine comparison panel. It ignores
// the filter selection: the API always compares every machine.
func NewMachineComparison(d Deps) *Controller[gateway.MachineComparison] {
	return NewController(Spec[gateway.MachineComparison]{
		ID:        preferences.ChartMachineComparison,
		Title:     "Machine Performance Comparison",
		EmptyText: "No machine data available",
		Derive:    func(filters.Selection) gateway.Query { return gateway.Query{} },
		Fetch: func(ctx context.Context, _ gateway.Query) (gateway.MachineComparison, error) {
			return d.Gateway.MachineComparison(ctx)
		},
		Plottable: func(p gateway.MachineComparison) int { return len(p.Machines) },
		Options:   func(p gateway.MachineComparison, _ engine.Palette) engine.Options { return machineOptions(p) },
		Summary:   machineSummary,
	}, d)
}

func machineOptions(p gateway.MachineComparison) engine.Options {
	labels := make([]string, len(p.Machines))
	rates := make([]float64, len(p.Machines))
	totals := make([]float64, len(p.Machines))
	for i, m := range p.Machines {
		labels[i] = HumanizeID(m.MachineID)
		rates[i] = m.DefectRate * 100
		totals[i] = float64(m.Total)
	}
	return engine.Options{
		Title: "Machine Performance Comparison",
		Kind:  engine.KindBar,
		XAxis: engine.Axis{Categories: labels},
		YAxes: []engine.Axis{
			{Name: "Defect Rate (%)", Format: func(v float64) string { return fmt.Sprintf("%.2f%%", v) }},
			{Name: "Total Products", Format: func(v float64) string { return Comma(int(v)) }},
		},
		Series: []engine.Series{
			{Name: "Defect Rate (%)", Kind: engine.KindBar, Values: rates},
			{Name: "Total Products", Kind: engine.KindBar, Values: totals, YAxis: 1},
		},
		Legend:  []string{"Defect Rate (%)", "Total Products"},
		Tooltip: engine.Tooltip{Formatter: machineTooltip},
	}
}

func machineTooltip(params []engine.TooltipParam) string {
	lines := []string{params[0].Name}
	for _, p := range params {
		value := Comma(int(p.Value))
		if p.SeriesIndex == 0 {
			value = fmt.Sprintf("%.2f%%", p.Value)
		}
		lines = append(lines, fmt.Sprintf("%s: %s", p.SeriesName, value))
	}
	return strings.Join(lines, "\n")
}

func machineSummary(p gateway.MachineComparison, _ engine.Palette) []Stat {
	var worst gateway.MachineStats
	total, rejected := 0, 0
	for i, m := range p.Machines {
		total += m.Total
		rejected += m.Rejected
		if i == 0 || m.DefectRate > worst.DefectRate {
			worst = m
		}
	}
	rate := 0.0
	if total > 0 {
		rate = float64(rejected) / float64(total)
	}
	return []Stat{
		{Label: "Machines", Value: Comma(len(p.Machines))},
		{Label: "Total Products", Value: Comma(total)},
		{Label: "Overall Rate", Value: Percent(rate), Severity: RateSeverity(rate)},
		{Label: "Highest Rate", Value: fmt.Sprintf("%s (%s)", HumanizeID(worst.MachineID), Percent(worst.DefectRate)), Severity: RateSeverity(worst.DefectRate)},
	}
}
