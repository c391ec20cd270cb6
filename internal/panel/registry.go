package panel

import (
	"fmt"

	"github.com/mwiater/defectdash/internal/preferences"
)

// Params carries the configured defaults for panel-local parameters.
type Params struct {
	Interval     string
	TopN         int
	ScatterLimit int
}

var titles = map[string]string{
	preferences.ChartTrend:              "Defect Rate Trend",
	preferences.ChartTopDefects:         "Top Defect Types",
	preferences.ChartHeatmap:            "Machine × Defect Type Analysis",
	preferences.ChartMachineComparison:  "Machine Performance Comparison",
	preferences.ChartRejectDistribution: "Defect Count Distribution",
	preferences.ChartCycleTime:          "Cycle Time vs Defect Count",
}

// IDs returns every panel id in display order.
func IDs() []string {
	return append([]string(nil), preferences.DefaultVisible...)
}

// TitleFor returns the display title of a panel id, or the id itself.
func TitleFor(id string) string {
	if t, ok := titles[id]; ok {
		return t
	}
	return id
}

// New builds the panel registered under id. The panel is idle; call Start
// to mount it.
func New(id string, d Deps, p Params) (Panel, error) {
	switch id {
	case preferences.ChartTrend:
		return NewTrend(d, p.Interval), nil
	case preferences.ChartTopDefects:
		return NewTopDefects(d, p.TopN), nil
	case preferences.ChartHeatmap:
		return NewHeatmap(d), nil
	case preferences.ChartMachineComparison:
		return NewMachineComparison(d), nil
	case preferences.ChartRejectDistribution:
		return NewDistribution(d), nil
	case preferences.ChartCycleTime:
		return NewCycleTime(d, p.ScatterLimit), nil
	default:
		return nil, fmt.Errorf("panel: unknown chart %q", id)
	}
}
