package panel

import (
	"context"
	"fmt"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/preferences"
)

// Intervals are the trend bucket sizes the API accepts.
var Intervals = []string{"hour", "day", "week"}

// Trend plots the reject rate over time.
type Trend struct {
	*Controller[gateway.Trend]
	interval string
}

// NewTrend builds the trend panel. An unknown interval falls back to "day".
func NewTrend(d Deps, interval string) *Trend {
	t := &Trend{interval: "day"}
	if validInterval(interval) {
		t.interval = interval
	}
	t.Controller = NewController(Spec[gateway.Trend]{
		ID:    preferences.ChartTrend,
		Title: "Defect Rate Trend",
		Derive: func(sel filters.Selection) gateway.Query {
			return gateway.Query{
				MachineID: sel.MachineID,
				StartDate: sel.StartDate,
				EndDate:   sel.EndDate,
				Interval:  t.interval,
			}
		},
		Fetch: func(ctx context.Context, q gateway.Query) (gateway.Trend, error) {
			return d.Gateway.DefectRateTrend(ctx, q)
		},
		Plottable: func(p gateway.Trend) int { return len(p.DataPoints) },
		Options: func(p gateway.Trend, _ engine.Palette) engine.Options {
			return trendOptions(p, t.interval == "hour")
		},
		Summary: trendSummary,
	}, d)
	return t
}

// Interval returns the current bucket size.
func (t *Trend) Interval() string { return t.interval }

// SetInterval changes the bucket size and refetches if it changed.
func (t *Trend) SetInterval(interval string) error {
	if !validInterval(interval) {
		return fmt.Errorf("trend: unknown interval %q", interval)
	}
	t.interval = interval
	t.Refresh()
	return nil
}

// CycleInterval steps through hour, day and week.
func (t *Trend) CycleInterval() {
	for i, iv := range Intervals {
		if iv == t.interval {
			_ = t.SetInterval(Intervals[(i+1)%len(Intervals)])
			return
		}
	}
}

func validInterval(interval string) bool {
	for _, iv := range Intervals {
		if iv == interval {
			return true
		}
	}
	return false
}

func trendOptions(p gateway.Trend, hourly bool) engine.Options {
	labels := make([]string, len(p.DataPoints))
	rates := make([]float64, len(p.DataPoints))
	for i, dp := range p.DataPoints {
		labels[i] = shortDate(dp.Timestamp, hourly)
		rates[i] = dp.DefectRate * 100
	}
	points := p.DataPoints
	return engine.Options{
		Title: "Defect Rate Trend",
		Kind:  engine.KindLine,
		XAxis: engine.Axis{Categories: labels},
		YAxes: []engine.Axis{{
			Name:   "Defect Rate (%)",
			Format: func(v float64) string { return fmt.Sprintf("%.0f%%", v) },
		}},
		Series: []engine.Series{{Name: "Defect Rate", Kind: engine.KindLine, Values: rates}},
		Tooltip: engine.Tooltip{Formatter: func(params []engine.TooltipParam) string {
			i := params[0].DataIndex
			dp := points[i]
			return fmt.Sprintf("%s\nDefect Rate: %s\nProducts: %s (%s rejected)",
				params[0].Name, Percent(dp.DefectRate), Comma(dp.TotalProducts), Comma(dp.RejectedProducts))
		}},
	}
}

func trendSummary(p gateway.Trend, _ engine.Palette) []Stat {
	s := p.Summary
	return []Stat{
		{Label: "Average Rate", Value: Percent(s.AvgRate), Severity: RateSeverity(s.AvgRate)},
		{Label: "Min Rate", Value: Percent(s.MinRate), Severity: RateSeverity(s.MinRate)},
		{Label: "Max Rate", Value: Percent(s.MaxRate), Severity: RateSeverity(s.MaxRate)},
		{Label: "Total Products", Value: Comma(s.TotalProducts)},
	}
}
