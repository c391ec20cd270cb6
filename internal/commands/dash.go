package defectdash

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mwiater/defectdash/dashboard"
	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/logging"
	"github.com/mwiater/defectdash/internal/metrics"
	"github.com/mwiater/defectdash/internal/preferences"
)

var dashSelection selectionFlags

// dashCmd starts the interactive dashboard.
var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Start the interactive defect analytics dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		st, err := dashSelection.state()
		if err != nil {
			return err
		}
		prefs, err := preferences.Open(cfg.PreferencesPath())
		if err != nil {
			return err
		}

		agg := metrics.NewAggregator()
		model := dashboard.New(dashboard.Options{
			Gateway:     gateway.New(cfg).WithMetrics(agg),
			Filters:     st,
			Preferences: prefs,
			Params:      panelParams(cfg),
		})
		logging.LogEvent("dashboard starting against %s", cfg.BaseURL())

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		_, err = p.Run()
		for _, m := range agg.Snapshot() {
			logging.LogEvent("requests %s: %d (%d failed), avg %.1fms", m.Endpoint, m.Requests, m.Failures, m.LatencyMillis.Mean)
		}
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	dashSelection.register(dashCmd)
	rootCmd.AddCommand(dashCmd)
}
