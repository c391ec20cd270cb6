package defectdash

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mwiater/defectdash/internal/appconfig"
	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/panel"
)

// maxConcurrentFetches caps parallel requests when panels load without the
// dashboard event loop.
const maxConcurrentFetches = 4

func newGateway(cfg *appconfig.Config) gateway.Fetcher {
	return gateway.New(cfg)
}

func panelParams(cfg *appconfig.Config) panel.Params {
	return panel.Params{Interval: cfg.Interval(), TopN: cfg.TopN(), ScatterLimit: cfg.ScatterLimit}
}

// selectionFlags are the filter flags shared by dash, export and show panel.
type selectionFlags struct {
	machine string
	start   string
	end     string
	preset  string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.machine, "machine", "", "only include this machine id")
	cmd.Flags().StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.preset, "preset", "", "date preset: today, week or month")
}

// state builds the initial filter state. A preset is applied first so
// explicit dates override either end of it.
func (f selectionFlags) state() (*filters.State, error) {
	st := filters.New()
	if f.preset != "" {
		if err := st.ApplyPreset(filters.Preset(f.preset)); err != nil {
			return nil, err
		}
	}
	for name, value := range map[string]string{"start": f.start, "end": f.end} {
		if value != "" && !filters.ValidDate(value) {
			return nil, fmt.Errorf("invalid --%s %q: dates must be YYYY-MM-DD", name, value)
		}
	}
	if f.start != "" || f.end != "" {
		sel := st.Snapshot()
		if f.start != "" {
			sel.StartDate = f.start
		}
		if f.end != "" {
			sel.EndDate = f.end
		}
		st.SetDateRange(sel.StartDate, sel.EndDate)
	}
	if f.machine != "" {
		st.SetMachine(f.machine)
	}
	return st, nil
}

// loadPanels mounts ids outside the dashboard, runs their first fetches
// concurrently and applies the results. Containers are sized before the
// first render. Callers stop the returned panels.
func loadPanels(ctx context.Context, g gateway.Fetcher, st *filters.State, b engine.Binding, pal engine.Palette, params panel.Params, ids []string, width, height int) ([]panel.Panel, error) {
	var cmds []tea.Cmd
	deps := panel.Deps{
		Gateway: g,
		Filters: st,
		Binding: b,
		Run:     func(cmd tea.Cmd) { cmds = append(cmds, cmd) },
		Palette: pal,
	}

	panels := make([]panel.Panel, 0, len(ids))
	for _, id := range ids {
		p, err := panel.New(id, deps, params)
		if err != nil {
			stopAll(panels)
			return nil, err
		}
		p.Resize(width, height)
		p.Start()
		panels = append(panels, p)
	}

	msgs := make([]tea.Msg, len(cmds))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentFetches)
	for i, cmd := range cmds {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			msgs[i] = cmd()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		stopAll(panels)
		return nil, err
	}

	for _, msg := range msgs {
		res, ok := msg.(panel.ResultMsg)
		if !ok {
			continue
		}
		for _, p := range panels {
			if p.Apply(res) {
				break
			}
		}
	}
	return panels, nil
}

func stopAll(panels []panel.Panel) {
	for _, p := range panels {
		p.Stop()
	}
}
