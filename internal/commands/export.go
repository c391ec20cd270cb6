package defectdash

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/engine/gochart"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/logging"
	"github.com/mwiater/defectdash/internal/metrics"
	"github.com/mwiater/defectdash/internal/panel"
	"github.com/mwiater/defectdash/internal/preferences"
	"github.com/mwiater/defectdash/internal/util"
)

var (
	exportSelection selectionFlags
	exportFormat    string
	exportDir       string
	exportWidth     int
	exportHeight    int
	exportDark      bool
	exportStats     bool
)

// exportCmd renders charts to image files without starting the dashboard.
var exportCmd = &cobra.Command{
	Use:   "export [panel...]",
	Short: "Render charts to PNG or SVG files",
	Long: `Fetch the selected panels (all visible panels by default) under the given
filters and write one image per chart to the export directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		st, err := exportSelection.state()
		if err != nil {
			return err
		}
		prefs, err := preferences.Open(cfg.PreferencesPath())
		if err != nil {
			return err
		}

		opts := exportOptions{
			IDs:     args,
			Params:  panelParams(cfg),
			Dir:     cfg.ExportDir(),
			Palette: engine.PaletteFor(prefs.DarkMode() || exportDark),
		}
		if len(opts.IDs) == 0 {
			opts.IDs = prefs.VisibleCharts()
		}
		if exportDir != "" {
			opts.Dir = exportDir
		}
		format := cfg.ExportFormat()
		if exportFormat != "" {
			format = exportFormat
		}
		if opts.Format, err = gochart.ParseFormat(format); err != nil {
			return err
		}
		opts.Width, opts.Height = cfg.ExportSize()
		if exportWidth > 0 {
			opts.Width = exportWidth
		}
		if exportHeight > 0 {
			opts.Height = exportHeight
		}

		agg := metrics.NewAggregator()
		_, err = exportCharts(cmd.Context(), cmd.OutOrStdout(), gateway.New(cfg).WithMetrics(agg), st, opts)
		if exportStats {
			fmt.Fprintln(cmd.OutOrStdout())
			agg.Report(cmd.OutOrStdout())
		}
		return err
	},
}

func init() {
	exportSelection.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "png or svg (default from config)")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default from config)")
	exportCmd.Flags().IntVar(&exportWidth, "width", 0, "image width in pixels")
	exportCmd.Flags().IntVar(&exportHeight, "height", 0, "image height in pixels")
	exportCmd.Flags().BoolVar(&exportDark, "dark", false, "use the dark palette")
	exportCmd.Flags().BoolVar(&exportStats, "stats", false, "print request statistics per endpoint")
	rootCmd.AddCommand(exportCmd)
}

type exportOptions struct {
	IDs     []string
	Params  panel.Params
	Format  gochart.Format
	Dir     string
	Width   int
	Height  int
	Palette engine.Palette
}

// exportCharts loads every requested panel and writes <dir>/<id>.<ext> for
// each loaded one. Empty panels are reported and skipped. It returns the
// written paths and an error when any panel failed.
func exportCharts(ctx context.Context, out io.Writer, g gateway.Fetcher, st *filters.State, opts exportOptions) ([]string, error) {
	binding := gochart.New(opts.Format, opts.Palette)
	panels, err := loadPanels(ctx, g, st, binding, opts.Palette, opts.Params, opts.IDs, opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}
	defer stopAll(panels)

	okMark := color.New(color.FgGreen).SprintFunc()
	skipMark := color.New(color.FgYellow).SprintFunc()
	failMark := color.New(color.FgRed).SprintFunc()

	var written []string
	failed := 0
	for _, p := range panels {
		switch p.Status() {
		case panel.Loaded:
			chart, ok := p.Handle().(*gochart.Chart)
			if !ok || chart.Bytes() == nil {
				fmt.Fprintf(out, "%s %s: nothing to draw\n", skipMark("-"), p.Title())
				continue
			}
			path := filepath.Join(opts.Dir, p.ID()+chart.Ext())
			if err := util.WriteFile(path, chart.Bytes()); err != nil {
				return written, fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
			fmt.Fprintf(out, "%s %s → %s (%s)\n", okMark("✓"), p.Title(), path, humanize.Bytes(uint64(len(chart.Bytes()))))
		case panel.Empty:
			fmt.Fprintf(out, "%s %s: %s\n", skipMark("-"), p.Title(), p.Message())
		default:
			failed++
			fmt.Fprintf(out, "%s %s: %s\n", failMark("✗"), p.Title(), p.Message())
		}
	}
	logging.LogEvent("export: wrote %d of %d charts to %s", len(written), len(panels), opts.Dir)
	if failed > 0 {
		return written, fmt.Errorf("%d of %d charts failed", failed, len(panels))
	}
	return written, nil
}
