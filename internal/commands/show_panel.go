package defectdash

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/engine/term"
	"github.com/mwiater/defectdash/internal/panel"
)

const (
	showPanelWidth  = 80
	showPanelHeight = 16
)

var (
	showPanelSelection selectionFlags
	showPanelRaw       bool
)

// showPanelCmd renders one panel in the terminal without the dashboard.
var showPanelCmd = &cobra.Command{
	Use:   "panel <id>",
	Short: "Fetch one panel and print its chart and summary",
	Long: `Fetch one panel under the given filters and print its chart and summary
figures. Use 'list panels' for the ids. --raw dumps the chart options.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		st, err := showPanelSelection.state()
		if err != nil {
			return err
		}
		pal := engine.LightPalette
		panels, err := loadPanels(cmd.Context(), newGateway(cfg), st, term.New(pal), pal, panelParams(cfg), args, showPanelWidth, showPanelHeight)
		if err != nil {
			return err
		}
		defer stopAll(panels)

		p := panels[0]
		printPanel(cmd.OutOrStdout(), p, showPanelRaw)
		if p.Status() == panel.Failed {
			return errors.New(p.Message())
		}
		return nil
	},
}

func init() {
	showPanelSelection.register(showPanelCmd)
	showPanelCmd.Flags().BoolVar(&showPanelRaw, "raw", false, "dump the chart options")
	showCmd.AddCommand(showPanelCmd)
}

func severityPrinter(s engine.Severity) func(a ...any) string {
	switch s {
	case engine.SeveritySuccess:
		return color.New(color.FgGreen).SprintFunc()
	case engine.SeverityWarning:
		return color.New(color.FgYellow).SprintFunc()
	case engine.SeverityDanger:
		return color.New(color.FgRed).SprintFunc()
	}
	return fmt.Sprint
}

func printPanel(out io.Writer, p panel.Panel, raw bool) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s [%s]\n\n", bold(p.Title()), p.Status())

	if c, ok := p.Handle().(*term.Chart); ok && p.Status() == panel.Loaded {
		fmt.Fprintln(out, c.View())
	} else {
		fmt.Fprintln(out, p.Message())
	}

	if stats := p.Summary(); len(stats) > 0 {
		fmt.Fprintln(out)
		for _, s := range stats {
			fmt.Fprintf(out, "  %-18s %s\n", s.Label+":", severityPrinter(s.Severity)(s.Value))
		}
	}

	if raw {
		if opts, ok := p.Options(); ok {
			fmt.Fprintln(out)
			pp.Fprintln(out, opts)
		}
	}
}
