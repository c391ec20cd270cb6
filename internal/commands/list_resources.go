package defectdash

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/panel"
	"github.com/mwiater/defectdash/internal/preferences"
)

// machinesCmd implements 'list machines'.
var machinesCmd = &cobra.Command{
	Use:   "machines",
	Short: "List the machine ids known to the analytics API",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newGateway(GetConfig()).Machines(cmd.Context())
		if err != nil {
			return err
		}
		printMachines(cmd.OutOrStdout(), list)
		return nil
	},
}

// panelsCmd implements 'list panels'.
var panelsCmd = &cobra.Command{
	Use:   "panels",
	Short: "List chart panels and whether each is shown on the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := preferences.Open(GetConfig().PreferencesPath())
		if err != nil {
			return err
		}
		printPanels(cmd.OutOrStdout(), prefs)
		return nil
	},
}

func init() {
	listCmd.AddCommand(machinesCmd)
	listCmd.AddCommand(panelsCmd)
}

func printMachines(out io.Writer, list gateway.MachineList) {
	if len(list.Machines) == 0 {
		fmt.Fprintln(out, "No machines found.")
		return
	}
	for _, id := range list.Machines {
		fmt.Fprintf(out, "  %-24s %s\n", id, panel.HumanizeID(id))
	}
	fmt.Fprintf(out, "\n%d machines\n", len(list.Machines))
}

func printPanels(out io.Writer, prefs *preferences.Store) {
	shown := color.New(color.FgGreen).SprintFunc()
	hidden := color.New(color.Faint).SprintFunc()
	for i, id := range panel.IDs() {
		mark := hidden("hidden")
		if prefs.IsChartVisible(id) {
			mark = shown("shown")
		}
		fmt.Fprintf(out, "  %d  %-20s %-34s %s\n", i+1, id, panel.TitleFor(id), mark)
	}
	fmt.Fprintf(out, "\nlayout: %s, dark mode: %v\n", prefs.Layout(), prefs.DarkMode())
}
