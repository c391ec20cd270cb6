// internal/commands/list_commands.go
package defectdash

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// commandInfo is one row of the command tree.
type commandInfo struct {
	Path        string
	Description string
}

// commandsCmd implements 'list commands', which prints every command path
// next to its short description.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands in two columns",
	Run: func(cmd *cobra.Command, args []string) {
		var rows []commandInfo
		for _, row := range collectCommands(rootCmd, "", "") {
			if strings.Contains(row.Path, "completion") || strings.Contains(row.Path, "help") {
				continue
			}
			rows = append(rows, row)
		}
		printCommands(cmd.OutOrStdout(), rows)
	},
}

func init() {
	listCmd.AddCommand(commandsCmd)
}

// collectCommands walks the command tree depth first.
func collectCommands(cmd *cobra.Command, parent, indent string) []commandInfo {
	path := cmd.Name()
	if parent != "" {
		path = parent + " " + cmd.Name()
	}
	rows := []commandInfo{{Path: indent + path, Description: cmd.Short}}
	for _, sub := range cmd.Commands() {
		rows = append(rows, collectCommands(sub, path, indent+"  ")...)
	}
	return rows
}

func printCommands(out io.Writer, rows []commandInfo) {
	width := 0
	for _, row := range rows {
		width = max(width, len(row.Path))
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintln(out, bold("Commands and Subcommands:"))
	for _, row := range rows {
		fmt.Fprintf(out, "  %s%s%s\n", row.Path, strings.Repeat(" ", width-len(row.Path)+2), row.Description)
	}
}
