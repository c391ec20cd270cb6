// internal/commands/list.go
package defectdash

import "github.com/spf13/cobra"

// listCmd represents the 'list' command group.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Group commands for listing resources",
	Long:  `The 'list' command groups subcommands that list machines, panels or commands. It performs no action on its own.`,
}

func init() {
	rootCmd.AddCommand(listCmd)
}
