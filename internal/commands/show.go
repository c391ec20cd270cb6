// internal/commands/show.go
package defectdash

import (
	"github.com/spf13/cobra"
)

// showCmd represents the 'show' command group for displaying resources.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying resources",
	Long:  `The 'show' command groups subcommands that display configuration, panel data or a single product.`,
}

func init() {
	rootCmd.AddCommand(showCmd)
}
