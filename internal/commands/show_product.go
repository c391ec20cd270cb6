package defectdash

import (
	"fmt"
	"strconv"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/defectdash/internal/panel"
)

var showProductRaw bool

// showProductCmd prints the defect record of one product.
var showProductCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show the defects and machine state recorded for a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		msg := panel.LookupProduct(newGateway(GetConfig()), id)().(panel.ProductMsg)
		if msg.Err != nil {
			return fmt.Errorf("product #%d: %w", id, msg.Err)
		}
		if showProductRaw {
			pp.Fprintln(cmd.OutOrStdout(), msg.Detail)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), panel.DescribeProduct(msg.Detail))
		return nil
	},
}

func init() {
	showProductCmd.Flags().BoolVar(&showProductRaw, "raw", false, "dump the decoded response")
	showCmd.AddCommand(showProductCmd)
}
