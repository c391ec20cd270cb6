package defectdash

import (
	"github.com/mwiater/defectdash/internal/appconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON config is loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		fallback := appconfig.Config{
			APIBaseURL:      viper.GetString("apiBaseURL"),
			Debug:           viper.GetBool("debug"),
			TimeoutSeconds:  viper.GetInt("timeout"),
			LogFile:         viper.GetString("logFile"),
			PreferencesFile: viper.GetString("preferencesFile"),
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), currentConfig, fallback)
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
