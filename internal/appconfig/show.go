package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config, fallback Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	if cfg == nil {
		cfg = &fallback
	}

	w, h := cfg.ExportSize()
	fmt.Fprintf(out, "  API Base URL:    %s\n", cfg.BaseURL())
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Timeout:         %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Preferences:     %s\n", cfg.PreferencesPath())
	fmt.Fprintf(out, "  Trend Interval:  %s\n", cfg.Interval())
	fmt.Fprintf(out, "  Top Defects:     %d\n", cfg.TopN())
	if cfg.ScatterLimit > 0 {
		fmt.Fprintf(out, "  Scatter Limit:   %d\n", cfg.ScatterLimit)
	} else {
		fmt.Fprintln(out, "  Scatter Limit:   server default")
	}
	fmt.Fprintf(out, "  Export:          %s (%s, %dx%d)\n", cfg.ExportDir(), cfg.ExportFormat(), w, h)
}
