// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// DefaultAPIBaseURL is where the analytics API is expected when nothing is configured.
	DefaultAPIBaseURL = "http://localhost:8000"
	// defaultRequestTimeout is the default timeout for HTTP requests.
	defaultRequestTimeout = 30 * time.Second
	// defaultPreferencesPath is where display preferences are persisted.
	defaultPreferencesPath = "config/preferences.json"
	defaultTrendInterval   = "day"
	defaultTopDefectsLimit = 10
	defaultExportDir       = "exports"
	defaultExportFormat    = "png"
	defaultExportWidth     = 960
	defaultExportHeight    = 540
)

// Config represents the top-level application configuration.
type Config struct {
	APIBaseURL      string `json:"apiBaseURL" mapstructure:"apiBaseURL"`
	Debug           bool   `json:"debug" mapstructure:"debug"`
	TimeoutSeconds  int    `json:"timeout,omitempty" mapstructure:"timeout"`
	LogFile         string `json:"logFile,omitempty" mapstructure:"logFile"`
	PreferencesFile string `json:"preferencesFile,omitempty" mapstructure:"preferencesFile"`
	TrendInterval   string `json:"trendInterval,omitempty" mapstructure:"trendInterval"`
	TopDefectsLimit int    `json:"topDefectsLimit,omitempty" mapstructure:"topDefectsLimit"`
	ScatterLimit    int    `json:"scatterLimit,omitempty" mapstructure:"scatterLimit"`
	Export          Export `json:"export" mapstructure:"export"`
	ConfigPath      string `json:"-" mapstructure:"-"`
}

// Export controls the headless image export.
type Export struct {
	Dir    string `json:"dir,omitempty" mapstructure:"dir"`
	Format string `json:"format,omitempty" mapstructure:"format"`
	Width  int    `json:"width,omitempty" mapstructure:"width"`
	Height int    `json:"height,omitempty" mapstructure:"height"`
}

// BaseURL returns the analytics API root without a trailing slash.
func (c Config) BaseURL() string {
	base := strings.TrimSpace(c.APIBaseURL)
	if base == "" {
		base = DefaultAPIBaseURL
	}
	return strings.TrimRight(base, "/")
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "defectdash.log"
}

// PreferencesPath returns the file display preferences are written to.
func (c Config) PreferencesPath() string {
	if path := strings.TrimSpace(c.PreferencesFile); path != "" {
		return path
	}
	return defaultPreferencesPath
}

// Interval returns the initial trend bucket size.
func (c Config) Interval() string {
	if c.TrendInterval == "" {
		return defaultTrendInterval
	}
	return c.TrendInterval
}

// TopN returns the initial number of defect types shown by the top defects panel.
func (c Config) TopN() int {
	if c.TopDefectsLimit <= 0 {
		return defaultTopDefectsLimit
	}
	return c.TopDefectsLimit
}

// ExportDir returns the output directory for exported charts.
func (c Config) ExportDir() string {
	if dir := strings.TrimSpace(c.Export.Dir); dir != "" {
		return dir
	}
	return defaultExportDir
}

// ExportFormat returns png or svg.
func (c Config) ExportFormat() string {
	if f := strings.ToLower(strings.TrimSpace(c.Export.Format)); f != "" {
		return f
	}
	return defaultExportFormat
}

// ExportSize returns the pixel dimensions of exported charts.
func (c Config) ExportSize() (int, int) {
	w, h := c.Export.Width, c.Export.Height
	if w <= 0 {
		w = defaultExportWidth
	}
	if h <= 0 {
		h = defaultExportHeight
	}
	return w, h
}

// Validate reports configuration values the dashboard cannot work with.
func (c Config) Validate() error {
	if _, err := url.ParseRequestURI(c.BaseURL()); err != nil {
		return fmt.Errorf("invalid apiBaseURL %q: %w", c.APIBaseURL, err)
	}
	switch c.Interval() {
	case "hour", "day", "week":
	default:
		return fmt.Errorf("invalid trendInterval %q: must be hour, day or week", c.TrendInterval)
	}
	if c.TopDefectsLimit > 20 {
		return fmt.Errorf("invalid topDefectsLimit %d: must be between 1 and 20", c.TopDefectsLimit)
	}
	if c.ScatterLimit < 0 {
		return fmt.Errorf("invalid scatterLimit %d", c.ScatterLimit)
	}
	switch c.ExportFormat() {
	case "png", "svg":
	default:
		return fmt.Errorf("invalid export format %q: must be png or svg", c.Export.Format)
	}
	return nil
}

// Load reads the application configuration from the specified path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	config.ConfigPath = path
	return config, nil
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}

	return config, nil
}
