// Package preferences persists display preferences: theme, layout and which
// charts are shown.
package preferences

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/mwiater/defectdash/internal/logging"
	"github.com/spf13/viper"
)

// Layout controls how panels are arranged.
type Layout string

const (
	LayoutGrid    Layout = "grid"
	LayoutCompact Layout = "compact"
	LayoutList    Layout = "list"
)

var layouts = []Layout{LayoutGrid, LayoutCompact, LayoutList}

// Chart ids, in display order.
const (
	ChartTrend              = "trend"
	ChartTopDefects         = "topDefects"
	ChartHeatmap            = "heatmap"
	ChartMachineComparison  = "machineComparison"
	ChartRejectDistribution = "rejectDistribution"
	ChartCycleTime          = "cycleTime"
)

// DefaultVisible lists every chart shown on a fresh install.
var DefaultVisible = []string{
	ChartTrend,
	ChartTopDefects,
	ChartHeatmap,
	ChartMachineComparison,
	ChartRejectDistribution,
	ChartCycleTime,
}

const (
	keyDarkMode      = "darkMode"
	keyLayoutMode    = "layoutMode"
	keyVisibleCharts = "visibleCharts"
)

// Store holds the preferences and writes them to disk after every change.
// An empty path keeps everything in memory.
type Store struct {
	v       *viper.Viper
	path    string
	dark    bool
	layout  Layout
	visible []string
}

// Open loads preferences from path, falling back to defaults when the file
// does not exist.
func Open(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault(keyDarkMode, false)
	v.SetDefault(keyLayoutMode, string(LayoutGrid))
	v.SetDefault(keyVisibleCharts, DefaultVisible)

	s := &Store{v: v, path: path}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read preferences %q: %w", path, err)
			}
		}
	}

	s.dark = v.GetBool(keyDarkMode)
	s.layout = parseLayout(v.GetString(keyLayoutMode))
	s.visible = v.GetStringSlice(keyVisibleCharts)
	return s, nil
}

func parseLayout(value string) Layout {
	l := Layout(value)
	if slices.Contains(layouts, l) {
		return l
	}
	return LayoutGrid
}

// DarkMode reports whether the dark palette is active.
func (s *Store) DarkMode() bool { return s.dark }

// Layout returns the current layout mode.
func (s *Store) Layout() Layout { return s.layout }

// VisibleCharts returns the visible chart ids in display order.
func (s *Store) VisibleCharts() []string {
	out := make([]string, 0, len(s.visible))
	for _, id := range DefaultVisible {
		if slices.Contains(s.visible, id) {
			out = append(out, id)
		}
	}
	return out
}

// ToggleDarkMode flips the theme.
func (s *Store) ToggleDarkMode() error {
	s.dark = !s.dark
	return s.save()
}

// SetLayout changes the layout mode.
func (s *Store) SetLayout(l Layout) error {
	if !slices.Contains(layouts, l) {
		return fmt.Errorf("unknown layout %q", string(l))
	}
	s.layout = l
	return s.save()
}

// CycleLayout advances grid -> compact -> list -> grid.
func (s *Store) CycleLayout() error {
	i := slices.Index(layouts, s.layout)
	return s.SetLayout(layouts[(i+1)%len(layouts)])
}

// ToggleChart shows a hidden chart or hides a visible one.
func (s *Store) ToggleChart(id string) error {
	if !slices.Contains(DefaultVisible, id) {
		return fmt.Errorf("unknown chart %q", id)
	}
	if i := slices.Index(s.visible, id); i >= 0 {
		s.visible = slices.Delete(slices.Clone(s.visible), i, i+1)
	} else {
		s.visible = append(slices.Clone(s.visible), id)
	}
	return s.save()
}

// IsChartVisible reports whether id is shown.
func (s *Store) IsChartVisible(id string) bool {
	return slices.Contains(s.visible, id)
}

// Reset restores every default.
func (s *Store) Reset() error {
	s.dark = false
	s.layout = LayoutGrid
	s.visible = slices.Clone(DefaultVisible)
	return s.save()
}

func (s *Store) save() error {
	s.v.Set(keyDarkMode, s.dark)
	s.v.Set(keyLayoutMode, string(s.layout))
	s.v.Set(keyVisibleCharts, s.visible)
	if s.path == "" {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preferences dir: %w", err)
		}
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write preferences %q: %w", s.path, err)
	}
	logging.LogDebug("preferences saved: dark=%v layout=%s visible=%v", s.dark, s.layout, s.visible)
	return nil
}
