// Package filters holds the dashboard-wide machine and date range selection.
package filters

import (
	"fmt"
	"time"

	"github.com/mwiater/defectdash/internal/logging"
)

// DateLayout is the calendar date format used for every date bound.
const DateLayout = "2006-01-02"

// Preset names a date span relative to today.
type Preset string

const (
	PresetToday Preset = "today"
	PresetWeek  Preset = "week"
	PresetMonth Preset = "month"
)

// Days returns how far back the preset reaches.
func (p Preset) Days() (int, error) {
	switch p {
	case PresetToday:
		return 0, nil
	case PresetWeek:
		return 7, nil
	case PresetMonth:
		return 30, nil
	default:
		return 0, fmt.Errorf("unknown preset %q", string(p))
	}
}

// Selection is the active filter. Empty fields mean "unset".
type Selection struct {
	MachineID string
	StartDate string
	EndDate   string
}

// IsZero reports whether no filter is active.
func (s Selection) IsZero() bool { return s == Selection{} }

type subscriber struct {
	id int
	fn func(Selection)
}

// State is an observable cell for the current Selection. It is not safe for
// concurrent use; every call happens on the UI loop.
type State struct {
	sel    Selection
	subs   []subscriber
	nextID int
	now    func() time.Time
}

// New returns an empty State using the wall clock for presets.
func New() *State {
	return &State{now: time.Now}
}

// NewWithClock returns an empty State that computes presets from now.
func NewWithClock(now func() time.Time) *State {
	return &State{now: now}
}

// Snapshot returns the current selection.
func (s *State) Snapshot() Selection { return s.sel }

// Subscribe registers fn to be called after every mutation, in registration
// order. The returned function removes the subscription and is safe to call
// more than once.
func (s *State) Subscribe(fn func(Selection)) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (s *State) Subscribers() int { return len(s.subs) }

// SetMachine selects a machine; an empty id clears the machine filter.
func (s *State) SetMachine(id string) {
	s.sel.MachineID = id
	s.notify()
}

// SetDateRange sets both bounds. Either may be empty. Reversed bounds are
// swapped so the range always reads start <= end.
func (s *State) SetDateRange(start, end string) {
	if start != "" && end != "" && start > end {
		logging.LogEvent("filters: swapping reversed date range %s..%s", start, end)
		start, end = end, start
	}
	s.sel.StartDate = start
	s.sel.EndDate = end
	s.notify()
}

// Set replaces the whole selection in one notification.
func (s *State) Set(sel Selection) {
	if sel.StartDate != "" && sel.EndDate != "" && sel.StartDate > sel.EndDate {
		sel.StartDate, sel.EndDate = sel.EndDate, sel.StartDate
	}
	s.sel = sel
	s.notify()
}

// ClearFilters unsets machine and both dates.
func (s *State) ClearFilters() {
	s.sel = Selection{}
	s.notify()
}

// ApplyPreset sets the date range to the preset span ending today. The
// machine filter is kept.
func (s *State) ApplyPreset(p Preset) error {
	days, err := p.Days()
	if err != nil {
		return err
	}
	now := s.now()
	s.sel.EndDate = now.Format(DateLayout)
	s.sel.StartDate = now.AddDate(0, 0, -days).Format(DateLayout)
	s.notify()
	return nil
}

func (s *State) notify() {
	sel := s.sel
	subs := append([]subscriber(nil), s.subs...)
	for _, sub := range subs {
		sub.fn(sel)
	}
}

// ValidDate reports whether value is empty or a YYYY-MM-DD date.
func ValidDate(value string) bool {
	if value == "" {
		return true
	}
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

// FormatDate renders a calendar date as "Jun 15, 2025". Unparseable input is
// returned unchanged.
func FormatDate(value string) string {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return value
	}
	return t.Format("Jan 2, 2006")
}
