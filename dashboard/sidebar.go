package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/panel"
	"github.com/mwiater/defectdash/internal/util"
)

// ChangeMsg is emitted by the sidebar when the user picks a selection.
// Reselect is set when the pick equals the active selection; the dashboard
// treats that as a request to refresh.
type ChangeMsg struct {
	Selection filters.Selection
	Reselect  bool
}

// ClearMsg asks for every filter to be reset.
type ClearMsg struct{}

// PresetMsg asks for a preset date span.
type PresetMsg struct {
	Preset filters.Preset
}

// CollapseMsg reports that the sidebar was collapsed or expanded.
type CollapseMsg struct {
	Collapsed bool
}

// machinesMsg delivers the machine list loaded at mount.
type machinesMsg struct {
	machines []string
	err      error
}

const (
	sidebarWidth   = 30
	collapsedWidth = 3
)

// sidebar is the filter panel. It never writes the filter state itself; it
// emits messages the dashboard applies.
type sidebar struct {
	gateway   gateway.Fetcher
	machines  []string
	index     int
	loading   bool
	err       error
	collapsed bool

	editing bool
	field   int
	inputs  [2]textinput.Model
	hint    string

	sel    filters.Selection
	height int
}

func newSidebar(g gateway.Fetcher) sidebar {
	s := sidebar{gateway: g, loading: true}
	for i, placeholder := range []string{"start YYYY-MM-DD", "end YYYY-MM-DD"} {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = len(filters.DateLayout)
		ti.Width = sidebarWidth - 8
		ti.Prompt = ""
		s.inputs[i] = ti
	}
	return s
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// loadMachinesCmd fetches the machine list for the selector.
func loadMachinesCmd(g gateway.Fetcher) tea.Cmd {
	return func() tea.Msg {
		list, err := g.Machines(context.Background())
		return machinesMsg{machines: list.Machines, err: err}
	}
}

func (s *sidebar) Init() tea.Cmd {
	return loadMachinesCmd(s.gateway)
}

// Width is the number of columns the sidebar occupies.
func (s *sidebar) Width() int {
	if s.collapsed {
		return collapsedWidth
	}
	return sidebarWidth
}

// SetSelection syncs the sidebar with the active filter.
func (s *sidebar) SetSelection(sel filters.Selection) {
	s.sel = sel
	s.index = 0
	for i, id := range s.machines {
		if id == sel.MachineID {
			s.index = i + 1
		}
	}
}

// Update handles messages routed to the sidebar: the machine list and, while
// editing dates, key presses.
func (s *sidebar) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case machinesMsg:
		s.loading = false
		s.err = msg.err
		if msg.err == nil {
			s.machines = msg.machines
			s.SetSelection(s.sel)
		}
		return nil
	case tea.KeyMsg:
		if !s.editing {
			return nil
		}
		return s.updateEditing(msg)
	}
	return nil
}

func (s *sidebar) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.stopEditing()
		return nil
	case "tab", "shift+tab", "up", "down":
		s.inputs[s.field].Blur()
		s.field = 1 - s.field
		return s.inputs[s.field].Focus()
	case "enter":
		start := strings.TrimSpace(s.inputs[0].Value())
		end := strings.TrimSpace(s.inputs[1].Value())
		if !filters.ValidDate(start) || !filters.ValidDate(end) {
			s.hint = "dates must be YYYY-MM-DD"
			return nil
		}
		s.stopEditing()
		next := s.sel
		next.StartDate, next.EndDate = start, end
		return emit(ChangeMsg{Selection: next, Reselect: next == s.sel})
	}
	var cmd tea.Cmd
	s.inputs[s.field], cmd = s.inputs[s.field].Update(msg)
	return cmd
}

// StartEditing focuses the start date input, prefilled with the active range.
func (s *sidebar) StartEditing() tea.Cmd {
	if s.collapsed {
		s.collapsed = false
	}
	s.editing = true
	s.hint = ""
	s.field = 0
	s.inputs[0].SetValue(s.sel.StartDate)
	s.inputs[1].SetValue(s.sel.EndDate)
	s.inputs[1].Blur()
	return s.inputs[0].Focus()
}

func (s *sidebar) stopEditing() {
	s.editing = false
	s.hint = ""
	s.inputs[0].Blur()
	s.inputs[1].Blur()
}

// StepMachine moves the machine selector by delta, wrapping through
// "All machines".
func (s *sidebar) StepMachine(delta int) tea.Cmd {
	n := len(s.machines) + 1
	s.index = ((s.index+delta)%n + n) % n
	next := s.sel
	next.MachineID = ""
	if s.index > 0 {
		next.MachineID = s.machines[s.index-1]
	}
	return emit(ChangeMsg{Selection: next, Reselect: next == s.sel})
}

// Preset asks for a preset span.
func (s *sidebar) Preset(p filters.Preset) tea.Cmd {
	return emit(PresetMsg{Preset: p})
}

// Clear asks for all filters to be reset.
func (s *sidebar) Clear() tea.Cmd {
	return emit(ClearMsg{})
}

// ToggleCollapse flips between the full panel and a narrow strip.
func (s *sidebar) ToggleCollapse() tea.Cmd {
	s.collapsed = !s.collapsed
	if s.collapsed {
		s.stopEditing()
	}
	return emit(CollapseMsg{Collapsed: s.collapsed})
}

func (s *sidebar) machineLabel() string {
	switch {
	case s.loading:
		return "loading…"
	case s.err != nil:
		return "unavailable"
	case s.index == 0 || s.index > len(s.machines):
		return "All machines"
	default:
		return panel.HumanizeID(s.machines[s.index-1])
	}
}

func dateLabel(value string) string {
	if value == "" {
		return "any"
	}
	return filters.FormatDate(value)
}

func (s *sidebar) View(st styles) string {
	height := max(s.height, 1)
	if s.collapsed {
		return st.sidebar.Padding(0).Width(collapsedWidth - 1).Height(height).Render("»")
	}
	inner := sidebarWidth - 3
	var b strings.Builder
	b.WriteString(st.title.Render("Filters"))
	b.WriteString("\n\n")
	b.WriteString(st.label.Render("Machine"))
	b.WriteString("\n")
	b.WriteString(util.TruncateRunes(fmt.Sprintf("‹ %s ›", s.machineLabel()), inner))
	b.WriteString("\n\n")
	b.WriteString(st.label.Render("Date Range"))
	b.WriteString("\n")
	if s.editing {
		b.WriteString("From: " + s.inputs[0].View() + "\n")
		b.WriteString("To:   " + s.inputs[1].View() + "\n")
		if s.hint != "" {
			b.WriteString(st.danger.Render(s.hint) + "\n")
		}
		b.WriteString(st.muted.Render("enter apply · esc cancel"))
	} else {
		b.WriteString("From: " + dateLabel(s.sel.StartDate) + "\n")
		b.WriteString("To:   " + dateLabel(s.sel.EndDate) + "\n")
	}
	b.WriteString("\n\n")
	b.WriteString(st.label.Render("Presets"))
	b.WriteString("\n")
	b.WriteString(st.muted.Render("t today · w week · o month"))
	b.WriteString("\n")
	b.WriteString(st.muted.Render("e edit dates · c clear"))
	if s.err != nil {
		b.WriteString("\n\n")
		b.WriteString(st.danger.Render(util.WrapToWidth(s.err.Error(), inner)))
	}
	return st.sidebar.Width(sidebarWidth - 1).Height(height).Render(b.String())
}

// styles groups the lipgloss styles derived from the active palette.
type styles struct {
	title, label, muted, danger, warning, success lipgloss.Style
	sidebar, card, focused, modal, status         lipgloss.Style
}
