// Package dashboard is the interactive terminal dashboard. It composes one
// panel per visible chart under a shared filter state, hosts the filters
// sidebar, and owns the zoom modal.
package dashboard

import (
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/engine/term"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
	"github.com/mwiater/defectdash/internal/logging"
	"github.com/mwiater/defectdash/internal/panel"
	"github.com/mwiater/defectdash/internal/preferences"
)

// Modal is the zoom overlay. ChartID is set exactly when Active is true.
type Modal struct {
	Active  bool
	ChartID string
}

// Options wires the dashboard to its collaborators.
type Options struct {
	Gateway     gateway.Fetcher
	Filters     *filters.State
	Preferences *preferences.Store
	Params      panel.Params
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	gateway gateway.Fetcher
	filters *filters.State
	prefs   *preferences.Store
	params  panel.Params
	binding *term.Binding
	deps    panel.Deps

	panels map[string]panel.Panel
	order  []string
	focus  int
	modal  Modal

	sidebar sidebar
	spinner spinner.Model
	help    help.Model
	body    viewport.Model
	keys    keyMap
	styles  styles

	product *panel.ProductMsg
	status  string
	pending []tea.Cmd

	width, height int
	cardW, cardH  int
	cols          int
}

// New builds the dashboard and mounts every visible panel. The first
// fetches are returned from Init.
func New(opts Options) *Model {
	pal := engine.PaletteFor(opts.Preferences.DarkMode())
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		gateway: opts.Gateway,
		filters: opts.Filters,
		prefs:   opts.Preferences,
		params:  opts.Params,
		binding: term.New(pal),
		panels:  make(map[string]panel.Panel),
		sidebar: newSidebar(opts.Gateway),
		spinner: s,
		help:    help.New(),
		body:    viewport.New(0, 0),
		keys:    defaultKeyMap(),
		styles:  newStyles(pal),
	}
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Series[0]))
	m.deps = panel.Deps{
		Gateway: opts.Gateway,
		Filters: opts.Filters,
		Binding: m.binding,
		Run:     m.run,
		Palette: pal,
	}
	m.sidebar.SetSelection(opts.Filters.Snapshot())
	m.syncPanels()
	return m
}

func (m *Model) run(cmd tea.Cmd) {
	m.pending = append(m.pending, cmd)
}

// drain hands queued fetches to bubbletea and keeps the spinner going
// while they run.
func (m *Model) drain() []tea.Cmd {
	if len(m.pending) == 0 {
		return nil
	}
	cmds := append(m.pending, m.spinner.Tick)
	m.pending = nil
	return cmds
}

// Init loads the machine list and starts the initial fetches.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(append(m.drain(), m.sidebar.Init())...)
}

// Modal returns the zoom state.
func (m *Model) Modal() Modal { return m.modal }

// Panel returns the mounted panel for id.
func (m *Model) Panel(id string) (panel.Panel, bool) {
	p, ok := m.panels[id]
	return p, ok
}

// Mounted returns the ids of mounted panels in display order.
func (m *Model) Mounted() []string { return append([]string(nil), m.order...) }

// OpenModal zooms chart id. The chart is moved into the modal and resized to
// the larger container.
func (m *Model) OpenModal(id string) {
	if _, ok := m.panels[id]; !ok {
		return
	}
	prev := m.modal.ChartID
	m.modal = Modal{Active: true, ChartID: id}
	m.product = nil
	if prev != "" && prev != id {
		m.resizePanel(prev)
	}
	m.resizePanel(id)
}

// CloseModal leaves zoom and returns the chart to its card.
func (m *Model) CloseModal() {
	id := m.modal.ChartID
	m.modal = Modal{}
	m.product = nil
	if id != "" {
		m.resizePanel(id)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()

	case panel.ResultMsg:
		if p, ok := m.panels[msg.PanelID]; ok {
			p.Apply(msg)
		}

	case panel.ProductMsg:
		m.product = &msg

	case machinesMsg:
		cmds = append(cmds, m.sidebar.Update(msg))

	case ChangeMsg:
		if msg.Reselect {
			m.reloadAll()
		} else {
			m.filters.Set(msg.Selection)
		}
		m.sidebar.SetSelection(m.filters.Snapshot())

	case ClearMsg:
		before := m.filters.Snapshot()
		m.filters.ClearFilters()
		m.reloadIfUnchanged(before)
		m.sidebar.SetSelection(m.filters.Snapshot())

	case PresetMsg:
		before := m.filters.Snapshot()
		if err := m.filters.ApplyPreset(msg.Preset); err != nil {
			m.status = err.Error()
		} else {
			m.reloadIfUnchanged(before)
		}
		m.sidebar.SetSelection(m.filters.Snapshot())

	case CollapseMsg:
		m.layout()

	case spinner.TickMsg:
		if m.anyLoading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	}

	cmds = append(cmds, m.drain()...)
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.sidebar.editing {
		if msg.String() == "ctrl+c" {
			return tea.Quit
		}
		return m.sidebar.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()

	case key.Matches(msg, m.keys.Close):
		if m.modal.Active {
			m.CloseModal()
		}

	case key.Matches(msg, m.keys.Zoom):
		if m.modal.Active {
			m.CloseModal()
		} else if id := m.focusedID(); id != "" {
			m.OpenModal(id)
		}

	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)

	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)

	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.Product):
		return m.lookupProduct()

	case key.Matches(msg, m.keys.Collapse):
		return m.sidebar.ToggleCollapse()

	case key.Matches(msg, m.keys.MachineNext):
		return m.sidebar.StepMachine(1)

	case key.Matches(msg, m.keys.MachinePrev):
		return m.sidebar.StepMachine(-1)

	case key.Matches(msg, m.keys.Today):
		return m.sidebar.Preset(filters.PresetToday)

	case key.Matches(msg, m.keys.Week):
		return m.sidebar.Preset(filters.PresetWeek)

	case key.Matches(msg, m.keys.Month):
		return m.sidebar.Preset(filters.PresetMonth)

	case key.Matches(msg, m.keys.Clear):
		return m.sidebar.Clear()

	case key.Matches(msg, m.keys.EditDates):
		wasCollapsed := m.sidebar.collapsed
		cmd := m.sidebar.StartEditing()
		if wasCollapsed {
			m.layout()
		}
		return cmd

	case key.Matches(msg, m.keys.Interval):
		if p, ok := m.panels[preferences.ChartTrend].(*panel.Trend); ok {
			p.CycleInterval()
			m.status = "trend interval: " + p.Interval()
		}

	case key.Matches(msg, m.keys.Limit):
		if p, ok := m.panels[preferences.ChartTopDefects].(*panel.TopDefects); ok {
			p.CycleLimit()
			m.status = "top defects: " + strconv.Itoa(p.Limit())
		}

	case key.Matches(msg, m.keys.Reload):
		m.reloadAll()

	case key.Matches(msg, m.keys.Dark):
		if err := m.prefs.ToggleDarkMode(); err != nil {
			m.status = err.Error()
		}
		m.applyTheme()

	case key.Matches(msg, m.keys.Layout):
		if err := m.prefs.CycleLayout(); err != nil {
			m.status = err.Error()
		}
		m.layout()

	case key.Matches(msg, m.keys.Toggle):
		ids := panel.IDs()
		if i, err := strconv.Atoi(msg.String()); err == nil && i >= 1 && i <= len(ids) {
			if err := m.prefs.ToggleChart(ids[i-1]); err != nil {
				m.status = err.Error()
			}
			m.syncPanels()
		}
	}
	return nil
}

func (m *Model) focusedID() string {
	if m.focus < 0 || m.focus >= len(m.order) {
		return ""
	}
	return m.order[m.focus]
}

func (m *Model) moveFocus(delta int) {
	if m.modal.Active || len(m.order) == 0 {
		return
	}
	n := len(m.order)
	m.focus = ((m.focus+delta)%n + n) % n
}

// moveCursor moves the hover position of the zoomed or focused chart.
func (m *Model) moveCursor(delta int) {
	id := m.focusedID()
	if m.modal.Active {
		id = m.modal.ChartID
	}
	p, ok := m.panels[id]
	if !ok {
		return
	}
	if c, ok := p.Handle().(*term.Chart); ok {
		c.MoveCursor(delta)
		m.product = nil
	}
}

func (m *Model) lookupProduct() tea.Cmd {
	if !m.modal.Active || m.modal.ChartID != preferences.ChartCycleTime {
		return nil
	}
	p, ok := m.panels[preferences.ChartCycleTime].(*panel.CycleTime)
	if !ok {
		return nil
	}
	c, ok := p.Handle().(*term.Chart)
	if !ok {
		return nil
	}
	id, ok := p.ProductAt(c.Cursor())
	if !ok {
		return nil
	}
	return panel.LookupProduct(m.gateway, id)
}

func (m *Model) reloadAll() {
	for _, id := range m.order {
		m.panels[id].Reload()
	}
}

// reloadIfUnchanged treats picking the active selection again as a refresh.
func (m *Model) reloadIfUnchanged(before filters.Selection) {
	if m.filters.Snapshot() == before {
		m.reloadAll()
	}
}

func (m *Model) anyLoading() bool {
	for _, p := range m.panels {
		if p.Status() == panel.Loading {
			return true
		}
	}
	return false
}

// syncPanels mounts panels that became visible and stops hidden ones.
func (m *Model) syncPanels() {
	visible := m.prefs.VisibleCharts()
	want := make(map[string]bool, len(visible))
	for _, id := range visible {
		want[id] = true
	}
	for id, p := range m.panels {
		if want[id] {
			continue
		}
		if m.modal.ChartID == id {
			m.CloseModal()
		}
		p.Stop()
		delete(m.panels, id)
		logging.LogDebug("dashboard: unmounted %s", id)
	}

	m.order = m.order[:0]
	for _, id := range visible {
		if _, ok := m.panels[id]; !ok {
			p, err := panel.New(id, m.deps, m.params)
			if err != nil {
				logging.LogEvent("dashboard: %v", err)
				continue
			}
			m.panels[id] = p
			p.Start()
			logging.LogDebug("dashboard: mounted %s", id)
		}
		m.order = append(m.order, id)
	}
	if m.focus >= len(m.order) {
		m.focus = max(len(m.order)-1, 0)
	}
	m.layout()
}

func (m *Model) applyTheme() {
	pal := engine.PaletteFor(m.prefs.DarkMode())
	m.binding.SetPalette(pal)
	m.deps.Palette = pal
	m.styles = newStyles(pal)
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Series[0]))
	for _, id := range m.order {
		m.panels[id].SetPalette(pal)
	}
}
