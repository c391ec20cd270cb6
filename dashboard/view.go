package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/engine/term"
	"github.com/mwiater/defectdash/internal/panel"
	"github.com/mwiater/defectdash/internal/preferences"
	"github.com/mwiater/defectdash/internal/util"
)

const (
	headerHeight  = 1
	minCardWidth  = 36
	minCardHeight = 9
	detailHeight  = 10
)

func newStyles(p engine.Palette) styles {
	border := lipgloss.Color(p.Border)
	accent := lipgloss.Color(p.SeriesColor(0))
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Text)),
		label:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		danger:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Danger)),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Warning)),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Success)),
		sidebar: lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).BorderRight(true).BorderForeground(border),
		card:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		focused: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		modal:   lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(accent).Padding(0, 1),
		status:  lipgloss.NewStyle().Background(accent).Foreground(lipgloss.Color(p.Background)).Padding(0, 1),
	}
}

func (st styles) severity(s engine.Severity) lipgloss.Style {
	switch s {
	case engine.SeveritySuccess:
		return st.success
	case engine.SeverityWarning:
		return st.warning
	case engine.SeverityDanger:
		return st.danger
	}
	return lipgloss.NewStyle()
}

// bodySize is the area right of the sidebar and between header and help.
func (m *Model) bodySize() (int, int) {
	footer := lipgloss.Height(m.help.View(m.keys))
	return max(m.width-m.sidebar.Width(), 0), max(m.height-headerHeight-footer, 0)
}

func columns(l preferences.Layout, width int) int {
	cols := 2
	switch l {
	case preferences.LayoutCompact:
		cols = 3
	case preferences.LayoutList:
		cols = 1
	}
	for cols > 1 && width/cols < minCardWidth {
		cols--
	}
	return cols
}

// layout recomputes card geometry and resizes every chart to fit.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	bodyW, bodyH := m.bodySize()
	m.sidebar.height = bodyH
	m.body.Width, m.body.Height = bodyW, bodyH

	layout := m.prefs.Layout()
	m.cols = columns(layout, bodyW)
	rows := max((len(m.order)+m.cols-1)/m.cols, 1)
	visible := min(rows, 2)
	if layout == preferences.LayoutCompact {
		visible = min(rows, 3)
	}
	m.cardW = bodyW / m.cols
	m.cardH = max(bodyH/visible, minCardHeight)

	for _, id := range m.order {
		m.resizePanel(id)
	}
}

// chartSize is the chart area inside a card: border and padding take four
// columns, border plus title and summary rows take four lines.
func (m *Model) chartSize() (int, int) {
	return max(m.cardW-4, 0), max(m.cardH-4, 0)
}

func (m *Model) modalChartSize() (int, int) {
	bodyW, bodyH := m.bodySize()
	return max(bodyW-8, 0), max(bodyH-2-2-3-detailHeight, 3)
}

func (m *Model) resizePanel(id string) {
	p, ok := m.panels[id]
	if !ok {
		return
	}
	w, h := m.chartSize()
	if m.modal.Active && m.modal.ChartID == id {
		w, h = m.modalChartSize()
	}
	p.Resize(w, h)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading dashboard..."
	}
	body := m.gridView()
	if m.modal.Active {
		body = m.modalView()
	}
	main := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(m.styles), body)
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), main, m.help.View(m.keys))
}

func (m *Model) headerView() string {
	sel := m.filters.Snapshot()
	machine := "All machines"
	if sel.MachineID != "" {
		machine = panel.HumanizeID(sel.MachineID)
	}
	span := "all dates"
	if sel.StartDate != "" || sel.EndDate != "" {
		span = fmt.Sprintf("%s → %s", dateLabel(sel.StartDate), dateLabel(sel.EndDate))
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.status.Render("Defect Analytics"),
		" ",
		m.styles.title.Render(machine),
		m.styles.muted.Render(" · "+span+" · "+string(m.prefs.Layout())),
	)
	if m.status != "" {
		line += m.styles.muted.Render("  " + m.status)
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m *Model) gridView() string {
	if len(m.order) == 0 {
		bodyW, bodyH := m.bodySize()
		return lipgloss.Place(bodyW, bodyH, lipgloss.Center, lipgloss.Center,
			m.styles.muted.Render("All charts are hidden. Press 1-6 to show one."))
	}

	var rows []string
	for start := 0; start < len(m.order); start += m.cols {
		var cards []string
		for i := start; i < min(start+m.cols, len(m.order)); i++ {
			cards = append(cards, m.cardView(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	m.body.SetContent(lipgloss.JoinVertical(lipgloss.Left, rows...))

	top := (m.focus / m.cols) * m.cardH
	if top < m.body.YOffset || top+m.cardH > m.body.YOffset+m.body.Height {
		m.body.SetYOffset(top)
	}
	return m.body.View()
}

func (m *Model) cardView(i int) string {
	p := m.panels[m.order[i]]
	w, h := m.chartSize()
	style := m.styles.card
	if i == m.focus {
		style = m.styles.focused
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.title.Render(util.TruncateRunes(p.Title(), w)),
		m.chartArea(p, w, h),
		lipgloss.NewStyle().MaxWidth(w).Render(m.summaryLine(p.Summary())),
	)
	return style.Width(m.cardW - 2).Height(m.cardH - 2).MaxHeight(m.cardH).Render(content)
}

// chartArea shows the chart when loaded and a notification in its place
// otherwise.
func (m *Model) chartArea(p panel.Panel, w, h int) string {
	var note string
	switch p.Status() {
	case panel.Loaded:
		if c, ok := p.Handle().(*term.Chart); ok {
			return lipgloss.NewStyle().Width(w).Height(h).MaxHeight(h).Render(c.View())
		}
	case panel.Loading:
		note = m.spinner.View() + " Loading..."
	case panel.Failed:
		note = m.styles.danger.Render(util.WrapToWidth("⚠ "+p.Message(), max(w-2, 10)))
	case panel.Empty:
		note = m.styles.muted.Render(p.Message())
	default:
		note = m.styles.muted.Render("Waiting for data")
	}
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, note)
}

func (m *Model) summaryLine(stats []panel.Stat) string {
	parts := make([]string, 0, len(stats))
	for _, s := range stats {
		parts = append(parts, m.styles.muted.Render(s.Label+": ")+m.styles.severity(s.Severity).Render(s.Value))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) modalView() string {
	p := m.panels[m.modal.ChartID]
	w, h := m.modalChartSize()
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.title.Render(p.Title())+m.styles.muted.Render("  esc to close"),
		m.chartArea(p, w, h),
		lipgloss.NewStyle().Width(w).Render(m.summaryLine(p.Summary())),
		"",
		lipgloss.NewStyle().Width(w).MaxHeight(detailHeight).Render(m.detailView(p)),
	)
	bodyW, bodyH := m.bodySize()
	return lipgloss.Place(bodyW, bodyH, lipgloss.Center, lipgloss.Center, m.styles.modal.Width(w+2).Render(content))
}

// detailView is the tooltip for the hovered point, plus the product record
// when one was looked up from the cycle time chart.
func (m *Model) detailView(p panel.Panel) string {
	if p.Status() != panel.Loaded {
		return ""
	}
	c, ok := p.Handle().(*term.Chart)
	if !ok {
		return ""
	}
	tip := c.Tooltip()
	if p.ID() != preferences.ChartCycleTime {
		return tip
	}
	switch {
	case m.product == nil:
		return tip + "\n" + m.styles.muted.Render("p: product detail")
	case m.product.Err != nil:
		return tip + "\n" + m.styles.danger.Render(fmt.Sprintf("product #%d: %v", m.product.ProductID, m.product.Err))
	}
	return panel.DescribeProduct(m.product.Detail)
}
