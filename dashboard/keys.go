package dashboard

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next, Prev      key.Binding
	Zoom, Close     key.Binding
	Left, Right     key.Binding
	Product         key.Binding
	Collapse        key.Binding
	MachineNext     key.Binding
	MachinePrev     key.Binding
	Today, Week     key.Binding
	Month, Clear    key.Binding
	EditDates       key.Binding
	Interval, Limit key.Binding
	Reload          key.Binding
	Dark, Layout    key.Binding
	Toggle          key.Binding
	Help, Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next chart")),
		Prev:        key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev chart")),
		Zoom:        key.NewBinding(key.WithKeys("enter", "z"), key.WithHelp("enter/z", "zoom")),
		Close:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close zoom")),
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev point")),
		Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next point")),
		Product:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "product detail")),
		Collapse:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle sidebar")),
		MachineNext: key.NewBinding(key.WithKeys("m"), key.WithHelp("m/M", "machine")),
		MachinePrev: key.NewBinding(key.WithKeys("M")),
		Today:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Week:        key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "last 7 days")),
		Month:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "last 30 days")),
		Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		EditDates:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit dates")),
		Interval:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "trend interval")),
		Limit:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "top-N")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Dark:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dark mode")),
		Layout:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "layout")),
		Toggle:      key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "show/hide chart")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Zoom, k.MachineNext, k.EditDates, k.Collapse, k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Zoom, k.Close, k.Left, k.Right, k.Product},
		{k.MachineNext, k.Today, k.Week, k.Month, k.EditDates, k.Clear},
		{k.Interval, k.Limit, k.Reload, k.Collapse, k.Dark, k.Layout, k.Toggle},
		{k.Help, k.Quit},
	}
}
