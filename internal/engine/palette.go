package engine

import "github.com/lucasb-eyer/go-colorful"

// Palette holds the colours panels and bindings draw with.
type Palette struct {
	Series     []string
	Background string
	Text       string
	Muted      string
	Border     string
	Success    string
	Warning    string
	Danger     string
	HeatLow    string
	HeatHot    string
}

// LightPalette is the default theme.
var LightPalette = Palette{
	Series:     []string{"#5470c6", "#91cc75", "#fac858", "#ee6666", "#73c0de", "#3ba272"},
	Background: "#ffffff",
	Text:       "#303133",
	Muted:      "#909399",
	Border:     "#dcdfe6",
	Success:    "#67c23a",
	Warning:    "#e6a23c",
	Danger:     "#f56c6c",
	HeatLow:    "#e0f3f8",
	HeatHot:    "#d73027",
}

// DarkPalette is used when dark mode is on.
var DarkPalette = Palette{
	Series:     []string{"#4992ff", "#7cffb2", "#fddd60", "#ff6e76", "#58d9f9", "#05c091"},
	Background: "#100c2a",
	Text:       "#e5eaf3",
	Muted:      "#a3a6ad",
	Border:     "#4c4d4f",
	Success:    "#529b2e",
	Warning:    "#b88230",
	Danger:     "#c45656",
	HeatLow:    "#313695",
	HeatHot:    "#f46d43",
}

// PaletteFor picks the palette for a theme.
func PaletteFor(dark bool) Palette {
	if dark {
		return DarkPalette
	}
	return LightPalette
}

// SeriesColor cycles through the series colours.
func (p Palette) SeriesColor(i int) string {
	if len(p.Series) == 0 {
		return p.Text
	}
	return p.Series[i%len(p.Series)]
}

// Severity is a traffic-light band for summary values.
type Severity int

const (
	SeverityNone Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityDanger
)

// Color maps a severity to the palette.
func (p Palette) Color(s Severity) string {
	switch s {
	case SeveritySuccess:
		return p.Success
	case SeverityWarning:
		return p.Warning
	case SeverityDanger:
		return p.Danger
	default:
		return p.Text
	}
}

// HeatColor blends HeatLow towards HeatHot for ratio in [0,1].
func (p Palette) HeatColor(ratio float64) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	low, err := colorful.Hex(p.HeatLow)
	if err != nil {
		return p.HeatHot
	}
	hot, err := colorful.Hex(p.HeatHot)
	if err != nil {
		return p.HeatLow
	}
	return low.BlendLab(hot, ratio).Clamped().Hex()
}
