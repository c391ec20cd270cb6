package panel

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"

	"github.com/mwiater/defectdash/internal/engine"
)

// HumanizeID turns identifiers such as "molding-machine-1" or
// "knit_line_defect" into display labels: delimiters become spaces and each
// word starts upper case.
func HumanizeID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	wordStart := true
	for _, r := range id {
		if r == '-' || r == '_' {
			r = ' '
		}
		word := unicode.IsLetter(r) || unicode.IsDigit(r)
		if word && wordStart {
			r = unicode.ToUpper(r)
		}
		wordStart = !word
		b.WriteRune(r)
	}
	return b.String()
}

// Percent formats a 0..1 rate as "74.8%".
func Percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

// Comma formats an integer with thousands separators.
func Comma(n int) string {
	return humanize.Comma(int64(n))
}

// RateSeverity bands a 0..1 reject rate.
func RateSeverity(rate float64) engine.Severity {
	switch {
	case rate >= 0.8:
		return engine.SeverityDanger
	case rate >= 0.5:
		return engine.SeverityWarning
	default:
		return engine.SeveritySuccess
	}
}

// CorrelationStrength names and bands the magnitude of a correlation
// coefficient.
func CorrelationStrength(r float64) (string, engine.Severity) {
	switch a := math.Abs(r); {
	case a >= 0.7:
		return "strong", engine.SeverityDanger
	case a >= 0.3:
		return "medium", engine.SeverityWarning
	default:
		return "weak", engine.SeveritySuccess
	}
}

// shortDate trims an ISO timestamp to something that fits an axis label:
// "2025-06-01T00:00:00" becomes "Jun 1", or "Jun 1 14:00" for hourly data.
func shortDate(ts string, hourly bool) string {
	layouts := []string{"2006-01-02T15:04:05", "2006-01-02T15:04:05Z07:00", "2006-01-02 15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, ts); err == nil {
			if hourly {
				return t.Format("Jan 2 15:04")
			}
			return t.Format("Jan 2")
		}
	}
	return ts
}
