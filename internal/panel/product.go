package panel

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/gateway"
)

// ProductMsg carries a product detail lookup back to the event loop.
type ProductMsg struct {
	ProductID int64
	Detail    gateway.ProductDetail
	Err       error
}

// LookupProduct fetches the defects of one product as a command.
func LookupProduct(g gateway.Fetcher, id int64) tea.Cmd {
	return func() tea.Msg {
		detail, err := g.ProductDefects(context.Background(), id)
		return ProductMsg{ProductID: id, Detail: detail, Err: err}
	}
}

// ProductSummary lists the headline facts for one product.
func ProductSummary(p gateway.ProductDetail) []Stat {
	outcome, sev := "Accepted", engine.SeveritySuccess
	if p.Product.OverallReject {
		outcome, sev = "Rejected", engine.SeverityDanger
	}
	stats := []Stat{
		{Label: "Product", Value: fmt.Sprintf("#%d", p.Product.ID)},
		{Label: "Machine", Value: HumanizeID(p.Product.MachineID)},
		{Label: "Produced", Value: productTime(p.Product.Timestamp)},
		{Label: "Outcome", Value: outcome, Severity: sev},
		{Label: "Defects", Value: Comma(p.Product.DefectCount)},
	}
	if ms := p.MachineState; ms != nil {
		if ms.CycleTime != nil {
			stats = append(stats, Stat{Label: "Cycle Time", Value: fmt.Sprintf("%.1fs", *ms.CycleTime)})
		}
		if ms.ShotCount != nil {
			stats = append(stats, Stat{Label: "Shot Count", Value: Comma(int(*ms.ShotCount))})
		}
	}
	return stats
}

// DescribeProduct renders a product and its defects as plain text.
func DescribeProduct(p gateway.ProductDetail) string {
	var b strings.Builder
	for _, s := range ProductSummary(p) {
		fmt.Fprintf(&b, "%-12s %s\n", s.Label+":", s.Value)
	}
	if len(p.Defects) == 0 {
		b.WriteString("\nNo defects recorded\n")
		return b.String()
	}
	b.WriteString("\nDefects:\n")
	for _, d := range p.Defects {
		flag := ""
		if d.Reject {
			flag = " (reject)"
		}
		fmt.Fprintf(&b, "  %-20s severity %.2f%s\n", HumanizeID(d.DefectType), d.Severity, flag)
	}
	return b.String()
}

func productTime(ts string) string {
	if len(ts) >= len(filters.DateLayout) {
		date := ts[:len(filters.DateLayout)]
		if filters.ValidDate(date) {
			rest := strings.TrimPrefix(ts[len(date):], "T")
			if len(rest) >= 5 {
				return filters.FormatDate(date) + " " + rest[:5]
			}
			return filters.FormatDate(date)
		}
	}
	return ts
}
