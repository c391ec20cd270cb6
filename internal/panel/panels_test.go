package panel

import (
	"strings"
	"testing"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/gateway"
)

func TestHumanizeID(t *testing.T) {
	cases := map[string]string{
		"molding-machine-1": "Molding Machine 1",
		"test_machine_name": "Test Machine Name",
		"knit_line_defect":  "Knit Line Defect",
		"":                  "",
		"flash":             "Flash",
	}
	for in, want := range cases {
		if got := HumanizeID(in); got != want {
			t.Errorf("HumanizeID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSeverityBands(t *testing.T) {
	if RateSeverity(0.748) != engine.SeverityWarning || RateSeverity(0.81) != engine.SeverityDanger || RateSeverity(0.2) != engine.SeveritySuccess {
		t.Fatal("unexpected rate bands")
	}
	if name, sev := CorrelationStrength(-0.45); name != "medium" || sev != engine.SeverityWarning {
		t.Fatalf("-0.45 should be medium/warning, got %s/%v", name, sev)
	}
	if name, _ := CorrelationStrength(0.9); name != "strong" {
		t.Fatalf("0.9 should be strong, got %s", name)
	}
	if name, _ := CorrelationStrength(0.1); name != "weak" {
		t.Fatalf("0.1 should be weak, got %s", name)
	}
}

func TestCycleTimeSplitsByOutcome(t *testing.T) {
	h := newHarness()
	h.gw.scatter = gateway.Scatter{
		Points: []gateway.ScatterPoint{
			{CycleTime: 28.1, DefectCount: 0, ProductID: 1},
			{CycleTime: 29.4, DefectCount: 1, ProductID: 2},
			{CycleTime: 35.2, DefectCount: 4, ProductID: 3, IsRejected: true},
			{CycleTime: 30.0, DefectCount: 0, ProductID: 4},
		},
		Stats: gateway.ScatterStats{Correlation: -0.45, AverageCycleTime: 29.4, SampleSize: 4},
	}
	p := NewCycleTime(h.deps(), 0)
	p.Start()
	p.Apply(h.queue.result(t, 0))

	opts, ok := p.Options()
	if !ok || len(opts.Series) != 2 {
		t.Fatalf("expected exactly 2 series, got %+v", opts.Series)
	}
	if opts.Series[0].Name != "Accepted" || len(opts.Series[0].Points) != 3 {
		t.Fatalf("expected 3 accepted points, got %+v", opts.Series[0])
	}
	if opts.Series[1].Name != "Rejected" || len(opts.Series[1].Points) != 1 {
		t.Fatalf("expected 1 rejected point, got %+v", opts.Series[1])
	}
	if id, ok := p.ProductAt(3); !ok || id != 3 {
		t.Fatalf("hover index 3 is the rejected product, got %d %v", id, ok)
	}
	if tip := opts.TooltipAt(3); !strings.Contains(tip, "Product #3 (Rejected)") || !strings.Contains(tip, "35.2s") {
		t.Fatalf("unexpected tooltip %q", tip)
	}

	summary := p.Summary()
	if summary[0].Value != "-0.450 (medium)" || summary[0].Severity != engine.SeverityWarning {
		t.Fatalf("unexpected correlation %+v", summary[0])
	}
	if summary[1].Value != "29.4s" || summary[3].Value != "4" {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if q := h.gw.seen("cycleTime"); q[0].Limit != 0 {
		t.Fatalf("zero limit must leave the cap to the API, got %+v", q[0])
	}
}

func TestTopDefectsRanksAndCuts(t *testing.T) {
	h := newHarness()
	h.gw.top = gateway.TopDefects{
		Defects: []gateway.DefectCount{
			{DefectType: "flash", Count: 40, Percentage: 20},
			{DefectType: "knit_line_defect", Count: 120, Percentage: 60},
			{DefectType: "short_shot", Count: 40, Percentage: 20},
			{DefectType: "warp", Count: 5, Percentage: 2.5},
			{DefectType: "burn_mark", Count: 1, Percentage: 0.5},
			{DefectType: "sink_mark", Count: 3, Percentage: 1.5},
		},
		Summary: gateway.TopDefectsSummary{TotalDefects: 3400, MostCommon: "knit_line_defect", AffectedProducts: 2495},
	}
	p := NewTopDefects(h.deps(), 5)
	p.Start()
	p.Apply(h.queue.result(t, 0))

	opts, _ := p.Options()
	want := []string{"Knit Line Defect", "Flash", "Short Shot", "Warp", "Sink Mark"}
	if got := opts.XAxis.Categories; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected ranking %v", got)
	}
	if opts.Series[0].Kind != engine.KindBar {
		t.Fatal("top defects is a bar chart")
	}
	if tip := opts.TooltipAt(0); !strings.Contains(tip, "Count: 120") || !strings.Contains(tip, "60.0%") {
		t.Fatalf("unexpected tooltip %q", tip)
	}
	text := ""
	for _, s := range p.Summary() {
		text += s.Value + " "
	}
	for _, want := range []string{"3,400", "Knit Line Defect", "2,495"} {
		if !strings.Contains(text, want) {
			t.Fatalf("summary %q missing %q", text, want)
		}
	}
}

func TestMachineComparisonTooltip(t *testing.T) {
	h := newHarness()
	h.gw.machines = gateway.MachineComparison{Machines: []gateway.MachineStats{
		{MachineID: "molding-machine-1", Total: 1250, Rejected: 95, Accepted: 1155, DefectRate: 0.076},
		{MachineID: "molding-machine-2", Total: 980, Rejected: 50, Accepted: 930, DefectRate: 0.051},
	}}
	p := NewMachineComparison(h.deps())
	p.Start()
	p.Apply(h.queue.result(t, 0))

	opts, ok := p.Options()
	if !ok || len(opts.Series) != 2 || opts.Series[1].YAxis != 1 {
		t.Fatalf("expected rate and total series on separate axes, got %+v", opts.Series)
	}
	tip := opts.TooltipAt(0)
	for _, want := range []string{"Molding Machine 1", "7.60%", "1,250"} {
		if !strings.Contains(tip, want) {
			t.Fatalf("tooltip %q missing %q", tip, want)
		}
	}

	empty := newHarness()
	e := NewMachineComparison(empty.deps())
	e.Start()
	e.Apply(empty.queue.result(t, 0))
	if e.Status() != Empty || e.Message() != "No machine data available" {
		t.Fatalf("unexpected empty state %s %q", e.Status(), e.Message())
	}
}

func TestDistributionTooltip(t *testing.T) {
	h := newHarness()
	h.gw.dist = gateway.Distribution{
		Buckets: []gateway.Bucket{
			{DefectCount: 0, ProductCount: 850, Percentage: 42.5},
			{DefectCount: 1, ProductCount: 550, Percentage: 27.5},
			{DefectCount: 5, Overflow: true, ProductCount: 10, Percentage: 0.5},
		},
		Summary: gateway.DistributionSummary{TotalProducts: 2000, ZeroDefects: 850, PerfectRate: 42.5},
	}
	p := NewDistribution(h.deps())
	p.Start()
	p.Apply(h.queue.result(t, 0))

	opts, _ := p.Options()
	if got := strings.Join(opts.XAxis.Categories, ","); got != "0 defects,1 defects,5+ defects" {
		t.Fatalf("unexpected buckets %s", got)
	}
	tip := opts.TooltipAt(0)
	for _, want := range []string{"0 defects", "850", "42.5%"} {
		if !strings.Contains(tip, want) {
			t.Fatalf("tooltip %q missing %q", tip, want)
		}
	}
	if s := p.Summary(); s[0].Value != "850" || s[1].Value != "42.5%" || s[2].Value != "2,000" {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestHeatmapOptions(t *testing.T) {
	h := newHarness()
	h.gw.heatmap = gateway.Heatmap{
		Cells: []gateway.HeatCell{
			{MachineIndex: 0, DefectIndex: 1, Count: 7, MachineID: "molding-machine-1", DefectType: "short_shot"},
			{MachineIndex: 1, DefectIndex: 0, Count: 3, MachineID: "molding-machine-2", DefectType: "flash"},
		},
		MachineLabels: []string{"molding-machine-1", "molding-machine-2"},
		DefectLabels:  []string{"flash", "short_shot"},
		Metadata:      gateway.HeatmapMetadata{TotalDefects: 10, MaxDefectsPerCell: 7, MachineCount: 2, DefectTypeCount: 2},
	}
	p := NewHeatmap(h.deps())
	p.Start()
	p.Apply(h.queue.result(t, 0))

	opts, _ := p.Options()
	hm := opts.Heatmap
	if hm == nil || hm.Max != 7 || len(hm.Cells) != 2 {
		t.Fatalf("unexpected heatmap %+v", hm)
	}
	if hm.XLabels[0] != "Molding Machine 1" || hm.YLabels[1] != "Short Shot" {
		t.Fatalf("labels not humanized: %v %v", hm.XLabels, hm.YLabels)
	}
	if tip := opts.TooltipAt(0); !strings.Contains(tip, "Short Shot: 7 defects") {
		t.Fatalf("unexpected tooltip %q", tip)
	}
	if q := h.gw.seen("heatmap"); q[0].MachineID != "" {
		t.Fatal("heatmap must not send a machine filter")
	}
}

func TestTrendInterval(t *testing.T) {
	h := newHarness()
	p := NewTrend(h.deps(), "fortnight")
	if p.Interval() != "day" {
		t.Fatalf("unknown interval should fall back to day, got %s", p.Interval())
	}
	p.Start()
	p.CycleInterval()
	if p.Interval() != "week" || len(h.queue.cmds) != 2 {
		t.Fatalf("expected week and a refetch, got %s / %d", p.Interval(), len(h.queue.cmds))
	}
	h.queue.result(t, 1)
	if q := h.gw.seen("trend"); q[0].Interval != "week" {
		t.Fatalf("expected interval on the wire, got %+v", q)
	}
	if err := p.SetInterval("minute"); err == nil {
		t.Fatal("expected error for unknown interval")
	}
}

func TestNewUnknownPanel(t *testing.T) {
	if _, err := New("pie", newHarness().deps(), Params{}); err == nil {
		t.Fatal("expected error for unknown panel")
	}
	if TitleFor("heatmap") != "Machine × Defect Type Analysis" || TitleFor("pie") != "pie" {
		t.Fatal("unexpected titles")
	}
}

func TestDescribeProduct(t *testing.T) {
	cycle := 31.5
	shots := int64(120455)
	h := newHarness()
	h.gw.product = gateway.ProductDetail{
		Product: gateway.ProductInfo{ID: 17, Timestamp: "2025-06-15T14:32:10", MachineID: "molding-machine-2", OverallReject: true, DefectCount: 2},
		Defects: []gateway.ProductDefect{
			{DefectType: "short_shot", Severity: 0.82, Reject: true},
			{DefectType: "flash", Severity: 0.2},
		},
		MachineState: &gateway.MachineState{CycleTime: &cycle, ShotCount: &shots},
	}
	msg := LookupProduct(h.gw, 17)().(ProductMsg)
	if msg.Err != nil {
		t.Fatal(msg.Err)
	}
	text := DescribeProduct(msg.Detail)
	for _, want := range []string{"#17", "Molding Machine 2", "Jun 15, 2025 14:32", "Rejected", "31.5s", "120,455", "Short Shot", "(reject)"} {
		if !strings.Contains(text, want) {
			t.Fatalf("description missing %q:\n%s", want, text)
		}
	}
	if miss := LookupProduct(h.gw, 99)().(ProductMsg); miss.Err == nil {
		t.Fatal("expected error for unknown product")
	}
}
