package defectdash

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/defectdash/internal/engine"
	"github.com/mwiater/defectdash/internal/engine/gochart"
	"github.com/mwiater/defectdash/internal/filters"
	"github.com/mwiater/defectdash/internal/panel"
)

func TestExportChartsWritesOneImagePerLoadedPanel(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	written, err := exportCharts(context.Background(), &out, newAnalyticsServer(t), filters.New(), exportOptions{
		IDs:     panel.IDs(),
		Params:  panel.Params{Interval: "day", TopN: 10},
		Format:  gochart.FormatPNG,
		Dir:     dir,
		Width:   640,
		Height:  360,
		Palette: engine.LightPalette,
	})
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out.String())
	}
	if len(written) != 5 {
		t.Fatalf("expected 5 images (distribution is empty), got %v\n%s", written, out.String())
	}
	for _, path := range written {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Fatalf("%s is not a PNG", path)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "heatmap.png")); err != nil {
		t.Fatalf("expected heatmap.png: %v", err)
	}
	if !strings.Contains(out.String(), "No data available") {
		t.Fatalf("expected the empty panel to be reported:\n%s", out.String())
	}
}

func TestExportChartsReportsFailures(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	written, err := exportCharts(context.Background(), &out, newAnalyticsServer(t, "/top-defects"), filters.New(), exportOptions{
		IDs:     []string{"trend", "topDefects"},
		Format:  gochart.FormatSVG,
		Dir:     dir,
		Width:   400,
		Height:  300,
		Palette: engine.DarkPalette,
	})
	if err == nil || !strings.Contains(err.Error(), "1 of 2 charts failed") {
		t.Fatalf("expected one failure, got %v", err)
	}
	if len(written) != 1 || filepath.Base(written[0]) != "trend.svg" {
		t.Fatalf("expected trend.svg only, got %v", written)
	}
	if !strings.Contains(out.String(), "Error loading chart") {
		t.Fatalf("failure not reported:\n%s", out.String())
	}
}

func TestExportUnknownPanel(t *testing.T) {
	_, err := exportCharts(context.Background(), &bytes.Buffer{}, newAnalyticsServer(t), filters.New(), exportOptions{
		IDs:    []string{"pie"},
		Format: gochart.FormatPNG,
		Dir:    t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for unknown panel")
	}
}

func TestSelectionFlags(t *testing.T) {
	st, err := selectionFlags{machine: "molding-machine-2", start: "2025-06-10", end: "2025-06-01"}.state()
	if err != nil {
		t.Fatal(err)
	}
	sel := st.Snapshot()
	if sel.MachineID != "molding-machine-2" || sel.StartDate != "2025-06-01" || sel.EndDate != "2025-06-10" {
		t.Fatalf("expected reversed dates swapped, got %+v", sel)
	}
	if _, err := (selectionFlags{start: "06/01/2025"}).state(); err == nil {
		t.Fatal("expected error for a malformed date")
	}
	if _, err := (selectionFlags{preset: "year"}).state(); err == nil {
		t.Fatal("expected error for an unknown preset")
	}
}
