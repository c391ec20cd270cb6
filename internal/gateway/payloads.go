package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Trend is the defect-rate-trend payload.
type Trend struct {
	DataPoints []TrendPoint `json:"data_points"`
	Summary    TrendSummary `json:"summary"`
}

type TrendPoint struct {
	Timestamp        string  `json:"timestamp"`
	TotalProducts    int     `json:"total_products"`
	RejectedProducts int     `json:"rejected_products"`
	DefectRate       float64 `json:"defect_rate"`
}

type TrendSummary struct {
	AvgRate       float64 `json:"avg_rate"`
	MinRate       float64 `json:"min_rate"`
	MaxRate       float64 `json:"max_rate"`
	TotalProducts int     `json:"total_products"`
}

// TopDefects is the top-defects payload.
type TopDefects struct {
	Defects []DefectCount     `json:"defects"`
	Summary TopDefectsSummary `json:"summary"`
}

type DefectCount struct {
	DefectType string  `json:"defect_type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type TopDefectsSummary struct {
	TotalDefects     int    `json:"total_defects"`
	MostCommon       string `json:"most_common"`
	AffectedProducts int    `json:"affected_products"`
}

// MachineComparison is the machine-comparison payload.
type MachineComparison struct {
	Machines []MachineStats `json:"machines"`
}

type MachineStats struct {
	MachineID  string  `json:"machine_id"`
	Total      int     `json:"total"`
	Rejected   int     `json:"rejected"`
	Accepted   int     `json:"accepted"`
	DefectRate float64 `json:"defect_rate"`
}

// Distribution is the defect-distribution payload.
type Distribution struct {
	Buckets []Bucket            `json:"distribution"`
	Summary DistributionSummary `json:"summary"`
}

// Bucket groups products by how many defects they carry. The last bucket is
// open ended and arrives as a string such as "5+".
type Bucket struct {
	DefectCount  int     `json:"-"`
	Overflow     bool    `json:"-"`
	ProductCount int     `json:"product_count"`
	Percentage   float64 `json:"percentage"`
}

// Label renders the bucket the way the x axis shows it.
func (b Bucket) Label() string {
	if b.Overflow {
		return fmt.Sprintf("%d+ defects", b.DefectCount)
	}
	return fmt.Sprintf("%d defects", b.DefectCount)
}

func (b *Bucket) UnmarshalJSON(data []byte) error {
	var raw struct {
		DefectCount  json.RawMessage `json:"defect_count"`
		ProductCount int             `json:"product_count"`
		Percentage   float64         `json:"percentage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.ProductCount = raw.ProductCount
	b.Percentage = raw.Percentage
	b.Overflow = false

	var n int
	if err := json.Unmarshal(raw.DefectCount, &n); err == nil {
		b.DefectCount = n
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.DefectCount, &s); err != nil {
		return fmt.Errorf("defect_count: expected number or string, got %s", raw.DefectCount)
	}
	if trimmed := strings.TrimSuffix(s, "+"); trimmed != s {
		b.Overflow = true
		s = trimmed
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("defect_count: %w", err)
	}
	b.DefectCount = n
	return nil
}

func (b Bucket) MarshalJSON() ([]byte, error) {
	var count any = b.DefectCount
	if b.Overflow {
		count = fmt.Sprintf("%d+", b.DefectCount)
	}
	return json.Marshal(map[string]any{
		"defect_count":  count,
		"product_count": b.ProductCount,
		"percentage":    b.Percentage,
	})
}

type DistributionSummary struct {
	TotalProducts int     `json:"total_products"`
	ZeroDefects   int     `json:"zero_defects"`
	PerfectRate   float64 `json:"perfect_rate"`
}

// Scatter is the cycle-time-scatter payload.
type Scatter struct {
	Points []ScatterPoint `json:"points"`
	Stats  ScatterStats   `json:"stats"`
}

type ScatterPoint struct {
	CycleTime   float64 `json:"cycle_time"`
	DefectCount int     `json:"defect_count"`
	ProductID   int64   `json:"product_id"`
	IsRejected  bool    `json:"is_rejected"`
}

type ScatterStats struct {
	Correlation        float64 `json:"correlation"`
	AverageCycleTime   float64 `json:"average_cycle_time"`
	AverageDefectCount float64 `json:"average_defect_count"`
	SampleSize         int     `json:"sample_size"`
	AcceptedCount      int     `json:"accepted_count"`
	RejectedCount      int     `json:"rejected_count"`
}

// Heatmap is the machine-defect-heatmap payload. Cells are sparse: a
// (machine, defect type) pair without defects has no cell.
type Heatmap struct {
	Cells         []HeatCell      `json:"cells"`
	MachineLabels []string        `json:"machine_labels"`
	DefectLabels  []string        `json:"defect_labels"`
	Metadata      HeatmapMetadata `json:"metadata"`
}

type HeatCell struct {
	MachineIndex int    `json:"machine_index"`
	DefectIndex  int    `json:"defect_index"`
	Count        int    `json:"count"`
	MachineID    string `json:"machine_id,omitempty"`
	DefectType   string `json:"defect_type,omitempty"`
}

type HeatmapMetadata struct {
	TotalDefects      int `json:"total_defects"`
	MaxDefectsPerCell int `json:"max_defects_per_cell"`
	MachineCount      int `json:"machine_count"`
	DefectTypeCount   int `json:"defect_type_count"`
}

// UnmarshalJSON accepts both wire forms the API has used: cells as
// [machine, defect, count] triples with machine_labels/defect_labels, and
// cells as objects with machines/defect_types label lists.
func (h *Heatmap) UnmarshalJSON(data []byte) error {
	var raw struct {
		Cells         []json.RawMessage `json:"cells"`
		MachineLabels []string          `json:"machine_labels"`
		DefectLabels  []string          `json:"defect_labels"`
		Machines      []string          `json:"machines"`
		DefectTypes   []string          `json:"defect_types"`
		Metadata      HeatmapMetadata   `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	h.MachineLabels = raw.MachineLabels
	if len(h.MachineLabels) == 0 {
		h.MachineLabels = raw.Machines
	}
	h.DefectLabels = raw.DefectLabels
	if len(h.DefectLabels) == 0 {
		h.DefectLabels = raw.DefectTypes
	}
	h.Metadata = raw.Metadata

	h.Cells = make([]HeatCell, 0, len(raw.Cells))
	for i, rc := range raw.Cells {
		var cell HeatCell
		var triple []int
		if err := json.Unmarshal(rc, &triple); err == nil {
			if len(triple) != 3 {
				return fmt.Errorf("cells[%d]: expected 3 values, got %d", i, len(triple))
			}
			cell = HeatCell{MachineIndex: triple[0], DefectIndex: triple[1], Count: triple[2]}
		} else if err := json.Unmarshal(rc, &cell); err != nil {
			return fmt.Errorf("cells[%d]: %w", i, err)
		}
		if cell.MachineID == "" && cell.MachineIndex >= 0 && cell.MachineIndex < len(h.MachineLabels) {
			cell.MachineID = h.MachineLabels[cell.MachineIndex]
		}
		if cell.DefectType == "" && cell.DefectIndex >= 0 && cell.DefectIndex < len(h.DefectLabels) {
			cell.DefectType = h.DefectLabels[cell.DefectIndex]
		}
		h.Cells = append(h.Cells, cell)
	}
	return nil
}

// MachineList is the machines payload.
type MachineList struct {
	Machines []string `json:"machines"`
	Count    int      `json:"count"`
}

// ProductDetail is the product defects payload.
type ProductDetail struct {
	Product      ProductInfo     `json:"product"`
	Defects      []ProductDefect `json:"defects"`
	MachineState *MachineState   `json:"machine_state"`
}

type ProductInfo struct {
	ID            int64  `json:"id"`
	Timestamp     string `json:"timestamp"`
	MachineID     string `json:"machine_id"`
	OverallReject bool   `json:"overall_reject"`
	DefectCount   int    `json:"defect_count"`
}

type ProductDefect struct {
	DefectType string  `json:"defect_type"`
	Severity   float64 `json:"severity"`
	Reject     bool    `json:"reject"`
}

type MachineState struct {
	CycleTime *float64 `json:"cycle_time"`
	ShotCount *int64   `json:"shot_count"`
}
