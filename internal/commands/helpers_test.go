package defectdash

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mwiater/defectdash/internal/gateway"
)

var analyticsBodies = map[string]string{
	"/defect-rate-trend": `{"data_points": [
		{"timestamp": "2025-06-01T00:00:00", "total_products": 250, "rejected_products": 185, "defect_rate": 0.742},
		{"timestamp": "2025-06-02T00:00:00", "total_products": 250, "rejected_products": 172, "defect_rate": 0.688}
	], "summary": {"avg_rate": 0.715, "min_rate": 0.688, "max_rate": 0.742, "total_products": 500}}`,
	"/top-defects": `{"defects": [
		{"defect_type": "knit_line_defect", "count": 120, "percentage": 60},
		{"defect_type": "flash", "count": 80, "percentage": 40}
	], "summary": {"total_defects": 200, "most_common": "knit_line_defect", "affected_products": 150}}`,
	"/machine-comparison": `{"machines": [
		{"machine_id": "molding-machine-1", "total": 1250, "rejected": 95, "accepted": 1155, "defect_rate": 0.076},
		{"machine_id": "molding-machine-2", "total": 980, "rejected": 50, "accepted": 930, "defect_rate": 0.051}
	]}`,
	"/defect-distribution": `{"distribution": [], "summary": {"total_products": 0, "zero_defects": 0, "perfect_rate": 0}}`,
	"/cycle-time-scatter": `{"points": [
		{"cycle_time": 28.1, "defect_count": 0, "product_id": 1, "is_rejected": false},
		{"cycle_time": 35.2, "defect_count": 4, "product_id": 3, "is_rejected": true}
	], "stats": {"correlation": 0.81, "average_cycle_time": 31.6, "average_defect_count": 2, "sample_size": 2}}`,
	"/machine-defect-heatmap": `{"cells": [[0, 0, 7], [1, 1, 3]],
		"machine_labels": ["molding-machine-1", "molding-machine-2"],
		"defect_labels": ["flash", "short_shot"],
		"metadata": {"total_defects": 10, "max_defects_per_cell": 7, "machine_count": 2, "defect_type_count": 2}}`,
	"/machines": `{"machines": ["molding-machine-1", "molding-machine-2"], "count": 2}`,
	"/product/3/defects": `{"product": {"id": 3, "timestamp": "2025-06-15T14:32:10", "machine_id": "molding-machine-2", "overall_reject": true, "defect_count": 1},
		"defects": [{"defect_type": "short_shot", "severity": 0.82, "reject": true}]}`,
}

// newAnalyticsServer serves analyticsBodies, answering 500 for the paths in
// broken.
func newAnalyticsServer(t *testing.T, broken ...string) gateway.Fetcher {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/v1/analytics")
		for _, b := range broken {
			if path == b {
				http.Error(w, `{"detail": "database unavailable"}`, http.StatusInternalServerError)
				return
			}
		}
		body, ok := analyticsBodies[path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return gateway.NewClient(server.URL, 2*time.Second)
}
