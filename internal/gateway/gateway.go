// Package gateway is the HTTP client for the manufacturing analytics API.
// There is one method per metric; each sends only the query fields that
// metric understands.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mwiater/defectdash/internal/appconfig"
	"github.com/mwiater/defectdash/internal/logging"
	"github.com/mwiater/defectdash/internal/metrics"
)

const apiPrefix = "/api/v1/analytics"

// Fetcher is the part of the gateway the panels depend on.
type Fetcher interface {
	DefectRateTrend(ctx context.Context, q Query) (Trend, error)
	TopDefects(ctx context.Context, q Query) (TopDefects, error)
	MachineComparison(ctx context.Context) (MachineComparison, error)
	DefectDistribution(ctx context.Context, q Query) (Distribution, error)
	CycleTimeScatter(ctx context.Context, q Query) (Scatter, error)
	MachineDefectHeatmap(ctx context.Context, q Query) (Heatmap, error)
	Machines(ctx context.Context) (MachineList, error)
	ProductDefects(ctx context.Context, productID int64) (ProductDetail, error)
}

// Client talks to one analytics API instance.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	metrics *metrics.Aggregator
}

// New constructs a Client from the application configuration.
func New(cfg *appconfig.Config) *Client {
	return NewClient(cfg.BaseURL(), cfg.RequestTimeout())
}

// NewClient constructs a Client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		timeout: timeout,
	}
}

// WithMetrics makes the client record every request into agg.
func (c *Client) WithMetrics(agg *metrics.Aggregator) *Client {
	c.metrics = agg
	return c
}

// DefectRateTrend returns the reject rate bucketed by q.Interval.
func (c *Client) DefectRateTrend(ctx context.Context, q Query) (Trend, error) {
	var out Trend
	err := c.get(ctx, "/defect-rate-trend", q.encode(fieldMachine|fieldDates|fieldInterval), trendSchema, &out)
	return out, err
}

// TopDefects returns the most frequent defect types, at most q.Limit of them.
func (c *Client) TopDefects(ctx context.Context, q Query) (TopDefects, error) {
	var out TopDefects
	err := c.get(ctx, "/top-defects", q.encode(fieldMachine|fieldDates|fieldLimit), topDefectsSchema, &out)
	return out, err
}

// MachineComparison returns per-machine totals. It takes no filters.
func (c *Client) MachineComparison(ctx context.Context) (MachineComparison, error) {
	var out MachineComparison
	err := c.get(ctx, "/machine-comparison", nil, machineComparisonSchema, &out)
	return out, err
}

// DefectDistribution returns how many products carry 0..4 and 5+ defects.
func (c *Client) DefectDistribution(ctx context.Context, q Query) (Distribution, error) {
	var out Distribution
	err := c.get(ctx, "/defect-distribution", q.encode(fieldMachine|fieldDates), distributionSchema, &out)
	return out, err
}

// CycleTimeScatter returns per-product cycle time and defect count samples.
func (c *Client) CycleTimeScatter(ctx context.Context, q Query) (Scatter, error) {
	var out Scatter
	err := c.get(ctx, "/cycle-time-scatter", q.encode(fieldMachine|fieldDates|fieldLimit), scatterSchema, &out)
	return out, err
}

// MachineDefectHeatmap returns defect counts per machine and defect type.
// Only the date range applies.
func (c *Client) MachineDefectHeatmap(ctx context.Context, q Query) (Heatmap, error) {
	var out Heatmap
	err := c.get(ctx, "/machine-defect-heatmap", q.encode(fieldDates), heatmapSchema, &out)
	return out, err
}

// Machines lists every machine id known to the API.
func (c *Client) Machines(ctx context.Context) (MachineList, error) {
	var out MachineList
	err := c.get(ctx, "/machines", nil, machinesSchema, &out)
	return out, err
}

// ProductDefects returns the defects and machine state recorded for one product.
func (c *Client) ProductDefects(ctx context.Context, productID int64) (ProductDetail, error) {
	var out ProductDetail
	err := c.get(ctx, "/product/"+strconv.FormatInt(productID, 10)+"/defects", nil, productSchema, &out)
	return out, err
}

// get issues one GET request, decodes a validated body into out and records
// the request when metrics are enabled.
func (c *Client) get(ctx context.Context, path string, values url.Values, schema map[string]any, out any) error {
	start := time.Now()
	size, err := c.fetch(ctx, path, values, schema, out)
	if c.metrics != nil {
		c.metrics.Record(path, time.Since(start), size, err)
	}
	return err
}

// fetch returns the response size alongside any error.
func (c *Client) fetch(ctx context.Context, path string, values url.Values, schema map[string]any, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + apiPrefix + path
	query := values.Encode()
	if query != "" {
		endpoint += "?" + query
	}
	logging.LogRequest("OUT", path, query, nil)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, &TransportError{Endpoint: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, &TransportError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &TransportError{Endpoint: path, Err: err}
	}
	logging.LogRequest("IN", path, resp.Status, body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return len(body), &ServerError{
			Endpoint: path,
			Status:   resp.Status,
			Code:     resp.StatusCode,
			Body:     errorDetail(body),
		}
	}

	// The product endpoint answers a missing id with 200 and an error field.
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
		return len(body), &ServerError{Endpoint: path, Status: resp.Status, Code: resp.StatusCode, Err: errors.New(envelope.Error)}
	}

	if err := validate(schema, body); err != nil {
		return len(body), &ServerError{Endpoint: path, Status: resp.Status, Code: resp.StatusCode, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return len(body), &ServerError{Endpoint: path, Status: resp.Status, Code: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return len(body), nil
}

// errorDetail pulls a readable message out of an error body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok {
			return s
		}
		if data, err := json.Marshal(payload.Detail); err == nil {
			return string(data)
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
