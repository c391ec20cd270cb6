// internal/metrics/types.go
package metrics

import "time"

// EndpointMetrics is the aggregate for one analytics endpoint.
type EndpointMetrics struct {
	Endpoint       string      `json:"endpoint"`
	LastUpdatedUTC time.Time   `json:"last_updated_utc"`
	Requests       int64       `json:"requests"`
	Failures       int64       `json:"failures"`
	LatencyMillis  RunningStat `json:"latency_ms"`
	ResponseBytes  RunningStat `json:"response_bytes"`
}

// RunningStat holds the necessary values for online calculation of mean, variance, and stddev.
type RunningStat struct {
	Count int64   `json:"-"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"-"` // Sum of squares of differences from the current mean
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}
