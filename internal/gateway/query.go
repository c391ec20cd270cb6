package gateway

import (
	"net/url"
	"strconv"
	"strings"
)

// Query is the full set of request parameters any analytics endpoint accepts.
// Empty strings and a zero Limit mean "no constraint" and are never sent.
// Query is comparable, so two derived queries can be checked with ==.
type Query struct {
	MachineID string
	StartDate string
	EndDate   string
	Interval  string
	Limit     int
}

type field uint8

const (
	fieldMachine field = 1 << iota
	fieldDates
	fieldInterval
	fieldLimit
)

// encode keeps only the fields an endpoint recognizes.
func (q Query) encode(fields field) url.Values {
	v := url.Values{}
	if fields&fieldMachine != 0 && q.MachineID != "" {
		v.Set("machine_id", q.MachineID)
	}
	if fields&fieldDates != 0 {
		if q.StartDate != "" {
			v.Set("start_date", StartOfDay(q.StartDate))
		}
		if q.EndDate != "" {
			v.Set("end_date", EndOfDay(q.EndDate))
		}
	}
	if fields&fieldInterval != 0 && q.Interval != "" {
		v.Set("interval", q.Interval)
	}
	if fields&fieldLimit != 0 && q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// StartOfDay widens a calendar date to its first second.
func StartOfDay(date string) string {
	if strings.Contains(date, "T") {
		return date
	}
	return date + "T00:00:00"
}

// EndOfDay widens a calendar date to its last second.
func EndOfDay(date string) string {
	if strings.Contains(date, "T") {
		return date
	}
	return date + "T23:59:59"
}
