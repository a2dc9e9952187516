package models

import "strings"

// MonitoredService is a statically configured check target. The list is
// built from the environment at startup and never changes afterwards.
type MonitoredService struct {
	Name       string
	BaseURL    string
	HealthPath string
}

// CheckURL is the exact endpoint a health check hits.
func (s MonitoredService) CheckURL() string {
	return strings.TrimSuffix(s.BaseURL, "/") + s.HealthPath
}

// CheckResult is the outcome of a single health check. Results are never
// mutated, only superseded by a newer result for the same service.
type CheckResult struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	OK        bool   `json:"ok"`
	LatencyMs int    `json:"latency_ms"`
	CheckedAt string `json:"checked_at"` // RFC3339, UTC
	Detail    string `json:"detail,omitempty"`
	Database  string `json:"database,omitempty"`
}

// Day returns the calendar day of the check as YYYY-MM-DD.
func (r CheckResult) Day() string {
	if len(r.CheckedAt) < 10 {
		return r.CheckedAt
	}
	return r.CheckedAt[:10]
}

// DaySummary is the aggregated statistic for one service on one calendar
// day. AvgLatencyMs is a running mean maintained incrementally, so individual
// samples are never retained.
type DaySummary struct {
	Date             string `json:"date"` // YYYY-MM-DD
	TotalChecks      int    `json:"total_checks"`
	SuccessfulChecks int    `json:"successful_checks"`
	AvgLatencyMs     int    `json:"avg_latency_ms"`
	LastStatus       bool   `json:"last_status"`
}

// ServiceStatus is one element of the /api/status payload.
type ServiceStatus struct {
	Name          string        `json:"name"`
	Latest        *CheckResult  `json:"latest"`
	History       []*DaySummary `json:"history"`
	UptimePercent string        `json:"uptimePercent"`
	Degraded      bool          `json:"degraded"`
}

// StatusOverview is the full page payload: every service plus the overall
// banner state.
type StatusOverview struct {
	State    string          `json:"state"`
	Services []ServiceStatus `json:"services"`
}
