package checker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"syscall"
	"time"

	"statuswatch/app/internal/models"
)

// Checker performs health checks against monitored services. A check never
// returns an error: every failure mode is folded into the CheckResult, so
// one bad service cannot abort a concurrent cycle.
type Checker struct {
	client  *http.Client
	timeout time.Duration
}

// New creates a Checker with the given per-check timeout.
func New(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// healthBody is the subset of a /health response body we look at. The body
// is advisory only; the HTTP status code decides ok.
type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Detail   string `json:"detail"`
}

// Check probes one service's health endpoint. Latency covers the span from
// just before the request to the response headers or the failure point.
func (c *Checker) Check(ctx context.Context, svc models.MonitoredService) models.CheckResult {
	url := svc.CheckURL()
	result := models.CheckResult{Name: svc.Name, URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.CheckedAt = time.Now().UTC().Format(time.RFC3339)
		result.Detail = "invalid url: " + err.Error()
		return result
	}

	t0 := time.Now()
	resp, err := c.client.Do(req)
	result.LatencyMs = int(time.Since(t0).Milliseconds())
	result.CheckedAt = time.Now().UTC().Format(time.RFC3339)
	if err != nil {
		result.Detail = classify(err)
		log.Printf("check failed service=%s url=%s err=%v", svc.Name, url, err)
		return result
	}
	defer resp.Body.Close()

	result.OK = resp.StatusCode >= 200 && resp.StatusCode <= 299
	if !result.OK {
		result.Detail = fmt.Sprintf("status %d", resp.StatusCode)
	}

	var body healthBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		result.Database = body.Database
		if result.Detail == "" {
			if body.Detail != "" {
				result.Detail = body.Detail
			} else {
				result.Detail = body.Status
			}
		}
	}
	return result
}

// classify maps transport errors onto short diagnostic strings.
func classify(err error) string {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return "timeout"
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection refused"
	}
	var operr *net.OpError
	if errors.As(err, &operr) {
		return "connection error: " + operr.Err.Error()
	}
	return err.Error()
}
