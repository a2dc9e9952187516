// Package history persists health-check results as per-day aggregates on
// top of a kv backend. Two key families are used:
//
//	status:<service>:<YYYY-MM-DD> -> DaySummary (JSON)
//	latest:<service>              -> CheckResult (JSON)
package history

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"statuswatch/app/internal/kv"
	"statuswatch/app/internal/models"
)

const (
	dayKeyPrefix    = "status:"
	latestKeyPrefix = "latest:"
)

const dateLayout = "2006-01-02"

// StorageError wraps a backend failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "history: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Store owns all persisted day summaries and latest-check slots. All writes
// go through its operations; callers never touch the kv layer directly.
type Store struct {
	kv            kv.Store
	retentionDays int
	now           func() time.Time
}

// New creates a Store over the given backend with the retention window used
// by History and PruneOld.
func New(backend kv.Store, retentionDays int) *Store {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Store{
		kv:            backend,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// RetentionDays returns the configured window size in days.
func (s *Store) RetentionDays() int {
	return s.retentionDays
}

func dayKey(name, date string) string {
	return dayKeyPrefix + name + ":" + date
}

func latestKey(name string) string {
	return latestKeyPrefix + name
}

// RecordCheck folds result into the day summary for its calendar day and
// unconditionally overwrites the service's latest slot. The accumulation
// runs through the backend's atomic update, so a concurrent writer cannot
// lose a check.
func (s *Store) RecordCheck(ctx context.Context, result models.CheckResult) error {
	date := result.Day()
	err := s.kv.Update(ctx, dayKey(result.Name, date), func(old []byte) ([]byte, error) {
		sum := models.DaySummary{Date: date}
		if old != nil {
			if err := json.Unmarshal(old, &sum); err != nil {
				// A day record that no longer decodes is replaced.
				sum = models.DaySummary{Date: date}
			}
		}
		return json.Marshal(accumulate(sum, result))
	})
	if err != nil {
		return &StorageError{Op: "record check", Err: err}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return &StorageError{Op: "encode latest", Err: err}
	}
	if err := s.kv.Set(ctx, latestKey(result.Name), raw); err != nil {
		return &StorageError{Op: "record latest", Err: err}
	}
	return nil
}

// accumulate applies one check to a day summary using the incremental
// average: newAvg = round((oldAvg*oldTotal + latency) / newTotal).
func accumulate(sum models.DaySummary, r models.CheckResult) models.DaySummary {
	oldTotal := sum.TotalChecks
	sum.TotalChecks++
	if r.OK {
		sum.SuccessfulChecks++
	}
	sum.AvgLatencyMs = int(math.Round(
		(float64(sum.AvgLatencyMs)*float64(oldTotal) + float64(r.LatencyMs)) / float64(sum.TotalChecks)))
	sum.LastStatus = r.OK
	return sum
}

// History returns exactly days entries ending today, oldest first, with nil
// standing in for days that have no recorded data. days <= 0 means the
// configured retention window.
func (s *Store) History(ctx context.Context, name string, days int) ([]*models.DaySummary, error) {
	if days <= 0 {
		days = s.retentionDays
	}
	today := s.now().UTC()
	out := make([]*models.DaySummary, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, -(days - 1 - i)).Format(dateLayout)
		raw, err := s.kv.Get(ctx, dayKey(name, date))
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, &StorageError{Op: "read history", Err: err}
		}
		var sum models.DaySummary
		if err := json.Unmarshal(raw, &sum); err != nil {
			return nil, &StorageError{Op: "decode history", Err: err}
		}
		out[i] = &sum
	}
	return out, nil
}

// LatestCheck returns the most recently recorded check for a service, or
// nil when nothing has been recorded yet.
func (s *Store) LatestCheck(ctx context.Context, name string) (*models.CheckResult, error) {
	raw, err := s.kv.Get(ctx, latestKey(name))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read latest", Err: err}
	}
	var result models.CheckResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &StorageError{Op: "decode latest", Err: err}
	}
	return &result, nil
}

// PruneOld deletes every day summary dated strictly before
// today - retentionDays and returns how many were removed. Latest slots and
// anything inside the window are never touched, so it is safe to run while
// checks are being recorded.
func (s *Store) PruneOld(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -s.retentionDays).Format(dateLayout)

	keys, err := s.kv.Keys(ctx, dayKeyPrefix)
	if err != nil {
		return 0, &StorageError{Op: "scan history", Err: err}
	}

	var stale []string
	for _, k := range keys {
		// Key shape is status:<service>:<date>; the service name may itself
		// contain colons, the date never does.
		date := k[strings.LastIndexByte(k, ':')+1:]
		if len(date) == len(dateLayout) && date < cutoff {
			stale = append(stale, k)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	removed, err := s.kv.Delete(ctx, stale...)
	if err != nil {
		return removed, &StorageError{Op: "prune", Err: err}
	}
	return removed, nil
}

// Ping verifies the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.kv.Get(ctx, "statuswatch:ping")
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return &StorageError{Op: "ping", Err: err}
	}
	return nil
}
