// Package status is the read side: it assembles latest results and history
// windows into the payloads the HTTP surface serves.
package status

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"statuswatch/app/internal/cache"
	"statuswatch/app/internal/history"
	"statuswatch/app/internal/models"
)

// Banner states for the whole page.
const (
	StateOperational = "operational"
	StateCollecting  = "collecting"
	StateDegraded    = "degraded"
	StateMajor       = "major"
)

// ErrUnknownService is returned for a service name that is not configured.
var ErrUnknownService = errors.New("status: unknown service")

// Presenter reads the history store on behalf of the HTTP surface. Results
// are cached briefly so a busy status page does not hammer the store.
type Presenter struct {
	services   []models.MonitoredService
	store      *history.Store
	cache      *cache.Cache
	degradedMs int
}

// NewPresenter creates a Presenter. degradedMs is the latency above which an
// otherwise healthy service is flagged degraded.
func NewPresenter(services []models.MonitoredService, store *history.Store, c *cache.Cache, degradedMs int) *Presenter {
	if degradedMs <= 0 {
		degradedMs = 200
	}
	return &Presenter{
		services:   services,
		store:      store,
		cache:      c,
		degradedMs: degradedMs,
	}
}

// Service returns the status payload for one configured service over a
// window of days. days <= 0 means the store's retention window.
func (p *Presenter) Service(ctx context.Context, name string, days int) (*models.ServiceStatus, error) {
	if !p.knows(name) {
		return nil, ErrUnknownService
	}
	latest, err := p.store.LatestCheck(ctx, name)
	if err != nil {
		return nil, err
	}
	hist, err := p.store.History(ctx, name, days)
	if err != nil {
		return nil, err
	}
	return &models.ServiceStatus{
		Name:          name,
		Latest:        latest,
		History:       hist,
		UptimePercent: UptimePercent(hist),
		Degraded:      latest != nil && latest.OK && latest.LatencyMs > p.degradedMs,
	}, nil
}

// Overview returns every configured service plus the overall banner state.
func (p *Presenter) Overview(ctx context.Context, days int) (*models.StatusOverview, error) {
	cacheKey := fmt.Sprintf("overview:%d", days)
	if p.cache != nil {
		if cached, ok := p.cache.Get(cacheKey); ok {
			if overview, ok := cached.(*models.StatusOverview); ok {
				return overview, nil
			}
		}
	}

	overview := &models.StatusOverview{
		Services: make([]models.ServiceStatus, 0, len(p.services)),
	}
	for _, svc := range p.services {
		st, err := p.Service(ctx, svc.Name, days)
		if err != nil {
			return nil, err
		}
		overview.Services = append(overview.Services, *st)
	}
	overview.State = bannerState(overview.Services)

	if p.cache != nil {
		p.cache.Set(cacheKey, overview)
	}
	return overview, nil
}

func (p *Presenter) knows(name string) bool {
	for _, svc := range p.services {
		if svc.Name == name {
			return true
		}
	}
	return false
}

// bannerState derives the overall page state: collecting until anything has
// been checked, major when every checked service is down, operational when
// none are down.
func bannerState(services []models.ServiceStatus) string {
	checked, down := 0, 0
	for _, s := range services {
		if s.Latest == nil {
			continue
		}
		checked++
		if !s.Latest.OK {
			down++
		}
	}
	switch {
	case checked == 0:
		return StateCollecting
	case down == 0:
		return StateOperational
	case down == checked && checked == len(services):
		return StateMajor
	default:
		return StateDegraded
	}
}

// UptimePercent sums successes over the window, formatted with two
// decimals. No data at all reads as fully up, so a service added moments
// ago does not show 0% uptime.
func UptimePercent(history []*models.DaySummary) string {
	var ok, total int
	for _, day := range history {
		if day == nil {
			continue
		}
		ok += day.SuccessfulChecks
		total += day.TotalChecks
	}
	if total == 0 {
		return "100.00"
	}
	return strconv.FormatFloat(float64(ok)/float64(total)*100, 'f', 2, 64)
}
