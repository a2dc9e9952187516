// Package poller drives the recurring health-check cycles.
package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"statuswatch/app/internal/checker"
	"statuswatch/app/internal/history"
	"statuswatch/app/internal/models"
)

// Poller runs one check cycle immediately on Start, then keeps cycling on a
// fixed interval until Stop. Each scheduled cycle is followed by a prune
// pass over the history store.
type Poller struct {
	services []models.MonitoredService
	checker  *checker.Checker
	store    *history.Store
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Poller. interval <= 0 falls back to one minute.
func New(services []models.MonitoredService, chk *checker.Checker, store *history.Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		services: services,
		checker:  chk,
		store:    store,
		interval: interval,
	}
}

// RunCycle checks every service concurrently, waits for all of them, then
// records each result. A failed or timed-out check is still a result; only
// storage failures surface as errors, and one service's storage failure
// does not stop the others from being recorded.
func (p *Poller) RunCycle(ctx context.Context) error {
	results := make([]models.CheckResult, len(p.services))
	var wg sync.WaitGroup
	for i, svc := range p.services {
		wg.Add(1)
		go func(i int, svc models.MonitoredService) {
			defer wg.Done()
			results[i] = p.checker.Check(ctx, svc)
		}(i, svc)
	}
	wg.Wait()

	var firstErr error
	for _, result := range results {
		if err := p.store.RecordCheck(ctx, result); err != nil {
			log.Printf("record check failed service=%s err=%v", result.Name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Start launches the poll loop. The first cycle runs immediately so status
// is available without waiting a full interval.
func (p *Poller) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick is the scheduling boundary: a failed cycle is logged and the
// schedule continues.
func (p *Poller) tick(ctx context.Context) {
	if err := p.RunCycle(ctx); err != nil {
		log.Printf("check cycle failed: %v", err)
	}
	n, err := p.store.PruneOld(ctx)
	if err != nil {
		log.Printf("prune failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("pruned %d expired day records", n)
	}
}

// Stop cancels the schedule and waits for any in-flight cycle to finish.
// Safe to call only after Start.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.wg.Wait()
}
