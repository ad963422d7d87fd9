package stars

import (
	"context"
	"log"
	"time"

	"github.com/tinytelemetry/starboard/internal/counter"
	"github.com/tinytelemetry/starboard/internal/model"
)

// Poller refreshes a counter.Store from a Fetcher on a fixed interval.
// Requests never overlap: a slow fetch delays the next tick.
type Poller struct {
	fetcher  Fetcher
	store    *counter.Store
	interval time.Duration
	timeout  time.Duration
}

// NewPoller creates a poller. Non-positive durations use the defaults.
func NewPoller(fetcher Fetcher, store *counter.Store, interval, timeout time.Duration) *Poller {
	if interval <= 0 {
		interval = model.DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = model.DefaultRequestTimeout
	}
	return &Poller{
		fetcher:  fetcher,
		store:    store,
		interval: interval,
		timeout:  timeout,
	}
}

// Run polls once immediately and then on every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			p.Tick(ctx)
		}
	}
}

// Tick performs one fetch. Failures are logged and leave the store as is.
func (p *Poller) Tick(ctx context.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	n, err := p.fetcher.FetchCount(reqCtx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("stars: fetch failed: %v", err)
		}
		return
	}
	if p.store.Apply(n) {
		s := p.store.Snapshot()
		log.Printf("stars: count changed %d -> %d", s.Previous, s.Current)
	}
}
