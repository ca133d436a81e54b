// Package probe runs the background warehouse liveness check. It is not in
// the tile request path; it only drives the readiness gauge and logs
// connectivity transitions.
package probe

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vectile/internal/metrics"
)

// Pinger is the minimal warehouse surface the prober needs. *db.Pool
// satisfies this.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Prober struct {
	log      zerolog.Logger
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	metrics  *metrics.Metrics

	up bool
}

type Options struct {
	Interval time.Duration
	Timeout  time.Duration
}

func New(log zerolog.Logger, pinger Pinger, opts Options, m *metrics.Metrics) *Prober {
	interval := opts.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Prober{
		log:      log,
		pinger:   pinger,
		interval: interval,
		timeout:  timeout,
		metrics:  m,
		up:       true,
	}
}

// Run pings the warehouse until ctx is canceled. One check fires immediately
// so the gauge is meaningful right after startup.
func (p *Prober) Run(ctx context.Context) {
	p.check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.check(ctx)
		}
	}
}

func (p *Prober) check(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.pinger.Ping(cctx)
	up := err == nil
	p.metrics.SetWarehouseUp(up)

	if up != p.up {
		if up {
			p.log.Info().Msg("warehouse reachable again")
		} else {
			p.log.Warn().Err(err).Msg("warehouse unreachable")
		}
	}
	p.up = up
}
