package geomstore

import (
	"context"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
)

// Retrier wraps a Fetcher with a bounded retry and linear backoff. Disabled
// (pass-through) when attempts <= 1, which is the default: a tile request is
// cheap to reissue client-side, so retries are opt-in hardening.
type Retrier struct {
	log      zerolog.Logger
	next     Fetcher
	attempts int
	backoff  time.Duration
}

func NewRetrier(log zerolog.Logger, next Fetcher, attempts int, backoff time.Duration) Fetcher {
	if attempts <= 1 {
		return next
	}
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return &Retrier{log: log, next: next, attempts: attempts, backoff: backoff}
}

func (r *Retrier) FetchIntersecting(ctx context.Context, envelope orb.Polygon, limit int) (FetchResult, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt-1) * r.backoff
			select {
			case <-ctx.Done():
				return FetchResult{}, lastErr
			case <-time.After(wait):
			}
			r.log.Warn().
				Int("attempt", attempt).
				Err(lastErr).
				Msg("retrying warehouse fetch")
		}
		res, err := r.next.FetchIntersecting(ctx, envelope, limit)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return FetchResult{}, lastErr
}
