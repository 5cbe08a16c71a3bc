package rate

import (
	"context"
	"fmt"
	"time"
)

// Limiter gates outbound API calls so we stay inside Reddit's OAuth quota.
type Limiter interface {
	Wait(ctx context.Context) error
}

// TokenBucket releases a fixed number of tokens per window.
type TokenBucket struct {
	ticker   *time.Ticker
	tokens   chan struct{}
	quit     chan struct{}
	stopDone chan struct{}
}

// NewTokenBucket returns a limiter that releases limit tokens every window,
// evenly spaced. Reddit quotes its quota per minute, so callers usually pass
// time.Minute.
func NewTokenBucket(limit int, window time.Duration) *TokenBucket {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	interval := window / time.Duration(limit)
	if interval <= 0 {
		interval = time.Nanosecond
	}
	tb := &TokenBucket{
		ticker:   time.NewTicker(interval),
		tokens:   make(chan struct{}, limit),
		quit:     make(chan struct{}),
		stopDone: make(chan struct{}),
	}
	// first call never waits
	tb.tokens <- struct{}{}
	go tb.run()
	return tb
}

func (t *TokenBucket) run() {
	defer close(t.stopDone)
	for {
		select {
		case <-t.quit:
			return
		case <-t.ticker.C:
			select {
			case t.tokens <- struct{}{}:
			default:
			}
		}
	}
}

// Wait blocks until a token is available or the context is canceled.
func (t *TokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate wait canceled: %w", ctx.Err())
	case <-t.tokens:
		return nil
	}
}

// Stop releases the ticker and its goroutine. Call it once.
func (t *TokenBucket) Stop() {
	t.ticker.Stop()
	close(t.quit)
	<-t.stopDone
}

// Unlimited never blocks except on a canceled context.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("rate wait canceled: %w", err)
	}
	return nil
}

var (
	_ Limiter = (*TokenBucket)(nil)
	_ Limiter = Unlimited{}
)
