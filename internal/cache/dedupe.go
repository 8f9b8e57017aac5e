// ==============================
// File: internal/cache/dedupe.go
// ==============================
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/memelab/token-radar/internal/token"
)

// Group collapses concurrent identical fetches into one upstream call and
// spaces successive calls per key to stay polite with vendor rate limits.
//
// Dedupe semantics follow singleflight: while a call for a key is in
// flight every additional caller waits for the same result (value or
// error), and the pending entry is dropped as soon as the call settles so
// a failure never poisons the next attempt.
//
// The throttle is a courtesy limit, not a strict one: a caller arriving
// inside the minimum interval waits out the remainder once, it is never
// queued behind other waiters.
type Group struct {
	sf          singleflight.Group
	minInterval time.Duration

	mu   sync.Mutex
	last map[string]time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGroup creates a dedupe group with the given minimum inter-request
// spacing per key. A zero interval disables throttling.
func NewGroup(minInterval time.Duration) *Group {
	return &Group{
		minInterval: minInterval,
		last:        make(map[string]time.Time),
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// Do executes fn for key, deduplicating concurrent calls. The throttle
// delay runs inside the deduplicated section, so piggybacking callers do
// not stack additional waits.
func (g *Group) Do(ctx context.Context, key string, fn func(context.Context) ([]token.Token, error)) ([]token.Token, error) {
	v, err, _ := g.sf.Do(key, func() (any, error) {
		if err := g.waitTurn(ctx, key); err != nil {
			return nil, err
		}
		return fn(ctx)
	})
	if err != nil {
		return nil, err
	}
	tokens, _ := v.([]token.Token)
	return tokens, nil
}

func (g *Group) waitTurn(ctx context.Context, key string) error {
	if g.minInterval <= 0 {
		return nil
	}

	g.mu.Lock()
	elapsed := g.now().Sub(g.last[key])
	remainder := g.minInterval - elapsed
	g.mu.Unlock()

	if remainder > 0 {
		if err := g.sleep(ctx, remainder); err != nil {
			return err
		}
	}

	g.mu.Lock()
	g.last[key] = g.now()
	g.mu.Unlock()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
