// ============================
// File: internal/price/feed.go
// ============================

// Package price provides the SOL/USD reference rate used by the
// market-cap-based bonding progress fallback. The rate comes from the
// CoinGecko simple price API with a short TTL; when the feed is cold and
// unreachable the configured default applies, so progress estimates
// degrade to the old static behavior instead of failing.
package price

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/memelab/token-radar/internal/fetch"
	"github.com/memelab/token-radar/internal/token"
)

type Feed struct {
	client       *fetch.Client
	baseURL      string
	timeout      time.Duration
	ttl          time.Duration
	defaultPrice float64
	logger       *zap.Logger

	mu     sync.Mutex
	cached float64
	ts     time.Time
	now    func() time.Time
}

func NewFeed(client *fetch.Client, baseURL string, timeout, ttl time.Duration, defaultPrice float64, logger *zap.Logger) *Feed {
	return &Feed{
		client:       client,
		baseURL:      baseURL,
		timeout:      timeout,
		ttl:          ttl,
		defaultPrice: defaultPrice,
		logger:       logger.Named("price"),
		now:          time.Now,
	}
}

// SOLPriceUSD returns the cached rate while fresh, refreshes it when
// stale, and keeps serving the last known (or default) value when the
// upstream is down. It never fails.
func (f *Feed) SOLPriceUSD(ctx context.Context) float64 {
	f.mu.Lock()
	if f.cached > 0 && f.now().Sub(f.ts) < f.ttl {
		cached := f.cached
		f.mu.Unlock()
		return cached
	}
	f.mu.Unlock()

	if fresh, ok := f.refresh(ctx); ok {
		f.mu.Lock()
		f.cached = fresh
		f.ts = f.now()
		f.mu.Unlock()
		return fresh
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached > 0 {
		return f.cached
	}
	return f.defaultPrice
}

func (f *Feed) refresh(ctx context.Context) (float64, bool) {
	url := fmt.Sprintf("%s?ids=solana&vs_currencies=usd", f.baseURL)
	out := f.client.Get(ctx, url, f.timeout, nil)
	if !out.OK() {
		f.logger.Debug("price refresh failed",
			zap.String("kind", out.Kind.String()), zap.Error(out.Err))
		return 0, false
	}

	obj, err := token.UnwrapObject(out.Body)
	if err != nil {
		return 0, false
	}
	sol := obj.Sub("solana")
	if sol == nil {
		return 0, false
	}
	usd := sol.Float("usd")
	if usd <= 0 {
		return 0, false
	}
	return usd, true
}
