// ===============================
// File: internal/source/source.go
// ===============================

// Package source contains one adapter per upstream data vendor. Every
// adapter owns its TTL cache and dedupe group, never returns an error at
// its public boundary, and normalizes the vendor payload into the common
// token record.
package source

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/memelab/token-radar/internal/cache"
	"github.com/memelab/token-radar/internal/fetch"
	"github.com/memelab/token-radar/internal/token"
)

// Adapter is the contract the aggregation layer consumes. Fetch resolves
// to an empty slice on any failure; vendor errors never escape.
type Adapter interface {
	Protocol() token.Protocol
	Fetch(ctx context.Context, status token.Status) []token.Token
	// MigratedOnly reports whether the endpoint backing this status serves
	// exclusively graduated tokens. The merge layer treats that as a
	// stronger migration signal than anything inside the payload.
	MigratedOnly(status token.Status) bool
}

// Resolver is implemented by adapters that can look up a single token.
type Resolver interface {
	Resolve(ctx context.Context, chain, address string) (token.Token, bool)
}

// Deps carries the shared plumbing an adapter needs. Cache and dedupe
// instances are created per adapter inside newBase, so nothing is shared
// across vendors.
type Deps struct {
	Client           *fetch.Client
	Selector         *fetch.Selector
	Logger           *zap.Logger
	CacheTTL         time.Duration
	ThrottleInterval time.Duration
	Timeout          time.Duration
	SlowTimeout      time.Duration
}

type base struct {
	selector    *fetch.Selector
	cache       *cache.Store
	group       *cache.Group
	logger      *zap.Logger
	timeout     time.Duration
	slowTimeout time.Duration
}

func newBase(deps Deps, name string) base {
	return base{
		selector:    deps.Selector,
		cache:       cache.NewStore(deps.CacheTTL),
		group:       cache.NewGroup(deps.ThrottleInterval),
		logger:      deps.Logger.Named(name),
		timeout:     deps.Timeout,
		slowTimeout: deps.SlowTimeout,
	}
}

// cachedList serves key from the adapter cache, deduplicating concurrent
// misses so at most one upstream round-trip runs per key. Empty results
// are not cached: a transient upstream failure should not suppress
// retries for a whole TTL window.
func (b *base) cachedList(ctx context.Context, key string, load func(context.Context) []token.Token) []token.Token {
	if cached, ok := b.cache.Get(key); ok {
		return cached
	}

	tokens, err := b.group.Do(ctx, key, func(ctx context.Context) ([]token.Token, error) {
		return load(ctx), nil
	})
	if err != nil {
		b.logger.Debug("fetch aborted", zap.String("key", key), zap.Error(err))
		return nil
	}
	if len(tokens) > 0 {
		b.cache.Set(key, tokens)
	}
	return tokens
}

// selectList runs the candidate fallback chain and decodes each row,
// dropping rows the decoder rejects.
func (b *base) selectList(ctx context.Context, candidates []fetch.Candidate, decode func(token.Raw) (token.Token, bool)) []token.Token {
	out := b.selector.Fetch(ctx, candidates)
	if !out.OK() {
		return nil
	}

	rows, err := token.UnwrapList(out.Body)
	if err != nil {
		b.logger.Debug("unparseable vendor payload", zap.Error(err))
		return nil
	}

	tokens := make([]token.Token, 0, len(rows))
	for _, row := range rows {
		if t, ok := decode(row); ok {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// normalizeProgress maps vendor progress values onto [0,1]. Vendors emit
// both ratios and percentages for the same logical field.
func normalizeProgress(p float64) float64 {
	if p > 1 {
		p /= 100
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// lamportsToSOL converts a raw lamport amount. Which unit a vendor field
// carries is fixed per field, so each decoder converts only the fields
// its vendor documents as lamports. No magnitude guessing: a fresh token
// holds tiny reserves in either unit.
func lamportsToSOL(v float64) float64 {
	return v / 1e9
}
