// ====================================
// File: internal/aggregator/service.go
// ====================================

// Package aggregator fans a token list query out across the registered
// source adapters, reconciles migration/bonding semantics between them
// and merges the results into the shape the dashboard consumes.
package aggregator

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/memelab/token-radar/internal/source"
	"github.com/memelab/token-radar/internal/token"
)

// PriceSource supplies the SOL/USD rate for the market-cap progress
// fallback.
type PriceSource interface {
	SOLPriceUSD(ctx context.Context) float64
}

// Service is the aggregation and merge layer. Adapters are injected at
// startup; there is no module-level shared state.
type Service struct {
	mu       sync.RWMutex
	adapters map[token.Protocol]source.Adapter

	// resolveOrder lists the adapters consulted for single-token detail
	// lookups, strongest data first.
	resolveOrder []token.Protocol

	price          PriceSource
	curveTargetSOL float64
	logger         *zap.Logger
}

func New(price PriceSource, curveTargetSOL float64, logger *zap.Logger) *Service {
	return &Service{
		adapters:       make(map[token.Protocol]source.Adapter),
		resolveOrder:   []token.Protocol{token.ProtocolGeckoTerminal, token.ProtocolDexScreener},
		price:          price,
		curveTargetSOL: curveTargetSOL,
		logger:         logger.Named("aggregator"),
	}
}

// Register adds an adapter. Duplicate registration is a wiring bug.
func (s *Service) Register(a source.Adapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := a.Protocol()
	if _, exists := s.adapters[p]; exists {
		return fmt.Errorf("adapter %s already registered", p)
	}
	s.adapters[p] = a
	s.logger.Info("adapter registered", zap.String("protocol", string(p)))
	return nil
}

// Protocols returns the registered protocol names.
func (s *Service) Protocols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.adapters))
	for p := range s.adapters {
		names = append(names, string(p))
	}
	return names
}

// FetchTokensByProtocols fans out one fetch per requested protocol and
// merges the settled results. A failing or unknown source only shrinks
// the merged list; it never aborts the request.
func (s *Service) FetchTokensByProtocols(ctx context.Context, protocols []string, status token.Status) []token.Token {
	adapters := s.selectAdapters(protocols)
	if len(adapters) == 0 {
		return []token.Token{}
	}

	var mu sync.Mutex
	merged := make([]token.Token, 0, 64)

	g, gCtx := errgroup.WithContext(ctx)
	for _, a := range adapters {
		g.Go(func() error {
			tokens := a.Fetch(gCtx, status)
			if len(tokens) == 0 {
				return nil
			}
			tagged := s.tag(tokens, a, status)
			mu.Lock()
			merged = append(merged, tagged...)
			mu.Unlock()
			return nil
		})
	}
	// Adapters never return errors; Wait only synchronizes the fan-out.
	_ = g.Wait()

	solPrice := s.price.SOLPriceUSD(ctx)
	for i := range merged {
		s.ensureProgress(&merged[i], solPrice)
	}

	return filterByStatus(merged, status)
}

// ResolveToken looks up a single token for the detail page, consulting
// resolvers in preference order.
func (s *Service) ResolveToken(ctx context.Context, chain, address string) (token.Token, bool) {
	s.mu.RLock()
	resolvers := make([]source.Resolver, 0, len(s.resolveOrder))
	for _, p := range s.resolveOrder {
		if r, ok := s.adapters[p].(source.Resolver); ok {
			resolvers = append(resolvers, r)
		}
	}
	s.mu.RUnlock()

	for _, r := range resolvers {
		if t, ok := r.Resolve(ctx, chain, address); ok {
			s.ensureProgress(&t, s.price.SOLPriceUSD(ctx))
			return t, true
		}
	}
	return token.Token{}, false
}

func (s *Service) selectAdapters(protocols []string) []source.Adapter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(protocols) == 0 {
		all := make([]source.Adapter, 0, len(s.adapters))
		for _, a := range s.adapters {
			all = append(all, a)
		}
		return all
	}

	selected := make([]source.Adapter, 0, len(protocols))
	seen := make(map[token.Protocol]bool, len(protocols))
	for _, name := range protocols {
		p, ok := token.NormalizeProtocol(name)
		if !ok {
			s.logger.Debug("unknown protocol requested", zap.String("protocol", name))
			continue
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		if a, ok := s.adapters[p]; ok {
			selected = append(selected, a)
		}
	}
	return selected
}

// tag stamps provenance and applies the graduated-endpoint rule: when the
// endpoint itself serves only migrated tokens, that identity overrides
// whatever the per-field decoding concluded.
func (s *Service) tag(tokens []token.Token, a source.Adapter, status token.Status) []token.Token {
	forceMigrated := a.MigratedOnly(status)
	for i := range tokens {
		tokens[i].Protocol = a.Protocol()
		if forceMigrated {
			tokens[i].IsMigrated = true
			tokens[i].BondingProgress = 1.0
		}
	}
	return tokens
}

// ensureProgress pins migrated tokens to exactly 1.0 and fills missing
// progress from the fallback chain: explicit value, then SOL-reserve
// ratio against the curve target, then market-cap ratio against the
// target's USD value at the current SOL price.
func (s *Service) ensureProgress(t *token.Token, solPrice float64) {
	if t.IsMigrated {
		t.BondingProgress = 1.0
		return
	}

	p := t.BondingProgress
	if p <= 0 {
		switch {
		case t.SOLReserves > 0 && s.curveTargetSOL > 0:
			p = t.SOLReserves / s.curveTargetSOL
		case t.MarketCap > 0 && s.curveTargetSOL > 0 && solPrice > 0:
			p = t.MarketCap / (s.curveTargetSOL * solPrice)
		}
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	t.BondingProgress = p
}

func filterByStatus(tokens []token.Token, status token.Status) []token.Token {
	filtered := make([]token.Token, 0, len(tokens))

	switch status {
	case token.StatusMigrated:
		for _, t := range tokens {
			if t.IsMigrated {
				filtered = append(filtered, t)
			}
		}
		token.SortByMigratedDesc(filtered)

	case token.StatusFinalStretch:
		for _, t := range tokens {
			if !t.IsMigrated && t.BondingProgress >= token.FinalStretchFloor && t.BondingProgress < 1.0 {
				filtered = append(filtered, t)
			}
		}
		token.SortByCreatedDesc(filtered)

	case token.StatusNew:
		for _, t := range tokens {
			if !t.IsMigrated && t.BondingProgress < token.FinalStretchFloor {
				filtered = append(filtered, t)
			}
		}
		token.SortByCreatedDesc(filtered)

	default:
		filtered = append(filtered, tokens...)
		token.SortByCreatedDesc(filtered)
	}

	return filtered
}
