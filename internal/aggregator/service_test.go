// =========================================
// File: internal/aggregator/service_test.go
// =========================================
package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/memelab/token-radar/internal/source"
	"github.com/memelab/token-radar/internal/token"
)

type fakeAdapter struct {
	protocol     token.Protocol
	tokens       []token.Token
	migratedOnly bool
	resolved     *token.Token
}

func (f *fakeAdapter) Protocol() token.Protocol { return f.protocol }

func (f *fakeAdapter) Fetch(ctx context.Context, status token.Status) []token.Token {
	out := make([]token.Token, len(f.tokens))
	copy(out, f.tokens)
	return out
}

func (f *fakeAdapter) MigratedOnly(status token.Status) bool { return f.migratedOnly }

func (f *fakeAdapter) Resolve(ctx context.Context, chain, address string) (token.Token, bool) {
	if f.resolved == nil {
		return token.Token{}, false
	}
	return *f.resolved, true
}

type fixedPrice float64

func (p fixedPrice) SOLPriceUSD(ctx context.Context) float64 { return float64(p) }

func newTestService(t *testing.T, adapters ...source.Adapter) *Service {
	s := New(fixedPrice(137), 69, zaptest.NewLogger(t))
	for _, a := range adapters {
		require.NoError(t, s.Register(a))
	}
	return s
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := New(fixedPrice(137), 69, zaptest.NewLogger(t))
	require.NoError(t, s.Register(&fakeAdapter{protocol: token.ProtocolRaydium}))
	assert.Error(t, s.Register(&fakeAdapter{protocol: token.ProtocolRaydium}))
	assert.ElementsMatch(t, []string{"raydium"}, s.Protocols())
}

func TestFetchMergesAcrossProtocols(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	raydium := &fakeAdapter{
		protocol: token.ProtocolRaydium,
		tokens: []token.Token{
			{Mint: "R1", IsMigrated: true, MigratedAt: base.Add(3 * time.Hour)},
			{Mint: "R2", IsMigrated: true, MigratedAt: base.Add(time.Hour)},
			{Mint: "R3", BondingProgress: 0.5, CreatedAt: base},
		},
	}
	meteora := &fakeAdapter{
		protocol:     token.ProtocolMeteora,
		migratedOnly: true,
		tokens: []token.Token{
			{Mint: "M1", MigratedAt: base.Add(2 * time.Hour)},
			{Mint: "M2", MigratedAt: base.Add(4 * time.Hour)},
		},
	}

	s := newTestService(t, raydium, meteora)
	got := s.FetchTokensByProtocols(context.Background(), []string{"raydium", "meteora"}, token.StatusMigrated)

	require.Len(t, got, 4, "the bonding token must be filtered out")
	assert.Equal(t, []string{"M2", "R1", "M1", "R2"}, mints(got), "migrated sorts newest migration first")
	for _, tok := range got {
		assert.True(t, tok.IsMigrated)
		assert.Equal(t, 1.0, tok.BondingProgress, "migrated tokens pin progress to 1.0")
		switch tok.Mint[0] {
		case 'R':
			assert.Equal(t, token.ProtocolRaydium, tok.Protocol)
		case 'M':
			assert.Equal(t, token.ProtocolMeteora, tok.Protocol)
		}
	}
}

func TestFetchTagsProvenance(t *testing.T) {
	a := &fakeAdapter{protocol: token.ProtocolPumpFun, tokens: []token.Token{{Mint: "A", BondingProgress: 0.2}}}
	s := newTestService(t, a)

	got := s.FetchTokensByProtocols(context.Background(), nil, token.StatusAny)
	require.Len(t, got, 1)
	assert.Equal(t, token.ProtocolPumpFun, got[0].Protocol)
}

func TestMigratedOnlyEndpointOverridesPayload(t *testing.T) {
	// The payload claims the token is still bonding; the endpoint identity
	// says otherwise and wins.
	a := &fakeAdapter{
		protocol:     token.ProtocolMeteora,
		migratedOnly: true,
		tokens:       []token.Token{{Mint: "A", IsMigrated: false, BondingProgress: 0.4}},
	}
	s := newTestService(t, a)

	got := s.FetchTokensByProtocols(context.Background(), nil, token.StatusMigrated)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsMigrated)
	assert.Equal(t, 1.0, got[0].BondingProgress)
}

func TestFinalStretchWindow(t *testing.T) {
	a := &fakeAdapter{protocol: token.ProtocolPumpFun, tokens: []token.Token{
		{Mint: "in", BondingProgress: 0.95},
		{Mint: "floor", BondingProgress: 0.9},
		{Mint: "below", BondingProgress: 0.85},
		{Mint: "done", BondingProgress: 1.0, IsMigrated: true},
	}}
	s := newTestService(t, a)

	got := s.FetchTokensByProtocols(context.Background(), nil, token.StatusFinalStretch)
	assert.ElementsMatch(t, []string{"in", "floor"}, mints(got))

	got = s.FetchTokensByProtocols(context.Background(), nil, token.StatusNew)
	assert.ElementsMatch(t, []string{"below"}, mints(got))
}

func TestProgressFallbackChain(t *testing.T) {
	a := &fakeAdapter{protocol: token.ProtocolPumpFun, tokens: []token.Token{
		{Mint: "explicit", BondingProgress: 0.42},
		{Mint: "reserves", SOLReserves: 34.5},
		{Mint: "mcap", MarketCap: 69 * 137 * 0.25},
		{Mint: "nothing"},
	}}
	s := newTestService(t, a)

	got := s.FetchTokensByProtocols(context.Background(), nil, token.StatusAny)
	require.Len(t, got, 4)

	byMint := map[string]token.Token{}
	for _, tok := range got {
		byMint[tok.Mint] = tok
	}
	assert.InDelta(t, 0.42, byMint["explicit"].BondingProgress, 1e-9)
	assert.InDelta(t, 0.5, byMint["reserves"].BondingProgress, 1e-9, "34.5 of 69 SOL")
	assert.InDelta(t, 0.25, byMint["mcap"].BondingProgress, 1e-9, "market cap against curve target at $137/SOL")
	assert.Zero(t, byMint["nothing"].BondingProgress)
}

func TestProgressClamped(t *testing.T) {
	a := &fakeAdapter{protocol: token.ProtocolPumpFun, tokens: []token.Token{
		{Mint: "over", SOLReserves: 100},
	}}
	s := newTestService(t, a)

	got := s.FetchTokensByProtocols(context.Background(), nil, token.StatusAny)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].BondingProgress)
}

func TestUnknownProtocolSkipped(t *testing.T) {
	a := &fakeAdapter{protocol: token.ProtocolRaydium, tokens: []token.Token{{Mint: "A"}}}
	s := newTestService(t, a)

	got := s.FetchTokensByProtocols(context.Background(), []string{"uniswap"}, token.StatusAny)
	assert.Empty(t, got)

	// Aliases and duplicates normalize onto one adapter.
	got = s.FetchTokensByProtocols(context.Background(), []string{"raydium", "Raydium", "uniswap"}, token.StatusAny)
	assert.Len(t, got, 1)
}

func TestEmptyProtocolListMeansAll(t *testing.T) {
	a := &fakeAdapter{protocol: token.ProtocolRaydium, tokens: []token.Token{{Mint: "A"}}}
	b := &fakeAdapter{protocol: token.ProtocolPumpFun, tokens: []token.Token{{Mint: "B"}}}
	s := newTestService(t, a, b)

	got := s.FetchTokensByProtocols(context.Background(), nil, token.StatusAny)
	assert.ElementsMatch(t, []string{"A", "B"}, mints(got))
}

func TestResolveTokenPreferenceOrder(t *testing.T) {
	resolved := token.Token{Mint: "X", Name: "found", IsMigrated: true}
	gecko := &fakeAdapter{protocol: token.ProtocolGeckoTerminal, resolved: &resolved}
	dex := &fakeAdapter{protocol: token.ProtocolDexScreener, resolved: &token.Token{Mint: "X", Name: "second"}}
	s := newTestService(t, gecko, dex)

	got, ok := s.ResolveToken(context.Background(), "solana", "X")
	require.True(t, ok)
	assert.Equal(t, "found", got.Name)
	assert.Equal(t, 1.0, got.BondingProgress)
}

func TestResolveTokenFallsBack(t *testing.T) {
	gecko := &fakeAdapter{protocol: token.ProtocolGeckoTerminal}
	dex := &fakeAdapter{protocol: token.ProtocolDexScreener, resolved: &token.Token{Mint: "X", Name: "backup"}}
	s := newTestService(t, gecko, dex)

	got, ok := s.ResolveToken(context.Background(), "solana", "X")
	require.True(t, ok)
	assert.Equal(t, "backup", got.Name)

	none := newTestService(t, &fakeAdapter{protocol: token.ProtocolGeckoTerminal})
	_, ok = none.ResolveToken(context.Background(), "solana", "X")
	assert.False(t, ok)
}

func mints(tokens []token.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Mint
	}
	return out
}
