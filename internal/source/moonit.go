// ===============================
// File: internal/source/moonit.go
// ===============================
package source

import (
	"context"

	"github.com/memelab/token-radar/internal/fetch"
	"github.com/memelab/token-radar/internal/token"
)

const (
	moonshotAPI = "https://api.moonshot.cc"
	moonitAPI   = "https://api.moonit.com"
)

// Moonit (formerly Moonshot) runs its own bonding curve launchpad. Both
// hostnames stay in the candidate list because the rebrand left the old
// API serving the same data under slightly different field names.
type Moonit struct {
	base
}

func NewMoonit(deps Deps) *Moonit {
	return &Moonit{base: newBase(deps, "moonit")}
}

func (m *Moonit) Protocol() token.Protocol { return token.ProtocolMoonit }

func (m *Moonit) MigratedOnly(token.Status) bool { return false }

func (m *Moonit) Fetch(ctx context.Context, status token.Status) []token.Token {
	key := "moonit:" + string(status)
	return m.cachedList(ctx, key, func(ctx context.Context) []token.Token {
		return m.selectList(ctx, m.candidates(status), decodeMoonit)
	})
}

func (m *Moonit) candidates(status token.Status) []fetch.Candidate {
	if status == token.StatusAny {
		// Featured is enrichment only and its backend flaps; a 5xx there
		// should cost nothing.
		return []fetch.Candidate{
			{URL: moonitAPI + "/tokens/v1/featured/solana", Timeout: m.timeout, Optional: true},
			{URL: moonshotAPI + "/tokens/v1/featured/solana", Timeout: m.timeout, Optional: true},
		}
	}
	return []fetch.Candidate{
		{URL: moonitAPI + "/tokens/v1/latest/solana", Timeout: m.timeout},
		{URL: moonshotAPI + "/tokens/v1/latest/solana", Timeout: m.timeout},
	}
}

func decodeMoonit(row token.Raw) (token.Token, bool) {
	mint := row.Str("tokenAddress", "address", "mint", "baseAddress")
	if mint == "" || !token.ValidMint(mint) {
		return token.Token{}, false
	}

	pool := row.Str("pairAddress", "poolAddress", "dexPair")
	migratedAt := row.Time("migratedAt", "graduatedAt", "migrationTimestamp")
	migrated := row.Bool("migrated", "isMigrated", "graduated") || pool != "" || !migratedAt.IsZero()

	t := token.Token{
		Mint:        mint,
		Chain:       row.Str("chainId", "chain"),
		Name:        row.Str("name", "tokenName"),
		Symbol:      row.Str("symbol", "ticker"),
		Image:       row.Str("imageUrl", "imageUri", "icon", "profileImageUrl"),
		PriceUSD:    row.Float("priceUsd", "price"),
		MarketCap:   row.Float("marketCapUsd", "marketCap", "mcap"),
		Volume24h:   row.Float("volumeUsd24h", "volume24h", "dayVolume"),
		Liquidity:   row.Float("liquidityUsd", "liquidity"),
		CreatedAt:   row.Time("createdAt", "created_timestamp", "listedAt"),
		IsMigrated:  migrated,
		MigratedAt:  migratedAt,
		PoolAddress: pool,
		Protocol:    token.ProtocolMoonit,
	}
	if t.Chain == "" {
		t.Chain = "solana"
	}
	t.BondingProgress = normalizeProgress(
		row.Float("progress", "curvePosition", "bondingCurveProgress"))
	return t, true
}
