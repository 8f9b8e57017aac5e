// ================================
// File: internal/source/meteora.go
// ================================
package source

import (
	"context"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/memelab/token-radar/internal/fetch"
	"github.com/memelab/token-radar/internal/token"
)

const (
	meteoraDLMMAPI = "https://dlmm-api.meteora.ag"
	meteoraDAMMAPI = "https://damm-api.meteora.ag"
)

// Meteora lists DLMM pairs with the DAMM pool list as fallback. Every
// Meteora pool is a conventional liquidity pool, so tokens seen here are
// always post-migration.
type Meteora struct {
	base
}

func NewMeteora(deps Deps) *Meteora {
	return &Meteora{base: newBase(deps, "meteora")}
}

func (m *Meteora) Protocol() token.Protocol { return token.ProtocolMeteora }

func (m *Meteora) MigratedOnly(token.Status) bool { return true }

func (m *Meteora) Fetch(ctx context.Context, status token.Status) []token.Token {
	if status == token.StatusNew || status == token.StatusFinalStretch {
		return nil
	}
	return m.cachedList(ctx, "meteora:pairs", func(ctx context.Context) []token.Token {
		candidates := []fetch.Candidate{
			{URL: meteoraDLMMAPI + "/pair/all", Timeout: m.slowTimeout},
			{URL: meteoraDAMMAPI + "/pools?page=0&size=100", Timeout: m.timeout},
		}
		return m.selectList(ctx, candidates, decodeMeteoraPair)
	})
}

func decodeMeteoraPair(row token.Raw) (token.Token, bool) {
	wsol := solana.WrappedSol.String()

	mint := row.Str("mint_x", "mintX", "token_a_mint")
	if mint == wsol {
		mint = row.Str("mint_y", "mintY", "token_b_mint")
	}
	if mint == "" || mint == wsol || !token.ValidMint(mint) {
		return token.Token{}, false
	}

	// Pair names look like "WIF-SOL"; keep the token leg.
	name := row.Str("name", "pool_name")
	if i := strings.IndexAny(name, "-/"); i > 0 {
		name = name[:i]
	}

	return token.Token{
		Mint:        mint,
		Chain:       "solana",
		Name:        name,
		Symbol:      name,
		PriceUSD:    row.Float("current_price", "price"),
		Liquidity:   row.Float("liquidity", "pool_tvl", "tvl"),
		Volume24h:   row.Float("trade_volume_24h", "volume_24h", "daily_volume"),
		CreatedAt:   row.Time("created_at", "createdAt", "pool_created_at"),
		PoolAddress: row.Str("address", "pool_address", "poolAddress"),
		IsMigrated:  true,
		MigratedAt:  row.Time("created_at", "createdAt", "pool_created_at"),
		Protocol:    token.ProtocolMeteora,
	}, true
}
