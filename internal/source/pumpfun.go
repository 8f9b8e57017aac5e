// ================================
// File: internal/source/pumpfun.go
// ================================
package source

import (
	"context"
	"fmt"

	"github.com/memelab/token-radar/internal/fetch"
	"github.com/memelab/token-radar/internal/token"
)

const (
	pumpFrontendAPI = "https://frontend-api-v3.pump.fun"
	pumpAdvancedAPI = "https://advanced-api-v2.pump.fun"
	pumpPageSize    = 50
)

// PumpFun reads the pump.fun frontend API with the advanced API as a
// fallback host. The two hosts disagree on field names for the same
// logical data, which is what the alias-ordered decoding absorbs.
type PumpFun struct {
	base
}

func NewPumpFun(deps Deps) *PumpFun {
	return &PumpFun{base: newBase(deps, "pumpfun")}
}

func (p *PumpFun) Protocol() token.Protocol { return token.ProtocolPumpFun }

// MigratedOnly: the completed-coins endpoint serves graduated tokens
// exclusively, so a "migrated" query carries endpoint-level certainty.
func (p *PumpFun) MigratedOnly(status token.Status) bool {
	return status == token.StatusMigrated
}

func (p *PumpFun) Fetch(ctx context.Context, status token.Status) []token.Token {
	key := "pumpfun:" + string(status)
	return p.cachedList(ctx, key, func(ctx context.Context) []token.Token {
		return p.selectList(ctx, p.candidates(status), decodePumpFun)
	})
}

func (p *PumpFun) candidates(status token.Status) []fetch.Candidate {
	if status == token.StatusMigrated {
		return []fetch.Candidate{
			{
				URL: fmt.Sprintf("%s/coins?offset=0&limit=%d&sort=last_trade_timestamp&order=DESC&includeNsfw=false&complete=true",
					pumpFrontendAPI, pumpPageSize),
				Timeout: p.timeout,
			},
			{
				// The advanced API is slower but keeps serving when the
				// frontend host sheds load.
				URL:     fmt.Sprintf("%s/coins/graduated?limit=%d", pumpAdvancedAPI, pumpPageSize),
				Timeout: p.slowTimeout,
			},
		}
	}

	return []fetch.Candidate{
		{
			URL: fmt.Sprintf("%s/coins?offset=0&limit=%d&sort=created_timestamp&order=DESC&includeNsfw=false",
				pumpFrontendAPI, pumpPageSize),
			Timeout: p.timeout,
		},
		{
			URL:     fmt.Sprintf("%s/coins/list?sortBy=creationTime&limit=%d", pumpAdvancedAPI, pumpPageSize),
			Timeout: p.slowTimeout,
		},
	}
}

func decodePumpFun(row token.Raw) (token.Token, bool) {
	mint := row.Str("mint", "address", "coinMint", "tokenAddress")
	if mint == "" || !token.ValidMint(mint) {
		return token.Token{}, false
	}

	pool := row.Str("raydium_pool", "raydiumPool", "pump_swap_pool", "pumpSwapPool", "pool_address", "poolAddress")
	migratedAt := row.Time("migration_timestamp", "migrationTimestamp", "graduationDate", "completed_at")

	// Migration comes only from explicit vendor signals: the completion
	// flag, a pool address or a graduation timestamp. Milestones tied to
	// market cap (king of the hill) are not graduation, and tokens dip
	// below the graduation cap after migrating, so cap never counts.
	migrated := row.Bool("complete", "is_complete", "completed", "migrated", "isMigrated") ||
		pool != "" || !migratedAt.IsZero()

	t := token.Token{
		Mint:        mint,
		Chain:       "solana",
		Name:        row.Str("name", "tokenName"),
		Symbol:      row.Str("symbol", "ticker", "tokenSymbol"),
		Image:       row.Str("image_uri", "imageUri", "image", "logo"),
		PriceUSD:    row.Float("price_usd", "priceUsd", "usd_price"),
		MarketCap:   row.Float("usd_market_cap", "usdMarketCap", "market_cap", "marketCap", "mcap"),
		Volume24h:   row.Float("volume_24h", "volume24h", "volume"),
		Liquidity:   row.Float("liquidity", "liquidity_usd", "liquidityUsd"),
		SOLReserves: lamportsToSOL(row.Float("real_sol_reserves", "realSolReserves", "sol_reserves")),
		CreatedAt:   row.Time("created_timestamp", "createdTimestamp", "creationTime", "created_at"),
		IsMigrated:  migrated,
		MigratedAt:  migratedAt,
		PoolAddress: pool,
		Protocol:    token.ProtocolPumpFun,
	}
	t.BondingProgress = normalizeProgress(
		row.Float("bonding_curve_progress", "bondingCurveProgress", "progress", "curveProgress"))
	return t, true
}
