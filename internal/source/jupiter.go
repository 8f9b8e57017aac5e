// ================================
// File: internal/source/jupiter.go
// ================================
package source

import (
	"context"

	"github.com/memelab/token-radar/internal/fetch"
	"github.com/memelab/token-radar/internal/token"
)

const (
	jupiterLiteAPI = "https://lite-api.jup.ag"
	jupiterDataAPI = "https://datapi.jup.ag"
)

// Jupiter reads the Data API token lists. Jupiter tracks tokens across
// their whole lifecycle and reports graduation explicitly (graduatedPool
// / graduatedAt), which makes it the cleanest migration signal source.
type Jupiter struct {
	base
	apiKey string
}

func NewJupiter(deps Deps, apiKey string) *Jupiter {
	return &Jupiter{base: newBase(deps, "jupiter"), apiKey: apiKey}
}

func (j *Jupiter) Protocol() token.Protocol { return token.ProtocolJupiter }

func (j *Jupiter) MigratedOnly(token.Status) bool { return false }

func (j *Jupiter) Fetch(ctx context.Context, status token.Status) []token.Token {
	key := "jupiter:" + string(status)
	return j.cachedList(ctx, key, func(ctx context.Context) []token.Token {
		return j.selectList(ctx, j.candidates(status), decodeJupiter)
	})
}

func (j *Jupiter) headers() map[string]string {
	if j.apiKey == "" {
		return nil
	}
	return map[string]string{"x-api-key": j.apiKey}
}

func (j *Jupiter) candidates(status token.Status) []fetch.Candidate {
	if status == token.StatusAny {
		return []fetch.Candidate{
			{URL: jupiterLiteAPI + "/tokens/v2/toptrending/24h", Timeout: j.timeout, Headers: j.headers()},
			{URL: jupiterDataAPI + "/v1/pools/toptrending/24h", Timeout: j.timeout, Headers: j.headers()},
		}
	}
	return []fetch.Candidate{
		{URL: jupiterLiteAPI + "/tokens/v2/recent", Timeout: j.timeout, Headers: j.headers()},
		{URL: jupiterDataAPI + "/v1/pools/recent", Timeout: j.timeout, Headers: j.headers()},
	}
}

func decodeJupiter(row token.Raw) (token.Token, bool) {
	mint := row.Str("id", "address", "mint", "tokenAddress")
	if mint == "" || !token.ValidMint(mint) {
		return token.Token{}, false
	}

	pool := row.Str("graduatedPool", "poolAddress")
	migratedAt := row.Time("graduatedAt", "migratedAt")
	migrated := pool != "" || !migratedAt.IsZero() || row.Bool("graduated", "isMigrated")

	t := token.Token{
		Mint:        mint,
		Chain:       "solana",
		Name:        row.Str("name"),
		Symbol:      row.Str("symbol"),
		Image:       row.Str("icon", "logoURI", "image"),
		PriceUSD:    row.Float("usdPrice", "priceUsd", "price"),
		MarketCap:   row.Float("mcap", "marketCap", "fdv"),
		Liquidity:   row.Float("liquidity", "liquidityUsd"),
		CreatedAt:   row.Time("createdAt", "created_timestamp"),
		IsMigrated:  migrated,
		MigratedAt:  migratedAt,
		PoolAddress: pool,
		Protocol:    token.ProtocolJupiter,
	}
	if stats := row.Sub("stats24h"); stats != nil {
		t.Volume24h = stats.Float("buyVolume") + stats.Float("sellVolume")
	} else {
		t.Volume24h = row.Float("volume24h", "dayVolume")
	}
	if firstPool := row.Sub("firstPool"); firstPool != nil && t.CreatedAt.IsZero() {
		t.CreatedAt = firstPool.Time("createdAt")
	}
	t.BondingProgress = normalizeProgress(row.Float("bondingCurve", "bondingCurveProgress", "progress"))
	return t, true
}
