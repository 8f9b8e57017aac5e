// ================================
// File: internal/source/raydium.go
// ================================
package source

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/memelab/token-radar/internal/fetch"
	"github.com/memelab/token-radar/internal/token"
)

const (
	raydiumPoolAPI      = "https://api-v3.raydium.io"
	raydiumLaunchpadAPI = "https://launch-mint-v1.raydium.io"
	raydiumPageSize     = 100
)

// Raydium covers both sides of the graduation boundary: the LaunchLab
// mint list for tokens still on their curve and the AMM pool list for
// tokens that have migrated.
type Raydium struct {
	base
}

func NewRaydium(deps Deps) *Raydium {
	return &Raydium{base: newBase(deps, "raydium")}
}

func (r *Raydium) Protocol() token.Protocol { return token.ProtocolRaydium }

// MigratedOnly: an AMM pool listing is definitionally post-migration;
// launchpad rows are not.
func (r *Raydium) MigratedOnly(status token.Status) bool {
	return status == token.StatusMigrated || status == token.StatusAny
}

func (r *Raydium) Fetch(ctx context.Context, status token.Status) []token.Token {
	switch status {
	case token.StatusNew, token.StatusFinalStretch:
		return r.cachedList(ctx, "raydium:launchpad", func(ctx context.Context) []token.Token {
			candidates := []fetch.Candidate{
				{
					URL: fmt.Sprintf("%s/get/list?sort=new&size=%d&includeNsfw=false",
						raydiumLaunchpadAPI, raydiumPageSize),
					Timeout: r.timeout,
				},
			}
			return r.selectList(ctx, candidates, decodeRaydiumLaunchpad)
		})
	default:
		return r.cachedList(ctx, "raydium:pools", func(ctx context.Context) []token.Token {
			candidates := []fetch.Candidate{
				{
					URL: fmt.Sprintf("%s/pools/info/list?poolType=all&poolSortField=default&sortType=desc&pageSize=%d&page=1",
						raydiumPoolAPI, raydiumPageSize),
					Timeout: r.timeout,
				},
			}
			return r.selectList(ctx, candidates, decodeRaydiumPool)
		})
	}
}

// decodeRaydiumPool flattens an AMM pool row onto the non-WSOL side.
func decodeRaydiumPool(row token.Raw) (token.Token, bool) {
	mintA := row.Sub("mintA")
	mintB := row.Sub("mintB")
	if mintA == nil || mintB == nil {
		return token.Token{}, false
	}

	side := mintA
	if side.Str("address") == solana.WrappedSol.String() {
		side = mintB
	}
	mint := side.Str("address")
	if mint == "" || mint == solana.WrappedSol.String() || !token.ValidMint(mint) {
		return token.Token{}, false
	}

	t := token.Token{
		Mint:        mint,
		Chain:       "solana",
		Name:        side.Str("name"),
		Symbol:      side.Str("symbol"),
		Image:       side.Str("logoURI", "logoUri", "icon"),
		PriceUSD:    row.Float("price"),
		Liquidity:   row.Float("tvl", "liquidity"),
		CreatedAt:   row.Time("openTime", "poolOpenTime"),
		PoolAddress: row.Str("id", "poolId", "ammId"),
		IsMigrated:  true,
		MigratedAt:  row.Time("openTime", "poolOpenTime"),
		Protocol:    token.ProtocolRaydium,
	}
	if day := row.Sub("day"); day != nil {
		t.Volume24h = day.Float("volume")
	}
	return t, true
}

func decodeRaydiumLaunchpad(row token.Raw) (token.Token, bool) {
	mint := row.Str("mint", "mintAddress", "address")
	if mint == "" || !token.ValidMint(mint) {
		return token.Token{}, false
	}

	pool := row.Str("migrateAmmId", "ammId", "poolId")
	migrated := row.Bool("migrated", "finishingRate_complete") || pool != ""

	// solRaised is denominated in SOL; the on-chain reserve fields are
	// lamports.
	solReserves, ok := row.FloatOK("solRaised")
	if !ok {
		solReserves = lamportsToSOL(row.Float("realQuoteReserves", "quoteReserves"))
	}

	t := token.Token{
		Mint:        mint,
		Chain:       "solana",
		Name:        row.Str("name"),
		Symbol:      row.Str("symbol"),
		Image:       row.Str("imgUrl", "imageUrl", "logo"),
		PriceUSD:    row.Float("priceUsd", "price"),
		MarketCap:   row.Float("marketCap", "mcap"),
		Volume24h:   row.Float("volumeU", "volume24h"),
		SOLReserves: solReserves,
		CreatedAt:   row.Time("createAt", "createdAt", "openTime"),
		IsMigrated:  migrated,
		PoolAddress: pool,
		Protocol:    token.ProtocolRaydium,
	}
	// LaunchLab reports completion as a 0-100 "finishing rate".
	t.BondingProgress = normalizeProgress(row.Float("finishingRate", "progress", "bondingCurveProgress"))
	return t, true
}
