// ====================================
// File: internal/source/dexscreener.go
// ====================================
package source

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/memelab/token-radar/internal/fetch"
	"github.com/memelab/token-radar/internal/token"
)

const dexScreenerAPI = "https://api.dexscreener.com"

// DexScreener serves two roles: single-token resolution for the detail
// page (its strongest data) and the boosted-token feed for the catch-all
// list. It has no "new tokens" endpoint, so lifecycle statuses resolve to
// nothing here.
type DexScreener struct {
	base
}

func NewDexScreener(deps Deps) *DexScreener {
	return &DexScreener{base: newBase(deps, "dexscreener")}
}

func (d *DexScreener) Protocol() token.Protocol { return token.ProtocolDexScreener }

func (d *DexScreener) MigratedOnly(token.Status) bool { return false }

func (d *DexScreener) Fetch(ctx context.Context, status token.Status) []token.Token {
	if status != token.StatusAny {
		return nil
	}
	return d.cachedList(ctx, "dexscreener:boosted", func(ctx context.Context) []token.Token {
		candidates := []fetch.Candidate{
			{URL: dexScreenerAPI + "/token-boosts/latest/v1", Timeout: d.timeout, Optional: true},
		}
		return d.selectList(ctx, candidates, decodeDexScreenerProfile)
	})
}

// Resolve looks a token up by mint and picks its deepest Solana pair,
// preferring pairs quoted in WSOL the way the dashboard detail page does.
func (d *DexScreener) Resolve(ctx context.Context, chain, address string) (token.Token, bool) {
	if chain != "solana" {
		return token.Token{}, false
	}

	key := "dexscreener:token:" + address
	tokens := d.cachedList(ctx, key, func(ctx context.Context) []token.Token {
		candidates := []fetch.Candidate{
			{URL: fmt.Sprintf("%s/latest/dex/tokens/%s", dexScreenerAPI, address), Timeout: d.timeout},
		}
		pairs := d.selectList(ctx, candidates, decodeDexScreenerPair)
		if best, ok := bestPair(pairs, address); ok {
			return []token.Token{best}
		}
		return nil
	})
	if len(tokens) == 0 {
		return token.Token{}, false
	}
	return tokens[0], true
}

// bestPair keeps pairs whose base token is the requested mint and returns
// the one with the highest USD liquidity.
func bestPair(pairs []token.Token, mint string) (token.Token, bool) {
	var best token.Token
	found := false
	for _, p := range pairs {
		if p.Mint != mint {
			continue
		}
		if !found || p.Liquidity > best.Liquidity {
			best = p
			found = true
		}
	}
	return best, found
}

func decodeDexScreenerPair(row token.Raw) (token.Token, bool) {
	if row.Str("chainId", "chain") != "solana" {
		return token.Token{}, false
	}

	baseToken := row.Sub("baseToken")
	if baseToken == nil {
		return token.Token{}, false
	}
	mint := baseToken.Str("address")
	if mint == "" || !token.ValidMint(mint) {
		return token.Token{}, false
	}

	quote := row.Sub("quoteToken")
	priceSOL := 0.0
	if quote != nil && quote.Str("address") == solana.WrappedSol.String() {
		priceSOL = row.Float("priceNative")
	}

	liquidity := row.Sub("liquidity")
	volume := row.Sub("volume")

	t := token.Token{
		Mint:        mint,
		Chain:       "solana",
		Name:        baseToken.Str("name"),
		Symbol:      baseToken.Str("symbol"),
		PriceSOL:    priceSOL,
		PriceUSD:    row.Float("priceUsd"),
		MarketCap:   row.Float("marketCap", "fdv"),
		CreatedAt:   row.Time("pairCreatedAt"),
		PoolAddress: row.Str("pairAddress"),
		// A listed DEX pair is itself the explicit migration signal.
		IsMigrated: row.Str("pairAddress") != "",
		Protocol:   token.ProtocolDexScreener,
	}
	if info := row.Sub("info"); info != nil {
		t.Image = info.Str("imageUrl")
	}
	if liquidity != nil {
		t.Liquidity = liquidity.Float("usd")
	}
	if volume != nil {
		t.Volume24h = volume.Float("h24")
	}
	return t, true
}

func decodeDexScreenerProfile(row token.Raw) (token.Token, bool) {
	if row.Str("chainId") != "solana" {
		return token.Token{}, false
	}
	mint := row.Str("tokenAddress", "address")
	if mint == "" || !token.ValidMint(mint) {
		return token.Token{}, false
	}
	return token.Token{
		Mint:     mint,
		Chain:    "solana",
		Image:    row.Str("icon", "header"),
		Protocol: token.ProtocolDexScreener,
	}, true
}
