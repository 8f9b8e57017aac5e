// ======================================
// File: internal/source/geckoterminal.go
// ======================================
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/memelab/token-radar/internal/fetch"
	"github.com/memelab/token-radar/internal/token"
)

const geckoTerminalAPI = "https://api.geckoterminal.com/api/v2"

// GeckoTerminal lists freshly created Solana pools and resolves single
// tokens for the detail page. Its payloads use the JSON:API layout, so
// the interesting fields sit under "attributes".
type GeckoTerminal struct {
	base
}

func NewGeckoTerminal(deps Deps) *GeckoTerminal {
	return &GeckoTerminal{base: newBase(deps, "geckoterminal")}
}

func (g *GeckoTerminal) Protocol() token.Protocol { return token.ProtocolGeckoTerminal }

// MigratedOnly: every pool GeckoTerminal indexes is a live DEX pool, so
// any token surfacing here has already left its bonding curve.
func (g *GeckoTerminal) MigratedOnly(token.Status) bool { return true }

func (g *GeckoTerminal) Fetch(ctx context.Context, status token.Status) []token.Token {
	if status == token.StatusNew || status == token.StatusFinalStretch {
		// Pre-graduation tokens never appear here.
		return nil
	}
	return g.cachedList(ctx, "geckoterminal:new_pools", func(ctx context.Context) []token.Token {
		candidates := []fetch.Candidate{
			{URL: geckoTerminalAPI + "/networks/solana/new_pools?page=1", Timeout: g.timeout},
			{URL: geckoTerminalAPI + "/networks/solana/trending_pools?page=1", Timeout: g.timeout},
		}
		return g.selectList(ctx, candidates, decodeGeckoPool)
	})
}

// Resolve fetches /networks/{network}/tokens/{address}.
func (g *GeckoTerminal) Resolve(ctx context.Context, chain, address string) (token.Token, bool) {
	network := chain
	if network == "" {
		network = "solana"
	}

	key := fmt.Sprintf("geckoterminal:token:%s:%s", network, address)
	tokens := g.cachedList(ctx, key, func(ctx context.Context) []token.Token {
		out := g.selector.Fetch(ctx, []fetch.Candidate{
			{URL: fmt.Sprintf("%s/networks/%s/tokens/%s", geckoTerminalAPI, network, address), Timeout: g.timeout},
		})
		if !out.OK() {
			return nil
		}
		obj, err := token.UnwrapObject(out.Body)
		if err != nil {
			g.logger.Debug("unparseable token payload")
			return nil
		}
		if t, ok := decodeGeckoToken(obj, network); ok {
			return []token.Token{t}
		}
		return nil
	})
	if len(tokens) == 0 {
		return token.Token{}, false
	}
	return tokens[0], true
}

func decodeGeckoPool(row token.Raw) (token.Token, bool) {
	attrs := row.Sub("attributes")
	if attrs == nil {
		return token.Token{}, false
	}

	// The base token mint hides in relationships.base_token.data.id as
	// "solana_<mint>"; fall back to the pool address when absent.
	mint := ""
	if rel := row.Sub("relationships"); rel != nil {
		if bt := rel.Sub("base_token"); bt != nil {
			if data := bt.Sub("data"); data != nil {
				id := data.Str("id")
				if i := strings.IndexByte(id, '_'); i >= 0 {
					mint = id[i+1:]
				}
			}
		}
	}
	if mint == "" || !token.ValidMint(mint) {
		return token.Token{}, false
	}

	name := attrs.Str("name")
	if i := strings.Index(name, " / "); i > 0 {
		name = name[:i]
	}

	return token.Token{
		Mint:        mint,
		Chain:       "solana",
		Name:        name,
		Symbol:      name,
		PriceUSD:    attrs.Float("base_token_price_usd", "token_price_usd"),
		MarketCap:   attrs.Float("market_cap_usd", "fdv_usd"),
		Liquidity:   attrs.Float("reserve_in_usd"),
		CreatedAt:   attrs.Time("pool_created_at"),
		PoolAddress: attrs.Str("address"),
		IsMigrated:  true,
		MigratedAt:  attrs.Time("pool_created_at"),
		Protocol:    token.ProtocolGeckoTerminal,
	}, true
}

func decodeGeckoToken(obj token.Raw, network string) (token.Token, bool) {
	attrs := obj.Sub("attributes")
	if attrs == nil {
		return token.Token{}, false
	}
	mint := attrs.Str("address")
	if mint == "" {
		return token.Token{}, false
	}

	t := token.Token{
		Mint:      mint,
		Chain:     network,
		Name:      attrs.Str("name"),
		Symbol:    attrs.Str("symbol"),
		Image:     attrs.Str("image_url"),
		PriceUSD:  attrs.Float("price_usd"),
		MarketCap: attrs.Float("market_cap_usd", "fdv_usd"),
		Liquidity: attrs.Float("total_reserve_in_usd"),
		Protocol:  token.ProtocolGeckoTerminal,
	}
	if vol := attrs.Sub("volume_usd"); vol != nil {
		t.Volume24h = vol.Float("h24")
	}
	return t, true
}
