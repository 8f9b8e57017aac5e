// =============================
// File: internal/token/token.go
// =============================
package token

import (
	"sort"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Protocol identifies the upstream that produced a token record.
type Protocol string

const (
	ProtocolPumpFun       Protocol = "pumpfun"
	ProtocolDexScreener   Protocol = "dexscreener"
	ProtocolGeckoTerminal Protocol = "geckoterminal"
	ProtocolRaydium       Protocol = "raydium"
	ProtocolMeteora       Protocol = "meteora"
	ProtocolMoonit        Protocol = "moonit"
	ProtocolJupiter       Protocol = "jupiter"
)

// NormalizeProtocol maps vendor aliases onto canonical protocol names.
// Moonshot rebranded to Moonit; both spellings appear in the wild.
func NormalizeProtocol(name string) (Protocol, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pumpfun", "pump.fun", "pump":
		return ProtocolPumpFun, true
	case "dexscreener":
		return ProtocolDexScreener, true
	case "geckoterminal", "gecko":
		return ProtocolGeckoTerminal, true
	case "raydium":
		return ProtocolRaydium, true
	case "meteora":
		return ProtocolMeteora, true
	case "moonit", "moonshot":
		return ProtocolMoonit, true
	case "jupiter", "jup":
		return ProtocolJupiter, true
	default:
		return "", false
	}
}

// Status selects which slice of the token lifecycle a list query wants.
type Status string

const (
	StatusAny          Status = ""
	StatusNew          Status = "new"
	StatusFinalStretch Status = "finalStretch"
	StatusMigrated     Status = "migrated"
)

// ParseStatus validates a query-supplied status value.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusAny, StatusNew, StatusFinalStretch, StatusMigrated:
		return Status(s), true
	default:
		return StatusAny, false
	}
}

// FinalStretchFloor is the bonding progress at which a token enters the
// "final stretch" list. Tokens at 1.0 have graduated and belong to "migrated".
const FinalStretchFloor = 0.9

// Token is the common record every adapter normalizes into.
type Token struct {
	Mint  string `json:"mint"`
	Chain string `json:"chain"`

	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Image  string `json:"image,omitempty"`

	PriceSOL  float64 `json:"price"`
	PriceUSD  float64 `json:"priceUsd"`
	MarketCap float64 `json:"marketCap"`
	Volume24h float64 `json:"volume"`
	Liquidity float64 `json:"liquidity"`

	// SOLReserves holds the bonding curve's real SOL reserves when the
	// vendor exposes them; used as a progress fallback signal.
	SOLReserves float64 `json:"solReserves,omitempty"`

	CreatedAt       time.Time `json:"createdTimestamp"`
	IsMigrated      bool      `json:"isMigrated"`
	MigratedAt      time.Time `json:"migrationTimestamp,omitempty"`
	BondingProgress float64   `json:"bondingProgress"`
	PoolAddress     string    `json:"raydiumPool,omitempty"`

	Protocol Protocol `json:"protocol"`
}

// ValidMint reports whether the address is a well-formed Solana public key.
func ValidMint(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}

// lifecycleTime is the timestamp used for "migrated" ordering: migration
// time when known, creation time otherwise.
func (t Token) lifecycleTime() time.Time {
	if !t.MigratedAt.IsZero() {
		return t.MigratedAt
	}
	return t.CreatedAt
}

// SortByCreatedDesc orders tokens newest-first by creation time.
func SortByCreatedDesc(tokens []Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt.After(tokens[j].CreatedAt)
	})
}

// SortByMigratedDesc orders tokens by migration time descending, falling
// back to creation time for records without one.
func SortByMigratedDesc(tokens []Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].lifecycleTime().After(tokens[j].lifecycleTime())
	})
}
