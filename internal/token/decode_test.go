// ===================================
// File: internal/token/decode_test.go
// ===================================
package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapListShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"mint":"A"},{"mint":"B"}]`, 2},
		{"data envelope", `{"data":[{"mint":"A"}]}`, 1},
		{"coins envelope", `{"coins":[{"mint":"A"}]}`, 1},
		{"pairs envelope", `{"pairs":[{"mint":"A"}]}`, 1},
		{"pools envelope", `{"pools":[{"mint":"A"}]}`, 1},
		{"nested data.rows", `{"data":{"rows":[{"mint":"A"},{"mint":"B"},{"mint":"C"}]}}`, 3},
		{"result envelope", `{"result":[{"mint":"A"}]}`, 1},
		{"empty array", `[]`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := UnwrapList([]byte(tc.body))
			require.NoError(t, err)
			assert.Len(t, rows, tc.want)
		})
	}
}

func TestUnwrapListRejectsUnknownShapes(t *testing.T) {
	for _, body := range []string{``, `null`, `{"something":[1]}`, `"just a string"`, `{"pairs":null}`} {
		_, err := UnwrapList([]byte(body))
		assert.Error(t, err, "body %q", body)
	}
}

func TestUnwrapObject(t *testing.T) {
	obj, err := UnwrapObject([]byte(`{"data":{"mint":"A","name":"alpha"}}`))
	require.NoError(t, err)
	assert.Equal(t, "A", obj.Str("mint"))

	// No envelope means the object itself is the payload.
	obj, err = UnwrapObject([]byte(`{"mint":"B"}`))
	require.NoError(t, err)
	assert.Equal(t, "B", obj.Str("mint"))

	_, err = UnwrapObject([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestRawStrAliasOrder(t *testing.T) {
	r := Raw{"address": "addr", "mint": "mint-wins", "empty": ""}

	assert.Equal(t, "mint-wins", r.Str("mint", "address"))
	assert.Equal(t, "addr", r.Str("missing", "address"))
	// Empty strings do not satisfy an alias.
	assert.Equal(t, "addr", r.Str("empty", "address"))
	assert.Equal(t, "", r.Str("missing"))
}

func TestRawFloatForms(t *testing.T) {
	r := Raw{
		"num":    42.5,
		"quoted": "13.25",
		"junk":   "not a number",
		"null":   nil,
	}

	assert.Equal(t, 42.5, r.Float("num"))
	assert.Equal(t, 13.25, r.Float("quoted"))
	assert.Zero(t, r.Float("junk"))
	// A null or unparsable alias falls through to the next one.
	assert.Equal(t, 42.5, r.Float("null", "junk", "num"))

	_, ok := r.FloatOK("missing")
	assert.False(t, ok)
	v, ok := r.FloatOK("quoted")
	assert.True(t, ok)
	assert.Equal(t, 13.25, v)
}

func TestRawBoolForms(t *testing.T) {
	r := Raw{"flag": true, "num": float64(1), "zero": float64(0), "s": "true"}

	assert.True(t, r.Bool("flag"))
	assert.True(t, r.Bool("num"))
	assert.False(t, r.Bool("zero"))
	assert.True(t, r.Bool("s"))
	assert.False(t, r.Bool("missing"))
}

func TestRawTimeUnits(t *testing.T) {
	r := Raw{
		"seconds": float64(1700000000),
		"millis":  float64(1700000000000),
		"rfc":     "2024-01-15T10:30:00Z",
		"quoted":  "1700000000",
	}

	want := time.Unix(1700000000, 0).UTC()
	assert.Equal(t, want, r.Time("seconds"))
	assert.Equal(t, want, r.Time("millis"))
	assert.Equal(t, want, r.Time("quoted"))
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), r.Time("rfc"))
	assert.True(t, r.Time("missing").IsZero())
}

func TestRawSubAndHas(t *testing.T) {
	r := Raw{
		"attributes": map[string]any{"name": "alpha"},
		"null":       nil,
	}

	sub := r.Sub("attributes")
	require.NotNil(t, sub)
	assert.Equal(t, "alpha", sub.Str("name"))
	assert.Nil(t, r.Sub("missing"))

	assert.True(t, r.Has("attributes"))
	assert.False(t, r.Has("null"))
	assert.False(t, r.Has("missing"))
}

func TestNormalizeProtocolAliases(t *testing.T) {
	cases := map[string]Protocol{
		"pumpfun":       ProtocolPumpFun,
		"Pump.Fun":      ProtocolPumpFun,
		"moonshot":      ProtocolMoonit,
		"moonit":        ProtocolMoonit,
		"geckoterminal": ProtocolGeckoTerminal,
		" raydium ":     ProtocolRaydium,
		"jup":           ProtocolJupiter,
	}
	for name, want := range cases {
		got, ok := NormalizeProtocol(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got)
	}

	_, ok := NormalizeProtocol("uniswap")
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"", "new", "finalStretch", "migrated"} {
		_, ok := ParseStatus(s)
		assert.True(t, ok, s)
	}
	_, ok := ParseStatus("graduated")
	assert.False(t, ok)
}

func TestSortOrders(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tokens := []Token{
		{Mint: "old", CreatedAt: base},
		{Mint: "new", CreatedAt: base.Add(2 * time.Hour)},
		{Mint: "mid", CreatedAt: base.Add(time.Hour)},
	}

	SortByCreatedDesc(tokens)
	assert.Equal(t, []string{"new", "mid", "old"}, mints(tokens))

	migrated := []Token{
		{Mint: "a", CreatedAt: base.Add(3 * time.Hour)},
		{Mint: "b", CreatedAt: base, MigratedAt: base.Add(5 * time.Hour)},
		{Mint: "c", CreatedAt: base, MigratedAt: base.Add(4 * time.Hour)},
	}
	SortByMigratedDesc(migrated)
	// Records without a migration time order by creation time.
	assert.Equal(t, []string{"b", "c", "a"}, mints(migrated))
}

func mints(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Mint
	}
	return out
}

func TestValidMint(t *testing.T) {
	assert.True(t, ValidMint("So11111111111111111111111111111111111111112"))
	assert.False(t, ValidMint("not-a-mint"))
	assert.False(t, ValidMint(""))
}
