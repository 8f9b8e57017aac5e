// =====================================
// File: internal/source/jupiter_test.go
// =====================================
package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memelab/token-radar/internal/token"
)

func TestDecodeJupiterRecentRow(t *testing.T) {
	row := rawFromJSON(t, `{
		"id": "`+mintBONK+`",
		"name": "Bonk",
		"symbol": "BONK",
		"icon": "https://img/bonk.png",
		"usdPrice": 0.0000164,
		"mcap": 1200000,
		"liquidity": 350000,
		"bondingCurve": 93,
		"stats24h": {"buyVolume": 60000, "sellVolume": 30000},
		"firstPool": {"createdAt": "2024-01-15T10:30:00Z"}
	}`)

	tok, ok := decodeJupiter(row)
	require.True(t, ok)
	assert.Equal(t, mintBONK, tok.Mint)
	assert.Equal(t, 90000.0, tok.Volume24h, "24h volume is buy plus sell")
	assert.Equal(t, 0.93, tok.BondingProgress)
	assert.False(t, tok.CreatedAt.IsZero(), "creation time falls back to the first pool")
	assert.False(t, tok.IsMigrated)
}

func TestDecodeJupiterGraduationSignals(t *testing.T) {
	byPool := rawFromJSON(t, `{"id":"`+mintBONK+`","graduatedPool":"pool123"}`)
	tok, ok := decodeJupiter(byPool)
	require.True(t, ok)
	assert.True(t, tok.IsMigrated)
	assert.Equal(t, "pool123", tok.PoolAddress)

	byTime := rawFromJSON(t, `{"id":"`+mintBONK+`","graduatedAt":"2024-01-15T10:30:00Z"}`)
	tok, ok = decodeJupiter(byTime)
	require.True(t, ok)
	assert.True(t, tok.IsMigrated)
	assert.False(t, tok.MigratedAt.IsZero())
}

func TestJupiterAPIKeyHeader(t *testing.T) {
	withKey := NewJupiter(testDeps(t), "secret")
	cands := withKey.candidates(token.StatusNew)
	require.NotEmpty(t, cands)
	assert.Equal(t, "secret", cands[0].Headers["x-api-key"])

	without := NewJupiter(testDeps(t), "")
	cands = without.candidates(token.StatusNew)
	require.NotEmpty(t, cands)
	assert.Nil(t, cands[0].Headers)
}
