// ================================
// File: internal/trading/signer.go
// ================================

// Package trading holds the thin trading-panel surface: the custodial
// signer contract and the Jupiter swap client. Key custody and signature
// production are entirely the signing provider's concern; this package
// only moves serialized transactions across that boundary.
package trading

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Signer is the custodial wallet provider contract. Transactions cross
// the boundary base64-encoded, exactly as the swap API emits them.
type Signer interface {
	// SignTransaction returns the signed transaction, still serialized.
	SignTransaction(ctx context.Context, unsignedTxBase64 string) (string, error)
	// SignAndSendTransaction signs and submits in one provider round-trip.
	SignAndSendTransaction(ctx context.Context, unsignedTxBase64 string) (solana.Signature, error)
}
