// ================================
// File: internal/trading/wallet.go
// ================================
package trading

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// LocalWallet is the self-custody Signer: it holds a private key in
// process memory and submits through a Solana RPC node. Deployments that
// delegate custody plug a provider-backed Signer in instead.
type LocalWallet struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
	rpc        *rpc.Client
	logger     *zap.Logger
}

func NewLocalWallet(privateKeyBase58, rpcURL string, logger *zap.Logger) (*LocalWallet, error) {
	privateKey, err := solana.PrivateKeyFromBase58(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	return &LocalWallet{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
		rpc:        rpc.New(rpcURL),
		logger:     logger.Named("wallet"),
	}, nil
}

// PublicKey returns the wallet address swaps should be quoted for.
func (w *LocalWallet) PublicKey() solana.PublicKey { return w.publicKey }

func (w *LocalWallet) sign(unsignedTxBase64 string) (*solana.Transaction, error) {
	tx, err := solana.TransactionFromBase64(unsignedTxBase64)
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.publicKey) {
			return &w.privateKey
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return tx, nil
}

func (w *LocalWallet) SignTransaction(ctx context.Context, unsignedTxBase64 string) (string, error) {
	tx, err := w.sign(unsignedTxBase64)
	if err != nil {
		return "", err
	}
	return tx.ToBase64()
}

func (w *LocalWallet) SignAndSendTransaction(ctx context.Context, unsignedTxBase64 string) (solana.Signature, error) {
	tx, err := w.sign(unsignedTxBase64)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := w.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	w.logger.Info("transaction submitted", zap.String("signature", sig.String()))
	return sig, nil
}
