// =================================
// File: internal/trading/jupiter.go
// =================================
package trading

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/memelab/token-radar/internal/fetch"
	"github.com/memelab/token-radar/internal/token"
)

const jupiterSwapAPI = "https://lite-api.jup.ag/swap/v1"

// SwapParams describes one swap request from the trading panel.
type SwapParams struct {
	InputMint     string
	OutputMint    string
	Amount        uint64 // raw units of the input mint
	SlippageBps   int
	UserPublicKey string
}

// SwapResult mirrors the panel contract: the call itself never fails,
// failures travel inside the result.
type SwapResult struct {
	Success   bool   `json:"success"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SwapClient quotes and executes swaps through Jupiter, delegating
// signing to the injected provider.
type SwapClient struct {
	client      *fetch.Client
	signer      Signer
	timeout     time.Duration
	apiKey      string
	defaultUser string
	logger      *zap.Logger
}

func NewSwapClient(client *fetch.Client, signer Signer, timeout time.Duration, apiKey string, logger *zap.Logger) *SwapClient {
	return &SwapClient{
		client:  client,
		signer:  signer,
		timeout: timeout,
		apiKey:  apiKey,
		logger:  logger.Named("swap"),
	}
}

// SetDefaultUser sets the wallet address used when a swap request does
// not name one, typically the local wallet's own key.
func (c *SwapClient) SetDefaultUser(publicKey string) {
	c.defaultUser = publicKey
}

// ExecuteSwap runs quote -> build -> sign-and-send and reports the
// outcome in-band.
func (c *SwapClient) ExecuteSwap(ctx context.Context, params SwapParams) SwapResult {
	if !token.ValidMint(params.InputMint) || !token.ValidMint(params.OutputMint) {
		return SwapResult{Error: "invalid mint address"}
	}
	if params.Amount == 0 {
		return SwapResult{Error: "amount must be positive"}
	}
	if params.UserPublicKey == "" {
		params.UserPublicKey = c.defaultUser
	}
	if params.UserPublicKey == "" {
		return SwapResult{Error: "missing user public key"}
	}

	quote, err := c.quote(ctx, params)
	if err != nil {
		c.logger.Warn("quote failed", zap.Error(err))
		return SwapResult{Error: fmt.Sprintf("quote: %v", err)}
	}

	unsignedTx, err := c.buildSwap(ctx, quote, params.UserPublicKey)
	if err != nil {
		c.logger.Warn("swap build failed", zap.Error(err))
		return SwapResult{Error: fmt.Sprintf("build: %v", err)}
	}

	sig, err := c.signer.SignAndSendTransaction(ctx, unsignedTx)
	if err != nil {
		c.logger.Warn("sign-and-send failed", zap.Error(err))
		return SwapResult{Error: fmt.Sprintf("sign: %v", err)}
	}

	c.logger.Info("swap submitted",
		zap.String("signature", sig.String()),
		zap.String("input", params.InputMint),
		zap.String("output", params.OutputMint))
	return SwapResult{Success: true, Signature: sig.String()}
}

func (c *SwapClient) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"x-api-key": c.apiKey}
}

func (c *SwapClient) quote(ctx context.Context, params SwapParams) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/quote?inputMint=%s&outputMint=%s&amount=%d&slippageBps=%d",
		jupiterSwapAPI, params.InputMint, params.OutputMint, params.Amount, params.SlippageBps)

	out := c.client.Get(ctx, url, c.timeout, c.headers())
	if !out.OK() {
		return nil, outcomeErr(out)
	}
	return json.RawMessage(out.Body), nil
}

func outcomeErr(out fetch.Outcome) error {
	if out.Err != nil {
		return fmt.Errorf("%s: %w", out.Kind, out.Err)
	}
	return fmt.Errorf("empty response")
}

func (c *SwapClient) buildSwap(ctx context.Context, quote json.RawMessage, userPublicKey string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"quoteResponse": quote,
		"userPublicKey": userPublicKey,
	})
	if err != nil {
		return "", fmt.Errorf("marshal swap request: %w", err)
	}

	out := c.client.Post(ctx, jupiterSwapAPI+"/swap", body, c.timeout, c.headers())
	if !out.OK() {
		return "", outcomeErr(out)
	}

	var resp struct {
		SwapTransaction string `json:"swapTransaction"`
	}
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decode swap response: %w", err)
	}
	if resp.SwapTransaction == "" {
		return "", fmt.Errorf("swap response missing transaction")
	}
	return resp.SwapTransaction, nil
}
