// ==============================
// File: internal/fetch/client.go
// ==============================
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxBody rejects payloads above 10MB before parsing; no vendor
// list endpoint legitimately returns more.
const DefaultMaxBody = 10 << 20

// Client issues bounded JSON requests against vendor APIs and converts
// every failure mode into a classified Outcome instead of an error.
type Client struct {
	http    *http.Client
	logger  *zap.Logger
	maxBody int64
}

// NewClient builds a client. The overall deadline per request comes from
// the caller's context; the http.Client itself carries no timeout so that
// per-candidate deadlines stay in one place.
func NewClient(logger *zap.Logger, maxBody int64) *Client {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	return &Client{
		http:    &http.Client{},
		logger:  logger.Named("fetch"),
		maxBody: maxBody,
	}
}

// Get fetches url within timeout and classifies the result.
func (c *Client) Get(ctx context.Context, url string, timeout time.Duration, headers map[string]string) Outcome {
	return c.do(ctx, http.MethodGet, url, nil, timeout, headers)
}

// Post sends a JSON body within timeout and classifies the result.
func (c *Client) Post(ctx context.Context, url string, body []byte, timeout time.Duration, headers map[string]string) Outcome {
	return c.do(ctx, http.MethodPost, url, body, timeout, headers)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, timeout time.Duration, headers map[string]string) Outcome {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, url, reader)
	if err != nil {
		return failure(FailMalformed, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.classifyTransport(url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return failure(FailRateLimited, resp.StatusCode, fmt.Errorf("rate limited: %s", url))
	case resp.StatusCode >= http.StatusInternalServerError:
		return failure(FailServer, resp.StatusCode, fmt.Errorf("server error %d: %s", resp.StatusCode, url))
	case resp.StatusCode != http.StatusOK:
		return failure(FailMalformed, resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, url))
	}

	if resp.ContentLength > c.maxBody {
		return failure(FailMalformed, resp.StatusCode,
			fmt.Errorf("oversized payload %d bytes: %s", resp.ContentLength, url))
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return c.classifyTransport(url, err)
	}
	if int64(len(payload)) > c.maxBody {
		return failure(FailMalformed, resp.StatusCode, fmt.Errorf("oversized payload: %s", url))
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return success(resp.StatusCode, nil)
	}

	return success(resp.StatusCode, payload)
}

func (c *Client) classifyTransport(url string, err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return failure(FailTimeout, 0, fmt.Errorf("timeout: %s", url))
	}
	// Canceled means the caller itself went away, not that this candidate
	// was slow; it must not look like a per-candidate timeout.
	if errors.Is(err, context.Canceled) {
		return failure(FailCanceled, 0, fmt.Errorf("canceled: %s", url))
	}
	// url.Error wraps deadline errors too; check its Timeout flag before
	// falling through to the blocked classification.
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return failure(FailTimeout, 0, fmt.Errorf("timeout: %s", url))
	}
	c.logger.Debug("transport failure", zap.String("url", url), zap.Error(err))
	return failure(FailBlocked, 0, fmt.Errorf("transport: %w", err))
}
