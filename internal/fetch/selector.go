// ================================
// File: internal/fetch/selector.go
// ================================
package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Candidate is one URL that can answer a logical operation. Candidates are
// tried in order until one yields a usable body.
type Candidate struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
	// Optional endpoints (e.g. "featured") are known to flap: a 5xx there
	// ends the whole operation with an empty result instead of burning
	// time on the remaining candidates.
	Optional bool
}

// Selector walks an ordered candidate list applying the failure taxonomy:
// timeouts and malformed bodies move on, 429 earns one backoff retry on
// the same candidate, transport blocks abort everything, and exhaustion
// resolves to an empty outcome rather than an error.
type Selector struct {
	client        *Client
	logger        *zap.Logger
	rateLimitWait time.Duration
}

// NewSelector wraps client with fallback ordering. rateLimitWait is the
// fixed pause before the single 429 retry (~2s upstream-observed).
func NewSelector(client *Client, logger *zap.Logger, rateLimitWait time.Duration) *Selector {
	if rateLimitWait <= 0 {
		rateLimitWait = 2 * time.Second
	}
	return &Selector{
		client:        client,
		logger:        logger.Named("selector"),
		rateLimitWait: rateLimitWait,
	}
}

var errRateLimited = errors.New("rate limited")

// Fetch tries candidates in order and returns the first usable outcome.
func (s *Selector) Fetch(ctx context.Context, candidates []Candidate) Outcome {
	for _, cand := range candidates {
		out := s.fetchOne(ctx, cand)

		switch {
		case out.OK():
			return out
		case out.Empty():
			s.logger.Debug("candidate returned no data", zap.String("url", cand.URL))
			continue
		case out.Kind == FailBlocked:
			// Browser-level / network-level block: siblings will fail the
			// same way, stop immediately.
			s.logger.Warn("candidate blocked, aborting operation",
				zap.String("url", cand.URL), zap.Error(out.Err))
			return Outcome{}
		case out.Kind == FailCanceled:
			// The caller is gone; walking the rest of the list just burns
			// goroutine time against a dead context.
			s.logger.Debug("operation canceled", zap.String("url", cand.URL))
			return Outcome{}
		case out.Kind == FailServer && cand.Optional:
			s.logger.Debug("optional candidate unavailable",
				zap.String("url", cand.URL), zap.Int("status", out.Status))
			return Outcome{}
		default:
			s.logger.Debug("candidate failed, trying next",
				zap.String("url", cand.URL),
				zap.String("kind", out.Kind.String()),
				zap.Error(out.Err))
		}
	}
	return Outcome{}
}

// fetchOne issues the request, retrying once after a fixed wait when the
// vendor answers 429. Every other failure is surfaced to the caller's
// candidate loop untouched.
func (s *Selector) fetchOne(ctx context.Context, cand Candidate) Outcome {
	attempt := func() (Outcome, error) {
		out := s.client.Get(ctx, cand.URL, cand.Timeout, cand.Headers)
		if out.Kind == FailRateLimited {
			return out, errRateLimited
		}
		return out, nil
	}

	out, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.rateLimitWait)),
		backoff.WithMaxTries(2))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return failure(FailCanceled, 0, err)
		}
		// Still rate limited after the retry; the candidate loop moves on.
		if out.Kind == FailNone {
			out = failure(FailRateLimited, 0, err)
		}
		return out
	}
	return out
}
