// ================================
// File: internal/server/refresh.go
// ================================
package server

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/memelab/token-radar/internal/token"
)

// OperationLogger mints a tagged logger per logical operation, so all
// legs of one refresh cycle share a correlation id in the log stream.
type OperationLogger interface {
	WithOperation(operation string) *zap.Logger
}

// Refresher periodically re-aggregates the lifecycle lists and pushes
// snapshots through the hub, so connected dashboards update without
// polling.
type Refresher struct {
	service  TokenService
	hub      *Hub
	interval time.Duration
	logger   OperationLogger
}

func NewRefresher(service TokenService, hub *Hub, interval time.Duration, logger OperationLogger) *Refresher {
	return &Refresher{
		service:  service,
		hub:      hub,
		interval: interval,
		logger:   logger,
	}
}

type snapshot struct {
	Type   string        `json:"type"`
	Status token.Status  `json:"status"`
	Tokens []token.Token `json:"tokens"`
}

// Run pushes one snapshot per status every interval until ctx ends.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	statuses := []token.Status{token.StatusNew, token.StatusFinalStretch, token.StatusMigrated}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			op := r.logger.WithOperation("refresh")
			for _, status := range statuses {
				tokens := r.service.FetchTokensByProtocols(ctx, nil, status)
				payload, err := json.Marshal(snapshot{Type: "tokens", Status: status, Tokens: tokens})
				if err != nil {
					op.Error("snapshot marshal failed", zap.Error(err))
					continue
				}
				r.hub.Broadcast(payload)
				op.Debug("snapshot broadcast",
					zap.String("status", string(status)),
					zap.Int("tokens", len(tokens)))
			}
		}
	}
}
