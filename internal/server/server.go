// ===============================
// File: internal/server/server.go
// ===============================

// Package server exposes the aggregated token data to the dashboard over
// HTTP and WebSocket. Handlers are thin: validation, delegation, JSON.
package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/memelab/token-radar/internal/token"
	"github.com/memelab/token-radar/internal/trading"
)

// TokenService is the aggregation surface the handlers consume.
type TokenService interface {
	FetchTokensByProtocols(ctx context.Context, protocols []string, status token.Status) []token.Token
	ResolveToken(ctx context.Context, chain, address string) (token.Token, bool)
	Protocols() []string
}

// SwapService executes trading-panel swaps. A nil service disables the
// swap route.
type SwapService interface {
	ExecuteSwap(ctx context.Context, params trading.SwapParams) trading.SwapResult
}

type Server struct {
	engine  *gin.Engine
	service TokenService
	swap    SwapService
	hub     *Hub
	logger  *zap.Logger

	upgrader websocket.Upgrader
}

func New(service TokenService, swap SwapService, hub *Hub, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:  gin.New(),
		service: service,
		swap:    swap,
		hub:     hub,
		logger:  logger.Named("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The dashboard is served from a different origin in dev.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.handleHealth)
	api := s.engine.Group("/api")
	{
		api.GET("/tokens", s.handleTokenList)
		api.GET("/tokens/:chain/:address", s.handleTokenDetail)
		api.POST("/swap", s.handleSwap)
	}
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"protocols": s.service.Protocols(),
	})
}

// handleTokenList serves /api/tokens?protocols=raydium,meteora&status=migrated.
func (s *Server) handleTokenList(c *gin.Context) {
	status, ok := token.ParseStatus(c.Query("status"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	var protocols []string
	if raw := c.Query("protocols"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				protocols = append(protocols, p)
			}
		}
	}

	tokens := s.service.FetchTokensByProtocols(c.Request.Context(), protocols, status)
	c.JSON(http.StatusOK, gin.H{"tokens": tokens, "count": len(tokens)})
}

func (s *Server) handleTokenDetail(c *gin.Context) {
	chain := c.Param("chain")
	address := c.Param("address")

	if chain == "solana" && !token.ValidMint(address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mint address"})
		return
	}

	t, ok := s.service.ResolveToken(c.Request.Context(), chain, address)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

type swapRequest struct {
	InputMint   string `json:"inputMint" binding:"required"`
	OutputMint  string `json:"outputMint" binding:"required"`
	Amount      uint64 `json:"amount" binding:"required"`
	SlippageBps int    `json:"slippageBps"`
}

// handleSwap executes a trading-panel swap. Swap failures are part of
// the result payload, not HTTP errors.
func (s *Server) handleSwap(c *gin.Context) {
	if s.swap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "trading disabled"})
		return
	}

	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := s.swap.ExecuteSwap(c.Request.Context(), trading.SwapParams{
		InputMint:   req.InputMint,
		OutputMint:  req.OutputMint,
		Amount:      req.Amount,
		SlippageBps: req.SlippageBps,
	})
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	s.hub.serve(conn)
}
