// ==============================
// File: cmd/aggregator/main.go
// ==============================
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/memelab/token-radar/internal/aggregator"
	"github.com/memelab/token-radar/internal/config"
	"github.com/memelab/token-radar/internal/fetch"
	"github.com/memelab/token-radar/internal/logger"
	"github.com/memelab/token-radar/internal/price"
	"github.com/memelab/token-radar/internal/server"
	"github.com/memelab/token-radar/internal/source"
	"github.com/memelab/token-radar/internal/trading"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	log.Info("Starting token aggregation service",
		zap.String("listen_addr", cfg.ListenAddr),
		zap.Duration("cache_ttl", cfg.CacheTTL()))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := fetch.NewClient(log.Logger, cfg.MaxBodyBytes)
	selector := fetch.NewSelector(client, log.Logger, cfg.RateLimitBackoff())

	deps := source.Deps{
		Client:           client,
		Selector:         selector,
		Logger:           log.Logger,
		CacheTTL:         cfg.CacheTTL(),
		ThrottleInterval: cfg.ThrottleInterval(),
		Timeout:          cfg.RequestTimeout(),
		SlowTimeout:      cfg.SlowTimeout(),
	}

	priceFeed := price.NewFeed(client, cfg.PriceFeedURL,
		cfg.RequestTimeout(), cfg.PriceTTL(), cfg.DefaultSOLPrice, log.Logger)

	service := aggregator.New(priceFeed, cfg.CurveTargetSOL, log.Logger)
	adapters := []source.Adapter{
		source.NewPumpFun(deps),
		source.NewDexScreener(deps),
		source.NewGeckoTerminal(deps),
		source.NewRaydium(deps),
		source.NewMeteora(deps),
		source.NewMoonit(deps),
		source.NewJupiter(deps, cfg.JupiterAPIKey),
	}
	for _, a := range adapters {
		if err := service.Register(a); err != nil {
			log.Fatal("Failed to register adapter", zap.Error(err))
		}
	}

	var swap server.SwapService
	if cfg.WalletPrivateKey != "" {
		wallet, err := trading.NewLocalWallet(cfg.WalletPrivateKey, cfg.RPCURL, log.Logger)
		if err != nil {
			log.Fatal("Failed to load wallet", zap.Error(err))
		}
		swapClient := trading.NewSwapClient(client, wallet, cfg.RequestTimeout(), cfg.JupiterAPIKey, log.Logger)
		swapClient.SetDefaultUser(wallet.PublicKey().String())
		swap = swapClient
		log.Info("Trading enabled", zap.String("wallet", wallet.PublicKey().String()))
	}

	hub := server.NewHub(log.Logger)
	go hub.Run(ctx)

	refresher := server.NewRefresher(service, hub, cfg.RefreshInterval(), log)
	go refresher.Run(ctx)

	srv := server.New(service, swap, hub, log.Logger)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	httpLog := log.WithComponent("http")

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpLog.Error("HTTP server error", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		httpLog.Error("Graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Service stopped")
}
