// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr   string `mapstructure:"listen_addr"`
	LogFile      string `mapstructure:"log_file"`
	DebugLogging bool   `mapstructure:"debug_logging"`

	// Freshness and politeness knobs for the adapter layer.
	CacheTTLSeconds    int   `mapstructure:"cache_ttl_seconds"`
	ThrottleIntervalMs int   `mapstructure:"throttle_interval_ms"`
	RequestTimeoutSec  int   `mapstructure:"request_timeout_seconds"`
	SlowTimeoutSec     int   `mapstructure:"slow_timeout_seconds"`
	RateLimitBackoffMs int   `mapstructure:"rate_limit_backoff_ms"`
	MaxBodyBytes       int64 `mapstructure:"max_body_bytes"`
	RefreshIntervalSec int   `mapstructure:"refresh_interval_seconds"`
	PriceTTLSeconds    int   `mapstructure:"price_ttl_seconds"`

	// Bonding-curve progress fallbacks. The historical implementation
	// hardcoded ~$137/SOL and a 69 SOL curve target; both live here so a
	// stale price never silently skews the final-stretch list again.
	CurveTargetSOL  float64 `mapstructure:"curve_target_sol"`
	DefaultSOLPrice float64 `mapstructure:"default_sol_price"`

	JupiterAPIKey string `mapstructure:"jupiter_api_key"`
	PriceFeedURL  string `mapstructure:"price_feed_url"`

	// Trading panel. The wallet key is intentionally env-only; an empty key
	// leaves the swap route disabled.
	RPCURL           string `mapstructure:"rpc_url"`
	WalletPrivateKey string `mapstructure:"-"`
}

const (
	DefaultCacheTTLSeconds    = 45
	DefaultThrottleIntervalMs = 350
	DefaultRequestTimeoutSec  = 15
	DefaultSlowTimeoutSec     = 30
	DefaultRateLimitBackoffMs = 2000
	DefaultMaxBodyBytes       = 10 << 20
	DefaultRefreshIntervalSec = 15
	DefaultPriceTTLSeconds    = 60
	DefaultCurveTargetSOL     = 69
	DefaultSOLPrice           = 137
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"listen_addr":              ":8080",
		"log_file":                 "token-radar.log",
		"cache_ttl_seconds":        DefaultCacheTTLSeconds,
		"throttle_interval_ms":     DefaultThrottleIntervalMs,
		"request_timeout_seconds":  DefaultRequestTimeoutSec,
		"slow_timeout_seconds":     DefaultSlowTimeoutSec,
		"rate_limit_backoff_ms":    DefaultRateLimitBackoffMs,
		"max_body_bytes":           DefaultMaxBodyBytes,
		"refresh_interval_seconds": DefaultRefreshIntervalSec,
		"price_ttl_seconds":        DefaultPriceTTLSeconds,
		"curve_target_sol":         DefaultCurveTargetSOL,
		"default_sol_price":        DefaultSOLPrice,
		"price_feed_url":           "https://api.coingecko.com/api/v3/simple/price",
		"rpc_url":                  "https://api.mainnet-beta.solana.com",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.ListenAddr == "" {
		return errors.New("missing listen_addr in configuration")
	}
	if cfg.CacheTTLSeconds <= 0 {
		return errors.New("invalid cache_ttl_seconds")
	}
	if cfg.ThrottleIntervalMs < 0 {
		return errors.New("invalid throttle_interval_ms")
	}
	if cfg.RequestTimeoutSec <= 0 || cfg.SlowTimeoutSec <= 0 {
		return errors.New("invalid request timeout")
	}
	if cfg.SlowTimeoutSec < cfg.RequestTimeoutSec {
		return errors.New("slow_timeout_seconds below request_timeout_seconds")
	}
	if cfg.RateLimitBackoffMs <= 0 {
		return errors.New("invalid rate_limit_backoff_ms")
	}
	if cfg.MaxBodyBytes <= 0 {
		return errors.New("invalid max_body_bytes")
	}
	if cfg.RefreshIntervalSec <= 0 {
		return errors.New("invalid refresh_interval_seconds")
	}
	if cfg.CurveTargetSOL <= 0 {
		return errors.New("invalid curve_target_sol")
	}
	if cfg.DefaultSOLPrice <= 0 {
		return errors.New("invalid default_sol_price")
	}
	if cfg.PriceFeedURL != "" {
		parsed, err := url.Parse(cfg.PriceFeedURL)
		if err != nil || !strings.HasPrefix(parsed.Scheme, "http") {
			return errors.New("invalid price_feed_url")
		}
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("TOKEN_RADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if key := v.GetString("JUPITER_API_KEY"); key != "" {
		cfg.JupiterAPIKey = key
	}
	if addr := v.GetString("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	// Key material never comes from the config file.
	cfg.WalletPrivateKey = os.Getenv("TOKEN_RADAR_WALLET_PRIVATE_KEY")
}

// Derived durations, so the rest of the code never re-multiplies units.

func (c *Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

func (c *Config) ThrottleInterval() time.Duration {
	return time.Duration(c.ThrottleIntervalMs) * time.Millisecond
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func (c *Config) SlowTimeout() time.Duration { return time.Duration(c.SlowTimeoutSec) * time.Second }

func (c *Config) RateLimitBackoff() time.Duration {
	return time.Duration(c.RateLimitBackoffMs) * time.Millisecond
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSec) * time.Second
}

func (c *Config) PriceTTL() time.Duration { return time.Duration(c.PriceTTLSeconds) * time.Second }
