package config

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	RPCURL            string `env:"RPC_URL,default=http://localhost:8545"`
	GovernanceAddress string `env:"GOVERNANCE_ADDRESS,required"`
	TokenAddress      string `env:"TOKEN_ADDRESS,required"`
	ProxyURL          string `env:"PROXY_URL"`
	ChainID           int64  `env:"CHAIN_ID"`
	PrivateKey        string `env:"PRIVATE_KEY"`
	KeyFile           string `env:"KEY_FILE"`
	SentryURL         string `env:"SENTRY_URL"`
	WebhookURL        string `env:"WEBHOOK_URL"`
	LogLevel          string `env:"LOG_LEVEL,default=info"`
	LogFile           string `env:"LOG_FILE"`
	RateLimit         int    `env:"RATE_LIMIT,default=20"`
	BalanceInterval   string `env:"BALANCE_INTERVAL,default=30s"`
	ListInterval      string `env:"LIST_INTERVAL,default=60s"`
}

// New loads envpath into the environment when set and then reads Config
// from the environment.
func New(ctx context.Context, envpath string) (*Config, error) {
	if envpath != "" {
		slog.Info("loading env from file", "path", envpath)
		err := godotenv.Load(envpath)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := envconfig.Process(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RateLimit < 0 {
		return nil, errors.New("RATE_LIMIT must not be negative")
	}

	return cfg, nil
}

// HasSigner reports whether a key is configured for writes.
func (c *Config) HasSigner() bool {
	return c.PrivateKey != "" || c.KeyFile != ""
}

// SentryEnabled treats "x" as a placeholder DSN, like an unset one.
func (c *Config) SentryEnabled() bool {
	return c.SentryURL != "" && c.SentryURL != "x"
}
