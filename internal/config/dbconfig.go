package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// DBConfig configures the optional proposal snapshot store. Without DB_HOST
// the store is disabled.
type DBConfig struct {
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME,default=governance"`
	DBHost     string `env:"DB_HOST"`
	DBPort     int    `env:"DB_PORT,default=5432"`
	DBSSLMode  string `env:"DB_SSLMODE,default=disable"`
}

func NewDBConfig(ctx context.Context, envpath string) (*DBConfig, error) {
	if envpath != "" {
		slog.Info("loading env from file", "path", envpath)
		err := godotenv.Load(envpath)
		if err != nil {
			return nil, err
		}
	}

	cfg := &DBConfig{}
	err := envconfig.Process(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *DBConfig) Enabled() bool {
	return c.DBHost != ""
}

// ConnString is a lib/pq connection string.
func (c *DBConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
