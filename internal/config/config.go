package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr    string        `env:"HTTP_ADDR" envDefault:":8080"`
	MySQLDSN    string        `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/shawa?parseTime=true"`
	RedisAddr   string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	WorkerCount int           `env:"TRADE_WORKER_COUNT" envDefault:"4"`
	QueueSize   int           `env:"TRADE_QUEUE_SIZE" envDefault:"1024"`
	CacheTTL    time.Duration `env:"OWNERSHIP_CACHE_TTL" envDefault:"30s"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
