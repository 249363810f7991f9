// Package config loads process settings from environment variables and
// manages the persisted sync watermark.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds every knob the process reads from the environment.
type Settings struct {
	PostgresURL   string        `env:"POSTGRES_URL,required,notEmpty"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	ElasticURL    []string      `env:"ELASTIC_URL" envDefault:"http://localhost:9200"`
	SchemasDir    string        `env:"ELASTIC_SCHEMAS_PATH" envDefault:"schemas"`
	BatchSize     int           `env:"ETL_BATCH_SIZE" envDefault:"100"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"180s"`
	WatermarkFile string        `env:"WATERMARK_FILE" envDefault:".watermark"`
}

// Load parses Settings from the environment.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}
