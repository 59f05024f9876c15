package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"RacketOps"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Mongo struct {
		URL      string `envconfig:"MONGO_URL" default:"mongodb://localhost:27017"`
		Database string `envconfig:"MONGO_DB" default:"racketshop"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET" default:""`
	}

	Ops struct {
		// FetchLimit bounds the per-family fetch window of the list view.
		FetchLimit int `envconfig:"OPS_FETCH_LIMIT" default:"300"`
		// Throttle caps concurrent list requests; the view fans out several
		// store reads per request.
		Throttle int `envconfig:"OPS_THROTTLE" default:"16"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
