package config

import (
	"github.com/caarlos0/env/v8"
)

// Config is the process configuration, parsed from the environment.
type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`
	JWTSecret      string `env:"JWT_SECRET"`
	FrontendURL    string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
