package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/pkg/logger"
)

// Config holds every runtime setting. DB_PATH has no default: the process
// must not start without a database location.
type Config struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port string `env:"PORT" envDefault:"8080"`

	DBPath string `env:"DB_PATH,required"`

	// Secrets are fixed for the whole process lifetime and are never
	// derived from request data.
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"chamada_secret_key"`
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"chamada_session_key"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	LogDir   string       `env:"LOG_DIR" envDefault:"./logs"`
	LogLevel logger.Level `env:"LOG_LEVEL" envDefault:"1"`
}

// Load reads the optional .env file and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
