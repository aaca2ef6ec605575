package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the lingkod service.
type Config struct {
	Addr           string        `env:"ADDR,default=:8080"`
	DBDSN          string        `env:"DB_DSN,required"`
	NATSURL        string        `env:"NATS_URL"`
	OTLPEndpoint   string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	SessionTTL     time.Duration `env:"SESSION_TTL,default=336h"`
	CookieDomain   string        `env:"COOKIE_DOMAIN"`
	CookieSecure   bool          `env:"COOKIE_SECURE,default=false"`

	DocumentBucket string        `env:"DOCUMENT_BUCKET"`
	DocumentPrefix string        `env:"DOCUMENT_PREFIX,default=documents/"`
	PresignTTL     time.Duration `env:"PRESIGN_TTL,default=15m"`

	RateLimit       int           `env:"RATE_LIMIT,default=100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
