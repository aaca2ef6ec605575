package api

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"lingkod/internal/approval"
	"lingkod/internal/realtime"
	"lingkod/internal/storage"
)

const sessionCookie = "lingkod_session"

// Store holds external dependencies required by the API layer.
type Store struct {
	Pool  *pgxpool.Pool
	ORM   *gorm.DB
	Blobs *storage.Client
	Bus   *realtime.Broadcaster
}

// Config controls runtime behaviour for the API handlers.
type Config struct {
	SessionTTL      time.Duration
	CookieDomain    string
	CookieSecure    bool
	DocumentBucket  string
	DocumentPrefix  string
	PresignTTL      time.Duration
	AllowedOrigins  []string
	RateLimit       int
	RateLimitWindow time.Duration
}

// API wires dependencies and configuration for the HTTP handlers.
type API struct {
	store     *Store
	config    Config
	approvals *approval.Handler
	logger    zerolog.Logger
}

// New initialises the API layer with sane defaults applied to the provided configuration.
func New(store *Store, cfg Config, logger zerolog.Logger) (*API, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if store.ORM == nil {
		return nil, errors.New("store ORM is required")
	}
	if store.Pool == nil {
		return nil, errors.New("store pool is required")
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 14 * 24 * time.Hour
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 15 * time.Minute
	}
	if cfg.DocumentPrefix == "" {
		cfg.DocumentPrefix = "documents/"
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 100
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}

	approvals, err := approval.New(approval.NewStore(store.ORM), store.Bus, logger)
	if err != nil {
		return nil, err
	}

	return &API{
		store:     store,
		config:    cfg,
		approvals: approvals,
		logger:    logger,
	}, nil
}

func (a *API) publish(channel, event string, payload any) {
	a.store.Bus.Publish(channel, event, payload)
}
