package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"lingkod/internal/api"
	"lingkod/internal/config"
	"lingkod/internal/db"
	"lingkod/internal/realtime"
	"lingkod/internal/storage"
	"lingkod/internal/telemetry"
)

const serviceName = "lingkod"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lingkodd",
		Short:         "Barangay administration backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	return cmd
}

func newLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			_ = godotenv.Load()
			logger := newLogger()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			shutdownTracing, err := telemetry.Init(ctx, serviceName, cfg.OTLPEndpoint)
			if err != nil {
				return fmt.Errorf("init telemetry: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(shutdownCtx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracing")
				}
			}()

			pool, err := db.Open(ctx, cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}

			orm, err := db.Connect(cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("connect orm: %w", err)
			}
			defer func() {
				if err := db.Close(orm); err != nil {
					logger.Error().Err(err).Msg("close orm")
				}
			}()

			var bus *realtime.Broadcaster
			if cfg.NATSURL != "" {
				bus, err = realtime.Connect(cfg.NATSURL, logger)
				if err != nil {
					return fmt.Errorf("connect nats: %w", err)
				}
				defer bus.Close()
			} else {
				logger.Warn().Msg("NATS_URL not set; real-time events disabled")
			}

			var blobs *storage.Client
			if os.Getenv("S3_ENDPOINT") != "" {
				blobs, err = storage.NewClientFromEnv()
				if err != nil {
					return fmt.Errorf("init object storage: %w", err)
				}
			} else {
				logger.Warn().Msg("S3_ENDPOINT not set; document storage disabled")
			}

			app, err := api.New(&api.Store{
				Pool:  pool,
				ORM:   orm,
				Blobs: blobs,
				Bus:   bus,
			}, api.Config{
				SessionTTL:      cfg.SessionTTL,
				CookieDomain:    cfg.CookieDomain,
				CookieSecure:    cfg.CookieSecure,
				DocumentBucket:  cfg.DocumentBucket,
				DocumentPrefix:  cfg.DocumentPrefix,
				PresignTTL:      cfg.PresignTTL,
				AllowedOrigins:  cfg.AllowedOrigins,
				RateLimit:       cfg.RateLimit,
				RateLimitWindow: cfg.RateLimitWindow,
			}, logger)
			if err != nil {
				return fmt.Errorf("init api: %w", err)
			}

			handler := telemetry.Middleware(serviceName, logger)(app.Routes())

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", cfg.Addr).Msg("starting lingkod api")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_ = godotenv.Load()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			pool, err := db.Open(ctx, cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer pool.Close()

			return db.Migrate(ctx, pool)
		},
	}
}

func newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fixture data from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_ = godotenv.Load()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			seed, err := db.LoadSeedFile(file)
			if err != nil {
				return err
			}

			orm, err := db.Connect(cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("connect orm: %w", err)
			}
			defer db.Close(orm)

			return db.Seed(ctx, orm, seed)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "path to the seed fixture")
	return cmd
}
