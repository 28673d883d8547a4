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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nekogravitycat/meeting-scheduler/internal/app"
	"github.com/nekogravitycat/meeting-scheduler/internal/config"
	"github.com/nekogravitycat/meeting-scheduler/internal/db"
	"github.com/nekogravitycat/meeting-scheduler/internal/scheduler"
)

const limiterIdleTTL = 10 * time.Minute

func setupLogger(isProduction bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if !isProduction {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	zerolog.DefaultContextLogger = &log.Logger
}

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg.IsProduction)

	// Connect DB
	poolOpts := []db.PoolOption{db.WithMaxConns(int32(cfg.DBMaxConns))}
	if cfg.DBLogQueries {
		poolOpts = append(poolOpts, db.WithQueryLog())
	}
	pool, err := db.NewPool(ctx, cfg.DBDSN, poolOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	container := app.NewContainer(app.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		DBPool:             pool,
		JWTSecret:          cfg.JWTSecret,
		JWTIssuer:          cfg.JWTIssuer,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SlotsAllRanges:     cfg.SlotsAllRanges,
	})

	// Background jobs
	sched, err := scheduler.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	if err := scheduler.RegisterExpiryJob(sched, container.BookingService, cfg.ExpirySweepInterval); err != nil {
		log.Fatal().Err(err).Msg("Failed to register booking expiry job")
	}
	if _, err := sched.AddIntervalJob("rate_limiter_prune", limiterIdleTTL, func() {
		if n := container.ConfirmLimiter.Prune(limiterIdleTTL); n > 0 {
			log.Debug().Int("dropped", n).Msg("Pruned idle rate limiters")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to register rate limiter prune job")
	}
	sched.Start()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := sched.Stop(); err != nil {
			log.Error().Err(err).Msg("Scheduler shutdown failed")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return
	}
	log.Info().Msg("Server exited gracefully")
}
