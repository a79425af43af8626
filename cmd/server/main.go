package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockmaster/internal/config"
	"stockmaster/internal/infra"
	"stockmaster/internal/repository"
	"stockmaster/internal/router"
	"stockmaster/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	// Structured logger: dev pretty, prod JSON
	infra.SetupLogger(cfg.Env, cfg.LogLevel)

	if cfg.MigrateOnStart {
		if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis backs the invoice email queue and the search cache. Without
	// REDIS_URL both are disabled and the API keeps working.
	var (
		rdb        *redis.Client
		dispatcher *worker.Dispatcher
		pool       *worker.Pool
	)
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		dispatcher = worker.NewDispatcher(rdb)

		mailer := infra.NewMailer(cfg)
		smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
		pool = worker.NewPool(rdb)
		pool.Handle(worker.JobFacturaEmail,
			worker.NewEmailWorker(repository.NewVentaRepository(db), mailer, smtpCB, cfg.BusinessName))
		pool.Start(ctx, cfg.WorkerPoolSize)
	} else {
		log.Warn().Msg("REDIS_URL vacio: cola de emails y cache de busqueda deshabilitados")
	}

	r := router.New(cfg, db, rdb, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Stock Master backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if pool != nil {
		pool.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
