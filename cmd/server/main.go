package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/config"
	"github.com/Renatopaccha/Dental-Gest/internal/infra"
	"github.com/Renatopaccha/Dental-Gest/internal/router"
	"github.com/Renatopaccha/Dental-Gest/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid time zone")
	}

	if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	media, err := infra.NewMediaStore(cfg.MediaRoot)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare media root")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	if !mailer.Enabled() {
		log.Warn().Msg("SMTP_HOST not set, receipt and stock emails will be dead-lettered")
	}
	cbCfg := infra.DefaultCBConfig()
	cbCfg.Name = "smtp"
	smtpCB := infra.NewCircuitBreaker(cbCfg)

	dispatcher := worker.NewDispatcher(rdb)
	svcs, err := router.NewServices(cfg, db, rdb, dispatcher)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build services")
	}

	// Background jobs are wired here so the pool sees every infra dependency.
	emailWorker := worker.NewEmailWorker(mailer, smtpCB)
	pool := worker.NewPool(rdb, map[string]worker.JobHandler{
		worker.JobEmail: emailWorker.Process,
	})
	pool.Start(ctx, cfg.WorkerPoolSize)

	digest := worker.NewStockDigest(svcs.Inventory, dispatcher, cfg.AlertEmail, cfg.BusinessName, loc)
	if _, err := worker.StartStockDigest(ctx, cfg.StockDigestSchedule, digest); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule stock digest")
	}

	r := router.New(ctx, cfg, db, rdb, smtpCB, svcs, media)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Dental Gestec backend listening on :%d", cfg.Port)
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
	pool.Wait()
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
