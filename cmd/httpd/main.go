// Command httpd runs the governance HTTP service: submission intake,
// review workflow, audit queue, trending, and compliance rule management.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sam231221/dkn-governance/internal/bootstrap"
	"github.com/Sam231221/dkn-governance/internal/config"
	"github.com/Sam231221/dkn-governance/internal/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config.yml (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Must(logger.Config{}).Fatal("failed to load config", logger.Error(err))
	}

	log := logger.Must(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting governance service",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
	)

	comps, err := bootstrap.NewHTTPComponents(cfg, log)
	if err != nil {
		log.Fatal("failed to build service", logger.Error(err))
	}
	defer func() {
		_ = comps.DB.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = comps.Worker.Start(ctx); err != nil {
		log.Fatal("failed to start scan worker", logger.Error(err))
	}
	if err = comps.Sweeper.Start(ctx); err != nil {
		log.Fatal("failed to start sweeper", logger.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- comps.Server.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err = <-errCh:
		if err != nil {
			log.Error("server failed", logger.Error(err))
		}
	}

	comps.Sweeper.Stop()
	comps.Worker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = comps.Server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", logger.Error(err))
		os.Exit(1)
	}

	log.Info("governance service stopped")
}
