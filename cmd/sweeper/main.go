// Command sweeper runs the staleness sweep, either once (the default,
// for cron) or on an interval loop with -loop.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sam231221/dkn-governance/internal/bootstrap"
	"github.com/Sam231221/dkn-governance/internal/config"
	"github.com/Sam231221/dkn-governance/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (optional)")
	loop := flag.Bool("loop", false, "keep sweeping on the configured interval")
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

	comps, err := bootstrap.NewSweeperComponents(cfg, log)
	if err != nil {
		log.Fatal("failed to build sweeper", logger.Error(err))
	}
	defer func() {
		_ = comps.DB.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !*loop {
		if err = comps.Sweeper.SweepOnce(ctx); err != nil {
			log.Error("sweep failed", logger.Error(err))
			os.Exit(1)
		}
		return
	}

	if err = comps.Sweeper.Start(ctx); err != nil {
		log.Fatal("failed to start sweeper", logger.Error(err))
	}
	<-ctx.Done()
	comps.Sweeper.Stop()
	log.Info("sweeper stopped")
}
