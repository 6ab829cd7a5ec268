// Package bootstrap wires configuration, storage, the governance engine,
// and the HTTP surface into runnable components.
package bootstrap

import (
	"github.com/jmoiron/sqlx"

	"github.com/Sam231221/dkn-governance/internal/api"
	"github.com/Sam231221/dkn-governance/internal/compliance"
	"github.com/Sam231221/dkn-governance/internal/config"
	"github.com/Sam231221/dkn-governance/internal/governance"
	"github.com/Sam231221/dkn-governance/internal/logger"
	"github.com/Sam231221/dkn-governance/internal/processor"
	"github.com/Sam231221/dkn-governance/internal/similarity"
	"github.com/Sam231221/dkn-governance/internal/storage"
	"github.com/Sam231221/dkn-governance/internal/telemetry"
)

// HTTPComponents holds everything the HTTP service runs.
type HTTPComponents struct {
	DB      *sqlx.DB
	Engine  *governance.Engine
	Worker  *processor.ScanWorker
	Sweeper *processor.Sweeper
	Server  *api.Server
}

// NewHTTPComponents builds the full service graph.
func NewHTTPComponents(cfg *config.Config, log logger.Logger) (*HTTPComponents, error) {
	tp := telemetry.NewProvider()

	dbComps, err := SetupDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	engine := buildEngine(cfg, dbComps, tp, log)

	worker := processor.NewScanWorker(engine, processor.ScanWorkerConfig{
		QueueSize:      cfg.Governance.ScanWorker.QueueSize,
		ScansPerSecond: cfg.Governance.ScanWorker.ScansPerSecond,
	}, log, tp)
	engine.SetEnqueue(worker.Enqueue)

	sweeper := processor.NewSweeper(engine, processor.SweeperConfig{
		Interval: cfg.Governance.Staleness.SweepInterval,
	}, log)

	handler := api.NewHandler(engine, dbComps.ItemsRepo, dbComps.RulesRepo, dbComps.HistoryRepo, dbComps.DB, log)
	router := api.NewRouter(cfg.Service.Debug, log)
	api.SetupRoutes(router, handler, tp)

	server := api.NewServer(handler, router, api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}, log)

	return &HTTPComponents{
		DB:      dbComps.DB,
		Engine:  engine,
		Worker:  worker,
		Sweeper: sweeper,
		Server:  server,
	}, nil
}

// SweeperComponents holds the one-shot sweeper's dependencies.
type SweeperComponents struct {
	DB      *sqlx.DB
	Sweeper *processor.Sweeper
}

// NewSweeperComponents builds the standalone sweeper graph. No HTTP
// surface and no telemetry provider; sweep results leave the process
// through the logs only.
func NewSweeperComponents(cfg *config.Config, log logger.Logger) (*SweeperComponents, error) {
	dbComps, err := SetupDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	engine := buildEngine(cfg, dbComps, nil, log)
	sweeper := processor.NewSweeper(engine, processor.SweeperConfig{
		Interval: cfg.Governance.Staleness.SweepInterval,
	}, log)

	return &SweeperComponents{DB: dbComps.DB, Sweeper: sweeper}, nil
}

func buildEngine(cfg *config.Config, dbComps *DatabaseComponents, tp *telemetry.Provider, log logger.Logger) *governance.Engine {
	finder := SetupCandidateFinder(cfg, dbComps.ItemsRepo, log)

	sim := similarity.NewEngine(finder, similarity.Config{
		DuplicateThreshold: cfg.Governance.Similarity.DuplicateThreshold,
		WarnThreshold:      cfg.Governance.Similarity.WarnThreshold,
		TopMatches:         cfg.Governance.Similarity.TopMatches,
	}, log, tp)

	scanner := compliance.NewScanner(dbComps.RulesRepo, log, tp)

	engine := governance.NewEngine(
		dbComps.ItemsRepo,
		dbComps.HistoryRepo,
		sim,
		scanner,
		governance.Config{
			AsyncScanThreshold: cfg.Governance.ScanWorker.AsyncScanThreshold,
			StaleAge:           cfg.Governance.Staleness.AgeThreshold,
		},
		log,
		tp,
	)

	// The ES finder doubles as the index mirror so corpus writes keep the
	// prefilter current.
	if idx, ok := finder.(*storage.CorpusIndex); ok {
		engine.SetIndexer(idx)
	}

	return engine
}
