package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sam231221/dkn-governance/internal/domain"
	"github.com/Sam231221/dkn-governance/internal/governance"
	"github.com/Sam231221/dkn-governance/internal/logger"
)

const defaultSweepInterval = 24 * time.Hour

// Sweeper periodically runs the staleness sweep over the approved corpus.
// It reports stale items through the engine and the logs; it never
// mutates item state, so a crashed or repeated sweep has no side effects.
type Sweeper struct {
	engine *governance.Engine
	logger logger.Logger

	interval time.Duration

	running bool
	mu      sync.Mutex
	stop    chan struct{}
}

// SweeperConfig holds sweeper configuration.
type SweeperConfig struct {
	Interval time.Duration
}

// NewSweeper creates a sweeper.
func NewSweeper(engine *governance.Engine, cfg SweeperConfig, log logger.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSweepInterval
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Sweeper{
		engine:   engine,
		logger:   log,
		interval: cfg.Interval,
		stop:     make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("sweeper is already running")
	}
	s.running = true

	s.logger.Info("staleness sweeper starting",
		logger.Duration("interval", s.interval),
		logger.Duration("stale_age", s.engine.StaleAge()),
	)

	go s.run(ctx)

	return nil
}

// Stop stops the sweep loop.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
}

// IsRunning reports whether the sweep loop is active.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Sweep once on start so a restarted service does not wait a full
	// interval to notice stale content.
	if err := s.SweepOnce(ctx); err != nil {
		s.logger.Error("startup staleness sweep failed", logger.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped, context cancelled")
			return
		case <-s.stop:
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("staleness sweep failed", logger.Error(err))
			}
		}
	}
}

// SweepOnce runs a single sweep over all regions and logs the flagged
// items. Exported for the one-shot sweeper command.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	stale, err := s.engine.FlagStale(ctx, domain.ScopeAll())
	if err != nil {
		return fmt.Errorf("staleness sweep: %w", err)
	}

	for _, entry := range stale {
		s.logger.Warn("stale approved item",
			logger.String("item_id", entry.Item.ID),
			logger.String("title", entry.Item.Title),
			logger.Time("updated_at", entry.Item.UpdatedAt),
		)
	}

	return nil
}

// GetStats returns sweeper statistics for the health endpoint.
func (s *Sweeper) GetStats() map[string]any {
	return map[string]any{
		"running":   s.IsRunning(),
		"interval":  s.interval.String(),
		"stale_age": s.engine.StaleAge().String(),
	}
}
