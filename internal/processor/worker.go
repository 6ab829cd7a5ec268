// Package processor runs the background sides of the governance engine:
// the async scan worker and the staleness sweeper.
package processor

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"github.com/Sam231221/dkn-governance/internal/governance"
	"github.com/Sam231221/dkn-governance/internal/logger"
	"github.com/Sam231221/dkn-governance/internal/telemetry"
)

const (
	defaultQueueSize      = 256
	defaultScansPerSecond = 50
	defaultWorkerCount    = 4
)

// ScanWorker drains queued submission scans at a bounded rate. Submit
// never blocks on the corpus scan once the corpus crosses the async
// threshold; the worker picks the item up here instead.
type ScanWorker struct {
	engine    *governance.Engine
	logger    logger.Logger
	telemetry *telemetry.Provider

	queue   chan string
	limiter *rate.Limiter
	workers int

	running bool
	mu      sync.Mutex
	wg      sync.WaitGroup
	stop    chan struct{}
}

// ScanWorkerConfig holds scan worker configuration.
type ScanWorkerConfig struct {
	QueueSize      int
	ScansPerSecond int
	Workers        int
}

// NewScanWorker creates a scan worker. It does not start draining until
// Start is called.
func NewScanWorker(engine *governance.Engine, cfg ScanWorkerConfig, log logger.Logger, tp *telemetry.Provider) *ScanWorker {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.ScansPerSecond <= 0 {
		cfg.ScansPerSecond = defaultScansPerSecond
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkerCount
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &ScanWorker{
		engine:    engine,
		logger:    log,
		telemetry: tp,
		queue:     make(chan string, cfg.QueueSize),
		limiter:   rate.NewLimiter(rate.Limit(cfg.ScansPerSecond), cfg.ScansPerSecond),
		workers:   cfg.Workers,
		stop:      make(chan struct{}),
	}
}

// Enqueue offers an item to the scan queue. Non-blocking: a full queue
// reports false and the caller falls back to the inline scan path.
// Satisfies governance.EnqueueFunc.
func (w *ScanWorker) Enqueue(itemID string) bool {
	select {
	case w.queue <- itemID:
		w.recordDepth()
		return true
	default:
		if w.telemetry != nil {
			w.telemetry.Metrics.ScansDropped.Inc()
		}
		w.logger.Warn("scan queue full, falling back to inline scan",
			logger.String("item_id", itemID),
		)
		return false
	}
}

// Start launches the worker goroutines.
func (w *ScanWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("scan worker is already running")
	}
	w.running = true

	w.logger.Info("scan worker starting",
		logger.Int("workers", w.workers),
		logger.Int("queue_size", cap(w.queue)),
	)

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}

	return nil
}

// Stop signals the workers and waits for in-flight scans to finish.
// Queued but unstarted scans stay pending; the items remain in
// pending_review with their scan flags false and are picked up by a
// later rescan.
func (w *ScanWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stop)
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info("scan worker stopped")
}

// IsRunning reports whether the worker is draining the queue.
func (w *ScanWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// QueueDepth returns the number of scans waiting.
func (w *ScanWorker) QueueDepth() int {
	return len(w.queue)
}

func (w *ScanWorker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case itemID := <-w.queue:
			w.recordDepth()
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			if err := w.engine.Rescan(ctx, itemID); err != nil {
				w.logger.Error("background scan failed",
					logger.String("item_id", itemID),
					logger.Error(err),
				)
			}
		}
	}
}

func (w *ScanWorker) recordDepth() {
	if w.telemetry != nil {
		w.telemetry.Metrics.ScanQueueDepth.Set(float64(len(w.queue)))
	}
}
