package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/log"
)

// DefaultExportInterval is how often the current month is re-exported when
// no interval is configured.
const DefaultExportInterval = 15 * time.Minute

// Scheduler re-exports the current month on a fixed interval. It covers
// events lost while the broker or the worker was down.
type Scheduler struct {
	worker   *ExportWorker
	interval time.Duration
	logger   *log.Logger

	// Lifecycle management
	mu       sync.Mutex
	running  bool
	stopping bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewScheduler(w *ExportWorker, interval time.Duration, logger *log.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultExportInterval
	}
	return &Scheduler{
		worker:   w,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the export loop. Returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("export scheduler is already running")
	}
	s.running = true
	s.stopping = false
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.runLoop(ctx, stopCh, doneCh)

	s.logger.InfoContext(ctx, "Export scheduler started", "interval", s.interval)
	return nil
}

// Stop signals the loop and waits for the export in flight to finish. When
// ctx expires first the loop keeps winding down and Stop may be called again
// to wait for it.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	if !s.stopping {
		s.stopping = true
		close(s.stopCh)
	}
	doneCh := s.doneCh
	s.mu.Unlock()

	select {
	case <-doneCh:
		s.logger.InfoContext(ctx, "Export scheduler stopped")
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Export scheduler stop timed out")
		return ctx.Err()
	}

	s.mu.Lock()
	s.running = false
	s.stopping = false
	s.mu.Unlock()
	return nil
}

// IsRunning returns whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Export immediately on startup
	s.exportOnce(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.exportOnce(ctx)
		}
	}
}

func (s *Scheduler) exportOnce(ctx context.Context) {
	if err := s.worker.ExportCurrentMonth(ctx); err != nil {
		s.logger.WarnContext(ctx, "Scheduled export failed", log.FieldError, err)
	}
}
