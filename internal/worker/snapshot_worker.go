package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ticketline/ticketline/internal/pool"
	"github.com/ticketline/ticketline/internal/repository"
	"github.com/ticketline/ticketline/pkg/logger"
	"go.uber.org/zap"
)

// SnapshotWorker periodically flushes the pool's sold counters to storage
// and mirrors a status snapshot into the cache for cheap reads.
type SnapshotWorker struct {
	ctrl     *pool.Controller
	statuses repository.StatusRepository
	interval time.Duration
	log      *logger.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// NewSnapshotWorker creates a new snapshot worker
func NewSnapshotWorker(
	ctrl *pool.Controller,
	statuses repository.StatusRepository,
	interval time.Duration,
) *SnapshotWorker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &SnapshotWorker{
		ctrl:     ctrl,
		statuses: statuses,
		interval: interval,
		log:      logger.Get(),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic snapshot loop
func (w *SnapshotWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	w.log.Info("snapshot worker started", zap.Duration("interval", w.interval))
}

// Stop halts the worker and waits for the current cycle to finish
func (w *SnapshotWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()

	w.log.Info("snapshot worker stopped")
}

func (w *SnapshotWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.snapshot(ctx)
		}
	}
}

// Snapshot runs one synchronization cycle immediately
func (w *SnapshotWorker) Snapshot(ctx context.Context) {
	w.snapshot(ctx)
}

func (w *SnapshotWorker) snapshot(ctx context.Context) {
	if err := w.ctrl.Synchronize(ctx); err != nil {
		w.log.Error("failed to synchronize pool counters", zap.Error(err))
		return
	}

	if w.statuses == nil {
		return
	}

	status := w.ctrl.Status()
	fields := map[string]interface{}{
		"configured":        status.Configured,
		"event_name":        status.EventName,
		"available_tickets": status.AvailableTickets,
		"max_capacity":      status.MaxCapacity,
		"active_vendors":    len(status.VendorAvailable),
		"active_customers":  len(status.CustomerRemaining),
		"updated_at":        time.Now().UTC().Format(time.RFC3339),
	}
	if err := w.statuses.SaveSnapshot(ctx, fields); err != nil {
		w.log.Warn("failed to cache pool snapshot", zap.Error(err))
	}
}
