package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/pkg/logger"
	"go.uber.org/zap"
)

// Task is one participant's cancellable, resumable periodic unit of work.
// RunCycle performs a single cycle and reports done=true when the
// participant has reached its lifetime cap and should terminate.
type Task interface {
	ID() string
	Interval() time.Duration
	RunCycle(ctx context.Context) (done bool, err error)
}

// DefaultErrorBackoff is the fixed pause after a retryable cycle error
const DefaultErrorBackoff = time.Second

// Runner drives a Task on its own cadence in a dedicated goroutine.
// Limit errors from the pool terminate the loop; any other error is
// logged and retried after a fixed backoff, without bound. Cancellation
// is observed between cycles, never mid-operation.
type Runner struct {
	task    Task
	backoff time.Duration
	onExit  func(id string)
	log     *logger.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewRunner creates a runner for the given task. onExit is invoked when
// the loop terminates on its own (cap reached or limit error) and may be
// nil; it must not call Stop on this runner.
func NewRunner(task Task, backoff time.Duration, onExit func(id string)) *Runner {
	if backoff <= 0 {
		backoff = DefaultErrorBackoff
	}
	return &Runner{
		task:    task,
		backoff: backoff,
		onExit:  onExit,
		log:     logger.Get(),
		stopCh:  make(chan struct{}),
	}
}

// Start launches the task loop
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("runner %s already running", r.task.ID())
	}
	r.running = true

	r.wg.Add(1)
	go r.loop(ctx)
	return nil
}

// Stop signals the loop to stop and waits for it to exit. Safe to call
// after the loop has already terminated on its own.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopCh)
	r.wg.Wait()
}

// Running reports whether the loop has been started and not stopped
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.task.Interval())
	defer ticker.Stop()

	for {
		done, err := r.task.RunCycle(ctx)
		if err != nil {
			if domain.IsLimitError(err) {
				r.log.Info("participant reached its limit, stopping loop",
					zap.String("participant_id", r.task.ID()),
					zap.Error(err),
				)
				r.exit()
				return
			}
			r.log.Warn("cycle failed, backing off",
				zap.String("participant_id", r.task.ID()),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case <-time.After(r.backoff):
			}
		}
		if done {
			r.log.Info("participant finished, stopping loop",
				zap.String("participant_id", r.task.ID()),
			)
			r.exit()
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) exit() {
	if r.onExit != nil {
		r.onExit(r.task.ID())
	}
}
