package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"maintenance-service/internal/logging"
)

// Worker is one periodic background job.
type Worker struct {
	Name string
	// InitialDelay holds the first cycle back so workers don't all slam the
	// database at startup.
	InitialDelay time.Duration
	Period       time.Duration
	// Cooldown is how long to back off after a failed cycle before resuming
	// the normal period.
	Cooldown time.Duration
	Run      func(ctx context.Context) error
}

// Runner owns the lifecycle of the background workers. A cycle that fails
// or panics is logged and the worker backs off for the cooldown, then keeps
// going; one bad cycle never kills the loop.
type Runner struct {
	clock  Clock
	logger *logging.Logger

	wg sync.WaitGroup
}

func NewRunner(clock Clock, logger *logging.Logger) *Runner {
	return &Runner{clock: clock, logger: logger}
}

// Start launches the worker loop in its own goroutine. The loop exits when
// ctx is cancelled.
func (r *Runner) Start(ctx context.Context, w Worker) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.loop(ctx, w)
	}()
}

// Wait blocks until every started worker has exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, w Worker) {
	log := r.logger.WithWorker(w.Name)
	log.Infof("Worker starting (period %s, initial delay %s)", w.Period, w.InitialDelay)

	if w.InitialDelay > 0 {
		select {
		case <-ctx.Done():
			log.Info("Worker stopped before first cycle")
			return
		case <-r.clock.After(w.InitialDelay):
		}
	}

	for {
		wait := w.Period
		if err := r.runCycle(ctx, w); err != nil {
			if ctx.Err() != nil {
				log.Info("Worker stopped")
				return
			}
			log.Errorf("Cycle failed: %v", err)
			wait = w.Cooldown
		}
		if ctx.Err() != nil {
			log.Info("Worker stopped")
			return
		}

		select {
		case <-ctx.Done():
			log.Info("Worker stopped")
			return
		case <-r.clock.After(wait):
		}
	}
}

// runCycle executes one cycle, converting a panic into an error so the
// loop's backoff handling applies uniformly.
func (r *Runner) runCycle(ctx context.Context, w Worker) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &panicError{worker: w.Name, value: rec}
		}
	}()

	started := r.clock.Now()
	err = w.Run(ctx)
	if err == nil {
		r.logger.WithWorker(w.Name).Debugf("Cycle completed in %s", r.clock.Now().Sub(started))
	}
	return err
}

type panicError struct {
	worker string
	value  interface{}
}

func (p *panicError) Error() string {
	return fmt.Sprintf("worker %s panicked: %v", p.worker, p.value)
}
