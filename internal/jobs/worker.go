// Package jobs runs periodic background work for the portal.
package jobs

import (
	"context"
	"time"

	"github.com/portalworks/docportal/internal/telemetry"
	"go.uber.org/zap"
)

// JobProcessor is one unit of recurring work driven by a Worker.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker drives a JobProcessor on a fixed interval until stopped. Processor
// failures are reported and the loop keeps polling.
type Worker struct {
	processor JobProcessor
	interval  time.Duration
	logger    *zap.Logger
	stop      chan struct{}
	done      chan struct{}
}

func NewWorker(processor JobProcessor, pollInterval time.Duration, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		processor: processor,
		interval:  pollInterval,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start blocks in the polling loop until the context is cancelled or Stop is
// called. Run it in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.done)

	w.logger.Info("worker started", zap.Duration("poll_interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped, context cancelled")
			return
		case <-w.stop:
			w.logger.Info("worker stopped, stop signal received")
			return
		case <-ticker.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				w.logger.Error("job processing failed", zap.Error(err))
				telemetry.CaptureError(ctx, err)
			}
		}
	}
}

// Stop signals the loop and waits for it to exit.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
	w.logger.Info("worker shutdown complete")
}
