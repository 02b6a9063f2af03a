package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rcamargo/marketpulse/pkg/models"
)

// ErrRunInProgress is returned when a run is requested while another
// run holds the pipeline lock.
var ErrRunInProgress = errors.New("analysis run already in progress")

// Store persists generated reports. Satisfied by store.FileStore.
type Store interface {
	Save(report *models.Report) (string, error)
}

// Runner serializes pipeline executions. Scheduled and manual triggers
// share one lock so at most one run writes the report at a time.
type Runner struct {
	builder  *Builder
	store    Store
	interval time.Duration

	// Notify, when set, receives an event name after pipeline
	// milestones ("report_updated"). Used to fan out to WebSocket
	// clients.
	Notify func(event string)

	runMu sync.Mutex

	mu          sync.Mutex
	lastSuccess time.Time
}

// NewRunner creates a runner around the builder and report store.
func NewRunner(builder *Builder, store Store, interval time.Duration) *Runner {
	return &Runner{
		builder:  builder,
		store:    store,
		interval: interval,
	}
}

// TryRun executes one pipeline run if no other run is in flight,
// otherwise returns ErrRunInProgress. A persistence failure marks the
// run failed; the previously stored report stays the last known good.
func (r *Runner) TryRun(ctx context.Context) error {
	if !r.runMu.TryLock() {
		return ErrRunInProgress
	}
	defer r.runMu.Unlock()
	return r.run(ctx)
}

// TryRunAsync acquires the run lock and executes the pipeline in the
// background, or returns ErrRunInProgress immediately. Used by the
// manual-trigger endpoint, which must not hold an HTTP request open
// for a whole run.
func (r *Runner) TryRunAsync(ctx context.Context) error {
	if !r.runMu.TryLock() {
		return ErrRunInProgress
	}
	go func() {
		defer r.runMu.Unlock()
		if err := r.run(ctx); err != nil {
			log.Printf("[runner] manual run failed: %v", err)
		}
	}()
	return nil
}

func (r *Runner) run(ctx context.Context) error {
	report, err := r.builder.Generate(ctx)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	location, err := r.store.Save(report)
	if err != nil {
		return fmt.Errorf("persist report: %w", err)
	}

	r.mu.Lock()
	r.lastSuccess = time.Now()
	r.mu.Unlock()

	log.Printf("[runner] report saved to %s", location)
	if r.Notify != nil {
		r.Notify("report_updated")
	}
	return nil
}

// LastSuccess returns the completion time of the most recent successful
// run, and whether one has happened yet.
func (r *Runner) LastSuccess() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSuccess, !r.lastSuccess.IsZero()
}

// Interval returns the scheduling interval.
func (r *Runner) Interval() time.Duration { return r.interval }

// Start runs the pipeline immediately, then on every tick until the
// context is cancelled. Failed runs are logged and retried on the next
// cycle.
func (r *Runner) Start(ctx context.Context) {
	if err := r.TryRun(ctx); err != nil {
		log.Printf("[runner] initial run failed: %v", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[runner] scheduler stopped")
			return
		case <-ticker.C:
			if err := r.TryRun(ctx); err != nil {
				log.Printf("[runner] scheduled run failed: %v", err)
			}
		}
	}
}
