package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shyim/db-auto-backup/internal/notification"
)

// Notifier receives run lifecycle events
type Notifier interface {
	Notify(ctx context.Context, event notification.Event) error
}

// Runner orchestrates one backup run: it announces the run, selects the
// targets, backs them up one after another and reports the result.
type Runner struct {
	runtime  Runtime
	registry *Registry
	executor *Executor
	notifier Notifier
	detailed bool
}

// NewRunner creates a new runner
func NewRunner(runtime Runtime, registry *Registry, executor *Executor, notifier Notifier, detailed bool) *Runner {
	return &Runner{
		runtime:  runtime,
		registry: registry,
		executor: executor,
		notifier: notifier,
		detailed: detailed,
	}
}

// Targets lists the running containers and returns those with a backup type
func (r *Runner) Targets(ctx context.Context) ([]Target, error) {
	containers, err := r.runtime.ListContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}

	targets := SelectTargets(containers, r.registry)

	slog.Info("container discovery complete",
		"total_containers", len(containers),
		"backup_targets", len(targets),
	)

	return targets, nil
}

// Run performs a complete backup run. A failed start notification aborts the
// run before any container is touched. Container failures are recorded in the
// report and do not stop the run; the finish notification is always attempted
// once the run has started. The returned error is non-nil if anything failed.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := NewReport(r.detailed)

	if err := r.notify(ctx, notification.Event{
		Type:      notification.EventRunStarted,
		Timestamp: time.Now(),
	}); err != nil {
		return report, fmt.Errorf("%w: %w", ErrMonitoring, err)
	}

	startTime := time.Now()

	targets, err := r.Targets(ctx)
	if err != nil {
		slog.Error("failed to list containers", "error", err)
		report.SetError(err)
	}

	for _, target := range targets {
		// No new dumps once the run is cancelled
		if ctx.Err() != nil {
			report.SetError(fmt.Errorf("run cancelled before %s: %w", target.Container.Name, ctx.Err()))
			break
		}
		report.Record(r.executor.Execute(ctx, target))
	}

	failed := len(report.Failed())
	slog.Info("backup run finished",
		"backed_up", len(report.Outcomes)-failed,
		"failed", failed,
		"duration", time.Since(startTime),
	)

	runErr := report.Err()

	// A cancelled context would fail the finish ping as well
	notifyCtx := context.WithoutCancel(ctx)
	if err := r.notify(notifyCtx, notification.Event{
		Type:      notification.EventRunFinished,
		Report:    report.String(),
		Succeeded: len(report.Outcomes) - failed,
		Failed:    failed,
		Timestamp: time.Now(),
	}); err != nil {
		return report, errors.Join(runErr, fmt.Errorf("%w: %w", ErrMonitoring, err))
	}

	return report, runErr
}

func (r *Runner) notify(ctx context.Context, event notification.Event) error {
	if r.notifier == nil {
		return nil
	}
	return r.notifier.Notify(ctx, event)
}
