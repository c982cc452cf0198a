// Package engine is the top-level entry point of the delivery core.
//
// Given a staged archive and the validated configuration, it dispatches
// delivery to each configured destination and aggregates the per-leg
// outcomes into one run result the caller can map to an exit code.
package engine

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"satchel/internal/archive"
	"satchel/internal/config"
	"satchel/internal/dispatch"
)

// Job is the immutable per-run input: where the staged archive lives,
// what it is called, how many archives each destination keeps, and
// where to deliver. Created once per invocation and discarded after
// the run completes.
type Job struct {
	ArchivePath string
	ArchiveName string
	Retention   int
	Destination config.Destination
}

// Aggregate is the combined result of one run across all destinations.
type Aggregate struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	ArchiveName string
	Outcomes    []dispatch.Outcome
}

// OK reports whether every dispatched destination succeeded.
func (a Aggregate) OK() bool {
	if len(a.Outcomes) == 0 {
		return false
	}
	for _, o := range a.Outcomes {
		if !o.Success() {
			return false
		}
	}
	return true
}

// Partial reports whether some destinations succeeded and others failed.
// Partial success is surfaced distinctly from total failure so the
// operator knows one copy of the archive exists somewhere.
func (a Aggregate) Partial() bool {
	succeeded, failed := 0, 0
	for _, o := range a.Outcomes {
		if o.Success() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded > 0 && failed > 0
}

// Engine runs backup jobs through a Dispatcher.
type Engine struct {
	dispatcher *dispatch.Dispatcher
	log        *slog.Logger
}

// New creates an Engine. A nil logger discards diagnostics.
func New(d *dispatch.Dispatcher, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{dispatcher: d, log: log}
}

// Run delivers the job's archive to every configured destination.
//
// The archive must already exist; the archive producer is assumed to
// have run. A missing archive fails fast with [archive.ErrArchiveMissing]
// before any destination is touched.
func (e *Engine) Run(ctx context.Context, job Job) (Aggregate, error) {
	agg := Aggregate{StartedAt: time.Now(), ArchiveName: job.ArchiveName}

	if _, err := os.Stat(job.ArchivePath); err != nil {
		return agg, errors.Wrapf(archive.ErrArchiveMissing, "%s: %v", job.ArchivePath, err)
	}

	e.log.Info("dispatching archive",
		"archive", job.ArchiveName,
		"destination", job.Destination.Type,
		"retention", job.Retention)

	agg.Outcomes = e.dispatcher.Deliver(ctx, dispatch.Job{
		ArchivePath: job.ArchivePath,
		ArchiveName: job.ArchiveName,
		Retention:   job.Retention,
	}, job.Destination)
	agg.FinishedAt = time.Now()

	for _, o := range agg.Outcomes {
		if o.Success() {
			e.log.Info("destination succeeded", "kind", o.Kind, "path", o.FinalPath)
		} else {
			e.log.Error("destination failed", "kind", o.Kind, "error", o.Err)
		}
	}

	return agg, nil
}
