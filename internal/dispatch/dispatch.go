// Package dispatch delivers a staged archive to its configured
// destinations.
//
// Each destination runs the same sequence: ensure the target directory
// exists, copy with retry, rotate retention, report the outcome. The
// drive destination additionally waits for its volume to appear, and
// re-enters the wait if the volume vanishes mid-delivery. "Both" mode
// runs the directory leg then the drive leg sequentially; one leg's
// failure never prevents the other from running.
package dispatch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"satchel/internal/config"
	"satchel/internal/copier"
	"satchel/internal/rotate"
	"satchel/internal/volume"
)

// ErrWaitCancelled indicates the run was cancelled or timed out while
// the target volume had still not appeared. It is a terminal outcome
// distinct from a delivery failure on a present volume.
var ErrWaitCancelled = errors.New("cancelled while waiting for volume")

// Job carries the per-run delivery inputs. It is created once per
// invocation, never mutated, and discarded when the run completes.
type Job struct {
	// ArchivePath is the staged archive produced for this run.
	ArchivePath string

	// ArchiveName is the file name the archive keeps at every
	// destination. Its timestamp layout keeps lexicographic order
	// chronological for rotation.
	ArchiveName string

	// Retention is the maximum archive count per destination.
	Retention int
}

// extension returns the archive extension used to select rotation
// candidates.
func (j Job) extension() string {
	return filepath.Ext(j.ArchiveName)
}

// Copier is the resilient copy dependency.
type Copier interface {
	Copy(ctx context.Context, src, dst string, policy copier.RetryPolicy) error
}

// Locator is the volume discovery dependency.
type Locator interface {
	Locate(label string) (volume.Volume, bool)
}

// Dispatcher orchestrates delivery to the configured destinations.
type Dispatcher struct {
	copier  Copier
	locator Locator
	policy  copier.RetryPolicy
	log     *slog.Logger
}

// New creates a Dispatcher. A nil logger discards diagnostics.
func New(c Copier, l Locator, policy copier.RetryPolicy, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{copier: c, locator: l, policy: policy, log: log}
}

// Deliver runs the job against every destination leg selected by dest,
// sequentially, and returns one outcome per leg in dispatch order.
// An unknown destination type yields a single failed outcome.
func (d *Dispatcher) Deliver(ctx context.Context, job Job, dest config.Destination) []Outcome {
	switch dest.Type {
	case config.TypeDirectory:
		return []Outcome{d.DeliverDirectory(ctx, job, dest.DirectoryConfig)}
	case config.TypeDrive:
		return []Outcome{d.DeliverDrive(ctx, job, dest.DriveConfig)}
	case config.TypeBoth:
		// Sequential on purpose: failure attribution stays simple and
		// the two legs never contend for disk I/O.
		return []Outcome{
			d.DeliverDirectory(ctx, job, dest.DirectoryConfig),
			d.DeliverDrive(ctx, job, dest.DriveConfig),
		}
	default:
		return []Outcome{{
			Kind: Kind(dest.Type),
			Err:  errors.Newf("unknown destination type %q", dest.Type),
		}}
	}
}

// DeliverDirectory delivers the archive to a fixed directory.
func (d *Dispatcher) DeliverDirectory(ctx context.Context, job Job, cfg config.DirectoryConfig) Outcome {
	return d.deliverTo(ctx, job, KindDirectory, cfg.OutputPath)
}

// DeliverDrive waits for the configured volume to appear, then delivers
// the archive to its sub-directory.
//
// The wait polls on cfg.PollInterval and is bounded by cfg.WaitTimeout
// (zero means wait until ctx is cancelled). If the volume vanishes after
// being found, delivery re-enters the wait rather than failing outright.
func (d *Dispatcher) DeliverDrive(ctx context.Context, job Job, cfg config.DriveConfig) Outcome {
	if cfg.WaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.WaitTimeout)
		defer cancel()
	}

	d.log.Info("waiting for volume", "label", cfg.DriveName, "poll_interval", cfg.PollInterval)

	for {
		vol, found := d.locator.Locate(cfg.DriveName)
		if !found {
			d.log.Debug("volume not present yet", "label", cfg.DriveName)
			if err := d.wait(ctx, cfg.PollInterval); err != nil {
				return Outcome{Kind: KindDrive, Err: errors.Wrapf(ErrWaitCancelled, "label %q: %v", cfg.DriveName, err)}
			}
			continue
		}

		d.log.Info("volume found", "label", cfg.DriveName, "root", vol.Root)
		out := d.deliverTo(ctx, job, KindDrive, filepath.Join(vol.Root, cfg.SubDirectory))
		if out.Err == nil {
			return out
		}

		// The volume being yanked mid-delivery is the device-absence
		// case again, not a delivery verdict. Anything else is fatal.
		if _, statErr := os.Stat(vol.Root); statErr == nil {
			return out
		}
		d.log.Warn("volume vanished during delivery, waiting for it again",
			"label", cfg.DriveName, "error", out.Err)
		if err := d.wait(ctx, cfg.PollInterval); err != nil {
			return Outcome{Kind: KindDrive, Err: errors.Wrapf(ErrWaitCancelled, "label %q: %v", cfg.DriveName, err)}
		}
	}
}

// deliverTo runs the shared Preparing → Copying → Rotating sequence
// against one resolved target directory.
func (d *Dispatcher) deliverTo(ctx context.Context, job Job, kind Kind, targetDir string) Outcome {
	out := Outcome{Kind: kind}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		out.Err = errors.Wrapf(err, "preparing %s", targetDir)
		return out
	}

	finalPath := filepath.Join(targetDir, job.ArchiveName)
	if err := d.copier.Copy(ctx, job.ArchivePath, finalPath, d.policy); err != nil {
		out.Err = err
		return out
	}
	out.FinalPath = finalPath
	d.log.Info("archive delivered", "destination", kind, "path", finalPath)

	// Rotation runs after the copy, so the just-delivered archive is a
	// candidate itself; with a retention smaller than the backlog it
	// can be deleted immediately. Intended, not a bug.
	res, err := rotate.Rotate(targetDir, job.extension(), job.Retention)
	out.Removed = res.Removed
	if err != nil {
		out.RotationWarnings = append(out.RotationWarnings, err.Error())
	}
	for _, f := range res.Failed {
		out.RotationWarnings = append(out.RotationWarnings, f.Error())
	}
	for _, w := range out.RotationWarnings {
		d.log.Warn("rotation problem", "destination", kind, "detail", w)
	}
	for _, removed := range res.Removed {
		d.log.Info("removed old archive", "destination", kind, "path", removed)
	}

	return out
}

// wait sleeps for one poll interval, honoring cancellation.
func (d *Dispatcher) wait(ctx context.Context, interval time.Duration) error {
	select {
	case <-time.After(interval):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
