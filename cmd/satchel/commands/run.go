package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"satchel/internal/archive"
	"satchel/internal/config"
	"satchel/internal/copier"
	"satchel/internal/dispatch"
	"satchel/internal/engine"
	satchelerrors "satchel/internal/errors"
	"satchel/internal/logging"
	"satchel/internal/paths"
	"satchel/internal/volume"
)

var keepStaged bool

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&keepStaged, "keep-staged", false,
		"keep the staged archive in the work directory after delivery")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Archive the configured sources and deliver the result",
	Long: `Archive the configured source paths with the external compression
tool, deliver the archive to every configured destination, and rotate
old archives out of each destination.

A drive destination waits for the volume to be mounted; interrupt the
run with Ctrl-C or bound the wait with destination.drive_config.wait_timeout.

The run result is also written as JSON to the state directory so a
scheduler can inspect the last run without parsing logs.`,
	Example: `  # Run with the default config search path
  satchel run

  # Run against an explicit config file
  satchel run --config /etc/satchel/config.yaml`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if len(cfg.Sources) == 0 {
		return satchelerrors.NewUserError(satchelerrors.ErrNothingToBackUp,
			"Add at least one path under sources: in the config file")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	log := logging.FromContext(ctx)
	w := cmd.OutOrStdout()

	builder := archive.NewBuilder(cfg.Archiver, cfg.ResolvedWorkPath(), log)
	archivePath, err := builder.Build(ctx, cfg.Sources)
	if err != nil {
		return satchelerrors.NewSystemError(
			errors.Wrap(err, "building archive"),
			fmt.Sprintf("Check that %q is installed and on PATH", cfg.Archiver.Command))
	}
	fmt.Fprintf(w, "%s✓ archived %d source(s) into %s%s\n",
		colorGreen, len(cfg.Sources), filepath.Base(archivePath), colorReset)

	agg, err := deliverArchive(ctx, cfg, archivePath, w, log)
	if err != nil {
		return err
	}

	if agg.OK() && !keepStaged {
		if err := os.Remove(archivePath); err != nil {
			log.Warn("failed to remove staged archive",
				"path", archivePath, "error", err)
		}
	} else if !agg.OK() {
		fmt.Fprintf(w, "%sstaged archive kept at %s%s\n",
			colorGray, archivePath, colorReset)
	}

	return runError(agg)
}

// deliverArchive dispatches a staged archive to every configured
// destination, prints the per-leg summary, and persists the run report.
// Shared by run and deliver.
func deliverArchive(ctx context.Context, cfg *config.Config, archivePath string, w io.Writer, log *slog.Logger) (engine.Aggregate, error) {
	disp := dispatch.New(
		copier.New(log),
		volume.NewLocator(volume.Host()),
		copier.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Delay:       cfg.Retry.Delay,
		},
		log,
	)

	eng := engine.New(disp, log)
	agg, err := eng.Run(ctx, engine.Job{
		ArchivePath: archivePath,
		ArchiveName: filepath.Base(archivePath),
		Retention:   cfg.Count,
		Destination: cfg.Destination,
	})
	if err != nil {
		return agg, satchelerrors.NewSystemError(err, "")
	}

	for _, o := range agg.Outcomes {
		printOutcome(w, o)
	}

	if err := engine.WriteReport(paths.ReportPath(), agg.Report()); err != nil {
		log.Warn("failed to write run report",
			"path", paths.ReportPath(), "error", err)
	}

	return agg, nil
}

// runError maps the aggregate outcome to the process exit status.
// Full success exits zero, anything else exits with a system error so
// the scheduler can flag the run.
func runError(agg engine.Aggregate) error {
	if agg.OK() {
		return nil
	}

	var failed []string
	for _, o := range agg.Outcomes {
		if !o.Success() {
			failed = append(failed, string(o.Kind))
		}
	}

	msg := "delivery failed"
	if agg.Partial() {
		msg = "delivery partially failed; at least one copy of the archive exists"
	}

	suggestion := ""
	for _, o := range agg.Outcomes {
		if errors.Is(o.Err, dispatch.ErrWaitCancelled) {
			suggestion = "The volume never appeared; plug it in or raise destination.drive_config.wait_timeout"
			break
		}
	}

	return satchelerrors.NewSystemError(
		errors.Newf("%s (failed: %v)", msg, failed), suggestion)
}
