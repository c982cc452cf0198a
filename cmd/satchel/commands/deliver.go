package commands

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	satchelerrors "satchel/internal/errors"
	"satchel/internal/logging"
)

func init() {
	rootCmd.AddCommand(deliverCmd)
}

var deliverCmd = &cobra.Command{
	Use:   "deliver <archive>",
	Short: "Deliver an existing archive to the configured destinations",
	Long: `Deliver an archive that was already produced, skipping the archiving
step. Useful for re-delivering a staged archive after a failed run, or
for delivering archives produced by another tool.

The archive keeps its file name at every destination, and rotation runs
the same way it does for satchel run.`,
	Example: `  # Re-deliver a staged archive after the drive was plugged in
  satchel deliver ~/.local/state/satchel/work/2026-08-31_02-00-00.7z`,
	Args: cobra.ExactArgs(1),
	RunE: runDeliver,
}

func runDeliver(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	archivePath := args[0]
	if _, err := os.Stat(archivePath); err != nil {
		return satchelerrors.NewUserError(
			errors.Wrapf(err, "archive %s", archivePath), "")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	agg, err := deliverArchive(ctx, cfg, archivePath, cmd.OutOrStdout(), logging.FromContext(ctx))
	if err != nil {
		return err
	}
	return runError(agg)
}
