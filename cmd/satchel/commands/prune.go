package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"satchel/internal/config"
	satchelerrors "satchel/internal/errors"
	"satchel/internal/rotate"
	"satchel/internal/volume"
)

var pruneKeep int

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().IntVar(&pruneKeep, "keep", 0,
		"number of archives to keep (default: the configured count)")
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Rotate old archives out of the configured destinations",
	Long: `Enforce the retention count at every configured destination without
delivering anything.

Unlike satchel run, a drive destination is checked once; if the volume
is not mounted the prune fails instead of waiting for it.`,
	Example: `  # Enforce the configured retention count
  satchel prune

  # Keep only the three newest archives
  satchel prune --keep 3`,
	RunE: runPrune,
}

func runPrune(cmd *cobra.Command, _ []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	keep := cfg.Count
	if cmd.Flags().Changed("keep") {
		if pruneKeep < 0 {
			return satchelerrors.NewUserError(
				errors.Newf("invalid --keep %d: must be zero or positive", pruneKeep), "")
		}
		keep = pruneKeep
	}

	var dirs []string
	switch cfg.Destination.Type {
	case config.TypeDirectory:
		dirs = append(dirs, cfg.Destination.DirectoryConfig.OutputPath)
	case config.TypeDrive:
		dir, err := driveBackupDir(cfg.Destination.DriveConfig)
		if err != nil {
			return err
		}
		dirs = append(dirs, dir)
	case config.TypeBoth:
		dirs = append(dirs, cfg.Destination.DirectoryConfig.OutputPath)
		dir, err := driveBackupDir(cfg.Destination.DriveConfig)
		if err != nil {
			return err
		}
		dirs = append(dirs, dir)
	}

	w := cmd.OutOrStdout()
	failed := false
	for _, dir := range dirs {
		if err := pruneDir(w, dir, cfg.Archiver.Extension, keep); err != nil {
			fmt.Fprintf(w, "%s✗ %s: %v%s\n", colorRed, dir, err, colorReset)
			failed = true
		}
	}

	if failed {
		return satchelerrors.NewSystemError(errors.New("pruning failed"), "")
	}
	return nil
}

// driveBackupDir locates the drive destination without waiting.
func driveBackupDir(cfg config.DriveConfig) (string, error) {
	loc := volume.NewLocator(volume.Host())
	vol, ok := loc.Locate(cfg.DriveName)
	if !ok {
		return "", satchelerrors.NewUserError(
			errors.Newf("volume %q is not mounted", cfg.DriveName),
			"Plug the drive in, or run: satchel volumes to see what is mounted")
	}
	return filepath.Join(vol.Root, cfg.SubDirectory), nil
}

func pruneDir(w io.Writer, dir, ext string, keep int) error {
	res, err := rotate.Rotate(dir, ext, keep)
	if err != nil {
		return err
	}

	if len(res.Removed) == 0 {
		fmt.Fprintf(w, "%s✓ %s: nothing to prune%s\n", colorGreen, dir, colorReset)
	} else {
		fmt.Fprintf(w, "%s✓ %s: removed %d archive(s)%s\n",
			colorGreen, dir, len(res.Removed), colorReset)
		for _, removed := range res.Removed {
			fmt.Fprintf(w, "%s  %s%s\n", colorGray, removed, colorReset)
		}
	}
	for _, f := range res.Failed {
		fmt.Fprintf(w, "%s  warning: %v%s\n", colorYellow, f, colorReset)
	}
	return nil
}
