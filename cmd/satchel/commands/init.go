package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"satchel/internal/config"
	satchelerrors "satchel/internal/errors"
	"satchel/internal/paths"
	"satchel/internal/volume"
	"satchel/pkg/fileutil"
)

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false,
		"overwrite an existing config file")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Write a starter configuration file to the satchel config directory.

When run interactively, a mounted volume can be picked to pre-fill the
drive destination; otherwise the starter config delivers to a local
directory and the drive settings carry example values.`,
	Example: `  # Write the starter config
  satchel init

  # Replace an existing config
  satchel init --force`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	target := filepath.Join(paths.ConfigDir(), "config.yaml")

	if _, err := os.Stat(target); err == nil && !initForce {
		return satchelerrors.NewUserError(
			errors.Newf("config file already exists at %s", target),
			"Pass --force to overwrite it")
	}

	destType := config.TypeDirectory
	driveName := "BACKUP"
	if term.IsTerminal(int(os.Stdin.Fd())) {
		if label, ok := pickVolumeLabel(); ok {
			destType = config.TypeDrive
			driveName = label
		}
	}
	cfg := starterConfig(destType, driveName)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return satchelerrors.NewSystemError(
			errors.Wrap(err, "creating config directory"), "")
	}
	if err := fileutil.AtomicWriteYAML(target, cfg); err != nil {
		return satchelerrors.NewSystemError(
			errors.Wrap(err, "writing config file"), "")
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s✓ wrote %s%s\n", colorGreen, target, colorReset)
	fmt.Fprintln(w, "Edit the sources: list, then schedule: satchel run")
	return nil
}

// starterFile mirrors the config surface with durations as strings, so
// the generated file reads "1s" rather than raw nanoseconds.
type starterFile struct {
	Count    int      `yaml:"count"`
	Sources  []string `yaml:"sources"`
	Archiver struct {
		Command   string `yaml:"command"`
		Extension string `yaml:"extension"`
	} `yaml:"archiver"`
	Retry struct {
		MaxAttempts int    `yaml:"max_attempts"`
		Delay       string `yaml:"delay"`
	} `yaml:"retry"`
	Destination struct {
		Type            string `yaml:"type"`
		DirectoryConfig struct {
			OutputPath string `yaml:"output_path"`
		} `yaml:"directory_config"`
		DriveConfig struct {
			DriveName    string `yaml:"drive_name"`
			SubDirectory string `yaml:"sub_directory"`
			PollInterval string `yaml:"poll_interval"`
			WaitTimeout  string `yaml:"wait_timeout"`
		} `yaml:"drive_config"`
	} `yaml:"destination"`
}

// starterConfig returns the config written by init: the documented
// defaults plus example values for the fields that have none.
func starterConfig(destType, driveName string) *starterFile {
	var f starterFile
	f.Count = 7
	f.Sources = []string{}
	f.Archiver.Command = "7za"
	f.Archiver.Extension = ".7z"
	f.Retry.MaxAttempts = 5
	f.Retry.Delay = time.Second.String()
	f.Destination.Type = destType
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	f.Destination.DirectoryConfig.OutputPath = filepath.Join(home, "backups")
	f.Destination.DriveConfig.DriveName = driveName
	f.Destination.DriveConfig.SubDirectory = "backups"
	f.Destination.DriveConfig.PollInterval = (10 * time.Second).String()
	f.Destination.DriveConfig.WaitTimeout = "0s"
	return &f
}

// pickVolumeLabel offers an interactive pick of a mounted volume.
// Aborting the picker keeps the directory default.
func pickVolumeLabel() (string, bool) {
	vols := volume.Host().Volumes()
	if len(vols) == 0 {
		return "", false
	}

	idx, err := fuzzyfinder.Find(
		vols,
		func(i int) string {
			return fmt.Sprintf("%s (%s)", vols[i].Label, vols[i].Root)
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return fmt.Sprintf("Label: %s\nRoot:  %s\n\nArchives will be delivered to\n%s",
				vols[i].Label, vols[i].Root,
				filepath.Join(vols[i].Root, "backups"))
		}),
	)
	if err != nil {
		// Includes fuzzyfinder.ErrAbort: the user declined to pick.
		return "", false
	}
	return vols[idx].Label, true
}
