// Package commands implements the CLI commands for satchel.
package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"satchel/internal/archive"
	"satchel/internal/config"
	satchelerrors "satchel/internal/errors"
	"satchel/internal/logging"
	"satchel/internal/paths"
)

// version is set at build time via ldflags.
// Default to a development version for local builds.
const version = "0.1.0"

// cfgFile holds the value of the --config flag.
var cfgFile string

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

// loadedConfig holds the config loaded during initialization.
var loadedConfig *config.Config

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./config.* or the satchel config directory)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("satchel version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	loadedConfig, configLoadErr = config.Load(cfgFile)
}

var rootCmd = &cobra.Command{
	Use:   "satchel",
	Short: "Unattended scheduled backups to directories and removable drives",
	Long: `satchel archives a configured set of source paths with an external
compression tool and delivers the archive to a local or network
directory, to a removable volume identified by its label, or both.

It is meant to be invoked by cron or the Task Scheduler: the drive
destination waits for the volume to be plugged in, copies are retried
through antivirus and indexing locks, and old archives are rotated away
so a destination never accumulates unbounded backups.

Volumes are matched by label rather than mount point or drive letter,
so the same stick is found no matter where the host mounts it.`,
	Example: `  # Write a starter configuration
  satchel init

  # Archive the configured sources and deliver the result
  satchel run

  # Deliver an archive that was already produced
  satchel deliver /path/to/2026-08-31_02-00-00.7z

  # Enforce retention without delivering anything
  satchel prune

  # Show mounted volumes and their labels
  satchel volumes`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return satchelerrors.NewUserError(
			errors.New("cannot use --quiet and --verbose together"), "")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity
		if v == 0 {
			if val, ok := os.LookupEnv("SATCHEL_DEBUG"); ok && (val == "1" || val == "true") {
				v = 1
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	// Unattended runs keep an on-disk record even when no --log-file is
	// given; the other commands log to stderr only.
	target := logFile
	if target == "" && cmd.Name() == "run" {
		target = defaultRunLogFile(time.Now())
	}

	if target != "" {
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return satchelerrors.NewUserError(err, "failed to create the log file directory")
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return satchelerrors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// requireConfig returns the loaded configuration after validation.
// Every validation violation is reported at once.
func requireConfig() (*config.Config, error) {
	if configLoadErr != nil {
		return nil, satchelerrors.NewConfigError(configLoadErr)
	}
	if errs := config.Validate(loadedConfig); len(errs) > 0 {
		return nil, satchelerrors.NewConfigError(
			errors.Wrap(errors.Join(errs...), "invalid configuration"))
	}
	return loadedConfig, nil
}

// signalContext derives a context cancelled by SIGINT/SIGTERM, so the
// drive-wait loop stays interruptible during unattended runs.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// defaultRunLogFile names the per-run log file the way archives are
// named, so log files sort chronologically too.
func defaultRunLogFile(t time.Time) string {
	return filepath.Join(paths.LogDir(), t.Format(archive.TimestampFormat)+".log")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
