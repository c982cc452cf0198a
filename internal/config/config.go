// Package config provides configuration management for satchel using Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"

	"satchel/internal/paths"
)

// Destination type literals accepted in the config file.
const (
	TypeDirectory = "directory"
	TypeDrive     = "drive"
	TypeBoth      = "both"
)

// MaxLabelLength is the longest accepted volume label. FAT32 caps labels
// at 11 characters and NTFS at 32; 31 is the practical cross-filesystem
// limit this tool enforces.
const MaxLabelLength = 31

// Config represents the top-level configuration structure.
// The keys mirror the original config.json surface consumed by the
// scheduler-invoked backup job.
type Config struct {
	// Count is the maximum number of archives retained per destination.
	Count int `mapstructure:"count" yaml:"count"`

	// WorkPath is the staging directory where archives are produced
	// before delivery. Empty means the default XDG state location.
	WorkPath string `mapstructure:"work_path" yaml:"work_path"`

	// Sources are the paths bundled into each archive.
	Sources []string `mapstructure:"sources" yaml:"sources"`

	Archiver    Archiver    `mapstructure:"archiver" yaml:"archiver"`
	Retry       Retry       `mapstructure:"retry" yaml:"retry"`
	Destination Destination `mapstructure:"destination" yaml:"destination"`
}

// Archiver describes the external compression tool.
type Archiver struct {
	// Command is the archiver executable. Invoked with a structured
	// argument list, never through a shell.
	Command string `mapstructure:"command" yaml:"command"`

	// Extension is the archive file extension, including the dot.
	Extension string `mapstructure:"extension" yaml:"extension"`
}

// Retry configures the copy retry policy for transient I/O failures.
type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay" yaml:"delay"`
}

// Destination selects where archives are delivered.
type Destination struct {
	// Type is one of "directory", "drive", or "both".
	Type string `mapstructure:"type" yaml:"type"`

	DirectoryConfig DirectoryConfig `mapstructure:"directory_config" yaml:"directory_config"`
	DriveConfig     DriveConfig     `mapstructure:"drive_config" yaml:"drive_config"`
}

// DirectoryConfig configures the local/network directory destination.
type DirectoryConfig struct {
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
}

// DriveConfig configures the removable-volume destination.
type DriveConfig struct {
	// DriveName is the volume label to wait for, not a mount point or
	// drive letter. Removable media keep their label across replugs.
	DriveName string `mapstructure:"drive_name" yaml:"drive_name"`

	// SubDirectory is the backup directory created under the volume root.
	SubDirectory string `mapstructure:"sub_directory" yaml:"sub_directory"`

	// PollInterval is how often the volume scan runs while waiting.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	// WaitTimeout bounds the wait for the volume to appear.
	// Zero means wait until the run is cancelled.
	WaitTimeout time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	// Environment variable support
	viper.SetEnvPrefix("SATCHEL")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("count", 7)
	viper.SetDefault("archiver.command", "7za")
	viper.SetDefault("archiver.extension", ".7z")
	viper.SetDefault("retry.max_attempts", 5)
	viper.SetDefault("retry.delay", "1s")
	viper.SetDefault("destination.type", TypeDirectory)
	viper.SetDefault("destination.drive_config.poll_interval", "10s")
	viper.SetDefault("destination.drive_config.wait_timeout", "0s")
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		switch {
		case path != "" && errors.Is(err, fs.ErrNotExist):
			// An explicit path surfaces as *fs.PathError, not as
			// viper's not-found error.
			return nil, fmt.Errorf("config file not found at %s: %w", path, err)
		case errors.As(err, &viper.ConfigFileNotFoundError{}):
			// Implicit search found nothing; defaults apply.
		default:
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// ResolvedWorkPath returns the configured work path, or the default XDG
// staging directory when unset.
func (c *Config) ResolvedWorkPath() string {
	if c.WorkPath != "" {
		return c.WorkPath
	}
	return paths.DefaultWorkDir()
}
