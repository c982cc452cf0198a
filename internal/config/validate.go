package config

import (
	"errors"
	"strings"
)

// Validation errors for configuration fields.
var (
	// ErrUnknownDestinationType indicates the destination type literal
	// is not one of "directory", "drive", or "both".
	ErrUnknownDestinationType = errors.New(`destination type must be one of "directory", "drive", "both"`)

	// ErrMissingOutputPath indicates a directory destination without an output path.
	ErrMissingOutputPath = errors.New("directory_config.output_path is required")

	// ErrMissingDriveName indicates a drive destination without a volume label.
	ErrMissingDriveName = errors.New("drive_config.drive_name is required")

	// ErrLabelTooLong indicates a volume label over the cross-filesystem limit.
	ErrLabelTooLong = errors.New("drive_config.drive_name exceeds 31 characters")

	// ErrInvalidCount indicates a negative retention count.
	ErrInvalidCount = errors.New("count must be non-negative")

	// ErrInvalidRetry indicates a retry policy that can never attempt a copy.
	ErrInvalidRetry = errors.New("retry.max_attempts must be at least 1")

	// ErrInvalidInterval indicates a non-positive polling interval.
	ErrInvalidInterval = errors.New("drive_config.poll_interval must be positive")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
//
// Source paths are deliberately not checked here: only the run command
// needs them, and a deliver-only invocation may legitimately omit them.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Count < 0 {
		errs = append(errs, ErrInvalidCount)
	}
	if cfg.Retry.MaxAttempts < 1 {
		errs = append(errs, ErrInvalidRetry)
	}
	if cfg.Retry.Delay < 0 {
		errs = append(errs, &FieldError{Field: "retry.delay", Err: errors.New("must be non-negative")})
	}

	wantsDirectory := false
	wantsDrive := false
	switch cfg.Destination.Type {
	case TypeDirectory:
		wantsDirectory = true
	case TypeDrive:
		wantsDrive = true
	case TypeBoth:
		wantsDirectory = true
		wantsDrive = true
	default:
		errs = append(errs, ErrUnknownDestinationType)
	}

	if wantsDirectory && cfg.Destination.DirectoryConfig.OutputPath == "" {
		errs = append(errs, ErrMissingOutputPath)
	}

	if wantsDrive {
		label := cfg.Destination.DriveConfig.DriveName
		switch {
		case label == "":
			errs = append(errs, ErrMissingDriveName)
		case len(label) > MaxLabelLength:
			errs = append(errs, ErrLabelTooLong)
		}
		if cfg.Destination.DriveConfig.PollInterval <= 0 {
			errs = append(errs, ErrInvalidInterval)
		}
		if cfg.Destination.DriveConfig.WaitTimeout < 0 {
			errs = append(errs, &FieldError{Field: "drive_config.wait_timeout", Err: errors.New("must be non-negative")})
		}
	}

	for _, src := range cfg.Sources {
		if strings.ContainsRune(src, '\x00') {
			errs = append(errs, &FieldError{Field: "sources", Err: errors.New("path contains a null byte")})
		}
	}

	return errs
}

// FieldError associates a validation error with a config field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
