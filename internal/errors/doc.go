// Package errors provides error handling conventions for the satchel CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions.
//
// # Exit Codes
//
//   - ExitSuccess (0): Every dispatched destination succeeded
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, device, permissions, etc.)
//
// A partially failed delivery (one leg of a "both" destination failing)
// maps to ExitSystem; the run report records which leg failed.
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. It supports error unwrapping via [errors.Unwrap] and
// [errors.As]:
//
//	err := errors.NewConfigError(errors.ErrInvalidConfig)
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
