// Package logging provides structured logging for the satchel CLI,
// built on log/slog.
//
// Interactive runs get a TTY-optimized colorized text handler; scheduled
// runs typically add a JSON file handler through [NewMultiHandler] so the
// operator can inspect past unattended runs. Color output honors the
// NO_COLOR convention and is disabled when stderr is not a terminal.
//
// Components receive their logger by parameter or through a context via
// [NewContext] and [FromContext]; nothing in the engine writes to the
// process-wide default logger directly.
package logging
