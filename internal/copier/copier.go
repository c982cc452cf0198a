// Package copier copies archive files with bounded retry on transient
// I/O failures.
//
// Antivirus scanners and indexing services briefly lock freshly written
// files, so a copy that fails with a permission or sharing error is
// retried after a delay. Structural failures (missing source, full or
// unwritable destination) fail immediately without consuming retries.
package copier

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cockroachdb/errors"
)

// RetryPolicy bounds the retry loop for one copy operation.
// A copy blocks its caller for at most MaxAttempts × Delay plus the
// transfer time itself.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Delay is the wait between consecutive attempts.
	Delay time.Duration
}

// ErrVerifyFailed indicates the destination content did not match the
// source after a copy that reported success.
var ErrVerifyFailed = errors.New("destination content does not match source")

// ExhaustedError is returned when every attempt hit a transient failure.
type ExhaustedError struct {
	// Attempts is the number of attempts made.
	Attempts int

	// Last is the error from the final attempt.
	Last error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("copy failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Copier performs verified file copies with retry.
type Copier struct {
	log *slog.Logger

	// copyOnce performs a single copy attempt. Overridable in tests.
	copyOnce func(src, dst string) error
}

// New creates a Copier logging through the given logger.
// A nil logger discards retry diagnostics.
func New(log *slog.Logger) *Copier {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Copier{
		log:      log,
		copyOnce: copyFile,
	}
}

// Copy copies src to dst, overwriting dst if present, preserving the
// source modification time and verifying the destination is
// byte-identical afterwards.
//
// Transient failures (file locked, access denied) are retried up to
// policy.MaxAttempts with policy.Delay between attempts. Any other
// failure returns immediately. The delay honors ctx cancellation.
func (c *Copier) Copy(ctx context.Context, src, dst string, policy RetryPolicy) error {
	if policy.MaxAttempts < 1 {
		return errors.Newf("retry policy needs at least one attempt, got %d", policy.MaxAttempts)
	}

	var last error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := c.copyOnce(src, dst)
		if err == nil {
			return nil
		}
		if !transient(err) {
			return errors.Wrapf(err, "copying %s", src)
		}

		last = err
		if attempt == policy.MaxAttempts {
			break
		}

		c.log.Warn("transient copy failure, retrying",
			"src", src, "attempt", attempt, "delay", policy.Delay, "error", err)

		select {
		case <-time.After(policy.Delay):
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "copy cancelled during retry wait")
		}
	}

	return &ExhaustedError{Attempts: policy.MaxAttempts, Last: last}
}

// copyFile performs one verified copy attempt: content, then the source
// modification time, then a full re-read of the destination to confirm
// byte identity.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	// Hash while copying; the destination is re-hashed for verification.
	h := sha256.New()
	w := io.MultiWriter(dstFile, h)

	if _, err := io.Copy(w, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}

	if err := os.Chtimes(dst, time.Now(), srcInfo.ModTime()); err != nil {
		return err
	}

	dstSum, err := hashFile(dst)
	if err != nil {
		return err
	}
	if !bytes.Equal(dstSum, h.Sum(nil)) {
		return ErrVerifyFailed
	}

	return nil
}

// hashFile computes the SHA256 hash of a file.
func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
