// Package archive produces the compressed archive for one backup run
// by invoking an external compression tool.
//
// The archiver is treated as opaque: it is handed an output path and
// the source paths, and either produces a file at that path or fails.
// Compression itself is never implemented here.
package archive

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"satchel/internal/config"
)

// TimestampFormat names archives after the run's start time. The format
// is load-bearing: retention rotation falls back to lexicographic
// filename order, which this layout keeps chronological.
const TimestampFormat = "2006-01-02_15-04-05"

// Sentinel errors for archive production.
var (
	// ErrBuildFailed indicates the archiver exited non-zero.
	ErrBuildFailed = errors.New("archive production failed")

	// ErrArchiveMissing indicates the expected archive file does not
	// exist, either because the archiver silently produced nothing or
	// because a caller-supplied archive path is wrong.
	ErrArchiveMissing = errors.New("archive file missing")
)

// Builder stages archives in a work directory via the external archiver.
type Builder struct {
	command   string
	extension string
	workDir   string
	log       *slog.Logger

	// now supplies the run timestamp. Overridable in tests.
	now func() time.Time
}

// NewBuilder creates a Builder from the archiver configuration.
// A nil logger discards diagnostics.
func NewBuilder(cfg config.Archiver, workDir string, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Builder{
		command:   cfg.Command,
		extension: cfg.Extension,
		workDir:   workDir,
		log:       log,
		now:       time.Now,
	}
}

// FileName returns the archive file name for a run started at t.
func (b *Builder) FileName(t time.Time) string {
	return t.Format(TimestampFormat) + b.extension
}

// Extension returns the configured archive extension, including the dot.
func (b *Builder) Extension() string {
	return b.extension
}

// Build archives the source paths into the work directory and returns
// the staged archive path. The archiver runs with a structured argument
// list; source paths containing spaces or shell metacharacters are
// passed through verbatim.
func (b *Builder) Build(ctx context.Context, sources []string) (string, error) {
	if len(sources) == 0 {
		return "", errors.New("no sources to archive")
	}

	if err := os.MkdirAll(b.workDir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating work directory")
	}

	name := b.FileName(b.now())
	out := filepath.Join(b.workDir, name)

	args := append([]string{"a", out}, sources...)
	b.log.Info("producing archive", "command", b.command, "archive", out, "sources", len(sources))

	cmd := exec.CommandContext(ctx, b.command, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", errors.Wrapf(ErrBuildFailed, "%s %v: %v: %s", b.command, args, err, output)
	}

	if _, err := os.Stat(out); err != nil {
		return "", errors.Wrapf(ErrArchiveMissing, "archiver exited cleanly but %s does not exist", out)
	}

	b.log.Debug("archive staged", "path", out)
	return out, nil
}
