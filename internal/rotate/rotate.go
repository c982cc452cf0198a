// Package rotate enforces a maximum count of archive files in a
// destination directory by deleting the oldest excess.
//
// Deletion is permanent. Rotation runs after every successful delivery,
// so a destination can never silently accumulate unbounded backups.
package rotate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// Failure records one archive that could not be deleted.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("deleting %s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result reports what a rotation pass did.
type Result struct {
	// Removed lists the archives deleted, oldest first.
	Removed []string

	// Failed lists archives that should have been deleted but could not
	// be. Individual failures do not abort the pass.
	Failed []Failure
}

// Rotate deletes the oldest archives in dir until at most max remain.
//
// Only plain files directly inside dir whose name ends in ext are
// candidates; subdirectories and other file types are ignored. max of
// zero is honored literally and deletes every candidate. Candidates are
// ordered by modification time with the filename as tiebreak; archive
// names embed the run timestamp, so both orders are chronological, and
// the copier preserves the staged archive's mtime.
//
// Per-file deletion failures are collected in the Result rather than
// aborting the pass. The returned error is non-nil only when the
// directory cannot be listed or when every single deletion failed.
func Rotate(dir, ext string, max int) (Result, error) {
	var res Result

	if max < 0 {
		return res, errors.Newf("retention count must be non-negative, got %d", max)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return res, errors.Wrapf(err, "listing %s", dir)
	}

	type candidate struct {
		name string
		info fs.FileInfo
	}
	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Deleted or unreadable mid-scan; not a rotation candidate.
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, candidate{name: entry.Name(), info: info})
	}

	excess := len(candidates) - max
	if excess <= 0 {
		return res, nil
	}

	// Oldest first.
	slices.SortFunc(candidates, func(a, b candidate) int {
		if a.info.ModTime().Before(b.info.ModTime()) {
			return -1
		}
		if a.info.ModTime().After(b.info.ModTime()) {
			return 1
		}
		return strings.Compare(a.name, b.name)
	})

	for _, c := range candidates[:excess] {
		path := filepath.Join(dir, c.name)
		if err := os.Remove(path); err != nil {
			res.Failed = append(res.Failed, Failure{Path: path, Err: err})
			continue
		}
		res.Removed = append(res.Removed, path)
	}

	if len(res.Removed) == 0 && len(res.Failed) > 0 {
		return res, errors.Newf("rotation deleted nothing: all %d deletions failed, first: %v",
			len(res.Failed), res.Failed[0])
	}

	return res, nil
}
