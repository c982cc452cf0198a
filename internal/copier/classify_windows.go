//go:build windows

package copier

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"
)

// transient reports whether err indicates the file is temporarily in
// use and the copy is worth retrying. Sharing and lock violations come
// from antivirus and indexing services holding freshly written files;
// missing paths, full disks, and everything else fail fast.
func transient(err error) bool {
	if errors.Is(err, os.ErrPermission) {
		return true
	}
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) ||
		errors.Is(err, windows.ERROR_LOCK_VIOLATION)
}
