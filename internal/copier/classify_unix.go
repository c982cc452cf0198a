//go:build !windows

package copier

import (
	"os"
	"syscall"

	"github.com/cockroachdb/errors"
)

// transient reports whether err indicates the file is temporarily in
// use and the copy is worth retrying. Permission and busy errors are
// transient; missing paths, full disks, and everything else fail fast.
func transient(err error) bool {
	if errors.Is(err, os.ErrPermission) {
		return true
	}
	return errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETXTBSY) ||
		errors.Is(err, syscall.EAGAIN)
}
