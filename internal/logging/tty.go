package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether w writes to a terminal. Anything exposing an
// Fd() method is probed; other writers (buffers, pipes wrapped in
// bufio) are treated as non-terminals.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether ANSI color output is appropriate for w.
// Color is off for non-terminals, when NO_COLOR is set (no-color.org),
// and for TERM=dumb.
func SupportsColor(w io.Writer) bool {
	return supportsColor(IsTTY(w))
}

func supportsColor(isTTY bool) bool {
	if !isTTY {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}
