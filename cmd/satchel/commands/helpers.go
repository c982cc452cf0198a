package commands

import (
	"fmt"
	"io"

	"satchel/internal/dispatch"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// printOutcome writes a one-line summary for a single delivery leg.
func printOutcome(w io.Writer, o dispatch.Outcome) {
	if o.Success() {
		fmt.Fprintf(w, "%s✓ %s: delivered to %s%s\n",
			colorGreen, o.Kind, o.FinalPath, colorReset)
	} else {
		fmt.Fprintf(w, "%s✗ %s: %v%s\n",
			colorRed, o.Kind, o.Err, colorReset)
	}
	for _, removed := range o.Removed {
		fmt.Fprintf(w, "%s  rotated out %s%s\n", colorGray, removed, colorReset)
	}
	for _, warn := range o.RotationWarnings {
		fmt.Fprintf(w, "%s  warning: %s%s\n", colorYellow, warn, colorReset)
	}
}
