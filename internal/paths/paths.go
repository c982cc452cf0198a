// Package paths provides the default on-disk locations used by satchel.
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base
// Directory compliance. Configuration lives under the XDG config home,
// while run reports, log files, and the archive staging area live under
// the XDG state home, since they are machine-local operational state
// rather than user configuration.
package paths

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "satchel"

// ConfigDir returns the directory searched for the config file.
// On Linux: ~/.config/satchel
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// StateDir returns the directory for operational state.
// On Linux: ~/.local/state/satchel
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DefaultWorkDir returns the default staging directory where archives
// are produced before delivery. Used when work_path is not configured.
// Returns: <StateDir>/work
func DefaultWorkDir() string {
	return filepath.Join(StateDir(), "work")
}

// LogDir returns the directory for on-disk log files written during
// unattended runs. Returns: <StateDir>/logs
func LogDir() string {
	return filepath.Join(StateDir(), "logs")
}

// ReportPath returns the location of the last-run report.
// Returns: <StateDir>/last-run.json
func ReportPath() string {
	return filepath.Join(StateDir(), "last-run.json")
}
