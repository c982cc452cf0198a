//go:build !windows

package volume

import (
	"os"
	"path/filepath"
)

// hostEnumerator returns the removable-media mount namespace enumerator.
func hostEnumerator() Enumerator {
	return mountNamespaceEnumerator{}
}

// mountNamespaceEnumerator scans the directories where desktop Linux
// automounters and macOS place removable media. The mount point's base
// name is the volume label under all of them.
type mountNamespaceEnumerator struct{}

// mountNamespaces returns the candidate parent directories, expanding
// the per-user udisks2 location for the current user.
func mountNamespaces() []string {
	namespaces := []string{
		"/media",   // udisks2 without per-user dirs, and most BSDs
		"/mnt",     // manual mounts
		"/Volumes", // macOS
	}
	if u := os.Getenv("USER"); u != "" {
		namespaces = append(namespaces,
			filepath.Join("/run/media", u), // udisks2 per-user (Fedora, Arch)
			filepath.Join("/media", u),     // udisks2 per-user (Debian, Ubuntu)
		)
	}
	return namespaces
}

func (mountNamespaceEnumerator) Volumes() []Volume {
	var vols []Volume
	seen := make(map[string]bool)

	for _, ns := range mountNamespaces() {
		entries, err := os.ReadDir(ns)
		if err != nil {
			// Namespace absent on this host; skip, never abort the scan.
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			root := filepath.Join(ns, entry.Name())
			if seen[root] {
				continue
			}
			seen[root] = true
			vols = append(vols, Volume{Root: root, Label: entry.Name()})
		}
	}
	return vols
}
