// Package volume discovers mounted filesystem volumes by label.
//
// Removable media are identified by their human-assigned volume label
// rather than a mount point or drive letter, because the same stick can
// land on a different letter or mount path every time it is plugged in.
// Discovery is a fresh enumeration on every call; results are never
// cached across polls, since media can be unplugged and replugged with
// a different identity at the same mount point.
package volume

// Volume is an ephemeral mapping from a mounted root to its label,
// valid only for the enumeration that produced it.
type Volume struct {
	// Root is the filesystem root of the volume (drive root on Windows,
	// mount point elsewhere).
	Root string `json:"root"`

	// Label is the volume's human-assigned name.
	Label string `json:"label"`
}

// Enumerator lists the currently mounted volumes of the host.
//
// Implementations are best-effort: a root that exists but cannot be
// queried (locked, mid-ejection, errored) is silently skipped rather
// than failing the whole scan. One implementation exists per OS family;
// label matching and polling never depend on enumeration mechanics.
type Enumerator interface {
	Volumes() []Volume
}

// Host returns the enumerator for the current OS family.
func Host() Enumerator {
	return hostEnumerator()
}

// Locator matches mounted volumes against a target label.
type Locator struct {
	enum Enumerator
}

// NewLocator creates a Locator backed by the given enumerator.
// A nil enumerator selects the host platform's implementation.
func NewLocator(enum Enumerator) *Locator {
	if enum == nil {
		enum = hostEnumerator()
	}
	return &Locator{enum: enum}
}

// Locate returns the first mounted volume whose label equals target.
// The comparison is exact and case-sensitive; no normalization is
// performed, matching the host filesystem's own label semantics.
//
// When several volumes carry the same label, the one first in
// enumeration order wins. That order is host-defined, so the choice is
// non-deterministic across hosts; callers needing a specific volume
// among label twins must relabel.
func (l *Locator) Locate(target string) (Volume, bool) {
	if target == "" {
		return Volume{}, false
	}
	for _, v := range l.enum.Volumes() {
		if v.Label == target {
			return v, true
		}
	}
	return Volume{}, false
}
