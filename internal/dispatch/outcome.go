package dispatch

// Kind identifies which destination leg an outcome belongs to.
type Kind string

const (
	// KindDirectory is the local/network directory destination.
	KindDirectory Kind = "directory"

	// KindDrive is the removable-volume destination.
	KindDrive Kind = "drive"
)

// Outcome is the result of delivering one archive to one destination.
// It is produced per destination leg and aggregated by the engine;
// it is never persisted beyond the run report.
type Outcome struct {
	// Kind is the destination leg this outcome describes.
	Kind Kind

	// FinalPath is where the archive landed. Set only on success.
	FinalPath string

	// Removed lists archives deleted by retention rotation, oldest first.
	Removed []string

	// RotationWarnings records non-fatal rotation problems. A rotation
	// failure never revokes a successful copy; it is reported alongside.
	RotationWarnings []string

	// Err is the first fatal error for this destination, nil on success.
	Err error
}

// Success reports whether the archive reached this destination.
func (o Outcome) Success() bool {
	return o.Err == nil
}
