//go:build windows

package volume

import (
	"os"

	"golang.org/x/sys/windows"
)

// hostEnumerator returns the drive-letter enumerator.
func hostEnumerator() Enumerator {
	return driveLetterEnumerator{}
}

// driveLetterEnumerator probes A:\ through Z:\ and reads each existing
// root's volume label via GetVolumeInformation.
type driveLetterEnumerator struct{}

func (driveLetterEnumerator) Volumes() []Volume {
	var vols []Volume
	for letter := 'A'; letter <= 'Z'; letter++ {
		root := string(letter) + `:\`
		if _, err := os.Stat(root); err != nil {
			continue
		}
		label, err := volumeLabel(root)
		if err != nil {
			// Locked or errored volume; skip, never abort the scan.
			continue
		}
		vols = append(vols, Volume{Root: root, Label: label})
	}
	return vols
}

func volumeLabel(root string) (string, error) {
	rootPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return "", err
	}

	nameBuf := make([]uint16, windows.MAX_PATH+1)
	fsBuf := make([]uint16, windows.MAX_PATH+1)
	var serial, maxComponent, fsFlags uint32

	err = windows.GetVolumeInformation(
		rootPtr,
		&nameBuf[0], uint32(len(nameBuf)),
		&serial, &maxComponent, &fsFlags,
		&fsBuf[0], uint32(len(fsBuf)),
	)
	if err != nil {
		return "", err
	}
	return windows.UTF16ToString(nameBuf), nil
}
