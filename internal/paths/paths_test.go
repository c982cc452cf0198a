package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDirsAreNamespaced(t *testing.T) {
	for name, dir := range map[string]string{
		"ConfigDir":      ConfigDir(),
		"StateDir":       StateDir(),
		"DefaultWorkDir": DefaultWorkDir(),
		"LogDir":         LogDir(),
	} {
		if dir == "" {
			t.Errorf("%s returned empty path", name)
			continue
		}
		if !strings.Contains(dir, AppName) {
			t.Errorf("%s = %q, expected it to contain %q", name, dir, AppName)
		}
		if !filepath.IsAbs(dir) {
			t.Errorf("%s = %q, expected an absolute path", name, dir)
		}
	}
}

func TestStateSubpaths(t *testing.T) {
	state := StateDir()

	if got := DefaultWorkDir(); filepath.Dir(got) != state {
		t.Errorf("DefaultWorkDir = %q, expected it under %q", got, state)
	}
	if got := ReportPath(); filepath.Dir(got) != state {
		t.Errorf("ReportPath = %q, expected it under %q", got, state)
	}
	if got := ReportPath(); filepath.Base(got) != "last-run.json" {
		t.Errorf("ReportPath base = %q, want last-run.json", filepath.Base(got))
	}
}
