package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satchel/internal/config"
	"satchel/internal/copier"
	"satchel/internal/logging"
	"satchel/internal/volume"
)

var testPolicy = copier.RetryPolicy{MaxAttempts: 2, Delay: time.Millisecond}

// stageArchive creates a staged archive and returns its job.
func stageArchive(t *testing.T, retention int) Job {
	t.Helper()
	name := "2026-08-31_02-00-00.7z"
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("archive"), 0o644))
	return Job{ArchivePath: path, ArchiveName: name, Retention: retention}
}

func writeOld(t *testing.T, dir, name string, age int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	mtime := time.Now().Add(-time.Duration(age) * time.Hour)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

// fakeLocator reports the volume present only after a number of polls.
type fakeLocator struct {
	appearAfter int
	vol         volume.Volume
	polls       int
}

func (l *fakeLocator) Locate(label string) (volume.Volume, bool) {
	l.polls++
	if l.polls > l.appearAfter {
		return l.vol, true
	}
	return volume.Volume{}, false
}

// absentLocator never finds the volume.
type absentLocator struct{}

func (absentLocator) Locate(string) (volume.Volume, bool) {
	return volume.Volume{}, false
}

// fakeCopier fails scripted attempts, optionally yanking a directory to
// simulate the volume disappearing mid-copy.
type fakeCopier struct {
	failFirst int
	yank      string
	calls     int
}

func (c *fakeCopier) Copy(ctx context.Context, src, dst string, policy copier.RetryPolicy) error {
	c.calls++
	if c.calls <= c.failFirst {
		if c.yank != "" {
			os.RemoveAll(c.yank)
		}
		return errors.New("device gone")
	}
	return os.WriteFile(dst, []byte("archive"), 0o644)
}

func newDispatcher(t *testing.T, loc Locator) *Dispatcher {
	t.Helper()
	return New(copier.New(logging.ForTest(t)), loc, testPolicy, logging.ForTest(t))
}

func TestDeliverDirectory_CreatesMissingDirectory(t *testing.T) {
	job := stageArchive(t, 5)
	outputPath := filepath.Join(t.TempDir(), "nested", "backups")

	out := newDispatcher(t, absentLocator{}).DeliverDirectory(t.Context(), job, config.DirectoryConfig{OutputPath: outputPath})

	require.NoError(t, out.Err)
	assert.Equal(t, KindDirectory, out.Kind)
	assert.Equal(t, filepath.Join(outputPath, job.ArchiveName), out.FinalPath)
	assert.FileExists(t, out.FinalPath)
	assert.Empty(t, out.Removed)
}

// The scenario from the retention design: three pre-existing archives,
// retention 2, one new delivery; only the two newest survive.
func TestDeliverDirectory_RotatesBacklog(t *testing.T) {
	job := stageArchive(t, 2)
	outputPath := t.TempDir()
	t1 := writeOld(t, outputPath, "2026-08-28_02-00-00.7z", 3)
	t2 := writeOld(t, outputPath, "2026-08-29_02-00-00.7z", 2)
	t3 := writeOld(t, outputPath, "2026-08-30_02-00-00.7z", 1)

	out := newDispatcher(t, absentLocator{}).DeliverDirectory(t.Context(), job, config.DirectoryConfig{OutputPath: outputPath})

	require.NoError(t, out.Err)
	assert.ElementsMatch(t, []string{t1, t2}, out.Removed)
	assert.NoFileExists(t, t1)
	assert.NoFileExists(t, t2)
	assert.FileExists(t, t3)
	assert.FileExists(t, out.FinalPath)
}

func TestDeliverDirectory_RetentionZeroDeletesOwnArchive(t *testing.T) {
	job := stageArchive(t, 0)
	outputPath := t.TempDir()

	out := newDispatcher(t, absentLocator{}).DeliverDirectory(t.Context(), job, config.DirectoryConfig{OutputPath: outputPath})

	// Copy succeeded, then rotation removed the archive it just placed.
	require.NoError(t, out.Err)
	assert.NoFileExists(t, out.FinalPath)
	assert.Equal(t, []string{out.FinalPath}, out.Removed)
}

func TestDeliverDirectory_CopyFailureSkipsRotation(t *testing.T) {
	job := stageArchive(t, 0)
	outputPath := t.TempDir()
	backlog := writeOld(t, outputPath, "2026-08-28_02-00-00.7z", 3)

	fc := &fakeCopier{failFirst: 999}
	d := New(fc, absentLocator{}, testPolicy, logging.ForTest(t))

	out := d.DeliverDirectory(t.Context(), job, config.DirectoryConfig{OutputPath: outputPath})

	require.Error(t, out.Err)
	assert.Empty(t, out.FinalPath)
	assert.FileExists(t, backlog, "rotation must not run after a failed copy")
}

func TestDeliverDirectory_UnwritableRootFailsBeforeCopy(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory write permissions are not enforced the same way on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission checks")
	}

	job := stageArchive(t, 5)
	parent := t.TempDir()
	require.NoError(t, os.Chmod(parent, 0o555))
	t.Cleanup(func() { _ = os.Chmod(parent, 0o755) })

	fc := &fakeCopier{}
	d := New(fc, absentLocator{}, testPolicy, logging.ForTest(t))

	out := d.DeliverDirectory(t.Context(), job, config.DirectoryConfig{
		OutputPath: filepath.Join(parent, "backups"),
	})

	require.Error(t, out.Err)
	assert.Zero(t, fc.calls, "no copy attempt when the target cannot be prepared")
}

func TestDeliverDrive_DetectsLateVolume(t *testing.T) {
	job := stageArchive(t, 5)
	root := t.TempDir()
	loc := &fakeLocator{appearAfter: 3, vol: volume.Volume{Root: root, Label: "BACKUP1"}}

	out := newDispatcher(t, loc).DeliverDrive(t.Context(), job, config.DriveConfig{
		DriveName:    "BACKUP1",
		SubDirectory: "backups",
		PollInterval: 2 * time.Millisecond,
	})

	require.NoError(t, out.Err)
	assert.Equal(t, filepath.Join(root, "backups", job.ArchiveName), out.FinalPath)
	assert.FileExists(t, out.FinalPath)
	assert.Equal(t, 4, loc.polls, "delivery must start on the first poll that finds the volume")
}

func TestDeliverDrive_WaitTimeout(t *testing.T) {
	job := stageArchive(t, 5)

	start := time.Now()
	out := newDispatcher(t, absentLocator{}).DeliverDrive(t.Context(), job, config.DriveConfig{
		DriveName:    "BACKUP1",
		SubDirectory: "backups",
		PollInterval: time.Millisecond,
		WaitTimeout:  20 * time.Millisecond,
	})

	require.Error(t, out.Err)
	assert.True(t, errors.Is(out.Err, ErrWaitCancelled), "timeout surfaces the distinct wait-cancelled outcome")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDeliverDrive_ParentCancellation(t *testing.T) {
	job := stageArchive(t, 5)

	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	out := newDispatcher(t, absentLocator{}).DeliverDrive(ctx, job, config.DriveConfig{
		DriveName:    "BACKUP1",
		SubDirectory: "backups",
		PollInterval: time.Millisecond,
	})

	require.Error(t, out.Err)
	assert.True(t, errors.Is(out.Err, ErrWaitCancelled))
}

func TestDeliverDrive_ReentersWaitWhenVolumeVanishes(t *testing.T) {
	job := stageArchive(t, 5)

	parent := t.TempDir()
	root := filepath.Join(parent, "BACKUP1")
	require.NoError(t, os.MkdirAll(root, 0o755))

	// First copy attempt yanks the volume root; delivery must go back
	// to waiting and succeed once the volume is "replugged".
	fc := &fakeCopier{failFirst: 1, yank: root}
	loc := &replugLocator{t: t, root: root}
	d := New(fc, loc, testPolicy, logging.ForTest(t))

	out := d.DeliverDrive(t.Context(), job, config.DriveConfig{
		DriveName:    "BACKUP1",
		SubDirectory: "backups",
		PollInterval: 2 * time.Millisecond,
	})

	require.NoError(t, out.Err)
	assert.FileExists(t, out.FinalPath)
	assert.Equal(t, 2, fc.calls)
}

// replugLocator always reports the volume present, recreating its root
// if a previous yank removed it.
type replugLocator struct {
	t    *testing.T
	root string
}

func (l *replugLocator) Locate(string) (volume.Volume, bool) {
	if _, err := os.Stat(l.root); err != nil {
		require.NoError(l.t, os.MkdirAll(l.root, 0o755))
	}
	return volume.Volume{Root: l.root, Label: "BACKUP1"}, true
}

func TestDeliver_BothRunsDirectoryDespiteAbsentDrive(t *testing.T) {
	job := stageArchive(t, 5)
	outputPath := t.TempDir()

	outs := newDispatcher(t, absentLocator{}).Deliver(t.Context(), job, config.Destination{
		Type:            config.TypeBoth,
		DirectoryConfig: config.DirectoryConfig{OutputPath: outputPath},
		DriveConfig: config.DriveConfig{
			DriveName:    "BACKUP1",
			SubDirectory: "backups",
			PollInterval: time.Millisecond,
			WaitTimeout:  15 * time.Millisecond,
		},
	})

	require.Len(t, outs, 2)
	assert.True(t, outs[0].Success(), "directory leg must complete even when the drive never appears")
	assert.FileExists(t, outs[0].FinalPath)
	assert.False(t, outs[1].Success())
	assert.True(t, errors.Is(outs[1].Err, ErrWaitCancelled))
}

func TestDeliver_UnknownType(t *testing.T) {
	job := stageArchive(t, 5)
	outs := newDispatcher(t, absentLocator{}).Deliver(t.Context(), job, config.Destination{Type: "ftp"})
	require.Len(t, outs, 1)
	require.Error(t, outs[0].Err)
}
