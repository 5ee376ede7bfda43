package apply

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/jellytidy/internal/permissions"
	"github.com/Nomadcxx/jellytidy/internal/plans"
)

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err, path)
	return string(data)
}

func rename(src, dst, role string) plans.Record {
	action := plans.ActionRename
	if filepath.Dir(src) != filepath.Dir(dst) {
		action = plans.ActionMove
	}
	return plans.Record{SourcePath: src, TargetPath: dst, Action: action, Role: role, Size: 1}
}

func newPlan(records ...plans.Record) *plans.Plan {
	return plans.NewPlan("plan", []string{"/lib"}, "", records)
}

func TestApplyRenamesDeletesAndSkips(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/lib/Heat/Heat.1995.mkv":     "video",
		"/lib/Heat/Heat.1995.en.srt":  "subs",
		"/lib/Heat/Heat.1995 (1).mkv": "video",
		"/lib/Heat/notes.txt":         "notes",
	})

	plan := newPlan(
		rename("/lib/Heat/Heat.1995.mkv", "/lib/Heat/Heat (1995).mkv", "primary"),
		rename("/lib/Heat/Heat.1995.en.srt", "/lib/Heat/Heat (1995).en.srt", "sidecar"),
		plans.Record{SourcePath: "/lib/Heat/Heat.1995 (1).mkv", Action: plans.ActionDelete, Role: "primary", Size: 5},
		plans.Record{SourcePath: "/lib/Heat/notes.txt", TargetPath: "/lib/Heat/notes.txt", Action: plans.ActionSkip, Role: "other"},
	)

	var order []string
	report, err := New(fs, OnResult(func(r Result) { order = append(order, r.Record.SourcePath) })).Apply(context.Background(), plan)
	require.NoError(t, err)
	assert.True(t, report.Complete())
	assert.Equal(t, 3, report.Done)
	assert.Equal(t, int64(5), report.BytesFreed)
	assert.NoError(t, report.Err())

	// deletes, then sidecars, then videos
	assert.Equal(t, []string{
		"/lib/Heat/Heat.1995 (1).mkv",
		"/lib/Heat/Heat.1995.en.srt",
		"/lib/Heat/Heat.1995.mkv",
	}, order)

	assert.Equal(t, "video", readFile(t, fs, "/lib/Heat/Heat (1995).mkv"))
	assert.Equal(t, "subs", readFile(t, fs, "/lib/Heat/Heat (1995).en.srt"))
	assert.Equal(t, "notes", readFile(t, fs, "/lib/Heat/notes.txt"))
	for _, gone := range []string{"/lib/Heat/Heat.1995.mkv", "/lib/Heat/Heat.1995 (1).mkv"} {
		exists, err := afero.Exists(fs, gone)
		require.NoError(t, err)
		assert.False(t, exists, gone)
	}
	assertNoTempFiles(t, fs, "/lib")
}

func TestApplySwap(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/lib/M/Movie (2001).mkv":        "small",
		"/lib/M/Movie (2001) - dup1.mkv": "large",
	})

	plan := newPlan(
		rename("/lib/M/Movie (2001).mkv", "/lib/M/Movie (2001) - dup1.mkv", "primary"),
		rename("/lib/M/Movie (2001) - dup1.mkv", "/lib/M/Movie (2001).mkv", "primary"),
	)
	report, err := New(fs).Apply(context.Background(), plan)
	require.NoError(t, err)
	require.True(t, report.Complete(), report.Err())

	assert.Equal(t, "large", readFile(t, fs, "/lib/M/Movie (2001).mkv"))
	assert.Equal(t, "small", readFile(t, fs, "/lib/M/Movie (2001) - dup1.mkv"))
	assertNoTempFiles(t, fs, "/lib")
}

func TestApplyNeverOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/lib/Heat/a.mkv":           "a",
		"/lib/Heat/Heat (1995).mkv": "existing",
	})

	report, err := New(fs).Apply(context.Background(), newPlan(
		rename("/lib/Heat/a.mkv", "/lib/Heat/Heat (1995).mkv", "primary"),
	))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], ErrTargetExists)
	assert.Equal(t, "existing", readFile(t, fs, "/lib/Heat/Heat (1995).mkv"))
	assert.Equal(t, "a", readFile(t, fs, "/lib/Heat/a.mkv"))
}

func TestApplyDuplicateTargets(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/lib/a.mkv": "a", "/lib/b.mkv": "b"})

	report, err := New(fs).Apply(context.Background(), newPlan(
		rename("/lib/a.mkv", "/lib/X.mkv", "primary"),
		rename("/lib/b.mkv", "/lib/X.mkv", "primary"),
	))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Done)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "a", readFile(t, fs, "/lib/X.mkv"))
	assert.Equal(t, "b", readFile(t, fs, "/lib/b.mkv"))
}

func TestApplyMissingSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	report, err := New(fs).Apply(context.Background(), newPlan(
		rename("/lib/gone.mkv", "/lib/Gone.mkv", "primary"),
		plans.Record{SourcePath: "/lib/also-gone.mkv", Action: plans.ActionDelete},
	))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Failed)
	for _, f := range report.Failures() {
		assert.ErrorIs(t, f, ErrSourceMissing)
	}

	var rerr *RecordError
	require.True(t, errors.As(report.Err(), &rerr))
}

func TestApplyMovesCreateDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/lib/Heat/Heat.1995.mkv":    "video",
		"/lib/Heat/Heat.1995.en.srt": "subs",
	})

	policy := permissions.Preserve()
	policy.DirMode = 0750
	report, err := New(fs, WithPolicy(policy)).Apply(context.Background(), newPlan(
		rename("/lib/Heat/Heat.1995.mkv", "/media/movies/H/Heat (1995)/Heat (1995).mkv", "primary"),
		rename("/lib/Heat/Heat.1995.en.srt", "/media/movies/H/Heat (1995)/Heat (1995).en.srt", "sidecar"),
	))
	require.NoError(t, err)
	require.True(t, report.Complete(), report.Err())
	assert.Equal(t, int64(2), report.BytesMoved)

	assert.Equal(t, "video", readFile(t, fs, "/media/movies/H/Heat (1995)/Heat (1995).mkv"))
	info, err := fs.Stat("/media/movies/H")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestApplyDryRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/lib/a.mkv": "a", "/lib/b.mkv": "b"})

	report, err := New(fs, WithDryRun(true)).Apply(context.Background(), newPlan(
		rename("/lib/a.mkv", "/lib/A.mkv", "primary"),
		plans.Record{SourcePath: "/lib/b.mkv", Action: plans.ActionDelete},
		rename("/lib/missing.mkv", "/lib/M.mkv", "primary"),
	))
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Failed)
	assert.Zero(t, report.Done)

	assert.Equal(t, "a", readFile(t, fs, "/lib/a.mkv"))
	assert.Equal(t, "b", readFile(t, fs, "/lib/b.mkv"))
	exists, err := afero.Exists(fs, "/lib/A.mkv")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestApplyCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/lib/a.mkv": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(fs).Apply(ctx, newPlan(rename("/lib/a.mkv", "/lib/A.mkv", "primary")))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Skipped)
	assert.False(t, report.Complete())
	assert.Equal(t, "a", readFile(t, fs, "/lib/a.mkv"))
}

func TestApplyInvalidTarget(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/lib/a.mkv": "a"})

	report, err := New(fs).Apply(context.Background(), newPlan(
		plans.Record{SourcePath: "/lib/a.mkv", TargetPath: "relative.mkv", Action: plans.ActionRename},
	))
	require.NoError(t, err)
	require.Len(t, report.Failures(), 1)
	assert.ErrorIs(t, report.Failures()[0], ErrInvalidRecord)
}

func TestApplyLocked(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "plan.lock")
	held := flock.New(lockPath)
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	_, err = New(afero.NewMemMapFs(), WithLock(lockPath)).Apply(context.Background(), newPlan())
	assert.ErrorIs(t, err, ErrPlanLocked)

	require.NoError(t, held.Unlock())
	_, err = New(afero.NewMemMapFs(), WithLock(lockPath)).Apply(context.Background(), newPlan())
	assert.NoError(t, err)
}

func TestApplyOnOsFs(t *testing.T) {
	root := t.TempDir()
	fs := afero.NewOsFs()
	src := filepath.Join(root, "Heat.1995.mkv")
	dst := filepath.Join(root, "sorted", "Heat (1995).mkv")
	require.NoError(t, afero.WriteFile(fs, src, []byte("v"), 0644))

	report, err := New(fs).Apply(context.Background(), newPlan(rename(src, dst, "primary")))
	require.NoError(t, err)
	require.True(t, report.Complete(), report.Err())
	assert.Equal(t, "v", readFile(t, fs, dst))
}

func assertNoTempFiles(t *testing.T, fs afero.Fs, root string) {
	t.Helper()
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		assert.False(t, strings.HasPrefix(filepath.Base(path), tempPrefix), path)
		return nil
	})
	require.NoError(t, err)
}
