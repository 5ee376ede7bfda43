package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/jellytidy/internal/plans"
	"github.com/Nomadcxx/jellytidy/internal/ui"
)

func TestMain(m *testing.M) {
	ui.DisableColors()
	os.Exit(m.Run())
}

// sandbox points every per-user path at a temp home and returns a media root
// holding one movie with a subtitle.
func sandbox(t *testing.T) (home, root string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SUDO_USER", "")
	t.Setenv("JELLYTIDY_LOGGING_FILE", "none")

	root = filepath.Join(t.TempDir(), "downloads")
	dir := filepath.Join(root, "Heat")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Heat.1995.1080p.BluRay.x264.mkv"), []byte("video"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Heat.1995.1080p.BluRay.x264.en.srt"), []byte("subs"), 0644))
	return home, root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func planFile(home string) string {
	return plans.PlanPathIn(filepath.Join(home, ".config", "jellytidy", "plans"))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "jellytidy dev\n", out)
}

func TestPlanSavesPendingPlan(t *testing.T) {
	home, root := sandbox(t)

	_, err := execute(t, "plan", root)
	require.NoError(t, err)

	plan, err := plans.LoadFrom(planFile(home))
	require.NoError(t, err)
	assert.Equal(t, "plan", plan.Command)
	assert.Equal(t, []string{root}, plan.Roots)
	assert.Equal(t, 2, plan.Summary.Renames)
}

func TestPlanNoSave(t *testing.T) {
	home, root := sandbox(t)

	_, err := execute(t, "plan", root, "--no-save")
	require.NoError(t, err)

	_, err = plans.LoadFrom(planFile(home))
	assert.ErrorIs(t, err, plans.ErrNoPlan)
}

func TestPlanRejectsDestinationInsideRoot(t *testing.T) {
	_, root := sandbox(t)

	_, err := execute(t, "plan", root, "--dest", filepath.Join(root, "library"))
	assert.Error(t, err)
}

func TestShowWithoutPlan(t *testing.T) {
	sandbox(t)

	_, err := execute(t, "show")
	assert.ErrorIs(t, err, plans.ErrNoPlan)
}

func TestShowJSON(t *testing.T) {
	_, root := sandbox(t)
	_, err := execute(t, "plan", root)
	require.NoError(t, err)

	out, err := execute(t, "show", "--format", "json")
	require.NoError(t, err)

	var plan plans.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	require.Len(t, plan.Records, 2)
	targets := []string{plan.Records[0].TargetPath, plan.Records[1].TargetPath}
	assert.Contains(t, targets, filepath.Join(root, "Heat", "Heat (1995).mkv"))
	assert.Contains(t, targets, filepath.Join(root, "Heat", "Heat (1995).en.srt"))
}

func TestApplyDryRunKeepsFiles(t *testing.T) {
	home, root := sandbox(t)
	_, err := execute(t, "plan", root)
	require.NoError(t, err)

	_, err = execute(t, "apply", "--dry-run")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "Heat", "Heat.1995.1080p.BluRay.x264.mkv"))
	assert.NoFileExists(t, filepath.Join(root, "Heat", "Heat (1995).mkv"))
	assert.FileExists(t, planFile(home))
}

func TestApplyRenamesAndClearsPlan(t *testing.T) {
	home, root := sandbox(t)
	_, err := execute(t, "plan", root)
	require.NoError(t, err)

	_, err = execute(t, "apply", "--yes")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "Heat", "Heat (1995).mkv"))
	assert.FileExists(t, filepath.Join(root, "Heat", "Heat (1995).en.srt"))
	assert.NoFileExists(t, filepath.Join(root, "Heat", "Heat.1995.1080p.BluRay.x264.mkv"))
	assert.NoFileExists(t, planFile(home))

	// A second plan over the normalized tree changes nothing.
	_, err = execute(t, "plan", root)
	require.NoError(t, err)
	assert.NoFileExists(t, planFile(home))
}

func TestApplyFromEditedCSV(t *testing.T) {
	home, root := sandbox(t)
	exported := filepath.Join(t.TempDir(), "plan.csv")

	_, err := execute(t, "plan", root, "--no-save", "--export", exported)
	require.NoError(t, err)

	// drop the subtitle row before applying
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.Contains(line, ".en.srt") {
			kept = append(kept, line)
		}
	}
	require.NoError(t, os.WriteFile(exported, []byte(strings.Join(kept, "\n")), 0644))

	_, err = execute(t, "apply", "--from", exported, "--yes")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "Heat", "Heat (1995).mkv"))
	assert.FileExists(t, filepath.Join(root, "Heat", "Heat.1995.1080p.BluRay.x264.en.srt"))
	assert.NoFileExists(t, planFile(home))
}

func TestQualityCSV(t *testing.T) {
	_, root := sandbox(t)
	out := filepath.Join(t.TempDir(), "quality.csv")

	_, err := execute(t, "quality", root, "--csv", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "path,color,resolution,tier,codec,source,edition,size,score\n")
	assert.Contains(t, string(data), "YELLOW,1080p,FHD")
}

func TestConfigInitAndPath(t *testing.T) {
	sandbox(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = execute(t, "--config", path, "config", "init")
	assert.Error(t, err, "init must not overwrite without --force")

	out, err := execute(t, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}

func TestHistoryExportAfterPlan(t *testing.T) {
	_, root := sandbox(t)
	_, err := execute(t, "plan", root)
	require.NoError(t, err)

	plan, err := loadPending()
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "plan.yaml")
	_, err = execute(t, "history", "export", plan.ID[:8], out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), plan.ID)
}

func loadPending() (*plans.Plan, error) {
	a, err := newApp()
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.loadPlan()
}
