package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cosmos/iavlx/bench/util"
)

func saveRun(t *testing.T, resultDir, name string, version int64, hash string) {
	t.Helper()
	dir := filepath.Join(resultDir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, util.SaveInfo(dir, util.Info{Version: version, Hash: hash}))
}

func runs(versions int64, names ...string) []RunPlan {
	plans := make([]RunPlan, 0, len(names))
	for _, name := range names {
		plans = append(plans, RunPlan{RunName: name, Versions: versions})
	}
	return plans
}

func TestCompareRuns(t *testing.T) {
	logger := slog.Default()

	t.Run("agree", func(t *testing.T) {
		dir := t.TempDir()
		saveRun(t, dir, "default", 3, "AA")
		saveRun(t, dir, "verify", 3, "AA")
		require.NoError(t, compareRuns(logger, runs(3, "default", "verify"), dir))
		require.NoError(t, compareRuns(logger, runs(0, "default", "verify"), dir))
	})

	t.Run("missing and diverging runs", func(t *testing.T) {
		dir := t.TempDir()
		saveRun(t, dir, "b", 3, "AA")
		saveRun(t, dir, "c", 2, "BB")
		err := compareRuns(logger, runs(0, "a", "b", "c"), dir)
		require.Error(t, err)
		require.ErrorContains(t, err, "run a did not commit any version")
		require.ErrorContains(t, err, "stopped at versions 3 and 2")
	})

	t.Run("no results at all", func(t *testing.T) {
		err := compareRuns(logger, runs(0, "a", "b"), t.TempDir())
		require.ErrorContains(t, err, "run a did not commit any version")
		require.ErrorContains(t, err, "run b did not commit any version")
	})

	t.Run("short of planned version", func(t *testing.T) {
		dir := t.TempDir()
		saveRun(t, dir, "a", 2, "AA")
		saveRun(t, dir, "b", 2, "AA")
		require.ErrorContains(t, compareRuns(logger, runs(3, "a", "b"), dir), "stopped at version 2, planned 3")
	})

	t.Run("hash mismatch", func(t *testing.T) {
		dir := t.TempDir()
		saveRun(t, dir, "a", 3, "AA")
		saveRun(t, dir, "b", 3, "BB")
		require.ErrorContains(t, compareRuns(logger, runs(3, "a", "b"), dir), "disagree at version 3: AA != BB")
	})
}

func TestRunOneReportsFailure(t *testing.T) {
	run := RunPlan{RunName: "broken", Runner: filepath.Join(t.TempDir(), "missing-runner"), ChangesetDir: t.TempDir()}
	require.ErrorContains(t, runOne(slog.Default(), run, t.TempDir()), "run broken failed")
}

func TestLoadPlan(t *testing.T) {
	dir := t.TempDir()
	planFile := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(planFile, []byte(`{
		"changeset_dir": "/data/changesets",
		"versions": 10,
		"runs": [
			{"name": "default"},
			{"name": "verify", "options": {"verify_hashes": true}, "versions": 5, "runner": "./iavlx"}
		]
	}`), 0o644))

	plan, err := loadPlan(planFile)
	require.NoError(t, err)
	require.Equal(t, RunPlan{RunName: "default", Runner: "iavlx", ChangesetDir: "/data/changesets", Versions: 10}, plan.Runs[0])
	require.Equal(t, int64(5), plan.Runs[1].Versions)
	require.Equal(t, "./iavlx", plan.Runs[1].Runner)

	args := strings.Join(runCommand(plan.Runs[1], "/results").Args, " ")
	require.Contains(t, args, "replay --changeset-dir /data/changesets --tree-dir /results/verify")
	require.Contains(t, args, `--tree-options {"verify_hashes": true}`)
	require.Contains(t, args, "--versions 5")
	require.NotContains(t, strings.Join(runCommand(plan.Runs[0], "/results").Args, " "), "--tree-options")

	for _, bad := range []string{
		`{"changeset_dir": "d", "runs": []}`,
		`{"changeset_dir": "d", "runs": [{"name": ""}]}`,
		`{"changeset_dir": "d", "runs": [{"name": "a"}, {"name": "a"}]}`,
		`{"runs": [{"name": "a"}]}`,
		`not json`,
	} {
		require.NoError(t, os.WriteFile(planFile, []byte(bad), 0o644))
		_, err := loadPlan(planFile)
		require.Error(t, err, bad)
	}
}
