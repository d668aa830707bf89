package main

import (
	"bytes"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cosmos/iavlx/bench"
	"github.com/cosmos/iavlx/bench/util"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	err := execute(newEnv(), append(args, "--log-file", filepath.Join(t.TempDir(), "iavlx.log")), out)
	return out.String(), err
}

func genChangesets(t *testing.T, versions int64, seed uint64) string {
	dir := t.TempDir()
	require.NoError(t, bench.GenerateChangesets(bench.TreeParams{
		StoreParams: []bench.StoreParams{
			bench.TinyGenerator("bank", versions),
			bench.TinyGenerator("staking", versions),
		},
		Versions:   versions,
		RandSource: rand.NewPCG(seed, seed),
	}, dir))
	return dir
}

func TestDemo(t *testing.T) {
	out, err := run(t, "demo", "--dot", "--print-metrics")
	require.NoError(t, err)
	require.Contains(t, out, "version 1 hash ")
	require.Contains(t, out, "height 3 size 7 hashed 13")
	require.Contains(t, out, "digraph")
	require.Contains(t, out, "iavlx_inserts_total{} 7")
	require.Contains(t, out, "iavlx_tree_height{} 3")

	out, err = run(t, "demo", "--keys", "50,40,70,45,43,47,48,10", "--update", "50")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "version 2")
	require.Contains(t, lines[1], "hashed 4")
}

func TestDemoInvalidTreeOptions(t *testing.T) {
	_, err := run(t, "demo", "--tree-options", "{not json")
	require.Error(t, err)
}

func TestReplay(t *testing.T) {
	changesetDir := genChangesets(t, 3, 1)
	treeDir := t.TempDir()

	out1, err := run(t, "replay", "--changeset-dir", changesetDir, "--tree-dir", treeDir,
		"--tree-options", `{"verify_hashes":true}`)
	require.NoError(t, err)
	require.Contains(t, out1, "version 3 hash ")
	require.Contains(t, out1, "bank: 500 keys")

	info, err := util.LoadInfo(treeDir)
	require.NoError(t, err)
	require.Equal(t, int64(3), info.Version)
	require.Contains(t, out1, info.Hash)

	// the second run checks every version against the hash log
	t.Setenv("IAVLX_CHANGESET_DIR", changesetDir)
	out2, err := run(t, "replay", "--tree-dir", treeDir, "--log-type", "json")
	require.NoError(t, err)
	require.Equal(t, out1, out2)

	other := genChangesets(t, 3, 9)
	_, err = run(t, "replay", "--changeset-dir", other, "--tree-dir", treeDir, "--versions", "1")
	require.ErrorIs(t, err, bench.ErrHashMismatch)
}

func TestReplayRequiresChangesetDir(t *testing.T) {
	_, err := run(t, "replay")
	require.ErrorContains(t, err, "changeset-dir is required")
}

func TestDot(t *testing.T) {
	changesetDir := genChangesets(t, 2, 1)
	out, err := run(t, "dot", "--changeset-dir", changesetDir, "--store", "staking", "--log-type", "plain")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "digraph"))

	file := filepath.Join(t.TempDir(), "tree.dot")
	_, err = run(t, "dot", "--changeset-dir", changesetDir, "--out", file)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(mustRead(t, file)), "digraph"))

	_, err = run(t, "dot", "--changeset-dir", changesetDir, "--store", "nope")
	require.Error(t, err)
}

func mustRead(t *testing.T, name string) []byte {
	t.Helper()
	bz, err := os.ReadFile(name)
	require.NoError(t, err)
	return bz
}

func TestLogFileClosedOnFailure(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "iavlx.log")

	e := newEnv()
	err := execute(e, []string{"replay", "--log-file", logFile}, &bytes.Buffer{})
	require.ErrorContains(t, err, "changeset-dir is required")
	require.NotNil(t, e.logger, "the command got past logger setup")
	require.Nil(t, e.closer)

	e = newEnv()
	require.NoError(t, execute(e, []string{"demo", "--log-file", logFile}, &bytes.Buffer{}))
	require.Nil(t, e.closer)
	require.NoError(t, e.close())
}
