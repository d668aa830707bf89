package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cosmos/iavlx/bench"
	"github.com/cosmos/iavlx/bench/util"
)

func replayCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replays a changeset directory into in-memory trees and prints the committed hash.",
		Long: `Replays a changeset directory into one tree per store.

With --tree-dir every committed hash is recorded in a hash log under that
directory, or checked against it when a previous run already logged the version.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().String("changeset-dir", "", "Directory containing the changeset files.")
	cmd.Flags().String("tree-dir", "", "Directory for the hash log and info file.")
	cmd.Flags().Int64("versions", 0, "Number of versions to apply. If this is empty or 0, all versions in the changeset-dir will be applied.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		tree, err := e.replay()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d hash %X\n", tree.Version(), tree.Hash())
		for _, name := range tree.StoreNames() {
			store, _ := tree.GetTree(name)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s keys, height %d\n", name, humanize.Comma(store.Size()), store.Height())
		}
		return nil
	}
	return cmd
}

// replay runs the changeset-dir, tree-dir and versions flags against a fresh MultiTree.
func (e *env) replay() (*bench.MultiTree, error) {
	changesetDir := e.v.GetString("changeset-dir")
	if changesetDir == "" {
		return nil, fmt.Errorf("changeset-dir is required")
	}
	treeDir := e.v.GetString("tree-dir")

	info, err := bench.ReadChangesetInfo(changesetDir)
	if err != nil {
		return nil, fmt.Errorf("error reading changeset info file: %w", err)
	}
	opts, err := e.treeOptions()
	if err != nil {
		return nil, err
	}
	tree := bench.NewMultiTree(info.StoreNames, bench.MultiTreeOptions{
		TreeOptions: opts,
		Registerer:  e.registry,
		Logger:      e.treeLogger,
	})

	params := bench.ReplayParams{
		TargetVersion: e.v.GetInt64("versions"),
		Logger:        e.logger,
	}
	if treeDir != "" {
		if err := os.MkdirAll(treeDir, 0o755); err != nil {
			return nil, err
		}
		last, err := util.LoadInfo(treeDir)
		if err != nil {
			return nil, fmt.Errorf("error loading tree info: %w", err)
		}
		if last.Version > 0 {
			e.logger.Info("found previous run", "version", last.Version, "hash", last.Hash)
		}
		hashLog, err := bench.OpenHashLog(filepath.Join(treeDir, "hashlog"))
		if err != nil {
			return nil, err
		}
		defer hashLog.Close()
		params.HashLog = hashLog
	}

	if err := bench.Replay(tree, changesetDir, params); err != nil {
		return nil, err
	}

	if treeDir != "" {
		err = util.SaveInfo(treeDir, util.Info{
			Version: tree.Version(),
			Hash:    fmt.Sprintf("%X", tree.Hash()),
		})
		if err != nil {
			return nil, fmt.Errorf("error saving tree info: %w", err)
		}
	}
	return tree, nil
}
