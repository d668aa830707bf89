package main

import (
	"encoding/binary"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cosmos/iavlx"
)

func demoCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Inserts integer keys into a tree, commits and prints the result.",
		Example: `  iavlx demo --keys 50,40,30,20,10,9,8 --dot
  iavlx demo --keys 50,40,70,45,43,47,48,10 --update 50`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().IntSlice("keys", []int{50, 40, 30, 20, 10, 9, 8}, "Keys to insert, encoded as 8 byte big-endian integers.")
	cmd.Flags().IntSlice("update", nil, "Keys to set again after the first commit.")
	cmd.Flags().Bool("dot", false, "Print the tree as a graphviz digraph.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		keys, err := cmd.Flags().GetIntSlice("keys")
		if err != nil {
			return err
		}
		updates, err := cmd.Flags().GetIntSlice("update")
		if err != nil {
			return err
		}
		opts, err := e.treeOptions()
		if err != nil {
			return err
		}
		opts.Metrics = iavlx.NewMetrics(e.registry, nil)
		tree := iavlx.NewTreeWithOpts(opts, e.treeLogger)

		out := cmd.OutOrStdout()
		for _, k := range keys {
			tree.Set(intKey(k), intKey(k))
		}
		hash, version := tree.Commit()
		fmt.Fprintf(out, "version %d hash %X height %d size %s hashed %d\n",
			version, hash, tree.Height(), humanize.Comma(tree.Size()), tree.HashedNodes())

		if len(updates) > 0 {
			for _, k := range updates {
				tree.Set(intKey(k), intKey(k+1))
			}
			hash, version = tree.Commit()
			fmt.Fprintf(out, "version %d hash %X height %d size %s hashed %d\n",
				version, hash, tree.Height(), humanize.Comma(tree.Size()), tree.HashedNodes())
		}

		if e.v.GetBool("dot") {
			return iavlx.RenderDotGraph(out, tree.Root())
		}
		return nil
	}
	return cmd
}

func intKey(i int) []byte {
	var bz [8]byte
	binary.BigEndian.PutUint64(bz[:], uint64(i))
	return bz[:]
}
