package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cosmos/iavlx"
)

func dotCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Replays a changeset directory and renders one store's tree as a graphviz digraph.",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().String("changeset-dir", "", "Directory containing the changeset files.")
	cmd.Flags().Int64("versions", 0, "Number of versions to apply, 0 applies all.")
	cmd.Flags().String("store", "", "Store to render, defaults to the first store name.")
	cmd.Flags().String("out", "", "Output file, defaults to stdout.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		tree, err := e.replay()
		if err != nil {
			return err
		}
		store := e.v.GetString("store")
		if store == "" && len(tree.StoreNames()) > 0 {
			store = tree.StoreNames()[0]
		}
		storeTree, ok := tree.GetTree(store)
		if !ok {
			return fmt.Errorf("store %q not found", store)
		}
		return writeDot(cmd.OutOrStdout(), e.v.GetString("out"), storeTree.Root())
	}
	return cmd
}

func writeDot(stdout io.Writer, out string, root iavlx.Node) error {
	if out == "" {
		return iavlx.RenderDotGraph(stdout, root)
	}
	file, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := iavlx.RenderDotGraph(file, root); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
