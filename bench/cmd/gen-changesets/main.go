package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/cosmos/iavlx/bench"
)

func SmallGenerators(finalSize int, versions int64) []bench.StoreParams {
	return []bench.StoreParams{
		bench.BankLike(finalSize, versions),
		bench.StakingLike(finalSize, versions),
		bench.LockupLike(finalSize, versions),
	}
}

func TinyGenerators(versions int64) []bench.StoreParams {
	return []bench.StoreParams{
		bench.TinyGenerator("bank", versions),
		bench.TinyGenerator("staking", versions),
	}
}

func main() {
	var versions int64
	var profile string
	var seed uint64
	var finalSize int
	cmd := &cobra.Command{
		Use:   "gen-changesets [out-dir]",
		Short: "Generate synthetic insert and update changesets for iavlx replay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var gens []bench.StoreParams
			switch profile {
			case "small":
				gens = SmallGenerators(finalSize, versions)
			case "tiny":
				gens = TinyGenerators(versions)
			default:
				return fmt.Errorf("unknown generator profile: %s", profile)
			}

			outDir := args[0]

			gen := bench.TreeParams{
				StoreParams: gens,
				Versions:    versions,
				RandSource:  rand.NewPCG(seed, seed),
				Logger:      slog.Default(),
			}

			return bench.GenerateChangesets(gen, outDir)
		},
	}
	cmd.Flags().Int64Var(&versions, "versions", 100, "number of versions to generate")
	cmd.Flags().StringVar(&profile, "profile", "small", "data generation profile to use (small|tiny)")
	cmd.Flags().IntVar(&finalSize, "final-size", 100_000, "keys per store at the last version (small profile)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for the random source")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
