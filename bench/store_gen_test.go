package bench_test

import (
	"math/rand/v2"
	"testing"

	storev1beta1 "cosmossdk.io/api/cosmos/store/v1beta1"
	"github.com/stretchr/testify/require"

	"github.com/cosmos/iavlx/bench"
)

func TestStorePresets(t *testing.T) {
	bank := bench.BankLike(64_000, 100)
	require.Equal(t, "bank", bank.StoreKey)
	require.Equal(t, 1_000, bank.InitialSize)
	require.Equal(t, 64_000, bank.FinalSize)
	require.Equal(t, 64_000*167/100, bank.ChangePerVersion)

	require.Equal(t, "lockup", bench.LockupLike(64_000, 100).StoreKey)
	staking := bench.StakingLike(10, 1)
	require.Equal(t, 1, staking.InitialSize)
	require.Equal(t, 380, staking.ChangePerVersion)
}

func TestGenerateFromPresets(t *testing.T) {
	// keep the churn low, the shapes' value sizes are large
	params := bench.TreeParams{Versions: 4, RandSource: rand.NewPCG(11, 11)}
	for _, p := range []bench.StoreParams{bench.BankLike(640, 4), bench.StakingLike(640, 4)} {
		p.ChangePerVersion = 10
		params.StoreParams = append(params.StoreParams, p)
	}
	dir := t.TempDir()
	require.NoError(t, bench.GenerateChangesets(params, dir))

	keys := map[string]map[string]struct{}{"bank": {}, "staking": {}}
	for version := int64(1); version <= 4; version++ {
		require.NoError(t, bench.ReadChangeset(dir, version, func(pair *storev1beta1.StoreKVPair) error {
			keys[pair.StoreKey][string(pair.Key)] = struct{}{}
			return nil
		}))
	}
	require.Len(t, keys["bank"], 640)
	require.Len(t, keys["staking"], 640)
}
