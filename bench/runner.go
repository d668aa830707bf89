package bench

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	storev1beta1 "cosmossdk.io/api/cosmos/store/v1beta1"
	"github.com/dustin/go-humanize"
)

// Hasher is implemented by trees that expose the hash of their last commit.
type Hasher interface {
	Hash() []byte
}

type ReplayParams struct {
	// TargetVersion is the last version to apply, 0 applies every version in the changeset dir.
	TargetVersion int64
	Logger        *slog.Logger
	// HashLog is optional. When set, the tree must implement Hasher and every
	// committed hash is verified against the log, or recorded if missing.
	HashLog *HashLog
}

// Replay applies the changesets in changesetDir to tree, one commit per version,
// starting after the tree's current version.
func Replay(tree Tree, changesetDir string, params ReplayParams) error {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var hasher Hasher
	if params.HashLog != nil {
		var ok bool
		hasher, ok = tree.(Hasher)
		if !ok {
			return fmt.Errorf("tree %T does not expose its hash", tree)
		}
	}

	target := params.TargetVersion
	if target <= 0 {
		info, err := ReadChangesetInfo(changesetDir)
		if err != nil {
			return fmt.Errorf("error reading changeset info file: %w", err)
		}
		target = info.Versions
	}

	version := tree.Version()
	logger.Info("starting run", "start_version", version, "target_version", target)
	for version < target {
		version++
		err := applyVersion(logger, tree, changesetDir, version)
		if err != nil {
			return fmt.Errorf("error applying version %d: %w", version, err)
		}
		if hasher == nil {
			continue
		}
		checked, err := params.HashLog.Verify(version, hasher.Hash())
		if err != nil {
			return err
		}
		if checked {
			logger.Debug("verified hash", "version", version)
		}
	}
	return nil
}

func applyVersion(logger *slog.Logger, tree Tree, dataDir string, version int64) error {
	logger.Info("applying changeset", "version", version, "file", changesetDataFilename(dataDir, version))
	i := 0
	startTime := time.Now()
	err := ReadChangeset(dataDir, version, func(pair *storev1beta1.StoreKVPair) error {
		if i%10_000 == 0 && i > 0 {
			logger.Debug("applied changes", "version", version, "count", i)
		}
		i++
		return tree.ApplyUpdate(pair.StoreKey, pair.Key, pair.Value, pair.Delete)
	})
	if err != nil {
		return err
	}
	logger.Info("applied all changes, committing", "version", version, "count", i)

	err = tree.Commit()
	if err != nil {
		return fmt.Errorf("error committing version %d: %w", version, err)
	}

	duration := time.Since(startTime)
	opsPerSec := float64(i) / duration.Seconds()
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	logger.Info(
		"committed version",
		"version", version,
		"duration", duration,
		"ops_per_sec", humanize.Commaf(opsPerSec),
		"mem_allocs", humanize.Bytes(memStats.Alloc),
		"mem_sys", humanize.Bytes(memStats.Sys),
		"mem_num_gc", humanize.Comma(int64(memStats.NumGC)),
	)

	return nil
}
