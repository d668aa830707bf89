package bench

import (
	"fmt"
	"slices"

	"cosmossdk.io/log"
	"github.com/minio/sha256-simd"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cosmos/iavlx"
)

// Tree is a generic interface wrapping a multi-store tree structure.
type Tree interface {
	// Version should return the last committed version. If no version has been committed, it should return 0.
	Version() int64
	// ApplyUpdate should apply a single set or delete to the tree.
	ApplyUpdate(storeKey string, key, value []byte, delete bool) error
	// Commit should seal all changes made since the last commit.
	Commit() error
}

// MultiTree keeps one iavlx.Tree per store key.
type MultiTree struct {
	trees      map[string]*iavlx.Tree
	storeNames []string
	version    int64
	lastHash   []byte
	logger     log.Logger
}

var _ Tree = &MultiTree{}

type MultiTreeOptions struct {
	TreeOptions iavlx.Options
	// Registerer receives one set of tree metrics per store, labelled by store name.
	Registerer prometheus.Registerer
	Logger     log.Logger
}

func NewMultiTree(storeNames []string, opts MultiTreeOptions) *MultiTree {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	mt := &MultiTree{
		trees:      make(map[string]*iavlx.Tree, len(storeNames)),
		storeNames: slices.Sorted(slices.Values(storeNames)),
		logger:     logger,
	}
	for _, name := range mt.storeNames {
		treeOpts := opts.TreeOptions
		if opts.Registerer != nil {
			treeOpts.Metrics = iavlx.NewMetrics(opts.Registerer, prometheus.Labels{"store": name})
		}
		mt.trees[name] = iavlx.NewTreeWithOpts(treeOpts, logger.With("store", name))
	}
	return mt
}

func (mt *MultiTree) Version() int64 {
	return mt.version
}

func (mt *MultiTree) ApplyUpdate(storeKey string, key, value []byte, delete bool) error {
	if delete {
		return ErrDeleteUnsupported
	}
	tree, ok := mt.trees[storeKey]
	if !ok {
		return fmt.Errorf("tree with key %s not found", storeKey)
	}
	tree.Set(key, value)
	return nil
}

// Commit commits every store and combines the store hashes in store name order.
func (mt *MultiTree) Commit() error {
	hasher := sha256.New()
	for _, name := range mt.storeNames {
		hash, version := mt.trees[name].Commit()
		if version != mt.version+1 {
			return fmt.Errorf("unexpected; tree %s is at version %d, want %d", name, version, mt.version+1)
		}
		hasher.Write(hash)
	}
	mt.version++
	mt.lastHash = hasher.Sum(nil)
	mt.logger.Info("committed", "version", mt.version, "hash", fmt.Sprintf("%X", mt.lastHash))
	return nil
}

// Hash returns the combined hash of the last commit, nil before the first one.
func (mt *MultiTree) Hash() []byte {
	return mt.lastHash
}

func (mt *MultiTree) GetTree(storeKey string) (*iavlx.Tree, bool) {
	tree, ok := mt.trees[storeKey]
	return tree, ok
}

func (mt *MultiTree) StoreNames() []string {
	return mt.storeNames
}
