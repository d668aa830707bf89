package iavlx

import (
	"bytes"
	"fmt"

	"cosmossdk.io/log"
)

// Tree is the root handle of an IAVL tree. It is not safe for concurrent use:
// callers must serialize Set, UpdateHash and Commit.
type Tree struct {
	root        Node
	version     uint32
	keys        nodeKeyGen
	size        int64
	hashedNodes int
	opts        Options
	logger      log.Logger
}

// NewTree returns an empty tree at version 0.
func NewTree() *Tree {
	return NewTreeWithOpts(Options{}, log.NewNopLogger())
}

func NewTreeWithOpts(opts Options, logger log.Logger) *Tree {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	tree := &Tree{
		opts:   opts,
		logger: logger,
	}
	tree.keys.reset(1)
	return tree
}

// Set inserts key or overwrites its value. It does not update any hash,
// call UpdateHash or Commit for that. Key and value are copied.
func (t *Tree) Set(key, value []byte) (updated bool) {
	key = bytes.Clone(key)
	if key == nil {
		key = []byte{}
	}
	value = bytes.Clone(value)
	if value == nil {
		value = []byte{}
	}
	t.root, updated = setRecursive(&t.keys, t.root, key, value)
	if !updated {
		t.size++
	}
	t.opts.Metrics.onSet(updated)
	return updated
}

// Get returns the value stored under key.
func (t *Tree) Get(key []byte) ([]byte, bool) {
	_, value, ok := Search(t.root, key)
	if !ok {
		return nil, false
	}
	if !t.opts.ZeroCopy {
		value = bytes.Clone(value)
	}
	return value, true
}

func (t *Tree) Has(key []byte) bool {
	_, _, ok := Search(t.root, key)
	return ok
}

// UpdateHash runs the lazy hash pass over the whole tree and returns the root hash.
// An empty tree hashes to EmptyHash.
func (t *Tree) UpdateHash() []byte {
	t.hashedNodes = 0
	if t.root == nil {
		return EmptyHash()
	}
	hash := updateHash(t.root, &t.hashedNodes)
	t.opts.Metrics.onHash(t.hashedNodes)
	if t.opts.VerifyHashes {
		if expected := HashNode(t.root); !bytes.Equal(expected, hash) {
			panic(fmt.Sprintf("root hash mismatch: cached %X, recomputed %X", hash, expected))
		}
	}
	return bytes.Clone(hash)
}

// HashedNodes returns the number of node hashes recomputed by the last hash pass.
func (t *Tree) HashedNodes() int {
	return t.hashedNodes
}

// Commit seals the current batch of sets: it runs the hash pass and bumps the version.
// Nodes created after Commit are stamped with the next version.
func (t *Tree) Commit() ([]byte, int64) {
	hash := t.UpdateHash()
	t.version++
	t.keys.reset(t.version + 1)
	t.opts.Metrics.onCommit(t.Height(), t.size)
	t.logger.Debug("committed version",
		"version", t.version,
		"hash", fmt.Sprintf("%X", hash),
		"hashed_nodes", t.hashedNodes,
		"size", t.size,
	)
	return hash, int64(t.version)
}

// Version returns the last committed version, 0 if nothing was committed.
func (t *Tree) Version() int64 {
	return int64(t.version)
}

func (t *Tree) Height() uint8 {
	return height(t.root)
}

// Size returns the number of keys in the tree.
func (t *Tree) Size() int64 {
	return t.size
}

func (t *Tree) Options() Options {
	return t.opts
}

func (t *Tree) Root() Node {
	return t.root
}
