package iavlx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/minio/sha256-simd"
)

// Domain separation prefixes, a leaf preimage can never be read as a branch preimage.
const (
	leafPrefix   byte = 0x00
	branchPrefix byte = 0x01
)

var (
	hashPool = &sync.Pool{
		New: func() any {
			return sha256.New()
		},
	}
	// emptyHash stands in for an absent child and is the root hash of an empty tree.
	emptyHash = make([]byte, sha256.Size)
)

// EmptyHash returns the sentinel digest.
func EmptyHash() []byte {
	return bytes.Clone(emptyHash)
}

// EncodeBytes writes a varint length-prefixed byte slice to the writer.
func EncodeBytes(w io.Writer, bz []byte) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(bz)))
	if _, err := w.Write(buf[0:n]); err != nil {
		return err
	}
	_, err := w.Write(bz)
	return err
}

func writeLeafHashBytes(w io.Writer, key, value []byte) error {
	if _, err := w.Write([]byte{leafPrefix}); err != nil {
		return fmt.Errorf("writing prefix, %w", err)
	}
	if err := EncodeBytes(w, key); err != nil {
		return fmt.Errorf("writing key, %w", err)
	}
	// Indirection needed to provide proofs without values.
	valueHash := sha256.Sum256(value)
	if err := EncodeBytes(w, valueHash[:]); err != nil {
		return fmt.Errorf("writing value, %w", err)
	}
	return nil
}

func writeBranchHashBytes(w io.Writer, leftHash, rightHash []byte) error {
	if _, err := w.Write([]byte{branchPrefix}); err != nil {
		return fmt.Errorf("writing prefix, %w", err)
	}
	if _, err := w.Write(leftHash); err != nil {
		return fmt.Errorf("writing left hash, %w", err)
	}
	if _, err := w.Write(rightHash); err != nil {
		return fmt.Errorf("writing right hash, %w", err)
	}
	return nil
}

func sum(write func(w io.Writer) error) []byte {
	h := hashPool.Get().(hash.Hash)
	defer func() {
		h.Reset()
		hashPool.Put(h)
	}()
	// hash.Hash writes never fail
	if err := write(h); err != nil {
		panic(err)
	}
	return h.Sum(nil)
}

// LeafHash is the digest of a leaf holding key and value.
func LeafHash(key, value []byte) []byte {
	return sum(func(w io.Writer) error {
		return writeLeafHashBytes(w, key, value)
	})
}

// BranchHash combines two child digests. Pass EmptyHash for an absent child.
func BranchHash(leftHash, rightHash []byte) []byte {
	return sum(func(w io.Writer) error {
		return writeBranchHashBytes(w, leftHash, rightHash)
	})
}

// updateHash recomputes the cached hashes of the dirty part of the subtree,
// post-order, and returns the subtree digest. Clean nodes are not descended into.
// count is incremented for every node whose hash was recomputed.
func updateHash(node Node, count *int) []byte {
	switch n := node.(type) {
	case nil:
		return emptyHash
	case *Leaf:
		if !n.dirty && n.hash != nil {
			return n.hash
		}
		n.hash = LeafHash(n.key, n.value)
		n.dirty = false
		*count++
		return n.hash
	case *Branch:
		if !n.dirty && n.hash != nil {
			return n.hash
		}
		leftHash := updateHash(n.left, count)
		rightHash := updateHash(n.right, count)
		n.hash = BranchHash(leftHash, rightHash)
		n.dirty = false
		*count++
		return n.hash
	default:
		panic(fmt.Sprintf("unexpected node type %T", node))
	}
}

// HashNode computes the digest of the subtree from scratch, ignoring and
// leaving untouched every cached hash.
func HashNode(node Node) []byte {
	switch n := node.(type) {
	case nil:
		return EmptyHash()
	case *Leaf:
		return LeafHash(n.key, n.value)
	case *Branch:
		return BranchHash(HashNode(n.left), HashNode(n.right))
	default:
		panic(fmt.Sprintf("unexpected node type %T", node))
	}
}

// VerifyHash compare node's cached hash with computed one
func VerifyHash(node Node) bool {
	if node == nil {
		return true
	}
	return bytes.Equal(HashNode(node), node.Hash())
}
