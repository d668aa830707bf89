package iavlx

import "fmt"

// NodeKey stamps a node with the version that created (or last replaced) it.
// The high 32 bits hold the version, bit 31 distinguishes leaves from branches
// and the low 31 bits hold the order in which the node was stamped in that version.
type NodeKey uint64

const leafBit = 1 << 31

func NewLeafNodeKey(version, seq uint32) NodeKey {
	return NodeKey(uint64(version)<<32 | leafBit | uint64(seq&^leafBit))
}

func NewBranchNodeKey(version, seq uint32) NodeKey {
	return NodeKey(uint64(version)<<32 | uint64(seq&^leafBit))
}

func (nk NodeKey) Version() uint32 {
	return uint32(nk >> 32)
}

func (nk NodeKey) Sequence() uint32 {
	return uint32(nk) &^ leafBit
}

func (nk NodeKey) IsLeaf() bool {
	return nk&leafBit != 0
}

func (nk NodeKey) String() string {
	kind := "b"
	if nk.IsLeaf() {
		kind = "l"
	}
	return fmt.Sprintf("%d.%s%d", nk.Version(), kind, nk.Sequence())
}

// nodeKeyGen hands out node keys for the version currently being built.
type nodeKeyGen struct {
	version   uint32
	leafSeq   uint32
	branchSeq uint32
}

func (g *nodeKeyGen) leafKey() NodeKey {
	g.leafSeq++
	return NewLeafNodeKey(g.version, g.leafSeq)
}

func (g *nodeKeyGen) branchKey() NodeKey {
	g.branchSeq++
	return NewBranchNodeKey(g.version, g.branchSeq)
}

func (g *nodeKeyGen) reset(version uint32) {
	g.version = version
	g.leafSeq = 0
	g.branchSeq = 0
}
