package iavlx

import (
	"bytes"
	"fmt"
)

// Node is either a *Leaf or a *Branch. No other implementations exist.
type Node interface {
	Key() []byte
	Height() uint8
	IsLeaf() bool
	NodeKey() NodeKey
	// Hash returns the cached hash, nil if it has never been computed.
	// It may be stale when Dirty returns true.
	Hash() []byte
	Dirty() bool

	isNode()
}

type Leaf struct {
	key     []byte
	value   []byte
	hash    []byte
	nodeKey NodeKey
	dirty   bool
}

func newLeaf(keys *nodeKeyGen, key, value []byte) *Leaf {
	return &Leaf{
		key:     key,
		value:   value,
		nodeKey: keys.leafKey(),
		dirty:   true,
	}
}

func (leaf *Leaf) Key() []byte {
	return leaf.key
}

func (leaf *Leaf) Value() []byte {
	return leaf.value
}

func (leaf *Leaf) Height() uint8 {
	return 0
}

func (leaf *Leaf) IsLeaf() bool {
	return true
}

func (leaf *Leaf) NodeKey() NodeKey {
	return leaf.nodeKey
}

func (leaf *Leaf) Hash() []byte {
	return leaf.hash
}

func (leaf *Leaf) Dirty() bool {
	return leaf.dirty
}

func (leaf *Leaf) String() string {
	return fmt.Sprintf("Leaf{key:%x ver:%d}", leaf.key, leaf.nodeKey.Version())
}

func (*Leaf) isNode() {}

// Branch is an inner node. Its key is the smallest key of its right subtree.
type Branch struct {
	key     []byte
	left    Node
	right   Node
	height  uint8
	hash    []byte
	nodeKey NodeKey
	dirty   bool
}

func (node *Branch) Key() []byte {
	return node.key
}

func (node *Branch) Left() Node {
	return node.left
}

func (node *Branch) Right() Node {
	return node.right
}

func (node *Branch) Height() uint8 {
	return node.height
}

func (node *Branch) IsLeaf() bool {
	return false
}

func (node *Branch) NodeKey() NodeKey {
	return node.nodeKey
}

func (node *Branch) Hash() []byte {
	return node.hash
}

func (node *Branch) Dirty() bool {
	return node.dirty
}

func (node *Branch) String() string {
	return fmt.Sprintf("Branch{key:%x ht:%d ver:%d}", node.key, node.height, node.nodeKey.Version())
}

func (*Branch) isNode() {}

var (
	_ Node = (*Leaf)(nil)
	_ Node = (*Branch)(nil)
)

// height treats an absent child as an empty subtree of height 0.
func height(node Node) uint8 {
	if node == nil {
		return 0
	}
	return node.Height()
}

// Search looks up key in the subtree rooted at root. It never mutates or hashes.
func Search(root Node, key []byte) (k, v []byte, ok bool) {
	node := root
	for node != nil {
		switch n := node.(type) {
		case *Leaf:
			if bytes.Equal(n.key, key) {
				return n.key, n.value, true
			}
			return nil, nil, false
		case *Branch:
			if bytes.Compare(key, n.key) < 0 {
				node = n.left
			} else {
				node = n.right
			}
		default:
			panic(fmt.Sprintf("unexpected node type %T", node))
		}
	}
	return nil, nil, false
}
