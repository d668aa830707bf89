package iavlx

import (
	"bytes"
	"fmt"
)

// mutateBranch marks node as replaced in the version being built. Nodes are
// owned exclusively by one tree, so the path is rewritten in place; a node
// keeps its stamp if it was already stamped in this version.
func mutateBranch(keys *nodeKeyGen, node *Branch) *Branch {
	node.dirty = true
	if node.nodeKey.Version() != keys.version {
		node.nodeKey = keys.branchKey()
	}
	return node
}

func mutateLeaf(keys *nodeKeyGen, leaf *Leaf, value []byte) *Leaf {
	leaf.value = value
	leaf.dirty = true
	if leaf.nodeKey.Version() != keys.version {
		leaf.nodeKey = keys.leafKey()
	}
	return leaf
}

// setRecursive do set operation.
// returns the new subtree root and whether it was an update of an existing key,
// if update, the tree height and balance is not changed.
func setRecursive(keys *nodeKeyGen, node Node, key, value []byte) (Node, bool) {
	switch n := node.(type) {
	case nil:
		return newLeaf(keys, key, value), false
	case *Leaf:
		switch bytes.Compare(key, n.key) {
		case -1:
			return &Branch{
				key:     n.key,
				left:    newLeaf(keys, key, value),
				right:   n,
				height:  1,
				nodeKey: keys.branchKey(),
				dirty:   true,
			}, false
		case 1:
			return &Branch{
				key:     key,
				left:    n,
				right:   newLeaf(keys, key, value),
				height:  1,
				nodeKey: keys.branchKey(),
				dirty:   true,
			}, false
		default:
			// just updating value
			return mutateLeaf(keys, n, value), true
		}
	case *Branch:
		var updated bool
		newNode := mutateBranch(keys, n)
		if bytes.Compare(key, n.key) < 0 {
			newNode.left, updated = setRecursive(keys, n.left, key, value)
		} else {
			newNode.right, updated = setRecursive(keys, n.right, key, value)
		}
		if updated {
			return newNode, true
		}
		newNode.updateHeight()
		return newNode.reBalance(keys), false
	default:
		panic(fmt.Sprintf("unexpected node type %T", node))
	}
}

func (node *Branch) updateHeight() {
	node.height = max(height(node.left), height(node.right)) + 1
}

func (node *Branch) calcBalance() int {
	return int(height(node.left)) - int(height(node.right))
}

// asPivot returns node as a branch that can take part in a rotation.
func asPivot(node Node, side string) *Branch {
	b, ok := node.(*Branch)
	if !ok {
		panic(fmt.Sprintf("cannot rotate %s: pivot is %v, not a branch", side, node))
	}
	return b
}

// Invariant: node is returned by `mutateBranch`.
//
//	   S               L
//	  / \      =>     / \
//	 L                   S
//	/ \                 / \
//	  LR               LR
func (node *Branch) rotateRight(keys *nodeKeyGen) *Branch {
	newSelf := mutateBranch(keys, asPivot(node.left, "right"))
	node.left = newSelf.right
	newSelf.right = node
	node.updateHeight()
	newSelf.updateHeight()
	return newSelf
}

// Invariant: node is returned by `mutateBranch`.
//
//	 S              R
//	/ \     =>     / \
//	    R         S
//	   / \       / \
//	 RL             RL
func (node *Branch) rotateLeft(keys *nodeKeyGen) *Branch {
	newSelf := mutateBranch(keys, asPivot(node.right, "left"))
	node.right = newSelf.left
	newSelf.left = node
	node.updateHeight()
	newSelf.updateHeight()
	return newSelf
}

// Invariant: node is returned by `mutateBranch` and its height is up to date.
func (node *Branch) reBalance(keys *nodeKeyGen) *Branch {
	switch balance := node.calcBalance(); balance {
	case 2:
		left := asPivot(node.left, "right")
		if height(left.right) > height(left.left) {
			// left right
			node.left = mutateBranch(keys, left).rotateLeft(keys)
		}
		return node.rotateRight(keys)
	case -2:
		right := asPivot(node.right, "left")
		if height(right.left) > height(right.right) {
			// right left
			node.right = mutateBranch(keys, right).rotateRight(keys)
		}
		return node.rotateLeft(keys)
	case -1, 0, 1:
		// nothing changed
		return node
	default:
		panic(fmt.Sprintf("unreachable: balance factor %d at %v", balance, node))
	}
}
