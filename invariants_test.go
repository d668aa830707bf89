package iavlx

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// k encodes i big-endian so that byte order matches integer order.
func k(i int) []byte {
	var bz [8]byte
	binary.BigEndian.PutUint64(bz[:], uint64(i))
	return bz[:]
}

// checkInvariants walks the whole subtree and returns its keys in order.
// It checks ordering, split keys, cached heights and balance.
func checkInvariants(node Node) ([][]byte, error) {
	switch n := node.(type) {
	case nil:
		return nil, nil
	case *Leaf:
		return [][]byte{n.key}, nil
	case *Branch:
		left, err := checkInvariants(n.left)
		if err != nil {
			return nil, err
		}
		right, err := checkInvariants(n.right)
		if err != nil {
			return nil, err
		}
		if len(right) == 0 {
			return nil, fmt.Errorf("%v: empty right subtree", n)
		}
		if !bytes.Equal(right[0], n.key) {
			return nil, fmt.Errorf("%v: split key is not the smallest right key %X", n, right[0])
		}
		if len(left) > 0 && bytes.Compare(left[len(left)-1], n.key) >= 0 {
			return nil, fmt.Errorf("%v: left key %X not below split key", n, left[len(left)-1])
		}
		if want := max(height(n.left), height(n.right)) + 1; n.height != want {
			return nil, fmt.Errorf("%v: cached height %d, want %d", n, n.height, want)
		}
		if balance := n.calcBalance(); balance < -1 || balance > 1 {
			return nil, fmt.Errorf("%v: unbalanced, balance factor %d", n, balance)
		}
		return append(left, right...), nil
	default:
		return nil, fmt.Errorf("unexpected node type %T", node)
	}
}

func dirtyNodes(root Node) []Node {
	var dirty []Node
	_ = Traverse(root, func(node, _ Node, _ string) error {
		if node.Dirty() {
			dirty = append(dirty, node)
		}
		return nil
	})
	return dirty
}

// searchPath returns the nodes visited when looking up key, root first.
func searchPath(root Node, key []byte) []Node {
	var path []Node
	node := root
	for node != nil {
		path = append(path, node)
		branch, ok := node.(*Branch)
		if !ok {
			break
		}
		if bytes.Compare(key, branch.key) < 0 {
			node = branch.left
		} else {
			node = branch.right
		}
	}
	return path
}
