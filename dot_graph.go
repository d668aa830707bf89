package iavlx

import (
	"fmt"
	"io"

	"github.com/emicklei/dot"
)

// Traverse visits the subtree pre-order. parent is nil for root, direction is
// "l" or "r" relative to parent and empty for root.
func Traverse(root Node, onNode func(node, parent Node, direction string) error) error {
	var traverse func(node, parent Node, direction string) error
	traverse = func(node, parent Node, direction string) error {
		if node == nil {
			return nil
		}
		if err := onNode(node, parent, direction); err != nil {
			return err
		}
		branch, ok := node.(*Branch)
		if !ok {
			return nil
		}
		if err := traverse(branch.left, node, "l"); err != nil {
			return err
		}
		return traverse(branch.right, node, "r")
	}
	return traverse(root, nil, "")
}

// Edge links a branch to one of its children. To is nil for an absent child.
type Edge struct {
	From      Node
	To        Node
	Direction string
}

// Edges lists the parent/child edges of the subtree, pre-order, left before right.
func Edges(root Node) []Edge {
	var edges []Edge
	_ = Traverse(root, func(node, _ Node, _ string) error {
		if branch, ok := node.(*Branch); ok {
			edges = append(edges,
				Edge{From: node, To: branch.left, Direction: "l"},
				Edge{From: node, To: branch.right, Direction: "r"},
			)
		}
		return nil
	})
	return edges
}

// NodeLabel describes a node with its key, height and the first 4 bytes of its
// cached hash ("-" if it was never hashed, "*" appended when dirty).
func NodeLabel(node Node) string {
	hash := "-"
	if h := node.Hash(); len(h) >= 4 {
		hash = fmt.Sprintf("%X", h[:4])
	}
	if node.Dirty() {
		hash += "*"
	}
	return fmt.Sprintf("K:0x%X H:%d #%s", node.Key(), node.Height(), hash)
}

// RenderDotGraph writes the subtree as a graphviz digraph. Leaves are boxes,
// an absent child of a branch points to an "empty" node.
func RenderDotGraph(w io.Writer, root Node) error {
	graph := dot.NewGraph(dot.Directed)

	nodes := map[Node]dot.Node{}
	var empty *dot.Node
	err := Traverse(root, func(node, parent Node, direction string) error {
		n := graph.Node(node.NodeKey().String()).Label(NodeLabel(node))
		if node.IsLeaf() {
			n = n.Attr("shape", "box")
		}
		nodes[node] = n
		if parent == nil {
			return nil
		}
		graph.Edge(nodes[parent], n, direction)
		return nil
	})
	if err != nil {
		return err
	}

	for _, edge := range Edges(root) {
		if edge.To != nil {
			continue
		}
		if empty == nil {
			e := graph.Node("empty").Attr("shape", "point")
			empty = &e
		}
		graph.Edge(nodes[edge.From], *empty, edge.Direction)
	}

	_, err = io.WriteString(w, graph.String())
	return err
}
