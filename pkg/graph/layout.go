package graph

import "slices"

// Node-graph editor metrics, in editor units.
const (
	NodeWidth  = 200.0
	SpaceWidth = 60.0
	RowHeight  = 100.0
)

// Layout holds editor positions for the nodes of a graph.
type Layout struct {
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Positions map[string]Point `json:"positions"`
}

// Point is a node position. X is the node's horizontal center.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type branch struct {
	id       string
	weight   int
	width    float64
	children []*branch
}

// Arrange builds a tree from the wires of nodes and places every node.
//
// Nodes are inserted in order. A node becomes a child of the first node
// already in the tree that reads from it, or a top-level branch when no
// such node exists; top-level branches that feed the new node are moved
// below it. A leaf is NodeWidth wide, a parent as wide as its children
// plus SpaceWidth between them. Children are ordered by weight and rows
// are RowHeight apart, the first row at RowHeight.
func Arrange(nodes []Node) Layout {
	byID := make(map[string]*Node, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}
	root := &branch{}
	for i := range nodes {
		insert(root, root, byID, &branch{id: nodes[i].ID, weight: nodes[i].Weight}, 0)
	}

	l := Layout{Positions: make(map[string]Point, len(nodes))}
	measure(root)
	depth := place(root, 0, 0, l.Positions)
	if len(root.children) > 0 {
		l.Width = root.width
	}
	l.Height = float64(depth) * RowHeight
	return l
}

// insert returns false when no place was found below a nested branch.
func insert(root, b *branch, byID map[string]*Node, n *branch, level int) bool {
	if consumer, ok := byID[b.id]; ok && consumer.Feeds(n.id) {
		adopt(root, byID, n)
		b.children = append(b.children, n)
		return true
	}
	for _, c := range b.children {
		if insert(root, c, byID, n, level+1) {
			return true
		}
	}
	if level > 0 {
		return false
	}
	adopt(root, byID, n)
	b.children = append(b.children, n)
	return true
}

// adopt moves top-level branches feeding n below it.
func adopt(root *branch, byID map[string]*Node, n *branch) {
	self := byID[n.id]
	if self == nil {
		return
	}
	root.children = slices.DeleteFunc(root.children, func(c *branch) bool {
		if c == n || !self.Feeds(c.id) {
			return false
		}
		n.children = append(n.children, c)
		return true
	})
}

func measure(b *branch) float64 {
	if len(b.children) == 0 {
		b.width = NodeWidth
		return b.width
	}
	w := 0.0
	for _, c := range b.children {
		w += measure(c)
	}
	b.width = w + float64(len(b.children)-1)*SpaceWidth
	return b.width
}

// place records positions below b and returns the deepest level reached.
func place(b *branch, x float64, level int, out map[string]Point) int {
	if b.id != "" {
		out[b.id] = Point{X: x, Y: float64(level) * RowHeight}
	}
	deepest := level
	pos := x - b.width/2
	children := slices.Clone(b.children)
	slices.SortStableFunc(children, func(a, c *branch) int { return a.weight - c.weight })
	for _, c := range children {
		deepest = max(deepest, place(c, pos+c.width/2, level+1, out))
		pos += c.width + SpaceWidth
	}
	return deepest
}
