// Package target defines the converted side of a run: target nodes with
// their parameter trees and fully resolved wires, ready for an emitter.
package target

import (
	"maps"
	"slices"

	"github.com/matzehuels/shadebridge/pkg/scene"
)

// Kind distinguishes parameter shapes.
type Kind int

const (
	// Value is a single literal or a connected input.
	Value Kind = iota
	// Group is a named container that may also carry its own value.
	Group
	// Array is a variable-length list of numbers sized at emission time.
	Array
)

// Param is one node of a target parameter tree.
//
// Enabled marks a parameter whose value overrides the target default.
// Connected marks an input driven by a wire; its literal Value is not
// meaningful then. Array parameters store their elements flattened in
// Value as []float64, TupleSize components per element.
type Param struct {
	Name      string
	Kind      Kind
	Enabled   bool
	Connected bool
	Value     any
	TupleSize int
	Params    []*Param
}

// Elements returns the number of array elements.
func (p *Param) Elements() int {
	vals, _ := p.Value.([]float64)
	if p.TupleSize <= 1 {
		return len(vals)
	}
	return len(vals) / p.TupleSize
}

// Find returns the first parameter named name at or below p.
func (p *Param) Find(name string) *Param {
	if p.Name == name {
		return p
	}
	return find(p.Params, name)
}

func (p *Param) clone() *Param {
	c := *p
	if vals, ok := p.Value.([]float64); ok {
		c.Value = slices.Clone(vals)
	}
	c.Params = cloneParams(p.Params)
	return &c
}

func find(ps []*Param, name string) *Param {
	for _, p := range ps {
		if got := p.Find(name); got != nil {
			return got
		}
	}
	return nil
}

func cloneParams(ps []*Param) []*Param {
	if ps == nil {
		return nil
	}
	out := make([]*Param, len(ps))
	for i, p := range ps {
		out[i] = p.clone()
	}
	return out
}

// Node is a converted node.
type Node struct {
	ID         string
	Type       string
	SourceType string
	Params     []*Param
	// Connections maps target input ports to their upstream node and the
	// source-side output port.
	Connections map[string]scene.Connection
	// Ports lists the input ports the target type exposes, in declaration
	// order. Wires on any other port are not emitted.
	Ports []string
	// Color is the node color as RGB, nil for the default.
	Color []float64
	// Opaque nodes have no target equivalent. They take part in renaming
	// but are never emitted.
	Opaque bool
	// Weight orders siblings in emitted layouts.
	Weight int
	// Renamings declared by the postprocess hook that produced the node.
	Renamings []scene.Rename
	// Constant is set on opaque placeholders that stand for a literal.
	// Readers take the value when the placeholder is removed.
	Constant []float64
}

// Key returns the node ID.
func (n *Node) Key() string { return n.ID }

// Origin returns SourceType, or Type when the node was synthesized.
func (n *Node) Origin() string {
	if n.SourceType != "" {
		return n.SourceType
	}
	return n.Type
}

// Find returns the parameter named name anywhere in the tree.
func (n *Node) Find(name string) *Param { return find(n.Params, name) }

// Set stores p at the top level, replacing a parameter with the same name.
func (n *Node) Set(p *Param) { n.Params = set(n.Params, p) }

// Remove deletes the top-level parameter name. It reports whether one was
// removed.
func (n *Node) Remove(name string) bool {
	before := len(n.Params)
	n.Params = slices.DeleteFunc(n.Params, func(p *Param) bool { return p.Name == name })
	return len(n.Params) != before
}

// SetIn stores p as a child of parent, replacing a child with the same name.
func SetIn(parent *Param, p *Param) { parent.Params = set(parent.Params, p) }

func set(ps []*Param, p *Param) []*Param {
	for i, x := range ps {
		if x.Name == p.Name {
			ps[i] = p
			return ps
		}
	}
	return append(ps, p)
}

// Walk visits every parameter depth-first, parents before children.
func (n *Node) Walk(fn func(p *Param, depth int)) {
	var walk func([]*Param, int)
	walk = func(ps []*Param, d int) {
		for _, p := range ps {
			fn(p, d)
			walk(p.Params, d+1)
		}
	}
	walk(n.Params, 0)
}

// HasPort reports whether port is exposed.
func (n *Node) HasPort(port string) bool { return slices.Contains(n.Ports, port) }

// AddPort exposes port if it is not already.
func (n *Node) AddPort(port string) {
	if !n.HasPort(port) {
		n.Ports = append(n.Ports, port)
	}
}

// RemovePort hides port and drops any wire on it.
func (n *Node) RemovePort(port string) {
	n.Ports = slices.DeleteFunc(n.Ports, func(p string) bool { return p == port })
	delete(n.Connections, port)
}

// Connect wires port, allocating the map on first use.
func (n *Node) Connect(port string, c scene.Connection) {
	if n.Connections == nil {
		n.Connections = make(map[string]scene.Connection)
	}
	n.Connections[port] = c
}

// Connected reports whether port is wired.
func (n *Node) Connected(port string) bool {
	_, ok := n.Connections[port]
	return ok
}

// WiredPorts returns the wired ports, exposed ports in declaration order
// first, then any others sorted.
func (n *Node) WiredPorts() []string {
	var out []string
	for _, p := range n.Ports {
		if n.Connected(p) {
			out = append(out, p)
		}
	}
	for _, p := range slices.Sorted(maps.Keys(n.Connections)) {
		if !n.HasPort(p) {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := *n
	c.Params = cloneParams(n.Params)
	c.Connections = maps.Clone(n.Connections)
	if c.Connections == nil {
		c.Connections = make(map[string]scene.Connection)
	}
	c.Ports = slices.Clone(n.Ports)
	c.Color = slices.Clone(n.Color)
	c.Renamings = slices.Clone(n.Renamings)
	c.Constant = slices.Clone(n.Constant)
	return &c
}
