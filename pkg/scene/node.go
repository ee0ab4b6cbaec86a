package scene

import (
	"maps"
	"slices"
)

// Connection is the upstream end of a wire: the node and output port
// feeding an input.
type Connection struct {
	Node string `json:"node" yaml:"node"`
	Port string `json:"port,omitempty" yaml:"port,omitempty"`
}

// Rename substitutes one node identity for another. A non-empty Port
// replaces the output port of every wire that ends up on New.
type Rename struct {
	Old string `json:"old" yaml:"old"`
	// From limits the rename to wires reading this output of Old. Empty
	// matches every output.
	From string `json:"from,omitempty" yaml:"from,omitempty"`
	New  string `json:"new" yaml:"new"`
	Port string `json:"port,omitempty" yaml:"port,omitempty"`
}

// Node is one node of the source shading network, as read from the scene
// and as rewritten by preprocess hooks.
//
// Attribute values are scalars (float64, int, bool, string), tuples
// ([]any or []float64), or nil. Element attributes of sparse arrays use
// indexed keys such as "colorEntryList[3].position".
type Node struct {
	ID          string                `json:"id" yaml:"id"`
	Type        string                `json:"type" yaml:"type"`
	Attributes  map[string]any        `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Connections map[string]Connection `json:"connections,omitempty" yaml:"connections,omitempty"`
	Weight      int                   `json:"weight,omitempty" yaml:"weight,omitempty"`

	// SourceType is the type the node had when it was read. Hooks that
	// change Type leave it alone; postprocess lookup keys on it.
	SourceType string `json:"-" yaml:"-"`

	// Renamings declared by the hook that produced this node.
	Renamings []Rename `json:"-" yaml:"-"`

	// Constant is the literal a placeholder node stands for. Inputs wired
	// to the placeholder receive it as their value.
	Constant []float64 `json:"-" yaml:"-"`
}

// Key returns the node ID.
func (n *Node) Key() string { return n.ID }

// Origin returns SourceType, or Type for nodes synthesized by hooks.
func (n *Node) Origin() string {
	if n.SourceType != "" {
		return n.SourceType
	}
	return n.Type
}

// Attr returns an attribute value with single-element lists unwrapped.
func (n *Node) Attr(key string) (any, bool) {
	v, ok := n.Attributes[key]
	if !ok {
		return nil, false
	}
	return Unwrap(v), true
}

// SetAttr sets an attribute, allocating the map on first use.
func (n *Node) SetAttr(key string, v any) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]any)
	}
	n.Attributes[key] = v
}

// Connect wires port to the given upstream connection.
func (n *Node) Connect(port string, c Connection) {
	if n.Connections == nil {
		n.Connections = make(map[string]Connection)
	}
	n.Connections[port] = c
}

// Connected reports whether port carries a wire.
func (n *Node) Connected(port string) bool {
	_, ok := n.Connections[port]
	return ok
}

// ConnectedPorts returns the wired input ports in sorted order.
func (n *Node) ConnectedPorts() []string {
	return slices.Sorted(maps.Keys(n.Connections))
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := *n
	c.Attributes = make(map[string]any, len(n.Attributes))
	for k, v := range n.Attributes {
		c.Attributes[k] = cloneValue(v)
	}
	c.Connections = maps.Clone(n.Connections)
	if c.Connections == nil {
		c.Connections = make(map[string]Connection)
	}
	c.Renamings = slices.Clone(n.Renamings)
	c.Constant = slices.Clone(n.Constant)
	return &c
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []float64:
		return slices.Clone(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
