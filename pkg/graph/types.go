package graph

import (
	"github.com/matzehuels/shadebridge/pkg/diag"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// Parameter kinds.
const (
	KindValue = "value"
	KindGroup = "group"
	KindArray = "array"
)

// Graph is a converted material.
type Graph struct {
	Renderer    string         `json:"renderer,omitempty"`
	Root        string         `json:"root,omitempty"`
	HostVersion string         `json:"host_version,omitempty"`
	Nodes       []Node         `json:"nodes"`
	Renames     []scene.Rename `json:"renames,omitempty"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
	Layout      *Layout        `json:"layout,omitempty"`
}

// Node is one converted node.
type Node struct {
	ID          string                      `json:"id"`
	Type        string                      `json:"type"`
	SourceType  string                      `json:"source_type,omitempty"`
	Weight      int                         `json:"weight,omitempty"`
	Color       []float64                   `json:"color,omitempty"`
	Ports       []string                    `json:"ports,omitempty"`
	Params      []Param                     `json:"params,omitempty"`
	Connections map[string]scene.Connection `json:"connections,omitempty"`
}

// Feeds reports whether n reads from the node id.
func (n *Node) Feeds(id string) bool {
	for _, c := range n.Connections {
		if c.Node == id {
			return true
		}
	}
	return false
}

// Param is one parameter of a node's tree.
type Param struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind,omitempty"`
	Enabled   bool    `json:"enabled,omitempty"`
	Connected bool    `json:"connected,omitempty"`
	Value     any     `json:"value,omitempty"`
	TupleSize int     `json:"tuple_size,omitempty"`
	Params    []Param `json:"params,omitempty"`
}

// Diagnostic is a serialized [diag.Diagnostic].
type Diagnostic struct {
	Severity string `json:"severity"`
	Code     string `json:"code,omitempty"`
	Node     string `json:"node,omitempty"`
	Port     string `json:"port,omitempty"`
	Message  string `json:"message"`
}

var kindNames = map[target.Kind]string{
	target.Value: KindValue,
	target.Group: KindGroup,
	target.Array: KindArray,
}

var kindFromName = map[string]target.Kind{
	KindValue: target.Value,
	KindGroup: target.Group,
	KindArray: target.Array,
}

// FromDiagnostics serializes a diagnostics collection.
func FromDiagnostics(d *diag.Diagnostics) []Diagnostic {
	if d == nil {
		return nil
	}
	var out []Diagnostic
	for _, x := range d.All() {
		out = append(out, Diagnostic{
			Severity: x.Severity.String(),
			Code:     string(x.Code),
			Node:     x.Node,
			Port:     x.Port,
			Message:  x.Message,
		})
	}
	return out
}
