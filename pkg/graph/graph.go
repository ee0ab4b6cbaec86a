package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/matzehuels/shadebridge/pkg/diag"
	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// =============================================================================
// Conversion
// =============================================================================

// FromNodes serializes target nodes in the given order. Opaque nodes are
// skipped.
func FromNodes(nodes []*target.Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Opaque {
			continue
		}
		out = append(out, Node{
			ID:          n.ID,
			Type:        n.Type,
			SourceType:  n.SourceType,
			Weight:      n.Weight,
			Color:       slices.Clone(n.Color),
			Ports:       slices.Clone(n.Ports),
			Params:      fromParams(n.Params),
			Connections: maps.Clone(n.Connections),
		})
	}
	return out
}

func fromParams(ps []*target.Param) []Param {
	if len(ps) == 0 {
		return nil
	}
	out := make([]Param, len(ps))
	for i, p := range ps {
		out[i] = Param{
			Name:      p.Name,
			Kind:      kindNames[p.Kind],
			Enabled:   p.Enabled,
			Connected: p.Connected,
			Value:     p.Value,
			TupleSize: p.TupleSize,
			Params:    fromParams(p.Params),
		}
	}
	return out
}

// Targets rebuilds the in-memory nodes of g.
func (g *Graph) Targets() []*target.Node {
	out := make([]*target.Node, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = &target.Node{
			ID:          n.ID,
			Type:        n.Type,
			SourceType:  n.SourceType,
			Weight:      n.Weight,
			Color:       slices.Clone(n.Color),
			Ports:       slices.Clone(n.Ports),
			Params:      toParams(n.Params),
			Connections: maps.Clone(n.Connections),
		}
	}
	return out
}

func toParams(ps []Param) []*target.Param {
	if len(ps) == 0 {
		return nil
	}
	out := make([]*target.Param, len(ps))
	for i, p := range ps {
		out[i] = &target.Param{
			Name:      p.Name,
			Kind:      kindFromName[p.Kind],
			Enabled:   p.Enabled,
			Connected: p.Connected,
			Value:     decodeValue(p.Value),
			TupleSize: p.TupleSize,
			Params:    toParams(p.Params),
		}
	}
	return out
}

// decodeValue restores numeric lists to []float64 after a JSON round
// trip.
func decodeValue(v any) any {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return v
	}
	if tup, ok := scene.AsTuple(list); ok {
		return tup
	}
	return v
}

// Diag rebuilds the diagnostics collection of g.
func (g *Graph) Diag() *diag.Diagnostics {
	d := &diag.Diagnostics{}
	for _, x := range g.Diagnostics {
		d.Add(diag.Diagnostic{
			Severity: severityFromName(x.Severity),
			Code:     errors.Code(x.Code),
			Node:     x.Node,
			Port:     x.Port,
			Message:  x.Message,
		})
	}
	return d
}

func severityFromName(s string) diag.Severity {
	switch s {
	case diag.SeverityError.String():
		return diag.SeverityError
	case diag.SeverityWarning.String():
		return diag.SeverityWarning
	default:
		return diag.SeverityInfo
	}
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal converts a graph to indented JSON bytes.
func Marshal(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a graph as indented JSON to w.
func Write(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a graph to a JSON file.
func WriteFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// Unmarshal decodes a graph from JSON bytes.
func Unmarshal(data []byte) (*Graph, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes a graph from r. Node IDs must be unique.
func Read(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node without id")
		}
		if seen[n.ID] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node %q", n.ID)
		}
		seen[n.ID] = true
	}
	return &g, nil
}

// ReadFile reads a graph from a JSON file.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
