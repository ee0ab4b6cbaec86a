package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/scene"
)

// Format is a scene dump encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension. Anything other
// than .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Snapshot is a scene dump held in memory.
type Snapshot struct {
	Host  string        `json:"host_version,omitempty" yaml:"host_version,omitempty"`
	Nodes []*scene.Node `json:"nodes" yaml:"nodes"`

	byID    map[string]*scene.Node
	version scene.Version
}

// NewSnapshot indexes nodes into a snapshot. Node IDs must be valid and
// unique.
func NewSnapshot(host string, nodes []*scene.Node) (*Snapshot, error) {
	s := &Snapshot{Host: host, Nodes: nodes}
	if err := s.index(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadSnapshot decodes a scene dump from r.
func ReadSnapshot(r io.Reader, format Format) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var s Snapshot
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&s)
		if err == nil {
			normalizeNumbers(s.Nodes)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s scene", format)
	}
	if err := s.index(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSnapshot reads a scene dump file.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSnapshot(f, FormatFromPath(path))
}

func (s *Snapshot) index() error {
	s.byID = make(map[string]*scene.Node, len(s.Nodes))
	for i, n := range s.Nodes {
		if n == nil {
			return errors.New(errors.ErrCodeInvalidInput, "node %d is empty", i)
		}
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %d", i)
		}
		if _, dup := s.byID[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate node %q", n.ID)
		}
		s.byID[n.ID] = n
	}
	s.version = scene.ParseVersion(s.Host)
	return nil
}

// Roots returns the IDs of the material nodes in file order.
func (s *Snapshot) Roots() []string {
	var out []string
	for _, n := range s.Nodes {
		if n.Type == MaterialType {
			out = append(out, n.ID)
		}
	}
	return out
}

// Node returns a copy of one node.
func (s *Snapshot) Node(id string) (*scene.Node, bool) {
	n, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// ListNodesReachableFrom walks wires upstream from root breadth first,
// visiting inputs in port name order. Wires to nodes missing from the
// dump are kept on their node but not followed.
func (s *Snapshot) ListNodesReachableFrom(root string) ([]*scene.Node, error) {
	start, ok := s.byID[root]
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not in scene", root)
	}
	seen := map[string]bool{root: true}
	queue := []*scene.Node{start}
	var out []*scene.Node
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		out = append(out, n.Clone())
		for _, port := range n.ConnectedPorts() {
			up := n.Connections[port].Node
			if seen[up] {
				continue
			}
			seen[up] = true
			if next, ok := s.byID[up]; ok {
				queue = append(queue, next)
			}
		}
	}
	return out, nil
}

// Attribute returns one attribute value of a node.
func (s *Snapshot) Attribute(node, key string) (any, bool) {
	n, ok := s.byID[node]
	if !ok {
		return nil, false
	}
	return n.Attr(key)
}

// Connections returns a copy of a node's wired inputs.
func (s *Snapshot) Connections(node string) map[string]scene.Connection {
	n, ok := s.byID[node]
	if !ok {
		return nil
	}
	return maps.Clone(n.Connections)
}

// HostVersion returns the version recorded in the dump.
func (s *Snapshot) HostVersion() scene.Version { return s.version }

// Write encodes the snapshot in the given format.
func (s *Snapshot) Write(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
}

// normalizeNumbers turns json.Number values into int when integral and
// float64 otherwise, so JSON and YAML dumps decode to the same values.
func normalizeNumbers(nodes []*scene.Node) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		for k, v := range n.Attributes {
			n.Attributes[k] = number(v)
		}
	}
}

func number(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i, e := range x {
			x[i] = number(e)
		}
		return x
	case map[string]any:
		for k, e := range x {
			x[k] = number(e)
		}
		return x
	default:
		return v
	}
}

var _ Query = (*Snapshot)(nil)
