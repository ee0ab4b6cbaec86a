package schema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/shadebridge/pkg/errors"
)

// OverrideTag marks an override entry: "min: !override clamp".
const OverrideTag = "!override"

// LoadFile reads and parses a table document.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "schema %s", path)
		}
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "schema %s", path)
	}
	return s, nil
}

// Parse parses a table document. Declaration order of tables and entries
// is preserved.
func Parse(data []byte) (*Set, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema YAML: %w", err)
	}
	s := NewSet()
	if doc.Kind == 0 {
		return s, nil
	}
	root := resolve(&doc)
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = resolve(root.Content[0])
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected mapping of node types", root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], resolve(root.Content[i+1])
		if strings.HasPrefix(key.Value, ".") {
			continue
		}
		typ, when, err := splitTypeKey(key.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", key.Line, err)
		}
		t := &Table{Type: typ}
		if err := t.decode(val); err != nil {
			return nil, fmt.Errorf("%s: %w", key.Value, err)
		}
		s.add(t, when)
	}
	return s, nil
}

// UnmarshalYAML decodes a single table body.
func (t *Table) UnmarshalYAML(node *yaml.Node) error {
	return t.decode(resolve(node))
}

func (t *Table) decode(node *yaml.Node) error {
	switch {
	case node.Kind == yaml.ScalarNode && node.Tag == "!!null":
		return nil
	case node.Kind != yaml.MappingNode:
		return fmt.Errorf("line %d: expected mapping, got %s", node.Line, kindName(node))
	}
	for _, kv := range pairs(node) {
		key, val := kv[0], kv[1]
		switch key.Value {
		case KeyCustomColor:
			var rgb []float64
			if err := val.Decode(&rgb); err != nil || len(rgb) != 3 {
				return fmt.Errorf("line %d: customColor must be [r, g, b]", val.Line)
			}
			t.Color = rgb
		case KeyCustomProcess:
			if val.Kind != yaml.ScalarNode || val.Value == "" {
				return fmt.Errorf("line %d: customProcess must name a function", val.Line)
			}
			t.Process = val.Value
		default:
			e, err := parseEntry(key.Value, val)
			if err != nil {
				return err
			}
			t.Entries = append(t.Entries, e)
		}
	}
	return nil
}

func parseEntry(key string, val *yaml.Node) (*Entry, error) {
	if key == "" {
		return nil, fmt.Errorf("line %d: empty attribute key", val.Line)
	}
	e := &Entry{Key: key, Target: key, Line: val.Line}
	switch val.Kind {
	case yaml.ScalarNode:
		switch {
		case val.Tag == OverrideTag:
			if val.Value == "" {
				return nil, fmt.Errorf("line %d: %s needs a function name", val.Line, OverrideTag)
			}
			e.Kind, e.Func = Override, val.Value
		case val.Tag == "!!null":
			e.Kind = Passthrough
		case val.Value == "":
			return nil, fmt.Errorf("line %d: %s: empty rename", val.Line, key)
		default:
			e.Kind, e.Target = Rename, val.Value
		}
	case yaml.SequenceNode:
		return parseSequence(e, val)
	case yaml.MappingNode:
		e.Kind = Group
		for _, kv := range pairs(val) {
			child, err := parseEntry(kv[0].Value, kv[1])
			if err != nil {
				return nil, err
			}
			e.Children = append(e.Children, child)
		}
	default:
		return nil, fmt.Errorf("line %d: %s: unsupported %s", val.Line, key, kindName(val))
	}
	return e, nil
}

// parseSequence handles both "[label, ...]" and "[name, [label, ...]]".
func parseSequence(e *Entry, val *yaml.Node) (*Entry, error) {
	items := val.Content
	if len(items) == 2 && resolve(items[1]).Kind == yaml.SequenceNode {
		name := resolve(items[0])
		if name.Kind != yaml.ScalarNode || name.Value == "" {
			return nil, fmt.Errorf("line %d: %s: enum target must be a name", val.Line, e.Key)
		}
		e.Target = name.Value
		items = resolve(items[1]).Content
	}
	e.Kind = Enum
	for _, it := range items {
		it = resolve(it)
		if it.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: %s: enum labels must be scalars", it.Line, e.Key)
		}
		e.Labels = append(e.Labels, it.Value)
	}
	if len(e.Labels) == 0 {
		return nil, fmt.Errorf("line %d: %s: empty enum", val.Line, e.Key)
	}
	return e, nil
}

func splitTypeKey(key string) (string, *Constraint, error) {
	typ, cons, ok := strings.Cut(key, "@")
	if typ == "" {
		return "", nil, fmt.Errorf("empty node type in %q", key)
	}
	if !ok {
		return typ, nil, nil
	}
	c, err := parseConstraint(cons)
	if err != nil {
		return "", nil, err
	}
	return typ, &c, nil
}

// pairs returns the key/value pairs of a mapping with "<<" merge keys
// expanded in place.
func pairs(m *yaml.Node) [][2]*yaml.Node {
	var out [][2]*yaml.Node
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], resolve(m.Content[i+1])
		if key.Tag == "!!merge" && val.Kind == yaml.MappingNode {
			out = append(out, pairs(val)...)
			continue
		}
		out = append(out, [2]*yaml.Node{key, val})
	}
	return out
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "node"
	}
}
