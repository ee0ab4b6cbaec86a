package schema

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/shadebridge/pkg/scene"
)

// Reserved table-level keys.
const (
	KeyCustomColor   = "customColor"
	KeyCustomProcess = "customProcess"
)

// Kind identifies the form of a mapping entry.
type Kind int

const (
	Passthrough Kind = iota
	Rename
	Enum
	Override
	Group
)

func (k Kind) String() string {
	switch k {
	case Passthrough:
		return "passthrough"
	case Rename:
		return "rename"
	case Enum:
		return "enum"
	case Override:
		return "override"
	case Group:
		return "group"
	default:
		return "unknown"
	}
}

// Entry maps one source attribute.
type Entry struct {
	Key      string   // source attribute key
	Kind     Kind     //
	Target   string   // target parameter name
	Labels   []string // enum labels, indexed by the source integer
	Func     string   // override function name
	Children []*Entry // group members
	Line     int      // line in the source document, for diagnostics
}

// Size returns the number of entries rooted at e, counting e.
func (e *Entry) Size() int {
	if e.Kind != Group {
		return 1
	}
	n := 1
	for _, c := range e.Children {
		n += c.Size()
	}
	return n
}

// Table is the mapping for one target node type.
type Table struct {
	Type    string
	Entries []*Entry
	Color   []float64 // customColor, nil when unset
	Process string    // customProcess, "" when unset
}

// Walk calls fn for every entry in declaration order, parents first.
func (t *Table) Walk(fn func(e *Entry)) {
	var walk func([]*Entry)
	walk = func(es []*Entry) {
		for _, e := range es {
			fn(e)
			walk(e.Children)
		}
	}
	walk(t.Entries)
}

// Ports returns every target parameter name in the table, in order.
func (t *Table) Ports() []string {
	var out []string
	seen := map[string]bool{}
	t.Walk(func(e *Entry) {
		if !seen[e.Target] {
			seen[e.Target] = true
			out = append(out, e.Target)
		}
	})
	return out
}

// Constraint restricts a table variant to a host version range.
type Constraint struct {
	Op      string // ">=", ">", "<=", "<", "=="
	Version scene.Version
}

// Matches reports whether v satisfies the constraint. A zero version
// satisfies none.
func (c Constraint) Matches(v scene.Version) bool {
	if v.IsZero() {
		return false
	}
	cmp := v.Compare(c.Version)
	switch c.Op {
	case ">=":
		return cmp >= 0
	case ">":
		return cmp > 0
	case "<=":
		return cmp <= 0
	case "<":
		return cmp < 0
	case "==":
		return cmp == 0
	}
	return false
}

func (c Constraint) String() string { return c.Op + c.Version.String() }

func parseConstraint(s string) (Constraint, error) {
	for _, op := range []string{">=", "<=", "==", ">", "<"} {
		if rest, ok := strings.CutPrefix(s, op); ok {
			v := scene.ParseVersion(rest)
			if v.IsZero() {
				return Constraint{}, fmt.Errorf("invalid version %q", rest)
			}
			return Constraint{Op: op, Version: v}, nil
		}
	}
	return Constraint{}, fmt.Errorf("invalid constraint %q", s)
}

type variant struct {
	when  *Constraint
	table *Table
}

// Set is a collection of tables indexed by target type.
type Set struct {
	byType map[string][]variant
}

// NewSet returns an empty set.
func NewSet() *Set { return &Set{byType: make(map[string][]variant)} }

func (s *Set) add(t *Table, when *Constraint) {
	s.byType[t.Type] = append(s.byType[t.Type], variant{when: when, table: t})
}

// Lookup returns the table for typ at host version v.
func (s *Set) Lookup(typ string, v scene.Version) (*Table, bool) {
	vs := s.byType[typ]
	if len(vs) == 0 {
		return nil, false
	}
	var fallback *Table
	for _, x := range vs {
		if x.when == nil {
			if fallback == nil {
				fallback = x.table
			}
			continue
		}
		if x.when.Matches(v) {
			return x.table, true
		}
	}
	if fallback == nil {
		fallback = vs[0].table
	}
	return fallback, true
}

// Has reports whether any variant of typ exists.
func (s *Set) Has(typ string) bool { return len(s.byType[typ]) > 0 }

// Types returns the known target types, sorted.
func (s *Set) Types() []string { return slices.Sorted(maps.Keys(s.byType)) }

// Variants returns the number of tables declared for typ.
func (s *Set) Variants(typ string) int { return len(s.byType[typ]) }

// Tables returns every table of typ in declaration order.
func (s *Set) Tables(typ string) []*Table {
	out := make([]*Table, 0, len(s.byType[typ]))
	for _, x := range s.byType[typ] {
		out = append(out, x.table)
	}
	return out
}

// Merge overlays other onto s. Types present in other replace all of
// their variants in s.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for typ, vs := range other.byType {
		s.byType[typ] = slices.Clone(vs)
	}
}

// Functions reports which override and process names are available.
type Functions interface {
	HasOverride(name string) bool
	HasProcess(name string) bool
}

// Validate checks that every function a table names is provided by fns.
func (s *Set) Validate(fns Functions) error {
	var errs []error
	for _, typ := range s.Types() {
		for _, t := range s.Tables(typ) {
			if t.Process != "" && !fns.HasProcess(t.Process) {
				errs = append(errs, fmt.Errorf("%s: unknown customProcess %q", typ, t.Process))
			}
			t.Walk(func(e *Entry) {
				if e.Kind == Override && !fns.HasOverride(e.Func) {
					errs = append(errs, fmt.Errorf("%s.%s (line %d): unknown override %q", typ, e.Key, e.Line, e.Func))
				}
			})
		}
	}
	return errors.Join(errs...)
}
