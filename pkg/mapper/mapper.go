// Package mapper turns a source node into a target node by walking its
// mapping table.
//
// Only attributes named in the table reach the target; everything else is
// dropped. A wired input is emitted as connected and its literal value is
// suppressed. A group is emitted only when its own attribute or one of its
// members produced something, and a group whose own attribute is an
// unwired zero skips its members entirely (a lobe with zero weight
// contributes nothing below it).
package mapper

import (
	"fmt"
	"slices"

	"github.com/matzehuels/shadebridge/pkg/diag"
	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/schema"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// OverrideFunc transforms a source value before it is written. It is
// called with a nil value when the source has no such attribute. A nil
// result writes nothing.
type OverrideFunc func(key string, v any) any

// ProcessFunc finalizes a mapped node. It may add, rewrite, or prune
// parameters, ports, and wires that the declarative table cannot express.
type ProcessFunc func(t *target.Node, src *scene.Node, env *Env) error

// Funcs is the set of named functions a table may reference.
type Funcs struct {
	Overrides map[string]OverrideFunc
	Processes map[string]ProcessFunc
}

// HasOverride reports whether an override called name exists.
func (f Funcs) HasOverride(name string) bool { return f.Overrides[name] != nil }

// HasProcess reports whether a process called name exists.
func (f Funcs) HasProcess(name string) bool { return f.Processes[name] != nil }

// Env carries run-wide context into the mapper and process functions.
type Env struct {
	HostVersion scene.Version
	Diag        *diag.Diagnostics
}

// Diagnostics returns the run's collection, or a throwaway one when none
// is attached.
func (e *Env) Diagnostics() *diag.Diagnostics {
	if e == nil || e.Diag == nil {
		return &diag.Diagnostics{}
	}
	return e.Diag
}

// Map converts n using tbl. A nil tbl produces an opaque node that keeps
// n's wires for renaming but has no parameters.
//
// The returned error reports a failing customProcess; the node is still
// returned with its declarative parameters so the caller can keep it.
func Map(n *scene.Node, tbl *schema.Table, fns Funcs, env *Env) (*target.Node, error) {
	t := &target.Node{
		ID:          n.ID,
		Type:        n.Type,
		SourceType:  n.Origin(),
		Weight:      n.Weight,
		Connections: make(map[string]scene.Connection, len(n.Connections)),
	}
	for port, c := range n.Connections {
		t.Connections[port] = c
	}
	if tbl == nil {
		t.Opaque = true
		t.Constant = slices.Clone(n.Constant)
		return t, nil
	}
	if tbl.Color != nil {
		t.Color = append([]float64(nil), tbl.Color...)
	}
	t.Ports = tbl.Ports()

	m := &walker{src: n, dst: t, fns: fns, diag: env.Diagnostics()}
	t.Params = m.entries(tbl.Entries)

	if tbl.Process == "" {
		return t, nil
	}
	fn := fns.Processes[tbl.Process]
	if fn == nil {
		return t, errors.New(errors.ErrCodeInvalidSchema, "unknown customProcess %q", tbl.Process)
	}
	if err := safeProcess(fn, t, n, env); err != nil {
		return t, errors.Wrap(errors.ErrCodeHookFailure, err, "customProcess %s", tbl.Process)
	}
	return t, nil
}

func safeProcess(fn ProcessFunc, t *target.Node, n *scene.Node, env *Env) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(t, n, env)
}

type walker struct {
	src  *scene.Node
	dst  *target.Node
	fns  Funcs
	diag *diag.Diagnostics
}

func (w *walker) entries(es []*schema.Entry) []*target.Param {
	var out []*target.Param
	for _, e := range es {
		p := w.entry(e)
		if p == nil {
			continue
		}
		out = setParam(out, p)
	}
	return out
}

// setParam replaces a parameter of the same name or appends p. Two entries
// may target one name ("color1: input2" next to "input2: ~"); the one that
// produced something last wins.
func setParam(ps []*target.Param, p *target.Param) []*target.Param {
	for i, x := range ps {
		if x.Name == p.Name {
			ps[i] = p
			return ps
		}
	}
	return append(ps, p)
}

func (w *walker) entry(e *schema.Entry) *target.Param {
	if e.Target != e.Key {
		if c, ok := w.dst.Connections[e.Key]; ok {
			delete(w.dst.Connections, e.Key)
			w.dst.Connections[e.Target] = c
		}
	}

	connected := w.dst.Connected(e.Target)
	raw, has := w.src.Attr(e.Key)

	var p *target.Param
	if connected {
		p = &target.Param{Name: e.Target, Enabled: true, Connected: true}
	} else if v, ok := w.value(e, raw, has); ok {
		p = &target.Param{Name: e.Target, Enabled: true, Value: v}
	}

	if e.Kind != schema.Group {
		return p
	}
	var children []*target.Param
	if connected || !has || !scene.IsZero(raw) {
		children = w.entries(e.Children)
	}
	if p == nil && len(children) == 0 {
		return nil
	}
	if p == nil {
		p = &target.Param{Name: e.Target}
	}
	p.Kind = target.Group
	p.Params = children
	return p
}

// value resolves the literal for an unwired entry.
func (w *walker) value(e *schema.Entry, raw any, has bool) (any, bool) {
	switch e.Kind {
	case schema.Override:
		fn := w.fns.Overrides[e.Func]
		if fn == nil {
			w.diag.AddError(errors.ErrCodeInvalidSchema, w.src.ID, e.Key, "unknown override %q", e.Func)
			return nil, false
		}
		v := fn(e.Key, raw)
		if v == nil {
			return nil, false
		}
		return Normalize(v), true
	case schema.Enum:
		if !has || raw == nil {
			return nil, false
		}
		label, ok := enumLabel(e.Labels, raw)
		if !ok {
			w.diag.AddWarning(errors.ErrCodeUnmappableValue, w.src.ID, e.Key,
				"value %v has no %s equivalent (%d labels)", raw, e.Target, len(e.Labels))
			return nil, false
		}
		return label, true
	default:
		if !has || raw == nil {
			return nil, false
		}
		return Normalize(raw), true
	}
}

func enumLabel(labels []string, raw any) (string, bool) {
	if s, ok := scene.AsString(raw); ok {
		for _, l := range labels {
			if l == s {
				return l, true
			}
		}
	}
	i, ok := scene.AsInt(raw)
	if !ok || i < 0 || i >= len(labels) {
		return "", false
	}
	return labels[i], true
}

// Normalize converts a source value to the representation target
// parameters use: bools become 0/1, numeric lists become []float64, and
// single-element lists are unwrapped.
func Normalize(v any) any {
	v = scene.Unwrap(v)
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case []any:
		if tup, ok := scene.AsTuple(x); ok {
			return tup
		}
		return x
	case int64:
		return int(x)
	case int32:
		return int(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
