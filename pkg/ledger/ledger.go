// Package ledger records node identity substitutions made while rewriting
// a shading network and resolves them transitively.
//
// Rewrite hooks rename, split, and collapse nodes. Rather than chasing
// every wire that pointed at the old identity, they record a [scene.Rename]
// and the run re-resolves all wires through the ledger once per phase.
// Chains (a -> b, b -> c) collapse to their terminal identity. A cycle
// means a hook produced an inconsistent rewrite and is reported as a
// [*CycleError].
package ledger

import (
	"fmt"
	"strings"

	"github.com/matzehuels/shadebridge/pkg/scene"
)

// CycleError reports a rename chain that never reaches a fixed point.
type CycleError struct {
	Start string   // identity whose resolution looped
	Path  []string // identities visited, starting with Start
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("rename cycle: %s", strings.Join(e.Path, " -> "))
}

// Ledger maps old identities to their replacements. The zero value is
// ready to use. A Ledger belongs to a single run.
type Ledger struct {
	entries map[key]scene.Rename
	order   []key
}

// key addresses an entry: a whole node, or one output of it.
type key struct {
	id, from string
}

// New returns an empty ledger.
func New() *Ledger { return &Ledger{} }

// Record adds a substitution of old by new. Recording an identity onto
// itself is ignored. A later record for the same old identity replaces
// the earlier one.
func (l *Ledger) Record(old, new, port string) {
	l.add(scene.Rename{Old: old, New: new, Port: port})
}

// RecordOutput adds a substitution of old by new that applies only to
// wires reading output from of old. It takes precedence over a
// whole-node substitution of old.
func (l *Ledger) RecordOutput(old, from, new, port string) {
	l.add(scene.Rename{Old: old, From: from, New: new, Port: port})
}

// RecordAll records every rename in rs.
func (l *Ledger) RecordAll(rs []scene.Rename) {
	for _, r := range rs {
		l.add(r)
	}
}

func (l *Ledger) add(r scene.Rename) {
	if r.Old == "" || r.New == "" || r.Old == r.New {
		return
	}
	if l.entries == nil {
		l.entries = make(map[key]scene.Rename)
	}
	k := key{r.Old, r.From}
	if _, ok := l.entries[k]; !ok {
		l.order = append(l.order, k)
	}
	l.entries[k] = r
}

// Len returns the number of recorded substitutions.
func (l *Ledger) Len() int { return len(l.entries) }

// Entries returns the recorded substitutions in first-record order.
func (l *Ledger) Entries() []scene.Rename {
	out := make([]scene.Rename, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, l.entries[k])
	}
	return out
}

// lookup returns the entry for output port of id, falling back to the
// whole-node entry.
func (l *Ledger) lookup(id, port string) (scene.Rename, bool) {
	if port != "" {
		if e, ok := l.entries[key{id, port}]; ok {
			return e, true
		}
	}
	e, ok := l.entries[key{id, ""}]
	return e, ok
}

// Resolve follows substitutions from id until it reaches an identity with
// no entry. The port of the terminal substitution replaces port when it is
// set; ports on intermediate hops are ignored. Output-scoped entries are
// matched against the port the wire would read at that hop.
//
// A chain without cycles has at most Len hops, so any longer walk is
// reported as a *CycleError.
func (l *Ledger) Resolve(id, port string) (string, string, error) {
	cur, read := id, port
	path := []string{id}
	for hops := 0; ; hops++ {
		e, ok := l.lookup(cur, read)
		if !ok {
			break
		}
		if hops >= len(l.entries) {
			return "", "", &CycleError{Start: id, Path: path}
		}
		cur, read = e.New, port
		if e.Port != "" {
			read = e.Port
		}
		path = append(path, cur)
	}
	return cur, read, nil
}

// Rewire resolves every wire in conns owned by node owner, updating conns
// in place. A wire whose resolution lands on owner itself is left
// untouched; a node that replaced another keeps its own input from the
// node it replaced. Rewire returns the number of wires changed.
func (l *Ledger) Rewire(owner string, conns map[string]scene.Connection) (int, error) {
	if len(l.entries) == 0 {
		return 0, nil
	}
	changed := 0
	for port, c := range conns {
		id, out, err := l.Resolve(c.Node, c.Port)
		if err != nil {
			return changed, err
		}
		if id == owner || (id == c.Node && out == c.Port) {
			continue
		}
		conns[port] = scene.Connection{Node: id, Port: out}
		changed++
	}
	return changed, nil
}
