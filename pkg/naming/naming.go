// Package naming allocates collision-free node identifiers for nodes that
// rewrite hooks synthesize during a conversion run.
package naming

import "fmt"

// Allocator hands out names unique against every name it has issued and
// every name reserved up front, typically all source node IDs.
//
// An Allocator belongs to one conversion run and is not safe for
// concurrent use.
type Allocator struct {
	used map[string]struct{}
	next map[string]int
}

// New returns an allocator that treats reserved as taken.
func New(reserved ...string) *Allocator {
	a := &Allocator{
		used: make(map[string]struct{}, len(reserved)*2),
		next: make(map[string]int),
	}
	for _, name := range reserved {
		a.used[name] = struct{}{}
	}
	return a
}

// Allocate returns base if it is free, otherwise base with the smallest
// unused counter suffix ("base_1", "base_2", ...). Counters never go
// backwards for a given base. The returned name is marked as taken.
func (a *Allocator) Allocate(base string) string {
	if base == "" {
		base = "node"
	}
	name := base
	for {
		if _, taken := a.used[name]; !taken {
			a.used[name] = struct{}{}
			return name
		}
		a.next[base]++
		name = fmt.Sprintf("%s_%d", base, a.next[base])
	}
}

// Reserve marks name as taken without issuing it.
func (a *Allocator) Reserve(name string) {
	a.used[name] = struct{}{}
}

// Taken reports whether name has been issued or reserved.
func (a *Allocator) Taken(name string) bool {
	_, ok := a.used[name]
	return ok
}
