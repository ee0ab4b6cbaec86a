// Package jsonout writes converted graphs as the JSON interchange
// document read back by [graph.Read].
package jsonout

import (
	"io"

	"github.com/matzehuels/shadebridge/pkg/graph"
)

// Emitter writes indented graph JSON. Layout positions are included unless
// SkipLayout is set.
type Emitter struct {
	SkipLayout bool
}

// New returns a JSON emitter.
func New() *Emitter { return &Emitter{} }

// Extension returns the file extension of the format.
func (e *Emitter) Extension() string { return ".json" }

// Emit writes g to w.
func (e *Emitter) Emit(w io.Writer, g *graph.Graph) error {
	out := *g
	switch {
	case e.SkipLayout:
		out.Layout = nil
	case out.Layout == nil:
		l := graph.Arrange(out.Nodes)
		out.Layout = &l
	}
	return graph.Write(&out, w)
}
