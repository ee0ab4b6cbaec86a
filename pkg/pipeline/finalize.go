package pipeline

import (
	"context"
	"slices"

	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// finalize resolves the postprocess renames and cleans up the graph.
//
// Opaque nodes are removed and wires on ports the target type does not
// expose are dropped. A wire to a removed placeholder that stands for a
// constant is replaced by the constant. Any other wire whose upstream node
// is gone is dropped with a MISSING_REFERENCE warning, so every remaining
// wire names a node in the graph.
func (r *run) finalize(ctx context.Context) error {
	for _, n := range r.dst.Nodes() {
		if _, err := r.ledger.Rewire(n.ID, n.Connections); err != nil {
			return errors.Wrap(errors.ErrCodeCycle, err, "resolve connections of %s", n.ID)
		}
	}
	constants := map[string][]float64{}
	for _, n := range r.dst.Nodes() {
		if !n.Opaque {
			continue
		}
		if n.Constant != nil {
			constants[n.ID] = n.Constant
		}
		r.dst.Remove(n.ID)
	}
	for _, n := range r.dst.Nodes() {
		for port := range n.Connections {
			if !n.HasPort(port) {
				delete(n.Connections, port)
			}
		}
		for _, port := range n.WiredPorts() {
			c := n.Connections[port]
			if r.dst.Has(c.Node) {
				continue
			}
			if v, ok := constants[c.Node]; ok {
				inline(n, port, channel(v, target.OutputPort(c)))
				r.diag.AddInfo(errors.ErrCodeUnmappableValue, n.ID, port,
					"constant %s written in place of its wire", c.Node)
				continue
			}
			r.diag.AddWarning(errors.ErrCodeMissingReference, n.ID, port,
				"upstream node %s is not part of the converted graph; input disconnected", c.Node)
			r.logger.Debug("dropped dangling wire", "node", n.ID, "port", port, "upstream", c.Node)
			n.RemovePort(port)
			disconnect(n, port)
		}
	}
	return nil
}

// disconnect clears the connected state of the parameter behind port.
func disconnect(n *target.Node, port string) {
	p := n.Find(port)
	if p == nil || !p.Connected {
		return
	}
	p.Connected = false
	p.Enabled = p.Value != nil
}

// inline replaces the wire on port with the literal v.
func inline(n *target.Node, port string, v any) {
	n.RemovePort(port)
	p := n.Find(port)
	if p == nil {
		return
	}
	p.Connected = false
	p.Enabled = true
	p.Value = v
}

var channels = map[string]int{
	"out.r": 0, "out.x": 0,
	"out.g": 1, "out.y": 1,
	"out.b": 2, "out.z": 2,
	"out.a": 3,
}

// channel returns the part of v an output reads. A missing alpha channel
// reads as opaque.
func channel(v []float64, out string) any {
	if len(v) == 1 {
		return v[0]
	}
	i, ok := channels[out]
	if !ok {
		return slices.Clone(v)
	}
	if i < len(v) {
		return v[i]
	}
	return 1.0
}
