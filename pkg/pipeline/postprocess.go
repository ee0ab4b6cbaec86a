package pipeline

import (
	"context"
	"slices"

	"github.com/matzehuels/shadebridge/pkg/profile"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// postprocess runs the target rewrite hooks in discovery order.
//
// The node is taken out of the graph while its hook runs and the outputs
// are put back at its position; an output whose ID is still present
// replaces that node in place. A failing hook leaves the graph exactly
// as it was before the hook. Nodes a hook returns are not processed
// again, even when one takes over an ID visited later.
func (r *run) postprocess(ctx context.Context) error {
	done := make(map[string]bool)
	for _, id := range r.dst.IDs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, ok := r.dst.Get(id)
		if !ok || done[id] {
			continue
		}
		c, ok := r.prof.Capability(n.Origin())
		if !ok || c.Postprocess == nil {
			continue
		}

		saved := r.dst.Clone((*target.Node).Clone)
		pos := r.dst.Index(id)
		r.dst.Remove(id)
		env := &profile.PostEnv{
			Graph:       r.dst,
			Names:       r.names,
			HostVersion: r.version,
			Options:     r.prof.Options,
			Diag:        r.diag,
			Logger:      r.logger,
		}
		outs, err := guard(func() ([]*target.Node, error) { return c.Postprocess(n, env) })
		outs = slices.DeleteFunc(outs, func(o *target.Node) bool { return o == nil })
		if err == nil {
			err = checkOutputs(outs)
		}
		if err == nil {
			err = r.putBack(pos, outs)
		}
		if err != nil {
			r.dst = saved
			r.hookFailed(ctx, phasePostprocess, id, n.Origin(), err)
			continue
		}
		for _, o := range outs {
			done[o.ID] = true
			r.names.Reserve(o.ID)
			r.ledger.RecordAll(o.Renamings)
			o.Renamings = nil
		}
		r.logger.Debug("postprocessed", "node", id, "type", n.Origin(), "outputs", len(outs))
	}
	return nil
}

func (r *run) putBack(pos int, outs []*target.Node) error {
	for _, o := range outs {
		if r.dst.Has(o.ID) {
			if err := r.dst.Put(o); err != nil {
				return err
			}
			continue
		}
		if err := r.dst.Insert(pos, o); err != nil {
			return err
		}
		pos++
	}
	return nil
}
