package pipeline

import (
	"cmp"
	"context"
	"slices"

	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/profile"
	"github.com/matzehuels/shadebridge/pkg/scene"
)

type preJob struct {
	id   string
	typ  string
	hook profile.PreprocessFunc
	w    int
}

// preprocess runs the source rewrite hooks of the nodes present after load.
//
// Hooks run by ascending weight, ties in discovery order, and each sees
// the graph as left by the hooks before it. A node's own non-zero weight
// takes precedence over its capability's. Nodes a hook produces are not
// preprocessed themselves.
func (r *run) preprocess(ctx context.Context) error {
	var jobs []preJob
	for _, n := range r.src.Nodes() {
		c, ok := r.prof.Capability(n.Origin())
		if !ok || c.Preprocess == nil {
			continue
		}
		w := c.Weight
		if n.Weight != 0 {
			w = n.Weight
		}
		jobs = append(jobs, preJob{id: n.ID, typ: n.Origin(), hook: c.Preprocess, w: w})
	}
	slices.SortStableFunc(jobs, func(a, b preJob) int { return cmp.Compare(a.w, b.w) })

	env := &profile.PreEnv{
		Graph:       r.src,
		Names:       r.names,
		HostVersion: r.version,
		Options:     r.prof.Options,
		Diag:        r.diag,
		Logger:      r.logger,
	}
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, ok := r.src.Get(j.id)
		if !ok {
			continue
		}
		outs, err := guard(func() ([]*scene.Node, error) { return j.hook(n.Clone(), env) })
		outs = slices.DeleteFunc(outs, func(o *scene.Node) bool { return o == nil })
		if err == nil {
			err = checkOutputs(outs)
		}
		if err == nil {
			err = r.src.Splice(n.ID, outs)
		}
		if err != nil {
			r.hookFailed(ctx, phasePreprocess, n.ID, j.typ, err)
			continue
		}
		for _, o := range outs {
			r.names.Reserve(o.ID)
			r.ledger.RecordAll(o.Renamings)
			o.Renamings = nil
		}
		r.logger.Debug("preprocessed", "node", n.ID, "type", j.typ, "outputs", len(outs))
	}
	return r.rewireSource()
}

// rewireSource resolves every source wire through the ledger.
func (r *run) rewireSource() error {
	for _, n := range r.src.Nodes() {
		if _, err := r.ledger.Rewire(n.ID, n.Connections); err != nil {
			return errors.Wrap(errors.ErrCodeCycle, err, "resolve connections of %s", n.ID)
		}
	}
	return nil
}
