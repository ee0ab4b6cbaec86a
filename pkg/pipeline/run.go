package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/shadebridge/pkg/diag"
	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/ledger"
	"github.com/matzehuels/shadebridge/pkg/mapper"
	"github.com/matzehuels/shadebridge/pkg/naming"
	"github.com/matzehuels/shadebridge/pkg/nodeset"
	"github.com/matzehuels/shadebridge/pkg/observability"
	"github.com/matzehuels/shadebridge/pkg/profile"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// Hook phases reported in diagnostics and metrics.
const (
	phasePreprocess  = "preprocess"
	phaseMap         = "map"
	phasePostprocess = "postprocess"
)

// run is the state of one conversion.
type run struct {
	id      uuid.UUID
	prof    *profile.Profile
	version scene.Version
	logger  *log.Logger
	hooks   observability.PipelineHooks

	names  *naming.Allocator
	ledger *ledger.Ledger
	diag   *diag.Diagnostics

	src *nodeset.Set[*scene.Node]
	dst *nodeset.Set[*target.Node]

	stats Stats
}

func newRun(id uuid.UUID, prof *profile.Profile, v scene.Version, logger *log.Logger) *run {
	return &run{
		id:      id,
		prof:    prof,
		version: v,
		logger:  logger,
		hooks:   observability.Pipeline(),
		ledger:  ledger.New(),
		diag:    &diag.Diagnostics{},
	}
}

func (r *run) convert(ctx context.Context, root string, nodes []*scene.Node, start time.Time) (*Result, error) {
	if err := r.load(nodes); err != nil {
		return nil, err
	}
	r.stats.LoadTime = time.Since(start)
	r.stageDone(ctx, observability.StageLoad, r.src.Len(), r.stats.LoadTime)

	stages := []struct {
		name string
		fn   func(context.Context) error
		d    *time.Duration
	}{
		{observability.StagePreprocess, r.preprocess, &r.stats.PreprocessTime},
		{observability.StageMap, r.mapNodes, &r.stats.MapTime},
		{observability.StagePostprocess, r.postprocess, &r.stats.PostprocessTime},
		{observability.StageFinalize, r.finalize, &r.stats.FinalizeTime},
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := time.Now()
		if err := s.fn(ctx); err != nil {
			return nil, err
		}
		*s.d = time.Since(t)
		n := r.src.Len()
		if r.dst != nil {
			n = r.dst.Len()
		}
		r.stageDone(ctx, s.name, n, *s.d)
	}

	r.stats.Nodes = r.dst.Len()
	r.stats.Renames = r.ledger.Len()
	r.logger.Info("converted material",
		"renderer", r.prof.Name,
		"nodes", r.stats.Nodes,
		"renames", r.stats.Renames,
		"diagnostics", r.diag.Len())

	return &Result{
		RunID:       r.id,
		Root:        root,
		Renderer:    r.prof.Name,
		HostVersion: r.version,
		Graph:       r.dst,
		Diagnostics: r.diag,
		Renames:     r.ledger.Entries(),
		Stats:       r.stats,
	}, nil
}

func (r *run) stageDone(ctx context.Context, stage string, nodes int, d time.Duration) {
	r.hooks.OnStageComplete(ctx, stage, nodes, d)
	r.logger.Debug("stage complete", "stage", stage, "nodes", nodes, "duration", d)
}

// load builds the working source graph. Each node remembers its host type
// and takes the profile's replacement type, if any.
func (r *run) load(nodes []*scene.Node) error {
	for _, n := range nodes {
		if n.SourceType == "" {
			n.SourceType = n.Type
		}
		if c, ok := r.prof.Capability(n.Origin()); ok && c.Type != "" {
			n.Type = c.Type
		}
	}
	set, err := nodeset.Of(nodes...)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "load")
	}
	r.src = set
	r.names = naming.New(set.IDs()...)
	r.stats.SourceNodes = set.Len()
	return nil
}

// mapNodes translates the source graph. Types without a table become
// opaque nodes that keep their wires until finalize.
func (r *run) mapNodes(ctx context.Context) error {
	r.dst = nodeset.New[*target.Node]()
	env := &mapper.Env{HostVersion: r.version, Diag: r.diag}
	for _, n := range r.src.Nodes() {
		tbl, ok := r.prof.Table(n.Type, r.version)
		if !ok && n.Type != "" {
			r.diag.AddInfo(errors.ErrCodeUnmappableValue, n.ID, "",
				"type %s has no %s equivalent; node dropped", n.Type, r.prof.Name)
		}
		t, err := mapper.Map(n, tbl, r.prof.Funcs, env)
		if err != nil {
			r.hookFailed(ctx, phaseMap, n.ID, n.Origin(), err)
		}
		if err := r.dst.Add(t); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "map %s", n.ID)
		}
	}
	return nil
}

// hookFailed records a failing hook. The run goes on with the node as it
// was before the hook.
func (r *run) hookFailed(ctx context.Context, phase, node, typ string, err error) {
	r.diag.AddError(codeOr(err, errors.ErrCodeHookFailure), node, "", "%s hook for %s failed: %v", phase, typ, err)
	r.logger.Warn("hook failed", "phase", phase, "node", node, "type", typ, "err", err)
	r.hooks.OnHookFailure(ctx, phase, typ)
}

// codeOr returns err's code, or fallback when err carries none.
func codeOr(err error, fallback errors.Code) errors.Code {
	if c := errors.GetCode(err); c != "" {
		return c
	}
	return fallback
}

// guard calls fn, turning a panic into an error.
func guard[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()
	return fn()
}

// checkOutputs rejects hook outputs that cannot be stored. Nil outputs
// are removed by the caller.
func checkOutputs[N nodeset.Keyed](outs []N) error {
	seen := make(map[string]bool, len(outs))
	for _, n := range outs {
		id := n.Key()
		if id == "" {
			return nodeset.ErrInvalidNodeID
		}
		if seen[id] {
			return fmt.Errorf("%w: %s", nodeset.ErrDuplicateNodeID, id)
		}
		seen[id] = true
	}
	return nil
}
