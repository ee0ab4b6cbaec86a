// Package pipeline converts one material's shading network from the host
// scene to the target renderer.
//
// # Architecture
//
// A run goes through five stages over a working graph owned by that run:
//
//  1. Load: list the nodes reachable from the material, resolve the
//     renderer profile and apply its type overrides.
//  2. Preprocess: run the profile's source rewrite hooks, lowest weight
//     first, then re-resolve every wire through the rename ledger.
//  3. Map: translate each source node through its mapping table.
//  4. Postprocess: run the target rewrite hooks with the whole mapped graph
//     in view.
//  5. Finalize: resolve wires again, drop opaque nodes and report wires
//     whose upstream node no longer exists.
//
// A failing hook never aborts a run: the node it was given is kept and a
// diagnostic is recorded. Only an inconsistent rename chain (a cycle)
// fails the run.
//
// # Usage
//
//	snap, err := source.LoadSnapshot("scene.json")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(cache.NewNullCache(), logger)
//	result, err := runner.Execute(ctx, snap, pipeline.Options{
//	    Root:     "mtlSG",
//	    Renderer: "auto",
//	})
//	if err != nil {
//	    return err
//	}
//	g := result.Export()
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/shadebridge/pkg/cache"
	"github.com/matzehuels/shadebridge/pkg/diag"
	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/graph"
	"github.com/matzehuels/shadebridge/pkg/nodeset"
	"github.com/matzehuels/shadebridge/pkg/profile"
	"github.com/matzehuels/shadebridge/pkg/profile/renderers"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// Options configure one conversion run.
type Options struct {
	// Root is the material (shading group) to convert.
	Root string `json:"root"`

	// Renderer names the target profile. Empty or "auto" detects it from
	// the shader types in the network.
	Renderer string `json:"renderer,omitempty"`

	// HostVersion overrides the renderer plugin version reported by the
	// scene.
	HostVersion string `json:"host_version,omitempty"`

	RewriteTx bool `json:"rewrite_tx,omitempty"`
	UDIM      bool `json:"udim,omitempty"`

	// Refresh bypasses cached results. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Profile replaces renderer resolution. Used to run custom profiles.
	Profile *profile.Profile `json:"-"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := errors.ValidateNodeID(o.Root); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "root")
	}
	if o.Renderer == "" {
		o.Renderer = renderers.Auto
	}
	if o.Renderer != renderers.Auto && o.Profile == nil {
		if _, ok := renderers.Find(o.Renderer); !ok {
			return errors.New(errors.ErrCodeUnknownRenderer, "unknown renderer %q (available: %v)", o.Renderer, renderers.Names())
		}
	}
	return nil
}

func (o *Options) profileOptions() profile.Options {
	return profile.Options{RewriteTx: o.RewriteTx, UDIM: o.UDIM}
}

// Result is the outcome of a run.
type Result struct {
	RunID       uuid.UUID
	Root        string
	Renderer    string
	HostVersion scene.Version

	// Graph is the converted network in discovery order.
	Graph       *nodeset.Set[*target.Node]
	Diagnostics *diag.Diagnostics

	// Renames lists every identity substitution made during the run.
	Renames []scene.Rename

	Stats    Stats
	CacheHit bool
}

// Stats contains run statistics.
type Stats struct {
	SourceNodes     int
	Nodes           int
	Renames         int
	LoadTime        time.Duration
	PreprocessTime  time.Duration
	MapTime         time.Duration
	PostprocessTime time.Duration
	FinalizeTime    time.Duration
	Total           time.Duration
}

// Nodes returns the converted nodes in discovery order.
func (r *Result) Nodes() []*target.Node {
	if r.Graph == nil {
		return nil
	}
	return r.Graph.Nodes()
}

// Export returns the serializable form of the result, including its node
// layout.
func (r *Result) Export() *graph.Graph {
	g := &graph.Graph{
		Renderer:    r.Renderer,
		Root:        r.Root,
		HostVersion: r.HostVersion.String(),
		Nodes:       graph.FromNodes(r.Nodes()),
		Renames:     r.Renames,
		Diagnostics: graph.FromDiagnostics(r.Diagnostics),
	}
	l := graph.Arrange(g.Nodes)
	g.Layout = &l
	return g
}

// fromGraph rebuilds a result from a cached conversion.
func fromGraph(g *graph.Graph) (*Result, error) {
	set, err := nodeset.Of(g.Targets()...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "cached graph")
	}
	return &Result{
		Root:        g.Root,
		Renderer:    g.Renderer,
		HostVersion: scene.ParseVersion(g.HostVersion),
		Graph:       set,
		Diagnostics: g.Diag(),
		Renames:     g.Renames,
		Stats: Stats{
			Nodes:   set.Len(),
			Renames: len(g.Renames),
		},
		CacheHit: true,
	}, nil
}

func cacheKeyOpts(renderer, root string, v scene.Version, opts Options, version string) cache.KeyOpts {
	return cache.KeyOpts{
		Renderer:    renderer,
		Root:        root,
		HostVersion: v.String(),
		RewriteTx:   opts.RewriteTx,
		UDIM:        opts.UDIM,
		Version:     version,
	}
}
