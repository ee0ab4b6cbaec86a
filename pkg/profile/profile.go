package profile

import (
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shadebridge/pkg/diag"
	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/mapper"
	"github.com/matzehuels/shadebridge/pkg/naming"
	"github.com/matzehuels/shadebridge/pkg/nodeset"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/schema"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// PreprocessFunc rewrites a source node before attribute mapping.
//
// The hook receives a private copy of the node. Its outputs replace the
// node in the working graph: an output keeping the node's ID updates it,
// outputs with other IDs are inserted next to it, and returning no
// output with the node's ID removes the node. Renames declared in an
// output's Renamings field are recorded in the run's ledger.
type PreprocessFunc func(n *scene.Node, env *PreEnv) ([]*scene.Node, error)

// PostprocessFunc rewrites a mapped node with the whole target graph in
// view.
//
// The node has already been taken out of env.Graph when the hook runs.
// The hook may remove or replace other nodes in env.Graph; its outputs are
// put back where the node was. Renamings on the outputs are recorded in
// the run's ledger.
type PostprocessFunc func(n *target.Node, env *PostEnv) ([]*target.Node, error)

// Capability is what a profile knows about one source node type.
type Capability struct {
	// Type replaces the source type before preprocessing. Empty keeps it.
	Type string

	// Weight orders preprocess hooks, lowest first. Hooks of equal weight
	// run in discovery order.
	Weight int

	Preprocess  PreprocessFunc
	Postprocess PostprocessFunc
}

// Options are renderer-independent conversion switches.
type Options struct {
	// RewriteTx points texture file names at their .tx counterparts.
	RewriteTx bool

	// UDIM rewrites frame-numbered tile file names to the <UDIM> token for
	// file nodes in UDIM tiling mode.
	UDIM bool
}

// Profile bundles everything needed to convert for one target renderer.
type Profile struct {
	Name         string
	Capabilities map[string]Capability
	Schemas      *schema.Set
	Funcs        mapper.Funcs
	Options      Options
}

// Capability returns the capability registered for a source type.
// Unregistered types report false; they are mapped by schema alone or
// treated as opaque.
func (p *Profile) Capability(typ string) (Capability, bool) {
	c, ok := p.Capabilities[typ]
	return c, ok
}

// Table returns the mapping table for a target type at the host version.
func (p *Profile) Table(typ string, v scene.Version) (*schema.Table, bool) {
	if p.Schemas == nil {
		return nil, false
	}
	return p.Schemas.Lookup(typ, v)
}

// Validate checks the profile's tables against its function tables.
func (p *Profile) Validate() error {
	if p.Schemas == nil {
		return errors.New(errors.ErrCodeInvalidSchema, "profile %s has no schema tables", p.Name)
	}
	if err := p.Schemas.Validate(p.Funcs); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSchema, err, "profile %s", p.Name)
	}
	return nil
}

// Renderer is a registered target renderer.
type Renderer struct {
	Name string

	// Prefixes of surface shader types authored for this renderer.
	Prefixes []string

	// New builds the renderer's profile.
	New func(opts Options) (*Profile, error)
}

// Matches reports whether a shader type carries one of r's prefixes.
func (r Renderer) Matches(shaderType string) bool {
	return slices.ContainsFunc(r.Prefixes, func(p string) bool {
		return strings.HasPrefix(shaderType, p)
	})
}

// PreEnv is the view a preprocess hook has of its run.
type PreEnv struct {
	// Graph is the working source graph, reflecting every hook that has
	// run so far. Hooks read it; they change the graph only through their
	// outputs.
	Graph       *nodeset.Set[*scene.Node]
	Names       *naming.Allocator
	HostVersion scene.Version
	Options     Options
	Diag        *diag.Diagnostics
	Logger      *log.Logger
}

// Link is one wire leaving a node.
type Link struct {
	Node   string // downstream node
	Input  string // its input port
	Output string // output port read on the upstream node
}

// Downstream returns the wires reading from id, in graph order.
func (e *PreEnv) Downstream(id string) []Link {
	if e.Graph == nil {
		return nil
	}
	var out []Link
	for _, n := range e.Graph.Nodes() {
		for _, port := range n.ConnectedPorts() {
			c := n.Connections[port]
			if c.Node == id {
				out = append(out, Link{Node: n.ID, Input: port, Output: c.Port})
			}
		}
	}
	return out
}

// PostEnv is the view a postprocess hook has of its run.
type PostEnv struct {
	Graph       *nodeset.Set[*target.Node]
	Names       *naming.Allocator
	HostVersion scene.Version
	Options     Options
	Diag        *diag.Diagnostics
	Logger      *log.Logger
}
