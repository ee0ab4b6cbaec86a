// Package prman converts shading networks for RenderMan.
//
// RenderMan shaders exist under the same names on both sides, so the
// profile only restructures shading groups and displacement.
package prman

import (
	"embed"

	"github.com/matzehuels/shadebridge/pkg/mapper"
	"github.com/matzehuels/shadebridge/pkg/profile"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/target"
)

//go:embed tables/*.yaml
var tables embed.FS

// WeightDisplacement orders displacement folding after other rewrites.
const WeightDisplacement = profile.WeightDisplacement

// Renderer registers RenderMan with the renderer list.
var Renderer = profile.Renderer{
	Name:     "prman",
	Prefixes: []string{"Pxr"},
	New:      New,
}

// New builds the RenderMan profile.
func New(opts profile.Options) (*profile.Profile, error) {
	set, err := profile.LoadTables(tables, "tables")
	if err != nil {
		return nil, err
	}
	p := &profile.Profile{
		Name: "prman",
		Capabilities: map[string]profile.Capability{
			"shadingEngine": {
				Type:        "networkMaterial",
				Preprocess:  preprocessNetworkMaterial,
				Postprocess: postprocessNetworkMaterial,
			},
			"displacementShader": {Weight: WeightDisplacement, Preprocess: profile.FoldDisplacement},
		},
		Schemas: set,
		Funcs: mapper.Funcs{
			Processes: map[string]mapper.ProcessFunc{
				"networkMaterial": profile.PruneUnwiredPorts,
			},
		},
		Options: opts,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

var surfaceInputs = []string{"surfaceShader", "volumeShader"}

func preprocessNetworkMaterial(n *scene.Node, _ *profile.PreEnv) ([]*scene.Node, error) {
	conns := map[string]scene.Connection{}
	for _, in := range surfaceInputs {
		if c, ok := n.Connections[in]; ok {
			conns["prmanBxdf"] = c
			break
		}
	}
	if c, ok := n.Connections["displacementShader"]; ok {
		conns["prmanDisplacement"] = c
	}
	n.Connections = conns
	return []*scene.Node{n}, nil
}

// postprocessNetworkMaterial gives the material its shader's name and
// moves the shader to <shader>_out.
func postprocessNetworkMaterial(n *target.Node, env *profile.PostEnv) ([]*target.Node, error) {
	c, ok := n.Connections["prmanBxdf"]
	if !ok {
		return []*target.Node{n}, nil
	}
	shader, ok := env.Graph.Remove(c.Node)
	if !ok {
		return []*target.Node{n}, nil
	}
	oldShader := shader.ID
	shader.ID = env.Names.Allocate(oldShader + "_out")
	shader.Renamings = append(shader.Renamings, scene.Rename{Old: oldShader, New: shader.ID})
	n.ID = oldShader
	n.Connect("prmanBxdf", scene.Connection{Node: shader.ID, Port: c.Port})
	return []*target.Node{shader, n}, nil
}
