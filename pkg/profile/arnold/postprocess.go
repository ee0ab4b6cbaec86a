package arnold

import (
	"github.com/matzehuels/shadebridge/pkg/profile"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// Output pass-through nodes that sit between a material and its shader.
var aovWriters = map[string]bool{
	"aov_write_rgb":   true,
	"aov_write_float": true,
}

// Shader inputs that carry a bump or normal map.
var bumpInputs = []string{"normalCamera", "normal"}

// postprocessNetworkMaterial names a material after the shader it drives:
// the shader becomes <shader>_out and the material <shader>_mtl. AOV write
// nodes between them are walked through to find the shader. Before plugin
// 2.0 the shader's bump input is moved onto the material's arnoldBump
// port.
func postprocessNetworkMaterial(n *target.Node, env *profile.PostEnv) ([]*target.Node, error) {
	shader := findShader(n, env)
	if shader == nil {
		return []*target.Node{n}, nil
	}

	env.Graph.Remove(shader.ID)
	oldShader, oldMaterial := shader.ID, n.ID
	shader.ID = env.Names.Allocate(oldShader + "_out")
	n.ID = env.Names.Allocate(oldShader + "_mtl")
	shader.Renamings = append(shader.Renamings, scene.Rename{Old: oldShader, New: shader.ID})
	n.Renamings = append(n.Renamings, scene.Rename{Old: oldMaterial, New: n.ID})

	if surface := n.Connections["arnoldSurface"]; surface.Node == oldShader {
		n.Connect("arnoldSurface", scene.Connection{Node: shader.ID, Port: surface.Port})
	}

	if !env.HostVersion.IsZero() && !env.HostVersion.AtLeast("2.0") {
		for _, in := range bumpInputs {
			if c, ok := shader.Connections[in]; ok {
				n.AddPort("arnoldBump")
				n.Connect("arnoldBump", c)
				shader.RemovePort(in)
				break
			}
		}
	}
	return []*target.Node{shader, n}, nil
}

// findShader follows the material's surface wire through AOV writers.
func findShader(n *target.Node, env *profile.PostEnv) *target.Node {
	c, ok := n.Connections["arnoldSurface"]
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	for !seen[c.Node] {
		seen[c.Node] = true
		node, ok := env.Graph.Get(c.Node)
		if !ok {
			return nil
		}
		if !aovWriters[node.Type] {
			return node
		}
		next, ok := node.Connections["passthrough"]
		if !ok {
			return nil
		}
		c = next
	}
	return nil
}
