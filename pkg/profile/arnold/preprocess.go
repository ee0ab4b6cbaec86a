package arnold

import (
	"regexp"

	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/profile"
	"github.com/matzehuels/shadebridge/pkg/ramp"
	"github.com/matzehuels/shadebridge/pkg/scene"
)

// Source bumpInterp values.
const (
	bumpTangentNormal = 1
)

// spaceTransform enum indices.
const (
	spaceTypeNormal = 2
	spaceWorld      = 0
	spaceTangent    = 4
)

// multiplyDivide operations.
const (
	opDivide = 2
	opPower  = 3
)

const wrapFile = 5

// uvTilingMode value for UDIM (Mari) tiles.
const tilingUDIM = 3

var frameToken = regexp.MustCompile(`\.\d+\.`)

// preprocessSampler replaces a samplerInfo with the target utility for
// each output that something reads: facingRatio or a two_sided switch for
// flippedNormal. Each utility takes over only the wires reading its output.
// Other outputs have no equivalent and are dropped.
func preprocessSampler(n *scene.Node, env *profile.PreEnv) ([]*scene.Node, error) {
	seen := map[string]bool{}
	var out []*scene.Node
	for _, l := range env.Downstream(n.ID) {
		if seen[l.Output] {
			continue
		}
		seen[l.Output] = true
		switch l.Output {
		case "facingRatio":
			id := env.Names.Allocate("facingRatio")
			out = append(out, &scene.Node{
				ID:        id,
				Type:      "facingRatio",
				Renamings: []scene.Rename{{Old: n.ID, From: l.Output, New: id}},
			})
		case "flippedNormal":
			id := env.Names.Allocate("flippedNormal")
			out = append(out, &scene.Node{
				ID:   id,
				Type: "two_sided",
				Attributes: map[string]any{
					"front": []float64{1, 1, 1, 1},
					"back":  []float64{0, 0, 0, 1},
				},
				Renamings: []scene.Rename{{Old: n.ID, From: l.Output, New: id}},
			})
		default:
			env.Diag.AddWarning(errors.ErrCodeUnmappableValue, n.ID, l.Output,
				"samplerInfo output has no target equivalent")
		}
	}
	return out, nil
}

// preprocessBump turns a tangent-space normal bump into a space transform.
// Height bumps keep their type.
func preprocessBump(n *scene.Node, _ *profile.PreEnv) ([]*scene.Node, error) {
	n.Weight = WeightBump
	if v, _ := n.Attr("bumpInterp"); !isInt(v, bumpTangentNormal) {
		return []*scene.Node{n}, nil
	}
	n.Type = "spaceTransform"
	n.SetAttr("type", spaceTypeNormal)
	n.SetAttr("invert_x", 0)
	n.SetAttr("invert_y", 0)
	n.SetAttr("invert_z", 0)
	n.SetAttr("from", spaceTangent)
	n.SetAttr("to", spaceWorld)
	n.SetAttr("color_to_signed", 1)
	n.SetAttr("set_normal", 1)
	return []*scene.Node{n}, nil
}

// preprocessImage adapts an aiImage: the "file" wrap mode does not exist
// on the target and textures are read as linear.
func preprocessImage(n *scene.Node, _ *profile.PreEnv) ([]*scene.Node, error) {
	n.Type = "image"
	for _, k := range []string{"swrap", "twrap"} {
		if v, _ := n.Attr(k); isInt(v, wrapFile) {
			n.SetAttr(k, 0)
		}
	}
	n.SetAttr("colorSpace", "linear")
	return []*scene.Node{n}, nil
}

// preprocessFile turns a file texture into an image node.
func preprocessFile(n *scene.Node, env *profile.PreEnv) ([]*scene.Node, error) {
	n.Type = "image"
	moveAttr(n, "fileTextureName", "filename")
	moveAttr(n, "colorGain", "multiply")
	moveAttr(n, "colorOffset", "offset")
	n.SetAttr("filter", 3)
	n.SetAttr("colorSpace", "linear")

	if !env.Options.UDIM {
		return []*scene.Node{n}, nil
	}
	if v, _ := n.Attr("uvTilingMode"); isInt(v, tilingUDIM) {
		if name, ok := n.Attr("filename"); ok {
			if s, ok := scene.AsString(name); ok {
				n.SetAttr("filename", frameToken.ReplaceAllString(s, ".<UDIM>."))
			}
		}
	}
	return []*scene.Node{n}, nil
}

// preprocessMultiplyDivide picks the arithmetic node matching the
// operation. Power renames its inputs to base and exponent.
func preprocessMultiplyDivide(n *scene.Node, _ *profile.PreEnv) ([]*scene.Node, error) {
	op, _ := n.Attr("operation")
	switch {
	case isInt(op, opDivide):
		n.Type = "divide"
	case isInt(op, opPower):
		n.Type = "pow"
		moveAttr(n, "input1", "base")
		moveAttr(n, "input2", "exponent")
	default:
		n.Type = "multiply"
	}
	return []*scene.Node{n}, nil
}

// Shading group inputs, in priority order, that may carry the surface.
var surfaceInputs = []string{"aiSurfaceShader", "surfaceShader", "aiVolumeShader", "volumeShader"}

// preprocessNetworkMaterial turns a shading group into a network material
// wired to its surface and displacement.
func preprocessNetworkMaterial(n *scene.Node, _ *profile.PreEnv) ([]*scene.Node, error) {
	n.Type = "networkMaterial"
	conns := map[string]scene.Connection{}
	for _, in := range surfaceInputs {
		if c, ok := n.Connections[in]; ok {
			conns["arnoldSurface"] = c
			break
		}
	}
	if c, ok := n.Connections["displacementShader"]; ok {
		conns["arnoldDisplacement"] = c
	}
	n.Connections = conns
	return []*scene.Node{n}, nil
}

// preprocessRamp reduces ramps the target cannot express as a ramp node.
//
// A ramp with no entries is dropped. A single entry collapses onto its
// source. Two entries with at least one wire become a mix node blended by
// a 0..1 rampFloat. Everything else is left for the ramp process.
func preprocessRamp(n *scene.Node, env *profile.PreEnv) ([]*scene.Node, error) {
	points := ramp.Collect(n)
	switch ramp.Classify(points) {
	case ramp.ActionDrop:
		return dropRamp(n, env), nil
	case ramp.ActionCollapse:
		return collapseRamp(n, points[0], env), nil
	case ramp.ActionBlend:
		return blendRamp(n, points, env), nil
	default:
		return []*scene.Node{n}, nil
	}
}

func dropRamp(n *scene.Node, env *profile.PreEnv) []*scene.Node {
	if len(n.Connections) == 1 {
		for _, c := range n.Connections {
			return []*scene.Node{renameOnly(n, c, env)}
		}
	}
	env.Diag.AddInfo(errors.ErrCodeUnmappableValue, n.ID, "", "ramp has no entries; dropped")
	return nil
}

// collapseRamp replaces a single-entry ramp. A wired entry renames the
// ramp onto its source; a constant one leaves a placeholder whose readers
// take the constant.
func collapseRamp(n *scene.Node, p ramp.ControlPoint, env *profile.PreEnv) []*scene.Node {
	if p.Connected {
		return []*scene.Node{renameOnly(n, p.Source, env)}
	}
	if p.Value == nil {
		env.Diag.AddWarning(errors.ErrCodeUnmappableValue, n.ID, p.ValuePort(),
			"single ramp entry has no value; ramp dropped")
		return nil
	}
	return []*scene.Node{{ID: n.ID, SourceType: n.Origin(), Constant: p.Value}}
}

// renameOnly returns an opaque placeholder whose only job is to point
// readers of n at c.
func renameOnly(n *scene.Node, c scene.Connection, env *profile.PreEnv) *scene.Node {
	return &scene.Node{
		ID:        env.Names.Allocate(n.ID + "Empty"),
		Type:      "",
		Renamings: []scene.Rename{{Old: n.ID, New: c.Node, Port: c.Port}},
	}
}

func blendRamp(n *scene.Node, points []ramp.ControlPoint, env *profile.PreEnv) []*scene.Node {
	mixID := env.Names.Allocate(n.ID + "Mix")
	mix := &scene.Node{
		ID:          mixID,
		Type:        "mix",
		Attributes:  map[string]any{},
		Connections: map[string]scene.Connection{"mix": {Node: n.ID}},
		Weight:      n.Weight,
		Renamings:   []scene.Rename{{Old: n.ID, New: mixID}},
	}
	for i, input := range []string{"input1", "input2"} {
		p := points[i]
		if p.Connected {
			mix.Connections[input] = p.Source
			continue
		}
		mix.Attributes[input] = p.Value
	}

	n.Type = "rampFloat"
	for port := range n.Connections {
		if name, _, _, ok := scene.ParseIndexed(port); ok && name == ramp.EntryList {
			delete(n.Connections, port)
		}
	}
	for i, p := range points {
		n.SetAttr(scene.Indexed(ramp.EntryList, p.Index, ramp.FieldColor), float64(i))
	}
	return []*scene.Node{n, mix}
}

func moveAttr(n *scene.Node, from, to string) {
	if v, ok := n.Attributes[from]; ok {
		n.Attributes[to] = v
		delete(n.Attributes, from)
	}
	if c, ok := n.Connections[from]; ok {
		n.Connections[to] = c
		delete(n.Connections, from)
	}
}

func isInt(v any, want int) bool {
	i, ok := scene.AsInt(v)
	return ok && i == want
}
