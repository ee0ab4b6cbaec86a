package arnold

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/mapper"
	"github.com/matzehuels/shadebridge/pkg/ramp"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// overrideClamp reduces an RGB clamp bound to the scalar the target takes:
// the lowest component for min, the highest for max.
func overrideClamp(key string, v any) any {
	tup, ok := scene.AsTuple(v)
	if !ok || len(tup) == 0 {
		return v
	}
	switch key {
	case "min":
		return slices.Min(tup)
	case "max":
		return slices.Max(tup)
	}
	return v
}

var hairDefaults = map[string]any{
	"dualDepth":               1,
	"diffuseIndirectStrength": 1,
	"extraSamplesDiffuse":     2,
	"extraSamplesGlossy":      2,
}

// overrideHair pins hair settings the lookdev team always wants.
func overrideHair(key string, v any) any {
	if d, ok := hairDefaults[key]; ok {
		return d
	}
	return v
}

// overrideMaterial pins specular settings on layered surfaces.
func overrideMaterial(key string, v any) any {
	switch key {
	case "specular1IndirectClamp", "specular2IndirectClamp":
		return 1
	case "specular1Distribution", "specular2Distribution":
		return "ggx"
	}
	return v
}

// overrideTexturePath normalizes path separators and, when rewrite is set,
// points the texture at its .tx counterpart.
func overrideTexturePath(rewrite bool) mapper.OverrideFunc {
	return func(_ string, v any) any {
		s, ok := scene.AsString(v)
		if !ok {
			return v
		}
		s = strings.ReplaceAll(s, `\`, "/")
		if !rewrite {
			return s
		}
		if ext := path.Ext(s); ext != "" {
			s = strings.TrimSuffix(s, ext) + ".tx"
		}
		return s
	}
}

// processRamp encodes ramp and rampFloat entries into the fixed array
// layout and resolves the ramp type and its coordinate input.
func processRamp(t *target.Node, src *scene.Node, env *mapper.Env) error {
	points := ramp.Collect(src)
	if len(points) < 2 {
		return fmt.Errorf("ramp %s has %d entries, need at least 2", src.ID, len(points))
	}
	tupleSize, valueKey := 1, "value"
	if t.Type == "ramp" {
		tupleSize, valueKey = 3, ramp.FieldColor
	}

	rawType, _ := src.Attr("type")
	rampType, ok := ramp.Type(rawType)
	if !ok {
		env.Diagnostics().AddWarning(errors.ErrCodeUnmappableValue, src.ID, "type",
			"ramp type %v has no target equivalent, using %s", rawType, ramp.TypeCustom)
	}
	var input any = 0.0
	if coord := ramp.CoordPort(rampType); coord != "" {
		if c, ok := t.Connections[coord]; ok {
			rampType = ramp.TypeCustom
			delete(t.Connections, coord)
			t.Connect("input", c)
		} else if v, ok := src.Attr(coord); ok {
			input = mapper.Normalize(v)
		}
	}

	rawInterp, _ := src.Attr("interpolation")
	interp, ok := ramp.Interpolation(rawInterp)
	if !ok {
		env.Diagnostics().AddWarning(errors.ErrCodeUnmappableValue, src.ID, "interpolation",
			"interpolation %v has no target equivalent, using custom", rawInterp)
	}

	layout, err := ramp.Encode(points, tupleSize)
	if err != nil {
		return err
	}

	for port := range t.Connections {
		if name, _, _, ok := scene.ParseIndexed(port); ok && name == ramp.EntryList {
			delete(t.Connections, port)
		}
	}
	t.Ports = []string{"input"}
	for i := range layout.Count() - 2 {
		c, wired := layout.Wired[i]
		if !wired {
			continue
		}
		port := fmt.Sprintf("%s[%d]", valueKey, i)
		t.AddPort(port)
		t.Connect(port, c)
		env.Diagnostics().AddInfo(errors.ErrCodeUnmappableValue, src.ID, port,
			"wired ramp entry stored as index %d", i)
	}

	codes := make([]float64, layout.Count())
	for i := range codes {
		codes[i] = float64(interp)
	}
	if t.Connected("input") {
		t.Set(&target.Param{Name: "input", Enabled: true, Connected: true})
	} else {
		t.Set(&target.Param{Name: "input", Enabled: true, Value: input})
	}
	t.Set(&target.Param{Name: "type", Enabled: true, Value: rampType})
	t.Set(&target.Param{Name: "ramp", Enabled: true, Value: layout.Count()})
	t.Set(&target.Param{Name: "position", Kind: target.Array, Enabled: true, Value: layout.Positions, TupleSize: 1})
	t.Set(&target.Param{Name: valueKey, Kind: target.Array, Enabled: true, Value: layout.Values, TupleSize: tupleSize})
	t.Set(&target.Param{Name: "interpolation", Kind: target.Array, Enabled: true, Value: codes, TupleSize: 1})
	return nil
}
