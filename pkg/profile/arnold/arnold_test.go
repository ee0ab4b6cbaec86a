package arnold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/shadebridge/pkg/diag"
	"github.com/matzehuels/shadebridge/pkg/ledger"
	"github.com/matzehuels/shadebridge/pkg/mapper"
	"github.com/matzehuels/shadebridge/pkg/naming"
	"github.com/matzehuels/shadebridge/pkg/nodeset"
	"github.com/matzehuels/shadebridge/pkg/profile"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/target"
)

func preEnv(t *testing.T, nodes ...*scene.Node) *profile.PreEnv {
	t.Helper()
	g, err := nodeset.Of(nodes...)
	require.NoError(t, err)
	return &profile.PreEnv{
		Graph: g,
		Names: naming.New(g.IDs()...),
		Diag:  &diag.Diagnostics{},
	}
}

func TestTablesParse(t *testing.T) {
	set, err := Tables()
	require.NoError(t, err)
	for _, typ := range []string{"standard_surface", "image", "mix", "ramp", "rampFloat", "networkMaterial", "range", "spaceTransform"} {
		assert.True(t, set.Has(typ), typ)
	}
	assert.Equal(t, 2, set.Variants("networkMaterial"))

	old, _ := set.Lookup("networkMaterial", scene.ParseVersion("1.4.2"))
	assert.Contains(t, old.Ports(), "arnoldBump")
	cur, _ := set.Lookup("networkMaterial", scene.ParseVersion("3.0"))
	assert.NotContains(t, cur.Ports(), "arnoldBump")

	_, err = New(profile.Options{})
	require.NoError(t, err)
}

func TestPreprocessBump(t *testing.T) {
	tangent := &scene.Node{ID: "bump", Type: "bump2d", Attributes: map[string]any{"bumpInterp": 1}}
	out, err := preprocessBump(tangent, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "spaceTransform", out[0].Type)
	assert.Equal(t, WeightBump, out[0].Weight)
	v, _ := out[0].Attr("from")
	assert.Equal(t, spaceTangent, v)

	height := &scene.Node{ID: "bump", Type: "bump2d", Attributes: map[string]any{"bumpInterp": 0}}
	out, _ = preprocessBump(height, nil)
	assert.Equal(t, "bump2d", out[0].Type)
}

func TestPreprocessFile(t *testing.T) {
	n := &scene.Node{
		ID:   "file1",
		Type: "file",
		Attributes: map[string]any{
			"fileTextureName": "/tex/albedo.1001.exr",
			"colorGain":       []any{[]any{1.0, 0.5, 0.5}},
			"uvTilingMode":    3,
		},
		Connections: map[string]scene.Connection{"colorOffset": {Node: "noise", Port: "outColor"}},
	}
	env := preEnv(t, n)
	env.Options.UDIM = true
	out, err := preprocessFile(n, env)
	require.NoError(t, err)

	img := out[0]
	assert.Equal(t, "image", img.Type)
	name, _ := img.Attr("filename")
	assert.Equal(t, "/tex/albedo.<UDIM>.exr", name)
	assert.True(t, img.Connected("offset"))
	assert.False(t, img.Connected("colorOffset"))
	_, ok := img.Attr("multiply")
	assert.True(t, ok)
}

func TestPreprocessMultiplyDivide(t *testing.T) {
	tests := []struct {
		op   int
		want string
	}{
		{1, "multiply"},
		{2, "divide"},
		{3, "pow"},
		{0, "multiply"},
	}
	for _, tt := range tests {
		n := &scene.Node{ID: "md", Type: "multiplyDivide", Attributes: map[string]any{"operation": tt.op, "input1": 2.0}}
		out, err := preprocessMultiplyDivide(n, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out[0].Type, "operation %d", tt.op)
		if tt.want == "pow" {
			v, _ := out[0].Attr("base")
			assert.Equal(t, 2.0, v)
		}
	}
}

func TestPreprocessSampler(t *testing.T) {
	sampler := &scene.Node{ID: "samplerInfo1", Type: "samplerInfo"}
	reader := &scene.Node{ID: "ramp1", Type: "ramp", Connections: map[string]scene.Connection{
		"vCoord": {Node: "samplerInfo1", Port: "facingRatio"},
	}}
	env := preEnv(t, sampler, reader)

	out, err := preprocessSampler(sampler, env)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "facingRatio", out[0].Type)
	assert.Equal(t, []scene.Rename{{Old: "samplerInfo1", From: "facingRatio", New: out[0].ID}}, out[0].Renamings)
}

func TestPreprocessSamplerTwoOutputs(t *testing.T) {
	sampler := &scene.Node{ID: "samplerInfo1", Type: "samplerInfo"}
	fresnel := &scene.Node{ID: "ramp1", Type: "ramp", Connections: map[string]scene.Connection{
		"vCoord": {Node: "samplerInfo1", Port: "facingRatio"},
	}}
	sided := &scene.Node{ID: "blend1", Type: "blendColors", Connections: map[string]scene.Connection{
		"blender": {Node: "samplerInfo1", Port: "flippedNormal"},
	}}
	env := preEnv(t, sampler, fresnel, sided)

	out, err := preprocessSampler(sampler, env)
	require.NoError(t, err)
	require.Len(t, out, 2)

	l := ledger.New()
	for _, o := range out {
		l.RecordAll(o.Renamings)
	}
	byType := map[string]string{}
	for _, o := range out {
		byType[o.Type] = o.ID
	}
	id, _, err := l.Resolve("samplerInfo1", "facingRatio")
	require.NoError(t, err)
	assert.Equal(t, byType["facingRatio"], id)
	id, _, err = l.Resolve("samplerInfo1", "flippedNormal")
	require.NoError(t, err)
	assert.Equal(t, byType["two_sided"], id)
}

func TestPreprocessRamp(t *testing.T) {
	entry := func(i int, pos float64, v any) map[string]any {
		return map[string]any{
			scene.Indexed("colorEntryList", i, "position"): pos,
			scene.Indexed("colorEntryList", i, "color"):    v,
		}
	}
	merge := func(ms ...map[string]any) map[string]any {
		out := map[string]any{}
		for _, m := range ms {
			for k, v := range m {
				out[k] = v
			}
		}
		return out
	}

	t.Run("empty ramp with one feed renames", func(t *testing.T) {
		n := &scene.Node{ID: "ramp1", Type: "ramp", Connections: map[string]scene.Connection{
			"uvCoord": {Node: "place2d", Port: "outUV"},
		}}
		out, err := preprocessRamp(n, preEnv(t, n))
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, []scene.Rename{{Old: "ramp1", New: "place2d", Port: "outUV"}}, out[0].Renamings)
	})

	t.Run("single wired entry collapses", func(t *testing.T) {
		n := &scene.Node{ID: "ramp1", Type: "ramp", Attributes: entry(0, 0.3, nil),
			Connections: map[string]scene.Connection{"colorEntryList[0].color": {Node: "tex", Port: "outColor"}}}
		out, err := preprocessRamp(n, preEnv(t, n))
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.NotEqual(t, "ramp1", out[0].ID)
		assert.Equal(t, []scene.Rename{{Old: "ramp1", New: "tex", Port: "outColor"}}, out[0].Renamings)
	})

	t.Run("single constant entry leaves a constant", func(t *testing.T) {
		n := &scene.Node{ID: "ramp1", Type: "ramp", Attributes: entry(0, 0.3, []any{1.0, 0.0, 0.0})}
		env := preEnv(t, n)
		out, err := preprocessRamp(n, env)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "ramp1", out[0].ID)
		assert.Empty(t, out[0].Type)
		assert.Equal(t, "ramp", out[0].Origin())
		assert.Equal(t, []float64{1, 0, 0}, out[0].Constant)
		assert.Empty(t, env.Diag.Warnings)
	})

	t.Run("single entry without value drops", func(t *testing.T) {
		n := &scene.Node{ID: "ramp1", Type: "ramp", Attributes: map[string]any{"colorEntryList[0].position": 0.3}}
		env := preEnv(t, n)
		out, err := preprocessRamp(n, env)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Len(t, env.Diag.Warnings, 1)
	})

	t.Run("two entries with a wire blend", func(t *testing.T) {
		n := &scene.Node{ID: "ramp1", Type: "ramp",
			Attributes: merge(entry(0, 0.0, []any{1.0, 0.0, 0.0}), entry(1, 1.0, nil)),
			Connections: map[string]scene.Connection{
				"colorEntryList[1].color": {Node: "tex", Port: "outColor"},
			}}
		out, err := preprocessRamp(n, preEnv(t, n))
		require.NoError(t, err)
		require.Len(t, out, 2)

		rf, mix := out[0], out[1]
		assert.Equal(t, "rampFloat", rf.Type)
		assert.Empty(t, rf.Connections)
		assert.Equal(t, "mix", mix.Type)
		assert.Equal(t, "ramp1Mix", mix.ID)
		assert.Equal(t, scene.Connection{Node: "tex", Port: "outColor"}, mix.Connections["input2"])
		assert.Equal(t, scene.Connection{Node: "ramp1"}, mix.Connections["mix"])
		assert.Equal(t, []float64{1, 0, 0}, mix.Attributes["input1"])
		assert.Equal(t, []scene.Rename{{Old: "ramp1", New: "ramp1Mix"}}, mix.Renamings)
	})

	t.Run("constant ramp is left for encoding", func(t *testing.T) {
		n := &scene.Node{ID: "ramp1", Type: "ramp",
			Attributes: merge(entry(0, 0.0, 1.0), entry(1, 1.0, 0.0))}
		out, err := preprocessRamp(n, preEnv(t, n))
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Same(t, n, out[0])
	})
}

func TestProcessRamp(t *testing.T) {
	src := &scene.Node{ID: "ramp1", Type: "ramp", Attributes: map[string]any{
		"type":                        0,
		"interpolation":               1,
		"vCoord":                      0.25,
		"colorEntryList[0].position":  0.0,
		"colorEntryList[0].color":     []any{1.0, 1.0, 1.0},
		"colorEntryList[3].position":  1.0,
		"colorEntryList[3].color":     []any{0.0, 0.0, 0.0},
		"colorEntryList[1].position":  0.5,
		"colorEntryList[1].color":     []any{0.5, 0.5, 0.5},
		"unrelatedAttributeIsIgnored": 7,
	}}
	tn := &target.Node{ID: "ramp1", Type: "ramp", Connections: map[string]scene.Connection{}}
	env := &mapper.Env{Diag: &diag.Diagnostics{}}
	require.NoError(t, processRamp(tn, src, env))

	assert.Equal(t, "v", tn.Find("type").Value)
	assert.Equal(t, 0.25, tn.Find("input").Value)
	assert.Equal(t, 5, tn.Find("ramp").Value)
	assert.Equal(t, []float64{0, 0, 0.5, 1, 1}, tn.Find("position").Value)
	color := tn.Find("color")
	assert.Equal(t, 3, color.TupleSize)
	assert.Equal(t, 5, color.Elements())
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1, 0.5, 0.5, 0.5, 0, 0, 0, 0, 0, 0}, color.Value)
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, tn.Find("interpolation").Value)
	assert.Empty(t, env.Diag.Warnings)
}

func TestProcessRampCoordinateWire(t *testing.T) {
	src := &scene.Node{ID: "r", Type: "rampFloat", Attributes: map[string]any{
		"type":                       1,
		"interpolation":              6,
		"colorEntryList[0].position": 0.0,
		"colorEntryList[0].color":    0.0,
		"colorEntryList[1].position": 1.0,
		"colorEntryList[1].color":    1.0,
	}}
	tn := &target.Node{ID: "r", Type: "rampFloat", Connections: map[string]scene.Connection{
		"uCoord": {Node: "sampler", Port: "facingRatio"},
	}}
	env := &mapper.Env{Diag: &diag.Diagnostics{}}
	require.NoError(t, processRamp(tn, src, env))

	assert.Equal(t, "custom", tn.Find("type").Value)
	assert.True(t, tn.Find("input").Connected)
	assert.Equal(t, scene.Connection{Node: "sampler", Port: "facingRatio"}, tn.Connections["input"])
	assert.Equal(t, []float64{0, 0, 1, 1}, tn.Find("value").Value)
	assert.Equal(t, []float64{2, 2, 2, 2}, tn.Find("interpolation").Value)
	assert.Len(t, env.Diag.Warnings, 1)
}

func TestProcessRampWiredEntries(t *testing.T) {
	src := &scene.Node{ID: "r", Type: "ramp", Attributes: map[string]any{
		"type":                       0,
		"interpolation":              1,
		"colorEntryList[0].position": 0.0,
		"colorEntryList[0].color":    []any{1.0, 0.0, 0.0},
		"colorEntryList[1].position": 0.5,
		"colorEntryList[2].position": 1.0,
		"colorEntryList[2].color":    []any{0.0, 0.0, 1.0},
	}}
	src.Connect("colorEntryList[1].color", scene.Connection{Node: "tex", Port: "outColor"})
	tn := &target.Node{ID: "r", Type: "ramp", Connections: map[string]scene.Connection{
		"colorEntryList[1].color": {Node: "tex", Port: "outColor"},
	}}
	env := &mapper.Env{Diag: &diag.Diagnostics{}}
	require.NoError(t, processRamp(tn, src, env))

	assert.Equal(t, []string{"input", "color[1]"}, tn.Ports)
	assert.Equal(t, scene.Connection{Node: "tex", Port: "outColor"}, tn.Connections["color[1]"])
	assert.NotContains(t, tn.Connections, "colorEntryList[1].color")
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0, 1, 1, 1, 2, 2, 2, 2, 2, 2}, tn.Find("color").Value)
	assert.Len(t, env.Diag.Infos, 1)
}

func TestOverrides(t *testing.T) {
	assert.Equal(t, 0.2, overrideClamp("min", []any{0.5, 0.2, 0.9}))
	assert.Equal(t, 0.9, overrideClamp("max", []any{0.5, 0.2, 0.9}))
	assert.Equal(t, 2, overrideHair("extraSamplesGlossy", 0))
	assert.Equal(t, 0.4, overrideHair("melanin", 0.4))
	assert.Equal(t, "ggx", overrideMaterial("specular2Distribution", 0))

	tx := overrideTexturePath(true)
	assert.Equal(t, "C:/tex/wood.tx", tx("filename", `C:\tex\wood.png`))
	assert.Equal(t, "/tex/wood.png", overrideTexturePath(false)("filename", "/tex/wood.png"))
	assert.Nil(t, tx("filename", nil))
}

func TestPostprocessNetworkMaterial(t *testing.T) {
	shader := &target.Node{ID: "skin", Type: "standard_surface", Ports: []string{"normal"},
		Connections: map[string]scene.Connection{"normal": {Node: "bump1"}}}
	aov := &target.Node{ID: "aovSkin", Type: "aov_write_rgb",
		Connections: map[string]scene.Connection{"passthrough": {Node: "skin", Port: "outColor"}}}
	bump := &target.Node{ID: "bump1", Type: "bump2d"}
	mat := &target.Node{ID: "skinSG", Type: "networkMaterial", Ports: []string{"arnoldSurface"},
		Connections: map[string]scene.Connection{"arnoldSurface": {Node: "aovSkin", Port: "outColor"}}}

	run := func(version string) ([]*target.Node, *nodeset.Set[*target.Node]) {
		g, err := nodeset.Of(shader.Clone(), aov.Clone(), bump.Clone())
		require.NoError(t, err)
		env := &profile.PostEnv{
			Graph:       g,
			Names:       naming.New("skin", "aovSkin", "bump1", "skinSG"),
			HostVersion: scene.ParseVersion(version),
			Diag:        &diag.Diagnostics{},
		}
		out, err := postprocessNetworkMaterial(mat.Clone(), env)
		require.NoError(t, err)
		return out, g
	}

	out, g := run("1.5")
	require.Len(t, out, 2)
	sh, m := out[0], out[1]
	assert.Equal(t, "skin_out", sh.ID)
	assert.Equal(t, "skin_mtl", m.ID)
	assert.False(t, g.Has("skin"))
	assert.Equal(t, []scene.Rename{{Old: "skin", New: "skin_out"}}, sh.Renamings)
	assert.Equal(t, []scene.Rename{{Old: "skinSG", New: "skin_mtl"}}, m.Renamings)
	assert.Equal(t, scene.Connection{Node: "aovSkin", Port: "outColor"}, m.Connections["arnoldSurface"])
	assert.Equal(t, scene.Connection{Node: "bump1"}, m.Connections["arnoldBump"])
	assert.False(t, sh.Connected("normal"))

	out, _ = run("4.2")
	assert.True(t, out[0].Connected("normal"))
	assert.False(t, out[1].Connected("arnoldBump"))
}
