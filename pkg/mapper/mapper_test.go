package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/shadebridge/pkg/diag"
	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/schema"
	"github.com/matzehuels/shadebridge/pkg/target"
)

func table(t *testing.T, doc, typ string) *schema.Table {
	t.Helper()
	s, err := schema.Parse([]byte(doc))
	require.NoError(t, err)
	tbl, ok := s.Lookup(typ, scene.Version{})
	require.True(t, ok)
	return tbl
}

func values(n *target.Node) map[string]any {
	out := map[string]any{}
	n.Walk(func(p *target.Param, _ int) {
		if p.Connected {
			out[p.Name] = "<connected>"
			return
		}
		if p.Enabled {
			out[p.Name] = p.Value
		}
	})
	return out
}

func TestMapPassthroughAndRename(t *testing.T) {
	tbl := table(t, "simple:\n  a: ~\n  b: renamed_b\n", "simple")
	n := &scene.Node{ID: "n1", Type: "simple", Attributes: map[string]any{"a": 1, "b": 2, "ignored": 3}}

	got, err := Map(n, tbl, Funcs{}, &Env{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "renamed_b": 2}, values(got))
	assert.Equal(t, []string{"a", "renamed_b"}, got.Ports)
	assert.False(t, got.Opaque)
}

func TestMapConnectionSuppressesValue(t *testing.T) {
	tbl := table(t, "standard:\n  KsColor: Ks_color\n  opacity: ~\n", "standard")
	n := &scene.Node{
		ID:         "std",
		Attributes: map[string]any{"KsColor": []any{[]any{1.0, 1.0, 1.0}}, "opacity": 1.0},
		Connections: map[string]scene.Connection{
			"KsColor": {Node: "file1", Port: "outColor"},
			"unknown": {Node: "file2", Port: "outColor"},
		},
	}
	got, err := Map(n, tbl, Funcs{}, &Env{})
	require.NoError(t, err)

	ks := got.Find("Ks_color")
	require.NotNil(t, ks)
	assert.True(t, ks.Connected)
	assert.True(t, ks.Enabled)
	assert.Nil(t, ks.Value)

	assert.Equal(t, scene.Connection{Node: "file1", Port: "outColor"}, got.Connections["Ks_color"])
	assert.NotContains(t, got.Connections, "KsColor")
	assert.Contains(t, got.Connections, "unknown", "unmapped wires stay for renaming")
	assert.Equal(t, 1.0, got.Find("opacity").Value)
}

func TestMapEnum(t *testing.T) {
	doc := "standard:\n  specularDistribution: [specular_distribution, [beckmann, ggx]]\n  sssMode: [cubic, diffusion]\n"
	tbl := table(t, doc, "standard")

	var d diag.Diagnostics
	n := &scene.Node{ID: "std", Attributes: map[string]any{"specularDistribution": 1, "sssMode": 7}}
	got, err := Map(n, tbl, Funcs{}, &Env{Diag: &d})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"specular_distribution": "ggx"}, values(got))
	require.Len(t, d.Warnings, 1)
	assert.Equal(t, errors.ErrCodeUnmappableValue, d.Warnings[0].Code)
	assert.Equal(t, "sssMode", d.Warnings[0].Port)
}

func TestMapEnumAcceptsLabel(t *testing.T) {
	tbl := table(t, "image:\n  filter: [closest, bilinear, bicubic]\n", "image")
	n := &scene.Node{ID: "img", Attributes: map[string]any{"filter": "bicubic"}}
	got, err := Map(n, tbl, Funcs{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "bicubic", got.Find("filter").Value)
}

func TestMapOverride(t *testing.T) {
	tbl := table(t, "clamp:\n  min: !override clamp\n  max: !override clamp\n  dualDepth: !override fixed\n", "clamp")
	fns := Funcs{Overrides: map[string]OverrideFunc{
		"clamp": func(key string, v any) any {
			tup, ok := scene.AsTuple(v)
			if !ok {
				return nil
			}
			out := tup[0]
			for _, x := range tup {
				if key == "min" && x < out || key == "max" && x > out {
					out = x
				}
			}
			return out
		},
		"fixed": func(string, any) any { return 1 },
	}}
	n := &scene.Node{ID: "c", Attributes: map[string]any{"min": []any{0.2, 0.1, 0.3}}}
	got, err := Map(n, tbl, fns, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"min": 0.1, "dualDepth": 1}, values(got))
}

func TestMapUnknownOverride(t *testing.T) {
	tbl := table(t, "x:\n  a: !override nope\n", "x")
	var d diag.Diagnostics
	got, err := Map(&scene.Node{ID: "x", Attributes: map[string]any{"a": 1}}, tbl, Funcs{}, &Env{Diag: &d})
	require.NoError(t, err)
	assert.Empty(t, got.Params)
	assert.Len(t, d.Errors, 1)
}

func TestMapGroups(t *testing.T) {
	doc := `
alSurface:
  diffuseStrength:
    diffuseColor: ~
    backlightStrength:
      backlightColor: ~
  specular1Strength:
    specular1Color: ~
  emissionStrength:
    emissionColor: ~
`
	tbl := table(t, doc, "alSurface")

	t.Run("zero group skips members", func(t *testing.T) {
		n := &scene.Node{ID: "al", Attributes: map[string]any{
			"diffuseStrength":   0.0,
			"diffuseColor":      []any{1.0, 0.0, 0.0},
			"specular1Strength": 1.0,
			"specular1Color":    []any{1.0, 1.0, 1.0},
		}}
		got, err := Map(n, tbl, Funcs{}, nil)
		require.NoError(t, err)

		diffuse := got.Find("diffuseStrength")
		require.NotNil(t, diffuse)
		assert.Equal(t, 0.0, diffuse.Value)
		assert.Empty(t, diffuse.Params)

		specular := got.Find("specular1Strength")
		require.NotNil(t, specular)
		assert.Equal(t, target.Group, specular.Kind)
		require.Len(t, specular.Params, 1)
		assert.Equal(t, []float64{1, 1, 1}, specular.Params[0].Value)

		assert.Nil(t, got.Find("emissionStrength"), "empty group must not be emitted")
	})

	t.Run("missing group value still maps members", func(t *testing.T) {
		n := &scene.Node{ID: "al", Attributes: map[string]any{"backlightColor": []any{0.5, 0.5, 0.5}}}
		got, err := Map(n, tbl, Funcs{}, nil)
		require.NoError(t, err)

		diffuse := got.Find("diffuseStrength")
		require.NotNil(t, diffuse)
		assert.False(t, diffuse.Enabled)
		require.NotNil(t, got.Find("backlightColor"))
	})

	t.Run("wired zero group keeps members", func(t *testing.T) {
		n := &scene.Node{
			ID:          "al",
			Attributes:  map[string]any{"emissionStrength": 0, "emissionColor": []any{1.0, 0.5, 0.0}},
			Connections: map[string]scene.Connection{"emissionStrength": {Node: "noise1"}},
		}
		got, err := Map(n, tbl, Funcs{}, nil)
		require.NoError(t, err)
		em := got.Find("emissionStrength")
		require.NotNil(t, em)
		assert.True(t, em.Connected)
		require.Len(t, em.Params, 1)
	})
}

func TestMapDuplicateTargets(t *testing.T) {
	doc := "mix:\n  input1: ~\n  input2: ~\n  color1: input2\n  color2: input1\n"
	tbl := table(t, doc, "mix")

	n := &scene.Node{ID: "m", Attributes: map[string]any{"color1": []any{1.0, 0.0, 0.0}, "color2": []any{0.0, 1.0, 0.0}}}
	got, err := Map(n, tbl, Funcs{}, nil)
	require.NoError(t, err)
	assert.Len(t, got.Params, 2)
	assert.Equal(t, []float64{1, 0, 0}, got.Find("input2").Value)

	n = &scene.Node{ID: "m", Attributes: map[string]any{"input1": 0.3},
		Connections: map[string]scene.Connection{"input2": {Node: "file1"}}}
	got, err = Map(n, tbl, Funcs{}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"input1": 0.3, "input2": "<connected>"}, values(got))
}

func TestMapOpaque(t *testing.T) {
	n := &scene.Node{ID: "p2d", Type: "place2dTexture",
		Connections: map[string]scene.Connection{"uvCoord": {Node: "x"}}}
	got, err := Map(n, nil, Funcs{}, nil)
	require.NoError(t, err)
	assert.True(t, got.Opaque)
	assert.Empty(t, got.Params)
	assert.Contains(t, got.Connections, "uvCoord")
}

func TestMapCustomProcessAndColor(t *testing.T) {
	tbl := table(t, "networkMaterial:\n  customColor: [0.4, 0.35, 0.2]\n  customProcess: prune\n", "networkMaterial")
	called := false
	fns := Funcs{Processes: map[string]ProcessFunc{
		"prune": func(tn *target.Node, src *scene.Node, env *Env) error {
			called = true
			tn.AddPort("arnoldSurface")
			return nil
		},
	}}
	got, err := Map(&scene.Node{ID: "mtl", Type: "networkMaterial", SourceType: "shadingEngine"}, tbl, fns, &Env{})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, []float64{0.4, 0.35, 0.2}, got.Color)
	assert.Equal(t, []string{"arnoldSurface"}, got.Ports)
	assert.Equal(t, "shadingEngine", got.SourceType)
}

func TestMapCustomProcessFailure(t *testing.T) {
	tbl := table(t, "ramp:\n  customProcess: ramp\n  a: ~\n", "ramp")
	fns := Funcs{Processes: map[string]ProcessFunc{
		"ramp": func(*target.Node, *scene.Node, *Env) error { panic("bad entry") },
	}}
	got, err := Map(&scene.Node{ID: "r", Attributes: map[string]any{"a": 1}}, tbl, fns, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeHookFailure))
	assert.NotNil(t, got.Find("a"))

	_, err = Map(&scene.Node{ID: "r"}, table(t, "ramp:\n  customProcess: other\n", "ramp"), fns, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSchema))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 1, Normalize(true))
	assert.Equal(t, 0, Normalize(false))
	assert.Equal(t, []float64{1, 2, 3}, Normalize([]any{[]any{1, 2, 3}}))
	assert.Equal(t, 0.5, Normalize([]any{0.5}))
	assert.Equal(t, "linear", Normalize("linear"))
	assert.Equal(t, []any{"a", 1}, Normalize([]any{"a", 1}))
}
