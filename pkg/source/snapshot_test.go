package source

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/scene"
)

const yamlScene = `
host_version: "1.5.0"
nodes:
  - id: mtlSG
    type: shadingEngine
    connections:
      surfaceShader: {node: surf, port: outColor}
      displacementShader: {node: disp, port: displacement}
  - id: surf
    type: aiStandardSurface
    attributes:
      base: 0.8
      baseColor: [[0.5, 0.25, 1]]
    connections:
      baseColor: {node: tex, port: outColor}
  - id: tex
    type: file
    attributes:
      fileTextureName: /tex/a.1001.exr
  - id: disp
    type: displacementShader
    connections:
      displacement: {node: missing, port: outAlpha}
  - id: otherSG
    type: shadingEngine
  - id: stray
    type: file
`

const jsonScene = `{
  "host_version": "4.2",
  "nodes": [
    {"id": "sg", "type": "shadingEngine",
     "connections": {"surfaceShader": {"node": "s", "port": "outColor"}}},
    {"id": "s", "type": "aiStandardSurface",
     "attributes": {"base": 1, "specularRoughness": 0.25, "color": [[1, 0.5, 0]]}}
  ]
}`

func TestReadSnapshotYAML(t *testing.T) {
	s, err := ReadSnapshot(strings.NewReader(yamlScene), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, []string{"mtlSG", "otherSG"}, s.Roots())
	assert.True(t, s.HostVersion().AtLeast("1.5"))
	assert.False(t, s.HostVersion().AtLeast("2.0"))

	v, ok := s.Attribute("surf", "base")
	require.True(t, ok)
	assert.Equal(t, 0.8, v)

	conns := s.Connections("surf")
	assert.Equal(t, scene.Connection{Node: "tex", Port: "outColor"}, conns["baseColor"])
}

func TestReadSnapshotJSONNumbers(t *testing.T) {
	s, err := ReadSnapshot(strings.NewReader(jsonScene), FormatJSON)
	require.NoError(t, err)

	v, _ := s.Attribute("s", "base")
	assert.Equal(t, 1, v)
	v, _ = s.Attribute("s", "specularRoughness")
	assert.Equal(t, 0.25, v)
	tup, ok := s.Attribute("s", "color")
	require.True(t, ok)
	got, ok := scene.AsTuple(tup)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0.5, 0}, got)
}

func TestListNodesReachableFrom(t *testing.T) {
	s, err := ReadSnapshot(strings.NewReader(yamlScene), FormatYAML)
	require.NoError(t, err)

	nodes, err := s.ListNodesReachableFrom("mtlSG")
	require.NoError(t, err)
	var ids []string
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	// displacementShader sorts before surfaceShader.
	assert.Equal(t, []string{"mtlSG", "disp", "surf", "tex"}, ids)

	// Dangling wires are kept.
	assert.Equal(t, "missing", nodes[1].Connections["displacement"].Node)

	// Returned nodes are copies.
	nodes[2].SetAttr("base", 0.0)
	v, _ := s.Attribute("surf", "base")
	assert.Equal(t, 0.8, v)
}

func TestListNodesReachableFromUnknownRoot(t *testing.T) {
	s, err := NewSnapshot("", nil)
	require.NoError(t, err)
	_, err = s.ListNodesReachableFrom("nope")
	assert.True(t, errors.Is(err, errors.ErrCodeNodeNotFound))
}

func TestSnapshotRejectsBadNodes(t *testing.T) {
	tests := []struct {
		name  string
		nodes []*scene.Node
	}{
		{"empty id", []*scene.Node{{ID: ""}}},
		{"duplicate", []*scene.Node{{ID: "a"}, {ID: "a"}}},
		{"nil", []*scene.Node{nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSnapshot("", tt.nodes)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
		})
	}
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlScene), 0o644))

	s, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Len(t, s.Nodes, 6)

	_, err = LoadSnapshot(filepath.Join(dir, "absent.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestWriteRoundTrip(t *testing.T) {
	s, err := ReadSnapshot(strings.NewReader(jsonScene), FormatJSON)
	require.NoError(t, err)

	for _, f := range []Format{FormatJSON, FormatYAML} {
		var buf bytes.Buffer
		require.NoError(t, s.Write(&buf, f))
		back, err := ReadSnapshot(&buf, f)
		require.NoError(t, err, f)
		assert.Equal(t, s.Roots(), back.Roots())
		assert.Equal(t, "4.2", back.HostVersion().String())
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.YAML"))
	assert.Equal(t, FormatYAML, FormatFromPath("x.yml"))
	assert.Equal(t, FormatJSON, FormatFromPath("x.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("x"))
}
