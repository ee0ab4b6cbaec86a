package graph

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/shadebridge/pkg/diag"
	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/target"
)

func sampleTargets() []*target.Node {
	return []*target.Node{
		{
			ID:          "mtl",
			Type:        "networkMaterial",
			Ports:       []string{"arnoldSurface"},
			Connections: map[string]scene.Connection{"arnoldSurface": {Node: "surf", Port: "outColor"}},
		},
		{
			ID:    "surf",
			Type:  "standard_surface",
			Color: []float64{0.2, 0.4, 0.6},
			Ports: []string{"base_color"},
			Params: []*target.Param{
				{Name: "base", Enabled: true, Value: 0.8},
				{Name: "base_color", Enabled: true, Connected: true},
				{Name: "coat", Kind: target.Group, Params: []*target.Param{
					{Name: "coat_color", Enabled: true, Value: []float64{1, 0.5, 0}},
				}},
			},
			Connections: map[string]scene.Connection{"base_color": {Node: "ramp1"}},
		},
		{
			ID:   "ramp1",
			Type: "ramp",
			Params: []*target.Param{
				{Name: "position", Kind: target.Array, Enabled: true, Value: []float64{0, 0, 1, 1}, TupleSize: 1},
			},
		},
		{ID: "opaque", Opaque: true},
	}
}

func TestFromNodesSkipsOpaque(t *testing.T) {
	nodes := FromNodes(sampleTargets())
	if len(nodes) != 3 {
		t.Fatalf("len(FromNodes()) = %d, want 3", len(nodes))
	}
	if nodes[1].Params[2].Kind != KindGroup {
		t.Errorf("coat kind = %q, want %q", nodes[1].Params[2].Kind, KindGroup)
	}
}

func TestRoundTrip(t *testing.T) {
	d := &diag.Diagnostics{}
	d.AddWarning(errors.ErrCodeUnmappableValue, "ramp1", "interpolation", "custom")
	d.AddError(errors.ErrCodeHookFailure, "surf", "", "boom")

	g := &Graph{
		Renderer:    "arnold",
		Root:        "mtlSG",
		Nodes:       FromNodes(sampleTargets()),
		Renames:     []scene.Rename{{Old: "mtlSG", New: "mtl"}},
		Diagnostics: FromDiagnostics(d),
	}
	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	targets := back.Targets()
	want := sampleTargets()[:3]
	for i, n := range targets {
		if n.ID != want[i].ID || n.Type != want[i].Type {
			t.Errorf("node %d = %s/%s, want %s/%s", i, n.ID, n.Type, want[i].ID, want[i].Type)
		}
		if !reflect.DeepEqual(n.Connections, want[i].Connections) && len(want[i].Connections) > 0 {
			t.Errorf("node %s connections = %v, want %v", n.ID, n.Connections, want[i].Connections)
		}
	}
	pos := targets[2].Find("position")
	if pos == nil || pos.Kind != target.Array {
		t.Fatalf("position = %+v, want array", pos)
	}
	if !reflect.DeepEqual(pos.Value, []float64{0, 0, 1, 1}) {
		t.Errorf("position value = %#v", pos.Value)
	}
	coat := targets[1].Find("coat_color")
	if !reflect.DeepEqual(coat.Value, []float64{1, 0.5, 0}) {
		t.Errorf("coat_color value = %#v", coat.Value)
	}

	dd := back.Diag()
	if len(dd.Errors) != 1 || len(dd.Warnings) != 1 {
		t.Errorf("Diag() = %d errors, %d warnings, want 1 and 1", len(dd.Errors), len(dd.Warnings))
	}
	if dd.Errors[0].Code != errors.ErrCodeHookFailure {
		t.Errorf("error code = %s", dd.Errors[0].Code)
	}
}

func TestReadRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"duplicate", `{"nodes":[{"id":"a","type":"x"},{"id":"a","type":"y"}]}`},
		{"missing id", `{"nodes":[{"type":"x"}]}`},
		{"malformed", `{"nodes":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.data)); err == nil {
				t.Error("Read() error = nil, want error")
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	g := &Graph{Nodes: FromNodes(sampleTargets())}
	if err := WriteFile(g, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if _, ok := back.Node("ramp1"); !ok {
		t.Error("ramp1 missing after round trip")
	}

	var buf bytes.Buffer
	if err := Write(&Graph{}, &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"nodes": null`) {
		t.Errorf("empty graph = %s", buf.String())
	}
}

func wired(id string, weight int, inputs ...string) Node {
	n := Node{ID: id, Weight: weight, Connections: map[string]scene.Connection{}}
	for i, in := range inputs {
		n.Connections[string(rune('a'+i))] = scene.Connection{Node: in}
	}
	return n
}

func TestArrange(t *testing.T) {
	tests := []struct {
		name       string
		nodes      []Node
		want       map[string]Point
		wantWidth  float64
		wantHeight float64
	}{
		{
			name: "consumer first",
			nodes: []Node{
				wired("mtl", 0, "surf"),
				wired("surf", 0, "tex1", "tex2"),
				wired("tex1", 0),
				wired("tex2", 0),
			},
			want: map[string]Point{
				"mtl":  {0, 100},
				"surf": {0, 200},
				"tex1": {-130, 300},
				"tex2": {130, 300},
			},
			wantWidth:  460,
			wantHeight: 300,
		},
		{
			name: "producers first are adopted",
			nodes: []Node{
				wired("tex", 0),
				wired("surf", 0, "tex"),
				wired("mtl", 0, "surf"),
			},
			want: map[string]Point{
				"mtl":  {0, 100},
				"surf": {0, 200},
				"tex":  {0, 300},
			},
			wantWidth:  200,
			wantHeight: 300,
		},
		{
			name: "siblings ordered by weight",
			nodes: []Node{
				wired("mix", 0, "late", "early"),
				wired("late", 5),
				wired("early", 1),
			},
			want: map[string]Point{
				"mix":   {0, 100},
				"early": {-130, 200},
				"late":  {130, 200},
			},
			wantWidth:  460,
			wantHeight: 200,
		},
		{
			name:       "empty",
			want:       map[string]Point{},
			wantWidth:  0,
			wantHeight: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Arrange(tt.nodes)
			if !reflect.DeepEqual(l.Positions, tt.want) {
				t.Errorf("Arrange() positions = %v, want %v", l.Positions, tt.want)
			}
			if l.Width != tt.wantWidth || l.Height != tt.wantHeight {
				t.Errorf("Arrange() size = %vx%v, want %vx%v", l.Width, l.Height, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}
