package jsonout

import (
	"bytes"
	"testing"

	"github.com/matzehuels/shadebridge/pkg/graph"
)

func TestEmit(t *testing.T) {
	g := &graph.Graph{Renderer: "prman", Nodes: []graph.Node{{ID: "a", Type: "PxrSurface"}}}

	var buf bytes.Buffer
	if err := New().Emit(&buf, g); err != nil {
		t.Fatalf("Emit() error: %v", err)
	}
	back, err := graph.Unmarshal(buf.Bytes())
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back.Renderer != "prman" || len(back.Nodes) != 1 {
		t.Errorf("round trip lost data: %+v", back)
	}
	if back.Layout == nil || back.Layout.Positions["a"].Y != graph.RowHeight {
		t.Errorf("layout = %+v, want a at first row", back.Layout)
	}
	if g.Layout != nil {
		t.Error("Emit() modified its input")
	}
}

func TestEmitSkipLayout(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{{ID: "a"}}}

	var buf bytes.Buffer
	if err := (&Emitter{SkipLayout: true}).Emit(&buf, g); err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(buf.Bytes(), []byte(`"layout"`)) {
		t.Error("layout written despite SkipLayout")
	}
}
