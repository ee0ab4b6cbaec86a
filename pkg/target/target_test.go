package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/shadebridge/pkg/scene"
)

func TestOutputPort(t *testing.T) {
	tests := []struct {
		port, want string
	}{
		{"outColor", "out"},
		{"outColorR", "out.r"},
		{"outColorB", "out.b"},
		{"outValueX", "out.x"},
		{"outAlpha", "out"},
		{"", "out"},
		{"message", "out"},
	}
	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputPort(scene.Connection{Node: "n", Port: tt.port}))
		})
	}
	assert.Equal(t, "file1.out.g", OutputRef(scene.Connection{Node: "file1", Port: "outColorG"}))
}

func TestParamTree(t *testing.T) {
	n := &Node{ID: "std"}
	kd := &Param{Name: "Kd", Kind: Group, Enabled: true, Value: 0.8}
	SetIn(kd, &Param{Name: "Kd_color", Enabled: true, Value: []float64{1, 0, 0}})
	n.Set(kd)
	n.Set(&Param{Name: "opacity", Connected: true, Enabled: true})

	require.NotNil(t, n.Find("Kd_color"))
	assert.Nil(t, n.Find("missing"))

	n.Set(&Param{Name: "opacity", Value: 1.0})
	assert.Len(t, n.Params, 2)
	assert.False(t, n.Find("opacity").Connected)

	var names []string
	n.Walk(func(p *Param, depth int) { names = append(names, p.Name) })
	assert.Equal(t, []string{"Kd", "Kd_color", "opacity"}, names)

	assert.True(t, n.Remove("opacity"))
	assert.False(t, n.Remove("opacity"))
}

func TestArrayElements(t *testing.T) {
	p := &Param{Kind: Array, TupleSize: 3, Value: []float64{1, 1, 1, 0, 0, 0}}
	assert.Equal(t, 2, p.Elements())
	p = &Param{Kind: Array, TupleSize: 1, Value: []float64{0, 0.5, 1}}
	assert.Equal(t, 3, p.Elements())
}

func TestPortsAndWires(t *testing.T) {
	n := &Node{ID: "mtl", Ports: []string{"arnoldSurface", "arnoldDisplacement"}}
	n.Connect("arnoldSurface", scene.Connection{Node: "std"})
	n.Connect("zzz", scene.Connection{Node: "x"})
	n.AddPort("arnoldBump")
	n.AddPort("arnoldBump")

	assert.Equal(t, []string{"arnoldSurface", "arnoldDisplacement", "arnoldBump"}, n.Ports)
	assert.Equal(t, []string{"arnoldSurface", "zzz"}, n.WiredPorts())

	n.RemovePort("arnoldSurface")
	assert.False(t, n.Connected("arnoldSurface"))
	assert.False(t, n.HasPort("arnoldSurface"))
}

func TestCloneIsDeep(t *testing.T) {
	n := &Node{
		ID:     "ramp1",
		Params: []*Param{{Name: "position", Kind: Array, Value: []float64{0, 1}}},
		Ports:  []string{"input"},
		Color:  []float64{0.1, 0.2, 0.3},
	}
	c := n.Clone()
	c.Params[0].Value.([]float64)[0] = 9
	c.Ports[0] = "x"
	c.Connect("input", scene.Connection{Node: "u"})

	assert.Equal(t, 0.0, n.Params[0].Value.([]float64)[0])
	assert.Equal(t, "input", n.Ports[0])
	assert.Nil(t, n.Connections)
}
