package ramp

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/shadebridge/pkg/scene"
)

// Attribute names of a source ramp entry.
const (
	EntryList     = "colorEntryList"
	FieldPosition = "position"
	FieldColor    = "color"
)

// ControlPoint is one ramp entry.
type ControlPoint struct {
	Index     int       // sparse index in the source list
	Position  float64   //
	Value     []float64 // literal value; nil when the entry is wired
	Connected bool
	Source    scene.Connection // upstream of a wired entry
}

// ValuePort returns the source port carrying the entry value.
func (p ControlPoint) ValuePort() string {
	return scene.Indexed(EntryList, p.Index, FieldColor)
}

// Collect gathers the control points of a source ramp, sorted by
// position. Entries with equal positions keep their index order.
func Collect(n *scene.Node) []ControlPoint {
	byIndex := map[int]*ControlPoint{}
	get := func(i int) *ControlPoint {
		p, ok := byIndex[i]
		if !ok {
			p = &ControlPoint{Index: i}
			byIndex[i] = p
		}
		return p
	}
	for key, v := range n.Attributes {
		name, i, field, ok := scene.ParseIndexed(key)
		if !ok || name != EntryList {
			continue
		}
		switch field {
		case FieldPosition:
			if f, ok := scene.AsFloat(v); ok {
				get(i).Position = f
			}
		case FieldColor:
			if tup, ok := scene.AsTuple(v); ok {
				get(i).Value = tup
			}
		}
	}
	for port, c := range n.Connections {
		name, i, field, ok := scene.ParseIndexed(port)
		if !ok || name != EntryList || (field != FieldColor && field != "") {
			continue
		}
		p := get(i)
		p.Connected = true
		p.Source = c
	}

	out := make([]ControlPoint, 0, len(byIndex))
	for _, p := range byIndex {
		out = append(out, *p)
	}
	Sort(out)
	return out
}

// Sort orders points by position, then by source index.
func Sort(points []ControlPoint) {
	slices.SortStableFunc(points, func(a, b ControlPoint) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
}

// Action is what a ramp becomes in the target graph.
type Action int

const (
	// ActionDrop removes the ramp. Nothing meaningful feeds it.
	ActionDrop Action = iota
	// ActionCollapse replaces the ramp by the source of its single entry.
	ActionCollapse
	// ActionBlend replaces the ramp by a two-input blend and a weight ramp.
	ActionBlend
	// ActionEncode emits a fixed-layout target ramp.
	ActionEncode
)

func (a Action) String() string {
	return [...]string{"drop", "collapse", "blend", "encode"}[a]
}

// Classify decides how a ramp with the given points is converted.
func Classify(points []ControlPoint) Action {
	switch {
	case len(points) == 0:
		return ActionDrop
	case len(points) == 1:
		return ActionCollapse
	case len(points) == 2 && AnyConnected(points):
		return ActionBlend
	default:
		return ActionEncode
	}
}

// AnyConnected reports whether any point is wired.
func AnyConnected(points []ControlPoint) bool {
	return slices.ContainsFunc(points, func(p ControlPoint) bool { return p.Connected })
}

// Layout is an encoded ramp.
type Layout struct {
	Positions []float64 // len(points)+2
	Values    []float64 // (len(points)+2)*TupleSize, flattened
	TupleSize int
	// Wired maps running indices stored in Values to the wire feeding that
	// entry. Empty unless some point was connected.
	Wired map[int]scene.Connection
}

// Count returns the number of slots.
func (l Layout) Count() int { return len(l.Positions) }

// Slot returns the value of slot i.
func (l Layout) Slot(i int) []float64 {
	return l.Values[i*l.TupleSize : (i+1)*l.TupleSize]
}

// Encode builds the padded array layout for points, which must be sorted.
// Values are fitted to tupleSize components: scalars are broadcast,
// longer tuples truncated, shorter ones padded with their last component.
//
// When any point is wired, every slot holds the running index of its
// entry instead of a literal, and Wired maps each index that has a wire
// to it.
func Encode(points []ControlPoint, tupleSize int) (Layout, error) {
	if len(points) < 2 {
		return Layout{}, fmt.Errorf("ramp needs at least 2 points to encode, got %d", len(points))
	}
	if tupleSize < 1 {
		tupleSize = 1
	}
	indexed := AnyConnected(points)
	l := Layout{TupleSize: tupleSize}
	if indexed {
		l.Wired = make(map[int]scene.Connection)
	}

	vals := make([][]float64, len(points))
	for i, p := range points {
		if indexed {
			vals[i] = fit([]float64{float64(i)}, tupleSize)
			if p.Connected {
				l.Wired[i] = p.Source
			}
			continue
		}
		vals[i] = fit(p.Value, tupleSize)
	}

	last := len(points) - 1
	l.Positions = make([]float64, 0, len(points)+2)
	l.Positions = append(l.Positions, 0)
	l.Values = append(l.Values, vals[0]...)
	for i, p := range points {
		l.Positions = append(l.Positions, p.Position)
		l.Values = append(l.Values, vals[i]...)
	}
	l.Positions = append(l.Positions, 1)
	l.Values = append(l.Values, vals[last]...)
	return l, nil
}

func fit(v []float64, n int) []float64 {
	out := make([]float64, n)
	if len(v) == 0 {
		return out
	}
	for i := range out {
		out[i] = v[min(i, len(v)-1)]
	}
	return out
}
