// Package katana writes converted graphs in Katana's node-graph paste
// format.
//
// The document is a <katana> element holding one __SAVE_exportedNodes
// group. Every node becomes a shading node placed by [graph.Arrange]:
// consumers sit above the nodes that feed them. Parameters are written
// flat under the node's "parameters" group, as Katana lists them; a
// wired parameter is enabled and carries no literal value, its input
// port naming the upstream output instead.
//
// Pasting the output into Katana's node graph recreates the network.
package katana

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/shadebridge/pkg/graph"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// Katana build the paste targets by default.
const (
	DefaultRelease = "2.5v4"
	DefaultVersion = "2.5.1.000001"
)

// Shading node types per renderer. Materials use NetworkMaterial.
var shadingNodeTypes = map[string]string{
	"arnold": "ArnoldShadingNode",
	"prman":  "PrmanShadingNode",
}

const (
	materialType    = "networkMaterial"
	materialKatana  = "NetworkMaterial"
	fallbackShading = "ShadingNode"
)

// Emitter writes Katana paste XML.
type Emitter struct {
	Release string
	Version string
}

// New returns an emitter for the default Katana release.
func New() *Emitter {
	return &Emitter{Release: DefaultRelease, Version: DefaultVersion}
}

// Extension returns the file extension of the format.
func (e *Emitter) Extension() string { return ".xml" }

// Emit writes g to w.
func (e *Emitter) Emit(w io.Writer, g *graph.Graph) error {
	doc, err := e.Document(g)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode katana xml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// Document builds the XML tree for g.
func (e *Emitter) Document(g *graph.Graph) (*Document, error) {
	layout := g.Layout
	if layout == nil {
		l := graph.Arrange(g.Nodes)
		layout = &l
	}
	doc := &Document{
		Release: e.Release,
		Version: e.Version,
		Group:   Group{Name: "__SAVE_exportedNodes", Type: "Group"},
	}
	for _, n := range g.Nodes {
		pos, ok := layout.Positions[n.ID]
		if !ok {
			return nil, fmt.Errorf("node %s has no layout position", n.ID)
		}
		doc.Group.Nodes = append(doc.Group.Nodes, shadingNode(g.Renderer, n, pos))
	}
	return doc, nil
}

// Document is the paste root.
type Document struct {
	XMLName xml.Name `xml:"katana"`
	Release string   `xml:"release,attr"`
	Version string   `xml:"version,attr"`
	Group   Group    `xml:"node"`
}

// Group encloses the pasted nodes.
type Group struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Nodes []Node `xml:"node"`
}

// Node is one Katana node.
type Node struct {
	Name   string      `xml:"name,attr"`
	Type   string      `xml:"type,attr"`
	X      string      `xml:"x,attr"`
	Y      string      `xml:"y,attr"`
	ColorR string      `xml:"ns_colorr,attr,omitempty"`
	ColorG string      `xml:"ns_colorg,attr,omitempty"`
	ColorB string      `xml:"ns_colorb,attr,omitempty"`
	Ports  []Port      `xml:"port"`
	Params []Parameter `xml:",any"`
}

// Port is an input or output of a node.
type Port struct {
	Type   string `xml:"type,attr"`
	Name   string `xml:"name,attr"`
	Source string `xml:"source,attr,omitempty"`
}

// Parameter is any Katana parameter element. XMLName carries the
// element kind (group_parameter, number_parameter, ...).
type Parameter struct {
	XMLName   xml.Name
	Name      string      `xml:"name,attr"`
	Value     string      `xml:"value,attr,omitempty"`
	Size      string      `xml:"size,attr,omitempty"`
	TupleSize string      `xml:"tupleSize,attr,omitempty"`
	Children  []Parameter `xml:",any"`
}

func shadingNode(renderer string, n graph.Node, pos graph.Point) Node {
	typ := nodeType(renderer, n.Type)
	out := Node{
		Name: n.ID,
		Type: typ,
		X:    formatFloat(pos.X),
		Y:    formatFloat(pos.Y),
	}
	if len(n.Color) >= 3 {
		out.ColorR = formatFloat(n.Color[0])
		out.ColorG = formatFloat(n.Color[1])
		out.ColorB = formatFloat(n.Color[2])
	}
	for _, port := range n.Ports {
		p := Port{Type: "in", Name: port}
		if c, ok := n.Connections[port]; ok {
			p.Source = target.OutputRef(c)
		}
		out.Ports = append(out.Ports, p)
	}
	if typ != materialKatana {
		out.Ports = append(out.Ports, Port{Type: "out", Name: "out"})
	}

	params := param("group_parameter", "parameters")
	flatten(n.Params, &params.Children)
	top := param("group_parameter", typ)
	top.Children = []Parameter{
		{XMLName: xml.Name{Local: "string_parameter"}, Name: "name", Value: n.ID},
		{XMLName: xml.Name{Local: "string_parameter"}, Name: "nodeType", Value: n.Type},
		params,
	}
	out.Params = []Parameter{top}
	return out
}

func nodeType(renderer, typ string) string {
	if typ == materialType {
		return materialKatana
	}
	if t, ok := shadingNodeTypes[renderer]; ok {
		return t
	}
	return fallbackShading
}

// flatten writes every parameter that carries a value or a wire. Groups
// without either only contribute their members.
func flatten(ps []graph.Param, out *[]Parameter) {
	for _, p := range ps {
		if p.Connected || p.Value != nil {
			*out = append(*out, leaf(p))
		}
		flatten(p.Params, out)
	}
}

func leaf(p graph.Param) Parameter {
	g := param("group_parameter", p.Name)
	enable := "0"
	if p.Enabled || p.Connected {
		enable = "1"
	}
	g.Children = append(g.Children, Parameter{
		XMLName: xml.Name{Local: "number_parameter"}, Name: "enable", Value: enable,
	})
	if p.Connected {
		return g
	}
	v := value(p.Value)
	if p.Kind == graph.KindArray && p.TupleSize > 0 {
		v.TupleSize = strconv.Itoa(p.TupleSize)
	}
	g.Children = append(g.Children, v)
	return g
}

func value(v any) Parameter {
	switch x := v.(type) {
	case string:
		return Parameter{XMLName: xml.Name{Local: "string_parameter"}, Name: "value", Value: x}
	case []float64:
		arr := Parameter{
			XMLName: xml.Name{Local: "numberarray_parameter"},
			Name:    "value",
			Size:    strconv.Itoa(len(x)),
		}
		for i, f := range x {
			arr.Children = append(arr.Children, Parameter{
				XMLName: xml.Name{Local: "number_parameter"},
				Name:    "i" + strconv.Itoa(i),
				Value:   formatFloat(f),
			})
		}
		return arr
	case []any:
		arr := Parameter{
			XMLName: xml.Name{Local: "stringarray_parameter"},
			Name:    "value",
			Size:    strconv.Itoa(len(x)),
		}
		for i, s := range x {
			arr.Children = append(arr.Children, Parameter{
				XMLName: xml.Name{Local: "string_parameter"},
				Name:    "i" + strconv.Itoa(i),
				Value:   fmt.Sprint(s),
			})
		}
		return arr
	default:
		return Parameter{XMLName: xml.Name{Local: "number_parameter"}, Name: "value", Value: formatNumber(v)}
	}
}

func param(kind, name string) Parameter {
	return Parameter{XMLName: xml.Name{Local: kind}, Name: name}
}

func formatNumber(v any) string {
	switch x := v.(type) {
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
