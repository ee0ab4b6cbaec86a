// Package nodelink draws converted graphs as node-link diagrams.
//
// [ToDOT] builds a Graphviz description with one box per node, filled with
// the node's editor color, and one edge per wire labelled with the input
// port it feeds. [RenderSVG] lays the description out with the embedded
// Graphviz; PNG and PDF are produced from the SVG by rsvg-convert.
package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/shadebridge/pkg/graph"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// Output formats.
const (
	DOT = "dot"
	SVG = "svg"
	PNG = "png"
	PDF = "pdf"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the source type and the literal parameter values to
	// node labels. When false, only the ID and target type are shown.
	Detailed bool
}

// Emitter writes a diagram in one of the output formats.
type Emitter struct {
	Format  string
	Scale   float64
	Options Options
}

// New returns an emitter for format.
func New(format string) *Emitter {
	return &Emitter{Format: format, Scale: 2}
}

// Extension returns the file extension of the format.
func (e *Emitter) Extension() string { return "." + e.Format }

// Emit writes the diagram of g to w.
func (e *Emitter) Emit(w io.Writer, g *graph.Graph) error {
	dot := ToDOT(g, e.Options)
	var (
		out []byte
		err error
	)
	switch e.Format {
	case DOT:
		out = []byte(dot)
	case SVG:
		out, err = RenderSVG(dot)
	case PNG:
		out, err = RenderPNG(dot, e.Scale)
	case PDF:
		out, err = RenderPDF(dot)
	default:
		return fmt.Errorf("unsupported diagram format %q", e.Format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// ToDOT converts a graph to Graphviz DOT format. Edges point from the
// upstream node to the consumer, so the material ends up at the bottom.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range g.Nodes {
		for _, port := range slices.Sorted(maps.Keys(n.Connections)) {
			c := n.Connections[port]
			label := port
			if out := target.OutputPort(c); out != "out" {
				label = strings.TrimPrefix(out, "out") + " -> " + port
			}
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", c.Node, n.ID, label)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	head := n.ID + "\n" + n.Type
	if !detailed {
		return head
	}
	parts := []string{head}
	if n.SourceType != "" && n.SourceType != n.Type {
		parts = append(parts, "from: "+n.SourceType)
	}
	var walk func(ps []graph.Param)
	walk = func(ps []graph.Param) {
		for _, p := range ps {
			if p.Value != nil && !p.Connected && p.Kind != graph.KindArray {
				parts = append(parts, fmt.Sprintf("%s: %v", p.Name, p.Value))
			}
			walk(p.Params)
		}
	}
	walk(n.Params)
	return strings.Join(parts, "\n")
}

func fmtAttrs(n graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if len(n.Color) >= 3 {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", hexColor(n.Color)), "fontcolor=white")
	}
	return attrs
}

func hexColor(c []float64) string {
	var b strings.Builder
	b.WriteByte('#')
	for _, f := range c[:3] {
		fmt.Fprintf(&b, "%02x", int(min(max(f, 0), 1)*255+0.5))
	}
	return b.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with
// its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}
