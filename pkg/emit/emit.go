// Package emit selects an output writer for converted graphs.
//
// Every format implements [Emitter]. Katana paste XML is the primary
// output; JSON is the interchange document; DOT, SVG, PNG and PDF are
// node-link diagrams for review.
package emit

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/matzehuels/shadebridge/pkg/emit/jsonout"
	"github.com/matzehuels/shadebridge/pkg/emit/katana"
	"github.com/matzehuels/shadebridge/pkg/emit/nodelink"
	"github.com/matzehuels/shadebridge/pkg/errors"
	"github.com/matzehuels/shadebridge/pkg/graph"
)

// Emitter writes a converted graph in one output format.
type Emitter interface {
	Emit(w io.Writer, g *graph.Graph) error
	Extension() string
}

// Output formats.
const (
	FormatXML  = "xml"
	FormatJSON = "json"
	FormatDOT  = nodelink.DOT
	FormatSVG  = nodelink.SVG
	FormatPNG  = nodelink.PNG
	FormatPDF  = nodelink.PDF
)

var formats = []string{FormatXML, FormatJSON, FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// Formats lists the supported output formats, the default first.
func Formats() []string {
	return append([]string(nil), formats...)
}

// New returns the emitter for format.
func New(format string) (Emitter, error) {
	switch strings.ToLower(format) {
	case FormatXML, "katana":
		return katana.New(), nil
	case FormatJSON:
		return jsonout.New(), nil
	case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
		return nodelink.New(strings.ToLower(format)), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput,
		"unknown output format %q (want one of %s)", format, strings.Join(formats, ", "))
}

// FormatFromPath infers the format from a file extension. Unknown or
// missing extensions yield the default format.
func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range formats {
		if f == ext {
			return f
		}
	}
	return FormatXML
}

// Write emits g to w in format.
func Write(w io.Writer, g *graph.Graph, format string) error {
	e, err := New(format)
	if err != nil {
		return err
	}
	if err := e.Emit(w, g); err != nil {
		return fmt.Errorf("emit %s: %w", format, err)
	}
	return nil
}
