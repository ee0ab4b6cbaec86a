package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/shadebridge/pkg/diag"
	"github.com/matzehuels/shadebridge/pkg/pipeline"
	"github.com/matzehuels/shadebridge/pkg/scene"
	"github.com/matzehuels/shadebridge/pkg/target"
)

// uiOut receives status output. Stdout is reserved for emitted documents.
var uiOut io.Writer = os.Stderr

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError   = lipgloss.NewStyle().Foreground(colorRed)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCell     = lipgloss.NewStyle().Padding(0, 1)
)

// headerRow is the row index lipgloss tables pass for the header.
const headerRow = -1

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(uiOut, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(uiOut, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(uiOut, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(uiOut, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(uiOut, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Run Summary
// =============================================================================

// printStats prints one result's counts on a single line.
func printStats(res *pipeline.Result) {
	parts := []string{
		fmt.Sprintf("%d → %d nodes", res.Stats.SourceNodes, res.Stats.Nodes),
		res.Renderer,
	}
	if res.Stats.Renames > 0 {
		parts = append(parts, fmt.Sprintf("%d renames", res.Stats.Renames))
	}
	if n := res.Diagnostics.Len(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d diagnostics", n))
	}
	if res.CacheHit {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Fprintln(uiOut, line)
}

// =============================================================================
// Tables
// =============================================================================

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}

// diagnosticsTable renders d, errors first.
func diagnosticsTable(d *diag.Diagnostics) string {
	all := d.All()
	rows := make([][]string, len(all))
	for i, x := range all {
		node := x.Node
		if x.Port != "" {
			node += "." + x.Port
		}
		rows[i] = []string{x.Severity.String(), string(x.Code), node, x.Message}
	}
	return newTable("Severity", "Code", "Node", "Message").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader.Padding(0, 1)
			}
			if col != 0 {
				return styleCell
			}
			switch all[row].Severity {
			case diag.SeverityError:
				return styleCell.Foreground(colorRed)
			case diag.SeverityWarning:
				return styleCell.Foreground(colorYellow)
			default:
				return styleCell.Foreground(colorGray)
			}
		}).
		Render()
}

func printDiagnostics(d *diag.Diagnostics) {
	if d == nil || d.Len() == 0 {
		return
	}
	fmt.Fprintln(uiOut, diagnosticsTable(d))
}

// nodesTable lists converted nodes with their wired inputs.
func nodesTable(nodes []*target.Node) string {
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		var inputs []string
		for _, port := range n.WiredPorts() {
			inputs = append(inputs, port+" ← "+target.OutputRef(n.Connections[port]))
		}
		rows[i] = []string{n.ID, n.Type, n.SourceType, strings.Join(inputs, "\n")}
	}
	return newTable("Node", "Type", "From", "Inputs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader.Padding(0, 1)
			}
			if col == 0 {
				return styleCell.Foreground(colorCyan)
			}
			return styleCell
		}).
		Render()
}

func renamesTable(renames []scene.Rename) string {
	rows := make([][]string, len(renames))
	for i, r := range renames {
		to := r.New
		if r.Port != "" {
			to += "." + r.Port
		}
		from := r.Old
		if r.From != "" {
			from += "." + r.From
		}
		rows[i] = []string{from, to}
	}
	return newTable("From", "To").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader.Padding(0, 1)
			}
			return styleCell
		}).
		Render()
}
