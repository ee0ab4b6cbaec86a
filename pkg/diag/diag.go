// Package diag collects the recoverable conditions met during a conversion
// run: hook failures, dropped references, values without a target
// equivalent. A run never aborts for these; they are returned to the
// caller alongside the partially converted graph.
package diag

import (
	"fmt"
	"strings"

	"github.com/matzehuels/shadebridge/pkg/errors"
)

// Severity orders diagnostics from informational to error.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reported condition.
type Diagnostic struct {
	Severity Severity
	Code     errors.Code
	Node     string // node the condition was found on, if any
	Port     string // port or attribute, if any
	Message  string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Node != "" {
		b.WriteString(d.Node)
		if d.Port != "" {
			b.WriteString(".")
			b.WriteString(d.Port)
		}
		b.WriteString(": ")
	}
	if d.Code != "" {
		fmt.Fprintf(&b, "[%s] ", d.Code)
	}
	b.WriteString(d.Message)
	return b.String()
}

// Diagnostics holds every condition reported during one run, grouped by
// severity in report order.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Add appends d to the group matching its severity.
func (d *Diagnostics) Add(x Diagnostic) {
	switch x.Severity {
	case SeverityError:
		d.Errors = append(d.Errors, x)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, x)
	default:
		d.Infos = append(d.Infos, x)
	}
}

// AddError records an error-level diagnostic.
func (d *Diagnostics) AddError(code errors.Code, node, port, format string, args ...any) {
	d.Add(Diagnostic{SeverityError, code, node, port, fmt.Sprintf(format, args...)})
}

// AddWarning records a warning-level diagnostic.
func (d *Diagnostics) AddWarning(code errors.Code, node, port, format string, args ...any) {
	d.Add(Diagnostic{SeverityWarning, code, node, port, fmt.Sprintf(format, args...)})
}

// AddInfo records an info-level diagnostic.
func (d *Diagnostics) AddInfo(code errors.Code, node, port, format string, args ...any) {
	d.Add(Diagnostic{SeverityInfo, code, node, port, fmt.Sprintf(format, args...)})
}

// Merge appends all of other's diagnostics.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// Len returns the total number of diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// All returns every diagnostic, errors first.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, d.Len())
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)
	return append(out, d.Infos...)
}

// WithCode returns the diagnostics carrying code, in report order.
func (d *Diagnostics) WithCode(code errors.Code) []Diagnostic {
	var out []Diagnostic
	for _, x := range d.All() {
		if x.Code == code {
			out = append(out, x)
		}
	}
	return out
}

// HasErrors reports whether any error-level diagnostic was recorded.
func (d *Diagnostics) HasErrors() bool { return len(d.Errors) > 0 }
