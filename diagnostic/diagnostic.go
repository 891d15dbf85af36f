// Package diagnostic collects severity-tagged, span-located messages
// emitted while elaborating a compilation unit. It follows the teacher's
// scanner.ErrorList shape (Add, Sort, Err) widened with a Severity field.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mna/calyx/core/token"
)

// Severity classifies a Diagnostic. Bug indicates an internal compiler
// assertion failure; the other three are user-facing.
type Severity uint8

const (
	Bug Severity = iota
	Error
	Warning
	Help
)

func (s Severity) String() string {
	switch s {
	case Bug:
		return "bug"
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Help:
		return "help"
	default:
		return "unknown"
	}
}

// Diagnostic is a single message surfaced to the caller of the elaborator.
type Diagnostic struct {
	Severity Severity
	Span     token.Span
	Message  string
}

func (d Diagnostic) String() string {
	return d.Severity.String() + ": " + d.Message + " (" + d.Span.String() + ")"
}

// List accumulates diagnostics in the order they are produced and can sort
// them into source position order (file, then start offset) for stable,
// deterministic output, matching spec.md §5's depth-first/source-order
// ordering guarantee for the common case of straight-line elaboration.
type List struct {
	items []Diagnostic
}

// Add appends a diagnostic to the list.
func (l *List) Add(d Diagnostic) { l.items = append(l.items, d) }

// Addf is a convenience for adding a formatted message.
func (l *List) Addf(sev Severity, span token.Span, format string, args ...any) {
	l.Add(Diagnostic{Severity: sev, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Len reports how many diagnostics have been collected.
func (l *List) Len() int { return len(l.items) }

// All returns the collected diagnostics in insertion order.
func (l *List) All() []Diagnostic { return l.items }

// HasErrors reports whether any diagnostic at Error or Bug severity was
// added.
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.Severity == Error || d.Severity == Bug {
			return true
		}
	}
	return false
}

// Sort orders the diagnostics by (File, Start, End), matching the
// depth-first source-position ordering spec.md §5 requires.
func (l *List) Sort() {
	sort.SliceStable(l.items, func(i, j int) bool {
		a, b := l.items[i].Span, l.items[j].Span
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})
}

// Err renders every collected diagnostic into a single error, or nil if the
// list is empty.
func (l *List) Err() error {
	if len(l.items) == 0 {
		return nil
	}
	var sb strings.Builder
	for i, d := range l.items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(d.String())
	}
	return listErr(sb.String())
}

type listErr string

func (e listErr) Error() string { return string(e) }
