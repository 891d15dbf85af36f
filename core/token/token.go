// Package token defines the small set of position and identifier types
// shared by every other package in the module: interned identifiers and
// byte-offset spans.
package token

import "fmt"

// Ident is an interned identifier: a compact id standing in for a source
// string so that core terms and values never carry a Go string directly.
// Two idents are the same identifier iff they compare equal; idents never
// compare by content.
type Ident uint16

// FileID identifies a source file within a compilation unit.
type FileID uint32

// Pos is a byte offset into a source file. The zero value means unknown.
type Pos uint32

// Span is a best-effort breadcrumb attached to every core term. Values
// carry no span: evaluation drops it, and a quoted term has the zero Span.
// It is never load-bearing for semantics, only for diagnostics.
type Span struct {
	File       FileID
	Start, End Pos
}

// Unknown reports whether the span carries no useful location.
func (s Span) Unknown() bool { return s.File == 0 && s.Start == 0 && s.End == 0 }

func (s Span) String() string {
	if s.Unknown() {
		return "<unknown>"
	}
	return fmt.Sprintf("file%d:%d-%d", s.File, s.Start, s.End)
}
