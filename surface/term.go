// Package surface defines the tree shape the parser is assumed to hand to
// the elaborator: identifiers are already interned, spans already
// attached, and numeric literals still carry their source text (width and
// signedness are only known once the elaborator sees the expected type).
package surface

import (
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
)

// Term is any surface-syntax node.
type Term interface {
	Span() token.Span
	term()
}

type termBase struct{ span token.Span }

func (b termBase) Span() token.Span { return b.span }
func (termBase) term()              {}

// Var is a reference to a bound name, resolved by the elaborator against
// its scope stack.
type Var struct {
	termBase
	Name token.Ident
}

// Hole stands for `_`: a placeholder the elaborator fills with fresh
// metavariables for both the term and its type.
type Hole struct{ termBase }

// Ann is an explicitly type-annotated term.
type Ann struct {
	termBase
	Expr Term
	Type Term
}

// Let is a local binding: Type is nil when the binding omits its
// annotation and Def's type should be synthesised instead.
type Let struct {
	termBase
	Name token.Ident
	Type Term // nil if omitted
	Def  Term
	Body Term
}

// Universe is the literal `Type`.
type Universe struct{ termBase }

// FunType is a dependent function type `fun (name : Param) -> Body`.
type FunType struct {
	termBase
	Name  token.Ident
	Param Term
	Body  Term
}

// FunLit is a function literal `fun name => Body`.
type FunLit struct {
	termBase
	Name token.Ident
	Body Term
}

// App is function application.
type App struct {
	termBase
	Head Term
	Arg  Term
}

// RecordType is a dependent record type `{ l1 : T1, l2 : T2, ... }`.
type RecordType struct {
	termBase
	Labels []token.Ident
	Types  []Term
}

// RecordLit is a record literal `{ l1 = e1, l2 = e2, ... }`.
type RecordLit struct {
	termBase
	Labels []token.Ident
	Exprs  []Term
}

// Proj is a record field projection `e.label`.
type Proj struct {
	termBase
	Head  Term
	Label token.Ident
}

// ArrayLit is an array literal `[e1, e2, ...]`.
type ArrayLit struct {
	termBase
	Exprs []Term
}

// NumberLit is a numeric literal as written in source; its width and
// signedness are not yet known, only its digits and the radix/casing the
// source used (carried so diagnostics and the distiller can round-trip
// the author's own style).
type NumberLit struct {
	termBase
	Text  string
	Style syntax.NumStyle
}

// BoolLit is a literal `true` or `false`.
type BoolLit struct {
	termBase
	Value bool
}

// MatchArm pairs a constant pattern (always a NumberLit or BoolLit) with
// its body.
type MatchArm struct {
	Pattern Term
	Body    Term
}

// Match is a constant-match expression. Default is nil when the match has
// no catch-all arm.
type Match struct {
	termBase
	Scrutinee Term
	Arms      []MatchArm
	Default   Term // nil if absent
}

// FormatRecord is a sequential format description `{ l1 <- f1, l2 <- f2, ... }`
// where each field's format may refer to the representation of prior
// fields by name.
type FormatRecord struct {
	termBase
	Labels  []token.Ident
	Formats []Term
}

// FormatOverlap is a format description where every field starts at the
// same stream position.
type FormatOverlap struct {
	termBase
	Labels  []token.Ident
	Formats []Term
}

// FormatCond is a conditional format: Name binds the representation of
// Format for Cond to refer to.
type FormatCond struct {
	termBase
	Name   token.Ident
	Format Term
	Cond   Term
}

func newBase(s token.Span) termBase { return termBase{span: s} }

func NewVar(s token.Span, name token.Ident) *Var { return &Var{newBase(s), name} }
func NewHole(s token.Span) *Hole                 { return &Hole{newBase(s)} }
func NewAnn(s token.Span, expr, typ Term) *Ann   { return &Ann{newBase(s), expr, typ} }

func NewLet(s token.Span, name token.Ident, typ, def, body Term) *Let {
	return &Let{newBase(s), name, typ, def, body}
}

func NewUniverse(s token.Span) *Universe { return &Universe{newBase(s)} }

func NewFunType(s token.Span, name token.Ident, param, body Term) *FunType {
	return &FunType{newBase(s), name, param, body}
}

func NewFunLit(s token.Span, name token.Ident, body Term) *FunLit {
	return &FunLit{newBase(s), name, body}
}

func NewApp(s token.Span, head, arg Term) *App { return &App{newBase(s), head, arg} }

func NewRecordType(s token.Span, labels []token.Ident, types []Term) *RecordType {
	return &RecordType{newBase(s), labels, types}
}

func NewRecordLit(s token.Span, labels []token.Ident, exprs []Term) *RecordLit {
	return &RecordLit{newBase(s), labels, exprs}
}

func NewProj(s token.Span, head Term, label token.Ident) *Proj {
	return &Proj{newBase(s), head, label}
}

func NewArrayLit(s token.Span, exprs []Term) *ArrayLit { return &ArrayLit{newBase(s), exprs} }

func NewNumberLit(s token.Span, text string, style syntax.NumStyle) *NumberLit {
	return &NumberLit{newBase(s), text, style}
}

func NewBoolLit(s token.Span, v bool) *BoolLit { return &BoolLit{newBase(s), v} }

func NewMatch(s token.Span, scrutinee Term, arms []MatchArm, def Term) *Match {
	return &Match{newBase(s), scrutinee, arms, def}
}

func NewFormatRecord(s token.Span, labels []token.Ident, formats []Term) *FormatRecord {
	return &FormatRecord{newBase(s), labels, formats}
}

func NewFormatOverlap(s token.Span, labels []token.Ident, formats []Term) *FormatOverlap {
	return &FormatOverlap{newBase(s), labels, formats}
}

func NewFormatCond(s token.Span, name token.Ident, format, cond Term) *FormatCond {
	return &FormatCond{newBase(s), name, format, cond}
}
