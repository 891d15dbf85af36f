// Package syntax defines the core term representation: the tagged-union
// term produced by the elaborator, its constants and primitive set, and
// span annotations. Every subterm pointer refers into the core arena owned
// by the compilation unit; terms are immutable after construction.
package syntax

import "github.com/mna/calyx/core/token"

// LocalInfoKind tags whether a binding captured by a metavariable snapshot
// is a parameter (applied on lookup) or a definition (substituted via the
// evaluator, never applied).
type LocalInfoKind uint8

const (
	Def LocalInfoKind = iota
	Param
)

// LocalInfo records one binding in scope at the point a metavariable was
// inserted.
type LocalInfo struct {
	Kind LocalInfoKind
	Name token.Ident
}

// Term is any core-language term. Every concrete type below implements
// Term via the unexported term() marker method, the way the teacher's
// ast.Expr/ast.Stmt interfaces seal their variant sets.
type Term interface {
	Span() token.Span
	term()
}

type termBase struct {
	span token.Span
}

func (t termBase) Span() token.Span { return t.span }
func (termBase) term()              {}

// ItemVar refers to a top-level item by its de Bruijn level.
type ItemVar struct {
	termBase
	Level int
}

// LocalVar refers to a local binding by its de Bruijn index (distance from
// the binding site, outward). Indices survive closure instantiation.
type LocalVar struct {
	termBase
	Index int
}

// MetaVar refers to a metavariable by its de Bruijn level (distance from
// the root, inward). Levels survive prefix extension.
type MetaVar struct {
	termBase
	Level int
}

// InsertedMeta is a metavariable together with the snapshot of bindings in
// scope at the point of insertion. Evaluating it applies the meta to every
// Param in scope and substitutes every Def.
type InsertedMeta struct {
	termBase
	Level      int
	LocalInfos []LocalInfo
}

// Ann is an explicitly type-annotated term.
type Ann struct {
	termBase
	Expr Term
	Type Term
}

// Let introduces a local definition visible in Body.
type Let struct {
	termBase
	Name Name
	Type Term
	Def  Term
	Body Term
}

// Name pairs a binding's source identifier with its span, purely for
// diagnostics and the distiller; it carries no semantic weight.
type Name struct {
	Ident token.Ident
	Span  token.Span
}

// Universe is the type of types.
type Universe struct {
	termBase
}

// FunType is a dependent function type (A : paramType) -> bodyType.
type FunType struct {
	termBase
	ParamName Name
	ParamType Term
	BodyType  Term
}

// FunLit is a function literal fun x => body.
type FunLit struct {
	termBase
	ParamName Name
	Body      Term
}

// FunApp applies Head to Arg.
type FunApp struct {
	termBase
	Head Term
	Arg  Term
}

// RecordType is a dependent record type { l1 : T1, l2 : T2(l1), ... }.
type RecordType struct {
	termBase
	Labels []token.Ident
	Types  []Term
}

// RecordLit is a record literal { l1 = e1, l2 = e2, ... }.
type RecordLit struct {
	termBase
	Labels []token.Ident
	Exprs  []Term
}

// RecordProj projects a field by label.
type RecordProj struct {
	termBase
	Head  Term
	Label token.Ident
}

// ArrayLit is an array literal [e1, e2, ...].
type ArrayLit struct {
	termBase
	Exprs []Term
}

// FormatRecord is a format description whose fields are bound in sequence,
// each subsequent field scoping over the representation of the previous
// ones.
type FormatRecord struct {
	termBase
	Labels  []token.Ident
	Formats []Term
}

// FormatCond is a conditional format: a field of Format whose parsed value
// must additionally satisfy Cond.
type FormatCond struct {
	termBase
	Name   Name
	Format Term
	Cond   Term
}

// FormatOverlap is a format description whose fields all start at the same
// stream position (a union-like layout).
type FormatOverlap struct {
	termBase
	Labels  []token.Ident
	Formats []Term
}

// PrimTerm is a reference to a built-in primitive operator. Named PrimTerm
// rather than Prim to avoid colliding with the Prim primitive-id type
// defined in prim.go.
type PrimTerm struct {
	termBase
	Prim Prim
}

// ConstLit is a constant literal.
type ConstLit struct {
	termBase
	Const Const
}

// ConstMatch pattern-matches Head against a set of constant branches, with
// an optional Default evaluated (with Head bound) when no branch matches.
type ConstMatch struct {
	termBase
	Head     Term
	Patterns []Const
	Branches []Term
	Default  Term // nil if absent
}
