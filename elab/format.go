package elab

import (
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/value"
	"github.com/mna/calyx/surface"
)

// Format descriptions are typed at Universe (see DESIGN.md's Open
// Question ledger), so elaborating one field is simply Check(_, Universe);
// the interesting part is the scoping: each field after the first is
// elaborated with every preceding field's label Def-bound to a variable of
// that field's representation type, per spec.md §4.H.

func (e *Elaborator) synthFormatRecord(t *surface.FormatRecord) (syntax.Term, value.Value) {
	formatTerms := e.checkFormatFields(t.Labels, t.Formats)
	return syntax.NewFormatRecord(t.Span(), t.Labels, formatTerms), value.TheUniverse
}

func (e *Elaborator) synthFormatOverlap(t *surface.FormatOverlap) (syntax.Term, value.Value) {
	formatTerms := e.checkFormatFields(t.Labels, t.Formats)
	return syntax.NewFormatOverlap(t.Span(), t.Labels, formatTerms), value.TheUniverse
}

// checkFormatFields checks each field's format in sequence, Def-binding its
// label to a fresh variable of its representation type before moving on to
// the next field, then pops every binding before returning.
func (e *Elaborator) checkFormatFields(labels []token.Ident, formatsSurf []surface.Term) []syntax.Term {
	formatTerms := make([]syntax.Term, len(formatsSurf))
	pushed := 0
	for i, fSurf := range formatsSurf {
		fTerm := e.Check(fSurf, value.TheUniverse)
		formatTerms[i] = fTerm
		fVal := e.eval(fTerm)
		reprTyp := e.ctx.FormatRepr(fVal)
		fresh := value.NewStuck(value.LocalVarHead(e.envLen()))
		e.pushDef(labels[i], reprTyp, fresh)
		pushed++
	}
	for ; pushed > 0; pushed-- {
		e.pop()
	}
	return formatTerms
}

// synthFormatCond elaborates a conditional format: Format is checked as a
// format, Cond is checked against Bool in a scope where Name is bound to a
// fresh variable of type format_repr(Format), matching how eval.go's
// *syntax.FormatCond case constructs the value.FormatCond's Cond closure.
func (e *Elaborator) synthFormatCond(t *surface.FormatCond) (syntax.Term, value.Value) {
	formatTerm := e.Check(t.Format, value.TheUniverse)
	formatVal := e.eval(formatTerm)
	reprTyp := e.ctx.FormatRepr(formatVal)

	fresh := value.NewStuck(value.LocalVarHead(e.envLen()))
	e.pushParam(t.Name, reprTyp, fresh)
	condTerm := e.Check(t.Cond, value.NewStuck(value.PrimHead(syntax.BoolType)))
	e.pop()

	name := syntax.Name{Ident: t.Name, Span: t.Span()}
	return syntax.NewFormatCond(t.Span(), name, formatTerm, condTerm), value.TheUniverse
}
