package elab

import (
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/value"
)

// unfoldMetasInPlace replaces *term with its normal form, in which every
// metavariable solved during elaboration has been inlined (Quote always
// forces through solved metas, so evaluating and quoting the whole result
// term at the empty environment is exactly spec.md §4.H's final
// "quote_unfolding_metas" pass over the elaborated term). Any metavariable
// still unsolved at this point surfaces as a syntax.MetaVar node, matching
// what reportUnsolvedMetas then diagnoses.
func (e *Elaborator) unfoldMetasInPlace(term *syntax.Term) {
	*term = e.ctx.Normalise(value.LocalEnv{}, *term)
}
