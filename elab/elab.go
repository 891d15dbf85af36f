// Package elab implements bidirectional elaboration of surface terms into
// core terms: Check pushes an expected type through the syntax, Synth
// produces a term together with the type it was found to have, and both
// drive conversion (core/convert), unification (core/unify) and semantics
// (core/semantics) to resolve metavariables and prove types equal.
package elab

import (
	"context"
	"fmt"

	"github.com/mna/calyx/core/semantics"
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/unify"
	"github.com/mna/calyx/core/value"
	"github.com/mna/calyx/diagnostic"
	"github.com/mna/calyx/internal/intern"
	"github.com/mna/calyx/surface"
)

// ItemEntry records one top-level definition resolvable by ItemVar. The
// public Elaborate entry point elaborates a single surface term rather
// than a list of declarations, so Result.Items is ordinarily empty; the
// type exists so a driver that does maintain a list of prior units can
// feed their values back in as the ItemStore (see WithItems).
type ItemEntry struct {
	Name  token.Ident
	Term  syntax.Term
	Type  value.Value
	Value value.Value
}

// MetaEntry reports one metavariable's final status after elaboration.
type MetaEntry struct {
	Level  int
	Span   token.Span
	Solved bool
	Value  value.Value // nil if Solved is false
}

// Result is what Elaborate returns alongside diagnostics.
type Result struct {
	Term  syntax.Term
	Items []ItemEntry
	Metas []MetaEntry
}

type itemTable struct{ entries []ItemEntry }

func (t *itemTable) Item(level int) (value.Value, bool) {
	if level < 0 || level >= len(t.entries) {
		return nil, false
	}
	return t.entries[level].Value, true
}

// Elaborator holds everything one compilation unit's worth of elaboration
// needs: the semantics context, the metavariable table, the item table,
// collected diagnostics, and the four synchronised local scope stacks
// (local_names, local_infos, local_types, plus local_exprs kept as a
// semantics.Value environment directly, since that is exactly the shape
// Eval needs).
type Elaborator struct {
	ctx     *semantics.Ctx
	metas   *unify.MetaTable
	items   *itemTable
	diags   *diagnostic.List
	interner *intern.Table
	prelude map[string]syntax.Prim
	primTypeCache map[syntax.Prim]value.Value

	metaSpans []token.Span // parallel to metas' levels

	names  []token.Ident
	infos  []syntax.LocalInfo
	types  []value.Value
	locals value.LocalEnv
}

// NewElaborator returns an empty Elaborator. interner may be nil, in which
// case surface.Var names that are not in local scope are always reported
// unbound (the builtin prelude cannot be resolved without it).
func NewElaborator(interner *intern.Table) *Elaborator {
	metas := unify.NewMetaTable()
	items := &itemTable{}
	e := &Elaborator{
		ctx:      semantics.NewCtx(items, metas),
		metas:    metas,
		items:    items,
		diags:    &diagnostic.List{},
		interner: interner,
	}
	if interner != nil {
		e.prelude = buildPrelude()
	}
	return e
}

// WithItems pre-populates the elaborator's item table, letting a driver
// elaborate a unit whose core term references previously elaborated
// top-level definitions by ItemVar level.
func (e *Elaborator) WithItems(items []ItemEntry) *Elaborator {
	e.items.entries = items
	return e
}

// Elaborate runs a complete check-or-synth pass over st. When expected is
// non-nil, st is checked against *expected; otherwise it is synthesised
// and its type discarded (callers that need the synthesised type should
// use NewElaborator directly). ctx is checked once before elaboration
// starts (spec.md §5: cancellation is only observed at unit boundaries,
// and a single surface term is one unit).
func Elaborate(ctx context.Context, interner *intern.Table, st surface.Term, expected *value.Value) (*Result, []diagnostic.Diagnostic) {
	e := NewElaborator(interner)
	if err := ctx.Err(); err != nil {
		e.diags.Add(diagnostic.Diagnostic{Severity: diagnostic.Error, Span: st.Span(), Message: err.Error()})
		return &Result{Term: syntax.NewPrim(st.Span(), syntax.ReportedError)}, e.diags.All()
	}

	var term syntax.Term
	e.withBugRecovery(&term, func() {
		if expected != nil {
			term = e.Check(st, *expected)
		} else {
			term, _ = e.Synth(st)
		}
	})

	e.unfoldMetasInPlace(&term)
	e.reportUnsolvedMetas()
	e.diags.Sort()

	return &Result{Term: term, Items: e.items.entries, Metas: e.metaEntries()}, e.diags.All()
}

// withBugRecovery runs fn, converting any panic carrying a
// core/semantics.Error or *core/unify.Error into a Bug-severity
// diagnostic and leaving *term as a ReportedError placeholder, per
// spec.md §7's "internal bugs ... abort the current unit" contract
// narrowed at this single public boundary so nothing else in the module
// needs its own recover.
func (e *Elaborator) withBugRecovery(term *syntax.Term, fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var msg string
		switch err := r.(type) {
		case semantics.Error:
			msg = err.Error()
		case *unify.Error:
			msg = err.Error()
		default:
			panic(r)
		}
		e.diags.Add(diagnostic.Diagnostic{Severity: diagnostic.Bug, Message: msg})
		*term = syntax.NewPrim(token.Span{}, syntax.ReportedError)
	}()
	fn()
}

func (e *Elaborator) metaEntries() []MetaEntry {
	entries := make([]MetaEntry, e.metas.Len())
	for lvl := range entries {
		v, solved := e.metas.Meta(lvl)
		var span token.Span
		if lvl < len(e.metaSpans) {
			span = e.metaSpans[lvl]
		}
		entries[lvl] = MetaEntry{Level: lvl, Span: span, Solved: solved, Value: v}
	}
	return entries
}

func (e *Elaborator) reportUnsolvedMetas() {
	for _, lvl := range e.metas.Unsolved() {
		span := token.Span{}
		if lvl < len(e.metaSpans) {
			span = e.metaSpans[lvl]
		}
		e.diags.Add(diagnostic.Diagnostic{
			Severity: diagnostic.Error,
			Span:     span,
			Message:  "unsolved metavariable",
		})
	}
}

func (e *Elaborator) errorf(span token.Span, format string, args ...any) {
	e.diags.Add(diagnostic.Diagnostic{Severity: diagnostic.Error, Span: span, Message: fmt.Sprintf(format, args...)})
}

// reportedErrorTerm is returned by Synth/Check whenever elaboration
// cannot proceed after a diagnostic was already recorded: it keeps
// downstream conversion and unification from cascading further errors,
// since ReportedError is absorbing in both (core/convert, core/unify).
func (e *Elaborator) reportedErrorTerm(span token.Span) (syntax.Term, value.Value) {
	return syntax.NewPrim(span, syntax.ReportedError), value.NewStuck(value.PrimHead(syntax.ReportedError))
}

func isReportedError(v value.Value) bool {
	s, ok := v.(*value.Stuck)
	return ok && s.Head.Kind == value.HeadPrim && s.Head.Prim == syntax.ReportedError && len(s.Spine) == 0
}
