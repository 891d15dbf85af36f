package elab

import (
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/value"
)

// pushParam extends the local scope with a bound parameter: name is
// resolvable by synthVar, typ is recorded for later lookups, and val is
// pushed onto the value environment Eval reads through. Every push must be
// matched by a later pop in the same syntactic scope, mirroring the
// teacher's own paired enter/leave scope helpers.
func (e *Elaborator) pushParam(name token.Ident, typ value.Value, val value.Value) {
	e.names = append(e.names, name)
	e.infos = append(e.infos, syntax.LocalInfo{Kind: syntax.Param, Name: name})
	e.types = append(e.types, typ)
	e.locals = e.locals.Push(val)
}

// pushDef is pushParam's counterpart for a let-bound definition: it is
// recorded as LocalInfoKind Def so an InsertedMeta snapshot substitutes it
// away rather than applying the meta to it.
func (e *Elaborator) pushDef(name token.Ident, typ value.Value, val value.Value) {
	e.names = append(e.names, name)
	e.infos = append(e.infos, syntax.LocalInfo{Kind: syntax.Def, Name: name})
	e.types = append(e.types, typ)
	e.locals = e.locals.Push(val)
}

// pop undoes the most recent push, in any combination of pushParam/pushDef.
func (e *Elaborator) pop() {
	e.names = e.names[:len(e.names)-1]
	e.infos = e.infos[:len(e.infos)-1]
	e.types = e.types[:len(e.types)-1]
	e.locals = e.locals.Pop()
}

// envLen reports the number of local bindings currently in scope, which
// doubles as the next fresh local variable's de Bruijn level.
func (e *Elaborator) envLen() int { return e.locals.Len() }

// lookupLocal resolves name against the local scope stack innermost-first,
// returning its de Bruijn index, type and ok=true, or ok=false if no local
// binds that name.
func (e *Elaborator) lookupLocal(name token.Ident) (index int, typ value.Value, ok bool) {
	for i := len(e.names) - 1; i >= 0; i-- {
		if e.names[i] == name {
			idx := len(e.names) - 1 - i
			return idx, e.types[i], true
		}
	}
	return 0, nil, false
}

// localInfoSnapshot copies the current LocalInfo stack for embedding in a
// freshly inserted metavariable, per spec.md §4.H's "snapshot of bindings
// in scope at the point of insertion".
func (e *Elaborator) localInfoSnapshot() []syntax.LocalInfo {
	out := make([]syntax.LocalInfo, len(e.infos))
	copy(out, e.infos)
	return out
}

// freshMeta allocates a new metavariable, records span for later
// unsolved-meta diagnostics, and returns both the InsertedMeta term
// (closing over the current scope) and its Eval'd value.
func (e *Elaborator) freshMeta(span token.Span) (syntax.Term, value.Value) {
	level := e.metas.Fresh()
	for len(e.metaSpans) <= level {
		e.metaSpans = append(e.metaSpans, token.Span{})
	}
	e.metaSpans[level] = span
	term := syntax.NewInsertedMeta(span, level, e.localInfoSnapshot())
	val := e.ctx.Eval(e.locals, term)
	return term, val
}

// eval is a short-hand for evaluating a freshly built term under the
// current local environment.
func (e *Elaborator) eval(t syntax.Term) value.Value { return e.ctx.Eval(e.locals, t) }

// quote is a short-hand for reading a value back at the current
// environment length.
func (e *Elaborator) quote(v value.Value) syntax.Term { return e.ctx.Quote(e.envLen(), v) }
