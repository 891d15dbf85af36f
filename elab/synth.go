package elab

import (
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/unify"
	"github.com/mna/calyx/core/value"
	"github.com/mna/calyx/surface"
)

// Synth produces a core term for st together with the type it was found
// to have, per spec.md §4.H. Every branch below is named after the
// surface node it handles so a reader can match it straight against the
// spec's rule list.
func (e *Elaborator) Synth(st surface.Term) (syntax.Term, value.Value) {
	switch t := st.(type) {
	case *surface.Var:
		return e.synthVar(t)
	case *surface.Hole:
		return e.synthHole(t)
	case *surface.Ann:
		return e.synthAnn(t)
	case *surface.Let:
		return e.synthLet(t)
	case *surface.Universe:
		return syntax.NewUniverse(t.Span()), value.TheUniverse
	case *surface.FunType:
		return e.synthFunType(t)
	case *surface.FunLit:
		return e.synthFunLit(t)
	case *surface.App:
		return e.synthApp(t)
	case *surface.RecordType:
		return e.synthRecordType(t)
	case *surface.RecordLit:
		return e.synthRecordLit(t)
	case *surface.Proj:
		return e.synthProj(t)
	case *surface.ArrayLit:
		return e.synthArrayLit(t)
	case *surface.NumberLit:
		return e.synthNumberLit(t)
	case *surface.BoolLit:
		return e.synthBoolLit(t)
	case *surface.Match:
		return e.synthMatch(t)
	case *surface.FormatRecord:
		return e.synthFormatRecord(t)
	case *surface.FormatOverlap:
		return e.synthFormatOverlap(t)
	case *surface.FormatCond:
		return e.synthFormatCond(t)
	default:
		e.errorf(st.Span(), "internal: unhandled surface node in synth")
		return e.reportedErrorTerm(st.Span())
	}
}

func (e *Elaborator) synthVar(t *surface.Var) (syntax.Term, value.Value) {
	if idx, typ, ok := e.lookupLocal(t.Name); ok {
		return syntax.NewLocalVar(t.Span(), idx), typ
	}
	if e.interner != nil {
		name := e.interner.Lookup(t.Name)
		if p, ok := e.lookupPrelude(name); ok {
			return syntax.NewPrim(t.Span(), p), e.primType(p)
		}
	}
	e.errorf(t.Span(), "unbound name")
	return e.reportedErrorTerm(t.Span())
}

func (e *Elaborator) synthHole(t *surface.Hole) (syntax.Term, value.Value) {
	_, typVal := e.freshMeta(t.Span())
	term, _ := e.freshMeta(t.Span())
	return term, typVal
}

func (e *Elaborator) synthAnn(t *surface.Ann) (syntax.Term, value.Value) {
	typTerm := e.Check(t.Type, value.TheUniverse)
	typVal := e.eval(typTerm)
	exprTerm := e.Check(t.Expr, typVal)
	return syntax.NewAnn(t.Span(), exprTerm, typTerm), typVal
}

func (e *Elaborator) synthLet(t *surface.Let) (syntax.Term, value.Value) {
	var typTerm syntax.Term
	var typVal value.Value
	var defTerm syntax.Term

	if t.Type != nil {
		typTerm, typVal = e.checkType(t.Type)
		defTerm = e.Check(t.Def, typVal)
	} else {
		defTerm, typVal = e.Synth(t.Def)
		typTerm = e.quote(typVal)
	}

	defVal := e.eval(defTerm)
	e.pushDef(t.Name, typVal, defVal)
	bodyTerm, bodyTyp := e.Synth(t.Body)
	e.pop()

	name := syntax.Name{Ident: t.Name, Span: t.Span()}
	return syntax.NewLet(t.Span(), name, typTerm, defTerm, bodyTerm), bodyTyp
}

func (e *Elaborator) checkType(t surface.Term) (syntax.Term, value.Value) {
	term := e.Check(t, value.TheUniverse)
	return term, e.eval(term)
}

func (e *Elaborator) synthFunType(t *surface.FunType) (syntax.Term, value.Value) {
	paramTerm, paramVal := e.checkType(t.Param)
	fresh := value.NewStuck(value.LocalVarHead(e.envLen()))
	e.pushParam(t.Name, paramVal, fresh)
	bodyTerm, _ := e.checkType(t.Body)
	e.pop()
	name := syntax.Name{Ident: t.Name, Span: t.Span()}
	return syntax.NewFunType(t.Span(), name, paramTerm, bodyTerm), value.TheUniverse
}

// synthFunLit inserts metavariables for the parameter and body types
// (spec.md §4.H: "insert meta for param type, insert meta for body type
// closed over param"), checks the body against the body meta, and
// reassembles a dependent FunType value from the quoted body-type meta.
func (e *Elaborator) synthFunLit(t *surface.FunLit) (syntax.Term, value.Value) {
	_, paramTypVal := e.freshMeta(t.Span())
	fresh := value.NewStuck(value.LocalVarHead(e.envLen()))
	e.pushParam(t.Name, paramTypVal, fresh)

	_, bodyTypVal := e.freshMeta(t.Span())
	bodyTerm := e.Check(t.Body, bodyTypVal)
	bodyTypTerm := e.quote(bodyTypVal)
	outerLocals := e.locals.Pop()
	e.pop()

	name := syntax.Name{Ident: t.Name, Span: t.Span()}
	funTypeVal := &value.FunType{
		ParamName: t.Name,
		ParamType: paramTypVal,
		Body:      value.NewClosure(outerLocals, bodyTypTerm),
	}
	return syntax.NewFunLit(t.Span(), name, bodyTerm), funTypeVal
}

func (e *Elaborator) synthApp(t *surface.App) (syntax.Term, value.Value) {
	headTerm, headTyp := e.Synth(t.Head)
	if isReportedError(headTyp) {
		return e.reportedErrorTerm(t.Span())
	}

	forced := e.ctx.Force(headTyp)
	if ft, ok := forced.(*value.FunType); ok {
		argTerm := e.Check(t.Arg, ft.ParamType)
		argVal := e.eval(argTerm)
		resultTyp := e.ctx.ApplyClosure(ft.Body, argVal)
		return syntax.NewFunApp(t.Span(), headTerm, argTerm), resultTyp
	}

	if s, ok := forced.(*value.Stuck); ok && s.Head.IsMetaVar() {
		_, paramTypVal := e.freshMeta(t.Span())
		fresh := value.NewStuck(value.LocalVarHead(e.envLen()))
		e.pushParam(0, paramTypVal, fresh)
		_, bodyTypVal := e.freshMeta(t.Span())
		bodyTypTerm := e.quote(bodyTypVal)
		outerLocals := e.locals.Pop()
		e.pop()

		funTypeVal := &value.FunType{
			ParamType: paramTypVal,
			Body:      value.NewClosure(outerLocals, bodyTypTerm),
		}
		if err := unify.Unify(e.ctx, e.metas, e.envLen(), headTyp, funTypeVal); err != nil {
			e.errorf(t.Span(), "not a function: %s", err.Error())
			return e.reportedErrorTerm(t.Span())
		}
		argTerm := e.Check(t.Arg, paramTypVal)
		argVal := e.eval(argTerm)
		resultTyp := e.ctx.ApplyClosure(funTypeVal.Body, argVal)
		return syntax.NewFunApp(t.Span(), headTerm, argTerm), resultTyp
	}

	e.errorf(t.Span(), "applying a non-function value")
	return e.reportedErrorTerm(t.Span())
}

func (e *Elaborator) synthRecordType(t *surface.RecordType) (syntax.Term, value.Value) {
	types := make([]syntax.Term, len(t.Types))
	pushed := 0
	for i, typSurf := range t.Types {
		typTerm, typVal := e.checkType(typSurf)
		types[i] = typTerm
		fresh := value.NewStuck(value.LocalVarHead(e.envLen()))
		e.pushParam(t.Labels[i], typVal, fresh)
		pushed++
	}
	for ; pushed > 0; pushed-- {
		e.pop()
	}
	return syntax.NewRecordType(t.Span(), t.Labels, types), value.TheUniverse
}

// synthRecordLit elaborates each field independently but Def-binds it
// immediately, so later fields may depend on earlier ones by name — the
// result RecordType is therefore genuinely dependent, matching spec.md
// §4.H's record rules.
func (e *Elaborator) synthRecordLit(t *surface.RecordLit) (syntax.Term, value.Value) {
	exprs := make([]syntax.Term, len(t.Exprs))
	types := make([]syntax.Term, len(t.Exprs))
	pushed := 0
	for i, exprSurf := range t.Exprs {
		exprTerm, typVal := e.Synth(exprSurf)
		exprs[i] = exprTerm
		types[i] = e.quote(typVal)
		exprVal := e.eval(exprTerm)
		e.pushDef(t.Labels[i], typVal, exprVal)
		pushed++
	}
	outerLocals := e.locals
	for i := 0; i < pushed; i++ {
		outerLocals = outerLocals.Pop()
	}
	for ; pushed > 0; pushed-- {
		e.pop()
	}
	recTyp := &value.RecordType{
		Labels:    t.Labels,
		Telescope: value.NewTelescope(outerLocals, types, false),
	}
	return syntax.NewRecordLit(t.Span(), t.Labels, exprs), recTyp
}

func (e *Elaborator) synthProj(t *surface.Proj) (syntax.Term, value.Value) {
	headTerm, headTyp := e.Synth(t.Head)
	if isReportedError(headTyp) {
		return e.reportedErrorTerm(t.Span())
	}
	rt, ok := e.ctx.Force(headTyp).(*value.RecordType)
	if !ok {
		e.errorf(t.Span(), "projecting a field from a non-record value")
		return e.reportedErrorTerm(t.Span())
	}
	headVal := e.eval(headTerm)
	cur := rt.Telescope
	for {
		split, ok := e.ctx.SplitTelescope(cur)
		if !ok {
			break
		}
		label := rt.Labels[len(rt.Labels)-cur.Len()]
		if label == t.Label {
			return syntax.NewRecordProj(t.Span(), headTerm, t.Label), split.Value
		}
		fieldVal := e.ctx.RecordProj(headVal, label)
		cur = split.Rest(fieldVal)
	}
	e.errorf(t.Span(), "unknown field")
	return e.reportedErrorTerm(t.Span())
}

// synthArrayLit defaults an array literal's synthesised type to an
// Array64Type headed by the literal element count, since spec.md's
// surface grammar has no standalone array-type former to synthesise
// instead (arrays normally only appear as a format's representation, via
// FormatArrayN). See DESIGN.md's Open Question ledger.
func (e *Elaborator) synthArrayLit(t *surface.ArrayLit) (syntax.Term, value.Value) {
	exprs := make([]syntax.Term, len(t.Exprs))
	var elemTyp value.Value
	if len(t.Exprs) == 0 {
		_, elemTyp = e.freshMeta(t.Span())
	} else {
		first, firstTyp := e.Synth(t.Exprs[0])
		exprs[0] = first
		elemTyp = firstTyp
		for i := 1; i < len(t.Exprs); i++ {
			exprs[i] = e.Check(t.Exprs[i], elemTyp)
		}
	}
	lenConst := syntax.MakeUnsigned(64, uint64(len(t.Exprs)), syntax.Decimal)
	head := value.NewStuck(value.PrimHead(syntax.Array64Type))
	arrTyp := head.WithElim(value.FunAppElim(&value.ConstLit{Const: lenConst})).WithElim(value.FunAppElim(elemTyp))
	return syntax.NewArrayLit(t.Span(), exprs), arrTyp
}

func (e *Elaborator) synthBoolLit(t *surface.BoolLit) (syntax.Term, value.Value) {
	c := syntax.MakeBool(t.Value)
	return syntax.NewConstLit(t.Span(), c), value.NewStuck(value.PrimHead(syntax.BoolType))
}

// synthNumberLit cannot determine a bare numeric literal's width or
// signedness without an expected type (spec.md's grammar has no
// standalone integer type); this module's Open Question resolution
// (DESIGN.md) is to report a diagnostic asking for an annotation rather
// than guessing a default width.
func (e *Elaborator) synthNumberLit(t *surface.NumberLit) (syntax.Term, value.Value) {
	e.errorf(t.Span(), "ambiguous numeric literal: add a type annotation")
	return e.reportedErrorTerm(t.Span())
}

func (e *Elaborator) synthMatch(t *surface.Match) (syntax.Term, value.Value) {
	scrutTerm, scrutTyp := e.Synth(t.Scrutinee)
	if len(t.Arms) == 0 && t.Default == nil {
		e.errorf(t.Span(), "match with no arms")
		return e.reportedErrorTerm(t.Span())
	}

	patterns := make([]syntax.Const, len(t.Arms))
	bodies := make([]syntax.Term, len(t.Arms))

	var resultTyp value.Value
	startIdx := 0
	if len(t.Arms) > 0 {
		patterns[0] = e.checkConstPattern(t.Arms[0].Pattern, scrutTyp)
		body0Term, body0Typ := e.Synth(t.Arms[0].Body)
		bodies[0] = body0Term
		resultTyp = body0Typ
		startIdx = 1
	} else {
		_, resultTyp = e.freshMeta(t.Span())
	}

	for i := startIdx; i < len(t.Arms); i++ {
		patterns[i] = e.checkConstPattern(t.Arms[i].Pattern, scrutTyp)
		bodies[i] = e.Check(t.Arms[i].Body, resultTyp)
	}

	var defaultTerm syntax.Term
	if t.Default != nil {
		fresh := value.NewStuck(value.LocalVarHead(e.envLen()))
		e.pushParam(0, scrutTyp, fresh)
		defaultTerm = e.Check(t.Default, resultTyp)
		e.pop()
	}

	return syntax.NewConstMatch(t.Span(), scrutTerm, patterns, bodies, defaultTerm), resultTyp
}

// checkConstPattern elaborates a match arm's pattern, which must itself be
// a NumberLit or BoolLit, against the scrutinee's type.
func (e *Elaborator) checkConstPattern(pat surface.Term, scrutTyp value.Value) syntax.Const {
	term := e.Check(pat, scrutTyp)
	if cl, ok := term.(*syntax.ConstLit); ok {
		return cl.Const
	}
	e.errorf(pat.Span(), "match pattern must be a literal constant")
	return syntax.Const{}
}
