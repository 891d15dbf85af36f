package elab

import (
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/unify"
	"github.com/mna/calyx/core/value"
	"github.com/mna/calyx/surface"
)

// Check elaborates st against an already-known expected type, per spec.md
// §4.H. Nodes with no dedicated check-mode rule fall back to synthesising
// and unifying against expected, per the spec's explicit fallback rule.
func (e *Elaborator) Check(st surface.Term, expected value.Value) syntax.Term {
	switch t := st.(type) {
	case *surface.Hole:
		term, _ := e.freshMeta(t.Span())
		return term
	case *surface.Let:
		return e.checkLet(t, expected)
	case *surface.FunLit:
		return e.checkFunLit(t, expected)
	case *surface.RecordLit:
		return e.checkRecordLit(t, expected)
	case *surface.ArrayLit:
		return e.checkArrayLit(t, expected)
	case *surface.NumberLit:
		return e.checkNumberLit(t, expected)
	case *surface.Match:
		return e.checkMatch(t, expected)
	default:
		return e.checkFallback(st, expected)
	}
}

// checkFallback synthesises st and unifies the result against expected,
// reporting a diagnostic and substituting ReportedError on failure so
// downstream conversion/unification does not cascade further errors.
func (e *Elaborator) checkFallback(st surface.Term, expected value.Value) syntax.Term {
	term, typ := e.Synth(st)
	if isReportedError(typ) || isReportedError(expected) {
		return term
	}
	if err := unify.Unify(e.ctx, e.metas, e.envLen(), typ, expected); err != nil {
		e.errorf(st.Span(), "type mismatch: %s", err.Error())
		errTerm, _ := e.reportedErrorTerm(st.Span())
		return errTerm
	}
	return term
}

func (e *Elaborator) checkLet(t *surface.Let, expected value.Value) syntax.Term {
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
	bodyTerm := e.Check(t.Body, expected)
	e.pop()

	name := syntax.Name{Ident: t.Name, Span: t.Span()}
	return syntax.NewLet(t.Span(), name, typTerm, defTerm, bodyTerm)
}

// checkFunLit implements spec.md §4.H's FunLit check rule against a
// FunType: push the parameter, check the body against the closure applied
// to a fresh variable, pop. When expected is itself a metavariable, a
// fresh non-dependent FunType is unified in first so the rule still
// applies, mirroring the App rule's meta-headed branch.
func (e *Elaborator) checkFunLit(t *surface.FunLit, expected value.Value) syntax.Term {
	forced := e.ctx.Force(expected)
	ft, ok := forced.(*value.FunType)
	if !ok {
		if s, ok := forced.(*value.Stuck); ok && s.Head.IsMetaVar() {
			_, paramTypVal := e.freshMeta(t.Span())
			fresh := value.NewStuck(value.LocalVarHead(e.envLen()))
			e.pushParam(t.Name, paramTypVal, fresh)
			_, bodyTypVal := e.freshMeta(t.Span())
			bodyTypTerm := e.quote(bodyTypVal)
			outerLocals := e.locals.Pop()
			e.pop()

			newFt := &value.FunType{
				ParamName: t.Name,
				ParamType: paramTypVal,
				Body:      value.NewClosure(outerLocals, bodyTypTerm),
			}
			if err := unify.Unify(e.ctx, e.metas, e.envLen(), expected, newFt); err != nil {
				e.errorf(t.Span(), "expected a function type: %s", err.Error())
				errTerm, _ := e.reportedErrorTerm(t.Span())
				return errTerm
			}
			ft = newFt
		} else {
			e.errorf(t.Span(), "expected a function type")
			errTerm, _ := e.reportedErrorTerm(t.Span())
			return errTerm
		}
	}

	fresh := value.NewStuck(value.LocalVarHead(e.envLen()))
	e.pushParam(t.Name, ft.ParamType, fresh)
	bodyExpected := e.ctx.ApplyClosure(ft.Body, fresh)
	bodyTerm := e.Check(t.Body, bodyExpected)
	e.pop()

	name := syntax.Name{Ident: t.Name, Span: t.Span()}
	return syntax.NewFunLit(t.Span(), name, bodyTerm)
}

// checkRecordLit peels the expected telescope field by field, using
// SplitTelescope so each field's expected type already reflects the
// actual values bound for preceding fields, per spec.md §4.E's telescope
// contract.
func (e *Elaborator) checkRecordLit(t *surface.RecordLit, expected value.Value) syntax.Term {
	rt, ok := e.ctx.Force(expected).(*value.RecordType)
	if !ok || !sameLabelSet(t.Labels, rt.Labels) {
		return e.checkFallback(t, expected)
	}

	exprs := make([]syntax.Term, len(t.Exprs))
	cur := rt.Telescope
	pushed := 0
	for i := range t.Exprs {
		split, ok := e.ctx.SplitTelescope(cur)
		if !ok {
			e.errorf(t.Span(), "record literal has more fields than its expected type")
			break
		}
		fieldTerm := e.Check(t.Exprs[i], split.Value)
		exprs[i] = fieldTerm
		fieldVal := e.eval(fieldTerm)
		e.pushDef(t.Labels[i], split.Value, fieldVal)
		pushed++
		cur = split.Rest(fieldVal)
	}
	for ; pushed > 0; pushed-- {
		e.pop()
	}
	return syntax.NewRecordLit(t.Span(), t.Labels, exprs)
}

func sameLabelSet(a, b []token.Ident) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkArrayLit propagates the expected element type (and, for a fixed
// width ArrayNType, the expected length) down to each element — essential
// for literal elements like bare NumberLits that cannot synthesise a type
// of their own.
func (e *Elaborator) checkArrayLit(t *surface.ArrayLit, expected value.Value) syntax.Term {
	elemTyp, lenOk, wantLen, ok := e.arrayElemType(expected)
	if !ok {
		return e.checkFallback(t, expected)
	}
	if lenOk && wantLen != len(t.Exprs) {
		e.errorf(t.Span(), "array literal has %d elements, expected %d", len(t.Exprs), wantLen)
	}
	exprs := make([]syntax.Term, len(t.Exprs))
	for i, exprSurf := range t.Exprs {
		exprs[i] = e.Check(exprSurf, elemTyp)
	}
	return syntax.NewArrayLit(t.Span(), exprs)
}

// arrayElemType inspects a forced array type value of shape
// Array{8,16,32,64}Type(len, elem) or ArrayType(elem) and extracts elem
// (and, for the fixed-width formers, the expected length).
func (e *Elaborator) arrayElemType(expected value.Value) (elemTyp value.Value, lenOk bool, wantLen int, ok bool) {
	s, isStuck := e.ctx.Force(expected).(*value.Stuck)
	if !isStuck || s.Head.Kind != value.HeadPrim {
		return nil, false, 0, false
	}
	switch s.Head.Prim {
	case syntax.Array8Type, syntax.Array16Type, syntax.Array32Type, syntax.Array64Type:
		if len(s.Spine) != 2 || s.Spine[0].Kind != value.ElimFunApp || s.Spine[1].Kind != value.ElimFunApp {
			return nil, false, 0, false
		}
		cl, isConst := e.ctx.Force(s.Spine[0].Arg).(*value.ConstLit)
		if isConst && cl.Const.Kind.IsUnsigned() {
			return s.Spine[1].Arg, true, int(cl.Const.UInt), true
		}
		return s.Spine[1].Arg, false, 0, true
	case syntax.ArrayType:
		if len(s.Spine) != 1 || s.Spine[0].Kind != value.ElimFunApp {
			return nil, false, 0, false
		}
		return s.Spine[0].Arg, false, 0, true
	default:
		return nil, false, 0, false
	}
}

// checkNumberLit resolves a numeric literal's width/signedness from the
// expected type, the only mode in which a bare literal is not ambiguous.
func (e *Elaborator) checkNumberLit(t *surface.NumberLit, expected value.Value) syntax.Term {
	s, isStuck := e.ctx.Force(expected).(*value.Stuck)
	if !isStuck || s.Head.Kind != value.HeadPrim || len(s.Spine) != 0 {
		e.errorf(t.Span(), "expected type is not a numeric type")
		term, _ := e.reportedErrorTerm(t.Span())
		return term
	}
	c, ok := parseNumberLit(t, s.Head.Prim)
	if !ok {
		e.errorf(t.Span(), "numeric literal out of range or wrong kind for expected type")
		term, _ := e.reportedErrorTerm(t.Span())
		return term
	}
	return syntax.NewConstLit(t.Span(), c)
}

func (e *Elaborator) checkMatch(t *surface.Match, expected value.Value) syntax.Term {
	scrutTerm, scrutTyp := e.Synth(t.Scrutinee)
	patterns := make([]syntax.Const, len(t.Arms))
	bodies := make([]syntax.Term, len(t.Arms))
	for i, arm := range t.Arms {
		patterns[i] = e.checkConstPattern(arm.Pattern, scrutTyp)
		bodies[i] = e.Check(arm.Body, expected)
	}
	var defaultTerm syntax.Term
	if t.Default != nil {
		fresh := value.NewStuck(value.LocalVarHead(e.envLen()))
		e.pushParam(0, scrutTyp, fresh)
		defaultTerm = e.Check(t.Default, expected)
		e.pop()
	}
	return syntax.NewConstMatch(t.Span(), scrutTerm, patterns, bodies, defaultTerm)
}
