// Package convert implements definitional equality between semantic
// values: the relation that unification and bidirectional checking use to
// decide whether two types (or two values of the same type) are
// interchangeable, up to evaluation, eta and format_repr.
package convert

import (
	"github.com/mna/calyx/core/semantics"
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/value"
)

// IsEqual reports whether v1 and v2 are definitionally equal values seen at
// environment length envLen (the number of local variables currently in
// scope, used to pick a fresh variable when eta-expanding a function or
// probing under a binder).
//
// A ReportedError head on either side is always equal to anything: once an
// elaboration error has been reported, further conversion failures caused
// by that same error must not cascade into additional diagnostics, per
// spec.md §3.
func IsEqual(ctx *semantics.Ctx, envLen int, v1, v2 value.Value) bool {
	v1 = ctx.Force(v1)
	v2 = ctx.Force(v2)

	if isReportedError(v1) || isReportedError(v2) {
		return true
	}

	// A RecordLit on either side, compared against anything that is not
	// itself a RecordLit, is eta-expanded: per spec.md §4.F, a record is
	// equal to any value of the same record type that projects out the
	// same field values, so the non-literal side never needs to reduce to
	// a literal shape first (e.g. a stuck local variable of record type).
	if rl, ok := v1.(*value.RecordLit); ok {
		if _, ok := v2.(*value.RecordLit); !ok {
			return recordLitEta(ctx, envLen, rl, v2)
		}
	} else if rl, ok := v2.(*value.RecordLit); ok {
		return recordLitEta(ctx, envLen, rl, v1)
	}

	switch a := v1.(type) {
	case *value.Universe:
		_, ok := v2.(*value.Universe)
		return ok

	case *value.FunType:
		b, ok := v2.(*value.FunType)
		if !ok {
			return false
		}
		if !IsEqual(ctx, envLen, a.ParamType, b.ParamType) {
			return false
		}
		fresh := value.NewStuck(value.LocalVarHead(envLen))
		return IsEqual(ctx, envLen+1, ctx.ApplyClosure(a.Body, fresh), ctx.ApplyClosure(b.Body, fresh))

	case *value.RecordType:
		b, ok := v2.(*value.RecordType)
		if !ok || !sameLabels(a.Labels, b.Labels) {
			return false
		}
		return telescopesEqual(ctx, envLen, a.Telescope, b.Telescope)

	case *value.FormatRecord:
		b, ok := v2.(*value.FormatRecord)
		if !ok || !sameLabels(a.Labels, b.Labels) {
			return false
		}
		return telescopesEqual(ctx, envLen, a.Telescope, b.Telescope)

	case *value.FormatOverlap:
		b, ok := v2.(*value.FormatOverlap)
		if !ok || !sameLabels(a.Labels, b.Labels) {
			return false
		}
		return telescopesEqual(ctx, envLen, a.Telescope, b.Telescope)

	case *value.FormatCond:
		b, ok := v2.(*value.FormatCond)
		if !ok {
			return false
		}
		if !IsEqual(ctx, envLen, a.Format, b.Format) {
			return false
		}
		fresh := value.NewStuck(value.LocalVarHead(envLen))
		return IsEqual(ctx, envLen+1, ctx.ApplyClosure(a.Cond, fresh), ctx.ApplyClosure(b.Cond, fresh))

	case *value.ArrayLit:
		b, ok := v2.(*value.ArrayLit)
		if !ok || len(a.Values) != len(b.Values) {
			return false
		}
		for i := range a.Values {
			if !IsEqual(ctx, envLen, a.Values[i], b.Values[i]) {
				return false
			}
		}
		return true

	case *value.RecordLit:
		// Both sides are RecordLit here: the (RecordLit, other) and
		// (other, RecordLit) shapes are eta-expanded above, before this
		// switch is reached. Two literals compared directly happens e.g.
		// inside an array of records.
		b := v2.(*value.RecordLit)
		if !sameLabels(a.Labels, b.Labels) {
			return false
		}
		for i := range a.Values {
			if !IsEqual(ctx, envLen, a.Values[i], b.Values[i]) {
				return false
			}
		}
		return true

	case *value.ConstLit:
		b, ok := v2.(*value.ConstLit)
		return ok && a.Const.Equal(b.Const)

	case *value.FunLit, *value.Stuck:
		return compareRigidOrFun(ctx, envLen, v1, v2)

	default:
		return false
	}
}

// compareRigidOrFun handles function eta: a FunLit compared against
// anything of function type is compared by applying both sides to a
// fresh variable (RecordLit's own eta rule is handled earlier in IsEqual,
// before either side reaches this far). When no eta rule applies, two
// Stuck values are compared head-to-head and spine-to-spine.
func compareRigidOrFun(ctx *semantics.Ctx, envLen int, v1, v2 value.Value) bool {
	if fl1, ok := v1.(*value.FunLit); ok {
		fresh := value.NewStuck(value.LocalVarHead(envLen))
		lhs := ctx.ApplyClosure(fl1.Body, fresh)
		rhs := ctx.FunApp(v2, fresh)
		return IsEqual(ctx, envLen+1, lhs, rhs)
	}
	if fl2, ok := v2.(*value.FunLit); ok {
		fresh := value.NewStuck(value.LocalVarHead(envLen))
		lhs := ctx.FunApp(v1, fresh)
		rhs := ctx.ApplyClosure(fl2.Body, fresh)
		return IsEqual(ctx, envLen+1, lhs, rhs)
	}

	s1, ok1 := v1.(*value.Stuck)
	s2, ok2 := v2.(*value.Stuck)
	if !ok1 || !ok2 {
		return false
	}
	if !s1.Head.Equal(s2.Head) {
		return false
	}
	if len(s1.Spine) != len(s2.Spine) {
		return false
	}
	for i := range s1.Spine {
		if !elimsEqual(ctx, envLen, s1.Spine[i], s2.Spine[i]) {
			return false
		}
	}
	return true
}

// recordLitEta compares rl against other by projecting each of rl's
// fields out of other and comparing it to rl's own value for that field,
// rather than requiring other to already be a RecordLit itself: a stuck
// value of record type (an opaque local variable, an unresolved
// format_repr result, ...) is equal to a record literal whenever every
// field agrees, per spec.md §4.F ("RecordLit vs other: eta-expand —
// compare each field to record_proj(other, label)"), grounded on
// is_equal_record_lit in the reference semantics.
func recordLitEta(ctx *semantics.Ctx, envLen int, rl *value.RecordLit, other value.Value) bool {
	for i, label := range rl.Labels {
		if !IsEqual(ctx, envLen, rl.Values[i], ctx.RecordProj(other, label)) {
			return false
		}
	}
	return true
}

func elimsEqual(ctx *semantics.Ctx, envLen int, e1, e2 value.Elim) bool {
	if e1.Kind != e2.Kind {
		return false
	}
	switch e1.Kind {
	case value.ElimFunApp:
		return IsEqual(ctx, envLen, e1.Arg, e2.Arg)
	case value.ElimRecordProj:
		return e1.Label == e2.Label
	case value.ElimConstMatch:
		return branchesEqual(ctx, envLen, e1.Branches, e2.Branches)
	default:
		return false
	}
}

// branchesEqual compares two suspended const_match branch sets
// semantically: the branches are terms under an as-yet-unknown
// environment extension, so they are compared by re-evaluating each body
// under a shared fresh scrutinee binding rather than by term equality.
func branchesEqual(ctx *semantics.Ctx, envLen int, b1, b2 *value.Branches) bool {
	if len(b1.Patterns) != len(b2.Patterns) || len(b1.Bodies) != len(b2.Bodies) {
		return false
	}
	for i := range b1.Patterns {
		if !b1.Patterns[i].Equal(b2.Patterns[i]) {
			return false
		}
		v1 := ctx.Eval(b1.Env, b1.Bodies[i])
		v2 := ctx.Eval(b2.Env, b2.Bodies[i])
		if !IsEqual(ctx, envLen, v1, v2) {
			return false
		}
	}
	if (b1.Default == nil) != (b2.Default == nil) {
		return false
	}
	if b1.Default == nil {
		return true
	}
	fresh := value.NewStuck(value.LocalVarHead(envLen))
	v1 := ctx.Eval(b1.Env.Push(fresh), b1.Default)
	v2 := ctx.Eval(b2.Env.Push(fresh), b2.Default)
	return IsEqual(ctx, envLen+1, v1, v2)
}

// telescopesEqual compares two telescopes field-by-field in lock step,
// binding each side's field to the same fresh variable so later fields
// (which may depend on earlier ones) are compared under a consistent
// substitution.
func telescopesEqual(ctx *semantics.Ctx, envLen int, t1, t2 *value.Telescope) bool {
	cur1, cur2 := t1, t2
	lvl := envLen
	for {
		split1, ok1 := ctx.SplitTelescope(cur1)
		split2, ok2 := ctx.SplitTelescope(cur2)
		if ok1 != ok2 {
			return false
		}
		if !ok1 {
			return true
		}
		if !IsEqual(ctx, lvl, split1.Value, split2.Value) {
			return false
		}
		fresh := value.NewStuck(value.LocalVarHead(lvl))
		cur1 = split1.Rest(fresh)
		cur2 = split2.Rest(fresh)
		lvl++
	}
}

func sameLabels(a, b []token.Ident) bool {
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

func isReportedError(v value.Value) bool {
	s, ok := v.(*value.Stuck)
	return ok && s.Head.Kind == value.HeadPrim && s.Head.Prim == syntax.ReportedError && len(s.Spine) == 0
}
