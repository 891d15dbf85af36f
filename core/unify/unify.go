package unify

import (
	"github.com/mna/calyx/core/semantics"
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/value"
)

// Unify attempts to make v1 and v2 definitionally equal by solving
// metavariables in metas, under a context of envLen local variables. It
// either returns nil and leaves metas extended with zero or more new
// solutions, or returns a non-nil *Error. A failed attempt is not rolled
// back: metas solved by sub-problems that succeeded before the failing one
// (a FunType's parameter types, or a narrower meta solved by pruning during
// renaming) stay solved.
func Unify(ctx *semantics.Ctx, metas *MetaTable, envLen int, v1, v2 value.Value) error {
	u := &unifier{ctx: ctx, metas: metas}
	return u.unify(envLen, v1, v2)
}

type unifier struct {
	ctx   *semantics.Ctx
	metas *MetaTable
}

func (u *unifier) unify(envLen int, v1, v2 value.Value) error {
	v1 = u.ctx.Force(v1)
	v2 = u.ctx.Force(v2)

	if isReportedError(v1) || isReportedError(v2) {
		return nil
	}

	s1, meta1 := metaStuck(v1)
	s2, meta2 := metaStuck(v2)

	switch {
	case meta1 && meta2 && s1.Head.Level == s2.Head.Level:
		return u.intersectMeta(s1.Head.Level, s1.Spine, s2.Spine)
	case meta1 && meta2:
		// Symmetric tie-break: solve the more local (higher-level) meta so
		// that more-global metas stay solvable from more contexts.
		if s1.Head.Level > s2.Head.Level {
			return u.solve(envLen, s1.Head.Level, s1.Spine, v2)
		}
		return u.solve(envLen, s2.Head.Level, s2.Spine, v1)
	case meta1:
		return u.solve(envLen, s1.Head.Level, s1.Spine, v2)
	case meta2:
		return u.solve(envLen, s2.Head.Level, s2.Spine, v1)
	}

	return u.unifyRigid(envLen, v1, v2)
}

func metaStuck(v value.Value) (*value.Stuck, bool) {
	s, ok := v.(*value.Stuck)
	return s, ok && s.Head.IsMetaVar()
}

func isReportedError(v value.Value) bool {
	s, ok := v.(*value.Stuck)
	return ok && s.Head.Kind == value.HeadPrim && s.Head.Prim == syntax.ReportedError && len(s.Spine) == 0
}

// unifyRigid compares two values with no flexible (metavariable) head,
// structurally, recursing via unify so any nested metavariables are
// solved rather than merely compared.
func (u *unifier) unifyRigid(envLen int, v1, v2 value.Value) error {
	// A RecordLit on either side, against anything that is not itself a
	// RecordLit, unifies by eta: per spec.md §4.G, project each of its
	// fields out of the other side and unify those, rather than requiring
	// the other side to already be a literal (e.g. a stuck local variable
	// of record type unifying against a concrete record literal).
	if rl, ok := v1.(*value.RecordLit); ok {
		if _, ok := v2.(*value.RecordLit); !ok {
			return u.unifyRecordLitEta(envLen, rl, v2)
		}
	} else if rl, ok := v2.(*value.RecordLit); ok {
		return u.unifyRecordLitEta(envLen, rl, v1)
	}

	switch a := v1.(type) {
	case *value.Universe:
		if _, ok := v2.(*value.Universe); ok {
			return nil
		}
		return fail(Mismatch, "expected Type")

	case *value.FunType:
		b, ok := v2.(*value.FunType)
		if !ok {
			return fail(Mismatch, "expected a function type")
		}
		if err := u.unify(envLen, a.ParamType, b.ParamType); err != nil {
			return err
		}
		fresh := value.NewStuck(value.LocalVarHead(envLen))
		return u.unify(envLen+1, u.ctx.ApplyClosure(a.Body, fresh), u.ctx.ApplyClosure(b.Body, fresh))

	case *value.RecordType:
		b, ok := v2.(*value.RecordType)
		if !ok || !sameLabels(a.Labels, b.Labels) {
			return fail(Mismatch, "expected a record type with the same fields")
		}
		return u.unifyTelescopes(envLen, a.Telescope, b.Telescope)

	case *value.FormatRecord:
		b, ok := v2.(*value.FormatRecord)
		if !ok || !sameLabels(a.Labels, b.Labels) {
			return fail(Mismatch, "expected a format record with the same fields")
		}
		return u.unifyTelescopes(envLen, a.Telescope, b.Telescope)

	case *value.FormatOverlap:
		b, ok := v2.(*value.FormatOverlap)
		if !ok || !sameLabels(a.Labels, b.Labels) {
			return fail(Mismatch, "expected an overlap format with the same fields")
		}
		return u.unifyTelescopes(envLen, a.Telescope, b.Telescope)

	case *value.FormatCond:
		b, ok := v2.(*value.FormatCond)
		if !ok {
			return fail(Mismatch, "expected a conditional format")
		}
		if err := u.unify(envLen, a.Format, b.Format); err != nil {
			return err
		}
		fresh := value.NewStuck(value.LocalVarHead(envLen))
		return u.unify(envLen+1, u.ctx.ApplyClosure(a.Cond, fresh), u.ctx.ApplyClosure(b.Cond, fresh))

	case *value.ArrayLit:
		b, ok := v2.(*value.ArrayLit)
		if !ok || len(a.Values) != len(b.Values) {
			return fail(Mismatch, "expected an array literal of the same length")
		}
		for i := range a.Values {
			if err := u.unify(envLen, a.Values[i], b.Values[i]); err != nil {
				return err
			}
		}
		return nil

	case *value.RecordLit:
		// Both sides are RecordLit here: the (RecordLit, other) and
		// (other, RecordLit) shapes are handled by eta above, before this
		// switch is reached.
		b := v2.(*value.RecordLit)
		if !sameLabels(a.Labels, b.Labels) {
			return fail(Mismatch, "expected a record literal with the same fields")
		}
		for i := range a.Values {
			if err := u.unify(envLen, a.Values[i], b.Values[i]); err != nil {
				return err
			}
		}
		return nil

	case *value.ConstLit:
		b, ok := v2.(*value.ConstLit)
		if !ok || !a.Const.Equal(b.Const) {
			return fail(Mismatch, "expected equal constants")
		}
		return nil

	case *value.FunLit, *value.Stuck:
		return u.unifyRigidOrFun(envLen, v1, v2)

	default:
		return fail(Mismatch, "unhandled value")
	}
}

// unifyRecordLitEta unifies rl against other by projecting each of rl's
// fields out of other and unifying it with rl's own value for that
// field, rather than requiring other to already be a RecordLit — the
// unification counterpart of convert.recordLitEta, needed for the same
// reason (spec.md §4.G): a stuck value of record type can carry
// unsolved metavariables in a position that only surfaces once it is
// projected field by field.
func (u *unifier) unifyRecordLitEta(envLen int, rl *value.RecordLit, other value.Value) error {
	for i, label := range rl.Labels {
		if err := u.unify(envLen, rl.Values[i], u.ctx.RecordProj(other, label)); err != nil {
			return err
		}
	}
	return nil
}

// unifyRigidOrFun applies eta for function literals and otherwise compares
// two Stuck values head-to-head and spine-to-spine.
func (u *unifier) unifyRigidOrFun(envLen int, v1, v2 value.Value) error {
	if fl1, ok := v1.(*value.FunLit); ok {
		fresh := value.NewStuck(value.LocalVarHead(envLen))
		lhs := u.ctx.ApplyClosure(fl1.Body, fresh)
		rhs := u.ctx.FunApp(v2, fresh)
		return u.unify(envLen+1, lhs, rhs)
	}
	if fl2, ok := v2.(*value.FunLit); ok {
		fresh := value.NewStuck(value.LocalVarHead(envLen))
		lhs := u.ctx.FunApp(v1, fresh)
		rhs := u.ctx.ApplyClosure(fl2.Body, fresh)
		return u.unify(envLen+1, lhs, rhs)
	}

	s1, ok1 := v1.(*value.Stuck)
	s2, ok2 := v2.(*value.Stuck)
	if !ok1 || !ok2 {
		return fail(Mismatch, "incompatible value shapes")
	}
	if !s1.Head.Equal(s2.Head) {
		return fail(Mismatch, "different heads")
	}
	if len(s1.Spine) != len(s2.Spine) {
		return fail(Mismatch, "different spine lengths")
	}
	for i := range s1.Spine {
		if err := u.unifyElim(envLen, s1.Spine[i], s2.Spine[i]); err != nil {
			return err
		}
	}
	return nil
}

func (u *unifier) unifyElim(envLen int, e1, e2 value.Elim) error {
	if e1.Kind != e2.Kind {
		return fail(Mismatch, "different elimination kinds")
	}
	switch e1.Kind {
	case value.ElimFunApp:
		return u.unify(envLen, e1.Arg, e2.Arg)
	case value.ElimRecordProj:
		if e1.Label != e2.Label {
			return fail(Mismatch, "different projected labels")
		}
		return nil
	case value.ElimConstMatch:
		return u.unifyBranches(envLen, e1.Branches, e2.Branches)
	default:
		return fail(Mismatch, "unhandled elimination kind")
	}
}

func (u *unifier) unifyBranches(envLen int, b1, b2 *value.Branches) error {
	if len(b1.Patterns) != len(b2.Patterns) || len(b1.Bodies) != len(b2.Bodies) {
		return fail(Mismatch, "different constant-match arm counts")
	}
	for i := range b1.Patterns {
		if !b1.Patterns[i].Equal(b2.Patterns[i]) {
			return fail(Mismatch, "different constant-match patterns")
		}
		v1 := u.ctx.Eval(b1.Env, b1.Bodies[i])
		v2 := u.ctx.Eval(b2.Env, b2.Bodies[i])
		if err := u.unify(envLen, v1, v2); err != nil {
			return err
		}
	}
	if (b1.Default == nil) != (b2.Default == nil) {
		return fail(Mismatch, "one constant match has a default branch and the other doesn't")
	}
	if b1.Default == nil {
		return nil
	}
	fresh := value.NewStuck(value.LocalVarHead(envLen))
	v1 := u.ctx.Eval(b1.Env.Push(fresh), b1.Default)
	v2 := u.ctx.Eval(b2.Env.Push(fresh), b2.Default)
	return u.unify(envLen+1, v1, v2)
}

func (u *unifier) unifyTelescopes(envLen int, t1, t2 *value.Telescope) error {
	cur1, cur2 := t1, t2
	lvl := envLen
	for {
		split1, ok1 := u.ctx.SplitTelescope(cur1)
		split2, ok2 := u.ctx.SplitTelescope(cur2)
		if ok1 != ok2 {
			return fail(Mismatch, "telescopes have different lengths")
		}
		if !ok1 {
			return nil
		}
		if err := u.unify(lvl, split1.Value, split2.Value); err != nil {
			return err
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
