package unify

import (
	"github.com/dolthub/swiss"

	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/value"
)

// renaming is a partial map from the local-variable levels of the
// domain (the context the right-hand side of a solved equation lives in)
// to the levels of the codomain (the fresh binders that the meta's
// solution term will be wrapped in). It grows by one entry each time
// rename descends under a binder. Backed by swiss.Map the way
// intern.Table backs identifier interning: a flat open-addressing table
// reused here for a small, short-lived level→level scope rather than a
// long-lived string table, but the same library either way.
type renaming struct {
	byLevel *swiss.Map[int, int]
	domLen  int
	codLen  int
}

func (pr renaming) extend() renaming {
	m := swiss.NewMap[int, int](uint32(pr.byLevel.Count() + 1))
	pr.byLevel.Iter(func(k, v int) bool {
		m.Put(k, v)
		return false
	})
	m.Put(pr.domLen, pr.codLen)
	return renaming{byLevel: m, domLen: pr.domLen + 1, codLen: pr.codLen + 1}
}

// buildPatternRenaming checks that spine consists solely of
// FunApp(LocalVar) eliminations with pairwise-distinct levels (the Miller
// pattern fragment, spec.md §4.G) and builds the renaming from those
// levels to fresh codomain positions in spine order.
func (u *unifier) buildPatternRenaming(envLen int, spine []value.Elim) (renaming, error) {
	pr := renaming{byLevel: swiss.NewMap[int, int](0), domLen: envLen, codLen: 0}
	for _, e := range spine {
		if e.Kind != value.ElimFunApp {
			return renaming{}, fail(NonPatternSpine, "metavariable applied to a non-argument elimination")
		}
		s, ok := u.ctx.Force(e.Arg).(*value.Stuck)
		if !ok || s.Head.Kind != value.HeadLocalVar || len(s.Spine) != 0 {
			return renaming{}, fail(NonPatternSpine, "metavariable argument is not a bare local variable")
		}
		if _, seen := pr.byLevel.Get(s.Head.Level); seen {
			return renaming{}, fail(NonLinearSpine, "metavariable argument repeats a local variable")
		}
		pr.byLevel.Put(s.Head.Level, pr.codLen)
		pr.codLen++
	}
	return pr, nil
}

// solve implements the Stuck(MetaVar m, spine) ~ rhs case: it checks the
// pattern fragment, inverts it into a renaming, renames rhs through that
// renaming (failing the occurs check against m and the escape check
// against any local variable outside the renaming's domain, pruning
// nested metavariables where possible), wraps the result in len(spine)
// FunLit binders, and records the solution.
func (u *unifier) solve(envLen, metaLevel int, spine []value.Elim, rhs value.Value) error {
	pr, err := u.buildPatternRenaming(envLen, spine)
	if err != nil {
		return err
	}
	body, err := u.rename(metaLevel, pr, rhs)
	if err != nil {
		return err
	}
	solutionTerm := wrapFunLits(body, len(spine))
	solVal := u.ctx.Eval(value.LocalEnv{}, solutionTerm)
	u.metas.Solve(metaLevel, solVal)
	return nil
}

// intersectMeta handles Stuck(MetaVar m, sp1) ~ Stuck(MetaVar m, sp2) for
// the same m: where the two spines agree (the same local variable at the
// same position) no constraint is generated; where they disagree, m is
// pruned to a fresh, narrower metavariable that only ever sees the
// agreeing positions.
func (u *unifier) intersectMeta(level int, sp1, sp2 []value.Elim) error {
	if len(sp1) != len(sp2) {
		return fail(Mismatch, "same metavariable applied to a different number of arguments")
	}
	keep := make([]bool, len(sp1))
	for i := range sp1 {
		if sp1[i].Kind != value.ElimFunApp || sp2[i].Kind != value.ElimFunApp {
			return fail(NonPatternSpine, "metavariable applied to a non-argument elimination")
		}
		a, ok1 := u.ctx.Force(sp1[i].Arg).(*value.Stuck)
		b, ok2 := u.ctx.Force(sp2[i].Arg).(*value.Stuck)
		keep[i] = ok1 && ok2 && a.Head.Kind == value.HeadLocalVar && b.Head.Kind == value.HeadLocalVar &&
			len(a.Spine) == 0 && len(b.Spine) == 0 && a.Head.Level == b.Head.Level
	}
	if allTrue(keep) {
		return nil
	}
	if !anyTrue(keep) {
		return fail(EscapingRigidVariable, "same metavariable's two spines share no argument")
	}
	u.pruneTo(level, keep)
	return nil
}

// pruneTo solves the metavariable at level to a function that forwards
// only the kept argument positions to a freshly created, narrower
// metavariable.
func (u *unifier) pruneTo(level int, keep []bool) int {
	newLevel := u.metas.Fresh()
	n := len(keep)
	var body syntax.Term = syntax.NewMetaVar(token.Span{}, newLevel)
	for i := 0; i < n; i++ {
		if keep[i] {
			body = syntax.NewFunApp(token.Span{}, body, syntax.NewLocalVar(token.Span{}, n-1-i))
		}
	}
	u.metas.Solve(level, u.ctx.Eval(value.LocalEnv{}, wrapFunLits(body, n)))
	return newLevel
}

func wrapFunLits(body syntax.Term, n int) syntax.Term {
	t := body
	for i := 0; i < n; i++ {
		t = syntax.NewFunLit(token.Span{}, syntax.Name{}, t)
	}
	return t
}

func allTrue(bs []bool) bool {
	for _, b := range bs {
		if !b {
			return false
		}
	}
	return true
}

func anyTrue(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}

// rename reads v back into a term valid under pr's codomain, substituting
// local variables through pr and failing if v mentions m (the occurs
// check) or a local variable pr cannot place (an escaping rigid
// variable) — except where the escaping variable belongs to another,
// still-unsolved metavariable's spine, which is pruned instead of
// failing outright.
func (u *unifier) rename(m int, pr renaming, v value.Value) (syntax.Term, error) {
	fv := u.ctx.Force(v)
	switch val := fv.(type) {
	case *value.Stuck:
		return u.renameStuck(m, pr, val)

	case *value.Universe:
		return syntax.NewUniverse(token.Span{}), nil

	case *value.FunType:
		pt, err := u.rename(m, pr, val.ParamType)
		if err != nil {
			return nil, err
		}
		bodyVal := u.ctx.ApplyClosure(val.Body, value.NewStuck(value.LocalVarHead(pr.domLen)))
		bt, err := u.rename(m, pr.extend(), bodyVal)
		if err != nil {
			return nil, err
		}
		return syntax.NewFunType(token.Span{}, syntax.Name{Ident: val.ParamName}, pt, bt), nil

	case *value.FunLit:
		bodyVal := u.ctx.ApplyClosure(val.Body, value.NewStuck(value.LocalVarHead(pr.domLen)))
		body, err := u.rename(m, pr.extend(), bodyVal)
		if err != nil {
			return nil, err
		}
		return syntax.NewFunLit(token.Span{}, syntax.Name{Ident: val.ParamName}, body), nil

	case *value.RecordType:
		types, err := u.renameTelescope(m, pr, val.Telescope)
		if err != nil {
			return nil, err
		}
		return syntax.NewRecordType(token.Span{}, val.Labels, types), nil

	case *value.RecordLit:
		exprs := make([]syntax.Term, len(val.Values))
		for i, v2 := range val.Values {
			t, err := u.rename(m, pr, v2)
			if err != nil {
				return nil, err
			}
			exprs[i] = t
		}
		return syntax.NewRecordLit(token.Span{}, val.Labels, exprs), nil

	case *value.ArrayLit:
		exprs := make([]syntax.Term, len(val.Values))
		for i, v2 := range val.Values {
			t, err := u.rename(m, pr, v2)
			if err != nil {
				return nil, err
			}
			exprs[i] = t
		}
		return syntax.NewArrayLit(token.Span{}, exprs), nil

	case *value.FormatRecord:
		formats, err := u.renameTelescope(m, pr, value.NewTelescope(val.Telescope.Env, val.Telescope.Types, false))
		if err != nil {
			return nil, err
		}
		return syntax.NewFormatRecord(token.Span{}, val.Labels, formats), nil

	case *value.FormatOverlap:
		formats, err := u.renameTelescope(m, pr, value.NewTelescope(val.Telescope.Env, val.Telescope.Types, false))
		if err != nil {
			return nil, err
		}
		return syntax.NewFormatOverlap(token.Span{}, val.Labels, formats), nil

	case *value.FormatCond:
		format, err := u.rename(m, pr, val.Format)
		if err != nil {
			return nil, err
		}
		condVal := u.ctx.ApplyClosure(val.Cond, value.NewStuck(value.LocalVarHead(pr.domLen)))
		cond, err := u.rename(m, pr.extend(), condVal)
		if err != nil {
			return nil, err
		}
		return syntax.NewFormatCond(token.Span{}, syntax.Name{Ident: val.Name}, format, cond), nil

	case *value.ConstLit:
		return syntax.NewConstLit(token.Span{}, val.Const), nil

	default:
		return nil, fail(Mismatch, "rename: unhandled value")
	}
}

func (u *unifier) renameStuck(m int, pr renaming, s *value.Stuck) (syntax.Term, error) {
	switch s.Head.Kind {
	case value.HeadLocalVar:
		codLvl, ok := pr.byLevel.Get(s.Head.Level)
		if !ok {
			return nil, fail(EscapingRigidVariable, "local variable not bound by the metavariable's spine")
		}
		head := syntax.NewLocalVar(token.Span{}, pr.codLen-codLvl-1)
		return u.renameSpine(m, pr, head, s.Spine)

	case value.HeadPrim:
		head := syntax.NewPrim(token.Span{}, s.Head.Prim)
		return u.renameSpine(m, pr, head, s.Spine)

	default: // HeadMetaVar: already Force'd, so it is unsolved.
		if s.Head.Level == m {
			return nil, fail(InfiniteSolution, "metavariable occurs in its own solution")
		}
		return u.renameNestedMeta(m, pr, s.Head.Level, s.Spine)
	}
}

// renameNestedMeta handles an unsolved metavariable other than m appearing
// inside the value being renamed. When every argument renames cleanly the
// application is rebuilt as-is; when some arguments escape, the nested
// meta is pruned to a fresh metavariable that only takes the surviving
// arguments, and the rebuilt application uses that narrower metavariable.
func (u *unifier) renameNestedMeta(m int, pr renaming, level int, spine []value.Elim) (syntax.Term, error) {
	allFunApp := true
	for _, e := range spine {
		if e.Kind != value.ElimFunApp {
			allFunApp = false
			break
		}
	}
	if !allFunApp {
		// Not a candidate for pruning; any escaping variable inside simply
		// fails the rename.
		return u.renameSpine(m, pr, syntax.NewMetaVar(token.Span{}, level), spine)
	}

	type arg struct {
		term syntax.Term
		keep bool
	}
	args := make([]arg, len(spine))
	anyPruned := false
	for i, e := range spine {
		t, err := u.rename(m, pr, e.Arg)
		if err == nil {
			args[i] = arg{term: t, keep: true}
			continue
		}
		uerr, ok := err.(*Error)
		if !ok || uerr.Kind != EscapingRigidVariable {
			return nil, err
		}
		args[i] = arg{keep: false}
		anyPruned = true
	}

	if !anyPruned {
		var t syntax.Term = syntax.NewMetaVar(token.Span{}, level)
		for _, a := range args {
			t = syntax.NewFunApp(token.Span{}, t, a.term)
		}
		return t, nil
	}

	keep := make([]bool, len(args))
	for i, a := range args {
		keep[i] = a.keep
	}
	if !anyTrue(keep) {
		return nil, fail(EscapingRigidVariable, "every argument of a nested metavariable escapes")
	}
	newLevel := u.pruneTo(level, keep)

	var t syntax.Term = syntax.NewMetaVar(token.Span{}, newLevel)
	for _, a := range args {
		if a.keep {
			t = syntax.NewFunApp(token.Span{}, t, a.term)
		}
	}
	return t, nil
}

func (u *unifier) renameSpine(m int, pr renaming, head syntax.Term, spine []value.Elim) (syntax.Term, error) {
	t := head
	for _, e := range spine {
		switch e.Kind {
		case value.ElimFunApp:
			arg, err := u.rename(m, pr, e.Arg)
			if err != nil {
				return nil, err
			}
			t = syntax.NewFunApp(token.Span{}, t, arg)
		case value.ElimRecordProj:
			t = syntax.NewRecordProj(token.Span{}, t, e.Label)
		case value.ElimConstMatch:
			ct, err := u.renameConstMatch(m, pr, t, e.Branches)
			if err != nil {
				return nil, err
			}
			t = ct
		}
	}
	return t, nil
}

func (u *unifier) renameConstMatch(m int, pr renaming, head syntax.Term, br *value.Branches) (syntax.Term, error) {
	patterns := make([]syntax.Const, len(br.Patterns))
	copy(patterns, br.Patterns)
	branches := make([]syntax.Term, len(br.Bodies))
	for i, body := range br.Bodies {
		v := u.ctx.Eval(br.Env, body)
		t, err := u.rename(m, pr, v)
		if err != nil {
			return nil, err
		}
		branches[i] = t
	}
	var def syntax.Term
	if br.Default != nil {
		scrutVal := value.NewStuck(value.LocalVarHead(pr.domLen))
		v := u.ctx.Eval(br.Env.Push(scrutVal), br.Default)
		t, err := u.rename(m, pr.extend(), v)
		if err != nil {
			return nil, err
		}
		def = t
	}
	return syntax.NewConstMatch(token.Span{}, head, patterns, branches, def), nil
}

func (u *unifier) renameTelescope(m int, pr renaming, t *value.Telescope) ([]syntax.Term, error) {
	var types []syntax.Term
	cur := t
	p := pr
	for {
		split, ok := u.ctx.SplitTelescope(cur)
		if !ok {
			break
		}
		ty, err := u.rename(m, p, split.Value)
		if err != nil {
			return nil, err
		}
		types = append(types, ty)
		cur = split.Rest(value.NewStuck(value.LocalVarHead(p.domLen)))
		p = p.extend()
	}
	return types, nil
}
