package semantics

import (
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/value"
	"github.com/mna/calyx/internal/env"
)

// Eval produces the weak-head-normal-form value of term under locals. It
// does not descend into closure bodies or telescope tails; those are
// deferred until something eliminates them. Eval is pure with respect to
// its inputs: calling it twice with the same (locals, term) always
// produces an equivalent value.
//
// Unbound variables or ill-typed primitive applications are unrecoverable
// programmer bugs; Eval reports them by panicking with an Error, which the
// elaborator recovers at its own call boundary.
func (c *Ctx) Eval(locals value.LocalEnv, term syntax.Term) value.Value {
	switch t := term.(type) {
	case *syntax.ItemVar:
		v, ok := c.Items.Item(t.Level)
		if !ok {
			abort(UnboundItemVar, "")
		}
		return v

	case *syntax.LocalVar:
		if t.Index < 0 || t.Index >= locals.Len() {
			abort(UnboundLocalVar, "")
		}
		return locals.GetIndex(t.Index)

	case *syntax.MetaVar:
		if v, ok := c.Metas.Meta(t.Level); ok {
			return v
		}
		return value.NewStuck(value.MetaVarHead(t.Level))

	case *syntax.InsertedMeta:
		return c.evalInsertedMeta(locals, t)

	case *syntax.Ann:
		return c.Eval(locals, t.Expr)

	case *syntax.Let:
		def := c.Eval(locals, t.Def)
		return c.Eval(locals.Push(def), t.Body)

	case *syntax.Universe:
		return value.TheUniverse

	case *syntax.FunType:
		return &value.FunType{
			ParamName: t.ParamName.Ident,
			ParamType: c.Eval(locals, t.ParamType),
			Body:      value.NewClosure(locals, t.BodyType),
		}

	case *syntax.FunLit:
		return &value.FunLit{ParamName: t.ParamName.Ident, Body: value.NewClosure(locals, t.Body)}

	case *syntax.FunApp:
		return c.FunApp(c.Eval(locals, t.Head), c.Eval(locals, t.Arg))

	case *syntax.RecordType:
		return &value.RecordType{Labels: t.Labels, Telescope: value.NewTelescope(locals, t.Types, false)}

	case *syntax.RecordLit:
		vals := make([]value.Value, len(t.Exprs))
		for i, e := range t.Exprs {
			vals[i] = c.Eval(locals, e)
		}
		return &value.RecordLit{Labels: t.Labels, Values: vals}

	case *syntax.RecordProj:
		return c.RecordProj(c.Eval(locals, t.Head), t.Label)

	case *syntax.ArrayLit:
		vals := make([]value.Value, len(t.Exprs))
		for i, e := range t.Exprs {
			vals[i] = c.Eval(locals, e)
		}
		return &value.ArrayLit{Values: vals}

	case *syntax.FormatRecord:
		return &value.FormatRecord{Labels: t.Labels, Telescope: value.NewTelescope(locals, t.Formats, true)}

	case *syntax.FormatCond:
		return &value.FormatCond{
			Name:   t.Name.Ident,
			Format: c.Eval(locals, t.Format),
			Cond:   value.NewClosure(locals, t.Cond),
		}

	case *syntax.FormatOverlap:
		return &value.FormatOverlap{Labels: t.Labels, Telescope: value.NewTelescope(locals, t.Formats, true)}

	case *syntax.PrimTerm:
		return value.NewStuck(value.PrimHead(t.Prim))

	case *syntax.ConstLit:
		return &value.ConstLit{Const: t.Const}

	case *syntax.ConstMatch:
		head := c.Eval(locals, t.Head)
		branches := &value.Branches{Env: locals, Patterns: t.Patterns, Bodies: t.Branches, Default: t.Default}
		return c.ConstMatch(head, branches)

	default:
		abort(UnboundLocalVar, "eval: unhandled term node")
		return nil
	}
}

// evalInsertedMeta applies the referenced metavariable to every Param
// currently in scope and drops every Def, per spec.md §4.H: "Evaluating it
// applies the meta to every Param in scope; projects out every Def."
func (c *Ctx) evalInsertedMeta(locals value.LocalEnv, t *syntax.InsertedMeta) value.Value {
	result := c.Eval(locals, &syntax.MetaVar{Level: t.Level})
	for level, info := range t.LocalInfos {
		if info.Kind != syntax.Param {
			continue
		}
		idx := env.LevelToIndex(locals.Len(), level)
		result = c.FunApp(result, locals.GetIndex(idx))
	}
	return result
}
