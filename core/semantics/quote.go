package semantics

import (
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/value"
)

// Quote reads a value back into a core term at the given environment
// length: it forces the value, then recursively quotes eliminations in
// spine order, instantiating every closure/telescope with a fresh local
// variable at the current level before recursing under the binder.
//
// Because Force unconditionally follows every solved metavariable chain
// before any value is inspected, Quote already never emits a Stuck head
// for a solved meta — solved metas are always inlined, recursively,
// before quoting proceeds. spec.md §4.E additionally names a
// "quote_unfolding_metas" variant; this module does not give it a
// separate implementation (see DESIGN.md's notes on unfoldMetasInPlace) since
// that behavior is already subsumed by Quote's mandatory forcing. Callers
// that want to name the intent — "this call site requires every meta to
// already be solved" — use QuoteUnfoldingMetas, an alias kept for call-site
// clarity and so the elaborator's final pass (spec.md §4.H) reads the way
// the spec describes it.
func (c *Ctx) Quote(envLen int, v value.Value) syntax.Term {
	forced := c.Force(v)
	switch fv := forced.(type) {
	case *value.Stuck:
		head := c.quoteHead(envLen, fv.Head)
		return c.quoteSpine(envLen, head, fv.Spine)

	case *value.Universe:
		return syntax.NewUniverse(token.Span{})

	case *value.FunType:
		name := Name(fv.ParamName)
		paramType := c.Quote(envLen, fv.ParamType)
		bodyVal := c.ApplyClosure(fv.Body, value.NewStuck(value.LocalVarHead(envLen)))
		bodyType := c.Quote(envLen+1, bodyVal)
		return syntax.NewFunType(token.Span{}, name, paramType, bodyType)

	case *value.FunLit:
		name := Name(fv.ParamName)
		bodyVal := c.ApplyClosure(fv.Body, value.NewStuck(value.LocalVarHead(envLen)))
		body := c.Quote(envLen+1, bodyVal)
		return syntax.NewFunLit(token.Span{}, name, body)

	case *value.RecordType:
		types := c.quoteTelescope(envLen, fv.Telescope)
		return syntax.NewRecordType(token.Span{}, fv.Labels, types)

	case *value.RecordLit:
		exprs := make([]syntax.Term, len(fv.Values))
		for i, v := range fv.Values {
			exprs[i] = c.Quote(envLen, v)
		}
		return syntax.NewRecordLit(token.Span{}, fv.Labels, exprs)

	case *value.ArrayLit:
		exprs := make([]syntax.Term, len(fv.Values))
		for i, v := range fv.Values {
			exprs[i] = c.Quote(envLen, v)
		}
		return syntax.NewArrayLit(token.Span{}, exprs)

	case *value.FormatRecord:
		// Eval marks a format telescope ApplyRepr; quote the formats
		// themselves, not their representation types.
		formats := c.quoteTelescope(envLen, value.NewTelescope(fv.Telescope.Env, fv.Telescope.Types, false))
		return syntax.NewFormatRecord(token.Span{}, fv.Labels, formats)

	case *value.FormatOverlap:
		formats := c.quoteTelescope(envLen, value.NewTelescope(fv.Telescope.Env, fv.Telescope.Types, false))
		return syntax.NewFormatOverlap(token.Span{}, fv.Labels, formats)

	case *value.FormatCond:
		name := Name(fv.Name)
		format := c.Quote(envLen, fv.Format)
		condVal := c.ApplyClosure(fv.Cond, value.NewStuck(value.LocalVarHead(envLen)))
		cond := c.Quote(envLen+1, condVal)
		return syntax.NewFormatCond(token.Span{}, name, format, cond)

	case *value.ConstLit:
		return syntax.NewConstLit(token.Span{}, fv.Const)

	default:
		abort(UnboundLocalVar, "quote: unhandled value")
		return nil
	}
}

// QuoteUnfoldingMetas is Quote under a name that documents the call site's
// intent: every metavariable reachable from v is expected to already be
// solved. See the note on Quote.
func (c *Ctx) QuoteUnfoldingMetas(envLen int, v value.Value) syntax.Term {
	return c.Quote(envLen, v)
}

// Normalise evaluates term under locals and immediately quotes the result
// back at the same environment length — spec.md §4.E's normalise, used for
// producing a normal form suitable for display or re-elaboration.
func (c *Ctx) Normalise(locals value.LocalEnv, term syntax.Term) syntax.Term {
	return c.Quote(locals.Len(), c.Eval(locals, term))
}

// Name builds a syntax.Name carrying ident with an unknown span; quoting
// values never has a meaningful source span to attach (the original
// binder's name is tracked for readability only).
func Name(ident token.Ident) syntax.Name { return syntax.Name{Ident: ident} }

func (c *Ctx) quoteHead(envLen int, h value.Head) syntax.Term {
	switch h.Kind {
	case value.HeadPrim:
		return syntax.NewPrim(token.Span{}, h.Prim)
	case value.HeadLocalVar:
		return syntax.NewLocalVar(token.Span{}, envLenToIndex(envLen, h.Level))
	default: // HeadMetaVar, still unsolved (Force already ruled out solved)
		return syntax.NewMetaVar(token.Span{}, h.Level)
	}
}

func envLenToIndex(envLen, level int) int { return envLen - level - 1 }

func (c *Ctx) quoteSpine(envLen int, head syntax.Term, spine []value.Elim) syntax.Term {
	t := head
	for _, e := range spine {
		switch e.Kind {
		case value.ElimFunApp:
			t = syntax.NewFunApp(token.Span{}, t, c.Quote(envLen, e.Arg))
		case value.ElimRecordProj:
			t = syntax.NewRecordProj(token.Span{}, t, e.Label)
		case value.ElimConstMatch:
			t = c.quoteConstMatch(envLen, t, e.Branches)
		}
	}
	return t
}

func (c *Ctx) quoteConstMatch(envLen int, head syntax.Term, br *value.Branches) syntax.Term {
	patterns := make([]syntax.Const, len(br.Patterns))
	copy(patterns, br.Patterns)
	branches := make([]syntax.Term, len(br.Bodies))
	for i, body := range br.Bodies {
		v := c.Eval(br.Env, body)
		branches[i] = c.Quote(envLen, v)
	}
	var def syntax.Term
	if br.Default != nil {
		scrutVal := value.NewStuck(value.LocalVarHead(envLen))
		v := c.Eval(br.Env.Push(scrutVal), br.Default)
		def = c.Quote(envLen+1, v)
	}
	return syntax.NewConstMatch(token.Span{}, head, patterns, branches, def)
}

// quoteTelescope peels every entry off t, binding a fresh local variable
// at each step (matching the convention that variable values in telescopes
// are only ever looked at through Quote/IsEqual, never mutated). Labels
// are not carried by Telescope itself — callers pair the result with the
// Labels field of the RecordType/FormatRecord/FormatOverlap value being
// quoted.
func (c *Ctx) quoteTelescope(envLen int, t *value.Telescope) []syntax.Term {
	var types []syntax.Term
	cur := t
	lvl := envLen
	for {
		split, ok := c.SplitTelescope(cur)
		if !ok {
			break
		}
		types = append(types, c.Quote(lvl, split.Value))
		cur = split.Rest(value.NewStuck(value.LocalVarHead(lvl)))
		lvl++
	}
	return types
}
