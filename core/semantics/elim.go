package semantics

import (
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/value"
)

// ApplyClosure clones c's captured env, pushes arg, and evaluates c's body
// in the extended environment.
func (c *Ctx) ApplyClosure(clo *value.Closure, arg value.Value) value.Value {
	return c.Eval(clo.Env.Push(arg), clo.Body)
}

// TelescopeSplit is the result of peeling one entry off a Telescope.
type TelescopeSplit struct {
	// Value is the telescope's first bound value (passed through FormatRepr
	// first when the telescope's ApplyRepr flag is set).
	Value value.Value
	// Rest returns the remaining telescope, given the value the caller
	// chooses to bind at this position (not necessarily Value itself — the
	// caller controls what gets bound at each step, per spec.md §4.E).
	Rest func(bound value.Value) *value.Telescope
}

// SplitTelescope peels the first entry off t. It reports ok=false for an
// empty telescope, which callers must not otherwise split.
func (c *Ctx) SplitTelescope(t *value.Telescope) (TelescopeSplit, bool) {
	if len(t.Types) == 0 {
		return TelescopeSplit{}, false
	}
	first := c.Eval(t.Env, t.Types[0])
	if t.ApplyRepr {
		first = c.FormatRepr(first)
	}
	rest := t.Types[1:]
	applyRepr := t.ApplyRepr
	env := t.Env
	return TelescopeSplit{
		Value: first,
		Rest: func(bound value.Value) *value.Telescope {
			return value.NewTelescope(env.Push(bound), rest, applyRepr)
		},
	}, true
}

// FunApp beta-reduces a FunLit head, extends the spine of a Stuck head
// (additionally invoking PrimStep when the head is a primitive), and
// panics for anything else — a function application past type-checking
// can only ever see one of those two shapes.
func (c *Ctx) FunApp(head, arg value.Value) value.Value {
	switch h := c.Force(head).(type) {
	case *value.FunLit:
		return c.ApplyClosure(h.Body, arg)
	case *value.Stuck:
		next := h.WithElim(value.FunAppElim(arg))
		if h.Head.Kind == value.HeadPrim {
			if v, ok := c.PrimStep(h.Head.Prim, next.Spine); ok {
				return v
			}
		}
		return next
	default:
		abort(InvalidFunctionApp, "")
		return nil
	}
}

// RecordProj projects label out of a RecordLit head, extends the spine of
// a Stuck head, and panics otherwise.
func (c *Ctx) RecordProj(head value.Value, label token.Ident) value.Value {
	switch h := c.Force(head).(type) {
	case *value.RecordLit:
		for i, l := range h.Labels {
			if l == label {
				return h.Values[i]
			}
		}
		abort(InvalidRecordProj, "label not found in record literal")
		return nil
	case *value.Stuck:
		return h.WithElim(value.RecordProjElim(label))
	default:
		abort(InvalidRecordProj, "")
		return nil
	}
}

// ConstMatch picks the first branch whose pattern equals the (forced)
// scrutinee for a ConstLit head, evaluating the optional default (with the
// scrutinee bound) when no pattern matches; extends the spine of a Stuck
// head; and panics for a literal scrutinee with no matching branch and no
// default.
//
// A ReportedError scrutinee short-circuits to itself without evaluating
// any branch: once an error has been reported at a site, matching against
// it must not cascade further diagnostics, per spec.md §3's absorption
// invariant (this mirrors the original Fathom implementation's treatment
// of const_match, which the distilled spec is silent on).
func (c *Ctx) ConstMatch(head value.Value, branches *value.Branches) value.Value {
	forced := c.Force(head)
	if s, ok := forced.(*value.Stuck); ok {
		if s.Head.Kind == value.HeadPrim && s.Head.Prim == syntax.ReportedError && len(s.Spine) == 0 {
			return forced
		}
		return s.WithElim(value.ConstMatchElim(branches))
	}
	lit, ok := forced.(*value.ConstLit)
	if !ok {
		abort(InvalidConstMatch, "")
		return nil
	}
	for i, pat := range branches.Patterns {
		if pat.Equal(lit.Const) {
			return c.Eval(branches.Env, branches.Bodies[i])
		}
	}
	if branches.Default == nil {
		abort(MissingConstDefault, "")
		return nil
	}
	return c.Eval(branches.Env.Push(forced), branches.Default)
}
