package semantics

import "github.com/mna/calyx/core/value"

// Force follows metavariable solutions at the head of v until the head is
// either unsolved or not a metavariable. It is iterative rather than
// recursive to avoid stack growth on long solution chains, per the design
// note in spec.md §9.
func (c *Ctx) Force(v value.Value) value.Value {
	for {
		s, ok := v.(*value.Stuck)
		if !ok || !s.Head.IsMetaVar() {
			return v
		}
		sol, ok := c.Metas.Meta(s.Head.Level)
		if !ok {
			return v
		}
		v = c.applySpine(sol, s.Spine)
	}
}

// applySpine replays a stuck value's pending eliminations against a
// now-known value, in spine order.
func (c *Ctx) applySpine(v value.Value, spine []value.Elim) value.Value {
	for _, e := range spine {
		switch e.Kind {
		case value.ElimFunApp:
			v = c.FunApp(v, e.Arg)
		case value.ElimRecordProj:
			v = c.RecordProj(v, e.Label)
		case value.ElimConstMatch:
			v = c.ConstMatch(v, e.Branches)
		}
	}
	return v
}
