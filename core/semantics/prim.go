package semantics

import (
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/value"
)

// PrimStep is the total function from (prim, spine) to an optional result
// value: it returns ok=false whenever the primitive is not yet saturated,
// the spine has the wrong shape, an operand is not a literal, or the
// operation is itself undefined for its operands (overflow, division by
// zero, an out-of-width shift). All of those leave the call stuck rather
// than raising an Error — they are not programmer bugs, only unevaluable
// terms, exactly as spec.md §4.E requires.
func (c *Ctx) PrimStep(p syntax.Prim, spine []value.Elim) (value.Value, bool) {
	switch p {
	case syntax.FormatRepr:
		args := funAppArgs(spine)
		if len(args) != 1 {
			return nil, false
		}
		return c.FormatRepr(args[0]), true

	case syntax.OptionFold:
		return c.optionFold(spine)

	case syntax.Array8Find, syntax.Array16Find, syntax.Array32Find, syntax.Array64Find:
		return c.arrayFind(spine)

	case syntax.Array8Index, syntax.Array16Index, syntax.Array32Index, syntax.Array64Index:
		return c.arrayIndex(spine)
	}

	if signed, width, name, ok := syntax.DecodeArithPrim(p); ok {
		return c.arithStep(signed, width, name, spine)
	}

	// Format constructors, OptionSome/OptionNone and ReportedError never
	// reduce on their own; they are values (format descriptions, option
	// values, the error sentinel), not computations.
	return nil, false
}

func (c *Ctx) optionFold(spine []value.Elim) (value.Value, bool) {
	args := funAppArgs(spine)
	if len(args) != 3 {
		return nil, false
	}
	noneCase, someFn, opt := args[0], args[1], args[2]
	s, ok := c.Force(opt).(*value.Stuck)
	if !ok || s.Head.Kind != value.HeadPrim {
		return nil, false
	}
	switch s.Head.Prim {
	case syntax.OptionNone:
		return noneCase, true
	case syntax.OptionSome:
		optArgs := funAppArgs(s.Spine)
		if len(optArgs) != 1 {
			return nil, false
		}
		return c.FunApp(someFn, optArgs[0]), true
	default:
		return nil, false
	}
}

func (c *Ctx) arrayFind(spine []value.Elim) (value.Value, bool) {
	args := funAppArgs(spine)
	if len(args) != 2 {
		return nil, false
	}
	pred, arr := args[0], args[1]
	a, ok := c.Force(arr).(*value.ArrayLit)
	if !ok {
		return nil, false
	}
	for _, elem := range a.Values {
		res, ok := c.Force(c.FunApp(pred, elem)).(*value.ConstLit)
		if !ok || res.Const.Kind != syntax.KBool {
			return nil, false
		}
		if res.Const.Bool {
			return value.NewStuck(value.PrimHead(syntax.OptionSome)).WithElim(value.FunAppElim(elem)), true
		}
	}
	return value.NewStuck(value.PrimHead(syntax.OptionNone)), true
}

func (c *Ctx) arrayIndex(spine []value.Elim) (value.Value, bool) {
	args := funAppArgs(spine)
	if len(args) != 2 {
		return nil, false
	}
	idxVal, arr := args[0], args[1]
	idxLit, ok := c.Force(idxVal).(*value.ConstLit)
	if !ok || !idxLit.Const.Kind.IsUnsigned() {
		return nil, false
	}
	a, ok := c.Force(arr).(*value.ArrayLit)
	if !ok {
		return nil, false
	}
	idx := idxLit.Const.UInt
	if idx >= uint64(len(a.Values)) {
		return nil, false
	}
	return a.Values[idx], true
}

// arithStep implements checked per-width arithmetic, comparison and
// bitwise primitives. Overflow, division by zero and over-width shifts all
// leave the call stuck (ok=false) rather than abort, per spec.md §4.E.
func (c *Ctx) arithStep(signed bool, width int, name string, spine []value.Elim) (value.Value, bool) {
	args := funAppArgs(spine)
	if len(args) != 2 {
		return nil, false
	}
	lhs, ok1 := c.Force(args[0]).(*value.ConstLit)
	rhs, ok2 := c.Force(args[1]).(*value.ConstLit)
	if !ok1 || !ok2 {
		return nil, false
	}
	if signed {
		return arithSigned(width, name, lhs.Const, rhs.Const)
	}
	return arithUnsigned(width, name, lhs.Const, rhs.Const)
}

func isCompare(name string) bool {
	switch name {
	case "eq", "ne", "lt", "le", "gt", "ge":
		return true
	default:
		return false
	}
}

func compareResult(name string, cmp int) bool {
	switch name {
	case "eq":
		return cmp == 0
	case "ne":
		return cmp != 0
	case "lt":
		return cmp < 0
	case "le":
		return cmp <= 0
	case "gt":
		return cmp > 0
	case "ge":
		return cmp >= 0
	default:
		return false
	}
}

func boolResult(b bool) (value.Value, bool) {
	return &value.ConstLit{Const: syntax.MakeBool(b)}, true
}

func arithSigned(width int, name string, l, r syntax.Const) (value.Value, bool) {
	a, b := l.Int, r.Int
	if isCompare(name) {
		cmp := 0
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
		return boolResult(compareResult(name, cmp))
	}

	lo, hi := signedBounds(width)
	var res int64
	switch name {
	case "add":
		res = a + b
		if overflowsAdd(a, b, res) {
			return nil, false
		}
	case "sub":
		res = a - b
		if overflowsSub(a, b, res) {
			return nil, false
		}
	case "mul":
		res = a * b
		// -1 * lo wraps back to lo at width 64, and lo / -1 == lo again, so
		// the division check alone does not see that overflow.
		if a != 0 && (res/a != b || (a == -1 && b == lo)) {
			return nil, false
		}
	case "div":
		// a == lo && b == -1 is the one case the lo/hi bounds check below
		// cannot catch: at width 64, int64(lo)/-1 wraps silently back to lo
		// instead of panicking or overflowing into range, since two's
		// complement has no positive counterpart to MinInt64.
		if b == 0 || (a == lo && b == -1) {
			return nil, false
		}
		res = a / b
	default:
		return nil, false
	}
	if res < lo || res > hi {
		return nil, false
	}
	return &value.ConstLit{Const: syntax.MakeSigned(width, res, l.Style)}, true
}

func arithUnsigned(width int, name string, l, r syntax.Const) (value.Value, bool) {
	mask := uint64(1)<<uint(width) - 1
	if width == 64 {
		mask = ^uint64(0)
	}
	a, b := l.UInt, r.UInt

	if isCompare(name) {
		cmp := 0
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
		return boolResult(compareResult(name, cmp))
	}

	style := syntax.JoinStyle(l.Style, r.Style)
	var res uint64
	switch name {
	case "add":
		res = a + b
		if res&^mask != 0 || res < a {
			return nil, false
		}
	case "sub":
		if b > a {
			return nil, false
		}
		res = a - b
	case "mul":
		res = a * b
		if a != 0 && res/a != b {
			return nil, false
		}
		if res&^mask != 0 {
			return nil, false
		}
	case "div":
		if b == 0 {
			return nil, false
		}
		res = a / b
	case "and":
		res = a & b
	case "or":
		res = a | b
	case "xor":
		res = a ^ b
	case "shl":
		if b >= uint64(width) {
			return nil, false
		}
		res = (a << b) & mask
	case "shr":
		if b >= uint64(width) {
			return nil, false
		}
		res = a >> b
	default:
		return nil, false
	}
	return &value.ConstLit{Const: syntax.MakeUnsigned(width, res, style)}, true
}

func signedBounds(width int) (lo, hi int64) {
	switch width {
	case 8:
		return -1 << 7, 1<<7 - 1
	case 16:
		return -1 << 15, 1<<15 - 1
	case 32:
		return -1 << 31, 1<<31 - 1
	default:
		return -1 << 63, 1<<63 - 1
	}
}

func overflowsAdd(a, b, res int64) bool {
	return ((a ^ res) & (b ^ res)) < 0
}

func overflowsSub(a, b, res int64) bool {
	return ((a ^ b) & (a ^ res)) < 0
}
