package semantics

import (
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/value"
)

// FormatRepr computes the representation type of a format description: the
// host type of the values that parsing the format would produce. It is a
// structural rewrite, exhaustively listed in spec.md §4.E.
func (c *Ctx) FormatRepr(format value.Value) value.Value {
	switch f := c.Force(format).(type) {
	case *value.FormatCond:
		return c.FormatRepr(f.Format)

	case *value.FormatRecord:
		// f.Telescope already carries ApplyRepr=true from evaluation (see
		// eval.go), so splitting it yields each field's representation type
		// directly.
		return &value.RecordType{Labels: f.Labels, Telescope: f.Telescope}

	case *value.FormatOverlap:
		return &value.RecordType{Labels: f.Labels, Telescope: f.Telescope}

	case *value.Stuck:
		if f.Head.Kind == value.HeadPrim {
			if v, ok := c.formatReprPrim(f.Head.Prim, f.Spine); ok {
				return v
			}
		}
		return stuckFormatRepr(format)

	default:
		abort(InvalidFormatRepr, "")
		return nil
	}
}

func stuckFormatRepr(format value.Value) value.Value {
	return value.NewStuck(value.PrimHead(syntax.FormatRepr)).WithElim(value.FunAppElim(format))
}

// formatReprPrim implements the atomic and spine-shaped format_repr rules
// over a stuck primitive-headed format value.
func (c *Ctx) formatReprPrim(p syntax.Prim, spine []value.Elim) (value.Value, bool) {
	args := funAppArgs(spine)
	if args == nil {
		return nil, false
	}

	switch p {
	case syntax.FormatU8:
		return typ(syntax.U8Type), true
	case syntax.FormatU16Be, syntax.FormatU16Le:
		return typ(syntax.U16Type), true
	case syntax.FormatU32Be, syntax.FormatU32Le:
		return typ(syntax.U32Type), true
	case syntax.FormatU64Be, syntax.FormatU64Le:
		return typ(syntax.U64Type), true
	case syntax.FormatS8:
		return typ(syntax.S8Type), true
	case syntax.FormatS16Be, syntax.FormatS16Le:
		return typ(syntax.S16Type), true
	case syntax.FormatS32Be, syntax.FormatS32Le:
		return typ(syntax.S32Type), true
	case syntax.FormatS64Be, syntax.FormatS64Le:
		return typ(syntax.S64Type), true
	case syntax.FormatStreamPos:
		return typ(syntax.PosType), true
	case syntax.FormatFail:
		return typ(syntax.VoidType), true

	case syntax.FormatArray8, syntax.FormatArray16, syntax.FormatArray32, syntax.FormatArray64:
		if len(args) != 2 {
			return nil, false
		}
		head := value.NewStuck(value.PrimHead(arrayTypePrim(p)))
		return head.WithElim(value.FunAppElim(args[0])).WithElim(value.FunAppElim(c.FormatRepr(args[1]))), true

	case syntax.FormatLimit8, syntax.FormatLimit16, syntax.FormatLimit32, syntax.FormatLimit64:
		if len(args) != 2 {
			return nil, false
		}
		return c.FormatRepr(args[1]), true

	case syntax.FormatRepeatUntilEnd:
		if len(args) != 1 {
			return nil, false
		}
		head := value.NewStuck(value.PrimHead(syntax.ArrayType))
		return head.WithElim(value.FunAppElim(c.FormatRepr(args[0]))), true

	case syntax.FormatLink:
		if len(args) != 2 {
			return nil, false
		}
		head := value.NewStuck(value.PrimHead(syntax.RefType))
		return head.WithElim(value.FunAppElim(args[1])), true

	case syntax.FormatDeref:
		if len(args) != 2 {
			return nil, false
		}
		return c.FormatRepr(args[0]), true

	case syntax.FormatSucceed:
		if len(args) != 2 {
			return nil, false
		}
		return args[0], true

	case syntax.FormatUnwrap:
		if len(args) != 2 {
			return nil, false
		}
		return args[0], true

	case syntax.ReportedError:
		return value.NewStuck(value.PrimHead(syntax.ReportedError)), true

	default:
		return nil, false
	}
}

func typ(p syntax.Prim) value.Value { return value.NewStuck(value.PrimHead(p)) }

// arrayTypePrim returns the Array{N}Type primitive matching the width of
// the given FormatArrayN primitive.
func arrayTypePrim(p syntax.Prim) syntax.Prim {
	switch p {
	case syntax.FormatArray8:
		return syntax.Array8Type
	case syntax.FormatArray16:
		return syntax.Array16Type
	case syntax.FormatArray32:
		return syntax.Array32Type
	default:
		return syntax.Array64Type
	}
}

// funAppArgs returns the argument values of a spine that consists solely
// of FunApp eliminations, or nil if the spine contains any other
// elimination kind (in which case the primitive cannot be format_repr'd or
// prim_step'd — it stays stuck). An empty spine (an unapplied format
// constructor head) yields an empty, non-nil slice, which the caller's
// atomic-case switch handles.
func funAppArgs(spine []value.Elim) []value.Value {
	args := make([]value.Value, 0, len(spine))
	for _, e := range spine {
		if e.Kind != value.ElimFunApp {
			return nil
		}
		args = append(args, e.Arg)
	}
	return args
}
