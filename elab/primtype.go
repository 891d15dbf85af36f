package elab

import (
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/value"
)

// primType returns the type of a builtin primitive as a value, for use as
// the synthesised type of a surface.Var that resolves to the prelude
// (spec.md is silent on what types the builtins themselves carry; this is
// this module's Open Question resolution — see DESIGN.md). Every
// signature here is non-dependent, so it is built once as a closed core
// term and evaluated under an empty environment, then cached.
func (e *Elaborator) primType(p syntax.Prim) value.Value {
	if v, ok := e.primTypeCache[p]; ok {
		return v
	}
	term := primTypeTerm(p)
	v := e.ctx.Eval(value.LocalEnv{}, term)
	if e.primTypeCache == nil {
		e.primTypeCache = map[syntax.Prim]value.Value{}
	}
	e.primTypeCache[p] = v
	return v
}

var anonName = syntax.Name{}

func prim(p syntax.Prim) syntax.Term { return syntax.NewPrim(token.Span{}, p) }

func universeTerm() syntax.Term { return syntax.NewUniverse(token.Span{}) }

// pi builds a non-dependent `(anon : params[0]) -> (anon : params[1]) ->
// ... -> result` function type term, right-associated.
func pi(result syntax.Term, params ...syntax.Term) syntax.Term {
	t := result
	for i := len(params) - 1; i >= 0; i-- {
		t = syntax.NewFunType(token.Span{}, anonName, params[i], t)
	}
	return t
}

func arrayTypePrimFor(p syntax.Prim) syntax.Prim {
	switch p {
	case syntax.FormatArray8:
		return syntax.U8Type
	case syntax.FormatArray16:
		return syntax.U16Type
	case syntax.FormatArray32:
		return syntax.U32Type
	default:
		return syntax.U64Type
	}
}

func limitLenTypeFor(p syntax.Prim) syntax.Prim {
	switch p {
	case syntax.FormatLimit8:
		return syntax.U8Type
	case syntax.FormatLimit16:
		return syntax.U16Type
	case syntax.FormatLimit32:
		return syntax.U32Type
	default:
		return syntax.U64Type
	}
}

// primTypeTerm builds the closed core-term representation of p's type.
// Format constructors are typed as ordinary functions into Universe,
// since format descriptions live in the same universe as everything else
// this language classifies with Type (there is no distinguished `Format`
// sort in the primitive set spec.md §3 enumerates).
func primTypeTerm(p syntax.Prim) syntax.Term {
	if signed, width, name, ok := syntax.DecodeArithPrim(p); ok {
		operand := prim(opType0(signed, width))
		result := operand
		if isCompareName(name) {
			result = prim(syntax.BoolType)
		}
		return pi(result, operand, operand)
	}

	switch p {
	case syntax.FormatRepr:
		return pi(universeTerm(), universeTerm())

	case syntax.FormatU8, syntax.FormatU16Be, syntax.FormatU16Le, syntax.FormatU32Be, syntax.FormatU32Le,
		syntax.FormatU64Be, syntax.FormatU64Le, syntax.FormatS8, syntax.FormatS16Be, syntax.FormatS16Le,
		syntax.FormatS32Be, syntax.FormatS32Le, syntax.FormatS64Be, syntax.FormatS64Le,
		syntax.FormatStreamPos, syntax.FormatFail:
		return universeTerm()

	case syntax.FormatArray8, syntax.FormatArray16, syntax.FormatArray32, syntax.FormatArray64:
		return pi(universeTerm(), prim(arrayTypePrimFor(p)), universeTerm())

	case syntax.FormatLimit8, syntax.FormatLimit16, syntax.FormatLimit32, syntax.FormatLimit64:
		return pi(universeTerm(), prim(limitLenTypeFor(p)), universeTerm())

	case syntax.FormatRepeatUntilEnd:
		return pi(universeTerm(), universeTerm())

	case syntax.FormatLink:
		// (pos : Pos) -> (target : Type) -> Format
		return pi(universeTerm(), prim(syntax.PosType), universeTerm())

	case syntax.FormatDeref:
		// (elem : Format) -> (ptr : Ref elem) -> Format -- ptr's exact
		// dependent type is left as Universe here (the ptr value's
		// representation shape is enforced by convert/unify at the call
		// site, not by this signature): see DESIGN.md.
		return pi(universeTerm(), universeTerm(), universeTerm())

	case syntax.FormatSucceed, syntax.FormatUnwrap:
		// (T : Type) -> (value_or_opt : Type) -> Format -- the second
		// parameter is typed at Type, not at T
		return pi(universeTerm(), universeTerm(), universeTerm())

	case syntax.OptionSome:
		return pi(universeTerm(), universeTerm())
	case syntax.OptionNone:
		return universeTerm()
	case syntax.OptionFold:
		// (none : R) -> (some : T -> R) -> (opt : Option) -> R -- left fully
		// generic (Universe-typed) since Option has no dedicated type former
		// in spec.md §3; concrete usages are checked structurally at
		// application time.
		return pi(universeTerm(), universeTerm(), universeTerm(), universeTerm())

	case syntax.Array8Find, syntax.Array16Find, syntax.Array32Find, syntax.Array64Find:
		return pi(universeTerm(), universeTerm(), universeTerm())

	case syntax.Array8Index:
		return pi(universeTerm(), prim(syntax.U8Type), universeTerm())
	case syntax.Array16Index:
		return pi(universeTerm(), prim(syntax.U16Type), universeTerm())
	case syntax.Array32Index:
		return pi(universeTerm(), prim(syntax.U32Type), universeTerm())
	case syntax.Array64Index:
		return pi(universeTerm(), prim(syntax.U64Type), universeTerm())

	default:
		return universeTerm()
	}
}

func isCompareName(name string) bool {
	switch name {
	case "eq", "ne", "lt", "le", "gt", "ge":
		return true
	default:
		return false
	}
}

func signedTypeFor(width int) syntax.Prim {
	switch width {
	case 8:
		return syntax.S8Type
	case 16:
		return syntax.S16Type
	case 32:
		return syntax.S32Type
	default:
		return syntax.S64Type
	}
}

func unsignedTypeFor(width int) syntax.Prim {
	switch width {
	case 8:
		return syntax.U8Type
	case 16:
		return syntax.U16Type
	case 32:
		return syntax.U32Type
	default:
		return syntax.U64Type
	}
}

func opType0(signed bool, width int) syntax.Prim {
	if signed {
		return signedTypeFor(width)
	}
	return unsignedTypeFor(width)
}
