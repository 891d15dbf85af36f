package elab

import "github.com/mna/calyx/core/syntax"

// preludeNames lists the builtin identifiers pre-registered by
// buildPrelude (format constructors, representation type formers,
// option/array helpers); each of them is also a name syntax.PrimByName
// resolves. The per-width arithmetic/comparison/bitwise operators have no
// entry here and are reached through PrimByName directly (e.g.
// "uint8-add").
var preludeNames = []string{
	"format-repr",
	"format-u8", "format-u16be", "format-u16le", "format-u32be", "format-u32le",
	"format-u64be", "format-u64le", "format-s8", "format-s16be", "format-s16le",
	"format-s32be", "format-s32le", "format-s64be", "format-s64le",
	"format-array8", "format-array16", "format-array32", "format-array64",
	"format-limit8", "format-limit16", "format-limit32", "format-limit64",
	"format-repeat-until-end", "format-link", "format-deref", "format-stream-pos",
	"format-succeed", "format-fail", "format-unwrap",
	"option-some", "option-none", "option-fold",
	"array8-find", "array16-find", "array32-find", "array64-find",
	"array8-index", "array16-index", "array32-index", "array64-index",
	"Bool", "S8", "S16", "S32", "S64", "U8", "U16", "U32", "U64",
	"Pos", "Void", "Array8", "Array16", "Array32", "Array64", "Array", "Ref",
}

// buildPrelude resolves every name in preludeNames through
// syntax.PrimByName once, up front, and panics if one of them is not a
// known primitive.
func buildPrelude() map[string]syntax.Prim {
	m := make(map[string]syntax.Prim, len(preludeNames))
	for _, n := range preludeNames {
		p, ok := syntax.PrimByName(n)
		if !ok {
			panic("elab: prelude name not a known primitive: " + n)
		}
		m[n] = p
	}
	return m
}

// lookupPrelude resolves a surface identifier's source text against the
// builtin prelude, falling back to syntax.PrimByName's arithmetic-naming
// scheme for names not pre-registered (e.g. "uint16-mul").
func (e *Elaborator) lookupPrelude(name string) (syntax.Prim, bool) {
	if e.prelude != nil {
		if p, ok := e.prelude[name]; ok {
			return p, true
		}
	}
	return syntax.PrimByName(name)
}
