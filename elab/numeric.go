package elab

import (
	"strconv"
	"strings"

	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/surface"
)

// parseNumberLit interprets t's source text as a constant of the kind p
// names, the only place a NumberLit's width and signedness become known
// (spec.md §4.H: "numeric literals can only be checked, never
// synthesised"). It reports ok=false for a non-numeric expected prim, an
// unparsable text, or a value that overflows the target width.
func parseNumberLit(t *surface.NumberLit, p syntax.Prim) (syntax.Const, bool) {
	base := 10
	switch t.Style {
	case syntax.Hex:
		base = 16
	case syntax.Binary:
		base = 2
	}

	switch p {
	case syntax.BoolType:
		return syntax.Const{}, false

	case syntax.PosType:
		v, err := strconv.ParseInt(t.Text, base, 64)
		if err != nil {
			return syntax.Const{}, false
		}
		return syntax.MakePos(v), true

	case syntax.U8Type, syntax.U16Type, syntax.U32Type, syntax.U64Type:
		width := widthOfUnsigned(p)
		if t.Style == syntax.Ascii {
			v, ok := asciiCodepoint(t.Text)
			if !ok || (width < 64 && v >= 1<<uint(width)) {
				return syntax.Const{}, false
			}
			return syntax.MakeUnsigned(width, v, t.Style), true
		}
		v, err := strconv.ParseUint(t.Text, base, width)
		if err != nil {
			return syntax.Const{}, false
		}
		return syntax.MakeUnsigned(width, v, t.Style), true

	case syntax.S8Type, syntax.S16Type, syntax.S32Type, syntax.S64Type:
		width := widthOfSigned(p)
		if t.Style == syntax.Ascii {
			v, ok := asciiCodepoint(t.Text)
			if !ok || v > 1<<uint(width-1)-1 {
				return syntax.Const{}, false
			}
			return syntax.MakeSigned(width, int64(v), t.Style), true
		}
		v, err := strconv.ParseInt(t.Text, base, width)
		if err != nil {
			return syntax.Const{}, false
		}
		return syntax.MakeSigned(width, v, t.Style), true

	default:
		return syntax.Const{}, false
	}
}

// asciiCodepoint extracts the single rune an ascii-styled literal's text
// denotes (the parser is assumed to hand us the bare character, with any
// quoting already stripped).
func asciiCodepoint(text string) (uint64, bool) {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) != 1 {
		return 0, false
	}
	return uint64(runes[0]), true
}

func widthOfUnsigned(p syntax.Prim) int {
	switch p {
	case syntax.U8Type:
		return 8
	case syntax.U16Type:
		return 16
	case syntax.U32Type:
		return 32
	default:
		return 64
	}
}

func widthOfSigned(p syntax.Prim) int {
	switch p {
	case syntax.S8Type:
		return 8
	case syntax.S16Type:
		return 16
	case syntax.S32Type:
		return 32
	default:
		return 64
	}
}
