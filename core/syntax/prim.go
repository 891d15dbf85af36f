package syntax

// Prim enumerates every built-in operator the core language exposes:
// format representation, format constructors, option and array helpers,
// per-width integer arithmetic/comparison/bitwise operators, and the
// absorbing ReportedError sentinel.
type Prim uint16

const (
	PrimInvalid Prim = iota

	FormatRepr

	FormatU8
	FormatU16Be
	FormatU16Le
	FormatU32Be
	FormatU32Le
	FormatU64Be
	FormatU64Le
	FormatS8
	FormatS16Be
	FormatS16Le
	FormatS32Be
	FormatS32Le
	FormatS64Be
	FormatS64Le

	FormatArray8
	FormatArray16
	FormatArray32
	FormatArray64

	FormatLimit8
	FormatLimit16
	FormatLimit32
	FormatLimit64

	FormatRepeatUntilEnd
	FormatLink
	FormatDeref
	FormatStreamPos
	FormatSucceed
	FormatFail
	FormatUnwrap

	OptionSome
	OptionNone
	OptionFold

	Array8Find
	Array16Find
	Array32Find
	Array64Find
	Array8Index
	Array16Index
	Array32Index
	Array64Index

	ReportedError

	// Representation type formers: the stuck heads that format_repr
	// produces for atomic and compound formats. These are never reducible
	// further; they are the rigid "builtin type" symbols a real surface
	// language would bind names like U8, Array16, Ref, Pos and Void to.
	BoolType
	S8Type
	S16Type
	S32Type
	S64Type
	U8Type
	U16Type
	U32Type
	U64Type
	PosType
	VoidType
	Array8Type
	Array16Type
	Array32Type
	Array64Type
	ArrayType
	RefType

	// arithmetic/comparison/bitwise, repeated per width below
	primArithStart
)

// arithOp is the operator shape shared by every width's arithmetic,
// comparison and bitwise family.
type arithOp uint8

const (
	opAdd arithOp = iota
	opSub
	opMul
	opDiv
	opAnd
	opOr
	opXor
	opShl
	opShr
	opEq
	opNe
	opLt
	opLe
	opGt
	opGe
	numArithOps
)

var arithOpNames = [...]string{
	opAdd: "add", opSub: "sub", opMul: "mul", opDiv: "div",
	opAnd: "and", opOr: "or", opXor: "xor", opShl: "shl", opShr: "shr",
	opEq: "eq", opNe: "ne", opLt: "lt", opLe: "le", opGt: "gt", opGe: "ge",
}

var arithWidths = [...]int{8, 16, 32, 64}

// arithPrimBase returns the Prim encoding (width, signed, op), and
// DecodeArithPrim inverts it. Encoding as a small dense table (rather than
// 8 separate named constants per op, one per width) follows the teacher's
// own preference for data-driven tables over enumerated duplication (see
// lang/compiler/opcode.go's grouped, commented opcode blocks).
func arithPrimBase(signed bool, widthIdx int, op arithOp) Prim {
	signedIdx := 0
	if signed {
		signedIdx = 1
	}
	return primArithStart + Prim(signedIdx)*Prim(len(arithWidths))*Prim(numArithOps) +
		Prim(widthIdx)*Prim(numArithOps) + Prim(op)
}

// ArithPrim returns the Prim identifying the named integer operation at the
// given width (8/16/32/64) and signedness.
func ArithPrim(signed bool, width int, name string) Prim {
	widthIdx := -1
	for i, w := range arithWidths {
		if w == width {
			widthIdx = i
		}
	}
	if widthIdx < 0 {
		panic("syntax: invalid integer width")
	}
	for op, n := range arithOpNames {
		if n == name {
			return arithPrimBase(signed, widthIdx, arithOp(op))
		}
	}
	panic("syntax: unknown arithmetic operator " + name)
}

// DecodeArithPrim reports whether p is an arithmetic/comparison/bitwise
// primitive, and if so its signedness, width and operator name.
func DecodeArithPrim(p Prim) (signed bool, width int, name string, ok bool) {
	if p < primArithStart {
		return false, 0, "", false
	}
	rel := p - primArithStart
	total := Prim(len(arithWidths)) * Prim(numArithOps)
	if rel >= 2*total {
		return false, 0, "", false
	}
	signed = rel >= total
	if signed {
		rel -= total
	}
	widthIdx := int(rel) / int(numArithOps)
	op := arithOp(int(rel) % int(numArithOps))
	return signed, arithWidths[widthIdx], arithOpNames[op], true
}

// primEnd is the Prim value one past the last valid encoded primitive.
// Used by tests iterating the full set.
var primEnd = arithPrimBase(true, len(arithWidths)-1, numArithOps-1) + 1

// PrimEnd returns the exclusive upper bound of valid Prim values.
func PrimEnd() Prim { return primEnd }

var primNames = map[Prim]string{
	PrimInvalid:          "<invalid>",
	FormatRepr:           "format-repr",
	FormatU8:             "format-u8",
	FormatU16Be:          "format-u16be",
	FormatU16Le:          "format-u16le",
	FormatU32Be:          "format-u32be",
	FormatU32Le:          "format-u32le",
	FormatU64Be:          "format-u64be",
	FormatU64Le:          "format-u64le",
	FormatS8:             "format-s8",
	FormatS16Be:          "format-s16be",
	FormatS16Le:          "format-s16le",
	FormatS32Be:          "format-s32be",
	FormatS32Le:          "format-s32le",
	FormatS64Be:          "format-s64be",
	FormatS64Le:          "format-s64le",
	FormatArray8:         "format-array8",
	FormatArray16:        "format-array16",
	FormatArray32:        "format-array32",
	FormatArray64:        "format-array64",
	FormatLimit8:         "format-limit8",
	FormatLimit16:        "format-limit16",
	FormatLimit32:        "format-limit32",
	FormatLimit64:        "format-limit64",
	FormatRepeatUntilEnd: "format-repeat-until-end",
	FormatLink:           "format-link",
	FormatDeref:          "format-deref",
	FormatStreamPos:      "format-stream-pos",
	FormatSucceed:        "format-succeed",
	FormatFail:           "format-fail",
	FormatUnwrap:         "format-unwrap",
	OptionSome:           "option-some",
	OptionNone:           "option-none",
	OptionFold:           "option-fold",
	Array8Find:           "array8-find",
	Array16Find:          "array16-find",
	Array32Find:          "array32-find",
	Array64Find:          "array64-find",
	Array8Index:          "array8-index",
	Array16Index:         "array16-index",
	Array32Index:         "array32-index",
	Array64Index:         "array64-index",
	ReportedError:        "reported-error",
	BoolType:             "Bool",
	S8Type:               "S8",
	S16Type:              "S16",
	S32Type:              "S32",
	S64Type:              "S64",
	U8Type:               "U8",
	U16Type:              "U16",
	U32Type:              "U32",
	U64Type:              "U64",
	PosType:              "Pos",
	VoidType:             "Void",
	Array8Type:           "Array8",
	Array16Type:          "Array16",
	Array32Type:          "Array32",
	Array64Type:          "Array64",
	ArrayType:            "Array",
	RefType:              "Ref",
}

func (p Prim) String() string {
	if n, ok := primNames[p]; ok {
		return n
	}
	if signed, width, name, ok := DecodeArithPrim(p); ok {
		sign := "u"
		if signed {
			sign = "s"
		}
		return sign + "int" + itoa(width) + "-" + name
	}
	return "<unknown prim>"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

var primByName = func() map[string]Prim {
	m := make(map[string]Prim, len(primNames))
	for p, n := range primNames {
		m[n] = p
	}
	return m
}()

// PrimByName resolves a builtin's display name back to its Prim, for a
// prelude binding surface identifiers like "U8" or "format-u8" to core
// primitives. Arithmetic/comparison/bitwise operators use the same
// "{s|u}int{width}-{op}" spelling String produces, e.g. "uint32-add".
func PrimByName(name string) (Prim, bool) {
	if p, ok := primByName[name]; ok {
		return p, true
	}
	for _, signed := range [...]bool{false, true} {
		sign := "u"
		if signed {
			sign = "s"
		}
		for _, w := range arithWidths {
			for op, opName := range arithOpNames {
				if name == sign+"int"+itoa(w)+"-"+opName {
					return arithPrimBase(signed, indexOf(arithWidths[:], w), arithOp(op)), true
				}
			}
		}
	}
	return PrimInvalid, false
}

func indexOf(ws []int, w int) int {
	for i, x := range ws {
		if x == w {
			return i
		}
	}
	return -1
}

// IsFormatConstructor reports whether p builds a format description
// (excludes FormatRepr itself, which consumes one).
func (p Prim) IsFormatConstructor() bool {
	switch p {
	case FormatU8, FormatU16Be, FormatU16Le, FormatU32Be, FormatU32Le,
		FormatU64Be, FormatU64Le, FormatS8, FormatS16Be, FormatS16Le,
		FormatS32Be, FormatS32Le, FormatS64Be, FormatS64Le,
		FormatArray8, FormatArray16, FormatArray32, FormatArray64,
		FormatLimit8, FormatLimit16, FormatLimit32, FormatLimit64,
		FormatRepeatUntilEnd, FormatLink, FormatDeref, FormatStreamPos,
		FormatSucceed, FormatFail, FormatUnwrap:
		return true
	default:
		return false
	}
}
