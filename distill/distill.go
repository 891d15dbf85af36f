// Package distill turns an elaborated core term back into a surface-like
// tree, for re-displaying or re-elaborating an already-checked term.
// spec.md §4.I specifies only the interface: "quote with metavariables
// unfolded back to a surface-like tree"; this package fills that stub in
// far enough to be exercised by tests, without taking on a pretty-printer's
// job (no text rendering, no source-layout preservation).
package distill

import (
	"strconv"

	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/internal/intern"
	"github.com/mna/calyx/surface"
)

// ItemNamer resolves a top-level item's de Bruijn level to the identifier
// it was originally bound under, so an ItemVar distills back to a named
// surface.Var instead of an opaque index. A nil ItemNamer makes any
// ItemVar distill to a Hole, since there is then no name to recover.
type ItemNamer interface {
	ItemName(level int) (token.Ident, bool)
}

// Distiller converts core terms to surface terms. Local binder names are
// recovered from the Name carried by FunType/FunLit/Let/FormatCond (core
// terms keep these purely for this purpose, per syntax.Name's doc
// comment); builtin primitives are distilled back to a surface.Var over
// their canonical display name, re-interned through interner so the
// result is usable as input to a fresh elaboration.
type Distiller struct {
	interner *intern.Table
	items    ItemNamer

	// binders holds the Ident each enclosing LocalVar binder was declared
	// with, innermost last, mirroring elab's own local-name stack.
	binders []token.Ident
}

// NewDistiller returns a Distiller that interns recovered names through
// interner. items may be nil if the term to distill contains no ItemVar.
func NewDistiller(interner *intern.Table, items ItemNamer) *Distiller {
	return &Distiller{interner: interner, items: items}
}

// ToSurface distills term, which must already have every metavariable it
// reaches resolved (e.g. the output of elab.Elaborate, which unfolds
// metas before returning) — an unresolved MetaVar/InsertedMeta distills to
// a Hole, since a surface tree has no way to name a metavariable.
func (d *Distiller) ToSurface(term syntax.Term) surface.Term {
	switch t := term.(type) {
	case *syntax.ItemVar:
		if d.items != nil {
			if name, ok := d.items.ItemName(t.Level); ok {
				return surface.NewVar(t.Span(), name)
			}
		}
		return surface.NewHole(t.Span())

	case *syntax.LocalVar:
		if t.Index < 0 || t.Index >= len(d.binders) {
			return surface.NewHole(t.Span())
		}
		name := d.binders[len(d.binders)-1-t.Index]
		return surface.NewVar(t.Span(), name)

	case *syntax.MetaVar:
		return surface.NewHole(t.Span())

	case *syntax.InsertedMeta:
		return surface.NewHole(t.Span())

	case *syntax.Ann:
		return surface.NewAnn(t.Span(), d.ToSurface(t.Expr), d.ToSurface(t.Type))

	case *syntax.Let:
		typ := d.ToSurface(t.Type)
		def := d.ToSurface(t.Def)
		body := d.pushBinder(t.Name.Ident, t.Body)
		return surface.NewLet(t.Span(), t.Name.Ident, typ, def, body)

	case *syntax.Universe:
		return surface.NewUniverse(t.Span())

	case *syntax.FunType:
		paramType := d.ToSurface(t.ParamType)
		body := d.pushBinder(t.ParamName.Ident, t.BodyType)
		return surface.NewFunType(t.Span(), t.ParamName.Ident, paramType, body)

	case *syntax.FunLit:
		body := d.pushBinder(t.ParamName.Ident, t.Body)
		return surface.NewFunLit(t.Span(), t.ParamName.Ident, body)

	case *syntax.FunApp:
		return surface.NewApp(t.Span(), d.ToSurface(t.Head), d.ToSurface(t.Arg))

	case *syntax.RecordType:
		types := make([]surface.Term, len(t.Types))
		// Each field's type scopes over the previous fields' labels; since
		// core RecordType terms carry label identifiers directly (unlike a
		// bare Telescope value), the same identifiers serve as binders here.
		for i, typ := range t.Types {
			types[i] = d.ToSurface(typ)
			d.binders = append(d.binders, t.Labels[i])
		}
		d.binders = d.binders[:len(d.binders)-len(t.Types)]
		return surface.NewRecordType(t.Span(), t.Labels, types)

	case *syntax.RecordLit:
		exprs := make([]surface.Term, len(t.Exprs))
		for i, e := range t.Exprs {
			exprs[i] = d.ToSurface(e)
		}
		return surface.NewRecordLit(t.Span(), t.Labels, exprs)

	case *syntax.RecordProj:
		return surface.NewProj(t.Span(), d.ToSurface(t.Head), t.Label)

	case *syntax.ArrayLit:
		exprs := make([]surface.Term, len(t.Exprs))
		for i, e := range t.Exprs {
			exprs[i] = d.ToSurface(e)
		}
		return surface.NewArrayLit(t.Span(), exprs)

	case *syntax.FormatRecord:
		return surface.NewFormatRecord(t.Span(), t.Labels, d.toSurfaceFormatFields(t.Labels, t.Formats))

	case *syntax.FormatOverlap:
		return surface.NewFormatOverlap(t.Span(), t.Labels, d.toSurfaceFormatFields(t.Labels, t.Formats))

	case *syntax.FormatCond:
		format := d.ToSurface(t.Format)
		cond := d.pushBinder(t.Name.Ident, t.Cond)
		return surface.NewFormatCond(t.Span(), t.Name.Ident, format, cond)

	case *syntax.PrimTerm:
		name := t.Prim.String()
		id := d.interner.Intern(name)
		return surface.NewVar(t.Span(), id)

	case *syntax.ConstLit:
		return d.constToSurface(t.Span(), t.Const)

	case *syntax.ConstMatch:
		return d.constMatchToSurface(t)

	default:
		return surface.NewHole(term.Span())
	}
}

// pushBinder distills inner with ident pushed as the innermost binder,
// then pops it before returning.
func (d *Distiller) pushBinder(ident token.Ident, inner syntax.Term) surface.Term {
	d.binders = append(d.binders, ident)
	out := d.ToSurface(inner)
	d.binders = d.binders[:len(d.binders)-1]
	return out
}

func (d *Distiller) toSurfaceFormatFields(labels []token.Ident, formats []syntax.Term) []surface.Term {
	out := make([]surface.Term, len(formats))
	pushed := 0
	for i, f := range formats {
		out[i] = d.ToSurface(f)
		d.binders = append(d.binders, labels[i])
		pushed++
	}
	d.binders = d.binders[:len(d.binders)-pushed]
	return out
}

func (d *Distiller) constToSurface(span token.Span, c syntax.Const) surface.Term {
	if c.Kind == syntax.KBool {
		return surface.NewBoolLit(span, c.Bool)
	}
	var v uint64
	if c.Kind.IsSigned() || c.Kind == syntax.KPos {
		v = uint64(c.Int)
	} else {
		v = c.UInt
	}
	return surface.NewNumberLit(span, formatConstText(v, c.Style), c.Style)
}

func formatConstText(v uint64, style syntax.NumStyle) string {
	switch style {
	case syntax.Hex:
		return strconv.FormatUint(v, 16)
	case syntax.Binary:
		return strconv.FormatUint(v, 2)
	case syntax.Ascii:
		return string(rune(v))
	default:
		return strconv.FormatUint(v, 10)
	}
}

func (d *Distiller) constMatchToSurface(t *syntax.ConstMatch) surface.Term {
	head := d.ToSurface(t.Head)
	arms := make([]surface.MatchArm, len(t.Branches))
	for i, body := range t.Branches {
		pat := d.constToSurface(t.Span(), t.Patterns[i])
		arms[i] = surface.MatchArm{Pattern: pat, Body: d.ToSurface(body)}
	}
	var def surface.Term
	if t.Default != nil {
		def = d.pushBinder(0, t.Default)
	}
	return surface.NewMatch(t.Span(), head, arms, def)
}
