package distill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/distill"
	"github.com/mna/calyx/internal/intern"
	"github.com/mna/calyx/surface"
)

func sp() token.Span { return token.Span{} }

func TestToSurfaceConstLit(t *testing.T) {
	interner := intern.NewTable(8)
	d := distill.NewDistiller(interner, nil)

	c := syntax.MakeBool(true)
	st := d.ToSurface(syntax.NewConstLit(sp(), c))

	bl, ok := st.(*surface.BoolLit)
	require.True(t, ok, "expected a BoolLit, got %T", st)
	assert.True(t, bl.Value)
}

func TestToSurfaceUnsignedNumberLit(t *testing.T) {
	interner := intern.NewTable(8)
	d := distill.NewDistiller(interner, nil)

	c := syntax.MakeUnsigned(8, 42, syntax.Decimal)
	st := d.ToSurface(syntax.NewConstLit(sp(), c))

	nl, ok := st.(*surface.NumberLit)
	require.True(t, ok, "expected a NumberLit, got %T", st)
	assert.Equal(t, "42", nl.Text)
	assert.Equal(t, syntax.Decimal, nl.Style)
}

func TestToSurfaceLocalVarResolvesBinderName(t *testing.T) {
	interner := intern.NewTable(8)
	x := interner.Intern("x")
	d := distill.NewDistiller(interner, nil)

	body := syntax.NewLocalVar(sp(), 0)
	name := syntax.Name{Ident: x, Span: sp()}
	let := syntax.NewLet(sp(), name, syntax.NewPrim(sp(), syntax.BoolType),
		syntax.NewConstLit(sp(), syntax.MakeBool(false)), body)

	st := d.ToSurface(let)
	sl, ok := st.(*surface.Let)
	require.True(t, ok, "expected a Let, got %T", st)

	v, ok := sl.Body.(*surface.Var)
	require.True(t, ok, "expected the let body to distill to a Var, got %T", sl.Body)
	assert.Equal(t, x, v.Name)
}

func TestToSurfaceLocalVarOutOfScopeIsHole(t *testing.T) {
	interner := intern.NewTable(8)
	d := distill.NewDistiller(interner, nil)

	st := d.ToSurface(syntax.NewLocalVar(sp(), 3))
	_, ok := st.(*surface.Hole)
	assert.True(t, ok, "expected a Hole for an unresolvable LocalVar, got %T", st)
}

func TestToSurfaceMetaVarIsHole(t *testing.T) {
	interner := intern.NewTable(8)
	d := distill.NewDistiller(interner, nil)

	st := d.ToSurface(syntax.NewMetaVar(sp(), 0))
	_, ok := st.(*surface.Hole)
	assert.True(t, ok, "expected a Hole for an unresolved MetaVar, got %T", st)
}

type staticItemNamer map[int]token.Ident

func (m staticItemNamer) ItemName(level int) (token.Ident, bool) {
	id, ok := m[level]
	return id, ok
}

func TestToSurfaceItemVarResolvesThroughNamer(t *testing.T) {
	interner := intern.NewTable(8)
	foo := interner.Intern("foo")
	namer := staticItemNamer{0: foo}
	d := distill.NewDistiller(interner, namer)

	st := d.ToSurface(syntax.NewItemVar(sp(), 0))
	v, ok := st.(*surface.Var)
	require.True(t, ok, "expected a Var, got %T", st)
	assert.Equal(t, foo, v.Name)
}

func TestToSurfaceItemVarWithoutNamerIsHole(t *testing.T) {
	interner := intern.NewTable(8)
	d := distill.NewDistiller(interner, nil)

	st := d.ToSurface(syntax.NewItemVar(sp(), 0))
	_, ok := st.(*surface.Hole)
	assert.True(t, ok, "expected a Hole when no ItemNamer is set, got %T", st)
}

func TestToSurfacePrimTermRoundTripsName(t *testing.T) {
	interner := intern.NewTable(8)
	d := distill.NewDistiller(interner, nil)

	st := d.ToSurface(syntax.NewPrim(sp(), syntax.FormatU8))
	v, ok := st.(*surface.Var)
	require.True(t, ok, "expected a Var, got %T", st)
	assert.Equal(t, syntax.FormatU8.String(), interner.Lookup(v.Name))
}

func TestToSurfaceRecordTypeFieldsSeeEarlierLabels(t *testing.T) {
	interner := intern.NewTable(8)
	a := interner.Intern("a")
	b := interner.Intern("b")
	d := distill.NewDistiller(interner, nil)

	// { a : Bool, b : a } -- the second field's type refers to the first
	// field's label by LocalVar(0).
	rt := syntax.NewRecordType(sp(), []token.Ident{a, b},
		[]syntax.Term{syntax.NewPrim(sp(), syntax.BoolType), syntax.NewLocalVar(sp(), 0)})

	st := d.ToSurface(rt)
	srt, ok := st.(*surface.RecordType)
	require.True(t, ok, "expected a RecordType, got %T", st)
	require.Len(t, srt.Types, 2)

	v, ok := srt.Types[1].(*surface.Var)
	require.True(t, ok, "expected the second field's type to distill to a Var, got %T", srt.Types[1])
	assert.Equal(t, a, v.Name)

	// binders must be fully popped after distilling the RecordType, so a
	// later, unrelated distill call does not see stale labels.
	st2 := d.ToSurface(syntax.NewLocalVar(sp(), 0))
	_, ok = st2.(*surface.Hole)
	assert.True(t, ok, "expected binders to be popped after RecordType, got %T", st2)
}

func TestToSurfaceConstMatchWithDefault(t *testing.T) {
	interner := intern.NewTable(8)
	d := distill.NewDistiller(interner, nil)

	head := syntax.NewPrim(sp(), syntax.U8Type)
	patterns := []syntax.Const{syntax.MakeUnsigned(8, 1, syntax.Decimal)}
	branches := []syntax.Term{syntax.NewConstLit(sp(), syntax.MakeBool(true))}
	def := syntax.NewConstLit(sp(), syntax.MakeBool(false))
	m := syntax.NewConstMatch(sp(), head, patterns, branches, def)

	st := d.ToSurface(m)
	sm, ok := st.(*surface.Match)
	require.True(t, ok, "expected a Match, got %T", st)
	require.Len(t, sm.Arms, 1)
	require.NotNil(t, sm.Default)
}
