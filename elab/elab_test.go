package elab_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/value"
	"github.com/mna/calyx/diagnostic"
	"github.com/mna/calyx/elab"
	"github.com/mna/calyx/internal/intern"
	"github.com/mna/calyx/surface"
)

// sp returns the zero-value span used throughout these tests: none of
// them exercise diagnostic message formatting of source positions, only
// the diagnostics' presence/absence and the resulting core term shape.
func sp() token.Span { return token.Span{} }

func u8Type() value.Value { return value.NewStuck(value.PrimHead(syntax.U8Type)) }

func elaborate(t *testing.T, interner *intern.Table, st surface.Term, expected *value.Value) (*elab.Result, []diagnostic.Diagnostic) {
	t.Helper()
	res, diags := elab.Elaborate(context.Background(), interner, st, expected)
	require.NotNil(t, res)
	return res, diags
}

func errorMessages(diags []diagnostic.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		if d.Severity == diagnostic.Error || d.Severity == diagnostic.Bug {
			out = append(out, d.Message)
		}
	}
	return out
}

func TestElaborateBoolLit(t *testing.T) {
	st := surface.NewBoolLit(sp(), true)
	res, diags := elaborate(t, nil, st, nil)
	assert.Empty(t, errorMessages(diags))
	cl, ok := res.Term.(*syntax.ConstLit)
	require.True(t, ok, "expected a ConstLit, got %T", res.Term)
	assert.Equal(t, syntax.KBool, cl.Const.Kind)
	assert.True(t, cl.Const.Bool)
}

func TestCheckNumberLitAgainstU8(t *testing.T) {
	st := surface.NewNumberLit(sp(), "200", syntax.Decimal)
	expected := u8Type()
	res, diags := elaborate(t, nil, st, &expected)
	assert.Empty(t, errorMessages(diags))
	cl, ok := res.Term.(*syntax.ConstLit)
	require.True(t, ok, "expected a ConstLit, got %T", res.Term)
	assert.Equal(t, syntax.KU8, cl.Const.Kind)
	assert.EqualValues(t, 200, cl.Const.UInt)
}

func TestCheckNumberLitOverflowsU8(t *testing.T) {
	st := surface.NewNumberLit(sp(), "9000", syntax.Decimal)
	expected := u8Type()
	_, diags := elaborate(t, nil, st, &expected)
	assert.NotEmpty(t, errorMessages(diags))
}

func TestSynthNumberLitIsAmbiguous(t *testing.T) {
	st := surface.NewNumberLit(sp(), "5", syntax.Decimal)
	_, diags := elaborate(t, nil, st, nil)
	msgs := errorMessages(diags)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "annotation")
}

func TestSynthVarResolvesPrelude(t *testing.T) {
	interner := intern.NewTable(8)
	id := interner.Intern("format-u8")
	st := surface.NewVar(sp(), id)
	res, diags := elaborate(t, interner, st, nil)
	assert.Empty(t, errorMessages(diags))
	pt, ok := res.Term.(*syntax.PrimTerm)
	require.True(t, ok, "expected a PrimTerm, got %T", res.Term)
	assert.Equal(t, syntax.FormatU8, pt.Prim)
}

func TestSynthVarUnbound(t *testing.T) {
	interner := intern.NewTable(8)
	id := interner.Intern("nonexistent")
	st := surface.NewVar(sp(), id)
	_, diags := elaborate(t, interner, st, nil)
	msgs := errorMessages(diags)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "unbound")
}

func TestCheckFunLitAgainstFunType(t *testing.T) {
	interner := intern.NewTable(8)
	x := interner.Intern("x")

	// fun x => x checked against the explicit non-dependent FunType value,
	// so no metavariable insertion is exercised here.
	body := surface.NewVar(sp(), x)
	fn := surface.NewFunLit(sp(), x, body)

	u8 := u8Type()
	funTyp := &value.FunType{
		ParamName: x,
		ParamType: u8,
		Body:      value.NewClosure(value.LocalEnv{}, syntax.NewPrim(sp(), syntax.U8Type)),
	}
	var expected value.Value = funTyp
	res, diags := elaborate(t, interner, fn, &expected)
	assert.Empty(t, errorMessages(diags))
	_, ok := res.Term.(*syntax.FunLit)
	require.True(t, ok, "expected a FunLit, got %T", res.Term)
}

func TestSynthLetWithAnnotation(t *testing.T) {
	interner := intern.NewTable(8)
	x := interner.Intern("x")

	def := surface.NewBoolLit(sp(), false)
	typAnn := surface.NewVar(sp(), interner.Intern("Bool"))
	body := surface.NewVar(sp(), x)
	let := surface.NewLet(sp(), x, typAnn, def, body)

	res, diags := elaborate(t, interner, let, nil)
	assert.Empty(t, errorMessages(diags))
	_, ok := res.Term.(*syntax.ConstLit)
	require.True(t, ok, "let x := false in x should normalise to a ConstLit, got %T", res.Term)
}

func TestCheckRecordLitAgainstRecordType(t *testing.T) {
	interner := intern.NewTable(8)
	a := interner.Intern("a")

	recTyp := &value.RecordType{
		Labels:    []token.Ident{a},
		Telescope: value.NewTelescope(value.LocalEnv{}, []syntax.Term{syntax.NewPrim(sp(), syntax.BoolType)}, false),
	}
	lit := surface.NewRecordLit(sp(), []token.Ident{a}, []surface.Term{surface.NewBoolLit(sp(), true)})

	var expected value.Value = recTyp
	res, diags := elaborate(t, interner, lit, &expected)
	assert.Empty(t, errorMessages(diags))
	rl, ok := res.Term.(*syntax.RecordLit)
	require.True(t, ok, "expected a RecordLit, got %T", res.Term)
	require.Len(t, rl.Exprs, 1)
}

func TestCheckRecordLitWrongLabelsFallsBackToFallback(t *testing.T) {
	interner := intern.NewTable(8)
	a := interner.Intern("a")
	b := interner.Intern("b")

	recTyp := &value.RecordType{
		Labels:    []token.Ident{a},
		Telescope: value.NewTelescope(value.LocalEnv{}, []syntax.Term{syntax.NewPrim(sp(), syntax.BoolType)}, false),
	}
	// Field labelled b, but the expected record type only has a.
	lit := surface.NewRecordLit(sp(), []token.Ident{b}, []surface.Term{surface.NewBoolLit(sp(), true)})

	var expected value.Value = recTyp
	_, diags := elaborate(t, interner, lit, &expected)
	assert.NotEmpty(t, errorMessages(diags))
}

func TestCheckMatchWithDefault(t *testing.T) {
	interner := intern.NewTable(8)
	scrut := surface.NewBoolLit(sp(), true)
	arm := surface.MatchArm{
		Pattern: surface.NewBoolLit(sp(), true),
		Body:    surface.NewNumberLit(sp(), "1", syntax.Decimal),
	}
	def := surface.NewNumberLit(sp(), "0", syntax.Decimal)
	m := surface.NewMatch(sp(), scrut, []surface.MatchArm{arm}, def)

	u8 := u8Type()
	var expected value.Value = u8
	res, diags := elaborate(t, interner, m, &expected)
	assert.Empty(t, errorMessages(diags))
	_, ok := res.Term.(*syntax.ConstMatch)
	require.True(t, ok, "expected a ConstMatch, got %T", res.Term)
}

func TestFormatRecordFieldScoping(t *testing.T) {
	interner := intern.NewTable(8)
	lenField := interner.Intern("len")
	dataField := interner.Intern("data")

	u8Fmt := surface.NewVar(sp(), interner.Intern("format-u8"))
	arrFmt := surface.NewApp(sp(),
		surface.NewApp(sp(), surface.NewVar(sp(), interner.Intern("format-array8")), surface.NewVar(sp(), lenField)),
		u8Fmt,
	)
	rec := surface.NewFormatRecord(sp(), []token.Ident{lenField, dataField}, []surface.Term{u8Fmt, arrFmt})

	res, diags := elaborate(t, interner, rec, nil)
	assert.Empty(t, errorMessages(diags))
	fr, ok := res.Term.(*syntax.FormatRecord)
	require.True(t, ok, "expected a FormatRecord, got %T", res.Term)
	require.Len(t, fr.Formats, 2)
}
