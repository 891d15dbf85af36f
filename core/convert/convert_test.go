package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/calyx/core/convert"
	"github.com/mna/calyx/core/semantics"
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/unify"
	"github.com/mna/calyx/core/value"
)

func newCtx() *semantics.Ctx {
	return semantics.NewCtx(nil, unify.NewMetaTable())
}

func sp() token.Span { return token.Span{} }

func TestIsEqualUniverse(t *testing.T) {
	ctx := newCtx()
	assert.True(t, convert.IsEqual(ctx, 0, value.TheUniverse, value.TheUniverse))
}

func TestIsEqualConstLit(t *testing.T) {
	ctx := newCtx()
	a := &value.ConstLit{Const: syntax.MakeUnsigned(8, 1, syntax.Decimal)}
	b := &value.ConstLit{Const: syntax.MakeUnsigned(8, 1, syntax.Decimal)}
	c := &value.ConstLit{Const: syntax.MakeUnsigned(8, 2, syntax.Decimal)}
	assert.True(t, convert.IsEqual(ctx, 0, a, b))
	assert.False(t, convert.IsEqual(ctx, 0, a, c))
}

func TestIsEqualReportedErrorShortCircuits(t *testing.T) {
	ctx := newCtx()
	reported := value.NewStuck(value.PrimHead(syntax.ReportedError))
	somethingElse := value.NewStuck(value.PrimHead(syntax.BoolType))
	assert.True(t, convert.IsEqual(ctx, 0, reported, somethingElse))
	assert.True(t, convert.IsEqual(ctx, 0, somethingElse, reported))
}

func TestIsEqualRecordTypeLabelMismatch(t *testing.T) {
	ctx := newCtx()
	a := &value.RecordType{
		Labels:    []token.Ident{1},
		Telescope: value.NewTelescope(value.LocalEnv{}, []syntax.Term{syntax.NewPrim(sp(), syntax.BoolType)}, false),
	}
	b := &value.RecordType{
		Labels:    []token.Ident{2},
		Telescope: value.NewTelescope(value.LocalEnv{}, []syntax.Term{syntax.NewPrim(sp(), syntax.BoolType)}, false),
	}
	assert.False(t, convert.IsEqual(ctx, 0, a, b))
}

func TestIsEqualFunTypeComparesBodiesUnderFreshVar(t *testing.T) {
	ctx := newCtx()
	u8 := value.NewStuck(value.PrimHead(syntax.U8Type))

	// Both (x : U8) -> U8, with a constant body that ignores the bound variable.
	bodyTerm := syntax.NewPrim(sp(), syntax.U8Type)
	a := &value.FunType{ParamType: u8, Body: value.NewClosure(value.LocalEnv{}, bodyTerm)}
	b := &value.FunType{ParamType: u8, Body: value.NewClosure(value.LocalEnv{}, bodyTerm)}
	assert.True(t, convert.IsEqual(ctx, 0, a, b))
}

func TestIsEqualFunLitAppliesBothSidesToFreshVar(t *testing.T) {
	ctx := newCtx()

	// Two identical "fun x => x" closures are compared by applying both to
	// the same fresh variable rather than structurally, per compareRigidOrFun.
	idTerm := syntax.NewLocalVar(sp(), 0)
	a := &value.FunLit{Body: value.NewClosure(value.LocalEnv{}, idTerm)}
	b := &value.FunLit{Body: value.NewClosure(value.LocalEnv{}, idTerm)}
	assert.True(t, convert.IsEqual(ctx, 0, a, b))
}

func TestIsEqualArrayLitElementwise(t *testing.T) {
	ctx := newCtx()
	a := &value.ArrayLit{Values: []value.Value{
		&value.ConstLit{Const: syntax.MakeBool(true)},
		&value.ConstLit{Const: syntax.MakeBool(false)},
	}}
	b := &value.ArrayLit{Values: []value.Value{
		&value.ConstLit{Const: syntax.MakeBool(true)},
		&value.ConstLit{Const: syntax.MakeBool(false)},
	}}
	c := &value.ArrayLit{Values: []value.Value{
		&value.ConstLit{Const: syntax.MakeBool(true)},
	}}
	assert.True(t, convert.IsEqual(ctx, 0, a, b))
	assert.False(t, convert.IsEqual(ctx, 0, a, c))
}

func TestIsEqualStuckDifferentHeadsUnequal(t *testing.T) {
	ctx := newCtx()
	a := value.NewStuck(value.LocalVarHead(0))
	b := value.NewStuck(value.LocalVarHead(1))
	assert.False(t, convert.IsEqual(ctx, 2, a, b))
}
