package unify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/calyx/core/semantics"
	"github.com/mna/calyx/core/syntax"
	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/core/unify"
	"github.com/mna/calyx/core/value"
)

func newCtx(metas *unify.MetaTable) *semantics.Ctx {
	return semantics.NewCtx(nil, metas)
}

func sp() token.Span { return token.Span{} }

func TestUnifyEqualConstsSucceeds(t *testing.T) {
	metas := unify.NewMetaTable()
	ctx := newCtx(metas)
	a := &value.ConstLit{Const: syntax.MakeUnsigned(8, 7, syntax.Decimal)}
	b := &value.ConstLit{Const: syntax.MakeUnsigned(8, 7, syntax.Decimal)}
	assert.NoError(t, unify.Unify(ctx, metas, 0, a, b))
}

func TestUnifyMismatchedConstsFails(t *testing.T) {
	metas := unify.NewMetaTable()
	ctx := newCtx(metas)
	a := &value.ConstLit{Const: syntax.MakeUnsigned(8, 7, syntax.Decimal)}
	b := &value.ConstLit{Const: syntax.MakeUnsigned(8, 8, syntax.Decimal)}
	assert.Error(t, unify.Unify(ctx, metas, 0, a, b))
}

func TestUnifyReportedErrorAlwaysSucceeds(t *testing.T) {
	metas := unify.NewMetaTable()
	ctx := newCtx(metas)
	reported := value.NewStuck(value.PrimHead(syntax.ReportedError))
	mismatch := &value.ConstLit{Const: syntax.MakeBool(true)}
	assert.NoError(t, unify.Unify(ctx, metas, 0, reported, mismatch))
}

func TestUnifySolvesFlexMeta(t *testing.T) {
	metas := unify.NewMetaTable()
	ctx := newCtx(metas)
	level := metas.Fresh()
	meta := value.NewStuck(value.MetaVarHead(level))
	want := &value.ConstLit{Const: syntax.MakeUnsigned(8, 3, syntax.Decimal)}

	require.NoError(t, unify.Unify(ctx, metas, 0, meta, want))
	require.True(t, metas.IsSolved(level))

	solved, ok := metas.Meta(level)
	require.True(t, ok)
	cl, ok := solved.(*value.ConstLit)
	require.True(t, ok, "expected a ConstLit solution, got %T", solved)
	assert.True(t, cl.Const.Equal(want.Const))
}

func TestUnifySolvedMetaIsForcedBeforeComparison(t *testing.T) {
	metas := unify.NewMetaTable()
	ctx := newCtx(metas)
	level := metas.Fresh()
	metas.Solve(level, &value.ConstLit{Const: syntax.MakeUnsigned(8, 9, syntax.Decimal)})

	meta := value.NewStuck(value.MetaVarHead(level))
	same := &value.ConstLit{Const: syntax.MakeUnsigned(8, 9, syntax.Decimal)}
	different := &value.ConstLit{Const: syntax.MakeUnsigned(8, 10, syntax.Decimal)}

	assert.NoError(t, unify.Unify(ctx, metas, 0, meta, same))
	assert.Error(t, unify.Unify(ctx, metas, 0, meta, different))
}

func TestUnifyFunTypeRecursesIntoBodies(t *testing.T) {
	metas := unify.NewMetaTable()
	ctx := newCtx(metas)
	u8 := value.NewStuck(value.PrimHead(syntax.U8Type))
	boolT := value.NewStuck(value.PrimHead(syntax.BoolType))

	a := &value.FunType{ParamType: u8, Body: value.NewClosure(value.LocalEnv{}, syntax.NewPrim(sp(), syntax.BoolType))}
	b := &value.FunType{ParamType: u8, Body: value.NewClosure(value.LocalEnv{}, syntax.NewPrim(sp(), syntax.BoolType))}
	c := &value.FunType{ParamType: boolT, Body: value.NewClosure(value.LocalEnv{}, syntax.NewPrim(sp(), syntax.BoolType))}

	assert.NoError(t, unify.Unify(ctx, metas, 0, a, b))
	assert.Error(t, unify.Unify(ctx, metas, 0, a, c))
}
