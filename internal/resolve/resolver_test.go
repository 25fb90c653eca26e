package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbrinfo/rbrinfo/internal/hir"
	"github.com/rbrinfo/rbrinfo/internal/model"
)

func primTy(name string) *hir.PathTy {
	return &hir.PathTy{Res: hir.ResPrim, Prim: name}
}

func TestResolvePrimitives(t *testing.T) {
	r := New(&hir.Crate{})
	for _, name := range []string{"i32", "u64", "f32", "bool", "char", "str", "usize"} {
		ty, ok := r.ResolveHirTy(primTy(name))
		require.True(t, ok, name)
		assert.Equal(t, name, ty.String())
	}
}

func TestResolveNominal(t *testing.T) {
	r := New(&hir.Crate{})
	ty, ok := r.ResolveHirTy(&hir.PathTy{
		Res: hir.ResStruct, DefPath: "c::P", IsLocal: true,
		Args: []hir.Ty{primTy("i32")},
	})
	require.True(t, ok)
	st := ty.(*model.Struct)
	assert.Equal(t, "c::P", st.Name)
	assert.True(t, st.IsLocal)
	require.Len(t, st.Generics, 1)
}

func TestResolveRefSliceTupleArray(t *testing.T) {
	crate := &hir.Crate{Items: []hir.Item{}}
	r := New(crate)

	ty, ok := r.ResolveHirTy(&hir.RefTy{Inner: &hir.SliceTy{Elem: primTy("u8")}, Mutable: true})
	require.True(t, ok)
	assert.Equal(t, "&mut [u8]", ty.String())

	ty, ok = r.ResolveHirTy(&hir.TupTy{Elems: []hir.Ty{primTy("bool"), primTy("char")}})
	require.True(t, ok)
	assert.Equal(t, "(bool, char)", ty.String())

	ty, ok = r.ResolveHirTy(&hir.ArrayTy{
		Elem: primTy("u8"),
		Len:  &hir.ConstExpr{Kind: hir.ConstLit, Value: 8},
	})
	require.True(t, ok)
	assert.Equal(t, "[u8; 8]", ty.String())
}

func TestResolveArrayLenThroughConst(t *testing.T) {
	crate := &hir.Crate{Items: []hir.Item{
		&hir.ConstItem{Value: &hir.ConstExpr{Kind: hir.ConstLit, Value: 4}},
	}}
	ci := crate.Items[0].(*hir.ConstItem)
	ci.FqPath = "c::LEN"

	r := New(crate)
	ty, ok := r.ResolveHirTy(&hir.ArrayTy{
		Elem: primTy("u8"),
		Len: &hir.ConstExpr{
			Kind: hir.ConstBinary, Op: "*",
			LHS: &hir.ConstExpr{Kind: hir.ConstRef, Ref: "c::LEN"},
			RHS: &hir.ConstExpr{Kind: hir.ConstLit, Value: 2},
		},
	})
	require.True(t, ok)
	assert.Equal(t, "[u8; 8]", ty.String())
}

func TestNonScalarArrayLenUnresolved(t *testing.T) {
	r := New(&hir.Crate{})
	_, ok := r.ResolveHirTy(&hir.ArrayTy{
		Elem: primTy("u8"),
		Len:  &hir.ConstExpr{Kind: hir.ConstOpaque},
	})
	assert.False(t, ok)
}

// TestUnresolvableForms covers the forms the model cannot express
func TestUnresolvableForms(t *testing.T) {
	r := New(&hir.Crate{})
	unresolvable := []hir.Ty{
		&hir.OpaqueTy{},
		&hir.RawPtrTy{Inner: primTy("u8")},
		&hir.NeverTy{},
		&hir.BareFnTy{},
		&hir.TraitObjectTy{Traits: []string{"A", "B"}, IsDyn: true},
		&hir.TraitObjectTy{IsDyn: true},
		&hir.ProjectionTy{Base: primTy("i32"), Assoc: "Output"},
	}
	for _, ty := range unresolvable {
		_, ok := r.ResolveHirTy(ty)
		assert.False(t, ok, "%T should be unresolved", ty)
	}
}

func TestSelfAndProjectionBindings(t *testing.T) {
	selfTy := &model.Struct{Name: "c::P", IsLocal: true}
	r := New(&hir.Crate{}).
		WithSelf(selfTy).
		WithAssoc(map[string]model.Type{"Output": &model.Prim{Kind: model.I64}})

	ty, ok := r.ResolveHirTy(&hir.PathTy{Res: hir.ResSelfTyAlias})
	require.True(t, ok)
	assert.True(t, selfTy.Equals(ty))

	ty, ok = r.ResolveHirTy(&hir.ProjectionTy{Base: &hir.PathTy{Res: hir.ResSelfTyAlias}, Assoc: "Output"})
	require.True(t, ok)
	assert.Equal(t, "i64", ty.String())

	// A projection whose segment is absent from the environment stays
	// unresolved.
	_, ok = r.ResolveHirTy(&hir.ProjectionTy{Base: &hir.PathTy{Res: hir.ResSelfTyAlias}, Assoc: "Missing"})
	assert.False(t, ok)
}

func TestTyParamLooksUpEnvironment(t *testing.T) {
	bound := &model.Generic{Name: "T", Bounds: []model.Trait{{Name: "Clone"}}}
	r := New(&hir.Crate{}).WithGenerics([]model.Type{bound})

	ty, ok := r.ResolveHirTy(&hir.PathTy{Res: hir.ResTyParam, DefPath: "T"})
	require.True(t, ok)
	assert.Same(t, bound, ty)

	// Unknown parameters resolve to a bound-free generic.
	ty, ok = r.ResolveHirTy(&hir.PathTy{Res: hir.ResTyParam, DefPath: "U"})
	require.True(t, ok)
	assert.Empty(t, ty.(*model.Generic).Bounds)
}

func TestFnRet(t *testing.T) {
	r := New(&hir.Crate{})

	ret, ok := r.FnRet(nil)
	require.True(t, ok)
	assert.Nil(t, ret, "default return is absent")

	ret, ok = r.FnRet(primTy("()"))
	require.True(t, ok)
	assert.Nil(t, ret, "unit return is absent")

	ret, ok = r.FnRet(primTy("i32"))
	require.True(t, ok)
	require.NotNil(t, ret)
	assert.Equal(t, "i32", ret.String())

	_, ok = r.FnRet(&hir.OpaqueTy{})
	assert.False(t, ok)
}
