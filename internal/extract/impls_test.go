package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbrinfo/rbrinfo/internal/hir"
	"github.com/rbrinfo/rbrinfo/internal/model"
)

func selfPathTy(path string) *hir.PathTy {
	return &hir.PathTy{Res: hir.ResStruct, DefPath: path, IsLocal: true}
}

func implWith(fns ...*hir.FnItem) *hir.ImplItem {
	im := &hir.ImplItem{SelfTy: selfPathTy("demo::P")}
	im.FqPath = "demo::P"
	im.File = "src/lib.rs"
	im.Fns = fns
	return im
}

func assocFn(path string, hasSelf bool) *hir.FnItem {
	fn := fnItem(path, nil, nil, nil)
	fn.Decl.HasSelf = hasSelf
	if hasSelf {
		fn.Decl.Inputs = []hir.Ty{&hir.RefTy{Inner: &hir.PathTy{Res: hir.ResSelfTyAlias}}}
		fn.Decl.ArgNames = []string{"self"}
	}
	return fn
}

// TestMethodVsStaticFunction keys the receiver kind off the implicit
// self
func TestMethodVsStaticFunction(t *testing.T) {
	im := implWith(
		assocFn("demo::P::len", true),
		assocFn("demo::P::origin", false),
	)
	callables := New(&hir.Crate{Name: "demo", Items: []hir.Item{im}}).Run()
	require.Len(t, callables, 2)

	method, ok := callables[0].(*model.Method)
	require.True(t, ok)
	assert.Equal(t, "len", method.Name)
	assert.Equal(t, "demo::P", method.SelfTy.(*model.Struct).Name)
	assert.Empty(t, method.Trait)

	static, ok := callables[1].(*model.StaticFunction)
	require.True(t, ok)
	assert.Equal(t, "origin", static.Name)
}

func TestTraitImplCarriesTraitName(t *testing.T) {
	im := implWith(assocFn("demo::P::next", true))
	im.TraitPath = "core::iter::Iterator"
	callables := New(&hir.Crate{Name: "demo", Items: []hir.Item{im}}).Run()
	require.Len(t, callables, 1)
	assert.Equal(t, "core::iter::Iterator", callables[0].(*model.Method).Trait)
}

// TestAssocTypeProjectionResolution resolves a method return through
// the impl's associated-type environment
func TestAssocTypeProjectionResolution(t *testing.T) {
	fn := fnItem("demo::P::next", nil, nil, &hir.ProjectionTy{
		Base:  &hir.PathTy{Res: hir.ResSelfTyAlias},
		Assoc: "Item",
	})
	fn.Decl.HasSelf = true
	fn.Decl.Inputs = []hir.Ty{&hir.RefTy{Inner: &hir.PathTy{Res: hir.ResSelfTyAlias}}}
	fn.Decl.ArgNames = []string{"self"}

	im := implWith(fn)
	im.TraitPath = "core::iter::Iterator"
	im.AssocTypes = []hir.AssocTypeDef{{Name: "Item", Ty: primTy("u32")}}

	callables := New(&hir.Crate{Name: "demo", Items: []hir.Item{im}}).Run()
	require.Len(t, callables, 1)
	method := callables[0].(*model.Method)
	require.NotNil(t, method.Return)
	assert.Equal(t, "u32", method.Return.String())
}

// TestSuperTraitAssocEnv scans super-trait impls for the same Self
// when the direct impl lacks the binding
func TestSuperTraitAssocEnv(t *testing.T) {
	trait := &hir.TraitItem{SuperTrait: []string{"demo::Base"}}
	trait.FqPath = "demo::Extended"

	baseImpl := &hir.ImplItem{
		SelfTy:     selfPathTy("demo::P"),
		TraitPath:  "demo::Base",
		AssocTypes: []hir.AssocTypeDef{{Name: "Output", Ty: primTy("i64")}},
	}
	baseImpl.FqPath = "demo::P#base"

	fn := fnItem("demo::P::produce", nil, nil, &hir.ProjectionTy{
		Base:  &hir.PathTy{Res: hir.ResSelfTyAlias},
		Assoc: "Output",
	})
	extImpl := implWith(fn)
	extImpl.TraitPath = "demo::Extended"

	crate := &hir.Crate{Name: "demo", Items: []hir.Item{trait, baseImpl, extImpl}}
	callables := New(crate).Run()
	require.Len(t, callables, 1)
	static := callables[0].(*model.StaticFunction)
	require.NotNil(t, static.Return)
	assert.Equal(t, "i64", static.Return.String())
}

func TestUnsafeAssocFnSkipped(t *testing.T) {
	fn := assocFn("demo::P::raw", true)
	fn.Unsafe = true
	callables := New(&hir.Crate{Name: "demo", Items: []hir.Item{implWith(fn)}}).Run()
	assert.Empty(t, callables)
}

// TestFilteredMethodNames covers the polymorphic-accessor exclusion
// list
func TestFilteredMethodNames(t *testing.T) {
	im := implWith(
		assocFn("demo::P::from", false),
		assocFn("demo::P::get_disjoint_mut", true),
		assocFn("demo::P::get", true),
	)
	callables := New(&hir.Crate{Name: "demo", Items: []hir.Item{im}}).Run()
	require.Len(t, callables, 1)
	assert.Equal(t, "get", callables[0].(*model.Method).Name)
}

func TestExcludedContainerImpl(t *testing.T) {
	im := &hir.ImplItem{SelfTy: selfPathTy("std::collections::BTreeMap")}
	im.FqPath = "std::collections::BTreeMap"
	im.Fns = []*hir.FnItem{assocFn("std::collections::BTreeMap::new", false)}
	assert.Empty(t, New(&hir.Crate{Name: "demo", Items: []hir.Item{im}}).Run())
}

func TestTraitProducesNoCallables(t *testing.T) {
	trait := &hir.TraitItem{}
	trait.FqPath = "demo::Measure"
	assert.Empty(t, New(&hir.Crate{Name: "demo", Items: []hir.Item{trait}}).Run())
}
