package extract

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

func fnItem(path string, inputs []hir.Ty, names []string, output hir.Ty) *hir.FnItem {
	fn := &hir.FnItem{Vis: hir.VisPublic}
	fn.FqPath = path
	fn.File = "src/lib.rs"
	fn.Decl = hir.FnDecl{Inputs: inputs, Output: output, ArgNames: names}
	return fn
}

// TestExtractFreeFunction is the abs scenario: one Function with a
// named i32 param and an i32 return
func TestExtractFreeFunction(t *testing.T) {
	crate := &hir.Crate{Name: "demo", Items: []hir.Item{
		fnItem("demo::abs", []hir.Ty{primTy("i32")}, []string{"x"}, primTy("i32")),
	}}
	callables := New(crate).Run()
	require.Len(t, callables, 1)

	fn := callables[0].(*model.Function)
	assert.Equal(t, "abs", fn.Name)
	assert.True(t, fn.Public)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "x", fn.Params[0].Name)
	assert.Equal(t, "i32", fn.Params[0].Ty.String())
	require.NotNil(t, fn.Return)
	assert.Equal(t, "i32", fn.Return.String())
	assert.Equal(t, "demo__abs", fn.GlobalID())
}

// TestUnsafeFnSkipped is the S6 scenario: the unsafe function produces
// no catalog entry, its neighbors are unaffected
func TestUnsafeFnSkipped(t *testing.T) {
	unsafeFn := fnItem("demo::danger", nil, nil, nil)
	unsafeFn.Unsafe = true
	crate := &hir.Crate{Name: "demo", Items: []hir.Item{
		unsafeFn,
		fnItem("demo::fine", nil, nil, nil),
	}}
	callables := New(crate).Run()
	require.Len(t, callables, 1)
	assert.Equal(t, "demo__fine", callables[0].GlobalID())
}

func TestNestedFnSkipped(t *testing.T) {
	nested := fnItem("demo::outer::inner", nil, nil, nil)
	nested.Nested = true
	crate := &hir.Crate{Name: "demo", Items: []hir.Item{nested}}
	assert.Empty(t, New(crate).Run())
}

func TestUnresolvedParamDropsFunction(t *testing.T) {
	crate := &hir.Crate{Name: "demo", Items: []hir.Item{
		fnItem("demo::opaque_arg", []hir.Ty{&hir.OpaqueTy{}}, []string{"f"}, nil),
	}}
	assert.Empty(t, New(crate).Run())
}

// TestStructInit is the S2 scenario: the init's visibility is the
// logical-and of struct and field visibilities
func TestStructInit(t *testing.T) {
	mkStruct := func(fieldVis hir.Visibility) *hir.StructItem {
		st := &hir.StructItem{Vis: hir.VisPublic}
		st.FqPath = "demo::P"
		st.File = "src/lib.rs"
		st.Fields = []hir.FieldDef{
			{Name: "x", Vis: hir.VisPublic, Ty: primTy("i32")},
			{Name: "y", Vis: fieldVis, Ty: primTy("i32")},
		}
		return st
	}

	callables := New(&hir.Crate{Name: "demo", Items: []hir.Item{mkStruct(hir.VisPublic)}}).Run()
	require.Len(t, callables, 1)
	init := callables[0].(*model.StructInit)
	assert.True(t, init.Public)
	require.Len(t, init.Params, 2)
	assert.Equal(t, "x", init.Params[0].Name)
	assert.Equal(t, "demo::P", init.SelfTy.(*model.Struct).Name)

	// A private field flips public, but the init still emits.
	callables = New(&hir.Crate{Name: "demo", Items: []hir.Item{mkStruct(hir.VisPrivate)}}).Run()
	require.Len(t, callables, 1)
	assert.False(t, callables[0].(*model.StructInit).Public)
}

func TestTupleStructNotEmitted(t *testing.T) {
	st := &hir.StructItem{Vis: hir.VisPublic, IsTuple: true}
	st.FqPath = "demo::Wrapper"
	assert.Empty(t, New(&hir.Crate{Name: "demo", Items: []hir.Item{st}}).Run())
}

func TestUnresolvedFieldDropsInit(t *testing.T) {
	st := &hir.StructItem{Vis: hir.VisPublic}
	st.FqPath = "demo::P"
	st.Fields = []hir.FieldDef{{Name: "f", Vis: hir.VisPublic, Ty: &hir.RawPtrTy{Inner: primTy("u8")}}}
	assert.Empty(t, New(&hir.Crate{Name: "demo", Items: []hir.Item{st}}).Run())
}

// TestEnumInits is the S3 scenario: one init per variant with Unit,
// Tuple, and Struct shapes
func TestEnumInits(t *testing.T) {
	en := &hir.EnumItem{Vis: hir.VisPublic}
	en.FqPath = "demo::E"
	en.File = "src/lib.rs"
	en.Variants = []hir.VariantDef{
		{Name: "A", Kind: hir.VariantUnit},
		{Name: "B", Kind: hir.VariantTuple, Fields: []hir.FieldDef{{Ty: primTy("i32")}}},
		{Name: "C", Kind: hir.VariantStruct, Fields: []hir.FieldDef{{Name: "z", Ty: primTy("u8")}}},
	}
	callables := New(&hir.Crate{Name: "demo", Items: []hir.Item{en}}).Run()
	require.Len(t, callables, 3)

	a := callables[0].(*model.EnumInit)
	assert.Equal(t, model.ShapeUnit, a.Variant.Shape)
	assert.Empty(t, a.Variant.Params)

	b := callables[1].(*model.EnumInit)
	assert.Equal(t, model.ShapeTuple, b.Variant.Shape)
	require.Len(t, b.Variant.Params, 1)
	assert.Equal(t, "i32", b.Variant.Params[0].Ty.String())
	assert.Empty(t, b.Variant.Params[0].Name)

	c := callables[2].(*model.EnumInit)
	assert.Equal(t, model.ShapeStruct, c.Variant.Shape)
	require.Len(t, c.Variant.Params, 1)
	assert.Equal(t, "z", c.Variant.Params[0].Name)
	assert.Equal(t, "u8", c.Variant.Params[0].Ty.String())
}

// TestBadVariantDroppedOthersSurvive checks the per-variant drop
// policy
func TestBadVariantDroppedOthersSurvive(t *testing.T) {
	en := &hir.EnumItem{Vis: hir.VisPublic}
	en.FqPath = "demo::E"
	en.Variants = []hir.VariantDef{
		{Name: "Bad", Kind: hir.VariantTuple, Fields: []hir.FieldDef{{Ty: &hir.NeverTy{}}}},
		{Name: "Good", Kind: hir.VariantUnit},
	}
	callables := New(&hir.Crate{Name: "demo", Items: []hir.Item{en}}).Run()
	require.Len(t, callables, 1)
	assert.Equal(t, "Good", callables[0].(*model.EnumInit).Variant.Name)
}

func TestSerdePathFiltered(t *testing.T) {
	crate := &hir.Crate{Name: "demo", Items: []hir.Item{
		fnItem("demo::_serde_impls::deserialize", nil, nil, nil),
	}}
	assert.Empty(t, New(crate).Run())
}

func TestMonitorFileFiltered(t *testing.T) {
	fn := fnItem("demo::trace_entry", nil, nil, nil)
	fn.File = "src/rusty_monitor.rs"
	assert.Empty(t, New(&hir.Crate{Name: "demo", Items: []hir.Item{fn}}).Run())
}

func TestSkipFile(t *testing.T) {
	assert.True(t, SkipFile("src/rusty_monitor.rs"))
	assert.True(t, SkipFile("/home/u/.cargo/registry/src/lib.rs"))
	assert.False(t, SkipFile("src/lib.rs"))
}
