package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbrinfo/rbrinfo/internal/extract"
	"github.com/rbrinfo/rbrinfo/internal/hir"
	"github.com/rbrinfo/rbrinfo/internal/mir"
	"github.com/rbrinfo/rbrinfo/internal/record"
)

func fixtureCrate() *hir.Crate {
	crate := &hir.Crate{Name: "demo", Dir: "/work/demo"}

	abs := &hir.FnItem{Vis: hir.VisPublic}
	abs.FqPath = "demo::abs"
	abs.File = "src/lib.rs"
	abs.Decl = hir.FnDecl{
		Inputs:   []hir.Ty{&hir.PathTy{Res: hir.ResPrim, Prim: "i32"}},
		Output:   &hir.PathTy{Res: hir.ResPrim, Prim: "i32"},
		ArgNames: []string{"x"},
	}
	abs.BodyID = "demo__abs"
	crate.Items = append(crate.Items, abs)

	for _, name := range []string{
		"trace_entry", "trace_branch_hit", "trace_branch_bool",
		"trace_zero_or_one", "trace_switch_value_with_var_int",
		"trace_switch_value_with_var_bool", "trace_switch_value_with_var_char",
		"trace_const",
	} {
		fn := &hir.FnItem{Vis: hir.VisPublic}
		fn.FqPath = "demo::monitor::" + name
		fn.File = "src/monitor.rs"
		crate.Items = append(crate.Items, fn)
	}
	return crate
}

func absBody() *mir.Body {
	return &mir.Body{
		GlobalID: "demo__abs",
		SrcPath:  "src/lib.rs",
		IsLocal:  true,
		Args:     1,
		Locals: []mir.Local{
			{Ty: &mir.PrimTy{Name: "i32"}},
			{Ty: &mir.PrimTy{Name: "i32"}},
			{Ty: mir.TyBool},
		},
		Blocks: []mir.Block{
			{
				Statements: []mir.Statement{
					&mir.Assign{
						Place: mir.Place{Local: 2},
						Rvalue: &mir.BinaryOpRv{
							Op:  mir.OpLt,
							LHS: mir.CopyOf(1),
							RHS: mir.ConstOf(&mir.Const{Ty: &mir.PrimTy{Name: "i32"}, Kind: mir.ConstInt, Bits: 0}),
						},
					},
				},
				Terminator: &mir.SwitchInt{Discr: mir.MoveOf(2), Values: []uint64{0}, Targets: []mir.BlockID{2, 1}},
			},
			{Terminator: &mir.Goto{Target: 3}},
			{Terminator: &mir.Goto{Target: 3}},
			{Terminator: &mir.Return{}},
		},
	}
}

// TestRunEndToEnd drives extraction plus instrumentation through the
// memory sink and checks every emitted record
func TestRunEndToEnd(t *testing.T) {
	sink := record.NewMemoryStore()
	record.Init(sink)
	defer func() { _ = record.Shutdown() }()

	result, err := Run(fixtureCrate(), []*mir.Body{absBody()}, Config{
		RunID:   7,
		Filters: extract.DefaultFilters(),
	})
	require.NoError(t, err)

	// The monitor probes live under src/monitor.rs and survive the
	// extraction filters, so the catalog holds abs plus the probes.
	require.NotNil(t, result.Catalog)
	var names []string
	for _, c := range result.Catalog.Callables {
		names = append(names, c.GlobalID())
	}
	assert.Contains(t, names, "demo__abs")

	// One rewritten body, not skipped.
	require.Len(t, result.Instrumented, 1)
	assert.Zero(t, result.SkippedCount)
	assert.Greater(t, len(result.Instrumented[0].Blocks), len(absBody().Blocks))

	// Records: the catalog plus pre and post flavors of the body.
	keys := sink.Keys()
	assert.Contains(t, keys, "catalog/demo")
	assert.Contains(t, keys, "body/demo__abs.pre")
	assert.Contains(t, keys, "body/demo__abs.post")

	post, ok := sink.Get("body/demo__abs.post")
	require.True(t, ok)
	rec := post.(*record.BodyRecord)
	assert.Equal(t, uint64(4), rec.Branches)
	assert.Contains(t, rec.ConstantPool, "const 0_i32")
	assert.NotEmpty(t, rec.BasicBlocks)
	assert.NotEmpty(t, rec.Locals)
	assert.Contains(t, rec.CFG, "digraph cfg {")
	assert.Contains(t, rec.CDGDot, "digraph cdg {")
}

// TestRunMissingProbeFatal aborts before any body is touched
func TestRunMissingProbeFatal(t *testing.T) {
	record.Init(record.NewMemoryStore())
	defer func() { _ = record.Shutdown() }()

	crate := &hir.Crate{Name: "demo"}
	_, err := Run(crate, []*mir.Body{absBody()}, Config{Filters: extract.DefaultFilters()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INS001")
}

// TestForeignBodySkipped counts skips without emitting a post record
func TestForeignBodySkipped(t *testing.T) {
	sink := record.NewMemoryStore()
	record.Init(sink)
	defer func() { _ = record.Shutdown() }()

	foreign := absBody()
	foreign.IsLocal = false
	result, err := Run(fixtureCrate(), []*mir.Body{foreign}, Config{Filters: extract.DefaultFilters()})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SkippedCount)

	keys := sink.Keys()
	assert.Contains(t, keys, "body/demo__abs.pre")
	assert.NotContains(t, keys, "body/demo__abs.post")
}
