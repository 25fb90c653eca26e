package mir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBody() *Body {
	return &Body{
		GlobalID: "demo__f",
		IsLocal:  true,
		Args:     1,
		Locals: []Local{
			{Ty: TyUnit},
			{Ty: &PrimTy{Name: "i32"}},
			{Ty: TyBool},
		},
		Blocks: []Block{
			{
				Statements: []Statement{
					&Assign{Place: Place{Local: 2}, Rvalue: &BinaryOpRv{
						Op:  OpLt,
						LHS: CopyOf(1),
						RHS: ConstOf(&Const{Ty: &PrimTy{Name: "i32"}, Kind: ConstInt, Bits: 5}),
					}},
				},
				Terminator: &SwitchInt{Discr: MoveOf(2), Values: []uint64{0}, Targets: []BlockID{1, 2}},
			},
			{Terminator: &Goto{Target: 2}},
			{Terminator: &Return{}},
		},
	}
}

// TestCloneIsDeep mutates the copy and checks the original is intact
func TestCloneIsDeep(t *testing.T) {
	orig := sampleBody()
	cp := orig.Clone()

	cp.Blocks[0].Statements = append(cp.Blocks[0].Statements, &Nop{})
	cp.Blocks[1].Terminator.(*Goto).Target = 99
	cp.Blocks[0].Terminator.(*SwitchInt).Targets[0] = 50
	cp.Locals[1].Mutable = true
	cp.AddLocal(TyF64)

	assert.Len(t, orig.Blocks[0].Statements, 1)
	assert.Equal(t, BlockID(2), orig.Blocks[1].Terminator.(*Goto).Target)
	assert.Equal(t, BlockID(1), orig.Blocks[0].Terminator.(*SwitchInt).Targets[0])
	assert.False(t, orig.Locals[1].Mutable)
	assert.Len(t, orig.Locals, 3)
}

func TestMapSuccessorsCoversUnwindEdges(t *testing.T) {
	call := &Call{Target: 1, Cleanup: 2}
	MapSuccessors(call, func(b BlockID) BlockID { return b + 10 })
	assert.Equal(t, BlockID(11), call.Target)
	assert.Equal(t, BlockID(12), call.Cleanup)

	// Absent edges stay absent.
	drop := &Drop{Target: 3, Unwind: -1}
	MapSuccessors(drop, func(b BlockID) BlockID { return b + 10 })
	assert.Equal(t, BlockID(13), drop.Target)
	assert.Equal(t, BlockID(-1), drop.Unwind)

	fe := &FalseEdge{Real: 0, Imaginary: 4}
	MapSuccessors(fe, func(b BlockID) BlockID { return b + 1 })
	assert.Equal(t, BlockID(1), fe.Real)
	assert.Equal(t, BlockID(5), fe.Imaginary)
}

func TestSuccessors(t *testing.T) {
	assert.Empty(t, (&Return{}).Successors())
	assert.Empty(t, (&Unreachable{}).Successors())
	assert.Equal(t, []BlockID{7}, (&Goto{Target: 7}).Successors())
	assert.Equal(t, []BlockID{1, 2}, (&SwitchInt{Targets: []BlockID{1, 2}}).Successors())
	assert.Equal(t, []BlockID{1}, (&Call{Target: 1, Cleanup: -1}).Successors())
	assert.Equal(t, []BlockID{1, 2}, (&Assert{Target: 1, Cleanup: 2}).Successors())
}

func TestUnwindEdges(t *testing.T) {
	assert.Equal(t, []BlockID{2}, UnwindEdges(&Call{Target: 1, Cleanup: 2}))
	assert.Empty(t, UnwindEdges(&Call{Target: 1, Cleanup: -1}))
	assert.Equal(t, []BlockID{5}, UnwindEdges(&Drop{Target: 1, Unwind: 5}))
	assert.Empty(t, UnwindEdges(&Goto{Target: 1}))
}

func TestArgHelpers(t *testing.T) {
	body := sampleBody()
	assert.True(t, body.IsArg(1))
	assert.False(t, body.IsArg(0), "local 0 is the return place")
	assert.False(t, body.IsArg(2))
	require.NotNil(t, body.ArgTy(0))
	assert.Equal(t, "i32", body.ArgTy(0).String())
	assert.Nil(t, body.ArgTy(1))
}

func TestPrettyPrintShapes(t *testing.T) {
	body := sampleBody()
	blocks := body.BlockStrings()
	require.Len(t, blocks, 3)
	assert.Contains(t, blocks[0], "bb0:")
	assert.Contains(t, blocks[0], "_2 = Lt(_1, const 5_i32)")
	assert.Contains(t, blocks[0], "switchInt(move _2) -> [0: bb1, otherwise: bb2]")
	assert.Contains(t, blocks[1], "goto -> bb2")
	assert.Contains(t, blocks[2], "return")

	locals := body.LocalStrings()
	require.Len(t, locals, 3)
	assert.Equal(t, "let _0: ()", locals[0])
	assert.Equal(t, "let _1: i32", locals[1])
}

func TestPredecessors(t *testing.T) {
	preds := sampleBody().Predecessors()
	assert.Empty(t, preds[0])
	assert.Equal(t, []BlockID{0}, preds[1])
	assert.ElementsMatch(t, []BlockID{0, 1}, preds[2])
}
