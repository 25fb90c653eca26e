package instrument

import (
	"github.com/rbrinfo/rbrinfo/internal/mir"
	"github.com/rbrinfo/rbrinfo/internal/valuedef"
)

// traceID converts a pre-rewrite block index into the id the monitor
// sees: every block shifts up by one when the entry probe is
// prepended, so reported ids are dense and begin at 1.
func traceID(b mir.BlockID) uint64 {
	return uint64(b) + 1
}

// hitBlock appends a block that reports the taken edge and falls
// through to the original successor, returning the new block's id
func (v *visitor) hitBlock(target mir.BlockID) mir.BlockID {
	args := append(v.commonArgs(), constU64(traceID(target)))
	id := mir.BlockID(len(v.body.Blocks))
	v.body.Blocks = append(v.body.Blocks, mir.Block{
		Terminator: v.mkProbeCall(v.probes.BranchHit, args, target),
	})
	return id
}

// mkTracingChain appends one linear chain for a single taken target of
// a switch: one block per branch id, each reporting hit or miss, the
// last falling through to the taken target. Returns the chain head.
func (v *visitor) mkTracingChain(def valuedef.ValueDef, probe string, branchIDs []mir.BlockID, valueByID map[mir.BlockID]uint64, takenTarget mir.BlockID, isTrueBranch bool) mir.BlockID {
	head := mir.BlockID(len(v.body.Blocks))
	for i, branchID := range branchIDs {
		idx := mir.BlockID(len(v.body.Blocks))
		next := takenTarget
		if i < len(branchIDs)-1 {
			next = idx + 1
		}

		var block mir.Block
		if branchID == takenTarget {
			args := append(v.commonArgs(), constU64(traceID(takenTarget)))
			block = mir.Block{
				Terminator: v.mkProbeCall(v.probes.BranchHit, args, next),
			}
		} else {
			stmts, args := v.mkTraceArgs(def, branchID, valueByID[branchID], isTrueBranch)
			block = mir.Block{
				Statements: stmts,
				Terminator: v.mkProbeCall(probe, args, next),
			}
		}
		v.body.Blocks = append(v.body.Blocks, block)
	}
	return head
}

// mkTraceArgs builds the marshalling statements and probe arguments
// for a not-taken branch report. Numeric comparison operands arrive as
// f64; equality operands arrive as u64.
func (v *visitor) mkTraceArgs(def valuedef.ValueDef, branchID mir.BlockID, switchValue uint64, isTrueBranch bool) ([]mir.Statement, []mir.Operand) {
	args := append(v.commonArgs(), constU64(traceID(branchID)))

	switch d := def.(type) {
	case *valuedef.BinaryOp:
		var stmts []mir.Statement
		lhs := v.castToF64(&stmts, defOperand(d.LHS))
		rhs := v.castToF64(&stmts, defOperand(d.RHS))
		opOperand := v.mkOpEnum(&stmts, d.Op)
		args = append(args, mir.MoveOf(lhs), mir.MoveOf(rhs), opOperand, constBool(isTrueBranch))
		return stmts, args

	case *valuedef.UnaryOp:
		// Not over a comparison was folded by the tracker; anything
		// else reports through the inner definition's probe shape.
		return v.mkTraceArgs(d.Inner, branchID, switchValue, !isTrueBranch)

	case *valuedef.Var:
		if prim, ok := d.Ty.(*mir.PrimTy); ok && (prim.IsInt() || prim.IsBool() || prim.IsChar()) {
			var stmts []mir.Statement
			sv := v.castToU64(&stmts, mir.ConstOf(&mir.Const{Ty: d.Ty, Kind: mir.ConstInt, Bits: switchValue}))
			varVal := v.castToU64(&stmts, mir.Operand{Kind: mir.OpCopy, Place: d.Place})
			args = append(args, mir.MoveOf(sv), mir.MoveOf(varVal), constBool(false))
			return stmts, args
		}
		args = append(args, constBool(false))
		return nil, args

	case *valuedef.Const:
		// Constants compared directly against a switch target carry
		// no operands.
		return nil, args[:2]

	default:
		// Discriminant, Field, Call, Index: zero-or-one report.
		args = append(args, constBool(false))
		return nil, args
	}
}

// defOperand converts a shallow operand definition into an operand
func defOperand(def valuedef.ValueDef) mir.Operand {
	switch d := def.(type) {
	case *valuedef.Var:
		return mir.Operand{Kind: mir.OpCopy, Place: d.Place}
	case *valuedef.Const:
		return mir.ConstOf(d.C)
	}
	// Nested definitions marshal as zero; the tracker only produces
	// Var and Const operands for binary ops.
	return constU64(0)
}

// castToF64 allocates a fresh f64 local and emits the cast statement
func (v *visitor) castToF64(stmts *[]mir.Statement, o mir.Operand) mir.LocalID {
	l := v.body.AddLocal(mir.TyF64)
	*stmts = append(*stmts, &mir.Assign{
		Place:  mir.Place{Local: l},
		Rvalue: &mir.CastRv{Operand: o, Ty: mir.TyF64},
	})
	return l
}

// castToU64 allocates a fresh u64 local and emits the cast statement
func (v *visitor) castToU64(stmts *[]mir.Statement, o mir.Operand) mir.LocalID {
	l := v.body.AddLocal(mir.TyU64)
	*stmts = append(*stmts, &mir.Assign{
		Place:  mir.Place{Local: l},
		Rvalue: &mir.CastRv{Operand: o, Ty: mir.TyU64},
	})
	return l
}

// mkOpEnum materializes the monitor's operator enum value for a
// comparison, falling back to the variant index when the monitor
// enum is absent from the crate graph
func (v *visitor) mkOpEnum(stmts *[]mir.Statement, op mir.BinOp) mir.Operand {
	idx := opVariantIndex(op)
	if v.probes.OpEnumPath == "" {
		return constU64(idx)
	}
	l := v.body.AddLocal(&mir.AdtTy{Kind: mir.AdtEnum, DefPath: v.probes.OpEnumPath})
	*stmts = append(*stmts, &mir.SetDiscriminant{
		Place:   mir.Place{Local: l},
		Variant: int(idx),
	})
	return mir.MoveOf(l)
}

// opVariantIndex maps an operator onto the monitor enum's variant
// order
func opVariantIndex(op mir.BinOp) uint64 {
	order := []mir.BinOp{
		mir.OpAdd, mir.OpSub, mir.OpMul, mir.OpDiv, mir.OpRem,
		mir.OpBitXor, mir.OpBitAnd, mir.OpBitOr, mir.OpShl, mir.OpShr,
		mir.OpEq, mir.OpLt, mir.OpLe, mir.OpNe, mir.OpGe, mir.OpGt,
	}
	for i, o := range order {
		if o == op {
			return uint64(i)
		}
	}
	return 0
}

// mkProbeCall builds the probe call terminator, its result discarded
// into a fresh unit local
func (v *visitor) mkProbeCall(probe string, args []mir.Operand, target mir.BlockID) *mir.Call {
	unit := v.body.AddLocal(mir.TyUnit)
	return &mir.Call{
		Func:        probe,
		Args:        args,
		Destination: mir.Place{Local: unit},
		Target:      target,
		Cleanup:     -1,
	}
}

// commonArgs returns the leading (run-id, global-id) argument pair
// every probe accepts
func (v *visitor) commonArgs() []mir.Operand {
	return []mir.Operand{
		constU64(v.runID),
		mir.ConstOf(&mir.Const{Ty: mir.TyStr, Kind: mir.ConstStr, Str: v.globalID}),
	}
}

func constU64(val uint64) mir.Operand {
	return mir.ConstOf(&mir.Const{Ty: mir.TyU64, Kind: mir.ConstInt, Bits: val})
}

func constBool(b bool) mir.Operand {
	bits := uint64(0)
	if b {
		bits = 1
	}
	return mir.ConstOf(&mir.Const{Ty: mir.TyBool, Kind: mir.ConstBool, Bits: bits})
}
