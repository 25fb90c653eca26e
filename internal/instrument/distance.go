package instrument

import (
	"github.com/rbrinfo/rbrinfo/internal/mir"
)

// computeDistanceInPlace injects, after each statement defining a
// boolean through a comparison, a pair of f64 locals holding the
// true-side and false-side branch distances. The alias map records the
// pair per boolean-valued local so probes can reuse them without
// recomputation.
//
// Only `<=` is tracked: true-distance = rhs - lhs + 1, false-distance
// = lhs - rhs. Other comparators skip their alias assignment.
func (v *visitor) computeDistanceInPlace(block *mir.Block) {
	if len(block.Statements) == 0 {
		return
	}
	out := make([]mir.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		out = append(out, stmt)

		assign, ok := stmt.(*mir.Assign)
		if !ok || assign.Place.HasProjection() {
			continue
		}
		switch rv := assign.Rvalue.(type) {
		case *mir.BinaryOpRv:
			if rv.Op != mir.OpLe {
				continue
			}
			lhs := v.castToF64(&out, rv.LHS)
			rhs := v.castToF64(&out, rv.RHS)
			trueLocal, falseLocal := v.aliasPair(assign.Place.Local)

			// true side: rhs - lhs + 1
			out = append(out, &mir.Assign{
				Place:  mir.Place{Local: trueLocal},
				Rvalue: &mir.BinaryOpRv{Op: mir.OpSub, LHS: mir.MoveOf(rhs), RHS: mir.MoveOf(lhs)},
			})
			out = append(out, &mir.Assign{
				Place:  mir.Place{Local: trueLocal},
				Rvalue: &mir.BinaryOpRv{Op: mir.OpAdd, LHS: mir.MoveOf(trueLocal), RHS: constF64(1)},
			})
			// false side: lhs - rhs
			out = append(out, &mir.Assign{
				Place:  mir.Place{Local: falseLocal},
				Rvalue: &mir.BinaryOpRv{Op: mir.OpSub, LHS: mir.MoveOf(lhs), RHS: mir.MoveOf(rhs)},
			})
			v.aliasMap[assign.Place.Local] = [2]mir.LocalID{trueLocal, falseLocal}

		case *mir.UseRv:
			switch rv.Operand.Kind {
			case mir.OpConst:
				c := rv.Operand.Const
				if c == nil || c.Kind != mir.ConstBool {
					continue
				}
				trueLocal, falseLocal := v.aliasPair(assign.Place.Local)
				out = append(out, &mir.Assign{
					Place:  mir.Place{Local: trueLocal},
					Rvalue: &mir.UseRv{Operand: constF64(1)},
				})
				out = append(out, &mir.Assign{
					Place:  mir.Place{Local: falseLocal},
					Rvalue: &mir.UseRv{Operand: constF64(1)},
				})
				v.aliasMap[assign.Place.Local] = [2]mir.LocalID{trueLocal, falseLocal}
			case mir.OpMove, mir.OpCopy:
				if rv.Operand.Place.HasProjection() {
					continue
				}
				if pair, ok := v.aliasMap[rv.Operand.Place.Local]; ok {
					v.aliasMap[assign.Place.Local] = pair
				}
			}
		}
	}
	block.Statements = out
}

// aliasPair returns the existing distance locals for a boolean local,
// or allocates a fresh pair
func (v *visitor) aliasPair(l mir.LocalID) (mir.LocalID, mir.LocalID) {
	if pair, ok := v.aliasMap[l]; ok {
		return pair[0], pair[1]
	}
	return v.body.AddLocal(mir.TyF64), v.body.AddLocal(mir.TyF64)
}

func constF64(val float64) mir.Operand {
	return mir.ConstOf(&mir.Const{Ty: mir.TyF64, Kind: mir.ConstFloat, F: val})
}
