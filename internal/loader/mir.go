package loader

import (
	"fmt"

	"github.com/rbrinfo/rbrinfo/internal/mir"
)

type bodyWire struct {
	GlobalID string      `json:"global_id"`
	SrcPath  string      `json:"src_path"`
	IsLocal  bool        `json:"is_local"`
	Args     int         `json:"args"`
	Locals   []localWire `json:"locals"`
	Blocks   []blockWire `json:"blocks"`
}

type localWire struct {
	Ty      mirTyWire `json:"ty"`
	Mutable bool      `json:"mutable,omitempty"`
}

type blockWire struct {
	Statements []stmtWire `json:"stmts,omitempty"`
	Terminator *termWire  `json:"term"`
	IsCleanup  bool       `json:"cleanup,omitempty"`
}

type mirTyWire struct {
	Tag      string      `json:"tag"`
	Name     string      `json:"name,omitempty"`
	Kind     string      `json:"kind,omitempty"`
	DefPath  string      `json:"def_path,omitempty"`
	IsLocal  bool        `json:"is_local,omitempty"`
	Args     []mirTyWire `json:"args,omitempty"`
	Variants []string    `json:"variants,omitempty"`
	Inner    *mirTyWire  `json:"inner,omitempty"`
	Mutable  bool        `json:"mutable,omitempty"`
	Elems    []mirTyWire `json:"elems,omitempty"`
	Elem     *mirTyWire  `json:"elem,omitempty"`
	Len      int         `json:"len,omitempty"`
	Traits   []string    `json:"traits,omitempty"`
}

type placeWire struct {
	Local int        `json:"local"`
	Proj  []projWire `json:"proj,omitempty"`
}

type projWire struct {
	Kind    string `json:"kind"` // "deref" | "field" | "index" | "downcast"
	Field   int    `json:"field,omitempty"`
	Index   int    `json:"index,omitempty"`
	Variant int    `json:"variant,omitempty"`
}

type operandWire struct {
	Kind  string     `json:"kind"` // "copy" | "move" | "const"
	Place *placeWire `json:"place,omitempty"`
	Const *constWire `json:"const,omitempty"`
}

type constWire struct {
	Ty   mirTyWire `json:"ty"`
	Kind string    `json:"kind"` // "int" | "float" | "bool" | "char" | "str" | "zst"
	Bits uint64    `json:"bits,omitempty"`
	F    float64   `json:"f,omitempty"`
	Str  string    `json:"str,omitempty"`
}

type stmtWire struct {
	Kind    string      `json:"kind"`
	Place   *placeWire  `json:"place,omitempty"`
	Rvalue  *rvalueWire `json:"rvalue,omitempty"`
	Variant int         `json:"variant,omitempty"`
	Local   int         `json:"local,omitempty"`
}

type rvalueWire struct {
	Kind    string       `json:"kind"`
	Op      string       `json:"op,omitempty"`
	LHS     *operandWire `json:"lhs,omitempty"`
	RHS     *operandWire `json:"rhs,omitempty"`
	Operand *operandWire `json:"operand,omitempty"`
	Ty      *mirTyWire   `json:"ty,omitempty"`
	Place   *placeWire   `json:"place,omitempty"`
	Mutable bool         `json:"mutable,omitempty"`
}

type termWire struct {
	Kind      string       `json:"kind"`
	Target    *int         `json:"target,omitempty"`
	Values    []uint64     `json:"values,omitempty"`
	Targets   []int        `json:"targets,omitempty"`
	Discr     *operandWire `json:"discr,omitempty"`
	Func      string       `json:"func,omitempty"`
	FuncOp    *operandWire `json:"func_op,omitempty"`
	Args      []operandWire `json:"args,omitempty"`
	Dest      *placeWire   `json:"dest,omitempty"`
	Cleanup   *int         `json:"cleanup,omitempty"`
	Unwind    *int         `json:"unwind,omitempty"`
	Cond      *operandWire `json:"cond,omitempty"`
	Expected  bool         `json:"expected,omitempty"`
	Msg       string       `json:"msg,omitempty"`
	Place     *placeWire   `json:"place,omitempty"`
	Real      *int         `json:"real,omitempty"`
	Imaginary *int         `json:"imaginary,omitempty"`
	Resume    *int         `json:"resume,omitempty"`
	Drop      *int         `json:"drop,omitempty"`
	Value     *operandWire `json:"value,omitempty"`
}

func decodeBody(w *bodyWire) (*mir.Body, error) {
	body := &mir.Body{
		GlobalID: w.GlobalID,
		SrcPath:  w.SrcPath,
		IsLocal:  w.IsLocal,
		Args:     w.Args,
	}
	for i := range w.Locals {
		ty, err := decodeMirTy(&w.Locals[i].Ty)
		if err != nil {
			return nil, err
		}
		body.Locals = append(body.Locals, mir.Local{Ty: ty, Mutable: w.Locals[i].Mutable})
	}
	for i := range w.Blocks {
		block := mir.Block{IsCleanup: w.Blocks[i].IsCleanup}
		for j := range w.Blocks[i].Statements {
			stmt, err := decodeStmt(&w.Blocks[i].Statements[j])
			if err != nil {
				return nil, err
			}
			block.Statements = append(block.Statements, stmt)
		}
		if w.Blocks[i].Terminator != nil {
			term, err := decodeTerm(w.Blocks[i].Terminator)
			if err != nil {
				return nil, err
			}
			block.Terminator = term
		}
		body.Blocks = append(body.Blocks, block)
	}
	return body, nil
}

func decodeMirTy(w *mirTyWire) (mir.Ty, error) {
	switch w.Tag {
	case "prim":
		return &mir.PrimTy{Name: w.Name}, nil
	case "adt":
		args := make([]mir.Ty, 0, len(w.Args))
		for i := range w.Args {
			a, err := decodeMirTy(&w.Args[i])
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		if len(args) == 0 {
			args = nil
		}
		kind := mir.AdtStruct
		switch w.Kind {
		case "enum":
			kind = mir.AdtEnum
		case "union":
			kind = mir.AdtUnion
		}
		return &mir.AdtTy{Kind: kind, DefPath: w.DefPath, IsLocal: w.IsLocal, Args: args, Variants: w.Variants}, nil
	case "ref":
		inner, err := decodeMirTy(w.Inner)
		if err != nil {
			return nil, err
		}
		return &mir.RefTyTerm{Inner: inner, Mutable: w.Mutable}, nil
	case "tuple":
		elems := make([]mir.Ty, 0, len(w.Elems))
		for i := range w.Elems {
			e, err := decodeMirTy(&w.Elems[i])
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return &mir.TupleTyTerm{Elems: elems}, nil
	case "slice":
		elem, err := decodeMirTy(w.Elem)
		if err != nil {
			return nil, err
		}
		return &mir.SliceTyTerm{Elem: elem}, nil
	case "array":
		elem, err := decodeMirTy(w.Elem)
		if err != nil {
			return nil, err
		}
		return &mir.ArrayTyTerm{Elem: elem, Len: w.Len}, nil
	case "param":
		return &mir.ParamTy{Name: w.Name}, nil
	case "dyn":
		return &mir.DynTy{Traits: w.Traits}, nil
	case "fn_ptr":
		return &mir.FnPtrTy{}, nil
	case "raw_ptr":
		inner, err := decodeMirTy(w.Inner)
		if err != nil {
			return nil, err
		}
		return &mir.RawPtrTyTerm{Inner: inner, Mutable: w.Mutable}, nil
	case "opaque":
		return &mir.OpaqueTyTerm{}, nil
	case "never":
		return &mir.NeverTyTerm{}, nil
	}
	return nil, fmt.Errorf("unknown mir type tag %q", w.Tag)
}

func decodePlace(w *placeWire) mir.Place {
	if w == nil {
		return mir.Place{}
	}
	p := mir.Place{Local: mir.LocalID(w.Local)}
	for _, e := range w.Proj {
		var elem mir.ProjElem
		switch e.Kind {
		case "deref":
			elem.Kind = mir.ProjDeref
		case "field":
			elem.Kind = mir.ProjField
			elem.Field = e.Field
		case "index":
			elem.Kind = mir.ProjIndex
			elem.Index = mir.LocalID(e.Index)
		case "downcast":
			elem.Kind = mir.ProjDowncast
			elem.Variant = e.Variant
		}
		p.Projection = append(p.Projection, elem)
	}
	return p
}

func decodeOperand(w *operandWire) (mir.Operand, error) {
	switch w.Kind {
	case "copy":
		return mir.Operand{Kind: mir.OpCopy, Place: decodePlace(w.Place)}, nil
	case "move":
		return mir.Operand{Kind: mir.OpMove, Place: decodePlace(w.Place)}, nil
	case "const":
		c, err := decodeConst(w.Const)
		if err != nil {
			return mir.Operand{}, err
		}
		return mir.ConstOf(c), nil
	}
	return mir.Operand{}, fmt.Errorf("unknown operand kind %q", w.Kind)
}

func decodeConst(w *constWire) (*mir.Const, error) {
	if w == nil {
		return nil, fmt.Errorf("missing const payload")
	}
	ty, err := decodeMirTy(&w.Ty)
	if err != nil {
		return nil, err
	}
	c := &mir.Const{Ty: ty, Bits: w.Bits, F: w.F, Str: w.Str}
	switch w.Kind {
	case "int":
		c.Kind = mir.ConstInt
	case "float":
		c.Kind = mir.ConstFloat
	case "bool":
		c.Kind = mir.ConstBool
	case "char":
		c.Kind = mir.ConstChar
	case "str":
		c.Kind = mir.ConstStr
	case "zst":
		c.Kind = mir.ConstZeroSized
	default:
		return nil, fmt.Errorf("unknown const kind %q", w.Kind)
	}
	return c, nil
}

func decodeStmt(w *stmtWire) (mir.Statement, error) {
	switch w.Kind {
	case "assign":
		rv, err := decodeRvalue(w.Rvalue)
		if err != nil {
			return nil, err
		}
		return &mir.Assign{Place: decodePlace(w.Place), Rvalue: rv}, nil
	case "set_discriminant":
		return &mir.SetDiscriminant{Place: decodePlace(w.Place), Variant: w.Variant}, nil
	case "storage_live":
		return &mir.StorageLive{Local: mir.LocalID(w.Local)}, nil
	case "storage_dead":
		return &mir.StorageDead{Local: mir.LocalID(w.Local)}, nil
	case "nop":
		return &mir.Nop{}, nil
	}
	return nil, fmt.Errorf("unknown statement kind %q", w.Kind)
}

func decodeRvalue(w *rvalueWire) (mir.Rvalue, error) {
	if w == nil {
		return nil, fmt.Errorf("missing rvalue")
	}
	switch w.Kind {
	case "binary_op":
		lhs, err := decodeOperand(w.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeOperand(w.RHS)
		if err != nil {
			return nil, err
		}
		return &mir.BinaryOpRv{Op: mir.BinOp(w.Op), LHS: lhs, RHS: rhs}, nil
	case "unary_op":
		inner, err := decodeOperand(w.Operand)
		if err != nil {
			return nil, err
		}
		return &mir.UnaryOpRv{Op: mir.UnOp(w.Op), Inner: inner}, nil
	case "use":
		op, err := decodeOperand(w.Operand)
		if err != nil {
			return nil, err
		}
		return &mir.UseRv{Operand: op}, nil
	case "cast":
		op, err := decodeOperand(w.Operand)
		if err != nil {
			return nil, err
		}
		ty, err := decodeMirTy(w.Ty)
		if err != nil {
			return nil, err
		}
		return &mir.CastRv{Operand: op, Ty: ty}, nil
	case "discriminant":
		return &mir.DiscriminantRv{Place: decodePlace(w.Place)}, nil
	case "len":
		return &mir.LenRv{Place: decodePlace(w.Place)}, nil
	case "ref":
		return &mir.RefRv{Place: decodePlace(w.Place), Mutable: w.Mutable}, nil
	}
	return nil, fmt.Errorf("unknown rvalue kind %q", w.Kind)
}

// blk maps an optional wire block index onto a BlockID, -1 when absent
func blk(p *int) mir.BlockID {
	if p == nil {
		return -1
	}
	return mir.BlockID(*p)
}

func decodeTerm(w *termWire) (mir.Terminator, error) {
	switch w.Kind {
	case "goto":
		return &mir.Goto{Target: blk(w.Target)}, nil
	case "switch_int":
		discr, err := decodeOperand(w.Discr)
		if err != nil {
			return nil, err
		}
		targets := make([]mir.BlockID, len(w.Targets))
		for i, t := range w.Targets {
			targets[i] = mir.BlockID(t)
		}
		if len(targets) != len(w.Values)+1 {
			return nil, fmt.Errorf("switch_int arity: %d targets for %d values", len(targets), len(w.Values))
		}
		return &mir.SwitchInt{Discr: discr, Values: w.Values, Targets: targets}, nil
	case "call":
		call := &mir.Call{
			Func:        w.Func,
			Destination: decodePlace(w.Dest),
			Target:      blk(w.Target),
			Cleanup:     blk(w.Cleanup),
		}
		if w.FuncOp != nil {
			op, err := decodeOperand(w.FuncOp)
			if err != nil {
				return nil, err
			}
			call.FuncOperand = &op
		}
		for i := range w.Args {
			a, err := decodeOperand(&w.Args[i])
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, a)
		}
		return call, nil
	case "assert":
		cond, err := decodeOperand(w.Cond)
		if err != nil {
			return nil, err
		}
		return &mir.Assert{
			Cond:     cond,
			Expected: w.Expected,
			Msg:      w.Msg,
			Target:   blk(w.Target),
			Cleanup:  blk(w.Cleanup),
		}, nil
	case "drop":
		return &mir.Drop{
			Place:  decodePlace(w.Place),
			Target: blk(w.Target),
			Unwind: blk(w.Unwind),
		}, nil
	case "return":
		return &mir.Return{}, nil
	case "unreachable":
		return &mir.Unreachable{}, nil
	case "resume":
		return &mir.UnwindResume{}, nil
	case "false_edge":
		return &mir.FalseEdge{Real: blk(w.Real), Imaginary: blk(w.Imaginary)}, nil
	case "false_unwind":
		return &mir.FalseUnwind{Real: blk(w.Real), Unwind: blk(w.Unwind)}, nil
	case "yield":
		var value mir.Operand
		if w.Value != nil {
			v, err := decodeOperand(w.Value)
			if err != nil {
				return nil, err
			}
			value = v
		}
		return &mir.Yield{Value: value, Resume: blk(w.Resume), Drop: blk(w.Drop)}, nil
	case "inline_asm":
		return &mir.InlineAsm{Target: blk(w.Target), Cleanup: blk(w.Cleanup)}, nil
	}
	return nil, fmt.Errorf("unknown terminator kind %q", w.Kind)
}
