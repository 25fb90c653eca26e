// Package valuedef computes the semantic origin of a value used in a
// branch: the backward analysis that maps a discriminant place to the
// expression that defined it. The result drives the instrumenter's
// choice of tracing probe and operand marshalling.
package valuedef

import (
	"github.com/rbrinfo/rbrinfo/internal/mir"
)

// ValueDef is the origin of a branch operand
type ValueDef interface {
	defNode()
}

// BinaryOp is a binary operation with operand origins
type BinaryOp struct {
	Op  mir.BinOp
	LHS ValueDef
	RHS ValueDef
}

func (*BinaryOp) defNode() {}

// UnaryOp wraps an inner origin. Not applied to a comparison never
// appears here; the tracker folds it into the inverted comparator.
type UnaryOp struct {
	Op    mir.UnOp
	Inner ValueDef
}

func (*UnaryOp) defNode() {}

// Const is a constant origin
type Const struct {
	Ty   mir.Ty
	Kind mir.ConstKind
	C    *mir.Const
}

func (*Const) defNode() {}

// Var is a direct use of a scalar variable against a switch value
type Var struct {
	Place mir.Place
	Ty    mir.Ty
}

func (*Var) defNode() {}

// Discriminant is an enum tag read
type Discriminant struct {
	Place mir.Place
}

func (*Discriminant) defNode() {}

// Call is the result of a function call
type Call struct{}

func (*Call) defNode() {}

// Field is a structural projection; Deref records whether the probe
// must indirect before reading
type Field struct {
	Place mir.Place
	Deref bool
}

func (*Field) defNode() {}

// Index is a slice index read
type Index struct {
	Place mir.Place
}

func (*Index) defNode() {}

// Tracker resolves value definitions over one body
type Tracker struct {
	body *mir.Body
	rpo  []mir.BlockID
}

// NewTracker creates a tracker for the body. Blocks are visited in
// reverse post-order so definitions precede uses.
func NewTracker(body *mir.Body) *Tracker {
	return &Tracker{body: body, rpo: body.ReversePostOrder()}
}

// DefOf computes the value definition of a place. The second result is
// false when the definition is not reachable, in which case the branch
// is left uninstrumented.
func (t *Tracker) DefOf(place mir.Place) (ValueDef, bool) {
	return t.defOf(place, 0)
}

func (t *Tracker) defOf(place mir.Place, depth int) (ValueDef, bool) {
	if depth > 64 {
		return nil, false
	}

	// A projected place short-circuits: the probe reads the projection
	// result, not the aggregate's definition.
	if place.HasProjection() {
		if def, ok := t.fromProjection(place); ok {
			return def, true
		}
	}

	for _, id := range t.rpo {
		block := &t.body.Blocks[id]
		for _, stmt := range block.Statements {
			assign, ok := stmt.(*mir.Assign)
			if !ok || !samePlace(assign.Place, place) {
				continue
			}
			if def, ok := t.fromRvalue(place, assign.Rvalue, depth); ok {
				return def, true
			}
			return nil, false
		}
		// A call result is recognized only through the terminator of
		// the defining block.
		if call, ok := block.Terminator.(*mir.Call); ok {
			if samePlace(call.Destination, place) {
				return &Call{}, true
			}
		}
	}

	// Never assigned in the body: a formal argument used directly.
	if !place.HasProjection() && t.body.IsArg(place.Local) {
		return &Var{Place: place, Ty: t.body.LocalTy(place.Local)}, true
	}

	return nil, false
}

func (t *Tracker) fromRvalue(place mir.Place, rv mir.Rvalue, depth int) (ValueDef, bool) {
	switch r := rv.(type) {
	case *mir.BinaryOpRv:
		lhs, ok := t.operandDef(r.LHS)
		if !ok {
			return nil, false
		}
		rhs, ok := t.operandDef(r.RHS)
		if !ok {
			return nil, false
		}
		return &BinaryOp{Op: r.Op, LHS: lhs, RHS: rhs}, true
	case *mir.UnaryOpRv:
		innerPlace, hasPlace := r.Inner.PlaceOf()
		var inner ValueDef
		if hasPlace {
			def, ok := t.defOf(innerPlace, depth+1)
			if !ok {
				return nil, false
			}
			inner = def
		} else {
			def, ok := t.operandDef(r.Inner)
			if !ok {
				return nil, false
			}
			inner = def
		}
		if r.Op == mir.OpNot {
			if bin, isBin := inner.(*BinaryOp); isBin {
				if inverted, ok := invertComparator(bin.Op); ok {
					return &BinaryOp{Op: inverted, LHS: bin.LHS, RHS: bin.RHS}, true
				}
			}
		}
		return &UnaryOp{Op: r.Op, Inner: inner}, true
	case *mir.UseRv:
		if r.Operand.Kind == mir.OpConst {
			return &Var{Place: place, Ty: r.Operand.Const.Ty}, true
		}
		src, _ := r.Operand.PlaceOf()
		return t.defOf(src, depth+1)
	case *mir.CastRv:
		if r.Operand.Kind == mir.OpConst {
			c := r.Operand.Const
			return &Const{Ty: c.Ty, Kind: c.Kind, C: c}, true
		}
		src, _ := r.Operand.PlaceOf()
		return t.defOf(src, depth+1)
	case *mir.LenRv:
		return &Var{Place: place, Ty: mir.TyUsize}, true
	case *mir.DiscriminantRv:
		return &Discriminant{Place: r.Place}, true
	}
	return nil, false
}

// operandDef reduces a binary-op operand shallowly: a constant records
// its constant, a place records a Var at the operand's type
func (t *Tracker) operandDef(o mir.Operand) (ValueDef, bool) {
	if o.Kind == mir.OpConst {
		return &Const{Ty: o.Const.Ty, Kind: o.Const.Kind, C: o.Const}, true
	}
	place, _ := o.PlaceOf()
	ty := t.placeTy(place)
	if ty == nil {
		return nil, false
	}
	return &Var{Place: place, Ty: ty}, true
}

func (t *Tracker) fromProjection(place mir.Place) (ValueDef, bool) {
	deref := false
	for _, elem := range place.Projection {
		switch elem.Kind {
		case mir.ProjDeref:
			deref = true
		case mir.ProjField:
			return &Field{Place: place, Deref: deref}, true
		case mir.ProjIndex:
			return &Var{Place: mir.Place{Local: elem.Index}, Ty: mir.TyUsize}, true
		}
	}
	return nil, false
}

// placeTy returns the type term of a bare place, or nil when projected
func (t *Tracker) placeTy(place mir.Place) mir.Ty {
	if place.HasProjection() {
		return nil
	}
	if int(place.Local) >= len(t.body.Locals) {
		return nil
	}
	return t.body.LocalTy(place.Local)
}

// invertComparator flips a comparison under logical negation
func invertComparator(op mir.BinOp) (mir.BinOp, bool) {
	switch op {
	case mir.OpLt:
		return mir.OpGe, true
	case mir.OpGe:
		return mir.OpLt, true
	case mir.OpLe:
		return mir.OpGt, true
	case mir.OpGt:
		return mir.OpLe, true
	case mir.OpEq:
		return mir.OpNe, true
	case mir.OpNe:
		return mir.OpEq, true
	}
	return op, false
}

func samePlace(a, b mir.Place) bool {
	if a.Local != b.Local || len(a.Projection) != len(b.Projection) {
		return false
	}
	for i := range a.Projection {
		if a.Projection[i] != b.Projection[i] {
			return false
		}
	}
	return true
}
