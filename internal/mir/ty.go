package mir

import (
	"fmt"
	"strings"
)

// Ty is a compiler-side type term attached to locals, constants, and
// casts. Terms are lowered into the extracted model by the resolver;
// terms the model cannot express stay representable here.
type Ty interface {
	tyNode()
	String() string
}

// PrimTy is a primitive type term
type PrimTy struct {
	Name string // "i32", "bool", "f64", ...
}

func (*PrimTy) tyNode() {}

func (t *PrimTy) String() string { return t.Name }

// IsBool reports whether the term is the boolean primitive
func (t *PrimTy) IsBool() bool { return t.Name == "bool" }

// IsChar reports whether the term is the char primitive
func (t *PrimTy) IsChar() bool { return t.Name == "char" }

// IsInt reports whether the term is an integer primitive
func (t *PrimTy) IsInt() bool {
	switch t.Name {
	case "i8", "i16", "i32", "i64", "i128", "isize",
		"u8", "u16", "u32", "u64", "u128", "usize":
		return true
	}
	return false
}

// IsFloat reports whether the term is a float primitive
func (t *PrimTy) IsFloat() bool {
	return t.Name == "f32" || t.Name == "f64"
}

// AdtKind distinguishes nominal definitions
type AdtKind int

// Nominal definition kinds
const (
	AdtStruct AdtKind = iota
	AdtEnum
	AdtUnion
)

// AdtTy is a nominal type term
type AdtTy struct {
	Kind     AdtKind
	DefPath  string
	IsLocal  bool
	Args     []Ty
	Variants []string // Variant names for enums
}

func (*AdtTy) tyNode() {}

func (t *AdtTy) String() string {
	if len(t.Args) == 0 {
		return t.DefPath
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.DefPath, strings.Join(args, ", "))
}

// RefTyTerm is a reference term
type RefTyTerm struct {
	Inner   Ty
	Mutable bool
}

func (*RefTyTerm) tyNode() {}

func (t *RefTyTerm) String() string {
	if t.Mutable {
		return "&mut " + t.Inner.String()
	}
	return "&" + t.Inner.String()
}

// TupleTyTerm is a product term
type TupleTyTerm struct {
	Elems []Ty
}

func (*TupleTyTerm) tyNode() {}

func (t *TupleTyTerm) String() string {
	elems := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
}

// SliceTyTerm is an unsized sequence term
type SliceTyTerm struct {
	Elem Ty
}

func (*SliceTyTerm) tyNode() {}

func (t *SliceTyTerm) String() string { return "[" + t.Elem.String() + "]" }

// ArrayTyTerm is a fixed-length sequence term with a resolved length
type ArrayTyTerm struct {
	Elem Ty
	Len  int
}

func (*ArrayTyTerm) tyNode() {}

func (t *ArrayTyTerm) String() string {
	return fmt.Sprintf("[%s; %d]", t.Elem.String(), t.Len)
}

// ParamTy is an uninstantiated type parameter term
type ParamTy struct {
	Name string
}

func (*ParamTy) tyNode() {}

func (t *ParamTy) String() string { return t.Name }

// DynTy is a trait object term
type DynTy struct {
	Traits []string
}

func (*DynTy) tyNode() {}

func (t *DynTy) String() string { return "dyn " + strings.Join(t.Traits, " + ") }

// FnPtrTy is a function pointer or closure term, opaque to the model
type FnPtrTy struct{}

func (*FnPtrTy) tyNode() {}

func (t *FnPtrTy) String() string { return "fn" }

// RawPtrTyTerm is a raw pointer term, never expressible in the model
type RawPtrTyTerm struct {
	Inner   Ty
	Mutable bool
}

func (*RawPtrTyTerm) tyNode() {}

func (t *RawPtrTyTerm) String() string {
	if t.Mutable {
		return "*mut " + t.Inner.String()
	}
	return "*const " + t.Inner.String()
}

// OpaqueTyTerm is an opaque (impl Trait) term
type OpaqueTyTerm struct{}

func (*OpaqueTyTerm) tyNode() {}

func (t *OpaqueTyTerm) String() string { return "impl ?" }

// NeverTyTerm is the never type term
type NeverTyTerm struct{}

func (*NeverTyTerm) tyNode() {}

func (t *NeverTyTerm) String() string { return "!" }

// Convenience primitive terms shared across the instrumenter
var (
	TyBool  = &PrimTy{Name: "bool"}
	TyChar  = &PrimTy{Name: "char"}
	TyU64   = &PrimTy{Name: "u64"}
	TyF64   = &PrimTy{Name: "f64"}
	TyUsize = &PrimTy{Name: "usize"}
	TyUnit  = &TupleTyTerm{}
	TyStr   = &RefTyTerm{Inner: &PrimTy{Name: "str"}}
)
