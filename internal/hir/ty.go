package hir

// Ty is a source-level type syntax node
type Ty interface {
	tyNode()
}

// ResKind classifies what a resolved path definition is
type ResKind int

// Path resolution kinds
const (
	ResStruct ResKind = iota
	ResEnum
	ResUnion
	ResTyParam
	ResTrait
	ResSelfTyAlias
	ResPrim
)

// PathTy is a (possibly generic) path type: a primitive name, a nominal
// type, a type parameter, or a Self alias
type PathTy struct {
	Res     ResKind
	DefPath string // Fully-qualified path of the definition
	Prim    string // Primitive name when Res == ResPrim
	IsLocal bool   // Definition lives in the analyzed crate
	Args    []Ty   // Generic arguments, type arguments only
}

func (*PathTy) tyNode() {}

// Name returns the short name of the path
func (t *PathTy) Name() string {
	if t.Res == ResPrim {
		return t.Prim
	}
	return lastSegment(t.DefPath)
}

// ProjectionTy is a type-relative projection `<T as Trait>::Assoc`
type ProjectionTy struct {
	Base  Ty
	Assoc string // Associated type segment name
}

func (*ProjectionTy) tyNode() {}

// RefTy is a borrowed reference `&T` / `&mut T`
type RefTy struct {
	Inner   Ty
	Mutable bool
}

func (*RefTy) tyNode() {}

// SliceTy is an unsized sequence `[T]`
type SliceTy struct {
	Elem Ty
}

func (*SliceTy) tyNode() {}

// ArrayTy is a fixed-length sequence `[T; N]`. The length is an
// unevaluated constant expression.
type ArrayTy struct {
	Elem Ty
	Len  *ConstExpr
}

func (*ArrayTy) tyNode() {}

// TupTy is an ordered product `(A, B, ...)`
type TupTy struct {
	Elems []Ty
}

func (*TupTy) tyNode() {}

// TraitObjectTy is `dyn Trait` with one or more trait references.
// Only single-trait objects are expressible in the model.
type TraitObjectTy struct {
	Traits []string // Fully-qualified trait paths
	IsDyn  bool
}

func (*TraitObjectTy) tyNode() {}

// BareFnTy is a bare function pointer type
type BareFnTy struct {
	Inputs []Ty
	Output Ty
}

func (*BareFnTy) tyNode() {}

// FnTraitTy marks an Fn/FnMut/FnOnce bound position, modeled opaquely
type FnTraitTy struct{}

func (*FnTraitTy) tyNode() {}

// OpaqueTy is an `impl Trait` position, never expressible in the model
type OpaqueTy struct{}

func (*OpaqueTy) tyNode() {}

// RawPtrTy is `*const T` / `*mut T`, never expressible in the model
type RawPtrTy struct {
	Inner   Ty
	Mutable bool
}

func (*RawPtrTy) tyNode() {}

// NeverTy is the `!` type, never expressible in the model
type NeverTy struct{}

func (*NeverTy) tyNode() {}

// Generics declares the type parameters and where clauses of an item
type Generics struct {
	Params []GenericParam
	Where  []WherePredicate
}

// GenericParam is one declared type parameter with its inline bounds
type GenericParam struct {
	Name   string
	Bounds []GenericBound
}

// WherePredicate bounds a type in a where clause
type WherePredicate struct {
	BoundedTy Ty
	Bounds    []GenericBound
}

// GenericBound is either a trait bound or a lifetime-region bound.
// Lifetime bounds carry no trait path and are ignored by resolution.
type GenericBound struct {
	TraitPath  string
	IsLifetime bool
}

func lastSegment(path string) string {
	for i := len(path) - 2; i >= 0; i-- {
		if path[i] == ':' && path[i+1] == ':' {
			return path[i+2:]
		}
	}
	return path
}
