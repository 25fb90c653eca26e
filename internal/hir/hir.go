// Package hir models the typed item tree of the analyzed crate: items,
// type syntax, path resolutions, and generic declarations. The tree is
// produced by the front-end dump loader and consumed read-only by the
// extractor and the instrumenter's probe lookup.
package hir

import "strings"

// Visibility of an item or field
type Visibility int

// Visibility levels
const (
	VisPublic Visibility = iota
	VisRestricted
	VisPrivate
)

// IsPublic reports whether the visibility is fully public
func (v Visibility) IsPublic() bool { return v == VisPublic }

// Crate is the item tree of one compilation
type Crate struct {
	Name  string
	Dir   string // Absolute directory of the crate root
	Items []Item
}

// Item is a top-level or associated item
type Item interface {
	itemNode()
	// Path returns the fully-qualified path of the item, "::"-separated
	Path() string
	// ItemName returns the short name (last path segment)
	ItemName() string
	// SrcPath returns the source file the item was defined in
	SrcPath() string
}

type itemBase struct {
	FqPath string
	File   string
}

func (b itemBase) Path() string    { return b.FqPath }
func (b itemBase) SrcPath() string { return b.File }

func (b itemBase) ItemName() string {
	if i := strings.LastIndex(b.FqPath, "::"); i >= 0 {
		return b.FqPath[i+2:]
	}
	return b.FqPath
}

// FnItem is a free function or an associated function inside an impl
type FnItem struct {
	itemBase
	Vis      Visibility
	Unsafe   bool
	Nested   bool // Defined inside another function body
	Generics Generics
	Decl     FnDecl
	BodyID   string // Global id of the MIR body, empty when external
}

func (*FnItem) itemNode() {}

// FnDecl is the declared signature of a function
type FnDecl struct {
	Inputs   []Ty
	Output   Ty // nil for the default/unit return
	HasSelf  bool
	SelfMut  bool
	ArgNames []string
}

// StructItem is a struct definition
type StructItem struct {
	itemBase
	Vis      Visibility
	Generics Generics
	Fields   []FieldDef
	IsTuple  bool // Tuple struct (positional fields)
}

func (*StructItem) itemNode() {}

// FieldDef is one named or positional field
type FieldDef struct {
	Name string
	Vis  Visibility
	Ty   Ty
}

// EnumItem is an enum definition
type EnumItem struct {
	itemBase
	Vis      Visibility
	Generics Generics
	Variants []VariantDef
}

func (*EnumItem) itemNode() {}

// VariantKind distinguishes the three variant forms
type VariantKind int

// Variant forms
const (
	VariantUnit VariantKind = iota
	VariantTuple
	VariantStruct
)

// VariantDef is one enum variant
type VariantDef struct {
	Name   string
	Kind   VariantKind
	Fields []FieldDef
}

// UnionItem is a union definition
type UnionItem struct {
	itemBase
	Vis    Visibility
	Fields []FieldDef
}

func (*UnionItem) itemNode() {}

// TraitItem is a trait definition. Traits produce no callables; they
// contribute to the bound universe and to associated-type environments.
type TraitItem struct {
	itemBase
	Vis        Visibility
	Generics   Generics
	SuperTrait []string // Fully-qualified super-trait paths
	AssocTypes []string // Declared associated type names
}

func (*TraitItem) itemNode() {}

// AssocTypeDef is a `type Assoc = T` item inside an impl
type AssocTypeDef struct {
	Name string
	Ty   Ty
}

// ImplItem is an impl block, inherent or trait
type ImplItem struct {
	itemBase
	Generics   Generics
	SelfTy     Ty
	TraitPath  string // Implemented trait path, empty for inherent impls
	AssocTypes []AssocTypeDef
	Fns        []*FnItem
}

func (*ImplItem) itemNode() {}

// ConstItem is a named constant, consulted by array-length evaluation
type ConstItem struct {
	itemBase
	Vis   Visibility
	Value *ConstExpr
}

func (*ConstItem) itemNode() {}

// FindFnsByNameSubstring returns every function item, free or
// associated, whose short name contains the given substring. This is
// how monitor probes are discovered.
func (c *Crate) FindFnsByNameSubstring(sub string) []*FnItem {
	var found []*FnItem
	for _, item := range c.Items {
		switch it := item.(type) {
		case *FnItem:
			if strings.Contains(it.ItemName(), sub) {
				found = append(found, it)
			}
		case *ImplItem:
			for _, fn := range it.Fns {
				if strings.Contains(fn.ItemName(), sub) {
					found = append(found, fn)
				}
			}
		}
	}
	return found
}

// LookupTrait returns the trait item with the given fully-qualified
// path, or nil
func (c *Crate) LookupTrait(path string) *TraitItem {
	for _, item := range c.Items {
		if tr, ok := item.(*TraitItem); ok && tr.FqPath == path {
			return tr
		}
	}
	return nil
}

// ImplsFor returns every impl block whose self type resolves to the
// same nominal path as the given one
func (c *Crate) ImplsFor(selfPath string) []*ImplItem {
	var impls []*ImplItem
	for _, item := range c.Items {
		if im, ok := item.(*ImplItem); ok {
			if p, ok := nominalPathOf(im.SelfTy); ok && p == selfPath {
				impls = append(impls, im)
			}
		}
	}
	return impls
}

func nominalPathOf(ty Ty) (string, bool) {
	if p, ok := ty.(*PathTy); ok {
		return p.DefPath, true
	}
	return "", false
}
