// Package model provides the language-neutral type and callable model
// extracted from the analyzed crate. Types are tagged variants that are
// immutable once constructed; callables reference them and are produced
// once per compilation by the extractor.
package model

import (
	"fmt"
	"strings"
)

// Type represents a type in the extracted model
type Type interface {
	String() string
	Equals(Type) bool
}

// PrimKind enumerates the primitive kinds
type PrimKind string

// Primitive kinds. Integer and float widths are part of the kind.
const (
	I8    PrimKind = "i8"
	I16   PrimKind = "i16"
	I32   PrimKind = "i32"
	I64   PrimKind = "i64"
	I128  PrimKind = "i128"
	Isize PrimKind = "isize"
	U8    PrimKind = "u8"
	U16   PrimKind = "u16"
	U32   PrimKind = "u32"
	U64   PrimKind = "u64"
	U128  PrimKind = "u128"
	Usize PrimKind = "usize"
	F32   PrimKind = "f32"
	F64   PrimKind = "f64"
	Bool  PrimKind = "bool"
	Char  PrimKind = "char"
	Str   PrimKind = "str"
	Unit  PrimKind = "()"
)

// Prim represents a primitive type
type Prim struct {
	Kind PrimKind
}

func (t *Prim) String() string {
	return string(t.Kind)
}

func (t *Prim) Equals(other Type) bool {
	if o, ok := other.(*Prim); ok {
		return t.Kind == o.Kind
	}
	return false
}

// IsNumeric reports whether the primitive is an integer or float kind
func (t *Prim) IsNumeric() bool {
	switch t.Kind {
	case Bool, Char, Str, Unit:
		return false
	}
	return true
}

// Struct represents a nominal aggregate type
type Struct struct {
	Name     string // Fully-qualified name
	Generics []Type
	IsLocal  bool // Defined in the analyzed crate
}

func (t *Struct) String() string {
	return nominalString(t.Name, t.Generics)
}

func (t *Struct) Equals(other Type) bool {
	o, ok := other.(*Struct)
	return ok && t.Name == o.Name && t.IsLocal == o.IsLocal && typesEqual(t.Generics, o.Generics)
}

// Enum represents a nominal sum type. Variants may be empty when the
// enum has been referenced but its variants were not populated.
type Enum struct {
	Name     string
	Generics []Type
	Variants []string
	IsLocal  bool
}

func (t *Enum) String() string {
	return nominalString(t.Name, t.Generics)
}

func (t *Enum) Equals(other Type) bool {
	o, ok := other.(*Enum)
	return ok && t.Name == o.Name && t.IsLocal == o.IsLocal && typesEqual(t.Generics, o.Generics)
}

// Union represents a nominal union type
type Union struct {
	Name    string
	IsLocal bool
}

func (t *Union) String() string {
	return t.Name
}

func (t *Union) Equals(other Type) bool {
	o, ok := other.(*Union)
	return ok && t.Name == o.Name && t.IsLocal == o.IsLocal
}

// Tuple represents an ordered product type
type Tuple struct {
	Elems []Type
}

func (t *Tuple) String() string {
	elems := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
}

func (t *Tuple) Equals(other Type) bool {
	o, ok := other.(*Tuple)
	return ok && typesEqual(t.Elems, o.Elems)
}

// Array represents a fixed-length sequence. Length is resolved by
// constant evaluation at extraction time.
type Array struct {
	Elem   Type
	Length int
}

func (t *Array) String() string {
	return fmt.Sprintf("[%s; %d]", t.Elem.String(), t.Length)
}

func (t *Array) Equals(other Type) bool {
	o, ok := other.(*Array)
	return ok && t.Length == o.Length && t.Elem.Equals(o.Elem)
}

// Slice represents an unsized element sequence
type Slice struct {
	Elem Type
}

func (t *Slice) String() string {
	return fmt.Sprintf("[%s]", t.Elem.String())
}

func (t *Slice) Equals(other Type) bool {
	o, ok := other.(*Slice)
	return ok && t.Elem.Equals(o.Elem)
}

// Ref represents a borrowed reference. Mutability is part of identity:
// Ref{T, mut} and Ref{T, !mut} are distinct types.
type Ref struct {
	Inner   Type
	Mutable bool
}

func (t *Ref) String() string {
	if t.Mutable {
		return fmt.Sprintf("&mut %s", t.Inner.String())
	}
	return fmt.Sprintf("&%s", t.Inner.String())
}

func (t *Ref) Equals(other Type) bool {
	o, ok := other.(*Ref)
	return ok && t.Mutable == o.Mutable && t.Inner.Equals(o.Inner)
}

// TraitObj represents a trait object type
type TraitObj struct {
	Name  string
	IsDyn bool
}

func (t *TraitObj) String() string {
	if t.IsDyn {
		return fmt.Sprintf("dyn %s", t.Name)
	}
	return t.Name
}

func (t *TraitObj) Equals(other Type) bool {
	o, ok := other.(*TraitObj)
	return ok && t.Name == o.Name && t.IsDyn == o.IsDyn
}

// Fn represents an opaque function-pointer or closure type
type Fn struct{}

func (t *Fn) String() string {
	return "fn"
}

func (t *Fn) Equals(other Type) bool {
	_, ok := other.(*Fn)
	return ok
}

// Generic represents a type parameter with an ordered set of trait bounds.
// Two generics are equal as keys by name alone; their bound sets may be
// merged by concatenation when the same parameter appears in both where
// clauses and parameter lists.
type Generic struct {
	Name   string
	Bounds []Trait
}

func (t *Generic) String() string {
	if len(t.Bounds) == 0 {
		return t.Name
	}
	bounds := make([]string, len(t.Bounds))
	for i, b := range t.Bounds {
		bounds[i] = b.Name
	}
	return fmt.Sprintf("%s: %s", t.Name, strings.Join(bounds, " + "))
}

func (t *Generic) Equals(other Type) bool {
	o, ok := other.(*Generic)
	return ok && t.Name == o.Name
}

// MergeBounds returns a generic with the receiver's bounds followed by
// the other's. Duplicates are kept; merging equal bound sets twice
// yields the same record as merging them once only when the inputs are
// already disjoint, which is what the extractor relies on.
func (t *Generic) MergeBounds(other *Generic) *Generic {
	bounds := make([]Trait, 0, len(t.Bounds)+len(other.Bounds))
	bounds = append(bounds, t.Bounds...)
	bounds = append(bounds, other.Bounds...)
	return &Generic{Name: t.Name, Bounds: bounds}
}

// Trait represents a trait reference used as a bound
type Trait struct {
	Name string
}

// Equals reports whether two trait references name the same trait
func (tr Trait) Equals(other Trait) bool {
	return tr.Name == other.Name
}

func nominalString(name string, generics []Type) string {
	if len(generics) == 0 {
		return name
	}
	args := make([]string, len(generics))
	for i, g := range generics {
		args[i] = g.String()
	}
	return fmt.Sprintf("%s<%s>", name, strings.Join(args, ", "))
}

func typesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}
