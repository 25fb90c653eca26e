package model

import (
	"fmt"
	"strings"
)

// Callable is any user-defined entity that can be invoked in a test:
// a free function, a method, an associated function, a struct
// initializer, or an enum variant constructor.
type Callable interface {
	// Kind returns the variant tag used in the serialized catalog
	Kind() string
	// GlobalID returns the stable identifier cross-referencing catalog
	// entries and trace records
	GlobalID() string
	String() string
}

// Param carries an optional name, a type, and a mutability flag
type Param struct {
	Name    string
	Ty      Type
	Mutable bool
}

func (p Param) String() string {
	if p.Name == "" {
		return p.Ty.String()
	}
	return fmt.Sprintf("%s: %s", p.Name, p.Ty.String())
}

// Function represents a free function
type Function struct {
	Public   bool
	Name     string
	Generics []Type
	Params   []Param
	Return   Type // nil for the unit/default return
	SrcPath  string
	FqName   string // Fully-qualified path of the definition
}

func (f *Function) Kind() string { return "Function" }

// GlobalID returns the fully-qualified path with "::" replaced by "__"
func (f *Function) GlobalID() string { return GlobalID(f.FqName) }

func (f *Function) String() string {
	return fmt.Sprintf("fn %s(%s)%s", f.Name, paramsString(f.Params), retString(f.Return))
}

// Method represents an instance method taking a receiver
type Method struct {
	Public   bool
	Name     string
	Generics []Type
	Params   []Param
	Return   Type
	SelfTy   Type
	Trait    string // Implemented trait name, empty for inherent impls
	SrcPath  string
	FqName   string
}

func (m *Method) Kind() string     { return "Method" }
func (m *Method) GlobalID() string { return GlobalID(m.FqName) }

func (m *Method) String() string {
	return fmt.Sprintf("fn %s::%s(self, %s)%s", m.SelfTy.String(), m.Name, paramsString(m.Params), retString(m.Return))
}

// StaticFunction represents an associated function without a receiver
type StaticFunction struct {
	Public   bool
	Name     string
	Generics []Type
	Params   []Param
	Return   Type
	SelfTy   Type
	Trait    string
	SrcPath  string
	FqName   string
}

func (s *StaticFunction) Kind() string     { return "StaticFunction" }
func (s *StaticFunction) GlobalID() string { return GlobalID(s.FqName) }

func (s *StaticFunction) String() string {
	return fmt.Sprintf("fn %s::%s(%s)%s", s.SelfTy.String(), s.Name, paramsString(s.Params), retString(s.Return))
}

// StructInit represents the structural constructor inferred from the
// fields of a struct with named fields
type StructInit struct {
	Public  bool // Struct visibility AND all field visibilities
	Params  []Param
	SelfTy  Type
	SrcPath string
	FqName  string
}

func (s *StructInit) Kind() string     { return "StructInit" }
func (s *StructInit) GlobalID() string { return GlobalID(s.FqName) }

func (s *StructInit) String() string {
	return fmt.Sprintf("%s { %s }", s.SelfTy.String(), paramsString(s.Params))
}

// VariantShape distinguishes the three enum variant forms
type VariantShape string

// Enum variant shapes
const (
	ShapeUnit   VariantShape = "Unit"
	ShapeTuple  VariantShape = "Tuple"
	ShapeStruct VariantShape = "Struct"
)

// Variant describes one enum variant: its shape and the parameters of
// its constructor (positional for Tuple, named for Struct, empty for
// Unit).
type Variant struct {
	Name   string
	Shape  VariantShape
	Params []Param
}

func (v Variant) String() string {
	switch v.Shape {
	case ShapeTuple:
		return fmt.Sprintf("%s(%s)", v.Name, paramsString(v.Params))
	case ShapeStruct:
		return fmt.Sprintf("%s { %s }", v.Name, paramsString(v.Params))
	}
	return v.Name
}

// EnumInit represents the constructor for one enum variant
type EnumInit struct {
	Public  bool
	SelfTy  Type
	Variant Variant
	SrcPath string
	FqName  string
}

func (e *EnumInit) Kind() string { return "EnumInit" }

// GlobalID keys the variant constructor by the enum path plus the
// variant name
func (e *EnumInit) GlobalID() string {
	return GlobalID(e.FqName + "::" + e.Variant.Name)
}

func (e *EnumInit) String() string {
	return fmt.Sprintf("%s::%s", e.SelfTy.String(), e.Variant.String())
}

// GlobalID forms a stable identifier from a fully-qualified path by
// replacing every "::" with "__"
func GlobalID(fqPath string) string {
	return strings.ReplaceAll(fqPath, "::", "__")
}

func paramsString(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func retString(ret Type) string {
	if ret == nil {
		return ""
	}
	return " -> " + ret.String()
}
