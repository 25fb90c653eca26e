package model

import (
	"encoding/json"
	"fmt"
)

// typeJSON is the tagged wire form of a Type. Exactly one payload field
// is populated, selected by the tag.
type typeJSON struct {
	Tag      string     `json:"tag"`
	Prim     string     `json:"prim,omitempty"`
	Name     string     `json:"name,omitempty"`
	Generics []typeJSON `json:"generics,omitempty"`
	Variants []string   `json:"variants,omitempty"`
	IsLocal  bool       `json:"is_local,omitempty"`
	Elems    []typeJSON `json:"elems,omitempty"`
	Elem     *typeJSON  `json:"elem,omitempty"`
	Length   int        `json:"length,omitempty"`
	Inner    *typeJSON  `json:"inner,omitempty"`
	Mutable  bool       `json:"mutable,omitempty"`
	IsDyn    bool       `json:"is_dyn,omitempty"`
	Bounds   []string   `json:"bounds,omitempty"`
}

// MarshalType converts a Type to its tagged wire form
func MarshalType(t Type) ([]byte, error) {
	wire, err := typeToWire(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

// UnmarshalType reconstructs a Type from its tagged wire form
func UnmarshalType(data []byte) (Type, error) {
	var wire typeJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return typeFromWire(&wire)
}

func typeToWire(t Type) (*typeJSON, error) {
	switch v := t.(type) {
	case *Prim:
		return &typeJSON{Tag: "Prim", Prim: string(v.Kind)}, nil
	case *Struct:
		generics, err := typesToWire(v.Generics)
		if err != nil {
			return nil, err
		}
		return &typeJSON{Tag: "Struct", Name: v.Name, Generics: generics, IsLocal: v.IsLocal}, nil
	case *Enum:
		generics, err := typesToWire(v.Generics)
		if err != nil {
			return nil, err
		}
		return &typeJSON{Tag: "Enum", Name: v.Name, Generics: generics, Variants: v.Variants, IsLocal: v.IsLocal}, nil
	case *Union:
		return &typeJSON{Tag: "Union", Name: v.Name, IsLocal: v.IsLocal}, nil
	case *Tuple:
		elems, err := typesToWire(v.Elems)
		if err != nil {
			return nil, err
		}
		return &typeJSON{Tag: "Tuple", Elems: elems}, nil
	case *Array:
		elem, err := typeToWire(v.Elem)
		if err != nil {
			return nil, err
		}
		return &typeJSON{Tag: "Array", Elem: elem, Length: v.Length}, nil
	case *Slice:
		elem, err := typeToWire(v.Elem)
		if err != nil {
			return nil, err
		}
		return &typeJSON{Tag: "Slice", Elem: elem}, nil
	case *Ref:
		inner, err := typeToWire(v.Inner)
		if err != nil {
			return nil, err
		}
		return &typeJSON{Tag: "Ref", Inner: inner, Mutable: v.Mutable}, nil
	case *TraitObj:
		return &typeJSON{Tag: "TraitObj", Name: v.Name, IsDyn: v.IsDyn}, nil
	case *Fn:
		return &typeJSON{Tag: "Fn"}, nil
	case *Generic:
		bounds := make([]string, len(v.Bounds))
		for i, b := range v.Bounds {
			bounds[i] = b.Name
		}
		return &typeJSON{Tag: "Generic", Name: v.Name, Bounds: bounds}, nil
	}
	return nil, fmt.Errorf("unknown type variant %T", t)
}

func typeFromWire(wire *typeJSON) (Type, error) {
	switch wire.Tag {
	case "Prim":
		return &Prim{Kind: PrimKind(wire.Prim)}, nil
	case "Struct":
		generics, err := typesFromWire(wire.Generics)
		if err != nil {
			return nil, err
		}
		return &Struct{Name: wire.Name, Generics: generics, IsLocal: wire.IsLocal}, nil
	case "Enum":
		generics, err := typesFromWire(wire.Generics)
		if err != nil {
			return nil, err
		}
		return &Enum{Name: wire.Name, Generics: generics, Variants: wire.Variants, IsLocal: wire.IsLocal}, nil
	case "Union":
		return &Union{Name: wire.Name, IsLocal: wire.IsLocal}, nil
	case "Tuple":
		elems, err := typesFromWire(wire.Elems)
		if err != nil {
			return nil, err
		}
		return &Tuple{Elems: elems}, nil
	case "Array":
		elem, err := typeFromWire(wire.Elem)
		if err != nil {
			return nil, err
		}
		return &Array{Elem: elem, Length: wire.Length}, nil
	case "Slice":
		elem, err := typeFromWire(wire.Elem)
		if err != nil {
			return nil, err
		}
		return &Slice{Elem: elem}, nil
	case "Ref":
		inner, err := typeFromWire(wire.Inner)
		if err != nil {
			return nil, err
		}
		return &Ref{Inner: inner, Mutable: wire.Mutable}, nil
	case "TraitObj":
		return &TraitObj{Name: wire.Name, IsDyn: wire.IsDyn}, nil
	case "Fn":
		return &Fn{}, nil
	case "Generic":
		bounds := make([]Trait, len(wire.Bounds))
		for i, name := range wire.Bounds {
			bounds[i] = Trait{Name: name}
		}
		return &Generic{Name: wire.Name, Bounds: bounds}, nil
	}
	return nil, fmt.Errorf("unknown type tag %q", wire.Tag)
}

func typesToWire(ts []Type) ([]typeJSON, error) {
	if len(ts) == 0 {
		return nil, nil
	}
	wires := make([]typeJSON, len(ts))
	for i, t := range ts {
		w, err := typeToWire(t)
		if err != nil {
			return nil, err
		}
		wires[i] = *w
	}
	return wires, nil
}

func typesFromWire(wires []typeJSON) ([]Type, error) {
	if len(wires) == 0 {
		return nil, nil
	}
	ts := make([]Type, len(wires))
	for i := range wires {
		t, err := typeFromWire(&wires[i])
		if err != nil {
			return nil, err
		}
		ts[i] = t
	}
	return ts, nil
}

// paramJSON is the wire form of a Param
type paramJSON struct {
	Name    string    `json:"name,omitempty"`
	Ty      *typeJSON `json:"ty"`
	Mutable bool      `json:"mutable,omitempty"`
}

// callableJSON is the tagged wire form of a Callable
type callableJSON struct {
	Tag      string      `json:"tag"`
	Public   bool        `json:"public"`
	Name     string      `json:"name,omitempty"`
	Generics []typeJSON  `json:"generics,omitempty"`
	Params   []paramJSON `json:"params,omitempty"`
	Return   *typeJSON   `json:"return,omitempty"`
	SelfTy   *typeJSON   `json:"self_ty,omitempty"`
	Trait    string      `json:"trait,omitempty"`
	Variant  string      `json:"variant,omitempty"`
	Shape    string      `json:"shape,omitempty"`
	SrcPath  string      `json:"src_path,omitempty"`
	FqName   string      `json:"fq_name,omitempty"`
	GlobalID string      `json:"global_id"`
}

// MarshalCallable converts a Callable to its tagged wire form
func MarshalCallable(c Callable) ([]byte, error) {
	wire, err := callableToWire(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

// UnmarshalCallable reconstructs a Callable from its tagged wire form
func UnmarshalCallable(data []byte) (Callable, error) {
	var wire callableJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return callableFromWire(&wire)
}

func callableToWire(c Callable) (*callableJSON, error) {
	wire := &callableJSON{Tag: c.Kind(), GlobalID: c.GlobalID()}
	var err error
	switch v := c.(type) {
	case *Function:
		wire.Public = v.Public
		wire.Name = v.Name
		wire.SrcPath = v.SrcPath
		wire.FqName = v.FqName
		if wire.Generics, err = typesToWire(v.Generics); err != nil {
			return nil, err
		}
		if wire.Params, err = paramsToWire(v.Params); err != nil {
			return nil, err
		}
		if wire.Return, err = optTypeToWire(v.Return); err != nil {
			return nil, err
		}
	case *Method:
		wire.Public = v.Public
		wire.Name = v.Name
		wire.Trait = v.Trait
		wire.SrcPath = v.SrcPath
		wire.FqName = v.FqName
		if wire.Generics, err = typesToWire(v.Generics); err != nil {
			return nil, err
		}
		if wire.Params, err = paramsToWire(v.Params); err != nil {
			return nil, err
		}
		if wire.Return, err = optTypeToWire(v.Return); err != nil {
			return nil, err
		}
		if wire.SelfTy, err = optTypeToWire(v.SelfTy); err != nil {
			return nil, err
		}
	case *StaticFunction:
		wire.Public = v.Public
		wire.Name = v.Name
		wire.Trait = v.Trait
		wire.SrcPath = v.SrcPath
		wire.FqName = v.FqName
		if wire.Generics, err = typesToWire(v.Generics); err != nil {
			return nil, err
		}
		if wire.Params, err = paramsToWire(v.Params); err != nil {
			return nil, err
		}
		if wire.Return, err = optTypeToWire(v.Return); err != nil {
			return nil, err
		}
		if wire.SelfTy, err = optTypeToWire(v.SelfTy); err != nil {
			return nil, err
		}
	case *StructInit:
		wire.Public = v.Public
		wire.SrcPath = v.SrcPath
		wire.FqName = v.FqName
		if wire.Params, err = paramsToWire(v.Params); err != nil {
			return nil, err
		}
		if wire.SelfTy, err = optTypeToWire(v.SelfTy); err != nil {
			return nil, err
		}
	case *EnumInit:
		wire.Public = v.Public
		wire.Variant = v.Variant.Name
		wire.Shape = string(v.Variant.Shape)
		wire.SrcPath = v.SrcPath
		wire.FqName = v.FqName
		if wire.Params, err = paramsToWire(v.Variant.Params); err != nil {
			return nil, err
		}
		if wire.SelfTy, err = optTypeToWire(v.SelfTy); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown callable variant %T", c)
	}
	return wire, nil
}

func callableFromWire(wire *callableJSON) (Callable, error) {
	generics, err := typesFromWire(wire.Generics)
	if err != nil {
		return nil, err
	}
	params, err := paramsFromWire(wire.Params)
	if err != nil {
		return nil, err
	}
	ret, err := optTypeFromWire(wire.Return)
	if err != nil {
		return nil, err
	}
	selfTy, err := optTypeFromWire(wire.SelfTy)
	if err != nil {
		return nil, err
	}

	switch wire.Tag {
	case "Function":
		return &Function{
			Public: wire.Public, Name: wire.Name, Generics: generics,
			Params: params, Return: ret, SrcPath: wire.SrcPath, FqName: wire.FqName,
		}, nil
	case "Method":
		return &Method{
			Public: wire.Public, Name: wire.Name, Generics: generics,
			Params: params, Return: ret, SelfTy: selfTy, Trait: wire.Trait,
			SrcPath: wire.SrcPath, FqName: wire.FqName,
		}, nil
	case "StaticFunction":
		return &StaticFunction{
			Public: wire.Public, Name: wire.Name, Generics: generics,
			Params: params, Return: ret, SelfTy: selfTy, Trait: wire.Trait,
			SrcPath: wire.SrcPath, FqName: wire.FqName,
		}, nil
	case "StructInit":
		return &StructInit{
			Public: wire.Public, Params: params, SelfTy: selfTy,
			SrcPath: wire.SrcPath, FqName: wire.FqName,
		}, nil
	case "EnumInit":
		return &EnumInit{
			Public: wire.Public, SelfTy: selfTy,
			Variant: Variant{Name: wire.Variant, Shape: VariantShape(wire.Shape), Params: params},
			SrcPath: wire.SrcPath, FqName: wire.FqName,
		}, nil
	}
	return nil, fmt.Errorf("unknown callable tag %q", wire.Tag)
}

func paramsToWire(params []Param) ([]paramJSON, error) {
	if len(params) == 0 {
		return nil, nil
	}
	wires := make([]paramJSON, len(params))
	for i, p := range params {
		ty, err := typeToWire(p.Ty)
		if err != nil {
			return nil, err
		}
		wires[i] = paramJSON{Name: p.Name, Ty: ty, Mutable: p.Mutable}
	}
	return wires, nil
}

func paramsFromWire(wires []paramJSON) ([]Param, error) {
	if len(wires) == 0 {
		return nil, nil
	}
	params := make([]Param, len(wires))
	for i, w := range wires {
		ty, err := typeFromWire(w.Ty)
		if err != nil {
			return nil, err
		}
		params[i] = Param{Name: w.Name, Ty: ty, Mutable: w.Mutable}
	}
	return params, nil
}

func optTypeToWire(t Type) (*typeJSON, error) {
	if t == nil {
		return nil, nil
	}
	return typeToWire(t)
}

func optTypeFromWire(wire *typeJSON) (Type, error) {
	if wire == nil {
		return nil, nil
	}
	return typeFromWire(wire)
}
