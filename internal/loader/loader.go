// Package loader deserializes the front-end's IR dump into the item
// tree and the per-body CFG-IR. Input is normalized at the boundary
// (BOM stripped, NFC) so identifiers from mixed encodings produce
// stable global ids.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/text/unicode/norm"

	"github.com/rbrinfo/rbrinfo/internal/hir"
	"github.com/rbrinfo/rbrinfo/internal/mir"
)

// bomUTF8 is the UTF-8 Byte Order Mark
var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Normalize strips a UTF-8 BOM and applies NFC normalization
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	return src
}

// Dump is one compilation's worth of IR
type Dump struct {
	Crate  *hir.Crate
	Bodies []*mir.Body
}

// LoadFile reads and decodes a dump file
func LoadFile(path string) (*Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Load decodes a dump from raw bytes
func Load(data []byte) (*Dump, error) {
	var wire dumpWire
	if err := json.Unmarshal(Normalize(data), &wire); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}

	crate := &hir.Crate{Name: wire.Crate.Name, Dir: wire.Crate.Dir}
	for i := range wire.Crate.Items {
		item, err := decodeItem(&wire.Crate.Items[i])
		if err != nil {
			return nil, err
		}
		crate.Items = append(crate.Items, item)
	}

	bodies := make([]*mir.Body, 0, len(wire.Bodies))
	for i := range wire.Bodies {
		body, err := decodeBody(&wire.Bodies[i])
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}

	return &Dump{Crate: crate, Bodies: bodies}, nil
}

type dumpWire struct {
	Crate  crateWire  `json:"crate"`
	Bodies []bodyWire `json:"bodies"`
}

type crateWire struct {
	Name  string     `json:"name"`
	Dir   string     `json:"dir"`
	Items []itemWire `json:"items"`
}

type itemWire struct {
	Kind       string         `json:"kind"`
	Path       string         `json:"path"`
	File       string         `json:"file"`
	Vis        string         `json:"vis"`
	Unsafe     bool           `json:"unsafe,omitempty"`
	Nested     bool           `json:"nested,omitempty"`
	Generics   *genericsWire  `json:"generics,omitempty"`
	Decl       *fnDeclWire    `json:"decl,omitempty"`
	BodyID     string         `json:"body_id,omitempty"`
	Fields     []fieldWire    `json:"fields,omitempty"`
	IsTuple    bool           `json:"is_tuple,omitempty"`
	Variants   []variantWire  `json:"variants,omitempty"`
	SuperTrait []string       `json:"super_traits,omitempty"`
	AssocDecls []string       `json:"assoc_decls,omitempty"`
	SelfTy     *tyWire        `json:"self_ty,omitempty"`
	TraitPath  string         `json:"trait_path,omitempty"`
	AssocTypes []assocTyWire  `json:"assoc_types,omitempty"`
	Fns        []itemWire     `json:"fns,omitempty"`
	Value      *constExprWire `json:"value,omitempty"`
}

type fnDeclWire struct {
	Inputs   []tyWire `json:"inputs"`
	Output   *tyWire  `json:"output,omitempty"`
	HasSelf  bool     `json:"has_self,omitempty"`
	SelfMut  bool     `json:"self_mut,omitempty"`
	ArgNames []string `json:"arg_names,omitempty"`
}

type fieldWire struct {
	Name string `json:"name"`
	Vis  string `json:"vis"`
	Ty   tyWire `json:"ty"`
}

type variantWire struct {
	Name   string      `json:"name"`
	Kind   string      `json:"kind"` // "unit" | "tuple" | "struct"
	Fields []fieldWire `json:"fields,omitempty"`
}

type assocTyWire struct {
	Name string `json:"name"`
	Ty   tyWire `json:"ty"`
}

type genericsWire struct {
	Params []paramWire `json:"params,omitempty"`
	Where  []whereWire `json:"where,omitempty"`
}

type paramWire struct {
	Name   string      `json:"name"`
	Bounds []boundWire `json:"bounds,omitempty"`
}

type whereWire struct {
	Ty     tyWire      `json:"ty"`
	Bounds []boundWire `json:"bounds,omitempty"`
}

type boundWire struct {
	Trait    string `json:"trait,omitempty"`
	Lifetime bool   `json:"lifetime,omitempty"`
}

type tyWire struct {
	Tag     string         `json:"tag"`
	Res     string         `json:"res,omitempty"`
	DefPath string         `json:"def_path,omitempty"`
	Prim    string         `json:"prim,omitempty"`
	IsLocal bool           `json:"is_local,omitempty"`
	Args    []tyWire       `json:"args,omitempty"`
	Base    *tyWire        `json:"base,omitempty"`
	Assoc   string         `json:"assoc,omitempty"`
	Inner   *tyWire        `json:"inner,omitempty"`
	Mutable bool           `json:"mutable,omitempty"`
	Elem    *tyWire        `json:"elem,omitempty"`
	Len     *constExprWire `json:"len,omitempty"`
	Elems   []tyWire       `json:"elems,omitempty"`
	Traits  []string       `json:"traits,omitempty"`
	IsDyn   bool           `json:"is_dyn,omitempty"`
	Inputs  []tyWire       `json:"inputs,omitempty"`
	Output  *tyWire        `json:"output,omitempty"`
}

type constExprWire struct {
	Kind  string         `json:"kind"` // "lit" | "ref" | "binary" | "opaque"
	Value int            `json:"value,omitempty"`
	Ref   string         `json:"ref,omitempty"`
	Op    string         `json:"op,omitempty"`
	LHS   *constExprWire `json:"lhs,omitempty"`
	RHS   *constExprWire `json:"rhs,omitempty"`
}

func decodeVis(s string) hir.Visibility {
	switch s {
	case "pub", "public":
		return hir.VisPublic
	case "restricted":
		return hir.VisRestricted
	}
	return hir.VisPrivate
}

func decodeItem(w *itemWire) (hir.Item, error) {
	switch w.Kind {
	case "fn":
		return decodeFnItem(w)
	case "struct":
		st := &hir.StructItem{Vis: decodeVis(w.Vis), IsTuple: w.IsTuple}
		setBase(st, w)
		st.Generics = decodeGenerics(w.Generics)
		var err error
		if st.Fields, err = decodeFields(w.Fields); err != nil {
			return nil, err
		}
		return st, nil
	case "enum":
		en := &hir.EnumItem{Vis: decodeVis(w.Vis)}
		setBase(en, w)
		en.Generics = decodeGenerics(w.Generics)
		for _, v := range w.Variants {
			fields, err := decodeFields(v.Fields)
			if err != nil {
				return nil, err
			}
			en.Variants = append(en.Variants, hir.VariantDef{
				Name:   v.Name,
				Kind:   decodeVariantKind(v.Kind),
				Fields: fields,
			})
		}
		return en, nil
	case "union":
		un := &hir.UnionItem{Vis: decodeVis(w.Vis)}
		setBase(un, w)
		var err error
		if un.Fields, err = decodeFields(w.Fields); err != nil {
			return nil, err
		}
		return un, nil
	case "trait":
		tr := &hir.TraitItem{
			Vis:        decodeVis(w.Vis),
			SuperTrait: w.SuperTrait,
			AssocTypes: w.AssocDecls,
		}
		setBase(tr, w)
		tr.Generics = decodeGenerics(w.Generics)
		return tr, nil
	case "impl":
		im := &hir.ImplItem{TraitPath: w.TraitPath}
		setBase(im, w)
		im.Generics = decodeGenerics(w.Generics)
		if w.SelfTy != nil {
			selfTy, err := decodeTy(w.SelfTy)
			if err != nil {
				return nil, err
			}
			im.SelfTy = selfTy
		}
		for i := range w.AssocTypes {
			ty, err := decodeTy(&w.AssocTypes[i].Ty)
			if err != nil {
				return nil, err
			}
			im.AssocTypes = append(im.AssocTypes, hir.AssocTypeDef{Name: w.AssocTypes[i].Name, Ty: ty})
		}
		for i := range w.Fns {
			fn, err := decodeFnItem(&w.Fns[i])
			if err != nil {
				return nil, err
			}
			im.Fns = append(im.Fns, fn)
		}
		return im, nil
	case "const":
		ci := &hir.ConstItem{Vis: decodeVis(w.Vis), Value: decodeConstExpr(w.Value)}
		setBase(ci, w)
		return ci, nil
	}
	return nil, fmt.Errorf("unknown item kind %q", w.Kind)
}

// setBase fills the embedded item base through the concrete type
func setBase(item hir.Item, w *itemWire) {
	switch it := item.(type) {
	case *hir.FnItem:
		it.FqPath, it.File = w.Path, w.File
	case *hir.StructItem:
		it.FqPath, it.File = w.Path, w.File
	case *hir.EnumItem:
		it.FqPath, it.File = w.Path, w.File
	case *hir.UnionItem:
		it.FqPath, it.File = w.Path, w.File
	case *hir.TraitItem:
		it.FqPath, it.File = w.Path, w.File
	case *hir.ImplItem:
		it.FqPath, it.File = w.Path, w.File
	case *hir.ConstItem:
		it.FqPath, it.File = w.Path, w.File
	}
}

func decodeFnItem(w *itemWire) (*hir.FnItem, error) {
	fn := &hir.FnItem{
		Vis:    decodeVis(w.Vis),
		Unsafe: w.Unsafe,
		Nested: w.Nested,
		BodyID: w.BodyID,
	}
	fn.FqPath, fn.File = w.Path, w.File
	fn.Generics = decodeGenerics(w.Generics)
	if w.Decl != nil {
		for i := range w.Decl.Inputs {
			ty, err := decodeTy(&w.Decl.Inputs[i])
			if err != nil {
				return nil, err
			}
			fn.Decl.Inputs = append(fn.Decl.Inputs, ty)
		}
		if w.Decl.Output != nil {
			out, err := decodeTy(w.Decl.Output)
			if err != nil {
				return nil, err
			}
			fn.Decl.Output = out
		}
		fn.Decl.HasSelf = w.Decl.HasSelf
		fn.Decl.SelfMut = w.Decl.SelfMut
		fn.Decl.ArgNames = w.Decl.ArgNames
	}
	return fn, nil
}

func decodeFields(wires []fieldWire) ([]hir.FieldDef, error) {
	var fields []hir.FieldDef
	for i := range wires {
		ty, err := decodeTy(&wires[i].Ty)
		if err != nil {
			return nil, err
		}
		fields = append(fields, hir.FieldDef{
			Name: wires[i].Name,
			Vis:  decodeVis(wires[i].Vis),
			Ty:   ty,
		})
	}
	return fields, nil
}

func decodeVariantKind(s string) hir.VariantKind {
	switch s {
	case "tuple":
		return hir.VariantTuple
	case "struct":
		return hir.VariantStruct
	}
	return hir.VariantUnit
}

func decodeGenerics(w *genericsWire) hir.Generics {
	var g hir.Generics
	if w == nil {
		return g
	}
	for _, p := range w.Params {
		g.Params = append(g.Params, hir.GenericParam{
			Name:   p.Name,
			Bounds: decodeBounds(p.Bounds),
		})
	}
	for i := range w.Where {
		ty, err := decodeTy(&w.Where[i].Ty)
		if err != nil {
			continue
		}
		g.Where = append(g.Where, hir.WherePredicate{
			BoundedTy: ty,
			Bounds:    decodeBounds(w.Where[i].Bounds),
		})
	}
	return g
}

func decodeBounds(wires []boundWire) []hir.GenericBound {
	var bounds []hir.GenericBound
	for _, b := range wires {
		bounds = append(bounds, hir.GenericBound{TraitPath: b.Trait, IsLifetime: b.Lifetime})
	}
	return bounds
}

func decodeTy(w *tyWire) (hir.Ty, error) {
	switch w.Tag {
	case "path":
		args := make([]hir.Ty, 0, len(w.Args))
		for i := range w.Args {
			a, err := decodeTy(&w.Args[i])
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		if len(args) == 0 {
			args = nil
		}
		return &hir.PathTy{
			Res:     decodeRes(w.Res),
			DefPath: w.DefPath,
			Prim:    w.Prim,
			IsLocal: w.IsLocal,
			Args:    args,
		}, nil
	case "projection":
		base, err := decodeTy(w.Base)
		if err != nil {
			return nil, err
		}
		return &hir.ProjectionTy{Base: base, Assoc: w.Assoc}, nil
	case "ref":
		inner, err := decodeTy(w.Inner)
		if err != nil {
			return nil, err
		}
		return &hir.RefTy{Inner: inner, Mutable: w.Mutable}, nil
	case "slice":
		elem, err := decodeTy(w.Elem)
		if err != nil {
			return nil, err
		}
		return &hir.SliceTy{Elem: elem}, nil
	case "array":
		elem, err := decodeTy(w.Elem)
		if err != nil {
			return nil, err
		}
		return &hir.ArrayTy{Elem: elem, Len: decodeConstExpr(w.Len)}, nil
	case "tuple":
		elems := make([]hir.Ty, 0, len(w.Elems))
		for i := range w.Elems {
			e, err := decodeTy(&w.Elems[i])
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return &hir.TupTy{Elems: elems}, nil
	case "trait_object":
		return &hir.TraitObjectTy{Traits: w.Traits, IsDyn: w.IsDyn}, nil
	case "bare_fn":
		return &hir.BareFnTy{}, nil
	case "fn_trait":
		return &hir.FnTraitTy{}, nil
	case "opaque":
		return &hir.OpaqueTy{}, nil
	case "raw_ptr":
		inner, err := decodeTy(w.Inner)
		if err != nil {
			return nil, err
		}
		return &hir.RawPtrTy{Inner: inner, Mutable: w.Mutable}, nil
	case "never":
		return &hir.NeverTy{}, nil
	}
	return nil, fmt.Errorf("unknown type tag %q", w.Tag)
}

func decodeRes(s string) hir.ResKind {
	switch s {
	case "struct":
		return hir.ResStruct
	case "enum":
		return hir.ResEnum
	case "union":
		return hir.ResUnion
	case "ty_param":
		return hir.ResTyParam
	case "trait":
		return hir.ResTrait
	case "self":
		return hir.ResSelfTyAlias
	}
	return hir.ResPrim
}

func decodeConstExpr(w *constExprWire) *hir.ConstExpr {
	if w == nil {
		return nil
	}
	expr := &hir.ConstExpr{Value: w.Value, Ref: w.Ref, Op: w.Op}
	switch w.Kind {
	case "lit":
		expr.Kind = hir.ConstLit
	case "ref":
		expr.Kind = hir.ConstRef
	case "binary":
		expr.Kind = hir.ConstBinary
		expr.LHS = decodeConstExpr(w.LHS)
		expr.RHS = decodeConstExpr(w.RHS)
	default:
		expr.Kind = hir.ConstOpaque
	}
	return expr
}
