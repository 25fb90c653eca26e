package resolve

import (
	"github.com/rbrinfo/rbrinfo/internal/mir"
	"github.com/rbrinfo/rbrinfo/internal/model"
)

// ResolveMirTy lowers a compiler-side type term into the model. The
// same expressibility rules apply as for source-level types, except
// that a function pointer term lowers to the Fn marker instead of
// being unresolved.
func (r *Resolver) ResolveMirTy(ty mir.Ty) (model.Type, bool) {
	switch t := ty.(type) {
	case *mir.PrimTy:
		kind, ok := primKind(t.Name)
		if !ok {
			return nil, false
		}
		return &model.Prim{Kind: kind}, true
	case *mir.AdtTy:
		args := make([]model.Type, 0, len(t.Args))
		for _, a := range t.Args {
			arg, ok := r.ResolveMirTy(a)
			if !ok {
				return nil, false
			}
			args = append(args, arg)
		}
		if len(args) == 0 {
			args = nil
		}
		switch t.Kind {
		case mir.AdtStruct:
			return &model.Struct{Name: t.DefPath, Generics: args, IsLocal: t.IsLocal}, true
		case mir.AdtEnum:
			return &model.Enum{Name: t.DefPath, Generics: args, Variants: t.Variants, IsLocal: t.IsLocal}, true
		case mir.AdtUnion:
			return &model.Union{Name: t.DefPath, IsLocal: t.IsLocal}, true
		}
		return nil, false
	case *mir.RefTyTerm:
		inner, ok := r.ResolveMirTy(t.Inner)
		if !ok {
			return nil, false
		}
		return &model.Ref{Inner: inner, Mutable: t.Mutable}, true
	case *mir.TupleTyTerm:
		if len(t.Elems) == 0 {
			return &model.Prim{Kind: model.Unit}, true
		}
		elems := make([]model.Type, len(t.Elems))
		for i, e := range t.Elems {
			elem, ok := r.ResolveMirTy(e)
			if !ok {
				return nil, false
			}
			elems[i] = elem
		}
		return &model.Tuple{Elems: elems}, true
	case *mir.SliceTyTerm:
		elem, ok := r.ResolveMirTy(t.Elem)
		if !ok {
			return nil, false
		}
		return &model.Slice{Elem: elem}, true
	case *mir.ArrayTyTerm:
		elem, ok := r.ResolveMirTy(t.Elem)
		if !ok {
			return nil, false
		}
		return &model.Array{Elem: elem, Length: t.Len}, true
	case *mir.ParamTy:
		if g, ok := r.genEnv[t.Name]; ok {
			return g, true
		}
		return &model.Generic{Name: t.Name}, true
	case *mir.DynTy:
		if len(t.Traits) != 1 {
			return nil, false
		}
		return &model.TraitObj{Name: t.Traits[0], IsDyn: true}, true
	case *mir.FnPtrTy:
		return &model.Fn{}, true
	case *mir.RawPtrTyTerm, *mir.OpaqueTyTerm, *mir.NeverTyTerm:
		return nil, false
	}
	return nil, false
}
