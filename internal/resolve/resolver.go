// Package resolve lowers source-level type syntax and compiler-side
// type terms into the extracted model. Resolution is best-effort:
// anything the model cannot express is reported as absent, and the
// caller drops the enclosing item rather than guessing.
package resolve

import (
	"github.com/rbrinfo/rbrinfo/internal/hir"
	"github.com/rbrinfo/rbrinfo/internal/model"
)

// Resolver carries the bindings in scope while lowering: the current
// Self type, the associated-type environment of the enclosing impl,
// and the generic environment collected from declarations and where
// clauses.
type Resolver struct {
	crate  *hir.Crate
	selfTy model.Type
	assoc  map[string]model.Type
	genEnv map[string]*model.Generic
}

// New creates a resolver for the given crate with no bindings
func New(crate *hir.Crate) *Resolver {
	return &Resolver{crate: crate}
}

// WithSelf returns a resolver with the given Self binding
func (r *Resolver) WithSelf(selfTy model.Type) *Resolver {
	cp := *r
	cp.selfTy = selfTy
	return &cp
}

// WithAssoc returns a resolver with the given associated-type map
func (r *Resolver) WithAssoc(assoc map[string]model.Type) *Resolver {
	cp := *r
	cp.assoc = assoc
	return &cp
}

// WithGenerics returns a resolver whose generic environment holds the
// given parameters, keyed by name
func (r *Resolver) WithGenerics(generics []model.Type) *Resolver {
	cp := *r
	cp.genEnv = make(map[string]*model.Generic, len(generics))
	for _, g := range generics {
		if gen, ok := g.(*model.Generic); ok {
			cp.genEnv[gen.Name] = gen
		}
	}
	return &cp
}

// ResolveHirTy lowers a source-level type node. The second result is
// false when the type refers to something the model cannot express:
// opaque types, raw pointers, multi-bound trait objects, bare function
// pointers, projections lacking an associated-type binding, Never.
func (r *Resolver) ResolveHirTy(ty hir.Ty) (model.Type, bool) {
	switch t := ty.(type) {
	case *hir.PathTy:
		return r.resolvePath(t)
	case *hir.ProjectionTy:
		if r.assoc != nil {
			if bound, ok := r.assoc[t.Assoc]; ok {
				return bound, true
			}
		}
		return nil, false
	case *hir.RefTy:
		inner, ok := r.ResolveHirTy(t.Inner)
		if !ok {
			return nil, false
		}
		return &model.Ref{Inner: inner, Mutable: t.Mutable}, true
	case *hir.SliceTy:
		elem, ok := r.ResolveHirTy(t.Elem)
		if !ok {
			return nil, false
		}
		return &model.Slice{Elem: elem}, true
	case *hir.ArrayTy:
		elem, ok := r.ResolveHirTy(t.Elem)
		if !ok {
			return nil, false
		}
		length, ok := r.crate.EvalConstUsize(t.Len)
		if !ok {
			return nil, false
		}
		return &model.Array{Elem: elem, Length: length}, true
	case *hir.TupTy:
		elems := make([]model.Type, len(t.Elems))
		for i, e := range t.Elems {
			elem, ok := r.ResolveHirTy(e)
			if !ok {
				return nil, false
			}
			elems[i] = elem
		}
		return &model.Tuple{Elems: elems}, true
	case *hir.TraitObjectTy:
		if len(t.Traits) != 1 {
			return nil, false
		}
		return &model.TraitObj{Name: t.Traits[0], IsDyn: t.IsDyn}, true
	case *hir.FnTraitTy:
		return &model.Fn{}, true
	case *hir.BareFnTy, *hir.OpaqueTy, *hir.RawPtrTy, *hir.NeverTy:
		return nil, false
	}
	return nil, false
}

// FnRet lowers a declared return type. A nil return position is the
// unit/default return, reported as absent without being an error.
func (r *Resolver) FnRet(ret hir.Ty) (model.Type, bool) {
	if ret == nil {
		return nil, true
	}
	if p, ok := ret.(*hir.PathTy); ok && p.Res == hir.ResPrim && p.Prim == "()" {
		return nil, true
	}
	t, ok := r.ResolveHirTy(ret)
	if !ok {
		return nil, false
	}
	return t, true
}

// resolvePath classifies a resolved path into the model
func (r *Resolver) resolvePath(t *hir.PathTy) (model.Type, bool) {
	switch t.Res {
	case hir.ResPrim:
		kind, ok := primKind(t.Prim)
		if !ok {
			return nil, false
		}
		return &model.Prim{Kind: kind}, true
	case hir.ResSelfTyAlias:
		if r.selfTy == nil {
			return nil, false
		}
		return r.selfTy, true
	case hir.ResTyParam:
		if g, ok := r.genEnv[t.Name()]; ok {
			return g, true
		}
		return &model.Generic{Name: t.Name()}, true
	case hir.ResStruct:
		args, ok := r.resolveArgs(t.Args)
		if !ok {
			return nil, false
		}
		return &model.Struct{Name: t.DefPath, Generics: args, IsLocal: t.IsLocal}, true
	case hir.ResEnum:
		args, ok := r.resolveArgs(t.Args)
		if !ok {
			return nil, false
		}
		return &model.Enum{Name: t.DefPath, Generics: args, IsLocal: t.IsLocal}, true
	case hir.ResUnion:
		return &model.Union{Name: t.DefPath, IsLocal: t.IsLocal}, true
	case hir.ResTrait:
		return &model.TraitObj{Name: t.DefPath, IsDyn: false}, true
	}
	return nil, false
}

func (r *Resolver) resolveArgs(args []hir.Ty) ([]model.Type, bool) {
	if len(args) == 0 {
		return nil, true
	}
	out := make([]model.Type, len(args))
	for i, a := range args {
		t, ok := r.ResolveHirTy(a)
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func primKind(name string) (model.PrimKind, bool) {
	switch name {
	case "i8", "i16", "i32", "i64", "i128", "isize",
		"u8", "u16", "u32", "u64", "u128", "usize",
		"f32", "f64", "bool", "char", "str", "()":
		return model.PrimKind(name), true
	}
	return "", false
}
