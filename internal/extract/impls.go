package extract

import (
	"github.com/rbrinfo/rbrinfo/internal/hir"
	"github.com/rbrinfo/rbrinfo/internal/model"
	"github.com/rbrinfo/rbrinfo/internal/resolve"
)

// extractImpl builds Method and StaticFunction callables from an impl
// block. The impl's Self type and generics are resolved first; an
// associated-type environment is assembled from the impl's own `type
// Assoc = T` items plus the corresponding items of each declared
// super-trait's impls for the same Self.
func (e *Extractor) extractImpl(im *hir.ImplItem) []model.Callable {
	if p, ok := im.SelfTy.(*hir.PathTy); ok && e.filters.SkipImpl(p.DefPath) {
		return nil
	}

	r := resolve.New(e.crate)
	generics, ok := r.ResolveGenerics(im.Generics)
	if !ok {
		e.logf("extract: dropping impl %s: unresolved generics", im.Path())
		return nil
	}
	r = r.WithGenerics(generics)

	selfTy, ok := r.ResolveHirTy(im.SelfTy)
	if !ok {
		e.logf("extract: dropping impl %s: unresolved self type", im.Path())
		return nil
	}
	r = r.WithSelf(selfTy)

	assoc := e.assocEnv(r, im)
	r = r.WithAssoc(assoc)

	var callables []model.Callable
	for _, fn := range im.Fns {
		if fn.Unsafe || e.filters.SkipFnName(fn.ItemName()) {
			continue
		}
		if c, ok := e.extractAssocFn(r, fn, selfTy, im.TraitPath, generics); ok {
			callables = append(callables, c)
		}
	}
	return callables
}

// assocEnv maps associated-type names to resolved types. Direct items
// win; super-trait impls for the same Self fill in the rest.
func (e *Extractor) assocEnv(r *resolve.Resolver, im *hir.ImplItem) map[string]model.Type {
	assoc := make(map[string]model.Type)

	for _, at := range im.AssocTypes {
		if ty, ok := r.ResolveHirTy(at.Ty); ok {
			assoc[at.Name] = ty
		}
	}

	if im.TraitPath == "" {
		return assoc
	}
	trait := e.crate.LookupTrait(im.TraitPath)
	if trait == nil {
		return assoc
	}

	selfPath, hasPath := nominalSelfPath(im.SelfTy)
	if !hasPath {
		return assoc
	}
	for _, super := range trait.SuperTrait {
		for _, other := range e.crate.ImplsFor(selfPath) {
			if other.TraitPath != super {
				continue
			}
			for _, at := range other.AssocTypes {
				if _, exists := assoc[at.Name]; exists {
					continue
				}
				if ty, ok := r.ResolveHirTy(at.Ty); ok {
					assoc[at.Name] = ty
				}
			}
		}
	}
	return assoc
}

// extractAssocFn assembles a Method or StaticFunction depending on the
// presence of an implicit self receiver
func (e *Extractor) extractAssocFn(r *resolve.Resolver, fn *hir.FnItem, selfTy model.Type, traitPath string, implGenerics []model.Type) (model.Callable, bool) {
	fnGenerics, ok := r.ResolveGenerics(fn.Generics)
	if !ok {
		e.logf("extract: dropping assoc fn %s: unresolved where clause", fn.Path())
		return nil, false
	}
	generics := append(append([]model.Type{}, implGenerics...), fnGenerics...)
	r = r.WithGenerics(generics)

	params, ok := e.resolveParams(r, fn)
	if !ok {
		e.logf("extract: dropping assoc fn %s: unresolved param", fn.Path())
		return nil, false
	}
	ret, ok := r.FnRet(fn.Decl.Output)
	if !ok {
		e.logf("extract: dropping assoc fn %s: unresolved return", fn.Path())
		return nil, false
	}

	if fn.Decl.HasSelf {
		return &model.Method{
			Public:   fn.Vis.IsPublic(),
			Name:     fn.ItemName(),
			Generics: generics,
			Params:   params,
			Return:   ret,
			SelfTy:   selfTy,
			Trait:    traitPath,
			SrcPath:  fn.SrcPath(),
			FqName:   fn.Path(),
		}, true
	}
	return &model.StaticFunction{
		Public:   fn.Vis.IsPublic(),
		Name:     fn.ItemName(),
		Generics: generics,
		Params:   params,
		Return:   ret,
		SelfTy:   selfTy,
		Trait:    traitPath,
		SrcPath:  fn.SrcPath(),
		FqName:   fn.Path(),
	}, true
}

func nominalSelfPath(ty hir.Ty) (string, bool) {
	if p, ok := ty.(*hir.PathTy); ok {
		return p.DefPath, true
	}
	return "", false
}
