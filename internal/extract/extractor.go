// Package extract walks the item tree of the analyzed crate and builds
// the callable catalog: one record per free function, method,
// associated function, struct initializer, and enum variant
// constructor that is expressible in the model and safe. The extractor
// never aborts; items that fail to resolve are dropped silently so the
// downstream consumer always receives a well-typed catalog.
package extract

import (
	"github.com/rbrinfo/rbrinfo/internal/hir"
	"github.com/rbrinfo/rbrinfo/internal/model"
	"github.com/rbrinfo/rbrinfo/internal/resolve"
)

// Extractor enumerates the crate's items into callables
type Extractor struct {
	crate   *hir.Crate
	filters Filters
	logf    func(format string, args ...any)
}

// Option configures an extractor
type Option func(*Extractor)

// WithFilters overrides the default filter lists
func WithFilters(f Filters) Option {
	return func(e *Extractor) { e.filters = f }
}

// WithLogf installs a note sink for dropped items
func WithLogf(logf func(format string, args ...any)) Option {
	return func(e *Extractor) { e.logf = logf }
}

// New creates an extractor for the crate
func New(crate *hir.Crate, opts ...Option) *Extractor {
	e := &Extractor{
		crate:   crate,
		filters: DefaultFilters(),
		logf:    func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run visits every top-level item and returns the catalog
func (e *Extractor) Run() []model.Callable {
	var callables []model.Callable
	for _, item := range e.crate.Items {
		if SkipFile(item.SrcPath()) || e.filters.SkipPath(item.Path()) {
			continue
		}
		switch it := item.(type) {
		case *hir.FnItem:
			if c, ok := e.extractFn(it); ok {
				callables = append(callables, c)
			}
		case *hir.StructItem:
			if c, ok := e.extractStructInit(it); ok {
				callables = append(callables, c)
			}
		case *hir.EnumItem:
			callables = append(callables, e.extractEnumInits(it)...)
		case *hir.ImplItem:
			callables = append(callables, e.extractImpl(it)...)
		}
		// Trait definitions produce no callables; they contribute to
		// the bound universe only.
	}
	return callables
}

// extractFn builds a Function from a free function item
func (e *Extractor) extractFn(fn *hir.FnItem) (model.Callable, bool) {
	if fn.Unsafe || fn.Nested || e.filters.SkipFnName(fn.ItemName()) {
		return nil, false
	}

	r := resolve.New(e.crate)
	generics, ok := r.ResolveGenerics(fn.Generics)
	if !ok {
		e.logf("extract: dropping fn %s: unresolved where clause", fn.Path())
		return nil, false
	}
	r = r.WithGenerics(generics)

	params, ok := e.resolveParams(r, fn)
	if !ok {
		e.logf("extract: dropping fn %s: unresolved param", fn.Path())
		return nil, false
	}
	ret, ok := r.FnRet(fn.Decl.Output)
	if !ok {
		e.logf("extract: dropping fn %s: unresolved return", fn.Path())
		return nil, false
	}

	return &model.Function{
		Public:   fn.Vis.IsPublic(),
		Name:     fn.ItemName(),
		Generics: generics,
		Params:   params,
		Return:   ret,
		SrcPath:  fn.SrcPath(),
		FqName:   fn.Path(),
	}, true
}

// extractStructInit builds the structural constructor of a struct with
// named fields. Tuple structs are not emitted. Public visibility of
// the init is the logical-and of the struct's visibility and every
// field's visibility.
func (e *Extractor) extractStructInit(st *hir.StructItem) (model.Callable, bool) {
	if st.IsTuple {
		return nil, false
	}

	r := resolve.New(e.crate)
	generics, ok := r.ResolveGenerics(st.Generics)
	if !ok {
		return nil, false
	}
	r = r.WithGenerics(generics)

	public := st.Vis.IsPublic()
	params := make([]model.Param, 0, len(st.Fields))
	for _, field := range st.Fields {
		ty, ok := r.ResolveHirTy(field.Ty)
		if !ok {
			e.logf("extract: dropping struct init %s: field %s unresolved", st.Path(), field.Name)
			return nil, false
		}
		public = public && field.Vis.IsPublic()
		params = append(params, model.Param{Name: field.Name, Ty: ty})
	}

	return &model.StructInit{
		Public:  public,
		Params:  params,
		SelfTy:  &model.Struct{Name: st.Path(), Generics: generics, IsLocal: true},
		SrcPath: st.SrcPath(),
		FqName:  st.Path(),
	}, true
}

// extractEnumInits builds one EnumInit per variant. A variant whose
// fields fail to resolve is dropped; the remaining variants of the
// same enum are still emitted.
func (e *Extractor) extractEnumInits(en *hir.EnumItem) []model.Callable {
	r := resolve.New(e.crate)
	generics, ok := r.ResolveGenerics(en.Generics)
	if !ok {
		return nil
	}
	r = r.WithGenerics(generics)

	variantNames := make([]string, len(en.Variants))
	for i, v := range en.Variants {
		variantNames[i] = v.Name
	}
	selfTy := &model.Enum{Name: en.Path(), Generics: generics, Variants: variantNames, IsLocal: true}

	var inits []model.Callable
	for _, v := range en.Variants {
		variant, ok := e.extractVariant(r, v)
		if !ok {
			e.logf("extract: dropping enum variant %s::%s", en.Path(), v.Name)
			continue
		}
		inits = append(inits, &model.EnumInit{
			Public:  en.Vis.IsPublic(),
			SelfTy:  selfTy,
			Variant: variant,
			SrcPath: en.SrcPath(),
			FqName:  en.Path(),
		})
	}
	return inits
}

func (e *Extractor) extractVariant(r *resolve.Resolver, v hir.VariantDef) (model.Variant, bool) {
	switch v.Kind {
	case hir.VariantUnit:
		return model.Variant{Name: v.Name, Shape: model.ShapeUnit}, true
	case hir.VariantTuple:
		params := make([]model.Param, 0, len(v.Fields))
		for _, f := range v.Fields {
			ty, ok := r.ResolveHirTy(f.Ty)
			if !ok {
				return model.Variant{}, false
			}
			params = append(params, model.Param{Ty: ty})
		}
		return model.Variant{Name: v.Name, Shape: model.ShapeTuple, Params: params}, true
	case hir.VariantStruct:
		params := make([]model.Param, 0, len(v.Fields))
		for _, f := range v.Fields {
			ty, ok := r.ResolveHirTy(f.Ty)
			if !ok {
				return model.Variant{}, false
			}
			params = append(params, model.Param{Name: f.Name, Ty: ty})
		}
		return model.Variant{Name: v.Name, Shape: model.ShapeStruct, Params: params}, true
	}
	return model.Variant{}, false
}

// resolveParams lowers a function's declared inputs, skipping the
// implicit self receiver when present
func (e *Extractor) resolveParams(r *resolve.Resolver, fn *hir.FnItem) ([]model.Param, bool) {
	inputs := fn.Decl.Inputs
	names := fn.Decl.ArgNames
	if fn.Decl.HasSelf && len(inputs) > 0 {
		inputs = inputs[1:]
		if len(names) > 0 {
			names = names[1:]
		}
	}
	params := make([]model.Param, 0, len(inputs))
	for i, in := range inputs {
		ty, ok := r.ResolveHirTy(in)
		if !ok {
			return nil, false
		}
		name := ""
		if i < len(names) {
			name = names[i]
		}
		params = append(params, model.Param{Name: name, Ty: ty})
	}
	return params, true
}
