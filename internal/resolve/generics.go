package resolve

import (
	"github.com/rbrinfo/rbrinfo/internal/hir"
	"github.com/rbrinfo/rbrinfo/internal/model"
)

// ResolveGenerics collects every type parameter declared on an item,
// folding in the additional bounds found in where clauses. Where and
// inline bounds for the same parameter are merged by concatenation;
// duplicates are not deduplicated at this layer. The second result is
// false when a where-bounded type cannot be resolved, in which case
// the whole item is dropped.
func (r *Resolver) ResolveGenerics(generics hir.Generics) ([]model.Type, bool) {
	fromWhere := make(map[string]*model.Generic)

	for _, pred := range generics.Where {
		bounded, ok := r.ResolveHirTy(pred.BoundedTy)
		if !ok {
			return nil, false
		}
		gen, isGeneric := bounded.(*model.Generic)
		if !isGeneric {
			// Bounds on concrete types constrain nothing the catalog
			// reports; noted and skipped.
			continue
		}
		bounds := resolveBounds(pred.Bounds)
		entry := &model.Generic{Name: gen.Name, Bounds: bounds}
		if prev, ok := fromWhere[gen.Name]; ok {
			entry = prev.MergeBounds(entry)
		}
		fromWhere[gen.Name] = entry
	}

	out := make([]model.Type, 0, len(generics.Params))
	seen := make(map[string]bool, len(generics.Params))
	for _, param := range generics.Params {
		bounds := resolveBounds(param.Bounds)
		entry := &model.Generic{Name: param.Name, Bounds: bounds}
		if fromWhereEntry, ok := fromWhere[param.Name]; ok {
			entry = fromWhereEntry.MergeBounds(entry)
		}
		out = append(out, entry)
		seen[param.Name] = true
	}

	// Where-bounded parameters that never appear in the declared list
	// still belong to the environment.
	for _, pred := range generics.Where {
		bounded, ok := r.ResolveHirTy(pred.BoundedTy)
		if !ok {
			return nil, false
		}
		if gen, isGeneric := bounded.(*model.Generic); isGeneric && !seen[gen.Name] {
			out = append(out, fromWhere[gen.Name])
			seen[gen.Name] = true
		}
	}

	return out, true
}

// resolveBounds lowers trait bounds to trait references; lifetime
// bounds are ignored
func resolveBounds(bounds []hir.GenericBound) []model.Trait {
	var out []model.Trait
	for _, b := range bounds {
		if b.IsLifetime || b.TraitPath == "" {
			continue
		}
		out = append(out, model.Trait{Name: b.TraitPath})
	}
	return out
}
