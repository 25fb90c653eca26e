package extract

import (
	"path/filepath"
	"strings"
)

// Default filter lists. Downstream tooling depends on these; they can
// be extended through configuration but never narrowed.

// pathSubstringFilters excludes items whose fully-qualified path
// contains any of these substrings (vendored serialization
// derivations chiefly).
var pathSubstringFilters = []string{
	"serde",
}

// excludedImpls is the closed list of associative-container impls
// whose constructors are not directly exercisable.
var excludedImpls = []string{
	"std::slice::Iter",
	"std::collections::BTreeMap",
	"std::collections::BTreeSet",
	"alloc::collections::btree_map::BTreeMap",
	"alloc::collections::btree_set::BTreeSet",
}

// excludedFnNames excludes highly polymorphic accessors that would
// only produce spurious probes.
var excludedFnNames = []string{
	"get_disjoint_opt_mut",
	"get_disjoint_mut",
	"get_disjoint_indices_mut",
	"from",
}

// Filters decides which items the extractor and the instrumenter skip
type Filters struct {
	PathSubstrings []string
	ImplPaths      []string
	FnNames        []string
}

// DefaultFilters returns the hard-coded interface-contract filters
func DefaultFilters() Filters {
	return Filters{
		PathSubstrings: pathSubstringFilters,
		ImplPaths:      excludedImpls,
		FnNames:        excludedFnNames,
	}
}

// SkipPath reports whether an item path is excluded
func (f Filters) SkipPath(fqPath string) bool {
	for _, sub := range f.PathSubstrings {
		if strings.Contains(fqPath, sub) {
			return true
		}
	}
	return false
}

// SkipImpl reports whether a self-type path is in the closed impl list
func (f Filters) SkipImpl(selfPath string) bool {
	for _, p := range f.ImplPaths {
		if selfPath == p {
			return true
		}
	}
	return false
}

// SkipFnName reports whether a method name is excluded
func (f Filters) SkipFnName(name string) bool {
	for _, n := range f.FnNames {
		if name == n {
			return true
		}
	}
	return false
}

// SkipFile reports whether a source file is excluded from analysis:
// the monitor runtime itself and anything under a .cargo subpath.
func SkipFile(path string) bool {
	if strings.HasSuffix(path, "rusty_monitor.rs") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".cargo" {
			return true
		}
	}
	return false
}
