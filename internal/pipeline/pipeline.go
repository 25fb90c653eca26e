// Package pipeline provides the unified analysis pipeline: catalog
// extraction over the item tree, then per-body instrumentation with
// record emission before and after. Extraction always runs to
// completion before any body is rewritten.
package pipeline

import (
	"github.com/rbrinfo/rbrinfo/internal/cfg"
	"github.com/rbrinfo/rbrinfo/internal/extract"
	"github.com/rbrinfo/rbrinfo/internal/hir"
	"github.com/rbrinfo/rbrinfo/internal/instrument"
	"github.com/rbrinfo/rbrinfo/internal/mir"
	"github.com/rbrinfo/rbrinfo/internal/record"
)

// Config contains pipeline configuration options
type Config struct {
	RunID    uint64
	Filters  extract.Filters
	Distance bool                             // Enable branch-distance precompute
	Logf     func(format string, args ...any) // Verbose note sink
}

// Result contains pipeline output for one crate
type Result struct {
	Catalog      *record.CatalogRecord
	Instrumented []*mir.Body
	SkippedCount int
}

// Run executes extraction and instrumentation for one crate. A missing
// probe or a failing record sink aborts; everything else degrades to
// dropped items per the failure policy.
func Run(crate *hir.Crate, bodies []*mir.Body, c Config) (*Result, error) {
	if c.Logf == nil {
		c.Logf = func(string, ...any) {}
	}

	extractor := extract.New(crate,
		extract.WithFilters(c.Filters),
		extract.WithLogf(c.Logf),
	)
	callables := extractor.Run()
	catalog := record.NewCatalogRecord(crate.Name, callables)
	if err := record.Emit(catalog); err != nil {
		return nil, err
	}
	c.Logf("pipeline: extracted %d callables from %s", len(callables), crate.Name)

	probes, err := instrument.FindProbes(crate)
	if err != nil {
		return nil, err
	}

	result := &Result{Catalog: catalog}
	opts := instrument.Options{
		RunID:    c.RunID,
		Filters:  c.Filters,
		Distance: c.Distance,
		Logf:     c.Logf,
	}
	for _, body := range bodies {
		if err := record.Emit(bodyRecord(body, record.FlavorPre, &instrument.Result{})); err != nil {
			return nil, err
		}
		rewritten, res := instrument.Body(probes, body, opts)
		if res.Skipped {
			result.SkippedCount++
			result.Instrumented = append(result.Instrumented, body)
			continue
		}
		if err := record.Emit(bodyRecord(rewritten, record.FlavorPost, res)); err != nil {
			return nil, err
		}
		result.Instrumented = append(result.Instrumented, rewritten)
	}
	return result, nil
}

// bodyRecord assembles the analytic record of a body: block listing,
// locals, the three graphs, and the pass counters
func bodyRecord(body *mir.Body, flavor record.Flavor, res *instrument.Result) *record.BodyRecord {
	full := cfg.Build(body)
	truncated := cfg.BuildTruncated(body)
	cdg := cfg.BuildCDG(truncated)

	return &record.BodyRecord{
		Schema:       record.BodyV1,
		GlobalID:     body.GlobalID,
		Flavor:       flavor,
		BasicBlocks:  body.BlockStrings(),
		CFG:          full.Dot("cfg"),
		TruncatedCFG: truncated.Dot("truncated_cfg"),
		CDG:          cdg.Dot("cdg"),
		CDGDot:       cdg.Dot("cdg"),
		Branches:     res.Branches,
		ConstantPool: res.ConstantPool,
		Assertions:   res.Assertions,
		Locals:       body.LocalStrings(),
	}
}
