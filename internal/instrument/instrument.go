package instrument

import (
	"strings"

	"github.com/rbrinfo/rbrinfo/internal/extract"
	"github.com/rbrinfo/rbrinfo/internal/mir"
	"github.com/rbrinfo/rbrinfo/internal/valuedef"
)

// Options configures one instrumentation pass
type Options struct {
	RunID    uint64
	Filters  extract.Filters
	Distance bool // Enable the branch-distance precompute pass
	Logf     func(format string, args ...any)
}

// Result summarizes what the pass did to one body
type Result struct {
	Skipped      bool
	Branches     uint64
	Assertions   uint64
	ConstantPool []string
}

// visitor carries the per-body state of the rewrite
type visitor struct {
	body     *mir.Body
	probes   *ProbeSet
	tracker  *valuedef.Tracker
	runID    uint64
	globalID string
	logf     func(format string, args ...any)

	branches   uint64
	assertions uint64
	constPool  []string
	constSeen  map[string]bool
	aliasMap   map[mir.LocalID][2]mir.LocalID
}

// Body rewrites one body. The original is never mutated: a fresh copy
// is transformed and returned. Bodies matching the skip policies are
// returned unchanged with Skipped set.
func Body(probes *ProbeSet, body *mir.Body, opts Options) (*mir.Body, *Result) {
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	if skipBody(body, opts.Filters) {
		return body, &Result{Skipped: true}
	}

	work := body.Clone()
	v := &visitor{
		body:      work,
		probes:    probes,
		runID:     opts.RunID,
		globalID:  body.GlobalID,
		logf:      opts.Logf,
		constSeen: make(map[string]bool),
		aliasMap:  make(map[mir.LocalID][2]mir.LocalID),
	}

	v.collectConstants()

	if opts.Distance {
		for i := range work.Blocks {
			v.computeDistanceInPlace(&work.Blocks[i])
		}
	}

	// Definitions are looked up against the pre-rewrite block set.
	v.tracker = valuedef.NewTracker(work)

	origLen := len(work.Blocks)
	for i := 0; i < origLen; i++ {
		v.transformTerminator(mir.BlockID(i))
	}

	v.prependEntry()

	return work, &Result{
		Branches:     v.branches,
		Assertions:   v.assertions,
		ConstantPool: v.constPool,
	}
}

// skipBody applies the §skip policies: bodies outside the analyzed
// crate, vendored or monitor sources, and forbidden path substrings.
func skipBody(body *mir.Body, filters extract.Filters) bool {
	if !body.IsLocal {
		return true
	}
	if extract.SkipFile(body.SrcPath) {
		return true
	}
	path := strings.ReplaceAll(body.GlobalID, "__", "::")
	if filters.SkipPath(path) {
		return true
	}
	return strings.Contains(path, "::tests::") || strings.HasSuffix(path, "::test")
}

// transformTerminator instruments one original block's terminator
func (v *visitor) transformTerminator(id mir.BlockID) {
	block := &v.body.Blocks[id]
	switch term := block.Terminator.(type) {
	case *mir.SwitchInt:
		v.branches += uint64(len(term.Targets))
		v.instrumentSwitchInt(term)
	case *mir.Goto:
		v.branches++
		term.Target = v.hitBlock(term.Target)
	case *mir.Call:
		if term.Target >= 0 {
			if term.Cleanup >= 0 {
				v.branches += 2
			} else {
				v.branches++
			}
			term.Target = v.hitBlock(term.Target)
		}
	case *mir.Assert:
		v.assertions++
		if term.Cleanup >= 0 {
			v.branches += 2
		} else {
			v.branches++
		}
		// Only the success target is probed; the cleanup path stays
		// bare by design of the trace format.
		term.Target = v.hitBlock(term.Target)
	case *mir.Drop:
		v.branches++
		term.Target = v.hitBlock(term.Target)
	case *mir.FalseEdge:
		v.branches++
		term.Real = v.hitBlock(term.Real)
	case *mir.FalseUnwind:
		v.branches++
		term.Real = v.hitBlock(term.Real)
	case *mir.Yield:
		v.branches++
		term.Resume = v.hitBlock(term.Resume)
	}
}

// instrumentSwitchInt builds one tracing chain per switch target and
// rewires each target through its chain. A branch whose discriminant
// definition is unreachable is left intact.
func (v *visitor) instrumentSwitchInt(term *mir.SwitchInt) {
	discrPlace, ok := term.Discr.PlaceOf()
	if !ok {
		return
	}
	def, ok := v.tracker.DefOf(discrPlace)
	if !ok {
		v.logf("instrument: no value definition for a switch in %s, branch left bare", v.globalID)
		return
	}
	probe, err := v.probes.probeFor(def)
	if err != nil {
		return
	}

	// Every target of the switch, the otherwise target last with no
	// switch value.
	type switchTarget struct {
		value    uint64
		hasValue bool
		target   mir.BlockID
	}
	all := make([]switchTarget, 0, len(term.Targets))
	for i, val := range term.Values {
		all = append(all, switchTarget{value: val, hasValue: true, target: term.Targets[i]})
	}
	all = append(all, switchTarget{target: term.Otherwise()})

	branchIDs := make([]mir.BlockID, len(all))
	valueByID := make(map[mir.BlockID]uint64, len(all))
	for i, st := range all {
		branchIDs[i] = st.target
		valueByID[st.target] = st.value
	}

	heads := make([]mir.BlockID, len(all))
	for i, st := range all {
		heads[i] = v.mkTracingChain(def, probe, branchIDs, valueByID, st.target, !st.hasValue)
	}
	for i := range term.Targets {
		term.Targets[i] = heads[i]
	}
}

// prependEntry shifts every block reference up by one and inserts the
// entry probe block at index 0, continuing at the old entry
func (v *visitor) prependEntry() {
	for i := range v.body.Blocks {
		if t := v.body.Blocks[i].Terminator; t != nil {
			mir.MapSuccessors(t, func(b mir.BlockID) mir.BlockID { return b + 1 })
		}
	}
	entry := mir.Block{
		Terminator: v.mkProbeCall(v.probes.Entry, v.commonArgs(), 1),
	}
	v.body.Blocks = append([]mir.Block{entry}, v.body.Blocks...)
}

// collectConstants records the pretty form of every constant operand
// in the body, once each, for the emitted record's constant pool
func (v *visitor) collectConstants() {
	add := func(o mir.Operand) {
		if o.Kind != mir.OpConst || o.Const == nil {
			return
		}
		s := mir.ConstString(o.Const)
		if !v.constSeen[s] {
			v.constSeen[s] = true
			v.constPool = append(v.constPool, s)
		}
	}
	for i := range v.body.Blocks {
		block := &v.body.Blocks[i]
		for _, stmt := range block.Statements {
			if assign, ok := stmt.(*mir.Assign); ok {
				for _, o := range mir.RvalueOperands(assign.Rvalue) {
					add(o)
				}
			}
		}
		switch term := block.Terminator.(type) {
		case *mir.SwitchInt:
			add(term.Discr)
		case *mir.Call:
			for _, a := range term.Args {
				add(a)
			}
		case *mir.Assert:
			add(term.Cond)
		case *mir.Yield:
			add(term.Value)
		}
	}
}
