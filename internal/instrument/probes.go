// Package instrument rewrites function bodies so that every branch,
// call, and assertion edge reports to the runtime monitor: tracing
// chains per conditional branch, hit probes on unconditional edges,
// and an entry probe prepended to every body. Control flow, unwinding
// edges, and drop targets are preserved exactly.
package instrument

import (
	"fmt"

	"github.com/rbrinfo/rbrinfo/internal/hir"
	"github.com/rbrinfo/rbrinfo/internal/mir"
	"github.com/rbrinfo/rbrinfo/internal/rerr"
	"github.com/rbrinfo/rbrinfo/internal/valuedef"
)

// Probe name substrings. Monitor functions are discovered by searching
// the compilation for items whose short name contains these.
const (
	probeEntry         = "trace_entry"
	probeBranchHit     = "trace_branch_hit"
	probeBranchBool    = "trace_branch_bool"
	probeZeroOrOne     = "trace_zero_or_one"
	probeSwitchVarInt  = "trace_switch_value_with_var_int"
	probeSwitchVarBool = "trace_switch_value_with_var_bool"
	probeSwitchVarChar = "trace_switch_value_with_var_char"
	probeConst         = "trace_const"
)

// binaryOpEnumName locates the monitor's operator enum, passed to the
// bool probe as a discriminant value
const binaryOpEnumName = "BinaryOp"

// ProbeSet holds the fully-qualified paths of every monitor probe, resolved once
// per compilation
type ProbeSet struct {
	Entry         string
	BranchHit     string
	BranchBool    string
	ZeroOrOne     string
	SwitchVarInt  string
	SwitchVarBool string
	SwitchVarChar string
	Const         string
	OpEnumPath    string
}

// FindProbes searches the crate for the monitor probes. A missing
// probe aborts instrumentation fatally.
func FindProbes(crate *hir.Crate) (*ProbeSet, error) {
	lookup := func(sub string) (string, error) {
		fns := crate.FindFnsByNameSubstring(sub)
		if len(fns) == 0 {
			return "", rerr.Newf(rerr.INS001, "monitor probe %q not found in crate graph", sub)
		}
		return fns[0].Path(), nil
	}

	ps := &ProbeSet{}
	var err error
	if ps.Entry, err = lookup(probeEntry); err != nil {
		return nil, err
	}
	if ps.BranchHit, err = lookup(probeBranchHit); err != nil {
		return nil, err
	}
	if ps.BranchBool, err = lookup(probeBranchBool); err != nil {
		return nil, err
	}
	if ps.ZeroOrOne, err = lookup(probeZeroOrOne); err != nil {
		return nil, err
	}
	if ps.SwitchVarInt, err = lookup(probeSwitchVarInt); err != nil {
		return nil, err
	}
	if ps.SwitchVarBool, err = lookup(probeSwitchVarBool); err != nil {
		return nil, err
	}
	if ps.SwitchVarChar, err = lookup(probeSwitchVarChar); err != nil {
		return nil, err
	}
	if ps.Const, err = lookup(probeConst); err != nil {
		return nil, err
	}
	ps.OpEnumPath = findOpEnum(crate)
	return ps, nil
}

// findOpEnum locates the monitor's BinaryOp enum by short name
func findOpEnum(crate *hir.Crate) string {
	for _, item := range crate.Items {
		if en, ok := item.(*hir.EnumItem); ok && en.ItemName() == binaryOpEnumName {
			return en.Path()
		}
	}
	return ""
}

// probeFor chooses the probe for a value definition, per the operand
// kind that will be marshalled
func (ps *ProbeSet) probeFor(def valuedef.ValueDef) (string, error) {
	switch d := def.(type) {
	case *valuedef.BinaryOp:
		return ps.BranchBool, nil
	case *valuedef.Discriminant, *valuedef.Field, *valuedef.Call, *valuedef.Index:
		return ps.ZeroOrOne, nil
	case *valuedef.UnaryOp:
		return ps.probeFor(d.Inner)
	case *valuedef.Const:
		return ps.Const, nil
	case *valuedef.Var:
		if prim, ok := d.Ty.(*mir.PrimTy); ok {
			switch {
			case prim.IsBool():
				return ps.SwitchVarBool, nil
			case prim.IsChar():
				return ps.SwitchVarChar, nil
			case prim.IsInt():
				return ps.SwitchVarInt, nil
			}
		}
		// Non-numeric operand against a switch value.
		return ps.ZeroOrOne, nil
	}
	return "", fmt.Errorf("no probe for value definition %T", def)
}
