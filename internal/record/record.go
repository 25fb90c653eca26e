package record

import (
	"encoding/json"
	"fmt"

	"github.com/rbrinfo/rbrinfo/internal/model"
)

// CatalogRecord is emitted once per crate after extraction
type CatalogRecord struct {
	Schema    string           `json:"schema"`
	Name      string           `json:"name"`
	Callables []model.Callable `json:"-"`
	Impls     map[string]any   `json:"impls,omitempty"`
}

// catalogWire is the serialized shape of a catalog record
type catalogWire struct {
	Schema    string            `json:"schema"`
	Name      string            `json:"name"`
	Callables []json.RawMessage `json:"callables"`
	Impls     map[string]any    `json:"impls,omitempty"`
}

// NewCatalogRecord builds a catalog record for a crate
func NewCatalogRecord(crateName string, callables []model.Callable) *CatalogRecord {
	return &CatalogRecord{
		Schema:    CatalogV1,
		Name:      crateName,
		Callables: callables,
	}
}

// MarshalJSON serializes the record with each callable in its tagged
// wire form
func (r *CatalogRecord) MarshalJSON() ([]byte, error) {
	wire := catalogWire{
		Schema:    r.Schema,
		Name:      r.Name,
		Callables: make([]json.RawMessage, 0, len(r.Callables)),
		Impls:     r.Impls,
	}
	for _, c := range r.Callables {
		data, err := model.MarshalCallable(c)
		if err != nil {
			return nil, fmt.Errorf("marshal callable %s: %w", c.GlobalID(), err)
		}
		wire.Callables = append(wire.Callables, data)
	}
	return json.Marshal(wire)
}

// UnmarshalJSON reconstructs the record, including every tagged
// callable variant
func (r *CatalogRecord) UnmarshalJSON(data []byte) error {
	var wire catalogWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.Schema = wire.Schema
	r.Name = wire.Name
	r.Impls = wire.Impls
	r.Callables = nil
	for _, raw := range wire.Callables {
		c, err := model.UnmarshalCallable(raw)
		if err != nil {
			return err
		}
		r.Callables = append(r.Callables, c)
	}
	return nil
}

// Key implements Record
func (r *CatalogRecord) Key() string { return "catalog/" + r.Name }

// Flavor marks a body record as pre- or post-instrumentation
type Flavor string

// Body record flavors
const (
	FlavorPre  Flavor = "pre"
	FlavorPost Flavor = "post"
)

// BodyRecord is emitted twice per body, once before and once after
// instrumentation. Strings are pretty-prints; graph fields are in
// dot-compatible textual form.
type BodyRecord struct {
	Schema       string   `json:"schema"`
	GlobalID     string   `json:"global_id"`
	Flavor       Flavor   `json:"flavor"`
	BasicBlocks  []string `json:"basic_blocks"`
	CFG          string   `json:"cfg"`
	TruncatedCFG string   `json:"truncated_cfg"`
	CDG          string   `json:"cdg"`
	CDGDot       string   `json:"cdg_dot"`
	Branches     uint64   `json:"branches"`
	ConstantPool []string `json:"constant_pool"`
	Assertions   uint64   `json:"assertions"`
	Locals       []string `json:"locals"`
}

// Key implements Record
func (r *BodyRecord) Key() string {
	return fmt.Sprintf("body/%s.%s", r.GlobalID, r.Flavor)
}
