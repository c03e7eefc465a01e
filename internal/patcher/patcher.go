// Package patcher implements C5: rewriting version-counter and timestamp
// fields embedded in a historical object's serialized bytes so that
// loaded bytecode's hard-coded expectations are satisfied.
package patcher

import (
	"fmt"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

// FieldLayout locates one struct field within a serialized object by
// name and byte offset, as reported by a loaded module's struct layout.
// There is no fixed-offset fallback: when no layout is available for a
// type, the rule is counted as Unavailable and the bytes are left as
// they are.
type FieldLayout struct {
	FieldName string
	Offset    int
	Width     int // bytes occupied by the field's BCS encoding
}

// StructLayout maps field names to their layout within one struct's BCS
// encoding, as recovered from a loaded module (supplied by the VM
// contract; narrow capability, per §9).
type StructLayout func(t object.TypeTag) ([]FieldLayout, bool)

// Rule is one patching instruction: within objects of Type, replace the
// field named Field with Value (a little-endian u64, the only width the
// spec's "version counters or timestamp fields" case requires).
type Rule struct {
	Type  object.TypeTag
	Field string
	Value uint64
}

// RuleStats records how many times a rule fired, was skipped because the
// embedded value already matched, or could not be applied because no
// layout was available for its field.
type RuleStats struct {
	Applied     int
	SkippedSame int
	Unavailable int
}

// Patcher applies a table of Rules to serialized objects. Patching is
// opt-in per type: a type with no matching Rule is left untouched
// (§4.5 policy).
type Patcher struct {
	rules   []Rule
	layouts StructLayout
	stats   map[string]*RuleStats
}

func New(rules []Rule, layouts StructLayout) *Patcher {
	stats := make(map[string]*RuleStats, len(rules))
	for _, r := range rules {
		stats[ruleKey(r)] = &RuleStats{}
	}
	return &Patcher{rules: rules, layouts: layouts, stats: stats}
}

func ruleKey(r Rule) string {
	return fmt.Sprintf("%s.%s", r.Type.String(), r.Field)
}

// Stats returns a snapshot of per-rule counters.
func (p *Patcher) Stats() map[string]RuleStats {
	out := make(map[string]RuleStats, len(p.stats))
	for k, v := range p.stats {
		out[k] = *v
	}
	return out
}

// Patch rewrites bytes in place for every rule whose Type matches t,
// returning the (possibly unmodified) result. Rules are applied in the
// order given; a rule is skipped (SkippedSame) when the field's current
// value already equals the rule's value.
func (p *Patcher) Patch(t object.TypeTag, bytes []byte) ([]byte, error) {
	out := append([]byte(nil), bytes...)
	for _, r := range p.rules {
		if !r.Type.Equal(t) {
			continue
		}
		st := p.stats[ruleKey(r)]
		layout, ok := p.fieldLayout(t, r.Field)
		if !ok {
			st.Unavailable++
			continue
		}
		if layout.Offset+layout.Width > len(out) {
			return nil, fmt.Errorf("patcher: field %s of %s exceeds object bytes (offset %d width %d len %d)", r.Field, t, layout.Offset, layout.Width, len(out))
		}
		current := decodeLE(out[layout.Offset : layout.Offset+layout.Width])
		if current == r.Value {
			st.SkippedSame++
			continue
		}
		encodeLE(out[layout.Offset:layout.Offset+layout.Width], r.Value)
		st.Applied++
	}
	return out, nil
}

func (p *Patcher) fieldLayout(t object.TypeTag, field string) (FieldLayout, bool) {
	if p.layouts == nil {
		return FieldLayout{}, false
	}
	fields, ok := p.layouts(t)
	if !ok {
		return FieldLayout{}, false
	}
	for _, f := range fields {
		if f.FieldName == field {
			return f, true
		}
	}
	return FieldLayout{}, false
}

func decodeLE(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func encodeLE(dst []byte, v uint64) {
	for i := range dst {
		dst[i] = byte(v)
		v >>= 8
	}
}
