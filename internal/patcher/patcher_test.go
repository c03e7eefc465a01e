package patcher

import (
	"testing"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

func coinType(t *testing.T) object.TypeTag {
	addr, err := object.ParseAddress("0x2")
	if err != nil {
		t.Fatalf("parse address: %v", err)
	}
	return object.Struct(addr, "coin", "Coin")
}

func fixedLayout(fields map[string]FieldLayout) StructLayout {
	return func(object.TypeTag) ([]FieldLayout, bool) {
		out := make([]FieldLayout, 0, len(fields))
		for _, f := range fields {
			out = append(out, f)
		}
		return out, true
	}
}

func TestPatcherGatingNoChangeWhenAlreadyMatching(t *testing.T) {
	ty := coinType(t)
	layout := fixedLayout(map[string]FieldLayout{
		"value": {FieldName: "value", Offset: 0, Width: 8},
	})
	rule := Rule{Type: ty, Field: "value", Value: 8}
	p := New([]Rule{rule}, layout)

	bytes := make([]byte, 8)
	encodeLE(bytes, 8)

	out, err := p.Patch(ty, bytes)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	for i := range out {
		if out[i] != bytes[i] {
			t.Fatalf("expected bytes unchanged, got %v want %v", out, bytes)
		}
	}
	stats := p.Stats()[ruleKey(rule)]
	if stats.Applied != 0 || stats.SkippedSame != 1 {
		t.Fatalf("expected a gated skip, got %+v", stats)
	}
}

func TestPatcherRewritesMismatchedField(t *testing.T) {
	ty := coinType(t)
	layout := fixedLayout(map[string]FieldLayout{
		"value": {FieldName: "value", Offset: 0, Width: 8},
	})
	rule := Rule{Type: ty, Field: "value", Value: 8}
	p := New([]Rule{rule}, layout)

	bytes := make([]byte, 8)
	encodeLE(bytes, 3)

	out, err := p.Patch(ty, bytes)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if decodeLE(out) != 8 {
		t.Fatalf("expected patched value 8, got %d", decodeLE(out))
	}
	stats := p.Stats()[ruleKey(rule)]
	if stats.Applied != 1 {
		t.Fatalf("expected one applied rule, got %+v", stats)
	}
}

func TestPatcherSkipsTypeWithNoRule(t *testing.T) {
	ty := coinType(t)
	other, _ := object.ParseAddress("0x3")
	otherTy := object.Struct(other, "clock", "Clock")
	layout := fixedLayout(map[string]FieldLayout{"value": {FieldName: "value", Offset: 0, Width: 8}})
	rule := Rule{Type: ty, Field: "value", Value: 8}
	p := New([]Rule{rule}, layout)

	bytes := make([]byte, 8)
	out, err := p.Patch(otherTy, bytes)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	for i := range out {
		if out[i] != bytes[i] {
			t.Fatalf("expected untouched bytes for unopted type")
		}
	}
}

func TestPatcherUnavailableLayoutRecorded(t *testing.T) {
	ty := coinType(t)
	rule := Rule{Type: ty, Field: "value", Value: 8}
	p := New([]Rule{rule}, nil)

	bytes := make([]byte, 8)
	if _, err := p.Patch(ty, bytes); err != nil {
		t.Fatalf("patch: %v", err)
	}
	stats := p.Stats()[ruleKey(rule)]
	if stats.Unavailable != 1 {
		t.Fatalf("expected unavailable layout recorded, got %+v", stats)
	}
}
