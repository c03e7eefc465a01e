package object

import "fmt"

// typeTagVariant is the BCS enum discriminant for each TypeTag kind, in
// the exact order the Move runtime serializes them. This ordering is
// load-bearing: S2's child-ID parity test depends on bcs(TypeTag::U64)
// producing variant index 2, not an engine-local numbering.
var typeTagVariant = map[Kind]uint64{
	KindBool:    0,
	KindU8:      1,
	KindU64:     2,
	KindU128:    3,
	KindAddress: 4,
	KindSigner:  5,
	KindVector:  6,
	KindStruct:  7,
	KindU16:     8,
	KindU32:     9,
	KindU256:    10,
}

var variantToKind = func() map[uint64]Kind {
	m := make(map[uint64]Kind, len(typeTagVariant))
	for k, v := range typeTagVariant {
		m[v] = k
	}
	return m
}()

// EncodeBCS appends the canonical BCS encoding of this TypeTag.
func (t TypeTag) EncodeBCS(w *BCSWriter) {
	w.WriteULEB128(typeTagVariant[t.Kind])
	switch t.Kind {
	case KindVector:
		t.Vector.EncodeBCS(w)
	case KindStruct:
		w.WriteAddress(t.Address)
		w.WriteString(t.Module)
		w.WriteString(t.Name)
		w.WriteVectorLen(len(t.TypeParams))
		for _, p := range t.TypeParams {
			p.EncodeBCS(w)
		}
	}
}

// BCS returns the standalone canonical BCS encoding of t, used directly
// by the dynamic-field child-ID hash (§3) and digest computation (§4.2).
func (t TypeTag) BCS() []byte {
	w := NewBCSWriter()
	t.EncodeBCS(w)
	return w.Bytes()
}

// DecodeTypeTag reads a TypeTag from r, the inverse of EncodeBCS.
func DecodeTypeTag(r *BCSReader) (TypeTag, error) {
	variant, err := r.ReadULEB128()
	if err != nil {
		return TypeTag{}, err
	}
	kind, ok := variantToKind[variant]
	if !ok {
		return TypeTag{}, fmt.Errorf("bcs: unknown TypeTag variant %d", variant)
	}
	switch kind {
	case KindVector:
		inner, err := DecodeTypeTag(r)
		if err != nil {
			return TypeTag{}, err
		}
		return VectorOf(inner), nil
	case KindStruct:
		addr, err := r.ReadAddress()
		if err != nil {
			return TypeTag{}, err
		}
		module, err := r.ReadString()
		if err != nil {
			return TypeTag{}, err
		}
		name, err := r.ReadString()
		if err != nil {
			return TypeTag{}, err
		}
		n, err := r.ReadULEB128()
		if err != nil {
			return TypeTag{}, err
		}
		params := make([]TypeTag, 0, n)
		for i := uint64(0); i < n; i++ {
			p, err := DecodeTypeTag(r)
			if err != nil {
				return TypeTag{}, err
			}
			params = append(params, p)
		}
		return TypeTag{Kind: KindStruct, Address: addr, Module: module, Name: name, TypeParams: params}, nil
	default:
		return TypeTag{Kind: kind}, nil
	}
}
