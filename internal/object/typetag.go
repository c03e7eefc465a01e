package object

import (
	"fmt"
	"strings"
)

// Kind discriminates the variants of a TypeTag, mirroring the Move type
// algebra described in §3: primitives, vectors, and structs.
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindU256
	KindAddress
	KindSigner
	KindVector
	KindStruct
)

// TypeTag is the algebraic type described in §3: primitives, Vector<T>,
// and Struct{address, module, name, type_params}. Structs are compared
// structurally, field by field, after rewriting (§4.1).
type TypeTag struct {
	Kind Kind

	// Vector is set when Kind == KindVector.
	Vector *TypeTag

	// Struct fields, set when Kind == KindStruct.
	Address    Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

func Bool() TypeTag    { return TypeTag{Kind: KindBool} }
func U8() TypeTag      { return TypeTag{Kind: KindU8} }
func U16() TypeTag     { return TypeTag{Kind: KindU16} }
func U32() TypeTag     { return TypeTag{Kind: KindU32} }
func U64() TypeTag     { return TypeTag{Kind: KindU64} }
func U128() TypeTag    { return TypeTag{Kind: KindU128} }
func U256() TypeTag    { return TypeTag{Kind: KindU256} }
func AddressT() TypeTag { return TypeTag{Kind: KindAddress} }
func Signer() TypeTag  { return TypeTag{Kind: KindSigner} }

func VectorOf(elem TypeTag) TypeTag {
	e := elem
	return TypeTag{Kind: KindVector, Vector: &e}
}

func Struct(addr Address, module, name string, typeParams ...TypeTag) TypeTag {
	return TypeTag{
		Kind:       KindStruct,
		Address:    addr,
		Module:     module,
		Name:       name,
		TypeParams: typeParams,
	}
}

// Equal compares two tags structurally. Struct addresses must match
// exactly — callers crossing the storage/original boundary must rewrite
// first (§4.1); Equal itself never rewrites.
func (t TypeTag) Equal(o TypeTag) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindVector:
		return t.Vector.Equal(*o.Vector)
	case KindStruct:
		if t.Address != o.Address || t.Module != o.Module || t.Name != o.Name {
			return false
		}
		if len(t.TypeParams) != len(o.TypeParams) {
			return false
		}
		for i := range t.TypeParams {
			if !t.TypeParams[i].Equal(o.TypeParams[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the canonical textual form, e.g. "u64",
// "vector<u8>", "0x...::module::Name<T>". Parse(String()) round-trips
// for every tag produced by this package (§8 round-trip laws).
func (t TypeTag) String() string {
	switch t.Kind {
	case KindBool:
		return "bool"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindU128:
		return "u128"
	case KindU256:
		return "u256"
	case KindAddress:
		return "address"
	case KindSigner:
		return "signer"
	case KindVector:
		return fmt.Sprintf("vector<%s>", t.Vector.String())
	case KindStruct:
		var b strings.Builder
		b.WriteString(t.Address.String())
		b.WriteString("::")
		b.WriteString(t.Module)
		b.WriteString("::")
		b.WriteString(t.Name)
		if len(t.TypeParams) > 0 {
			b.WriteString("<")
			for i, p := range t.TypeParams {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(p.String())
			}
			b.WriteString(">")
		}
		return b.String()
	default:
		return "<invalid>"
	}
}

// Primitives keyed by their canonical name, used by Parse.
var primitiveByName = map[string]Kind{
	"bool":    KindBool,
	"u8":      KindU8,
	"u16":     KindU16,
	"u32":     KindU32,
	"u64":     KindU64,
	"u128":    KindU128,
	"u256":    KindU256,
	"address": KindAddress,
	"signer":  KindSigner,
}

// Parse is the inverse of String. It supports the subset of Move type
// syntax this engine ever needs to round-trip: primitives, vector<T>,
// and address::module::Name<T, ...>.
func Parse(s string) (TypeTag, error) {
	s = strings.TrimSpace(s)
	if k, ok := primitiveByName[s]; ok {
		return TypeTag{Kind: k}, nil
	}
	if strings.HasPrefix(s, "vector<") && strings.HasSuffix(s, ">") {
		inner, err := Parse(s[len("vector<") : len(s)-1])
		if err != nil {
			return TypeTag{}, fmt.Errorf("parse %q: %w", s, err)
		}
		return VectorOf(inner), nil
	}
	return parseStruct(s)
}

func parseStruct(s string) (TypeTag, error) {
	typeParamsStart := strings.IndexByte(s, '<')
	body := s
	var paramsStr string
	if typeParamsStart >= 0 {
		if !strings.HasSuffix(s, ">") {
			return TypeTag{}, fmt.Errorf("parse struct %q: unbalanced type params", s)
		}
		body = s[:typeParamsStart]
		paramsStr = s[typeParamsStart+1 : len(s)-1]
	}
	parts := strings.SplitN(body, "::", 3)
	if len(parts) != 3 {
		return TypeTag{}, fmt.Errorf("parse struct %q: expected address::module::Name", s)
	}
	addr, err := ParseAddress(parts[0])
	if err != nil {
		return TypeTag{}, fmt.Errorf("parse struct %q: %w", s, err)
	}
	tag := TypeTag{Kind: KindStruct, Address: addr, Module: parts[1], Name: parts[2]}
	if paramsStr != "" {
		for _, p := range splitTypeParams(paramsStr) {
			pt, err := Parse(strings.TrimSpace(p))
			if err != nil {
				return TypeTag{}, fmt.Errorf("parse struct %q: %w", s, err)
			}
			tag.TypeParams = append(tag.TypeParams, pt)
		}
	}
	return tag, nil
}

// splitTypeParams splits a comma-separated type-parameter list while
// respecting nested angle brackets, e.g. "u64, vector<u8>".
func splitTypeParams(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// HasPublicTransfer derives whether values of this type carry the
// `store` + `key` abilities that grant public transferability. Our
// engine never re-derives abilities from module bytecode (that's a Move
// VM concern); callers must supply it from the chain-data transport's
// recorded object metadata. This helper returns false for every tag,
// struct tags included; it is only correct for the primitive/vector
// cases, which never have public transfer on their own.
func (t TypeTag) HasPublicTransfer() bool {
	return false
}
