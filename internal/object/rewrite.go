package object

// AliasMap maps addresses from one address space to another. Package
// resolution produces two uses of the same underlying table read in
// opposite directions (§4.1): storage->original (comparing bytecode
// output types against stored-state types) and original->storage
// (computing dynamic-field child IDs for post-upgrade children).
type AliasMap map[Address]Address

// Reversed returns a new AliasMap with every (k, v) pair flipped,
// letting a resolver build one table (storage->original, the natural
// direction package resolution discovers aliases in) and derive the
// other on demand.
func (m AliasMap) Reversed() AliasMap {
	out := make(AliasMap, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// Rewrite returns a copy of t with every struct address substituted
// through aliases, recursing into Vector element types and struct type
// parameters (§4.1). Addresses with no entry in aliases are left
// unchanged.
func Rewrite(t TypeTag, aliases AliasMap) TypeTag {
	switch t.Kind {
	case KindVector:
		inner := Rewrite(*t.Vector, aliases)
		return VectorOf(inner)
	case KindStruct:
		addr := t.Address
		if to, ok := aliases[addr]; ok {
			addr = to
		}
		params := make([]TypeTag, len(t.TypeParams))
		for i, p := range t.TypeParams {
			params[i] = Rewrite(p, aliases)
		}
		return TypeTag{Kind: KindStruct, Address: addr, Module: t.Module, Name: t.Name, TypeParams: params}
	default:
		return t
	}
}

// RewriteAddress substitutes a single address through aliases, used at
// boundaries where only a bare address (not a full type) crosses between
// bytecode and stored state.
func RewriteAddress(a Address, aliases AliasMap) Address {
	if to, ok := aliases[a]; ok {
		return to
	}
	return a
}
