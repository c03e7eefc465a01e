package object

import "golang.org/x/crypto/blake2b"

// childIDScope is the domain-separation byte prefixed to every dynamic
// field child-ID hash (§3).
const childIDScope byte = 0xf0

// DeriveChildID computes the deterministic dynamic-field child ID for a
// (parent, key) pair: Blake2b256(0xf0 || parent || len(key_bcs) as
// LE-u64 || key_bcs || key_type_bcs). Two keys that hash to the same
// child ID under the same parent must be structurally equal after
// type-rewriting (§3's invariant) — callers are responsible for
// rewriting keyType to the address space the chain data was stored
// under before calling this (§4.9).
func DeriveChildID(parent Address, keyBCS []byte, keyType TypeTag) Address {
	w := NewBCSWriter()
	w.buf = append(w.buf, childIDScope)
	w.buf = append(w.buf, parent[:]...)
	w.WriteU64(uint64(len(keyBCS)))
	w.buf = append(w.buf, keyBCS...)
	w.buf = append(w.buf, keyType.BCS()...)

	sum := blake2b.Sum256(w.Bytes())
	var id Address
	copy(id[:], sum[:AddressLength])
	return id
}
