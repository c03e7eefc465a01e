package object

// OwnerKind discriminates the four ownership states an object can be in
// (§3).
type OwnerKind uint8

const (
	OwnerAddress OwnerKind = iota
	OwnerShared
	OwnerImmutable
	OwnerObject
)

// Owner is the ownership state of a StoredObject: an address-owned
// object, a shared object, an immutable (frozen) object, or an object
// owned by another object (a dynamic-field parent, or a wrapped value).
type Owner struct {
	Kind OwnerKind

	// Address is set when Kind == OwnerAddress.
	Address Address

	// Parent is set when Kind == OwnerObject.
	Parent Address
}

func AddressOwner(a Address) Owner { return Owner{Kind: OwnerAddress, Address: a} }
func SharedOwner() Owner           { return Owner{Kind: OwnerShared} }
func ImmutableOwner() Owner        { return Owner{Kind: OwnerImmutable} }
func ObjectOwner(parent Address) Owner {
	return Owner{Kind: OwnerObject, Parent: parent}
}

func (o Owner) Equal(other Owner) bool {
	if o.Kind != other.Kind {
		return false
	}
	switch o.Kind {
	case OwnerAddress:
		return o.Address == other.Address
	case OwnerObject:
		return o.Parent == other.Parent
	default:
		return true
	}
}

// EncodeBCS appends the canonical BCS encoding of this Owner, matching
// the platform's on-chain Owner enum variant order: AddressOwner(0),
// ObjectOwner(1), Shared(2), Immutable(3). initialSharedVersion is only
// meaningful (and only written) for the Shared variant — see §3's
// invariant that it is set exactly once, on first transition to Shared.
func (o Owner) EncodeBCS(w *BCSWriter, initialSharedVersion uint64) {
	switch o.Kind {
	case OwnerAddress:
		w.WriteULEB128(0)
		w.WriteAddress(o.Address)
	case OwnerObject:
		w.WriteULEB128(1)
		w.WriteAddress(o.Parent)
	case OwnerShared:
		w.WriteULEB128(2)
		w.WriteU64(initialSharedVersion)
	case OwnerImmutable:
		w.WriteULEB128(3)
	}
}
