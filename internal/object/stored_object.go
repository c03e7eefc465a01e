package object

// Version is a monotone per-object version counter (§3). The platform
// assigns every object touched by a transaction the same output version:
// the transaction's lamport timestamp (max(input versions) + 1).
type Version = uint64

// Digest is a 32-byte object digest (§4.2). DeletedDigest is the marker
// value a deleted object's digest equals.
type Digest [32]byte

// DeletedDigest is the reserved marker for deleted objects (§3, §4.2):
// 32 bytes of 0x63 ('c' for "cancelled/deleted").
var DeletedDigest = func() Digest {
	var d Digest
	for i := range d {
		d[i] = 99
	}
	return d
}()

// StoredObject is the full on-chain state of one object at one version
// (§3). digest is lazily cached and invalidated by any mutator that
// changes a digest-relevant field; use Digest() to read it rather than
// the zero-value field directly.
type StoredObject struct {
	ID                   Address
	Bytes                []byte
	Type                 TypeTag
	HasPublicTransfer    bool
	Owner                Owner
	Version              Version
	PreviousTransaction  *[32]byte
	InitialSharedVersion *uint64
	StorageRebate        uint64
	Deleted              bool

	digest      *Digest
	digestValid bool
}

// NewStoredObject constructs a live object at the given version with no
// cached digest.
func NewStoredObject(id Address, bytes []byte, t TypeTag, hasPublicTransfer bool, owner Owner, version Version) *StoredObject {
	return &StoredObject{
		ID:                id,
		Bytes:             bytes,
		Type:              t,
		HasPublicTransfer: hasPublicTransfer,
		Owner:             owner,
		Version:           version,
	}
}

func (o *StoredObject) invalidateDigest() {
	o.digestValid = false
	o.digest = nil
}

// UpdateBytes replaces the object's BCS contents and invalidates the
// cached digest.
func (o *StoredObject) UpdateBytes(b []byte) {
	o.Bytes = b
	o.invalidateDigest()
}

// IncrementVersion bumps the object's version, preserving the
// non-decreasing invariant from §3, and invalidates the cached digest.
func (o *StoredObject) IncrementVersion(to Version) error {
	if to < o.Version {
		return NewVersionRegressionError(o.ID, o.Version, to)
	}
	o.Version = to
	o.invalidateDigest()
	return nil
}

// Transfer changes the owner to an address owner and invalidates the
// cached digest.
func (o *StoredObject) Transfer(to Address) {
	o.Owner = AddressOwner(to)
	o.invalidateDigest()
}

// MarkShared transitions the object to Shared, setting
// InitialSharedVersion exactly once per §3's invariant (i). Calling this
// on an already-Immutable object is disallowed per §8's boundary
// behaviors.
func (o *StoredObject) MarkShared(atVersion Version) error {
	if o.Owner.Kind == OwnerImmutable {
		return ErrMarkSharedOnImmutable
	}
	o.Owner = SharedOwner()
	if o.InitialSharedVersion == nil {
		v := atVersion
		o.InitialSharedVersion = &v
	}
	o.invalidateDigest()
	return nil
}

// MarkImmutable freezes the object.
func (o *StoredObject) MarkImmutable() {
	o.Owner = ImmutableOwner()
	o.invalidateDigest()
}

// SetPreviousTransaction records the digest of the transaction that most
// recently mutated this object.
func (o *StoredObject) SetPreviousTransaction(tx [32]byte) {
	o.PreviousTransaction = &tx
	o.invalidateDigest()
}

// MarkDeleted logically deletes the object: Deleted becomes true and the
// digest becomes the DeletedDigest marker, per §3's invariant (iii). All
// other fields remain readable for audit.
func (o *StoredObject) MarkDeleted() {
	o.Deleted = true
	d := DeletedDigest
	o.digest = &d
	o.digestValid = true
}

// Digest returns the cached digest, recomputing via Compute (§4.2) if the
// cache is invalid. Deleted objects always return DeletedDigest.
func (o *StoredObject) Digest() Digest {
	if o.Deleted {
		return DeletedDigest
	}
	if o.digestValid && o.digest != nil {
		return *o.digest
	}
	d := Compute(o)
	o.digest = &d
	o.digestValid = true
	return d
}
