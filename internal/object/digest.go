package object

import "golang.org/x/crypto/blake2b"

// digestDomainSeparator is prepended to the BCS bytes of
// ObjectInnerForDigest before hashing, per §4.2: digest =
// Blake2b256("ObjectInner::" || BCS(ObjectInnerForDigest)).
const digestDomainSeparator = "ObjectInner::"

// Compute is the canonical object digest function (§4.2). Field order is
// load-bearing for bit-exact parity with on-chain digests: type_tag,
// has_public_transfer, version, contents, owner, previous_transaction
// (32 zero bytes if absent), storage_rebate.
func Compute(o *StoredObject) Digest {
	w := NewBCSWriter()
	o.Type.EncodeBCS(w)
	w.WriteBool(o.HasPublicTransfer)
	w.WriteU64(o.Version)
	w.WriteBytes(o.Bytes)

	var initialShared uint64
	if o.InitialSharedVersion != nil {
		initialShared = *o.InitialSharedVersion
	}
	o.Owner.EncodeBCS(w, initialShared)

	if o.PreviousTransaction != nil {
		w.buf = append(w.buf, o.PreviousTransaction[:]...)
	} else {
		var zero [32]byte
		w.buf = append(w.buf, zero[:]...)
	}
	w.WriteU64(o.StorageRebate)

	preimage := append([]byte(digestDomainSeparator), w.Bytes()...)
	sum := blake2b.Sum256(preimage)
	return Digest(sum)
}

// EstimateStorageRebate computes a rebate as size (bytes) * perUnitPrice
// * 0.99, per §4.2's optional storage-rebate formula. Truncation happens
// at the final integer conversion so the 1% haircut is applied against
// the full-precision product.
func EstimateStorageRebate(sizeBytes, perUnitPrice uint64) uint64 {
	product := sizeBytes * perUnitPrice
	return product * 99 / 100
}
