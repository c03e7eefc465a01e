package objectruntime

import "github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"

// IDFetcher is the first on-demand hydration step of §4.8: look a child
// up directly by (parent, child) id. ok is false when the transport has
// no record of the child at all (not the same as a type mismatch, which
// the runtime itself detects once bytes are in hand).
type IDFetcher func(parent, child object.Address) (t object.TypeTag, bytes []byte, ok bool, err error)

// KeyFetcher is the second hydration step, consulted only when the
// ID-based fetcher misses: look the child up by the (parent, key_type,
// key_bytes) trio previously recorded along the hash-computation path
// (§4.9), tolerating the case where a package upgrade changed the
// address embedded in the key type and so shifted the computed child
// ID.
type KeyFetcher func(parent, child object.Address, keyType object.TypeTag, keyBytes []byte) (t object.TypeTag, bytes []byte, ok bool, err error)

// keyRecord is what RecordChildKey stores for a computed child ID, so a
// later hydration miss on the ID-based fetcher can fall back to the
// key-based one.
type keyRecord struct {
	keyType  object.TypeTag
	keyBytes []byte
}
