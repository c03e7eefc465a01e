package replay

import (
	"encoding/binary"
	"fmt"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

// coinBytesLen is the BCS size of a Coin<T>: a UID (32-byte address) plus
// a Balance<T> (a bare u64). The generic T never affects the encoding, so
// every coin-shaped object this package touches shares one fixed layout.
const coinBytesLen = 32 + 8

// decodeCoinBalance reads the little-endian u64 balance trailing a coin
// object's bytes.
func decodeCoinBalance(bytes []byte) (uint64, error) {
	if len(bytes) < coinBytesLen {
		return 0, fmt.Errorf("replay: coin bytes too short: got %d want >= %d", len(bytes), coinBytesLen)
	}
	return binary.LittleEndian.Uint64(bytes[32:40]), nil
}

// withCoinBalance returns a copy of bytes with its trailing balance field
// rewritten to balance, preserving the leading UID.
func withCoinBalance(bytes []byte, balance uint64) ([]byte, error) {
	if len(bytes) < coinBytesLen {
		return nil, fmt.Errorf("replay: coin bytes too short: got %d want >= %d", len(bytes), coinBytesLen)
	}
	out := append([]byte(nil), bytes...)
	binary.LittleEndian.PutUint64(out[32:40], balance)
	return out, nil
}

// newCoinBytes builds a fresh coin's bytes from its 32-byte UID and
// starting balance.
func newCoinBytes(uid [32]byte, balance uint64) []byte {
	out := make([]byte, coinBytesLen)
	copy(out[:32], uid[:])
	binary.LittleEndian.PutUint64(out[32:40], balance)
	return out
}

// NewCoinObject builds a Coin<T>-shaped StoredObject at id/version with
// the given starting balance, for callers (fixture loaders, tests
// outside this package) that need a coin without constructing its BCS
// layout by hand.
func NewCoinObject(id object.Address, coinType object.TypeTag, owner object.Owner, version object.Version, balance uint64) *object.StoredObject {
	var uid [32]byte
	copy(uid[:], id[:])
	return object.NewStoredObject(id, newCoinBytes(uid, balance), coinType, true, owner, version)
}
