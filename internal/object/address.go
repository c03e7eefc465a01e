// Package object models the on-chain object graph this engine replays
// against: addresses, type tags, owners, and the stored objects that
// back dynamic fields, coins, and every other Move value touched by a
// transaction.
package object

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the width of a canonical address in bytes.
const AddressLength = 32

// Address is a 32-byte account/object/package identifier. The zero value
// is the all-zero address; the Move framework packages live at 0x1, 0x2
// and 0x3 (see FrameworkAddresses).
type Address [AddressLength]byte

// FrameworkAddresses are skipped for dependency recursion by the package
// resolver (C4) — they are built into every node and never fetched.
var FrameworkAddresses = map[Address]bool{
	addrFromByte(1): true,
	addrFromByte(2): true,
	addrFromByte(3): true,
}

func addrFromByte(last byte) Address {
	var a Address
	a[AddressLength-1] = last
	return a
}

// ParseAddress normalizes a hex string (with or without "0x", any case,
// short or full width) into a canonical Address. Canonical form is
// lowercase hex, left-padded with zeros to 32 bytes.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return Address{}, fmt.Errorf("parse address %q: %w", s, err)
	}
	if len(b) > AddressLength {
		return Address{}, fmt.Errorf("parse address %q: %d bytes exceeds %d", s, len(b), AddressLength)
	}
	var a Address
	copy(a[AddressLength-len(b):], b)
	return a, nil
}

// String returns the canonical 66-character form: "0x" + 64 lower-hex
// digits, as required by §4.1.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// IsFramework reports whether a is one of the reserved Move framework
// addresses (0x1, 0x2, 0x3), which the package resolver never recurses
// into as a dependency.
func (a Address) IsFramework() bool {
	return FrameworkAddresses[a]
}

// Less provides the lexicographic tie-break used by the package resolver
// when two candidate storage addresses share an original_id (§4.4).
func (a Address) Less(b Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
