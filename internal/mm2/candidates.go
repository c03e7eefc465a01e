package mm2

import "github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"

// minDistinctBytes is the distinct-byte-value floor a 32-byte window
// must clear to be considered plausibly a real address rather than
// padding or a small repeating pattern (§4.7 validity filters).
const minDistinctBytes = 8

// ScanParentCandidates extracts every 32-byte sequence within an
// object's raw BCS bytes that passes §4.7's validity filters: not all
// zeros, not a framework address, no fewer than minDistinctBytes
// distinct byte values, and not dominated by leading/trailing zero runs
// (a common false-positive pattern for small-int fields padded to 32
// bytes). Scanning starts past the object's own UID (the first 32
// bytes) and tries 32-byte-aligned offsets first, then 8-byte-aligned
// offsets, matching §4.7's scan order.
func ScanParentCandidates(bcs []byte) []object.Address {
	if len(bcs) <= object.AddressLength {
		return nil
	}
	body := bcs[object.AddressLength:]

	seen := map[object.Address]bool{}
	var out []object.Address

	add := func(window []byte) {
		if len(window) != object.AddressLength {
			return
		}
		var a object.Address
		copy(a[:], window)
		if seen[a] || !isPlausibleAddress(a) {
			return
		}
		seen[a] = true
		out = append(out, a)
	}

	for off := 0; off+object.AddressLength <= len(body); off += object.AddressLength {
		add(body[off : off+object.AddressLength])
	}
	for off := 0; off+object.AddressLength <= len(body); off += 8 {
		add(body[off : off+object.AddressLength])
	}
	return out
}

func isPlausibleAddress(a object.Address) bool {
	if a.IsZero() || a.IsFramework() {
		return false
	}

	distinct := map[byte]bool{}
	for _, b := range a {
		distinct[b] = true
	}
	if len(distinct) < minDistinctBytes {
		return false
	}

	leadingZeros := 0
	for leadingZeros < len(a) && a[leadingZeros] == 0 {
		leadingZeros++
	}
	trailingZeros := 0
	for trailingZeros < len(a) && a[len(a)-1-trailingZeros] == 0 {
		trailingZeros++
	}
	// A window more than three-quarters zero padding is almost always a
	// small integer or short identifier, not a real embedded address.
	if leadingZeros+trailingZeros > (object.AddressLength*3)/4 {
		return false
	}
	return true
}
