package object

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
)

// BCSWriter accumulates Binary Canonical Serialization bytes. BCS encodes
// integers little-endian, vectors as a ULEB128 length prefix followed by
// elements, and enums as a ULEB128 variant index followed by the
// variant's fields — the format every StoredObject, TypeTag, and dynamic
// field key in this engine is serialized with.
type BCSWriter struct {
	buf []byte
}

func NewBCSWriter() *BCSWriter { return &BCSWriter{} }

func (w *BCSWriter) Bytes() []byte { return w.buf }

func (w *BCSWriter) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *BCSWriter) WriteU8(v uint8) { w.buf = append(w.buf, v) }

func (w *BCSWriter) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *BCSWriter) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *BCSWriter) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU128 encodes v as 16 little-endian bytes, zero-extended.
func (w *BCSWriter) WriteU128(v *big.Int) {
	w.writeFixedLE(v, 16)
}

// WriteU256 encodes v as 32 little-endian bytes, zero-extended.
func (w *BCSWriter) WriteU256(v *big.Int) {
	w.writeFixedLE(v, 32)
}

func (w *BCSWriter) writeFixedLE(v *big.Int, width int) {
	be := v.Bytes()
	out := make([]byte, width)
	for i, j := 0, len(be)-1; j >= 0 && i < width; i, j = i+1, j-1 {
		out[i] = be[j]
	}
	w.buf = append(w.buf, out...)
}

func (w *BCSWriter) WriteAddress(a Address) {
	w.buf = append(w.buf, a[:]...)
}

// WriteULEB128 writes n as an unsigned LEB128 varint, BCS's length prefix
// format for vectors, strings, and maps.
func (w *BCSWriter) WriteULEB128(n uint64) {
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		w.buf = append(w.buf, b)
		if n == 0 {
			return
		}
	}
}

func (w *BCSWriter) WriteBytes(b []byte) {
	w.WriteULEB128(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *BCSWriter) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

// WriteVectorLen writes a vector length prefix; the caller then writes
// each of the n elements after it, in order.
func (w *BCSWriter) WriteVectorLen(n int) {
	w.WriteULEB128(uint64(n))
}

// WriteOptionNone / WriteOptionSome write the tag byte for Option<T>.
// The caller is responsible for writing T's bytes after WriteOptionSome.
func (w *BCSWriter) WriteOptionNone() { w.buf = append(w.buf, 0) }
func (w *BCSWriter) WriteOptionSome() { w.buf = append(w.buf, 1) }

// BCSReader decodes bytes written by BCSWriter.
type BCSReader struct {
	buf []byte
	pos int
}

func NewBCSReader(b []byte) *BCSReader { return &BCSReader{buf: b} }

var errEOF = errors.New("bcs: unexpected end of input")

func (r *BCSReader) Remaining() int { return len(r.buf) - r.pos }

func (r *BCSReader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, errEOF
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *BCSReader) ReadBool() (bool, error) {
	b, err := r.take(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("bcs: invalid bool byte 0x%02x", b[0])
	}
}

func (r *BCSReader) ReadU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *BCSReader) ReadU16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *BCSReader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *BCSReader) ReadU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *BCSReader) ReadU128() (*big.Int, error) { return r.readFixedLE(16) }
func (r *BCSReader) ReadU256() (*big.Int, error) { return r.readFixedLE(32) }

func (r *BCSReader) readFixedLE(width int) (*big.Int, error) {
	b, err := r.take(width)
	if err != nil {
		return nil, err
	}
	be := make([]byte, width)
	for i, j := 0, width-1; j >= 0; i, j = i+1, j-1 {
		be[i] = b[j]
	}
	return new(big.Int).SetBytes(be), nil
}

func (r *BCSReader) ReadAddress() (Address, error) {
	b, err := r.take(AddressLength)
	if err != nil {
		return Address{}, err
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

func (r *BCSReader) ReadULEB128() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.take(1)
		if err != nil {
			return 0, err
		}
		result |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, fmt.Errorf("bcs: uleb128 overflow")
		}
	}
}

func (r *BCSReader) ReadBytes() ([]byte, error) {
	n, err := r.ReadULEB128()
	if err != nil {
		return nil, err
	}
	return r.take(int(n))
}

func (r *BCSReader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *BCSReader) ReadOptionTag() (bool, error) {
	b, err := r.take(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("bcs: invalid option tag 0x%02x", b[0])
	}
}
