package blockchain

import (
	"bytes"
	"encoding/binary"
)

// bcsWriter appends values in Binary Canonical Serialization: little-endian
// fixed-width integers, ULEB128 lengths and enum tags, and length-prefixed
// byte vectors.
type bcsWriter struct {
	buf bytes.Buffer
}

func (w *bcsWriter) u16(v uint16) {
	w.buf.Write(binary.LittleEndian.AppendUint16(nil, v))
}

func (w *bcsWriter) u64(v uint64) {
	w.buf.Write(binary.LittleEndian.AppendUint64(nil, v))
}

func (w *bcsWriter) uleb128(v uint64) {
	for v >= 0x80 {
		w.buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	w.buf.WriteByte(byte(v))
}

// tag writes an enum variant index.
func (w *bcsWriter) tag(v int) {
	w.uleb128(uint64(v))
}

func (w *bcsWriter) bytes(b []byte) {
	w.uleb128(uint64(len(b)))
	w.buf.Write(b)
}

func (w *bcsWriter) str(s string) {
	w.bytes([]byte(s))
}

func (w *bcsWriter) address(a Address) {
	w.buf.Write(a[:])
}

func (w *bcsWriter) objectRef(r ObjectRef) {
	w.address(r.ObjectID)
	w.u64(r.Version)
	w.bytes(r.Digest[:])
}

func (w *bcsWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// EncodePureString returns the BCS encoding of a Move String argument.
func EncodePureString(s string) []byte {
	var w bcsWriter
	w.str(s)
	return w.Bytes()
}

// EncodePureAddress returns the BCS encoding of a Move address argument.
func EncodePureAddress(a Address) []byte {
	var w bcsWriter
	w.address(a)
	return w.Bytes()
}
