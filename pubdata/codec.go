// Package pubdata implements the rollup public-data wire format: fixed-width
// big-endian scalar encoding and the fixed-chunk operation stream committed
// with every rollup block.
//
// The stream is a flat concatenation of operation records. Each record
// occupies a fixed number of 8-byte chunks determined solely by its opcode
// (the first byte); records are zero-padded on the right to the chunk
// boundary and never length-prefixed.
package pubdata

import (
	"encoding/binary"
	"errors"

	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/types"
)

// ChunkBytes is the base chunk size. Every operation's wire length is a
// multiple of it.
const ChunkBytes = 8

// AmountBytes is the wire width of an unpacked token amount (u128).
const AmountBytes = 16

// Codec errors.
var (
	ErrShortBuffer    = errors.New("pubdata: read past end of buffer")
	ErrBadLength      = errors.New("pubdata: length is not a whole number of chunks")
	ErrUnknownOpcode  = errors.New("pubdata: unsupported opcode")
	ErrNonZeroPadding = errors.New("pubdata: non-zero bytes in chunk padding")
)

// Reader decodes fixed-width big-endian scalars from a flat byte buffer.
// All reads are bounds-checked; a failed read leaves the cursor unchanged.
type Reader struct {
	buf []byte
	off int
}

// NewReader creates a Reader positioned at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the current cursor position.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

// take advances the cursor over n bytes and returns them.
func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, ErrShortBuffer
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// U8 reads a single byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a big-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// U24 reads a big-endian 3-byte unsigned integer. Account ids use this
// width on the wire.
func (r *Reader) U24() (uint32, error) {
	b, err := r.take(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// U32 reads a big-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// U64 reads a big-endian uint64.
func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// Amount reads a 16-byte big-endian unpacked amount.
func (r *Reader) Amount() (*uint256.Int, error) {
	b, err := r.take(AmountBytes)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(b), nil
}

// Address reads a 20-byte address.
func (r *Reader) Address() (types.Address, error) {
	b, err := r.take(types.AddressLength)
	if err != nil {
		return types.Address{}, err
	}
	return types.BytesToAddress(b), nil
}

// Hash reads a 32-byte hash.
func (r *Reader) Hash() (types.Hash, error) {
	b, err := r.take(types.HashLength)
	if err != nil {
		return types.Hash{}, err
	}
	return types.BytesToHash(b), nil
}

// PubKeyHash reads a 20-byte packed pubkey hash.
func (r *Reader) PubKeyHash() (types.PubKeyHash, error) {
	b, err := r.take(types.PubKeyHashLength)
	if err != nil {
		return types.PubKeyHash{}, err
	}
	return types.BytesToPubKeyHash(b), nil
}

// Writer encodes fixed-width big-endian scalars into a growable buffer.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// U8 appends a single byte.
func (w *Writer) U8(v uint8) { w.buf = append(w.buf, v) }

// U16 appends a big-endian uint16.
func (w *Writer) U16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// U24 appends the low 3 bytes of v big-endian. Values above 2^24-1 are
// truncated to their low 24 bits.
func (w *Writer) U24(v uint32) {
	w.buf = append(w.buf, byte(v>>16), byte(v>>8), byte(v))
}

// U32 appends a big-endian uint32.
func (w *Writer) U32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

// U64 appends a big-endian uint64.
func (w *Writer) U64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

// Amount appends a 16-byte big-endian unpacked amount. Amounts wider than
// 128 bits are truncated to their low 128 bits; callers validate range.
func (w *Writer) Amount(v *uint256.Int) {
	full := v.Bytes32()
	w.buf = append(w.buf, full[32-AmountBytes:]...)
}

// Address appends a 20-byte address.
func (w *Writer) Address(a types.Address) {
	w.buf = append(w.buf, a.Bytes()...)
}

// Hash appends a 32-byte hash.
func (w *Writer) Hash(h types.Hash) {
	w.buf = append(w.buf, h.Bytes()...)
}

// PubKeyHash appends a 20-byte packed pubkey hash.
func (w *Writer) PubKeyHash(p types.PubKeyHash) {
	w.buf = append(w.buf, p.Bytes()...)
}

// PadToChunks zero-pads the buffer so its length equals chunks*ChunkBytes.
// It panics if the buffer is already longer than that; op encoders size
// their records statically.
func (w *Writer) PadToChunks(chunks int) {
	want := chunks * ChunkBytes
	if len(w.buf) > want {
		panic("pubdata: record exceeds its chunk budget")
	}
	for len(w.buf) < want {
		w.buf = append(w.buf, 0)
	}
}
