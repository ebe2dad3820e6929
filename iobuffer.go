// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import (
	"encoding/binary"
	"fmt"
	"math"
)

// IoBuffer is a little-endian binary cursor over an in-memory byte
// buffer, used both to walk a parsed header/index region and to build a
// serialized archive with placeholder-then-patch offset bookkeeping
// (mirroring the teacher's writer.go, which seeks its io.WriteSeeker
// back to a recorded position to patch an index offset/size field after
// the fact; IoBuffer does the same thing in memory via PatchU32).
type IoBuffer struct {
	data []byte
	pos  int
}

// NewIoBufferReader wraps existing bytes for sequential reading.
func NewIoBufferReader(data []byte) *IoBuffer {
	return &IoBuffer{data: data}
}

// NewIoBufferWriter returns an empty IoBuffer that grows as bytes are
// written, with capacity pre-reserved.
func NewIoBufferWriter(capacityHint int) *IoBuffer {
	return &IoBuffer{data: make([]byte, 0, capacityHint)}
}

// Pos returns the current cursor position.
func (b *IoBuffer) Pos() int { return b.pos }

// Len returns the total number of bytes currently held.
func (b *IoBuffer) Len() int { return len(b.data) }

// Bytes returns the underlying buffer. The caller must not retain it
// across further writes, which may reallocate.
func (b *IoBuffer) Bytes() []byte { return b.data }

// Seek moves the cursor to an absolute position within bounds.
func (b *IoBuffer) Seek(pos int) error {
	if pos < 0 || pos > len(b.data) {
		return fmt.Errorf("%w: seek to %d (len %d)", ErrTruncatedIndex, pos, len(b.data))
	}

	b.pos = pos
	return nil
}

// SkipN advances the cursor by n bytes without reading them.
func (b *IoBuffer) SkipN(n int) error {
	return b.Seek(b.pos + n)
}

func (b *IoBuffer) need(n int) error {
	if b.pos+n > len(b.data) {
		return fmt.Errorf("%w: need %d bytes at %d, have %d", ErrTruncatedIndex, n, b.pos, len(b.data))
	}

	return nil
}

// ReadU8 reads one byte and advances the cursor.
func (b *IoBuffer) ReadU8() (byte, error) {
	if err := b.need(1); err != nil {
		return 0, err
	}

	v := b.data[b.pos]
	b.pos++
	return v, nil
}

// ReadU16 reads a little-endian uint16 and advances the cursor.
func (b *IoBuffer) ReadU16() (uint16, error) {
	if err := b.need(2); err != nil {
		return 0, err
	}

	v := binary.LittleEndian.Uint16(b.data[b.pos:])
	b.pos += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32 and advances the cursor.
func (b *IoBuffer) ReadU32() (uint32, error) {
	if err := b.need(4); err != nil {
		return 0, err
	}

	v := binary.LittleEndian.Uint32(b.data[b.pos:])
	b.pos += 4
	return v, nil
}

// ReadI32 reads a little-endian int32 and advances the cursor.
func (b *IoBuffer) ReadI32() (int32, error) {
	v, err := b.ReadU32()
	if err != nil {
		return 0, err
	}

	return int32(v), nil //nolint:gosec // bit-pattern reinterpret, not a range conversion
}

// ReadF32 reads a little-endian IEEE-754 float32 and advances the cursor.
func (b *IoBuffer) ReadF32() (float32, error) {
	v, err := b.ReadU32()
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(v), nil
}

// ReadString reads exactly n bytes and returns them as a string, with no
// NUL scanning — DBPF fixed-length strings aren't NUL-terminated.
func (b *IoBuffer) ReadString(n int) (string, error) {
	buf, err := b.ReadBytes(n)
	if err != nil {
		return "", err
	}

	return string(buf), nil
}

// ReadBytes reads n bytes into a freshly allocated, owned slice.
func (b *IoBuffer) ReadBytes(n int) ([]byte, error) {
	if err := b.need(n); err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, b.data[b.pos:b.pos+n])
	b.pos += n
	return out, nil
}

// WriteU8 appends one byte.
func (b *IoBuffer) WriteU8(v byte) {
	b.data = append(b.data, v)
	b.pos = len(b.data)
}

// WriteU16 appends a little-endian uint16.
func (b *IoBuffer) WriteU16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
	b.pos = len(b.data)
}

// WriteU32 appends a little-endian uint32.
func (b *IoBuffer) WriteU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
	b.pos = len(b.data)
}

// WriteI32 appends a little-endian int32.
func (b *IoBuffer) WriteI32(v int32) {
	b.WriteU32(uint32(v)) //nolint:gosec // bit-pattern reinterpret, not a range conversion
}

// WriteF32 appends a little-endian IEEE-754 float32.
func (b *IoBuffer) WriteF32(v float32) {
	b.WriteU32(math.Float32bits(v))
}

// WriteBytes appends raw bytes verbatim.
func (b *IoBuffer) WriteBytes(v []byte) {
	b.data = append(b.data, v...)
	b.pos = len(b.data)
}

// WriteZeros appends n zero bytes, used for header padding/placeholders.
func (b *IoBuffer) WriteZeros(n int) {
	b.data = append(b.data, make([]byte, n)...)
	b.pos = len(b.data)
}

// PatchU32 overwrites the little-endian uint32 at a previously recorded
// position without moving the write cursor. This is how the header's
// index-offset/index-size fields and each index entry's offset/size
// fields get filled in after the fact, once their true values are known.
func (b *IoBuffer) PatchU32(at int, v uint32) error {
	if at < 0 || at+4 > len(b.data) {
		return fmt.Errorf("%w: patch at %d (len %d)", ErrTruncatedIndex, at, len(b.data))
	}

	binary.LittleEndian.PutUint32(b.data[at:at+4], v)
	return nil
}
