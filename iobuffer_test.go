// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import (
	"errors"
	"testing"
)

func TestIoBufferReadPrimitives(t *testing.T) {
	// u8=0x7F, u16=0x1234 (LE), u32=0xAABBCCDD (LE), "AB" string.
	data := []byte{0x7F, 0x34, 0x12, 0xDD, 0xCC, 0xBB, 0xAA, 'A', 'B'}
	buf := NewIoBufferReader(data)

	u8, err := buf.ReadU8()
	if err != nil || u8 != 0x7F {
		t.Fatalf("ReadU8: got (%v, %v)", u8, err)
	}

	u16, err := buf.ReadU16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("ReadU16: got (%v, %v)", u16, err)
	}

	u32, err := buf.ReadU32()
	if err != nil || u32 != 0xAABBCCDD {
		t.Fatalf("ReadU32: got (%v, %v)", u32, err)
	}

	s, err := buf.ReadString(2)
	if err != nil || s != "AB" {
		t.Fatalf("ReadString: got (%q, %v)", s, err)
	}

	if buf.Pos() != len(data) {
		t.Fatalf("Pos() = %d, want %d", buf.Pos(), len(data))
	}
}

func TestIoBufferReadPastEndFails(t *testing.T) {
	buf := NewIoBufferReader([]byte{0x01})
	if _, err := buf.ReadU32(); !errors.Is(err, ErrTruncatedIndex) {
		t.Fatalf("got %v, want ErrTruncatedIndex", err)
	}
}

func TestIoBufferWriteAndPatch(t *testing.T) {
	buf := NewIoBufferWriter(0)
	buf.WriteU32(0)
	at := 0
	buf.WriteBytes([]byte("payload"))

	if err := buf.PatchU32(at, 0xDEADBEEF); err != nil {
		t.Fatalf("PatchU32: %v", err)
	}

	out := buf.Bytes()
	got := NewIoBufferReader(out)
	v, err := got.ReadU32()
	if err != nil || v != 0xDEADBEEF {
		t.Fatalf("patched value = (%v, %v), want 0xDEADBEEF", v, err)
	}

	rest, err := got.ReadString(len("payload"))
	if err != nil || rest != "payload" {
		t.Fatalf("trailing bytes corrupted by patch: (%q, %v)", rest, err)
	}
}

func TestIoBufferRoundTripFloat(t *testing.T) {
	buf := NewIoBufferWriter(0)
	buf.WriteF32(3.5)
	buf.WriteI32(-42)

	r := NewIoBufferReader(buf.Bytes())
	f, err := r.ReadF32()
	if err != nil || f != 3.5 {
		t.Fatalf("ReadF32: got (%v, %v)", f, err)
	}

	i, err := r.ReadI32()
	if err != nil || i != -42 {
		t.Fatalf("ReadI32: got (%v, %v)", i, err)
	}
}

func TestIoBufferSeekAndSkip(t *testing.T) {
	buf := NewIoBufferReader([]byte{1, 2, 3, 4, 5})
	if err := buf.Seek(3); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if err := buf.SkipN(1); err != nil {
		t.Fatalf("SkipN: %v", err)
	}
	v, err := buf.ReadU8()
	if err != nil || v != 5 {
		t.Fatalf("got (%v, %v), want 5", v, err)
	}

	if err := buf.Seek(-1); err == nil {
		t.Fatal("Seek to negative offset should fail")
	}
}
