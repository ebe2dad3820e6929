// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package refpack

import (
	"bytes"
	"errors"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := map[string][]byte{
		"empty":          {},
		"single byte":    {0x42},
		"short literal":  []byte("hi"),
		"ascii sentence": []byte("the quick brown fox jumps over the lazy dog"),
		"repetitive": bytes.Repeat([]byte("abcdabcdabcdabcdabcdabcdabcdabcd"), 50),
		"long run of one byte": bytes.Repeat([]byte{0xAA}, 5000),
		"binary-ish": func() []byte {
			b := make([]byte, 2000)
			for i := range b {
				b[i] = byte(i*37 + i/13)
			}
			return b
		}(),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			compressed := Compress(data)
			got, err := Decompress(compressed, len(data))
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(data))
			}
		})
	}
}

func TestDecompressRejectsBadMagic(t *testing.T) {
	_, err := Decompress([]byte{0x00, 0x00, 0, 0, 0}, 0)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("got %v, want ErrCorrupt", err)
	}
}

func TestDecompressRejectsTruncatedStream(t *testing.T) {
	input := []byte("enough bytes to force at least one opcode")
	compressed := Compress(input)
	truncated := compressed[:len(compressed)-2]

	_, err := Decompress(truncated, len(input))
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("got %v, want ErrCorrupt", err)
	}
}

func TestDecompressRejectsBadBackReference(t *testing.T) {
	// 2-byte opcode at the very start of the stream: cc=0x00 encodes a
	// copy of length 3 at distance 1, but there's no history yet.
	stream := append(appendHeader(nil, 3), 0x00, 0x00, 0xFC)
	_, err := Decompress(stream, 3)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("got %v, want ErrCorrupt", err)
	}
}

func TestDecompressRejectsLengthMismatch(t *testing.T) {
	compressed := Compress([]byte("mismatched expected length"))
	_, err := Decompress(compressed, 999)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("got %v, want ErrCorrupt", err)
	}
}

func TestCompressActuallyShrinksRepetitiveData(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 200)
	compressed := Compress(data)
	if len(compressed) >= len(data) {
		t.Fatalf("compressed size %d not smaller than input %d", len(compressed), len(data))
	}
}
