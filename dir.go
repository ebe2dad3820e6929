// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import "sort"

// dirEntrySize is the per-record byte length of the DIR resource body
// with InstanceHi present (index-minor >= 2). Packages written with
// index-minor < 2 use dirEntrySizeNoHi instead.
const (
	dirEntrySize     = 20 // type, group, instance_lo, instance_hi, uncompressed_size
	dirEntrySizeNoHi = 16 // type, group, instance_lo, uncompressed_size
)

// parseDIR decodes a DIR resource body into internal-TGI -> uncompressed
// size. hasInstanceHi must match the index-minor version the package was
// parsed with, since the DIR body has no self-describing record width.
func parseDIR(raw []byte, hasInstanceHi bool) (map[ResourceKey]uint32, error) {
	recSize := dirEntrySizeNoHi
	if hasInstanceHi {
		recSize = dirEntrySize
	}

	if len(raw)%recSize != 0 {
		return nil, ErrCorruptCompression
	}

	out := make(map[ResourceKey]uint32, len(raw)/recSize)
	buf := NewIoBufferReader(raw)
	for buf.Pos() < len(raw) {
		var key ResourceKey

		t, err := buf.ReadU32()
		if err != nil {
			return nil, err
		}
		g, err := buf.ReadU32()
		if err != nil {
			return nil, err
		}
		lo, err := buf.ReadU32()
		if err != nil {
			return nil, err
		}
		key = ResourceKey{TypeID: t, GroupID: g, InstanceID: lo}

		if hasInstanceHi {
			hi, err := buf.ReadU32()
			if err != nil {
				return nil, err
			}
			key.InstanceHi = hi
		}

		size, err := buf.ReadU32()
		if err != nil {
			return nil, err
		}

		out[key] = size
	}

	return out, nil
}

// serializeDIR encodes a DIR mapping in ascending internal-TGI record
// order (deterministic so two regenerations of an unchanged ChangeSet
// produce byte-identical output, per the DIR regeneration idempotence
// invariant).
func serializeDIR(dir map[ResourceKey]uint32, hasInstanceHi bool) []byte {
	keys := make([]ResourceKey, 0, len(dir))
	for k := range dir {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	recSize := dirEntrySizeNoHi
	if hasInstanceHi {
		recSize = dirEntrySize
	}

	buf := NewIoBufferWriter(len(keys) * recSize)
	for _, k := range keys {
		buf.WriteU32(k.TypeID)
		buf.WriteU32(k.GroupID)
		buf.WriteU32(k.InstanceID)
		if hasInstanceHi {
			buf.WriteU32(k.InstanceHi)
		}
		buf.WriteU32(dir[k])
	}

	return buf.Bytes()
}

// keyLess orders resource keys by (type, group, instance_lo,
// instance_hi) for deterministic DIR serialization.
func keyLess(a, b ResourceKey) bool {
	if a.TypeID != b.TypeID {
		return a.TypeID < b.TypeID
	}
	if a.GroupID != b.GroupID {
		return a.GroupID < b.GroupID
	}
	if a.InstanceID != b.InstanceID {
		return a.InstanceID < b.InstanceID
	}
	return a.InstanceHi < b.InstanceHi
}
