// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import "fmt"

// ResourceKey is a composite DBPF resource identifier: Type, Group,
// Instance (low and high words). InstanceHi is zero for archives parsed
// with index-minor-version < 2, which have no high instance word.
type ResourceKey struct {
	TypeID     uint32
	GroupID    uint32
	InstanceID uint32
	InstanceHi uint32
}

// dirKey is the well-known resource key that, by convention, carries the
// compression directory for whatever package contains it — DIR always
// uses GroupID == Local and zero instance words in every DBPF archive
// produced by this package, since a package has at most one directory.
var dirKey = ResourceKey{TypeID: TypeDIR, GroupID: Local}

// WithLocalGroup returns a copy of k with GroupID replaced by owner iff
// k.GroupID == Local; otherwise k is returned unchanged.
func (k ResourceKey) WithLocalGroup(owner uint32) ResourceKey {
	if k.GroupID != Local {
		return k
	}

	k.GroupID = owner
	return k
}

// Equal reports whether two resource keys identify the same resource.
// All four words participate in equality.
func (k ResourceKey) Equal(other ResourceKey) bool {
	return k == other
}

// IsDIR reports whether k identifies the compression directory resource.
func (k ResourceKey) IsDIR() bool {
	return k.TypeID == TypeDIR
}

// String renders the key as "TTTTTTTT-GGGGGGGG-IIIIIIII[-HHHHHHHH]",
// the hex form used by ImportDirectory and loose-resource tooling.
func (k ResourceKey) String() string {
	if k.InstanceHi != 0 {
		return fmt.Sprintf("%08X-%08X-%08X-%08X", k.TypeID, k.GroupID, k.InstanceID, k.InstanceHi)
	}

	return fmt.Sprintf("%08X-%08X-%08X", k.TypeID, k.GroupID, k.InstanceID)
}
