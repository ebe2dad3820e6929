// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

// Internal binary layout constants for the DBPF container.
const (
	// magic is the fixed 4-byte signature at the start of every DBPF file.
	magic = "DBPF"
	// fixedHeaderSize is the size of the leading "magic, major, minor,
	// unknown(12)" block shared by every version arm.
	fixedHeaderSize = 24
	// headerPaddingSize is the trailing zero padding before the index.
	headerPaddingSize = 32
)

// Local is the sentinel group ID meaning "the owning package's derived
// group ID". It appears in on-disk (internal) TGIs and is resolved to a
// concrete group ID when a global TGI is computed.
const Local uint32 = 0xFFFFFFFF

// TypeDIR is the resource type ID of the compression directory resource.
const TypeDIR uint32 = 0xE86B1EEF

// headerVersion identifies one of the four header layouts this package
// knows how to parse. Dispatch is on the (major, minor) pair directly,
// never on a computed float, to avoid equality-on-float traps.
type headerVersion struct {
	major uint32
	minor uint32
}

var (
	version10 = headerVersion{1, 0}
	version11 = headerVersion{1, 1}
	version12 = headerVersion{1, 2}
	version20 = headerVersion{2, 0}
)

// hasDateFields reports whether this version's header carries the two
// creation/modification date fields (spec: version <= 1.2).
func (v headerVersion) hasDateFields() bool {
	return v == version10 || v == version11 || v == version12
}

// isPreV2 reports whether this version's header uses the legacy
// (version < 2.0) index-offset/trash-fields layout.
func (v headerVersion) isPreV2() bool {
	return v == version10 || v == version11 || v == version12
}

// supported reports whether v is one of the four arms this package parses.
func (v headerVersion) supported() bool {
	return v == version10 || v == version11 || v == version12 || v == version20
}
