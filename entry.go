// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

// Entry describes one resource stored in a package, either an original
// on-disk record or a synthesized view over a ChangeSet edit. pkg is a
// non-owning back-reference to the owning package, exposed through
// Package(); an Entry must not be used past its owning Package's
// lifetime.
type Entry struct {
	InternalTGI ResourceKey
	GlobalTGI   ResourceKey
	FileOffset  uint32
	FileSize    uint32

	pkg *Package
}

// originalEntry constructs an immutable Entry for a record parsed from
// the on-disk index.
func originalEntry(pkg *Package, internal ResourceKey, offset, size uint32) Entry {
	return Entry{
		InternalTGI: internal,
		GlobalTGI:   internal.WithLocalGroup(pkg.GroupID()),
		FileOffset:  offset,
		FileSize:    size,
		pkg:         pkg,
	}
}

// overlayEntry constructs a virtual Entry for a ChangeSet edit. Its
// FileOffset is meaningless (overlay bytes aren't stored at any archive
// offset until the next write) and FileSize mirrors the edit's current
// byte length.
func overlayEntry(pkg *Package, internal ResourceKey, size int) Entry {
	return Entry{
		InternalTGI: internal,
		GlobalTGI:   internal.WithLocalGroup(pkg.GroupID()),
		FileSize:    uint32(size), //nolint:gosec // DBPF payloads are bounded to uint32 by the format itself
		pkg:         pkg,
	}
}

// Package returns the Entry's owning package.
func (e Entry) Package() *Package {
	return e.pkg
}
