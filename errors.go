// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import "errors"

// Sentinel errors for DBPF operations. Use errors.Is in callers.
var (
	// ErrNotDBPF means the source does not start with the "DBPF" magic.
	ErrNotDBPF = errors.New("not a DBPF file: missing magic")
	// ErrUnsupportedVersion means the header version pair is not one of
	// the four arms this package knows how to parse.
	ErrUnsupportedVersion = errors.New("unsupported DBPF version")
	// ErrTruncatedHeader means the source is too short to hold a fixed header.
	ErrTruncatedHeader = errors.New("truncated DBPF header")
	// ErrTruncatedIndex means the source ends before the index table is fully read.
	ErrTruncatedIndex = errors.New("truncated DBPF index")
	// ErrEntryOutOfRange means an entry's offset/size falls outside the archive.
	ErrEntryOutOfRange = errors.New("entry offset/size out of range")
	// ErrCorruptCompression means the refpack decoder hit a malformed token stream.
	ErrCorruptCompression = errors.New("corrupt compressed payload")
	// ErrMissingEntry means a lookup by TGI found nothing in the merged view.
	ErrMissingEntry = errors.New("no entry for resource key")
	// ErrNoCodec means no codec is registered for an entry's type ID.
	ErrNoCodec = errors.New("no codec registered for resource type")
	// ErrDisposed means the package's read handle has already been closed.
	ErrDisposed = errors.New("package is disposed")
	// ErrDeleted means the package's backing file has been deleted.
	ErrDeleted = errors.New("package is deleted")
	// ErrNilPackage is returned by WriteToFile when the package has no
	// file path to write to.
	ErrNilPackage = errors.New("package is nil")
)
