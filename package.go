// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ashrafmajdee/dbpf/internal/refpack"
)

// packageState mirrors the lifecycle in the design: a package moves
// Empty -> Loaded -> Mutated (tracked via ChangeSet.dirty, not a
// separate state) -> Loaded again after write/clear -> Disposed/Deleted.
type packageState int

const (
	stateEmpty packageState = iota
	stateLoaded
	stateDisposed
	stateDeleted
)

// OpenOptions configures Open and NewPackage.
type OpenOptions struct {
	// Provider receives resource-map and cache notifications for every
	// overlay mutation. Nil is valid; notifications become no-ops.
	Provider Provider
}

func (o *OpenOptions) applyDefaults() {}

// WriteOptions configures WriteToFile.
type WriteOptions struct {
	// DeleteIfEmpty, when true and the merged view is empty, deletes the
	// backing file instead of writing an empty archive.
	DeleteIfEmpty bool
	// OnEntryWritten, if set, is called after each merged entry's payload
	// is written during serialization — a progress hook mirroring the
	// teacher's PackOptions.OnEntryDone, since the core itself never logs.
	OnEntryWritten func(tgi ResourceKey, compressed bool)
}

func (o *WriteOptions) applyDefaults() {}

// Package is a parsed (or freshly created) DBPF archive plus its
// in-memory ChangeSet overlay. The zero value is not usable; construct
// one with NewPackage or Open.
type Package struct {
	mu sync.Mutex

	filePath string
	file     *os.File
	ra       io.ReaderAt // source given to the last successful index parse; payloads are read from it
	groupID  uint32

	version      headerVersion
	indexMajor   uint32
	indexMinor   uint32
	dateCreated  int32
	dateModified int32

	original    []Entry
	originalIdx map[ResourceKey]int // internal TGI -> index into original
	dir         map[ResourceKey]uint32

	changes *ChangeSet

	provider Provider
	state    packageState
	deleted  bool
}

// NewPackage returns an empty package with no backing file, ready to
// accept overlay additions and be serialized from scratch.
func NewPackage(opts OpenOptions) *Package {
	opts.applyDefaults()

	p := &Package{
		version:     version12,
		indexMajor:  7,
		indexMinor:  2,
		originalIdx: make(map[ResourceKey]int),
		dir:         make(map[ResourceKey]uint32),
		provider:    opts.Provider,
		state:       stateEmpty,
	}
	p.changes = newChangeSet(p)

	return p
}

// Open opens the DBPF file at path and parses its header and index.
func Open(path string, opts OpenOptions) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dbpf: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat dbpf: %w", err)
	}

	p := NewPackage(opts)
	p.filePath = path
	p.groupID = GroupIDHash(stemOf(path))

	if err := p.Read(f, fi.Size()); err != nil {
		_ = f.Close()
		return nil, err
	}

	p.file = f
	p.state = stateLoaded
	p.notifyAddPackage()

	return p, nil
}

// stemOf returns the filename without directory or extension.
func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// GroupID returns the package's derived group ID, substituted for Local
// in every global TGI projection.
func (p *Package) GroupID() uint32 { return p.groupID }

// checkIOState reports whether p is still usable for I/O, mirroring the
// teacher's closed-reader guard in entry_reader.go/extract.go: Disposed
// and Deleted are terminal states in which Read, GetBytes and
// WriteToFile refuse to run; only WriteToFile's own reopen step moves a
// package it has just disposed back to Loaded.
func (p *Package) checkIOState() error {
	p.mu.Lock()
	state := p.state
	p.mu.Unlock()

	switch state {
	case stateDisposed:
		return ErrDisposed
	case stateDeleted:
		return ErrDeleted
	default:
		return nil
	}
}

// Changes returns the package's ChangeSet for staging mutations.
func (p *Package) Changes() *ChangeSet { return p.changes }

// headerPrefixSize comfortably covers every version arm's fixed header
// fields plus the trailing 32-byte padding, so one read suffices before
// the index (which lives elsewhere in the file) is parsed separately.
const headerPrefixSize = 128

// Read parses a DBPF header and index from ra/size into the package's
// original entry table, replacing any previously parsed state. It is
// exported for constructing a Package over an arbitrary io.ReaderAt
// (Open uses it internally after opening the file).
func (p *Package) Read(ra io.ReaderAt, size int64) error {
	if err := p.checkIOState(); err != nil {
		return err
	}

	prefixLen := int64(headerPrefixSize)
	if prefixLen > size {
		prefixLen = size
	}

	prefix := make([]byte, prefixLen)
	if _, err := ra.ReadAt(prefix, 0); err != nil && err != io.EOF {
		return fmt.Errorf("%w: %w", ErrTruncatedHeader, err)
	}

	buf := NewIoBufferReader(prefix)

	if err := p.parseHeader(buf); err != nil {
		return err
	}

	numEntries, indexOffset, err := p.parseHeaderIndexFields(buf)
	if err != nil {
		return err
	}

	hasHi := p.indexMinor >= 2
	entrySize := indexEntrySize(hasHi)
	indexLen := int64(numEntries) * int64(entrySize)
	if int64(indexOffset)+indexLen > size {
		return fmt.Errorf("%w: index extends past end of file", ErrTruncatedIndex)
	}

	indexBuf := make([]byte, indexLen)
	if indexLen > 0 {
		if _, err := ra.ReadAt(indexBuf, int64(indexOffset)); err != nil {
			return fmt.Errorf("%w: %w", ErrTruncatedIndex, err)
		}
	}

	if err := p.parseIndex(NewIoBufferReader(indexBuf), numEntries, size); err != nil {
		return err
	}

	p.ra = ra
	p.loadDIR()

	return nil
}

// indexEntrySize is the on-disk byte width of one index record.
func indexEntrySize(hasInstanceHi bool) int {
	if hasInstanceHi {
		return 24
	}
	return 20
}

func (p *Package) parseHeader(buf *IoBuffer) error {
	magicBytes, err := buf.ReadString(4)
	if err != nil || magicBytes != magic {
		return ErrNotDBPF
	}

	major, err := buf.ReadU32()
	if err != nil {
		return fmt.Errorf("%w: major version", ErrTruncatedHeader)
	}
	minor, err := buf.ReadU32()
	if err != nil {
		return fmt.Errorf("%w: minor version", ErrTruncatedHeader)
	}
	if err := buf.SkipN(12); err != nil {
		return fmt.Errorf("%w: reserved block", ErrTruncatedHeader)
	}

	v := headerVersion{major, minor}
	if !v.supported() {
		return fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, major, minor)
	}
	p.version = v

	if v.hasDateFields() {
		created, err := buf.ReadI32()
		if err != nil {
			return fmt.Errorf("%w: date created", ErrTruncatedHeader)
		}
		modified, err := buf.ReadI32()
		if err != nil {
			return fmt.Errorf("%w: date modified", ErrTruncatedHeader)
		}
		p.dateCreated, p.dateModified = created, modified
	}

	return nil
}

// parseHeaderIndexFields reads the version-dependent block of the
// header describing where the index lives and how many entries it
// holds, per steps 4-9 of the parse algorithm.
func (p *Package) parseHeaderIndexFields(buf *IoBuffer) (numEntries, indexOffset uint32, err error) {
	if p.version.isPreV2() {
		if _, err = buf.ReadU32(); err != nil { // index_major
			return 0, 0, fmt.Errorf("%w: index major", ErrTruncatedHeader)
		}
	}

	if numEntries, err = buf.ReadU32(); err != nil {
		return 0, 0, fmt.Errorf("%w: num entries", ErrTruncatedHeader)
	}

	if p.version.isPreV2() {
		if indexOffset, err = buf.ReadU32(); err != nil {
			return 0, 0, fmt.Errorf("%w: index offset", ErrTruncatedHeader)
		}
	}

	if _, err = buf.ReadU32(); err != nil { // index_size, unused during parse
		return 0, 0, fmt.Errorf("%w: index size", ErrTruncatedHeader)
	}

	if p.version.isPreV2() {
		if err = buf.SkipN(12); err != nil { // trash count/offset/size
			return 0, 0, fmt.Errorf("%w: trash fields", ErrTruncatedHeader)
		}
		if p.indexMinor, err = buf.ReadU32(); err != nil {
			return 0, 0, fmt.Errorf("%w: index minor", ErrTruncatedHeader)
		}
	} else {
		if p.indexMinor, err = buf.ReadU32(); err != nil {
			return 0, 0, fmt.Errorf("%w: index minor", ErrTruncatedHeader)
		}
		if indexOffset, err = buf.ReadU32(); err != nil {
			return 0, 0, fmt.Errorf("%w: index offset", ErrTruncatedHeader)
		}
		if err = buf.SkipN(4); err != nil {
			return 0, 0, fmt.Errorf("%w: reserved index field", ErrTruncatedHeader)
		}
	}

	if err = buf.SkipN(headerPaddingSize); err != nil {
		return 0, 0, fmt.Errorf("%w: header padding", ErrTruncatedHeader)
	}

	return numEntries, indexOffset, nil
}

func (p *Package) parseIndex(buf *IoBuffer, numEntries uint32, fileSize int64) error {
	p.original = make([]Entry, 0, numEntries)
	p.originalIdx = make(map[ResourceKey]int, numEntries)

	hasHi := p.indexMinor >= 2

	for i := uint32(0); i < numEntries; i++ {
		typeID, err := buf.ReadU32()
		if err != nil {
			return fmt.Errorf("%w: entry %d type", ErrTruncatedIndex, i)
		}
		groupID, err := buf.ReadU32()
		if err != nil {
			return fmt.Errorf("%w: entry %d group", ErrTruncatedIndex, i)
		}
		instance, err := buf.ReadU32()
		if err != nil {
			return fmt.Errorf("%w: entry %d instance", ErrTruncatedIndex, i)
		}

		var instanceHi uint32
		if hasHi {
			if instanceHi, err = buf.ReadU32(); err != nil {
				return fmt.Errorf("%w: entry %d instance-hi", ErrTruncatedIndex, i)
			}
		}

		offset, err := buf.ReadU32()
		if err != nil {
			return fmt.Errorf("%w: entry %d offset", ErrTruncatedIndex, i)
		}
		fileSz, err := buf.ReadU32()
		if err != nil {
			return fmt.Errorf("%w: entry %d size", ErrTruncatedIndex, i)
		}

		if int64(offset)+int64(fileSz) > fileSize {
			return fmt.Errorf("%w: entry %d at %d+%d exceeds file size %d",
				ErrEntryOutOfRange, i, offset, fileSz, fileSize)
		}

		internal := ResourceKey{TypeID: typeID, GroupID: groupID, InstanceID: instance, InstanceHi: instanceHi}
		e := originalEntry(p, internal, offset, fileSz)
		p.originalIdx[internal] = len(p.original)
		p.original = append(p.original, e)
	}

	return nil
}

// loadDIR fetches and caches the DIR resource's parsed form, if present.
// An absent DIR is not an error — it means nothing in the package is
// compressed.
func (p *Package) loadDIR() {
	idx, ok := p.originalIdx[dirKey]
	if !ok {
		p.dir = make(map[ResourceKey]uint32)
		return
	}

	raw, err := p.readOriginalPayload(p.original[idx], false)
	if err != nil {
		p.dir = make(map[ResourceKey]uint32)
		return
	}

	dir, err := parseDIR(raw, p.indexMinor >= 2)
	if err != nil {
		p.dir = make(map[ResourceKey]uint32)
		return
	}

	p.dir = dir
}

// readOriginalPayload reads raw on-disk bytes for an original entry
// without consulting the overlay or DIR decompression.
func (p *Package) readOriginalPayload(e Entry, _ bool) ([]byte, error) {
	if p.ra == nil {
		return nil, fmt.Errorf("%w: no backing file", ErrEntryOutOfRange)
	}

	buf := make([]byte, e.FileSize)
	if _, err := p.ra.ReadAt(buf, int64(e.FileOffset)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEntryOutOfRange, err)
	}

	return buf, nil
}

// Entries returns the merged view: originals not deleted or replaced,
// followed by changed entries in insertion order.
func (p *Package) Entries() []Entry {
	out := make([]Entry, 0, len(p.original)+len(p.changes.order))

	for _, e := range p.original {
		if p.changes.isDeleted(e.InternalTGI) {
			continue
		}
		if _, replaced := p.changes.get(e.InternalTGI); replaced {
			continue
		}
		out = append(out, e)
	}

	for _, tgi := range p.changes.order {
		item, ok := p.changes.get(tgi)
		if !ok {
			continue
		}
		b, _ := item.Bytes()
		out = append(out, overlayEntry(p, tgi, len(b)))
	}

	return out
}

// OriginalEntries returns the parsed on-disk entry table, unaffected by
// the overlay.
func (p *Package) OriginalEntries() []Entry {
	out := make([]Entry, len(p.original))
	copy(out, p.original)
	return out
}

// entryFor returns the current merged-view entry for an internal TGI,
// if one exists (used by Restore to decide whether to re-publish).
func (p *Package) entryFor(tgi ResourceKey) (Entry, bool) {
	if item, ok := p.changes.get(tgi); ok {
		b, _ := item.Bytes()
		return overlayEntry(p, tgi, len(b)), true
	}
	if idx, ok := p.originalIdx[tgi]; ok {
		return p.original[idx], true
	}
	return Entry{}, false
}

// GetEntryByTGI looks up an entry in the merged view by global TGI.
func (p *Package) GetEntryByTGI(tgi ResourceKey) (Entry, bool) {
	for _, e := range p.Entries() {
		if e.GlobalTGI == tgi {
			return e, true
		}
	}
	return Entry{}, false
}

// GetBytes resolves e's payload. With ignoreDeleted false, an entry whose
// internal TGI is in the deleted set yields nil bytes and a nil error;
// with ignoreDeleted true the deleted set is not consulted.
func (p *Package) GetBytes(e Entry, ignoreDeleted bool) ([]byte, error) {
	if err := p.checkIOState(); err != nil {
		return nil, err
	}

	if !ignoreDeleted && p.changes.isDeleted(e.InternalTGI) {
		return nil, nil
	}

	if item, ok := p.changes.get(e.InternalTGI); ok {
		return item.Bytes()
	}

	raw, err := p.readOriginalPayload(e, false)
	if err != nil {
		return nil, err
	}

	if uncompressed, ok := p.dir[e.InternalTGI]; ok {
		out, err := refpack.Decompress(raw, int(uncompressed))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptCompression, err)
		}
		return out, nil
	}

	return raw, nil
}

// GetBytesByTGI resolves payload bytes by global TGI.
func (p *Package) GetBytesByTGI(tgi ResourceKey) ([]byte, error) {
	e, ok := p.GetEntryByTGI(tgi)
	if !ok {
		return nil, ErrMissingEntry
	}
	return p.GetBytes(e, true)
}

// GetAsset resolves e to a decoded Asset: the staged asset if the
// overlay carries one, otherwise the payload bytes dispatched through
// the Codec registered for the entry's type.
func (p *Package) GetAsset(e Entry) (Asset, error) {
	if item, ok := p.changes.get(e.InternalTGI); ok && item.asset != nil {
		return item.asset, nil
	}

	raw, err := p.GetBytes(e, true)
	if err != nil {
		return nil, err
	}

	codec, ok := lookupCodec(e.GlobalTGI.TypeID)
	if !ok {
		return nil, fmt.Errorf("%w: type %08X", ErrNoCodec, e.GlobalTGI.TypeID)
	}

	_, compressed := p.dir[e.InternalTGI]
	asset, err := codec.Decode(e.GlobalTGI, raw)
	if err != nil {
		return nil, err
	}
	asset.SetOwner(p, e.GlobalTGI, compressed)

	return asset, nil
}

// GetAssetByTGI resolves a decoded Asset by global TGI.
func (p *Package) GetAssetByTGI(tgi ResourceKey) (Asset, error) {
	e, ok := p.GetEntryByTGI(tgi)
	if !ok {
		return nil, ErrMissingEntry
	}
	return p.GetAsset(e)
}

// SetFilePath rebinds the package to a new filename, rederiving its
// group ID and rewriting every entry's global TGI, then moving its
// provider registration to the new identity. Overlay entries need no
// such rewrite: their GlobalTGI is recomputed on demand from the
// current p.groupID every time Entries()/entryFor synthesizes one via
// overlayEntry.
func (p *Package) SetFilePath(path string) {
	p.notifyRemovePackage()

	p.filePath = path
	p.groupID = GroupIDHash(stemOf(path))

	for i := range p.original {
		p.original[i].GlobalTGI = p.original[i].InternalTGI.WithLocalGroup(p.groupID)
	}

	p.notifyAddPackage()
}

// notify* route ChangeSet/Package events to the provider, a no-op when
// provider is nil.

func (p *Package) notifyAddPackage() {
	if p.provider != nil {
		p.provider.AddPackage(p)
	}
}

func (p *Package) notifyRemovePackage() {
	if p.provider != nil {
		p.provider.RemovePackage(p)
	}
}

func (p *Package) notifyAddEntry(e Entry) {
	if p.provider != nil {
		p.provider.AddEntry(e)
	}
}

func (p *Package) notifyRemoveEntry(internal, global ResourceKey) {
	if p.provider != nil {
		p.provider.RemoveEntry(global, p)
	}
	_ = internal
}

func (p *Package) notifyCacheRemove(tgi ResourceKey) {
	if p.provider != nil {
		p.provider.CacheRemove(tgi.WithLocalGroup(p.groupID), p)
	}
}

func (p *Package) notifyCacheRemoveAll() {
	if p.provider != nil {
		p.provider.CacheRemoveAll(p)
	}
}

// Dispose releases the package's backing file handle. The package
// becomes unusable for further I/O.
func (p *Package) Dispose() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateDisposed || p.state == stateDeleted {
		return nil
	}

	p.state = stateDisposed
	if p.file != nil {
		f := p.file
		p.file = nil
		return f.Close()
	}

	return nil
}
