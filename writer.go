// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ashrafmajdee/dbpf/internal/refpack"
)

// updateDIR regenerates the DIR resource from the current merged view
// and stages it via the ChangeSet, exactly as §4.5 "DIR regeneration"
// specifies: original entries keep their prior uncompressed size from
// the parsed DIR snapshot, overlay entries contribute their current
// byte length iff staged as compressed. An empty result schedules DIR's
// own deletion instead of staging an empty resource.
func (p *Package) updateDIR() {
	fresh := make(map[ResourceKey]uint32)

	for _, e := range p.original {
		if e.InternalTGI.IsDIR() {
			continue
		}
		if p.changes.isDeleted(e.InternalTGI) {
			continue
		}
		if _, replaced := p.changes.get(e.InternalTGI); replaced {
			continue
		}
		if size, ok := p.dir[e.InternalTGI]; ok {
			fresh[e.InternalTGI] = size
		}
	}

	for _, tgi := range p.changes.order {
		if tgi.IsDIR() {
			continue
		}
		item, ok := p.changes.get(tgi)
		if !ok || !item.compressed {
			continue
		}
		b, _ := item.Bytes()
		fresh[tgi] = uint32(len(b)) //nolint:gosec // DBPF payloads are bounded to uint32 by the format itself
	}

	p.dir = fresh

	if len(fresh) == 0 {
		p.changes.unstage(dirKey)
		p.changes.Delete(dirKey)
		return
	}

	body := serializeDIR(fresh, true) // output index-minor is always 2
	p.changes.SetBytes(dirKey, body, false)
}

// Serialize produces a complete archive byte buffer for the current
// merged view, per the five-step algorithm in §4.5. The writer always
// emits major=1, minor=2, index-major=7, index-minor=2 regardless of
// the version the package was parsed with.
func (p *Package) Serialize(onEntryWritten func(tgi ResourceKey, compressed bool)) ([]byte, error) {
	p.updateDIR()

	entries := p.Entries()

	buf := NewIoBufferWriter(fixedHeaderSize + headerPaddingSize + len(entries)*28)

	buf.WriteBytes([]byte(magic))
	buf.WriteU32(1) // major
	buf.WriteU32(2) // minor
	buf.WriteZeros(12)
	buf.WriteI32(0) // date created
	buf.WriteI32(0) // date modified
	buf.WriteU32(7) // index major
	buf.WriteU32(uint32(len(entries))) //nolint:gosec // bounded by archive entry count, itself uint32 on disk

	indexOffsetAt := buf.Pos()
	buf.WriteU32(0) // index offset placeholder

	indexSizeAt := buf.Pos()
	buf.WriteU32(0) // index size placeholder

	buf.WriteZeros(12) // trash count/offset/size
	buf.WriteU32(2)    // index minor
	buf.WriteZeros(headerPaddingSize)

	indexStart := buf.Pos()
	if err := buf.PatchU32(indexOffsetAt, uint32(indexStart)); err != nil { //nolint:gosec // archive offsets fit uint32 by format contract
		return nil, err
	}

	type slot struct {
		offsetAt int
		sizeAt   int
	}
	slots := make([]slot, len(entries))

	for i, e := range entries {
		buf.WriteU32(e.InternalTGI.TypeID)
		buf.WriteU32(e.InternalTGI.GroupID)
		buf.WriteU32(e.InternalTGI.InstanceID)
		buf.WriteU32(e.InternalTGI.InstanceHi) // output index-minor is always 2

		slots[i].offsetAt = buf.Pos()
		buf.WriteU32(0) // offset placeholder
		slots[i].sizeAt = buf.Pos()
		buf.WriteU32(0) // size placeholder
	}

	for i, e := range entries {
		payloadStart := buf.Pos()
		if err := buf.PatchU32(slots[i].offsetAt, uint32(payloadStart)); err != nil { //nolint:gosec // archive offsets fit uint32 by format contract
			return nil, err
		}

		raw, err := p.GetBytes(e, true)
		if err != nil {
			return nil, err
		}

		_, compressed := p.dir[e.InternalTGI]
		out := raw
		if compressed {
			out = refpack.Compress(raw)
		}

		if err := buf.PatchU32(slots[i].sizeAt, uint32(len(out))); err != nil { //nolint:gosec // archive sizes fit uint32 by format contract
			return nil, err
		}
		buf.WriteBytes(out)

		if onEntryWritten != nil {
			onEntryWritten(e.GlobalTGI, compressed)
		}
	}

	// index size spans from the index offset to the end of the last payload
	if err := buf.PatchU32(indexSizeAt, uint32(buf.Pos()-indexStart)); err != nil { //nolint:gosec // archive sizes fit uint32 by format contract
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteToFile serializes and atomically replaces the package's backing
// file (write to a temp file, then rename), or deletes it when
// opts.DeleteIfEmpty is set and the merged view is empty. On success the
// package's ChangeSet is cleared and its read handle reopened against
// the new file.
func (p *Package) WriteToFile(opts WriteOptions) error {
	opts.applyDefaults()

	if err := p.checkIOState(); err != nil {
		return err
	}

	if p.filePath == "" {
		return fmt.Errorf("%w: package has no file path", ErrNilPackage)
	}

	if opts.DeleteIfEmpty && len(p.Entries()) == 0 {
		if err := p.Dispose(); err != nil {
			return err
		}

		p.notifyRemovePackage()

		if err := os.Remove(p.filePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete empty dbpf: %w", err)
		}

		p.changes = newChangeSet(p)
		p.state = stateDeleted
		p.deleted = true

		return nil
	}

	out, err := p.Serialize(opts.OnEntryWritten)
	if err != nil {
		return err
	}

	if err := p.Dispose(); err != nil {
		return err
	}

	if err := writeFileAtomic(p.filePath, out); err != nil {
		return err
	}

	f, err := os.Open(p.filePath)
	if err != nil {
		return fmt.Errorf("reopen dbpf: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat dbpf: %w", err)
	}

	p.file = f
	p.state = stateLoaded // Read's own guard requires a non-terminal state; restore it before the reopen-and-reparse
	if err := p.Read(f, fi.Size()); err != nil {
		_ = f.Close()
		p.state = stateDisposed
		return err
	}

	p.changes = newChangeSet(p)

	return nil
}

// writeFileAtomic writes data to a temp file in path's directory, then
// renames it over path, so a crash or failed write never leaves a
// truncated archive in place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dbpf-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}

	return nil
}
