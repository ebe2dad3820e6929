// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

// changedItem is the tagged variant backing one ChangeSet addition or
// replacement: either raw bytes awaiting a compression decision, or a
// not-yet-serialised Asset plus the Codec that will serialise it on
// demand. Bytes memoises the Asset-variant encode so repeated calls
// (e.g. DIR regeneration followed by Serialize) don't re-encode.
type changedItem struct {
	typeID     uint32
	compressed bool

	raw []byte

	asset  Asset
	codec  Codec
	cached []byte
}

// Bytes returns the item's current byte representation, encoding the
// asset through its codec on first use and caching the result.
func (c *changedItem) Bytes() ([]byte, error) {
	if c.raw != nil {
		return c.raw, nil
	}
	if c.cached != nil {
		return c.cached, nil
	}

	b, err := c.codec.Encode(c.asset)
	if err != nil {
		return nil, err
	}

	c.cached = b
	return b, nil
}

// ChangeSet is the in-memory overlay of pending deletions and
// additions/replacements for one Package, layered over its parsed
// on-disk entries. All mutators are total on valid inputs; every one of
// them sets Dirty except Clear, which resets it.
type ChangeSet struct {
	pkg *Package

	deleted map[ResourceKey]struct{}
	changed map[ResourceKey]*changedItem
	order   []ResourceKey // insertion order of changed, for Package.Entries

	dirty bool
}

func newChangeSet(pkg *Package) *ChangeSet {
	return &ChangeSet{
		pkg:     pkg,
		deleted: make(map[ResourceKey]struct{}),
		changed: make(map[ResourceKey]*changedItem),
	}
}

// Dirty reports whether any mutating operation has run since the
// package was loaded or last cleared.
func (c *ChangeSet) Dirty() bool { return c.dirty }

// isDeleted reports whether tgi (internal) is currently suppressed.
func (c *ChangeSet) isDeleted(tgi ResourceKey) bool {
	_, ok := c.deleted[tgi]
	return ok
}

// get returns the overlay item for tgi (internal), if any.
func (c *ChangeSet) get(tgi ResourceKey) (*changedItem, bool) {
	item, ok := c.changed[tgi]
	return item, ok
}

// Delete suppresses tgi (internal) from the merged view.
func (c *ChangeSet) Delete(tgi ResourceKey) {
	c.deleted[tgi] = struct{}{}
	c.dirty = true

	global := tgi.WithLocalGroup(c.pkg.groupID)
	c.pkg.notifyRemoveEntry(tgi, global)
	c.pkg.notifyCacheRemove(tgi)
}

// Restore un-suppresses tgi (internal) if it was deleted, re-publishing
// it to the provider iff a backing original or overlay entry still
// exists for it.
func (c *ChangeSet) Restore(tgi ResourceKey) {
	if _, ok := c.deleted[tgi]; !ok {
		return
	}

	delete(c.deleted, tgi)
	c.dirty = true

	if e, ok := c.pkg.entryFor(tgi); ok {
		c.pkg.notifyAddEntry(e)
	}
	c.pkg.notifyCacheRemove(tgi)
}

// SetAsset stages a or replaces tgi (internal) with asset, stamping it
// with its owning package, global TGI, and compression flag before
// staging it.
func (c *ChangeSet) SetAsset(tgi ResourceKey, asset Asset, codec Codec, compressed bool) {
	global := tgi.WithLocalGroup(c.pkg.groupID)
	asset.SetOwner(c.pkg, global, compressed)

	c.stage(tgi, &changedItem{typeID: tgi.TypeID, compressed: compressed, asset: asset, codec: codec})
}

// SetBytes stages an addition or replacement of tgi (internal) with raw
// payload bytes.
func (c *ChangeSet) SetBytes(tgi ResourceKey, raw []byte, compressed bool) {
	c.stage(tgi, &changedItem{typeID: tgi.TypeID, compressed: compressed, raw: raw})
}

func (c *ChangeSet) stage(tgi ResourceKey, item *changedItem) {
	if _, existed := c.changed[tgi]; !existed {
		c.order = append(c.order, tgi)
	}

	delete(c.deleted, tgi)
	c.changed[tgi] = item
	c.dirty = true

	b, _ := item.Bytes()
	c.pkg.notifyAddEntry(overlayEntry(c.pkg, tgi, len(b)))
	c.pkg.notifyCacheRemove(tgi)
}

// unstage removes tgi from the changed set without touching deleted or
// notifying the provider, for internal callers (DIR regeneration) that
// immediately follow up with their own notification via Delete.
func (c *ChangeSet) unstage(tgi ResourceKey) {
	if _, ok := c.changed[tgi]; !ok {
		return
	}

	delete(c.changed, tgi)
	for i, t := range c.order {
		if t == tgi {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear discards both maps and the dirty flag, detaching and
// re-attaching the whole package to the provider's resource map and
// invalidating its entire cache footprint.
func (c *ChangeSet) Clear() {
	c.pkg.notifyRemovePackage()

	c.deleted = make(map[ResourceKey]struct{})
	c.changed = make(map[ResourceKey]*changedItem)
	c.order = nil
	c.dirty = false

	c.pkg.notifyAddPackage()
	c.pkg.notifyCacheRemoveAll()
}

// DeleteAll suppresses every currently visible entry. Per the source
// behaviour this is preserved from, it walks the merged view at call
// time — entries added after a DeleteAll are unaffected until deleted
// themselves. Staged additions and replacements are dropped from the
// overlay as well, since the merged view shows every staged item.
func (c *ChangeSet) DeleteAll() {
	for _, e := range c.pkg.Entries() {
		c.deleted[e.InternalTGI] = struct{}{}
		c.unstage(e.InternalTGI)
	}
	c.dirty = true

	c.pkg.notifyRemovePackage()
	c.pkg.notifyCacheRemoveAll()
}
