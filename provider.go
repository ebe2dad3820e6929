// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import "sync"

// Provider is the narrow interface the surrounding content-provider layer
// (cross-package resource map plus decoded-asset cache) must implement.
// All six methods are advisory: a Package's correctness never depends
// on what they return, only on calling them at the points §6 specifies.
// A nil Provider is valid and every call becomes a no-op.
type Provider interface {
	AddPackage(pkg *Package)
	RemovePackage(pkg *Package)
	AddEntry(e Entry)
	RemoveEntry(tgi ResourceKey, pkg *Package)
	CacheRemove(tgi ResourceKey, pkg *Package)
	CacheRemoveAll(pkg *Package)
}

// Codec deserialises/serialises one resource type's raw payload bytes
// into a typed Asset. Codecs are looked up by TypeID when Package.GetAsset
// needs to decode a payload it has no cached decoded form for.
type Codec interface {
	TypeID() uint32
	Decode(tgi ResourceKey, raw []byte) (Asset, error)
	Encode(a Asset) ([]byte, error)
}

// Asset is a decoded resource object. The core never interprets an
// Asset's contents; it only stamps ownership before handing it to a
// Codec or the caller.
type Asset interface {
	SetOwner(pkg *Package, globalTGI ResourceKey, compressed bool)
}

var (
	codecMu sync.RWMutex
	codecs  = map[uint32]Codec{}
)

// RegisterCodec makes c available to GetAsset/GetAssetByTGI for every
// resource whose type ID is c.TypeID(). Registering a codec for a type
// ID that already has one replaces it.
func RegisterCodec(c Codec) {
	codecMu.Lock()
	defer codecMu.Unlock()
	codecs[c.TypeID()] = c
}

func lookupCodec(typeID uint32) (Codec, bool) {
	codecMu.RLock()
	defer codecMu.RUnlock()
	c, ok := codecs[typeID]
	return c, ok
}

// RecordingProvider is an in-memory Provider fake for tests: it records
// every call it receives instead of maintaining a real resource map or
// cache, per the "expose the provider as a narrow interface... tests
// inject a recording fake" guidance.
type RecordingProvider struct {
	mu sync.Mutex

	AddedPackages   []*Package
	RemovedPackages []*Package
	AddedEntries    []Entry
	RemovedEntries  []ResourceKey
	CacheRemoved    []ResourceKey
	CacheCleared    []*Package
}

// NewRecordingProvider returns an empty RecordingProvider.
func NewRecordingProvider() *RecordingProvider {
	return &RecordingProvider{}
}

func (r *RecordingProvider) AddPackage(pkg *Package) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AddedPackages = append(r.AddedPackages, pkg)
}

func (r *RecordingProvider) RemovePackage(pkg *Package) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RemovedPackages = append(r.RemovedPackages, pkg)
}

func (r *RecordingProvider) AddEntry(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AddedEntries = append(r.AddedEntries, e)
}

func (r *RecordingProvider) RemoveEntry(tgi ResourceKey, _ *Package) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RemovedEntries = append(r.RemovedEntries, tgi)
}

func (r *RecordingProvider) CacheRemove(tgi ResourceKey, _ *Package) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CacheRemoved = append(r.CacheRemoved, tgi)
}

func (r *RecordingProvider) CacheRemoveAll(pkg *Package) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CacheCleared = append(r.CacheCleared, pkg)
}
