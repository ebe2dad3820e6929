// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import (
	"errors"
	"sync"
	"testing"
)

func TestPrefetchReadsEveryEntry(t *testing.T) {
	pkg := NewPackage(OpenOptions{})
	want := map[ResourceKey]string{
		{TypeID: 1, InstanceID: 1}: "alpha",
		{TypeID: 1, InstanceID: 2}: "bravo",
		{TypeID: 1, InstanceID: 3}: "charlie",
	}
	for tgi, payload := range want {
		pkg.Changes().SetBytes(tgi, []byte(payload), false)
	}

	var mu sync.Mutex
	seen := make(map[ResourceKey]string)

	err := pkg.Prefetch(PrefetchOptions{
		MaxWorkers: 2,
		OnEntry: func(tgi ResourceKey, raw []byte, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				seen[tgi] = string(raw)
			}
		},
	})
	if err != nil {
		t.Fatalf("Prefetch: %v", err)
	}

	if len(seen) != len(want) {
		t.Fatalf("saw %d entries, want %d", len(seen), len(want))
	}
	for tgi, payload := range want {
		if seen[tgi] != payload {
			t.Fatalf("entry %v = %q, want %q", tgi, seen[tgi], payload)
		}
	}
}

func TestPrefetchSurfacesFirstError(t *testing.T) {
	pkg := NewPackage(OpenOptions{})
	pkg.original = []Entry{
		originalEntry(pkg, ResourceKey{TypeID: 1, InstanceID: 1}, 0, 10),
	}
	pkg.originalIdx = map[ResourceKey]int{
		{TypeID: 1, InstanceID: 1}: 0,
	}
	// No backing file: readOriginalPayload must fail for this entry.

	err := pkg.Prefetch(PrefetchOptions{MaxWorkers: 1})
	if err == nil {
		t.Fatal("expected an error when no backing file is open")
	}
	if !errors.Is(err, ErrEntryOutOfRange) {
		t.Fatalf("got %v, want wrapping ErrEntryOutOfRange", err)
	}
}

func TestPrefetchDefaultsToOneWorker(t *testing.T) {
	pkg := NewPackage(OpenOptions{})
	pkg.Changes().SetBytes(ResourceKey{TypeID: 1, InstanceID: 1}, []byte("x"), false)

	if err := pkg.Prefetch(PrefetchOptions{MaxWorkers: 0}); err != nil {
		t.Fatalf("Prefetch with MaxWorkers=0: %v", err)
	}
}
