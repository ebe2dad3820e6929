// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import (
	"fmt"
	"sync"
)

// PrefetchOptions configures Package.Prefetch.
type PrefetchOptions struct {
	// MaxWorkers bounds concurrent payload reads. Zero or negative
	// selects a single worker.
	MaxWorkers int
	// OnEntry, if set, is called once per entry after its payload has
	// been read (err is nil on success).
	OnEntry func(tgi ResourceKey, raw []byte, err error)
}

// Prefetch reads and decompresses every merged entry's payload
// concurrently across a bounded worker pool, the same shape as the
// teacher's parallel extractor, adapted from streaming files to disk to
// populating OnEntry callbacks (typically a decoded-asset cache) for
// callers about to make many GetAsset calls in a row.
func (p *Package) Prefetch(opts PrefetchOptions) error {
	workers := opts.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	entries := p.Entries()
	jobs := make(chan Entry)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				raw, err := p.GetBytes(e, true)
				if opts.OnEntry != nil {
					opts.OnEntry(e.GlobalTGI, raw, err)
				}
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("prefetch %s: %w", e.GlobalTGI, err)
					}
					mu.Unlock()
				}
			}
		}()
	}

	for _, e := range entries {
		jobs <- e
	}
	close(jobs)

	wg.Wait()

	return firstErr
}
