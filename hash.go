// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import (
	"hash/fnv"
	"strings"
)

// GroupIDHash derives a package's group ID from its filename stem (the
// base name without extension), lower-cased. This is the fixed
// FNV-style hash that produced the group IDs baked into the game's own
// package filenames, so opening the same file twice always yields the
// same derived group ID.
func GroupIDHash(stem string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(stem)))
	return h.Sum32()
}
