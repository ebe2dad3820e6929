// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import "testing"

func TestGroupIDHashDeterministic(t *testing.T) {
	a := GroupIDHash("MyPackage")
	b := GroupIDHash("mypackage")
	if a != b {
		t.Fatalf("hash is case-sensitive: %08X != %08X", a, b)
	}

	c := GroupIDHash("MyPackage")
	if a != c {
		t.Fatalf("hash is not deterministic: %08X != %08X", a, c)
	}
}

func TestGroupIDHashDiffersAcrossNames(t *testing.T) {
	if GroupIDHash("alpha") == GroupIDHash("beta") {
		t.Fatal("distinct names hashed to the same group ID")
	}
}
