// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import "testing"

func TestResourceKeyWithLocalGroup(t *testing.T) {
	k := ResourceKey{TypeID: 1, GroupID: Local, InstanceID: 2}

	got := k.WithLocalGroup(0xCAFEBABE)
	want := ResourceKey{TypeID: 1, GroupID: 0xCAFEBABE, InstanceID: 2}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	nonLocal := ResourceKey{TypeID: 1, GroupID: 5, InstanceID: 2}
	if got := nonLocal.WithLocalGroup(0xCAFEBABE); got != nonLocal {
		t.Fatalf("non-local group was rewritten: got %+v", got)
	}
}

func TestResourceKeyEqual(t *testing.T) {
	a := ResourceKey{TypeID: 1, GroupID: 2, InstanceID: 3, InstanceHi: 4}
	b := ResourceKey{TypeID: 1, GroupID: 2, InstanceID: 3, InstanceHi: 4}
	c := ResourceKey{TypeID: 1, GroupID: 2, InstanceID: 3, InstanceHi: 5}

	if !a.Equal(b) {
		t.Fatal("identical keys compared unequal")
	}
	if a.Equal(c) {
		t.Fatal("differing instance-hi compared equal")
	}
}

func TestResourceKeyIsDIR(t *testing.T) {
	if !dirKey.IsDIR() {
		t.Fatal("dirKey.IsDIR() == false")
	}
	if (ResourceKey{TypeID: 1}).IsDIR() {
		t.Fatal("unrelated key reported as DIR")
	}
}

func TestResourceKeyString(t *testing.T) {
	k := ResourceKey{TypeID: 0xDEADBEEF, GroupID: 0x00000001, InstanceID: 0x12345678}
	if got, want := k.String(), "DEADBEEF-00000001-12345678"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	withHi := ResourceKey{TypeID: 1, GroupID: 2, InstanceID: 3, InstanceHi: 4}
	if got, want := withHi.String(), "00000001-00000002-00000003-00000004"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
