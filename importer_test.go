// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/pathrules"
)

func writeLooseFile(t *testing.T, dir, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestImportDirectoryStagesNamedResources(t *testing.T) {
	root := t.TempDir()
	writeLooseFile(t, root, "00000001-00000002-00000003.bin", []byte("three words"))
	writeLooseFile(t, root, "nested/00000004-00000005-00000006-00000007.bin", []byte("four words"))
	writeLooseFile(t, root, "not-a-tgi.txt", []byte("ignored, wrong name shape"))

	pkg := NewPackage(OpenOptions{})
	n, err := ImportDirectory(pkg, root, ImportOptions{})
	if err != nil {
		t.Fatalf("ImportDirectory: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d files, want 2", n)
	}

	got, err := pkg.GetBytesByTGI(ResourceKey{TypeID: 1, GroupID: 2, InstanceID: 3})
	if err != nil {
		t.Fatalf("GetBytesByTGI(3-word): %v", err)
	}
	if string(got) != "three words" {
		t.Fatalf("got %q, want %q", got, "three words")
	}

	got, err = pkg.GetBytesByTGI(ResourceKey{TypeID: 4, GroupID: 5, InstanceID: 6, InstanceHi: 7})
	if err != nil {
		t.Fatalf("GetBytesByTGI(4-word): %v", err)
	}
	if string(got) != "four words" {
		t.Fatalf("got %q, want %q", got, "four words")
	}
}

func TestImportDirectoryHonorsRules(t *testing.T) {
	root := t.TempDir()
	writeLooseFile(t, root, "include/00000001-00000002-00000003.bin", []byte("a"))
	writeLooseFile(t, root, "exclude/00000004-00000005-00000006.bin", []byte("b"))

	pkg := NewPackage(OpenOptions{})
	n, err := ImportDirectory(pkg, root, ImportOptions{
		Rules: []pathrules.Rule{
			{Action: pathrules.ActionInclude, Pattern: "include/**"},
		},
		MatcherOptions: pathrules.MatcherOptions{
			DefaultAction: pathrules.ActionExclude,
		},
	})
	if err != nil {
		t.Fatalf("ImportDirectory: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported %d files, want 1", n)
	}

	if _, ok := pkg.GetEntryByTGI(ResourceKey{TypeID: 1, GroupID: 2, InstanceID: 3}); !ok {
		t.Fatal("expected the included file to be staged")
	}
	if _, ok := pkg.GetEntryByTGI(ResourceKey{TypeID: 4, GroupID: 5, InstanceID: 6}); ok {
		t.Fatal("expected the excluded file to be skipped")
	}
}

func TestParseTGIFilenameRejectsMalformedNames(t *testing.T) {
	cases := []string{
		"too-few-words.bin",
		"00000001-00000002.bin",
		"0001-00000002-00000003.bin",
		"ZZZZZZZZ-00000002-00000003.bin",
	}

	for _, name := range cases {
		if _, ok := parseTGIFilename(name); ok {
			t.Fatalf("parseTGIFilename(%q) unexpectedly succeeded", name)
		}
	}
}
