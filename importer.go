// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

package dbpf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/woozymasta/pathrules"
)

// ImportOptions configures ImportDirectory.
type ImportOptions struct {
	// Rules selects which loose files under the directory are imported,
	// matched against each file's path relative to the import root.
	Rules []pathrules.Rule
	// MatcherOptions controls how Rules are compiled and matched.
	MatcherOptions pathrules.MatcherOptions
	// Compressed marks every imported resource as compressed; the bytes
	// staged are always the raw file contents, compression happens at
	// serialize time like any other ChangeSet addition.
	Compressed bool
}

// tgiHexWordLen is the digit width of one hex TGI word in the
// SimPE/s3pi loose-file naming convention:
// "TTTTTTTT-GGGGGGGG-IIIIIIII[-HHHHHHHH].ext".
const tgiHexWordLen = 8

// ImportDirectory walks root for loose files matching opts.Rules and
// whose base filename encodes a TGI, staging each as a ChangeSet
// addition on pkg. It returns the number of files imported.
func ImportDirectory(pkg *Package, root string, opts ImportOptions) (int, error) {
	matcher, err := newImportMatcher(opts.Rules, opts.MatcherOptions)
	if err != nil {
		return 0, err
	}

	imported := 0

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if matcher != nil && !matcher.Included(rel, false) {
			return nil
		}

		tgi, ok := parseTGIFilename(d.Name())
		if !ok {
			return nil
		}

		data, err := os.ReadFile(path) //nolint:gosec // path comes from a directory walk the caller chose to import
		if err != nil {
			return fmt.Errorf("import %s: %w", rel, err)
		}

		pkg.Changes().SetBytes(tgi, data, opts.Compressed)
		imported++

		return nil
	})
	if err != nil {
		return imported, err
	}

	return imported, nil
}

func newImportMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*pathrules.Matcher, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("compile import rules: %w", err)
	}

	return matcher, nil
}

// parseTGIFilename decodes "TTTTTTTT-GGGGGGGG-IIIIIIII[-HHHHHHHH]" (any
// trailing extension ignored) into a ResourceKey.
func parseTGIFilename(name string) (ResourceKey, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(stem, "-")
	if len(parts) != 3 && len(parts) != 4 {
		return ResourceKey{}, false
	}

	words := make([]uint32, len(parts))
	for i, part := range parts {
		if len(part) != tgiHexWordLen {
			return ResourceKey{}, false
		}

		v, err := strconv.ParseUint(part, 16, 32)
		if err != nil {
			return ResourceKey{}, false
		}

		words[i] = uint32(v)
	}

	key := ResourceKey{TypeID: words[0], GroupID: words[1], InstanceID: words[2]}
	if len(words) == 4 {
		key.InstanceHi = words[3]
	}

	return key, true
}
