// SPDX-License-Identifier: MIT
// Source: github.com/ashrafmajdee/dbpf

/*
Package dbpf provides read, write, and in-memory mutation operations for
DBPF (Database-Packed File) archives, the container format used by
Maxis titles from SimCity 4 through The Sims 3. A Package parses the
on-disk header and index across the format's four known header
versions, exposes resources by composite TGI (Type/Group/Instance) key,
transparently decompresses payloads listed in the archive's compression
directory, and layers an in-memory ChangeSet overlay of deletions and
additions over the parsed originals until WriteToFile serialises the
merged view back to disk.

# Reading

Open an archive and look up resources by key:

	pkg, err := dbpf.Open("CustomContent.package", dbpf.OpenOptions{})
	if err != nil {
	    return err
	}
	defer pkg.Dispose()

	for _, e := range pkg.Entries() {
	    raw, err := pkg.GetBytes(e, true)
	    if err != nil {
	        return err
	    }
	    _ = raw
	}

Resources are looked up by TGI directly when the caller already knows
the key it wants:

	tgi := dbpf.ResourceKey{TypeID: 0x545AC67A, GroupID: 0, InstanceID: 0x1234}
	raw, err := pkg.GetBytesByTGI(tgi)

# Typed assets

Register a Codec once per resource type to get decoded objects instead
of raw bytes:

	dbpf.RegisterCodec(myStringTableCodec{})
	asset, err := pkg.GetAssetByTGI(tgi)

# Mutating

Edits go through the package's ChangeSet and take effect immediately in
Entries(), but nothing is written to disk until WriteToFile:

	pkg.Changes().SetBytes(dbpf.ResourceKey{
	    TypeID:     0xDEADBEEF,
	    GroupID:    dbpf.Local,
	    InstanceID: 0x00000001,
	}, []byte{0x01, 0x02, 0x03}, true) // compressed=true

	pkg.Changes().Delete(otherTGI)

	if err := pkg.WriteToFile(dbpf.WriteOptions{}); err != nil {
	    return err
	}

Deleting every resource and asking for delete-if-empty removes the file
instead of writing an empty archive:

	pkg.Changes().DeleteAll()
	if err := pkg.WriteToFile(dbpf.WriteOptions{DeleteIfEmpty: true}); err != nil {
	    return err
	}

# Building from scratch

	pkg := dbpf.NewPackage(dbpf.OpenOptions{})
	pkg.SetFilePath("NewPackage.package")
	pkg.Changes().SetBytes(tgi, payload, false)
	err := pkg.WriteToFile(dbpf.WriteOptions{})

# Bulk import and prefetch

ImportDirectory loads loose files named by TGI-hex convention
(TTTTTTTT-GGGGGGGG-IIIIIIII.ext) into the ChangeSet, filtered by
github.com/woozymasta/pathrules rules:

	n, err := dbpf.ImportDirectory(pkg, "LooseFiles/", dbpf.ImportOptions{
	    Rules: []pathrules.Rule{{Action: pathrules.ActionInclude, Pattern: "*"}},
	})

Prefetch warms the payload of every merged entry concurrently, useful
before a bulk GetAsset pass over a large archive:

	err := pkg.Prefetch(dbpf.PrefetchOptions{MaxWorkers: 4})

# Providers

A Provider receives resource-map and cache notifications for every
overlay mutation; production code supplies the real cross-package
resource map, tests can inject dbpf.NewRecordingProvider():

	pkg, err := dbpf.Open("x.package", dbpf.OpenOptions{
	    Provider: dbpf.NewRecordingProvider(),
	})
*/
package dbpf
