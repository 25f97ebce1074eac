/*
Package gtfs loads a static GTFS feed into an immutable in-memory Dataset.

The loader reads from any fs.FS, so an unpacked directory, a local zip or a
zip fetched into memory all go through the same code:

	d, err := gtfs.LoadPath(ctx, "/data/gtfs")        // directory or .zip
	d, err := gtfs.LoadZipBytes(ctx, downloadedBytes)

Column names are the contract, not positions. A missing required column, an
unparseable value or a duplicate key fails the load with a *LoadError naming
the file, line and column:

	var le *gtfs.LoadError
	if errors.As(err, &le) {
	    log.Printf("bad feed: %s line %d", le.File, le.Line)
	}

# Clocks

Stop-time clocks are normalized to zero-padded HH:MM:SS at load time and may
exceed 24:00:00 for service running past midnight. Because of that
normalization every clock comparison in this module is a plain string
comparison.

# Dangling references

Stop-times that point at unknown trips or stops, and trips that point at
unknown routes, are kept. CheckIntegrity reports them; the query layer skips
them when joining.

# Snapshots

A Dataset is never mutated after loading, so it can be published through an
atomic pointer and swapped wholesale on reload while in-flight readers finish
against the old one. WriteSnapshotFile and
ReadSnapshotFile persist a parsed dataset with gob to skip CSV parsing on the
next start.
*/
package gtfs
