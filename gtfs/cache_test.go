package gtfs_test

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-query/gtfs"
	"github.com/theoremus-urban-solutions/transit-query/internal/testfeed"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	d := testfeed.Network().Load(t)

	var buf bytes.Buffer
	require.NoError(t, gtfs.WriteSnapshot(&buf, d))
	got, err := gtfs.ReadSnapshot(&buf)
	require.NoError(t, err)

	assert.Equal(t, d.Version, got.Version)
	assert.True(t, d.LoadedAt.Equal(got.LoadedAt))
	assert.Equal(t, d.Counts(), got.Counts())
	assert.Equal(t, d.Stops, got.Stops)
	assert.Equal(t, d.Calendars, got.Calendars)
	// Derived indexes are rebuilt on decode.
	assert.Equal(t, d.StopTimesAtStop("C"), got.StopTimesAtStop("C"))
	assert.Equal(t, d.TripIDsForRoute("R2"), got.TripIDsForRoute("R2"))
}

func TestSnapshotFile(t *testing.T) {
	d := testfeed.Minimal().Load(t)
	path := filepath.Join(t.TempDir(), "feed.snapshot")

	require.NoError(t, gtfs.WriteSnapshotFile(d, path))
	got, err := gtfs.ReadSnapshotFile(path)
	require.NoError(t, err)
	assert.Equal(t, d.Version, got.Version)
	assert.Len(t, got.StopTimesAtStop("S1"), 1)

	_, err = gtfs.ReadSnapshotFile(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadSnapshot_Garbage(t *testing.T) {
	_, err := gtfs.ReadSnapshot(bytes.NewReader([]byte("not a snapshot")))
	assert.Error(t, err)
}
