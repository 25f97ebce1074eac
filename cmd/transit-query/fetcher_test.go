package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-query/config"
	"github.com/theoremus-urban-solutions/transit-query/engine"
	"github.com/theoremus-urban-solutions/transit-query/gtfs"
	"github.com/theoremus-urban-solutions/transit-query/internal/testfeed"
)

func TestFetcher_LoadFromURL(t *testing.T) {
	zipped := testfeed.Network().Zip(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gtfs.zip" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(zipped)
	}))
	defer srv.Close()

	f := newFetcher()
	d, err := f.load(context.Background(), config.FeedConfig{Name: "city", URL: srv.URL + "/gtfs.zip"})
	require.NoError(t, err)
	assert.Len(t, d.Stops, 6)

	_, err = f.load(context.Background(), config.FeedConfig{Name: "city", URL: srv.URL + "/missing.zip"})
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestFetcher_SnapshotLifecycle(t *testing.T) {
	dir := testfeed.Minimal().WriteDir(t)
	feed := config.FeedConfig{Name: "city", Path: dir, SnapshotPath: filepath.Join(t.TempDir(), "feed.snapshot")}
	f := newFetcher()

	loaded, err := f.loadInitial(context.Background(), feed)
	require.NoError(t, err)
	_, err = os.Stat(feed.SnapshotPath)
	require.NoError(t, err)

	// The second start restores the snapshot instead of parsing CSV.
	restored, err := f.loadInitial(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, loaded.Version, restored.Version)

	// A corrupt snapshot falls back to the source.
	require.NoError(t, os.WriteFile(feed.SnapshotPath, []byte("junk"), 0o644))
	fresh, err := f.loadInitial(context.Background(), feed)
	require.NoError(t, err)
	assert.NotEqual(t, loaded.Version, fresh.Version)
}

func TestFetcher_LoadErrorNamesFeed(t *testing.T) {
	_, err := newFetcher().load(context.Background(), config.FeedConfig{Name: "city", Path: filepath.Join(t.TempDir(), "nope")})
	var le *gtfs.LoadError
	assert.ErrorAs(t, err, &le)
	assert.ErrorContains(t, err, "feed city")
}

func TestRunQuery(t *testing.T) {
	e := engine.New(engine.Options{})
	e.Publish(context.Background(), testfeed.Network().Load(t))
	ctx := context.Background()

	out, err := runQuery(ctx, e, "stop_coordinates", queryArgs{stopID: "A"})
	require.NoError(t, err)
	assert.Equal(t, engine.StopLocation{StopID: "A", Name: "Alpha"}, out)

	out, err = runQuery(ctx, e, "nearest_stops", queryArgs{radius: ptr(1.5)})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	_, err = runQuery(ctx, e, "teleport", queryArgs{})
	assert.Error(t, err)
}

func ptr(v float64) *float64 { return &v }
