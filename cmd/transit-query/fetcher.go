package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/transit-query/config"
	"github.com/theoremus-urban-solutions/transit-query/gtfs"
)

// fetcher loads a configured feed from disk or over HTTP.
type fetcher struct {
	httpClient *http.Client
}

func newFetcher() *fetcher {
	return &fetcher{httpClient: &http.Client{Timeout: 2 * time.Minute}}
}

// fetch downloads a zipped feed.
func (f *fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// load parses the feed from its source and refreshes the snapshot file when
// one is configured. Path wins over URL.
func (f *fetcher) load(ctx context.Context, feed config.FeedConfig) (*gtfs.Dataset, error) {
	var d *gtfs.Dataset
	var err error
	if feed.Path != "" {
		d, err = gtfs.LoadPath(ctx, feed.Path)
	} else {
		var data []byte
		if data, err = f.fetch(ctx, feed.URL); err != nil {
			return nil, err
		}
		d, err = gtfs.LoadZipBytes(ctx, data)
	}
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", feed.Name, err)
	}
	if feed.SnapshotPath != "" {
		if err := gtfs.WriteSnapshotFile(d, feed.SnapshotPath); err != nil {
			log.Printf("feed %s: snapshot not written: %v", feed.Name, err)
		}
	}
	return d, nil
}

// loadInitial prefers the snapshot file for a fast start and falls back to
// the source.
func (f *fetcher) loadInitial(ctx context.Context, feed config.FeedConfig) (*gtfs.Dataset, error) {
	if feed.SnapshotPath != "" {
		d, err := gtfs.ReadSnapshotFile(feed.SnapshotPath)
		if err == nil {
			log.Printf("feed %s: restored snapshot %s", feed.Name, d.Version)
			return d, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("feed %s: ignoring unreadable snapshot: %v", feed.Name, err)
		}
	}
	return f.load(ctx, feed)
}
