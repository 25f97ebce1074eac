package gtfs

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteSnapshot gob-encodes a loaded dataset so a later start can skip CSV
// parsing. Only the owned collections are written; indexes are rebuilt by
// ReadSnapshot.
func WriteSnapshot(w io.Writer, d *Dataset) error {
	if err := gob.NewEncoder(w).Encode(d); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a dataset written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Dataset, error) {
	d := newDataset()
	if err := gob.NewDecoder(r).Decode(d); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	d.buildIndexes()
	return d, nil
}

// WriteSnapshotFile writes the snapshot to path via a temporary file so a
// crash never leaves a truncated snapshot behind.
func WriteSnapshotFile(d *Dataset, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	bw := bufio.NewWriter(tmp)
	if err := WriteSnapshot(bw, d); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadSnapshotFile reads a snapshot written by WriteSnapshotFile.
func ReadSnapshotFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(bufio.NewReader(f))
}
