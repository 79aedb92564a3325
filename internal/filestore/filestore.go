// Copyright 2025 The axfor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package filestore keeps one flat text record per item under a per-kind
// directory. Records are rewritten in full on every save.
package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pollStore/internal/poll"
	"pollStore/pkg/log"

	"go.uber.org/multierr"
)

const recordExt = ".txt"

var (
	// ErrMalformedRecord is returned when a record cannot be decoded.
	ErrMalformedRecord = errors.New("filestore: malformed record")

	// ErrInvalidID is returned for ids that cannot be used as a record name.
	ErrInvalidID = errors.New("filestore: invalid record id")
)

// Options tunes how records are written.
type Options struct {
	// Fsync flushes every record to stable storage before it is renamed into place.
	Fsync bool
}

// FileStore persists items as <dataDir>/<kind>/<id>.txt.
type FileStore struct {
	dataDir string
	fsync   bool
}

// Open creates the data directory and both kind namespaces if absent.
func Open(dataDir string, opts Options) (*FileStore, error) {
	for _, kind := range poll.Kinds {
		if err := os.MkdirAll(filepath.Join(dataDir, kind.String()), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s namespace: %w", kind, err)
		}
	}
	return &FileStore{dataDir: dataDir, fsync: opts.Fsync}, nil
}

// DataDir returns the root directory of the store.
func (fs *FileStore) DataDir() string {
	return fs.dataDir
}

// Dir returns the namespace directory of a kind.
func (fs *FileStore) Dir(kind poll.Kind) string {
	return filepath.Join(fs.dataDir, kind.String())
}

// Path returns the record path of an item.
func (fs *FileStore) Path(kind poll.Kind, id string) string {
	return filepath.Join(fs.Dir(kind), id+recordExt)
}

// Exists reports whether a record named id is present in the kind's
// namespace, including records that could not be loaded.
func (fs *FileStore) Exists(kind poll.Kind, id string) bool {
	_, err := os.Lstat(fs.Path(kind, id))
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// Save rewrites the record of an item. The record is written to a temporary
// file and renamed over the previous one. A rewritten record keeps the
// modification time of the record it replaces, so load order stays the
// creation order.
func (fs *FileStore) Save(kind poll.Kind, it *poll.Item) error {
	if it.ID == "" || strings.ContainsAny(it.ID, `/\`) || strings.HasPrefix(it.ID, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidID, it.ID)
	}

	dir := fs.Dir(kind)
	path := fs.Path(kind, it.ID)
	var created time.Time
	if info, err := os.Stat(path); err == nil {
		created = info.ModTime()
	}

	tmp, err := os.CreateTemp(dir, "."+it.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp record: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(EncodeRecord(it)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write record %s: %w", it.ID, err)
	}
	if fs.fsync {
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("failed to sync record %s: %w", it.ID, err)
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close record %s: %w", it.ID, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace record %s: %w", it.ID, err)
	}
	if !created.IsZero() {
		if err := os.Chtimes(path, time.Now(), created); err != nil {
			return fmt.Errorf("failed to keep creation time of record %s: %w", it.ID, err)
		}
	}
	return nil
}

type loadedRecord struct {
	item    *poll.Item
	modTime time.Time
}

// LoadAll reads every record of a kind, oldest first (by modification time,
// which Save keeps at creation time, then id). Records that cannot be read or decoded are skipped; their errors
// are combined into the returned error, which does not invalidate the items.
func (fs *FileStore) LoadAll(kind poll.Kind) ([]*poll.Item, error) {
	entries, err := os.ReadDir(fs.Dir(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", kind, err)
	}

	var (
		loaded []loadedRecord
		errs   error
	)
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasSuffix(name, recordExt) || strings.HasPrefix(name, ".") {
			continue
		}
		id := strings.TrimSuffix(name, recordExt)
		path := filepath.Join(fs.Dir(kind), name)

		info, err := e.Info()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("stat %s: %w", path, err))
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %s: %w", path, err))
			continue
		}
		it, err := DecodeRecord(id, data)
		if err != nil {
			log.Warn("Skipping unreadable record",
				log.Kind(kind.String()),
				log.String("path", path),
				log.Err(err),
				log.Component("filestore"))
			errs = multierr.Append(errs, err)
			continue
		}
		loaded = append(loaded, loadedRecord{item: it, modTime: info.ModTime()})
	}

	sort.SliceStable(loaded, func(i, j int) bool {
		if !loaded[i].modTime.Equal(loaded[j].modTime) {
			return loaded[i].modTime.Before(loaded[j].modTime)
		}
		return loaded[i].item.ID < loaded[j].item.ID
	})

	items := make([]*poll.Item, len(loaded))
	for i, r := range loaded {
		items[i] = r.item
	}
	return items, errs
}
