package hashlinks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/xerrors"
)

const fileLockRetry = 10 * time.Millisecond

// FileIndex is an Index stored as a JSON object in a single file. Every
// operation holds a lock on a sibling ".lock" file, so processes sharing the
// file see atomic conditional puts.
type FileIndex struct {
	path string

	// flock.Flock does not exclude goroutines sharing it, mu does
	mu   sync.Mutex
	lock *flock.Flock
}

var _ Index = &FileIndex{}

// NewFileIndex returns an Index stored at path. The file is created on the first Put.
func NewFileIndex(path string) (*FileIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, xerrors.Errorf("could not create directory for %s: %w", path, err)
	}

	return &FileIndex{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Lookup returns the URL mapped to id.
func (i *FileIndex) Lookup(ctx context.Context, id string) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, err := i.lock.TryRLockContext(ctx, fileLockRetry); err != nil {
		return "", xerrors.Errorf("could not lock %s for reading: %w", i.path, err)
	}
	defer i.lock.Unlock()

	links, err := i.load()
	if err != nil {
		return "", err
	}

	longURL, ok := links[id]
	if !ok {
		return "", ErrNotFound
	}
	return longURL, nil
}

// Put maps id to longURL unless id is already taken by a different URL.
func (i *FileIndex) Put(ctx context.Context, id, longURL string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, err := i.lock.TryLockContext(ctx, fileLockRetry); err != nil {
		return xerrors.Errorf("could not lock %s for writing: %w", i.path, err)
	}
	defer i.lock.Unlock()

	links, err := i.load()
	if err != nil {
		return err
	}

	if existing, ok := links[id]; ok {
		if existing != longURL {
			return ErrCollision
		}
		return nil
	}

	links[id] = longURL
	return i.save(links)
}

func (i *FileIndex) load() (map[string]string, error) {
	links := map[string]string{}

	data, err := os.ReadFile(i.path)
	if err != nil {
		if os.IsNotExist(err) {
			return links, nil
		}
		return nil, xerrors.Errorf("could not read %s: %w", i.path, err)
	}
	if len(data) == 0 {
		return links, nil
	}

	if err := json.Unmarshal(data, &links); err != nil {
		return nil, xerrors.Errorf("could not parse %s: %w", i.path, err)
	}
	return links, nil
}

// save replaces the file atomically via a temporary file in the same directory.
func (i *FileIndex) save(links map[string]string) error {
	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return xerrors.Errorf("could not encode links: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(i.path), filepath.Base(i.path)+".*.tmp")
	if err != nil {
		return xerrors.Errorf("could not create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return xerrors.Errorf("could not write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return xerrors.Errorf("could not sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return xerrors.Errorf("could not close %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), i.path); err != nil {
		return xerrors.Errorf("could not replace %s: %w", i.path, err)
	}
	return nil
}
