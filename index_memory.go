package hashlinks

import (
	"context"
	"sync"
)

// MemoryIndex is an Index held in process memory. Its contents are lost on exit.
type MemoryIndex struct {
	mu    sync.RWMutex
	links map[string]string
}

var _ Index = &MemoryIndex{}

// NewMemoryIndex returns an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{links: map[string]string{}}
}

// Lookup returns the URL mapped to id.
func (i *MemoryIndex) Lookup(_ context.Context, id string) (string, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	longURL, ok := i.links[id]
	if !ok {
		return "", ErrNotFound
	}
	return longURL, nil
}

// Put maps id to longURL unless id is already taken by a different URL.
func (i *MemoryIndex) Put(_ context.Context, id, longURL string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if existing, ok := i.links[id]; ok && existing != longURL {
		return ErrCollision
	}
	i.links[id] = longURL
	return nil
}

// Len returns the number of stored links.
func (i *MemoryIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.links)
}
