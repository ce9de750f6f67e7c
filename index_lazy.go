package hashlinks

import (
	"context"
	"sync"
)

// LazyIndex opens its backing Index on first use and reuses it afterwards.
// Concurrent first calls share a single open. A failed open is not
// remembered: the next call tries again.
type LazyIndex struct {
	open func() (Index, error)

	mu      sync.Mutex
	backend Index
}

var _ Index = &LazyIndex{}

// NewLazyIndex returns an Index that calls open when first needed, and again
// after every failed attempt until one succeeds.
func NewLazyIndex(open func() (Index, error)) *LazyIndex {
	return &LazyIndex{open: open}
}

// get returns the backing Index, opening it if necessary.
func (i *LazyIndex) get() (Index, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.backend != nil {
		return i.backend, nil
	}

	backend, err := i.open()
	if err != nil {
		return nil, err
	}
	i.backend = backend
	return backend, nil
}

// Lookup opens the backing Index if needed and looks up id in it.
func (i *LazyIndex) Lookup(ctx context.Context, id string) (string, error) {
	backend, err := i.get()
	if err != nil {
		return "", err
	}
	return backend.Lookup(ctx, id)
}

// Put opens the backing Index if needed and puts the link into it.
func (i *LazyIndex) Put(ctx context.Context, id, longURL string) error {
	backend, err := i.get()
	if err != nil {
		return err
	}
	return backend.Put(ctx, id, longURL)
}
