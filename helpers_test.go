package hashlinks

import (
	"context"
	"io/ioutil"
	"log"
	"sync"
)

// Both URLs hash to 47d90svq.
const (
	collidingA = "https://example.com/425790"
	collidingB = "https://example.com/1023374"
)

// discardLogger drops everything, including collision warnings.
var discardLogger = log.New(ioutil.Discard, "", 0)

func newTestShortener(i Index) *Shortener {
	s := NewShortener(i, discardLogger)
	s.SetQuiet(true)
	return s
}

func newTestDispatcher(s *Shortener) *Dispatcher {
	d := NewDispatcher(s, discardLogger)
	d.SetQuiet(true)
	return d
}

// countingIndex records calls made to the wrapped Index.
type countingIndex struct {
	Index

	mu      sync.Mutex
	lookups int
	puts    []string
}

func (c *countingIndex) Lookup(ctx context.Context, id string) (string, error) {
	c.mu.Lock()
	c.lookups++
	c.mu.Unlock()
	return c.Index.Lookup(ctx, id)
}

func (c *countingIndex) Put(ctx context.Context, id, longURL string) error {
	c.mu.Lock()
	c.puts = append(c.puts, id)
	c.mu.Unlock()
	return c.Index.Put(ctx, id, longURL)
}

func (c *countingIndex) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookups + len(c.puts)
}

// failingIndex fails every operation with err.
type failingIndex struct {
	err error
}

func (f failingIndex) Lookup(context.Context, string) (string, error) { return "", f.err }
func (f failingIndex) Put(context.Context, string, string) error     { return f.err }
