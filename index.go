package hashlinks

import (
	"context"

	"golang.org/x/xerrors"
)

// Index keeps track of the ID -> URL mapping.
//
// Put is a conditional write: it stores (id, longURL) if no entry exists for id,
// or if the existing entry already maps id to longURL. If id is taken by a
// different URL, Put returns an error matching ErrCollision and changes nothing.
// The check and the write must be atomic with respect to other Puts of the same id.
type Index interface {
	Lookup(ctx context.Context, id string) (longURL string, err error)
	Put(ctx context.Context, id, longURL string) error
}

var (
	ErrNotFound  = xerrors.New("not found in index")
	ErrCollision = xerrors.New("ID already maps to a different URL")
)
