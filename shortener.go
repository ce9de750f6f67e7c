package hashlinks

import (
	"context"
	"log"
	"os"

	"golang.org/x/xerrors"
)

// Shortener assigns short IDs to URLs and resolves them again.
type Shortener struct {
	index  Index
	logger *log.Logger
	quiet  bool

	// computeID is ComputeID outside of tests
	computeID func(target, salt string) string
}

// NewShortener returns a Shortener storing links in index i and logging to l.
// If l is nil, a default like the log package's default logger
// will be used, which means logs will appear on os.Stderr.
func NewShortener(i Index, l *log.Logger) *Shortener {
	if l == nil {
		l = log.New(os.Stderr, "", log.LstdFlags)
	}

	return &Shortener{
		index:     i,
		logger:    l,
		computeID: ComputeID,
	}
}

// SetQuiet turns informational log lines off or on. Collisions and errors are always logged.
func (s *Shortener) SetQuiet(quiet bool) {
	s.quiet = quiet
}

// Assign stores longURL and returns its ID. Assigning the same URL again
// returns the same ID.
//
// If the hashed ID already belongs to a different URL, the colliding ID is used
// as salt for the next candidate. The probe sequence depends only on longURL and
// the IDs taken along the way, so concurrent writers of the same URL end up on
// the same ID. There is no limit on the number of probes.
func (s *Shortener) Assign(ctx context.Context, longURL string) (string, error) {
	salt := ""
	for {
		id := s.computeID(longURL, salt)

		err := s.index.Put(ctx, id, longURL)
		if err == nil {
			if !s.quiet {
				s.logger.Println("assigned", id, "to", longURL)
			}
			return id, nil
		}

		if !xerrors.Is(err, ErrCollision) {
			s.logger.Println("error saving", longURL, "as", id+":", err)
			return "", xerrors.Errorf("error adding URL to index: %w", err)
		}

		s.logger.Printf("collision on %s for %s; retrying", id, longURL)

		if err := ctx.Err(); err != nil {
			return "", xerrors.Errorf("gave up assigning ID to %s: %w", longURL, err)
		}

		salt = id
	}
}

// Resolve returns the URL mapped to id, or an error matching ErrNotFound.
// IDs ComputeID cannot produce are never looked up.
func (s *Shortener) Resolve(ctx context.Context, id string) (string, error) {
	if !ValidID(id) {
		return "", ErrNotFound
	}

	longURL, err := s.index.Lookup(ctx, id)
	if err != nil {
		if xerrors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		s.logger.Println("error resolving", id+":", err)
		return "", xerrors.Errorf("error looking up ID %s: %w", id, err)
	}

	if !s.quiet {
		s.logger.Println("resolved", id, "to", longURL)
	}
	return longURL, nil
}
