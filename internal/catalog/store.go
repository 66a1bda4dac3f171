package catalog

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrNoIndex is returned by Store operations before any index is published.
var ErrNoIndex = errors.New("catalog index not loaded")

// Store publishes the current Index to concurrent readers. Replacing the index
// is a single pointer swap, so a reader holding an *Index keeps a consistent
// snapshot for as long as it needs it.
type Store struct {
	current atomic.Pointer[Index]
}

// NewStore returns a Store publishing idx, which may be nil.
func NewStore(idx *Index) *Store {
	s := &Store{}
	if idx != nil {
		s.current.Store(idx)
	}
	return s
}

// Index returns the current index, or nil if none has been published.
func (s *Store) Index() *Index {
	return s.current.Load()
}

// Swap publishes idx and returns the previous index.
func (s *Store) Swap(idx *Index) *Index {
	return s.current.Swap(idx)
}

// Reload builds a new index with load and publishes it only if load succeeds.
// On error the current index stays in place.
func (s *Store) Reload(ctx context.Context, load func(context.Context) (*Index, error)) error {
	idx, err := load(ctx)
	if err != nil {
		return err
	}
	if idx == nil {
		return ErrNoIndex
	}
	s.current.Store(idx)
	return nil
}
