// Package resource implements the collection-store engine shared by every
// server-backed domain: one cached collection, a "current" record slot, a
// loading flag and an error slot, synchronized over CRUD calls. Domain
// stores configure it with a base path, an identifier accessor and their
// fallback error messages, then layer domain operations on top through Do.
package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/apetrei/examsched/core"
)

// Messages are the per-domain fallback error strings, used when the server
// does not supply a message of its own.
type Messages struct {
	FetchAll string
	FetchOne string
	Create   string
	Update   string
	Remove   string
}

// Options configure a Store for one domain.
type Options[T any] struct {
	// Path is the base resource path, e.g. "/api/schedule".
	Path string
	// ID extracts the server-assigned identifier from a record.
	ID func(T) int
	// Messages hold the domain's fallback error strings.
	Messages Messages
}

// Store caches one server-backed collection. The collection is never
// mutated before the server has confirmed the operation. Operations are not
// serialized: two concurrent calls on the same store interleave their
// loading/error writes in completion order (the last to finish wins), which
// matches the synchronous-UI heritage of this design.
type Store[T any] struct {
	mu   sync.RWMutex
	api  core.APIClient
	path string
	id   func(T) int
	msgs Messages

	items   []T
	current *T
	loading bool
	err     string
}

func NewStore[T any](api core.APIClient, opts Options[T]) *Store[T] {
	return &Store[T]{api: api, path: opts.Path, id: opts.ID, msgs: opts.Messages}
}

// Items returns a snapshot copy of the cached collection.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len avoids the copy when only the size is needed.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Current returns the detail-view record, if one has been fetched.
func (s *Store[T]) Current() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		var zero T
		return zero, false
	}
	return *s.current, true
}

// Find returns the cached record with the given identifier.
func (s *Store[T]) Find(id int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if s.id(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (s *Store[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the message of the most recently completed failed operation;
// empty when it succeeded.
func (s *Store[T]) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// FetchAll replaces the local collection wholesale with the server's.
func (s *Store[T]) FetchAll(ctx context.Context) ([]T, error) {
	var fetched []T
	err := s.Do(s.msgs.FetchAll, func() error {
		if err := s.api.Get(ctx, s.path, &fetched); err != nil {
			return err
		}
		s.SetAll(fetched)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fetched, nil
}

// FetchOne requests a single record and replaces the "current" slot.
func (s *Store[T]) FetchOne(ctx context.Context, id int) (T, error) {
	var fetched T
	err := s.Do(s.msgs.FetchOne, func() error {
		if err := s.api.Get(ctx, fmt.Sprintf("%s/%d", s.path, id), &fetched); err != nil {
			return err
		}
		s.mu.Lock()
		s.current = &fetched
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return fetched, nil
}

// Create sends the payload and, once the server confirms, appends the
// returned record (carrying its server-assigned identifier).
func (s *Store[T]) Create(ctx context.Context, payload interface{}) (T, error) {
	var created T
	err := s.Do(s.msgs.Create, func() error {
		if err := s.api.Post(ctx, s.path, payload, &created); err != nil {
			return err
		}
		s.mu.Lock()
		s.items = append(s.items, created)
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return created, nil
}

// Update sends the payload and replaces the matching local record with the
// server's representation. A record unknown locally is silently ignored.
func (s *Store[T]) Update(ctx context.Context, id int, payload interface{}) (T, error) {
	var updated T
	err := s.Do(s.msgs.Update, func() error {
		if err := s.api.Put(ctx, fmt.Sprintf("%s/%d", s.path, id), payload, &updated); err != nil {
			return err
		}
		s.mu.Lock()
		for i, it := range s.items {
			if s.id(it) == s.id(updated) {
				s.items[i] = updated
				break
			}
		}
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

// Remove deletes the record server-side, then drops it from the cache.
func (s *Store[T]) Remove(ctx context.Context, id int) error {
	return s.Do(s.msgs.Remove, func() error {
		if err := s.api.Delete(ctx, fmt.Sprintf("%s/%d", s.path, id)); err != nil {
			return err
		}
		s.mu.Lock()
		kept := s.items[:0]
		for _, it := range s.items {
			if s.id(it) != id {
				kept = append(kept, it)
			}
		}
		s.items = kept
		s.mu.Unlock()
		return nil
	})
}

// Do wraps fn in the shared request envelope: loading set and error cleared
// at entry, loading dropped on every exit, a failure recorded under the
// domain fallback and re-raised to the caller. Domain extension operations
// go through here so they share the exact CRUD contract.
func (s *Store[T]) Do(fallback string, fn func() error) error {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	err := fn()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = core.ErrorMessage(err, fallback)
	}
	return err
}

// SetAll replaces the cached collection.
func (s *Store[T]) SetAll(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

// Each runs fn over every cached record under the write lock; extension
// operations use it for server-confirmed in-place mutation.
func (s *Store[T]) Each(fn func(*T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		fn(&s.items[i])
	}
}

// Client exposes the transport for domain extension operations.
func (s *Store[T]) Client() core.APIClient { return s.api }
