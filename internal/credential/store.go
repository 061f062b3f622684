package credential

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/dtroode/gatekeeper/internal/model"
)

var _ model.CredentialStore = (*Store)(nil)

// Store keeps the credential set in memory and writes it through to a
// backend on every mutation. A mutation becomes visible only after the
// backend accepted the new mapping.
type Store struct {
	mu          sync.RWMutex
	backend     model.CredentialBackend
	credentials map[string]string
}

// NewStore loads the current mapping from backend.
func NewStore(ctx context.Context, backend model.CredentialBackend) (*Store, error) {
	s := &Store{backend: backend}

	credentials, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.credentials = credentials

	return s, nil
}

// Load reads the full mapping from the backend.
func (s *Store) Load(ctx context.Context) (map[string]string, error) {
	credentials, err := s.backend.Load(ctx)
	if err != nil {
		return nil, &model.StorageError{Op: "load", Err: err}
	}
	if credentials == nil {
		credentials = map[string]string{}
	}
	return credentials, nil
}

// Save writes the full mapping to the backend.
func (s *Store) Save(ctx context.Context, credentials map[string]string) error {
	if err := s.backend.Save(ctx, credentials); err != nil {
		return &model.StorageError{Op: "save", Err: err}
	}
	return nil
}

// Get returns the secret stored for username.
func (s *Store) Get(username string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	secret, ok := s.credentials[username]
	return secret, ok
}

// Len returns the number of stored credentials.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.credentials)
}

// Add stores a new credential. It fails with model.ErrAlreadyExists if username is taken.
func (s *Store) Add(ctx context.Context, username, secret string) error {
	return s.mutate(ctx, func(next map[string]string) error {
		if _, ok := next[username]; ok {
			return fmt.Errorf("failed to add %q: %w", username, model.ErrAlreadyExists)
		}
		next[username] = secret
		return nil
	})
}

// Update replaces the secret of an existing credential. It fails with model.ErrNotFound if username is absent.
func (s *Store) Update(ctx context.Context, username, secret string) error {
	return s.mutate(ctx, func(next map[string]string) error {
		if _, ok := next[username]; !ok {
			return fmt.Errorf("failed to update %q: %w", username, model.ErrNotFound)
		}
		next[username] = secret
		return nil
	})
}

// Remove deletes a credential. It fails with model.ErrNotFound if username is absent.
func (s *Store) Remove(ctx context.Context, username string) error {
	return s.mutate(ctx, func(next map[string]string) error {
		if _, ok := next[username]; !ok {
			return fmt.Errorf("failed to remove %q: %w", username, model.ErrNotFound)
		}
		delete(next, username)
		return nil
	})
}

func (s *Store) mutate(ctx context.Context, apply func(next map[string]string) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.credentials)
	if next == nil {
		next = map[string]string{}
	}
	if err := apply(next); err != nil {
		return err
	}

	if err := s.Save(ctx, next); err != nil {
		return err
	}

	s.credentials = next
	return nil
}
