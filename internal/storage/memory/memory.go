// Package memory provides an in-memory implementation of storage.Store.
package memory

import (
	"context"
	"sync"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps the last saved snapshot in memory.
type Store struct {
	mu   sync.RWMutex
	snap models.Snapshot
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// LoadSnapshot returns a copy of the last saved snapshot.
func (s *Store) LoadSnapshot(_ context.Context) (models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone(), nil
}

// SaveSnapshot stores a copy of snap, so later changes by the caller are not seen.
func (s *Store) SaveSnapshot(_ context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.Clone()
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
