// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/billsplit/internal/models"
)

// Store loads and saves the bill collection as one logical state.
// This abstraction allows swapping storage backends (SQLite, memory, etc.)
// without changing the collection layer.
type Store interface {
	// LoadSnapshot returns the persisted collection.
	// An empty store returns an empty snapshot and no error.
	LoadSnapshot(ctx context.Context) (models.Snapshot, error)

	// SaveSnapshot replaces the persisted collection with snap.
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error

	// Close releases any resources held by the store.
	Close() error
}
