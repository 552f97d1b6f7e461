// Package memory provides an in-memory transaction store.
//
// The store is safe for concurrent use and keeps the deterministic
// List order the contract promises. It backs tests and throwaway
// sessions where nothing should outlive the process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ledesma/centavo/internal/record"
	"github.com/ledesma/centavo/internal/store"
)

// Store keeps transactions in a mutex-guarded map.
type Store struct {
	mu  sync.RWMutex
	txs map[string]record.Transaction
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{txs: make(map[string]record.Transaction)}
}

// Create persists tx under a fresh identifier and returns it.
func (s *Store) Create(ctx context.Context, tx record.Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	tx.ID = id
	s.mu.Lock()
	s.txs[id] = tx
	s.mu.Unlock()
	return id, nil
}

// Delete removes the transaction with the given identifier.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.txs, id)
	return nil
}

// Get returns the transaction with the given identifier.
func (s *Store) Get(ctx context.Context, id string) (record.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return record.Transaction{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.txs[id]
	if !ok {
		return record.Transaction{}, store.ErrNotFound
	}
	return tx, nil
}

// List returns every stored transaction ordered by date, then
// identifier.
func (s *Store) List(ctx context.Context) ([]record.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]record.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		out = append(out, tx)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

// Close is a no-op for the in-memory backend.
func (s *Store) Close() error {
	return nil
}
