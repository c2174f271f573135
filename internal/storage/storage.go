package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/eugenenazirov/deployconf/internal/record"
)

var (
	// ErrNotResolved indicates the record has not been stored yet.
	ErrNotResolved = errors.New("configuration record has not been resolved")
	// ErrAlreadyResolved indicates an attempt to replace the stored record.
	ErrAlreadyResolved = errors.New("configuration record is already resolved")
)

// Storage provides access to the configuration record resolved at startup.
type Storage interface {
	GetRecord() (record.Record, error)
	ResolvedAt() time.Time
}

// MemoryStorage keeps the record in memory. It accepts exactly one record and
// hands out copies, so the stored value never changes after startup.
type MemoryStorage struct {
	mu         sync.RWMutex
	rec        *record.Record
	resolvedAt time.Time
}

// NewMemoryStorage returns an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Put stores rec. It fails if a record was already stored.
func (s *MemoryStorage) Put(rec record.Record, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec != nil {
		return ErrAlreadyResolved
	}
	cloned := rec.Clone()
	s.rec = &cloned
	s.resolvedAt = at
	return nil
}

// GetRecord returns a copy of the stored record.
func (s *MemoryStorage) GetRecord() (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rec == nil {
		return record.Record{}, ErrNotResolved
	}
	return s.rec.Clone(), nil
}

// ResolvedAt reports when the record was stored, or the zero time.
func (s *MemoryStorage) ResolvedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolvedAt
}
