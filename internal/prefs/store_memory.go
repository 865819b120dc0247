package prefs

import (
	"context"
	"sync"

	"storefront/internal/currency"
)

// MemoryStore keeps preferences in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]Preferences
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]Preferences)}
}

func (s *MemoryStore) Load(_ context.Context, deviceID string) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[deviceID]; ok {
		return p, nil
	}
	return Defaults(), nil
}

func (s *MemoryStore) SetCurrency(_ context.Context, deviceID string, c currency.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.get(deviceID)
	p.Currency = c
	s.prefs[deviceID] = p
	return nil
}

func (s *MemoryStore) SetLanguage(_ context.Context, deviceID string, l Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.get(deviceID)
	p.Language = l
	s.prefs[deviceID] = p
	return nil
}

// get must be called with the write lock held.
func (s *MemoryStore) get(deviceID string) Preferences {
	if p, ok := s.prefs[deviceID]; ok {
		return p
	}
	return Defaults()
}
