package credentials

import (
	"context"
	"sync"

	"storefront/pkg/sentinel"
)

// MemoryStore keeps credentials in process memory. The default for
// single-process desktop shells; sessions do not survive a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]Credential)}
}

func (s *MemoryStore) Save(_ context.Context, deviceID string, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[deviceID] = cred
	return nil
}

func (s *MemoryStore) Load(_ context.Context, deviceID string) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[deviceID]
	if !ok {
		return Credential{}, sentinel.ErrNotFound
	}
	return cred, nil
}

func (s *MemoryStore) Delete(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, deviceID)
	return nil
}
