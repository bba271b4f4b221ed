package memory

import (
	"context"
	"sync"

	"github.com/api-sage/bank-viewer/src/internal/domain"
)

// TokenStore is a single-slot credential holder. Set overwrites, last
// write wins; Get hands out a copy.
type TokenStore struct {
	mu         sync.RWMutex
	credential *domain.Credential
}

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

func (s *TokenStore) Get(_ context.Context) (domain.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.credential == nil {
		return domain.Credential{}, false
	}
	return *s.credential, true
}

func (s *TokenStore) Set(_ context.Context, credential domain.Credential) {
	s.mu.Lock()
	s.credential = &credential
	s.mu.Unlock()
}
