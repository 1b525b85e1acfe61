package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
)

var (
	_ core.PrincipalStore  = (*InMemoryPrincipalStore)(nil)
	_ core.PrincipalLister = (*InMemoryPrincipalStore)(nil)
)

// InMemoryPrincipalStore keeps credentials in a map. It is meant for development
// setups and tests where users are seeded from the configuration file.
type InMemoryPrincipalStore struct {
	mu    sync.RWMutex
	users map[string]core.Credential
}

func NewInMemoryPrincipalStore() *InMemoryPrincipalStore {
	return &InMemoryPrincipalStore{
		users: make(map[string]core.Credential),
	}
}

// Put adds or replaces the credential for cred.Username.
func (s *InMemoryPrincipalStore) Put(cred core.Credential) error {
	if cred.Username == "" {
		return fmt.Errorf("username must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[cred.Username] = cred.Clone()
	return nil
}

func (s *InMemoryPrincipalStore) LoadByUsername(_ context.Context, username string) (*core.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.users[username]
	if !ok {
		return nil, core.ErrPrincipalNotFound
	}
	c := cred.Clone()
	return &c, nil
}

func (s *InMemoryPrincipalStore) List(_ context.Context) ([]core.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	creds := make([]core.Credential, 0, len(s.users))
	for _, c := range s.users {
		creds = append(creds, c.Clone())
	}
	sort.Slice(creds, func(i, j int) bool {
		return creds[i].Username < creds[j].Username
	})
	return creds, nil
}
