package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]*Identity
	byWallet map[string]string
}

// Compile-time interface compliance check
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]*Identity),
		byWallet: make(map[string]string),
	}
}

func walletKey(realm Realm, address string) string {
	return string(realm) + ":" + strings.ToLower(address)
}

func (s *MemoryStore) FindByWallet(_ context.Context, realm Realm, address string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byWallet[walletKey(realm, address)]
	if !ok {
		return nil, nil
	}
	found := *s.byID[id]
	return &found, nil
}

func (s *MemoryStore) Create(_ context.Context, in NewIdentity) (*Identity, error) {
	in, err := prepare(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := walletKey(in.Realm, in.WalletAddress)
	if _, exists := s.byWallet[key]; exists {
		return nil, ErrDuplicateWallet
	}

	ts := now()
	created := &Identity{
		ID:             uuid.NewString(),
		Realm:          in.Realm,
		WalletAddress:  in.WalletAddress,
		DisplayName:    in.DisplayName,
		GithubUsername: in.GithubUsername,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	s.byID[created.ID] = created
	s.byWallet[key] = created.ID

	out := *created
	return &out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	out := *found
	return &out, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
