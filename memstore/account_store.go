package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/domeliquid/lendingcore/core"
)

// AccountStore is an in-memory core.AccountStore keyed by account ID.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*core.LendingAccount
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[uuid.UUID]*core.LendingAccount)}
}

func (s *AccountStore) GetAccountById(ctx context.Context, accountId uuid.UUID) (*core.LendingAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneAccount(a), nil
}

func (s *AccountStore) ListAccountByPubkey(ctx context.Context, groupId uuid.UUID, pubkey string) ([]*core.LendingAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.LendingAccount
	for _, a := range s.accounts {
		if a.GroupId == groupId && a.PubKey == pubkey {
			out = append(out, cloneAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (s *AccountStore) GetAccountByPubkey(ctx context.Context, groupId uuid.UUID, pubkey string, index uint8) (*core.LendingAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.GroupId == groupId && a.PubKey == pubkey && a.Index == index {
			return cloneAccount(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *AccountStore) CreateAccount(ctx context.Context, account *core.LendingAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.Id]; exists {
		return gorm.ErrDuplicatedKey
	}
	s.accounts[account.Id] = cloneAccount(account)
	return nil
}

func (s *AccountStore) UpsertAccount(ctx context.Context, account *core.LendingAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.Id] = cloneAccount(account)
	return nil
}
