package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/domeliquid/lendingcore/core"
)

// BankStore is an in-memory core.BankStore keyed by bank ID.
type BankStore struct {
	mu    sync.RWMutex
	banks map[uuid.UUID]*core.Bank
}

func NewBankStore() *BankStore {
	return &BankStore{banks: make(map[uuid.UUID]*core.Bank)}
}

func (s *BankStore) CreateBank(ctx context.Context, bank *core.Bank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.banks[bank.Id]; exists {
		return gorm.ErrDuplicatedKey
	}
	s.banks[bank.Id] = cloneBank(bank)
	return nil
}

func (s *BankStore) UpsertBank(ctx context.Context, bank *core.Bank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banks[bank.Id] = cloneBank(bank)
	return nil
}

func (s *BankStore) ListBank(ctx context.Context) ([]*core.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.Bank, 0, len(s.banks))
	for _, b := range s.banks {
		out = append(out, cloneBank(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out, nil
}

func (s *BankStore) GetBankById(ctx context.Context, bankId uuid.UUID) (*core.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.banks[bankId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneBank(b), nil
}

func (s *BankStore) ListBankByGroupId(ctx context.Context, groupId uuid.UUID) ([]*core.Bank, error) {
	return s.GetBanksByGroupId(ctx, groupId)
}

func (s *BankStore) GetBanksByGroupId(ctx context.Context, groupId uuid.UUID) ([]*core.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.Bank
	for _, b := range s.banks {
		if b.GroupId == groupId {
			out = append(out, cloneBank(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out, nil
}

func (s *BankStore) GetBankByName(ctx context.Context, bankName string) (*core.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.banks {
		if b.Name == bankName {
			return cloneBank(b), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *BankStore) GetBankByAssetId(ctx context.Context, assetId string) (*core.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.banks {
		if b.AssetId == assetId {
			return cloneBank(b), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *BankStore) UpdateBankConfig(ctx context.Context, bankId uuid.UUID, bankConfig *core.BankConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.banks[bankId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.BankConfig = *bankConfig
	return nil
}

func (s *BankStore) UpdateBank(ctx context.Context, bankId uuid.UUID, bank *core.Bank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banks[bankId]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.banks[bankId] = cloneBank(bank)
	return nil
}
