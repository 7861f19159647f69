package memstore

import (
	"context"
	"sync"

	"github.com/domeliquid/lendingcore/core"
)

// BankAccountWrapperStore is an in-memory core.BankAccountWrapperStore.
// It appends every storage call rather than keying by the wrapper's
// (Balance, Bank) pair: unlike Bank/Account/Group, a BankAccountWrapper
// snapshot is an audit write, not a row with a stable identity to
// overwrite.
type BankAccountWrapperStore struct {
	mu           sync.RWMutex
	wrappers     []*core.BankAccountWrapper
	liquidations []*core.LiquidationResult
}

func NewBankAccountWrapperStore() *BankAccountWrapperStore {
	return &BankAccountWrapperStore{}
}

func (s *BankAccountWrapperStore) StorageBankAccount(ctx context.Context, bankAccount *core.BankAccountWrapper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *bankAccount
	s.wrappers = append(s.wrappers, &cp)
	return nil
}

func (s *BankAccountWrapperStore) StorageLiquidationResult(ctx context.Context, result *core.LiquidationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *result
	s.liquidations = append(s.liquidations, &cp)
	return nil
}

// Wrappers returns every stored snapshot, most recent last.
func (s *BankAccountWrapperStore) Wrappers() []*core.BankAccountWrapper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.BankAccountWrapper, len(s.wrappers))
	copy(out, s.wrappers)
	return out
}

// Liquidations returns every stored liquidation result, most recent last.
func (s *BankAccountWrapperStore) Liquidations() []*core.LiquidationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.LiquidationResult, len(s.liquidations))
	copy(out, s.liquidations)
	return out
}
