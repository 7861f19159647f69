package memstore

import (
	"context"
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/domeliquid/lendingcore/core"
)

// AssetStore is an in-memory core.BankAssetStore keyed by asset ID.
type AssetStore struct {
	mu     sync.RWMutex
	assets map[string]*core.BankAsset
}

func NewAssetStore() *AssetStore {
	return &AssetStore{assets: make(map[string]*core.BankAsset)}
}

func (s *AssetStore) GetAsset(ctx context.Context, assetId string) (*core.BankAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[assetId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneAsset(a), nil
}

func (s *AssetStore) ListAllAssets(ctx context.Context) ([]*core.BankAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.BankAsset, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, cloneAsset(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetId < out[j].AssetId })
	return out, nil
}

func (s *AssetStore) UpsertAsset(ctx context.Context, asset *core.BankAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[asset.AssetId] = cloneAsset(asset)
	return nil
}
