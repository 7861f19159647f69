package core

import (
	"context"

	"github.com/shopspring/decimal"
)

type (
	BankAssetStore interface {
		GetAsset(ctx context.Context, assetId string) (*BankAsset, error)
		ListAllAssets(ctx context.Context) ([]*BankAsset, error)
		UpsertAsset(ctx context.Context, asset *BankAsset) error
	}

	// BankAsset is the mint/decimals registry entry a Bank.AssetId
	// resolves to: everything the protocol needs to know about the
	// underlying token that isn't already tracked as bank state
	// (share values, vaults, risk weights).
	BankAsset struct {
		AssetId   string          `json:"assetId,omitempty"`
		ChainId   string          `json:"chainId,omitempty"`
		Symbol    string          `json:"symbol,omitempty"`
		Name      string          `json:"name,omitempty"`
		IconUrl   string          `json:"iconUrl,omitempty"`
		Precision int32           `json:"precision,omitempty"`
		Dust      decimal.Decimal `json:"dust,omitempty"`
	}
)
