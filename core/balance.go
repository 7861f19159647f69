package core

import (
	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Balance is one bank position inside a LendingAccount's fixed slot
// array. At most one of AssetShares/LiabilityShares is nonzero at a
// time; a balance carrying both is an illegal state.
type Balance struct {
	BankId uuid.UUID `json:"bankId"`

	Active               bool            `json:"active"`
	AssetShares          decimal.Decimal `json:"assetShares"`
	LiabilityShares      decimal.Decimal `json:"liabilityShares"`
	EmissionsOutstanding decimal.Decimal `json:"emissionsOutstanding"`
	LastUpdate           int64           `json:"lastUpdate"`
}

func NewBalance(clk clock.Clock, bankId uuid.UUID) *Balance {
	return &Balance{
		BankId: bankId,

		Active:               true,
		AssetShares:          decimal.Zero,
		LiabilityShares:      decimal.Zero,
		EmissionsOutstanding: decimal.Zero,
		LastUpdate:           clk.Now().Unix(),
	}
}

func (b *Balance) Clone() *Balance {
	clone := *b
	return &clone
}

func (b *Balance) IsEmpty(side BalanceSide) bool {
	switch side {
	case BalanceSideAssets:
		return b.AssetShares.LessThan(EmptyBalanceThreshold)
	case BalanceSideLiabilities:
		return b.LiabilityShares.LessThan(EmptyBalanceThreshold)
	default:
		return true
	}
}

func (b *Balance) ChangeAssetShares(delta decimal.Decimal) error {
	assetShares := b.AssetShares.Add(delta)
	if assetShares.LessThan(decimal.Zero) {
		return ErrNegativeShares
	}
	b.AssetShares = assetShares
	return nil
}

func (b *Balance) ChangeLiabilityShares(delta decimal.Decimal) error {
	liabilityShares := b.LiabilityShares.Add(delta)
	if liabilityShares.LessThan(decimal.Zero) {
		return ErrNegativeShares
	}
	b.LiabilityShares = liabilityShares
	return nil
}

func (b *Balance) Close(clk clock.Clock) error {
	if b.EmissionsOutstanding.GreaterThanOrEqual(EmptyBalanceThreshold) {
		return ErrCannotCloseOutstandingEmissions
	}
	b.EmptyDeactivated(clk)
	return nil
}

// GetSide reports which side of the ledger this balance sits on.
// A balance with nonzero shares on both sides never should exist;
// callers that hit ErrIllegalBalanceState have a corrupted slot.
func (b *Balance) GetSide() (BalanceSide, error) {
	assetShares := b.AssetShares
	liabilityShares := b.LiabilityShares

	if assetShares.GreaterThan(ZeroAmountThreshold) && liabilityShares.GreaterThan(ZeroAmountThreshold) {
		return BalanceSideEmpty, ErrIllegalBalanceState
	}

	if assetShares.GreaterThanOrEqual(EmptyBalanceThreshold) {
		return BalanceSideAssets, nil
	}

	if liabilityShares.GreaterThanOrEqual(EmptyBalanceThreshold) {
		return BalanceSideLiabilities, nil
	}

	return BalanceSideEmpty, nil
}

func (b *Balance) EmptyDeactivated(clk clock.Clock) {
	b.Active = false
	b.AssetShares = decimal.Zero
	b.LiabilityShares = decimal.Zero
	b.EmissionsOutstanding = decimal.Zero
	b.LastUpdate = clk.Now().Unix()
}

func (b *Balance) ComputeUsdValue(bank *Bank, oraclePrice decimal.Decimal, requirementType RequirementType) (decimal.Decimal, decimal.Decimal) {
	assetsValue := bank.ComputeAssetUsdValue(oraclePrice, b.AssetShares, requirementType, Original)
	liabilitiesValue := bank.ComputeLiabilityUsdValue(oraclePrice, b.LiabilityShares, requirementType, Original)
	return assetsValue, liabilitiesValue
}

// GetUsdValueWithPriceBias is the conservative valuation used by the
// risk engine: assets priced at oracle-price-minus-confidence,
// liabilities at oracle-price-plus-confidence.
func (b *Balance) GetUsdValueWithPriceBias(bank *Bank, oraclePrice decimal.Decimal, requirementType RequirementType) (decimal.Decimal, decimal.Decimal) {
	assetsValue := bank.ComputeAssetUsdValue(oraclePrice, b.AssetShares, requirementType, Low)
	liabilitiesValue := bank.ComputeLiabilityUsdValue(oraclePrice, b.LiabilityShares, requirementType, High)
	return assetsValue, liabilitiesValue
}

func (b *Balance) ComputeQuantity(bank *Bank) (decimal.Decimal, decimal.Decimal) {
	assetsQuantity := bank.GetAssetQuantity(b.AssetShares)
	liabilitiesQuantity := bank.GetLiabilityQuantity(b.LiabilityShares)
	return assetsQuantity, liabilitiesQuantity
}

type BalanceIncreaseType uint8

const (
	BalanceIncreaseTypeAny                BalanceIncreaseType = 1 << 0
	BalanceIncreaseTypeRepayOnly          BalanceIncreaseType = 1 << 1
	BalanceIncreaseTypeDepositOnly        BalanceIncreaseType = 1 << 2
	BalanceIncreaseTypeBypassDepositLimit BalanceIncreaseType = 1 << 3
)

func (b BalanceIncreaseType) String() string {
	switch b {
	case BalanceIncreaseTypeAny:
		return "Any"
	case BalanceIncreaseTypeRepayOnly:
		return "RepayOnly"
	case BalanceIncreaseTypeDepositOnly:
		return "DepositOnly"
	case BalanceIncreaseTypeBypassDepositLimit:
		return "BypassDepositLimit"
	default:
		return "Unknown"
	}
}

type BalanceDecreaseType uint8

const (
	BalanceDecreaseTypeAny               BalanceDecreaseType = 1 << 0
	BalanceDecreaseTypeWithdrawOnly      BalanceDecreaseType = 1 << 1
	BalanceDecreaseTypeBorrowOnly        BalanceDecreaseType = 1 << 2
	BalanceDecreaseTypeBypassBorrowLimit BalanceDecreaseType = 1 << 3
)

func (b BalanceDecreaseType) String() string {
	switch b {
	case BalanceDecreaseTypeAny:
		return "Any"
	case BalanceDecreaseTypeWithdrawOnly:
		return "WithdrawOnly"
	case BalanceDecreaseTypeBorrowOnly:
		return "BorrowOnly"
	case BalanceDecreaseTypeBypassBorrowLimit:
		return "BypassBorrowLimit"
	default:
		return "Unknown"
	}
}
