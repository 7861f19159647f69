package core

import (
	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
)

// LiquidationBalances is a pre/post snapshot of the four balances a
// liquidation touches: the liquidator's and liquidatee's positions on
// both the asset bank and the liability bank.
type LiquidationBalances struct {
	LiquidatorAssetBalance     *Balance `json:"liquidatorAssetBalance"`
	LiquidatorLiabilityBalance *Balance `json:"liquidatorLiabilityBalance"`
	LiquidateeAssetBalance     *Balance `json:"liquidateeAssetBalance"`
	LiquidateeLiabilityBalance *Balance `json:"liquidateeLiabilityBalance"`
}

// LiquidationResult is the full audit record of one liquidation call,
// suitable for persisting via BankAccountWrapperStore.StorageLiquidationResult.
type LiquidationResult struct {
	PreBalances          *LiquidationBalances `json:"preBalances"`
	PostBalances         *LiquidationBalances `json:"postBalances"`
	LiquidateePreHealth  decimal.Decimal      `json:"liquidateePreHealth"`
	LiquidateePostHealth decimal.Decimal      `json:"liquidateePostHealth"`

	AssetBank     *Bank `json:"assetBank"`
	LiabilityBank *Bank `json:"liabilityBank"`

	LiquidatorAssetBalance     *BankAccountWrapper `json:"liquidatorAssetBalance"`
	LiquidatorLiabilityBalance *BankAccountWrapper `json:"liquidatorLiabilityBalance"`
	LiquidateeAssetBalance     *BankAccountWrapper `json:"liquidateeAssetBalance"`
	LiquidateeLiabilityBalance *BankAccountWrapper `json:"liquidateeLiabilityBalance"`

	InsuranceFundFee decimal.Decimal `json:"insuranceFundFee"`
}

func cloneBalance(b *Balance) *Balance {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}

// LiquidateLendingAccount repays assetQuantity worth of the liquidatee's
// collateral against its liabilityBank debt. The exchange is struck at
// two different discounts off the oracle price:
//
//	liabQuantityLiquidator = value the liquidator pays, discounted only
//	                         by LiquidatorLiquidationFee (the liquidator
//	                         buys the seized collateral cheap)
//	liabQuantityFinal      = value the liquidatee is credited toward its
//	                         debt, discounted by LiquidatorLiquidationFee
//	                         AND InsuranceLiquidationFee
//	insuranceFundFee       = liabQuantityLiquidator - liabQuantityFinal,
//	                         always >= 0
//
// The liquidatee's collateral falls by assetQuantity and its debt falls
// by liabQuantityFinal; the liquidator's collateral rises by
// assetQuantity and its debt rises by liabQuantityLiquidator. The gap
// between what the liquidator pays in and what the liquidatee is
// credited funds the insurance vault. Callers are expected to have
// already confirmed pre-liquidation unhealthiness via
// RiskEngine.CheckPreLiquidationConditionAndGetAccountHealth, and must
// run CheckPostLiquidationConditionAndGetAccountHealth against the
// liquidatee plus CheckAccountHealth(Initial) against the liquidator
// immediately after this returns.
func LiquidateLendingAccount(log Log, clk clock.Clock, assetBank, liabilityBank *Bank, liquidatorAccount, liquidateeAccount *LendingAccount, assetQuantity, assetPrice, liabPrice decimal.Decimal) (*LiquidationResult, error) {
	if assetQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidTransfer
	}
	if liquidatorAccount.Id == liquidateeAccount.Id {
		return nil, ErrIllegalLiquidation
	}

	liquidateeAssetBalance := liquidateeAccount.FindBalance(assetBank.Id)
	if liquidateeAssetBalance == nil {
		return nil, ErrBalanceNotFound
	}
	liquidateeLiabilityBalance := liquidateeAccount.FindBalance(liabilityBank.Id)
	if liquidateeLiabilityBalance == nil {
		return nil, ErrBalanceNotFound
	}

	preBalances := &LiquidationBalances{
		LiquidateeAssetBalance:     cloneBalance(liquidateeAssetBalance),
		LiquidateeLiabilityBalance: cloneBalance(liquidateeLiabilityBalance),
	}
	if b := liquidatorAccount.FindBalance(assetBank.Id); b != nil {
		preBalances.LiquidatorAssetBalance = cloneBalance(b)
	}
	if b := liquidatorAccount.FindBalance(liabilityBank.Id); b != nil {
		preBalances.LiquidatorLiabilityBalance = cloneBalance(b)
	}

	liquidatorDiscount := One.Sub(LiquidatorLiquidationFee)
	finalDiscount := One.Sub(LiquidatorLiquidationFee.Add(InsuranceLiquidationFee))

	assetValueLiquidator, err := CalcValue(assetQuantity, assetPrice, &liquidatorDiscount)
	if err != nil {
		return nil, err
	}
	liabQuantityLiquidator, err := CalcAmount(assetValueLiquidator, liabPrice)
	if err != nil {
		return nil, err
	}

	assetValueFinal, err := CalcValue(assetQuantity, assetPrice, &finalDiscount)
	if err != nil {
		return nil, err
	}
	liabQuantityFinal, err := CalcAmount(assetValueFinal, liabPrice)
	if err != nil {
		return nil, err
	}

	insuranceFundFee := liabQuantityLiquidator.Sub(liabQuantityFinal)
	if insuranceFundFee.LessThan(decimal.Zero) {
		return nil, ErrMathError
	}

	log.Info().Msgf("liquidation: asset_bank=%s liab_bank=%s asset_qty=%s liab_liquidator=%s liab_final=%s insurance_fee=%s",
		assetBank.Id, liabilityBank.Id, assetQuantity, liabQuantityLiquidator, liabQuantityFinal, insuranceFundFee)

	liquidatorLiabWrapper, err := FindOrCreateBankAccountWrapper(clk, liabilityBank, liquidatorAccount)
	if err != nil {
		return nil, err
	}
	if err := liquidatorLiabWrapper.Borrow(log, liabQuantityLiquidator); err != nil {
		return nil, err
	}

	liquidatorAssetWrapper, err := FindOrCreateBankAccountWrapper(clk, assetBank, liquidatorAccount)
	if err != nil {
		return nil, err
	}
	if err := liquidatorAssetWrapper.Deposit(log, assetQuantity); err != nil {
		return nil, err
	}

	liquidateeAssetWrapper := NewBankAccountWrapper(liquidateeAssetBalance, assetBank, WithClock(clk))
	if err := liquidateeAssetWrapper.DecreaseBalanceInLiquidation(log, assetQuantity); err != nil {
		return nil, err
	}

	liquidateeLiabWrapper := NewBankAccountWrapper(liquidateeLiabilityBalance, liabilityBank, WithClock(clk))
	if err := liquidateeLiabWrapper.IncreaseBalanceInLiquidation(log, liabQuantityFinal); err != nil {
		return nil, err
	}

	if err := liabilityBank.TransferFromLiquidityToInsurance(insuranceFundFee); err != nil {
		return nil, err
	}

	postBalances := &LiquidationBalances{
		LiquidateeAssetBalance:     cloneBalance(liquidateeAssetBalance),
		LiquidateeLiabilityBalance: cloneBalance(liquidateeLiabilityBalance),
		LiquidatorAssetBalance:     cloneBalance(liquidatorAssetWrapper.Balance),
		LiquidatorLiabilityBalance: cloneBalance(liquidatorLiabWrapper.Balance),
	}

	return &LiquidationResult{
		PreBalances:                preBalances,
		PostBalances:               postBalances,
		AssetBank:                  assetBank,
		LiabilityBank:              liabilityBank,
		LiquidatorAssetBalance:     liquidatorAssetWrapper,
		LiquidatorLiabilityBalance: liquidatorLiabWrapper,
		LiquidateeAssetBalance:     liquidateeAssetWrapper,
		LiquidateeLiabilityBalance: liquidateeLiabWrapper,
		InsuranceFundFee:           insuranceFundFee,
	}, nil
}
