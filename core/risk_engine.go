package core

import (
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// RiskEngine is a point-in-time view over one account's positions,
// each already resolved to its bank and a live price feed. Every
// health/liquidation/bankruptcy check is a pure function of this
// snapshot, so callers build a fresh RiskEngine after any balance
// mutation rather than mutating one in place.
type RiskEngine struct {
	Account               *LendingAccount
	BankAccountsWithPrice []*BankAccountWithPriceFeed
}

func NewRiskEngine(account *LendingAccount, banks map[uuid.UUID]*Bank, bankAccounts []*BankAccountWrapper, priceFeedMgr PriceAdapterMgr) (*RiskEngine, error) {
	if account.GetFlag(InFlashloanFlag) {
		return nil, ErrAccountInFlashloan
	}
	return NewRiskEngineNoFlashloanCheck(account, banks, bankAccounts, priceFeedMgr)
}

func NewRiskEngineNoFlashloanCheck(account *LendingAccount, banks map[uuid.UUID]*Bank, bankAccounts []*BankAccountWrapper, priceFeedMgr PriceAdapterMgr) (*RiskEngine, error) {
	bankAccountsWithPrice, err := LoadBankAccountWithPriceFeeds(account, banks, bankAccounts, priceFeedMgr)
	if err != nil {
		return nil, err
	}
	return &RiskEngine{
		Account:               account,
		BankAccountsWithPrice: bankAccountsWithPrice,
	}, nil
}

// CheckAccountInitHealth re-derives a fresh snapshot (picking up any
// pending bankAccounts overlay) and checks it against the Initial
// requirement. A no-op inside a flashloan bracket: health is only
// enforced once the bracket closes.
func (r *RiskEngine) CheckAccountInitHealth(banks map[uuid.UUID]*Bank, bankAccounts []*BankAccountWrapper, priceFeedMgr PriceAdapterMgr) error {
	if r.Account.GetFlag(InFlashloanFlag) {
		return nil
	}

	noFlashloanCheck, err := NewRiskEngineNoFlashloanCheck(r.Account, banks, bankAccounts, priceFeedMgr)
	if err != nil {
		return err
	}

	return noFlashloanCheck.CheckAccountHealth(Initial)
}

func (r *RiskEngine) GetAccountHealthComponents(requirementType RequirementType) (decimal.Decimal, decimal.Decimal, error) {
	totalAssets := decimal.Zero
	totalLiabilities := decimal.Zero
	for _, a := range r.BankAccountsWithPrice {
		assets, liabilities, err := a.CalcWeightedAssetsAndLiabsValues(requirementType)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		totalAssets = totalAssets.Add(assets)
		totalLiabilities = totalLiabilities.Add(liabilities)
	}
	return totalAssets, totalLiabilities, nil
}

func (r *RiskEngine) GetAccountHealth(requirementType RequirementType) (decimal.Decimal, error) {
	totalAssets, totalLiabilities, err := r.GetAccountHealthComponents(requirementType)
	if err != nil {
		return decimal.Zero, err
	}
	return totalAssets.Sub(totalLiabilities), nil
}

func (r *RiskEngine) CheckAccountHealth(requirementType RequirementType) error {
	totalAssets, totalLiabilities, err := r.GetAccountHealthComponents(requirementType)
	if err != nil {
		return err
	}
	if !totalAssets.GreaterThanOrEqual(totalLiabilities) {
		return ErrAccountUnhealthy
	}
	return r.CheckAccountRiskTiers()
}

func (r *RiskEngine) findBalance(bankId uuid.UUID) *BankAccountWithPriceFeed {
	for _, a := range r.BankAccountsWithPrice {
		if a.Balance.BankId == bankId {
			return a
		}
	}
	return nil
}

func (r *RiskEngine) CheckPreLiquidationConditionAndGetAccountHealth(bankId uuid.UUID) (decimal.Decimal, error) {
	if r.Account.GetFlag(InFlashloanFlag) {
		return decimal.Zero, ErrAccountInFlashloan
	}

	liabilityBankBalance := r.findBalance(bankId)
	if liabilityBankBalance == nil {
		return decimal.Zero, ErrBalanceNotFound
	}
	if liabilityBankBalance.IsEmpty(BalanceSideLiabilities) {
		return decimal.Zero, ErrIllegalLiquidation
	}
	if !liabilityBankBalance.IsEmpty(BalanceSideAssets) {
		return decimal.Zero, ErrIllegalLiquidation
	}

	totalAssets, totalLiabilities, err := r.GetAccountHealthComponents(Maintenance)
	if err != nil {
		return decimal.Zero, err
	}

	accountHealth := totalAssets.Sub(totalLiabilities)
	if !accountHealth.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrAccountNotUnhealthy
	}
	return accountHealth, nil
}

// CheckPostLiquidationConditionAndGetAccountHealth verifies a
// liquidation did what liquidations are supposed to do:
//  1. the liquidated liability balance still exists (full seizure
//     happens through bankruptcy, not liquidation);
//  2. the account was below maintenance before the liquidator acted,
//     and remains at or below it afterward;
//  3. health strictly improved — a liquidator can't repay a liability
//     and walk away having made the account worse off.
func (r *RiskEngine) CheckPostLiquidationConditionAndGetAccountHealth(bankId uuid.UUID, preLiquidationHealth decimal.Decimal) (decimal.Decimal, error) {
	if r.Account.GetFlag(InFlashloanFlag) {
		return decimal.Zero, ErrAccountInFlashloan
	}

	liabilityBankBalance := r.findBalance(bankId)
	if liabilityBankBalance == nil {
		return decimal.Zero, ErrBalanceNotFound
	}
	if liabilityBankBalance.IsEmpty(BalanceSideLiabilities) {
		return decimal.Zero, ErrIllegalLiquidation
	}
	if !liabilityBankBalance.IsEmpty(BalanceSideAssets) {
		return decimal.Zero, ErrIllegalLiquidation
	}

	totalAssets, totalLiabilities, err := r.GetAccountHealthComponents(Maintenance)
	if err != nil {
		return decimal.Zero, err
	}

	accountHealth := totalAssets.Sub(totalLiabilities)
	if !accountHealth.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrAccountNotUnhealthy
	}

	if accountHealth.LessThanOrEqual(preLiquidationHealth) {
		return decimal.Zero, ErrAccountIllegalPostLiquidationState
	}

	return accountHealth, nil
}

// CheckAccountBankrupt requires the account to actually be insolvent
// (assets below liabilities) AND carrying real outstanding debt —
// an account with zero liabilities can never be bankrupt no matter
// how small its assets are.
func (r *RiskEngine) CheckAccountBankrupt(log Log) error {
	if r.Account.GetFlag(InFlashloanFlag) {
		return ErrAccountInFlashloan
	}

	totalAssets, totalLiabilities, err := r.GetAccountHealthComponents(Equity)
	if err != nil {
		return err
	}

	log.Debug().Msgf("totalAssets=%s totalLiabilities=%s", totalAssets, totalLiabilities)

	if !totalAssets.LessThan(totalLiabilities) {
		return ErrAccountNotBankrupt
	}

	if totalAssets.GreaterThan(BankruptThreshold) {
		return ErrAccountNotBankrupt
	}

	if !totalLiabilities.GreaterThan(ZeroAmountThreshold) {
		return ErrAccountNotBankrupt
	}

	return nil
}

// CheckAccountRiskTiers enforces isolated-tier exclusivity: a
// liability against an Isolated bank can never share an account with
// any other liability balance, collateral or not.
func (r *RiskEngine) CheckAccountRiskTiers() error {
	var balancesWithLiabilities []*BankAccountWithPriceFeed
	for _, a := range r.BankAccountsWithPrice {
		if !a.Balance.IsEmpty(BalanceSideLiabilities) {
			balancesWithLiabilities = append(balancesWithLiabilities, a)
		}
	}

	isInIsolatedRiskTier := false
	for _, a := range balancesWithLiabilities {
		if a.Bank.BankConfig.RiskTier == Isolated {
			isInIsolatedRiskTier = true
		}
	}
	if isInIsolatedRiskTier && len(balancesWithLiabilities) != 1 {
		return ErrIsolatedAccountIllegalState
	}
	return nil
}
