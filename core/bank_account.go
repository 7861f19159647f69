package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type (
	BankAccountWrapperStore interface {
		StorageBankAccount(ctx context.Context, bankAccount *BankAccountWrapper) error
		StorageLiquidationResult(ctx context.Context, result *LiquidationResult) error
	}

	// BankAccountWrapper pairs a single Balance slot with the Bank it
	// belongs to, giving every deposit/repay/withdraw/borrow method a
	// self-contained place to apply share math on both sides at once.
	BankAccountWrapper struct {
		clk clock.Clock `json:"-"`

		Balance *Balance `json:"balance"`
		Bank    *Bank    `json:"bank"`
	}
)

type OptionFunc func(ba *BankAccountWrapper)

func WithClock(clk clock.Clock) OptionFunc {
	return func(ba *BankAccountWrapper) {
		ba.clk = clk
	}
}

func NewBankAccountWrapper(balance *Balance, bank *Bank, opts ...OptionFunc) *BankAccountWrapper {
	ba := &BankAccountWrapper{
		Balance: balance,
		Bank:    bank,
		clk:     clock.New(),
	}
	for _, opt := range opts {
		opt(ba)
	}
	return ba
}

// FindBankAccountWrapper only fills the balance; it never creates one.
func FindBankAccountWrapper(bank *Bank, account *LendingAccount, opts ...OptionFunc) (*BankAccountWrapper, error) {
	balance := account.FindBalance(bank.Id)
	if balance == nil {
		return nil, ErrBalanceNotFound
	}
	return NewBankAccountWrapper(balance, bank, opts...), nil
}

func FindOrCreateBankAccountWrapper(clk clock.Clock, bank *Bank, account *LendingAccount) (*BankAccountWrapper, error) {
	balance, err := account.FindOrCreateBalance(clk, bank.Id)
	if err != nil {
		return nil, err
	}
	return NewBankAccountWrapper(balance, bank, WithClock(clk)), nil
}

func (ba *BankAccountWrapper) Deposit(log Log, amount decimal.Decimal) error {
	return ba.IncreaseBalanceInternal(log, amount, BalanceIncreaseTypeAny)
}

func (ba *BankAccountWrapper) Repay(log Log, amount decimal.Decimal) error {
	return ba.IncreaseBalanceInternal(log, amount, BalanceIncreaseTypeRepayOnly)
}

func (ba *BankAccountWrapper) Withdraw(log Log, amount decimal.Decimal) error {
	return ba.DecreaseBalanceInternal(log, amount, BalanceDecreaseTypeWithdrawOnly)
}

func (ba *BankAccountWrapper) Borrow(log Log, amount decimal.Decimal) error {
	return ba.DecreaseBalanceInternal(log, amount, BalanceDecreaseTypeAny)
}

// ------------ Hybrid operations for seamless repay+deposit / withdraw+borrow

func (ba *BankAccountWrapper) IncreaseBalance(log Log, amount decimal.Decimal) error {
	return ba.IncreaseBalanceInternal(log, amount, BalanceIncreaseTypeAny)
}

func (ba *BankAccountWrapper) IncreaseBalanceInLiquidation(log Log, amount decimal.Decimal) error {
	return ba.IncreaseBalanceInternal(log, amount, BalanceIncreaseTypeBypassDepositLimit)
}

func (ba *BankAccountWrapper) DecreaseBalanceInLiquidation(log Log, amount decimal.Decimal) error {
	return ba.DecreaseBalanceInternal(log, amount, BalanceDecreaseTypeBypassBorrowLimit)
}

// WithdrawAll closes out the asset side entirely. The share-to-amount
// conversion truncates to 8dp; the truncated dust is swept into the
// insurance fund rather than silently vanishing.
func (ba *BankAccountWrapper) WithdrawAll(log Log) (decimal.Decimal, error) {
	currentTimestamp := ba.clk.Now().Unix()
	if err := ba.ClaimEmissions(log, currentTimestamp); err != nil {
		return decimal.Zero, err
	}

	balance := ba.Balance
	bank := ba.Bank

	if err := bank.AssertOperationalMode(false); err != nil {
		return decimal.Zero, err
	}

	totalAssetShares := balance.AssetShares
	totalLiabilityShares := balance.LiabilityShares

	currentLiabilityAmount, err := bank.GetLiabilityAmount(totalLiabilityShares)
	if err != nil {
		return decimal.Zero, err
	}

	if !currentLiabilityAmount.LessThan(EmptyBalanceThreshold) {
		return decimal.Zero, ErrNoAssetFound
	}

	currentAssetAmount, err := bank.GetAssetAmount(totalAssetShares)
	if err != nil {
		return decimal.Zero, err
	}

	log.Debug().Msgf("withdrawing all: %s", currentAssetAmount)

	if !currentAssetAmount.GreaterThan(ZeroAmountThreshold) {
		return decimal.Zero, ErrNoAssetFound
	}

	if err := balance.Close(ba.clk); err != nil {
		return decimal.Zero, err
	}

	if err := bank.ChangeAssetShares(totalAssetShares.Neg(), false); err != nil {
		return decimal.Zero, err
	}

	if err := bank.CheckUtilizationRatio(); err != nil {
		return decimal.Zero, err
	}

	splWithdrawAmount := currentAssetAmount.Truncate(8)
	bank.CollectedInsuranceFeesOutstanding = bank.CollectedInsuranceFeesOutstanding.Add(currentAssetAmount.Sub(splWithdrawAmount))

	return splWithdrawAmount, nil
}

// RepayAll closes out the liability side entirely. The amount is
// rounded up to 5dp so the borrower never walks away owing a dust
// remainder; the rounding difference is credited to insurance fees.
func (ba *BankAccountWrapper) RepayAll(log Log) (decimal.Decimal, error) {
	currentTimestamp := ba.clk.Now().Unix()
	if err := ba.ClaimEmissions(log, currentTimestamp); err != nil {
		return decimal.Zero, err
	}

	balance := ba.Balance
	bank := ba.Bank

	if err := bank.AssertOperationalMode(false); err != nil {
		return decimal.Zero, err
	}

	totalAssetAmount := balance.AssetShares
	totalLiabilityAmount := balance.LiabilityShares

	currentLiabilityAmount, err := bank.GetLiabilityAmount(totalLiabilityAmount)
	if err != nil {
		return decimal.Zero, err
	}

	if !currentLiabilityAmount.GreaterThan(ZeroAmountThreshold) {
		return decimal.Zero, ErrNoLiabilityFound
	}

	currentAssetAmount, err := bank.GetAssetAmount(totalAssetAmount)
	if err != nil {
		return decimal.Zero, err
	}

	if !currentAssetAmount.LessThan(EmptyBalanceThreshold) {
		return decimal.Zero, ErrNoAssetFound
	}

	if err := balance.Close(ba.clk); err != nil {
		return decimal.Zero, err
	}

	if err := bank.ChangeLiabilityShares(totalLiabilityAmount.Neg(), false); err != nil {
		return decimal.Zero, err
	}

	splDepositAmount := currentLiabilityAmount.RoundCeil(5)
	insuranceFeeIncrease := splDepositAmount.Sub(currentLiabilityAmount)
	bank.CollectedInsuranceFeesOutstanding = bank.CollectedInsuranceFeesOutstanding.Add(insuranceFeeIncrease)

	if bank.LiquidityVault.IsPositive() {
		bank.LiquidityVault = bank.LiquidityVault.Sub(insuranceFeeIncrease)
		bank.NormalizeLiquidityVault()
	}

	if bank.LiquidityVault.IsNegative() {
		return decimal.Zero, ErrBankLiquidityDeficit
	}

	return splDepositAmount, nil
}

func (ba *BankAccountWrapper) CloseBalance(log Log) error {
	currentTimestamp := ba.clk.Now().Unix()
	if err := ba.ClaimEmissions(log, currentTimestamp); err != nil {
		return err
	}

	balance := ba.Balance
	bank := ba.Bank

	currentLiabilityAmount, err := bank.GetLiabilityAmount(balance.LiabilityShares)
	if err != nil {
		return err
	}
	currentAssetAmount, err := bank.GetAssetAmount(balance.AssetShares)
	if err != nil {
		return err
	}

	if !currentLiabilityAmount.LessThan(EmptyBalanceThreshold) {
		log.Error().Msgf("balance has existing debt")
		return ErrIllegalBalanceState
	}

	if !currentAssetAmount.LessThan(EmptyBalanceThreshold) {
		log.Error().Msgf("balance has existing asset")
		return ErrIllegalBalanceState
	}

	return balance.Close(ba.clk)
}

func (ba *BankAccountWrapper) IncreaseBalanceInternal(log Log, balanceDelta decimal.Decimal, operationType BalanceIncreaseType) error {
	currentTimestamp := ba.clk.Now().Unix()
	if err := ba.ClaimEmissions(log, currentTimestamp); err != nil {
		return err
	}

	balance := ba.Balance
	bank := ba.Bank

	currentLiabilityShares := balance.LiabilityShares
	currentLiabilityAmount, err := bank.GetLiabilityAmount(currentLiabilityShares)
	if err != nil {
		return err
	}
	liabilityAmountDecrease := decimal.Min(currentLiabilityAmount, balanceDelta)
	assetAmountIncrease := decimal.Max(balanceDelta.Sub(currentLiabilityAmount), decimal.Zero)

	switch operationType {
	case BalanceIncreaseTypeRepayOnly:
		if !assetAmountIncrease.IsZero() {
			return ErrOperationRepayOnly
		}
	case BalanceIncreaseTypeDepositOnly:
		if !liabilityAmountDecrease.IsZero() {
			return ErrOperationDepositOnly
		}
	}

	if err := bank.AssertOperationalMode(assetAmountIncrease.GreaterThan(ZeroAmountThreshold)); err != nil {
		return err
	}

	assetSharesIncrease, err := bank.GetAssetShares(assetAmountIncrease)
	if err != nil {
		return err
	}
	if err := balance.ChangeAssetShares(assetSharesIncrease); err != nil {
		return err
	}
	if err := bank.ChangeAssetShares(assetSharesIncrease, operationType == BalanceIncreaseTypeBypassDepositLimit); err != nil {
		return err
	}

	// Repayments burn liability shares rounded down; repaying the whole
	// outstanding amount burns every liability share the balance holds.
	liabilitySharesDecrease := liabilityAmountDecrease.Div(bank.LiabilityShareValue).Truncate(9)
	if liabilityAmountDecrease.Equal(currentLiabilityAmount) {
		liabilitySharesDecrease = currentLiabilityShares
	}
	if err := balance.ChangeLiabilityShares(liabilitySharesDecrease.Neg()); err != nil {
		return err
	}
	if err := bank.ChangeLiabilityShares(liabilitySharesDecrease.Neg(), true); err != nil {
		return err
	}

	return bank.CheckUtilizationRatio()
}

func (ba *BankAccountWrapper) DecreaseBalanceInternal(log Log, balanceDelta decimal.Decimal, operationType BalanceDecreaseType) error {
	log.Info().Msgf("balance decrease: %s (type %s)", balanceDelta, operationType.String())
	currentTimestamp := ba.clk.Now().Unix()
	if err := ba.ClaimEmissions(log, currentTimestamp); err != nil {
		return err
	}

	balance := ba.Balance
	bank := ba.Bank

	currentAssetShares := balance.AssetShares
	currentAssetAmount, err := bank.GetAssetAmount(currentAssetShares)
	if err != nil {
		return err
	}

	assetAmountDecrease := decimal.Min(currentAssetAmount, balanceDelta)
	liabilityAmountIncrease := decimal.Max(balanceDelta.Sub(currentAssetAmount), decimal.Zero)

	switch operationType {
	case BalanceDecreaseTypeWithdrawOnly:
		if !liabilityAmountIncrease.IsZero() {
			return ErrOperationWithdrawOnly
		}
	case BalanceDecreaseTypeBorrowOnly:
		if !assetAmountDecrease.IsZero() {
			return ErrOperationBorrowOnly
		}
	}

	if err := bank.AssertOperationalMode(liabilityAmountIncrease.GreaterThan(ZeroAmountThreshold)); err != nil {
		return err
	}

	// Withdrawals burn asset shares rounded up, capped at the shares the
	// balance holds so withdrawing the full amount never overdraws it.
	assetSharesDecrease := decimal.Min(assetAmountDecrease.Div(bank.AssetShareValue).RoundCeil(9), balance.AssetShares)
	if err := balance.ChangeAssetShares(assetSharesDecrease.Neg()); err != nil {
		return err
	}
	if err := bank.ChangeAssetShares(assetSharesDecrease.Neg(), false); err != nil {
		return err
	}

	liabilitySharesIncrease, err := bank.GetLiabilityShares(liabilityAmountIncrease)
	if err != nil {
		return err
	}
	if err := balance.ChangeLiabilityShares(liabilitySharesIncrease); err != nil {
		return err
	}
	if err := bank.ChangeLiabilityShares(liabilitySharesIncrease, operationType == BalanceDecreaseTypeBypassBorrowLimit); err != nil {
		return err
	}

	return bank.CheckUtilizationRatio()
}

// ClaimEmissions rolls forward any unclaimed emissions since the
// balance's LastUpdate into EmissionsOutstanding, capped at the
// bank's remaining emissions pool.
func (ba *BankAccountWrapper) ClaimEmissions(log Log, currentTimestamp int64) error {
	var balanceAmount decimal.Decimal

	side, err := ba.Balance.GetSide()
	if err != nil {
		return err
	}

	switch {
	case side == BalanceSideAssets && ba.Bank.GetFlag(BankFlagsLendingActive):
		amount, err := ba.Bank.GetAssetAmount(ba.Balance.AssetShares)
		if err != nil {
			return err
		}
		balanceAmount = amount
	case side == BalanceSideLiabilities && ba.Bank.GetFlag(BankFlagsBorrowActive):
		amount, err := ba.Bank.GetLiabilityAmount(ba.Balance.LiabilityShares)
		if err != nil {
			return err
		}
		balanceAmount = amount
	default:
		return nil
	}

	lastUpdate := ba.Balance.LastUpdate
	if lastUpdate < MinEmissionsStartTime {
		lastUpdate = currentTimestamp
		ba.Balance.LastUpdate = currentTimestamp
	}

	period := currentTimestamp - lastUpdate
	if period <= 0 {
		return nil
	}

	emissionsRate := ba.Bank.EmissionsRate
	ba.Balance.LastUpdate = currentTimestamp

	emissions, err := CalcEmissions(period, balanceAmount, emissionsRate)
	if err != nil {
		return err
	}

	emissionsReal := decimal.Min(emissions, ba.Bank.EmissionsRemaining)
	if emissions.Cmp(emissionsReal) != 0 {
		log.Warn().Msgf("emissions capped: %s (%s calculated) over %ds", emissionsReal, emissions, period)
	}

	ba.Balance.EmissionsOutstanding = ba.Balance.EmissionsOutstanding.Add(emissionsReal)
	ba.Bank.EmissionsRemaining = ba.Bank.EmissionsRemaining.Sub(emissionsReal)

	return nil
}

// SettleEmissionsAndGetTransferAmount floors EmissionsOutstanding to
// 8dp, returns the floored amount as the transferable payout, and
// returns the truncated remainder to the bank's emissions pool.
func (ba *BankAccountWrapper) SettleEmissionsAndGetTransferAmount(log Log) (decimal.Decimal, error) {
	currentTimestamp := ba.clk.Now().Unix()
	if err := ba.ClaimEmissions(log, currentTimestamp); err != nil {
		return decimal.Zero, err
	}

	emissionsOutstanding := ba.Balance.EmissionsOutstanding
	emissionsOutstandingFloored := emissionsOutstanding.Truncate(8)
	remainder := emissionsOutstanding.Sub(emissionsOutstandingFloored)

	ba.Balance.EmissionsOutstanding = decimal.Zero
	if remainder.GreaterThan(decimal.Zero) {
		ba.Bank.EmissionsRemaining = ba.Bank.EmissionsRemaining.Add(remainder)
	}

	return emissionsOutstandingFloored, nil
}

func CalcEmissions(period int64, balanceAmount decimal.Decimal, emissionsRate decimal.Decimal) (decimal.Decimal, error) {
	if period <= 0 {
		return decimal.Zero, nil
	}
	if emissionsRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrMathError
	}
	if balanceAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrMathError
	}

	return balanceAmount.Mul(emissionsRate).Mul(decimal.NewFromInt(period)).Div(decimal.NewFromInt(SecondsPerYear)), nil
}

// BankAccountWithPriceFeed is a Balance/Bank pair bound to a live
// PriceAdapter, the unit the risk engine values an account's positions
// through.
type BankAccountWithPriceFeed struct {
	Bank      *Bank
	Balance   *Balance
	PriceFeed PriceAdapter
}

// LoadBankAccountWithPriceFeeds resolves every active balance on an
// account to its bank and price feed, overlaying any in-flight
// BankAccountWrapper mutations that haven't been persisted yet (the
// same balance/bank pair a liquidation or operation is mid-applying).
func LoadBankAccountWithPriceFeeds(account *LendingAccount, banks map[uuid.UUID]*Bank, changedBankAccounts []*BankAccountWrapper, priceFeedMgr PriceAdapterMgr) ([]*BankAccountWithPriceFeed, error) {
	changed := make(map[uuid.UUID]*BankAccountWrapper, len(changedBankAccounts))
	for _, ba := range changedBankAccounts {
		changed[ba.Bank.Id] = ba
	}

	active := account.ActiveBalances()
	result := make([]*BankAccountWithPriceFeed, 0, len(active))
	seen := make(map[uuid.UUID]bool, len(active))

	for _, balance := range active {
		bank, ok := banks[balance.BankId]
		if !ok {
			return nil, ErrBankNotFound
		}
		priceFeed, err := priceFeedMgr.GetPriceAdapter(bank)
		if err != nil {
			return nil, err
		}

		if overlay, ok := changed[bank.Id]; ok {
			result = append(result, &BankAccountWithPriceFeed{Bank: overlay.Bank, Balance: overlay.Balance, PriceFeed: priceFeed})
		} else {
			result = append(result, &BankAccountWithPriceFeed{Bank: bank, Balance: balance, PriceFeed: priceFeed})
		}
		seen[bank.Id] = true
	}

	for _, overlay := range changedBankAccounts {
		if seen[overlay.Bank.Id] {
			continue
		}
		priceFeed, err := priceFeedMgr.GetPriceAdapter(overlay.Bank)
		if err != nil {
			return nil, err
		}
		result = append(result, &BankAccountWithPriceFeed{Bank: overlay.Bank, Balance: overlay.Balance, PriceFeed: priceFeed})
	}

	return result, nil
}

func (ba *BankAccountWithPriceFeed) CalcWeightedAssetsAndLiabsValues(requirementType RequirementType) (decimal.Decimal, decimal.Decimal, error) {
	side, err := ba.Balance.GetSide()
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	switch side {
	case BalanceSideAssets:
		assets, err := ba.CalcWeightedAssets(requirementType)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		return assets, decimal.Zero, nil
	case BalanceSideLiabilities:
		liabs, err := ba.CalcWeightedLiabs(requirementType)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		return decimal.Zero, liabs, nil
	}
	return decimal.Zero, decimal.Zero, nil
}

// CalcWeightedLiabs values the liability side. Isolated-tier banks
// never contribute to collateral value but must still be valued as
// debt, so unlike the asset side this does not skip Isolated banks.
func (ba *BankAccountWithPriceFeed) CalcWeightedLiabs(requirementType RequirementType) (decimal.Decimal, error) {
	priceFeed := ba.PriceFeed
	if priceFeed == nil {
		return decimal.Zero, nil
	}

	liabilityWeight := ba.Bank.BankConfig.GetWeight(requirementType, BalanceSideLiabilities)

	higherPrice, err := priceFeed.GetPriceOfType(requirementType.GetOraclePriceType(), High)
	if err != nil {
		return decimal.Zero, err
	}

	amount, err := ba.Bank.GetLiabilityAmount(ba.Balance.LiabilityShares)
	if err != nil {
		return decimal.Zero, err
	}

	return CalcValue(amount, higherPrice, &liabilityWeight)
}

// CalcWeightedAssets values the asset side. Isolated-tier collateral
// is deliberately excluded: it can only ever be borrowed against
// itself, never count as cross-collateral for other banks.
func (ba *BankAccountWithPriceFeed) CalcWeightedAssets(requirementType RequirementType) (decimal.Decimal, error) {
	if ba.Bank.BankConfig.RiskTier == Isolated {
		return decimal.Zero, nil
	}

	priceFeed := ba.PriceFeed
	if priceFeed == nil {
		return decimal.Zero, nil
	}

	assetWeight := ba.Bank.BankConfig.GetWeight(requirementType, BalanceSideAssets)

	lowPrice, err := priceFeed.GetPriceOfType(requirementType.GetOraclePriceType(), Low)
	if err != nil {
		return decimal.Zero, err
	}

	if requirementType == Initial {
		discount, err := ba.Bank.MaybeGetAssetWeightInitDiscount(lowPrice)
		if err != nil {
			return decimal.Zero, err
		}
		if discount.GreaterThan(decimal.Zero) {
			assetWeight = assetWeight.Mul(discount)
		}
	}

	amount, err := ba.Bank.GetAssetAmount(ba.Balance.AssetShares)
	if err != nil {
		return decimal.Zero, err
	}

	return CalcValue(amount, lowPrice, &assetWeight)
}

func (ba *BankAccountWithPriceFeed) IsEmpty(side BalanceSide) bool {
	return ba.Balance.IsEmpty(side)
}
