package core

import (
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// PriceAdapter is the pull-style collaborator a bank's oracle setup
// resolves to: callers ask for a price of a given type/bias on demand
// rather than having prices pushed into the engine.
type PriceAdapter interface {
	GetPriceOfType(priceType OraclePriceType, bias PriceBias) (decimal.Decimal, error)
	GetAllPriceType() (price decimal.Decimal, priceLow decimal.Decimal, priceHigh decimal.Decimal, err error)
}

type PriceAdapterMgr interface {
	GetPriceAdapter(bank *Bank) (PriceAdapter, error)
}

// CalcValue applies an optional weight before multiplying by price;
// weight is nil for unweighted (equity) valuations.
func CalcValue(amount decimal.Decimal, price decimal.Decimal, weight *decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, nil
	}

	weightedAmount := amount
	if weight != nil {
		weightedAmount = amount.Mul(*weight)
	}

	return weightedAmount.Mul(price), nil
}

func CalcAmount(value decimal.Decimal, price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsZero() {
		return decimal.Zero, errors.New("price is zero")
	}
	return value.Div(price), nil
}

// ComputeHealthComponents sums weighted asset and liability value
// across every active balance on an account, excluding the banks
// named in excludedBanks (used to value a would-be position before
// it's actually applied, e.g. pre-liquidation pricing).
func ComputeHealthComponents(account *LendingAccount, banks map[uuid.UUID]*Bank, priceFeedMgr PriceAdapterMgr, marginReqType RequirementType, excludedBanks []uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	excluded := make(map[uuid.UUID]bool, len(excludedBanks))
	for _, id := range excludedBanks {
		excluded[id] = true
	}

	totalAssets := decimal.Zero
	totalLiabilities := decimal.Zero

	for _, balance := range account.ActiveBalances() {
		if excluded[balance.BankId] {
			continue
		}
		bank, ok := banks[balance.BankId]
		if !ok {
			return decimal.Zero, decimal.Zero, errors.Errorf("bank %s not found", balance.BankId)
		}
		priceAdapter, err := priceFeedMgr.GetPriceAdapter(bank)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		price, err := priceAdapter.GetPriceOfType(TimeWeighted, Original)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		assets, liabilities := balance.GetUsdValueWithPriceBias(bank, price, marginReqType)
		totalAssets = totalAssets.Add(assets)
		totalLiabilities = totalLiabilities.Add(liabilities)
	}

	return totalAssets, totalLiabilities, nil
}

// ComputeLiquidationPriceForBank solves for the oracle price at which
// this account's position against bankId would first become
// liquidatable, holding every other balance fixed.
func ComputeLiquidationPriceForBank(account *LendingAccount, banks map[uuid.UUID]*Bank, changedBankAccounts []*BankAccountWrapper, priceFeedMgr PriceAdapterMgr, bankId uuid.UUID, marginReqType RequirementType) (decimal.Decimal, error) {
	bank, ok := banks[bankId]
	if !ok {
		return decimal.Zero, errors.Errorf("bank %s not found", bankId)
	}

	var balance *Balance
	for _, ba := range changedBankAccounts {
		if ba.Bank.Id == bankId {
			balance = ba.Balance
			break
		}
	}
	if balance == nil {
		balance = account.FindBalance(bankId)
	}
	if balance == nil || !balance.Active {
		return decimal.Zero, nil
	}

	isLending := balance.LiabilityShares.IsZero()
	assets, liabilities, err := ComputeHealthComponents(account, banks, priceFeedMgr, marginReqType, []uuid.UUID{bankId})
	if err != nil {
		return decimal.Zero, err
	}

	priceAdapter, err := priceFeedMgr.GetPriceAdapter(bank)
	if err != nil {
		return decimal.Zero, err
	}
	price, err := priceAdapter.GetPriceOfType(TimeWeighted, Original)
	if err != nil {
		return decimal.Zero, err
	}

	assetsQuantity, liabilitiesQuantity := balance.ComputeQuantity(bank)

	var liquidationPrice decimal.Decimal
	if isLending {
		if liabilities.IsZero() || assetsQuantity.IsZero() {
			return decimal.Zero, nil
		}
		assetWeight := bank.GetAssetWeight(marginReqType, price, false)
		priceConfidence := bank.GetPrice(price, Original).Sub(bank.GetPrice(price, Low))
		denominator := assetsQuantity.Mul(assetWeight)
		if denominator.IsZero() {
			return decimal.Zero, nil
		}
		liquidationPrice = liabilities.Div(denominator).Sub(assets.Div(denominator)).Add(priceConfidence)
	} else {
		if liabilitiesQuantity.IsZero() {
			return decimal.Zero, nil
		}
		liabWeight := bank.GetLiabilityWeight(marginReqType)
		priceConfidence := bank.GetPrice(price, High).Sub(bank.GetPrice(price, Original))
		denominator := liabilitiesQuantity.Mul(liabWeight)
		if denominator.IsZero() {
			return decimal.Zero, nil
		}
		liquidationPrice = assets.Sub(liabilities).Div(denominator).Sub(priceConfidence)
	}

	if liquidationPrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}
	return liquidationPrice, nil
}

// ComputeNetApy blends each active balance's lending/borrowing APR,
// weighted by its share of total equity value, into one figure and
// annualizes it via AprToApy.
func ComputeNetApy(account *LendingAccount, banks map[uuid.UUID]*Bank, priceFeedMgr PriceAdapterMgr) (decimal.Decimal, error) {
	totalAssets, totalLiabilities, err := ComputeHealthComponents(account, banks, priceFeedMgr, Equity, nil)
	if err != nil {
		return decimal.Zero, err
	}
	totalUsdValue := totalAssets.Sub(totalLiabilities)
	if totalUsdValue.IsZero() {
		totalUsdValue = One
	}

	weightedApr := decimal.Zero
	for _, balance := range account.ActiveBalances() {
		bank, ok := banks[balance.BankId]
		if !ok {
			return decimal.Zero, errors.Errorf("bank %s not found", balance.BankId)
		}

		priceAdapter, err := priceFeedMgr.GetPriceAdapter(bank)
		if err != nil {
			return decimal.Zero, err
		}
		price, err := priceAdapter.GetPriceOfType(RealTime, Original)
		if err != nil {
			return decimal.Zero, err
		}

		utilizationRatio := bank.ComputeUtilizationRate()
		lendingApr, borrowingApr, _, _, err := bank.BankConfig.InterestRateConfig.CalcInterestRate(utilizationRatio)
		if err != nil {
			return decimal.Zero, err
		}

		assetUsdValue := balance.AssetShares.Mul(price)
		liabilityUsdValue := balance.LiabilityShares.Mul(price)

		assetApr := lendingApr.Mul(assetUsdValue).Div(totalUsdValue)
		liabilityApr := borrowingApr.Mul(liabilityUsdValue).Div(totalUsdValue)

		weightedApr = weightedApr.Add(assetApr).Sub(liabilityApr)
	}

	return AprToApy(weightedApr), nil
}

// AprToApy compounds an APR at an hourly frequency: (1+apr/H)^H - 1.
func AprToApy(apr decimal.Decimal) decimal.Decimal {
	hoursPerYear := decimal.NewFromFloat(HoursPerYear)
	if hoursPerYear.IsZero() {
		return decimal.Zero
	}
	return (One.Add(apr.Div(hoursPerYear))).Pow(hoursPerYear).Sub(One).Round(8)
}

// CalcInterestRateAccrualStateChanges derives the new asset/liability
// share values and the fee amounts owed for one accrual period, given
// the curve's current utilization-implied rates.
func CalcInterestRateAccrualStateChanges(log Log, timeDelta uint64, totalAssetsAmount, totalLiabilitiesAmount decimal.Decimal, interestRateConfig InterestRateConfig, assetShareValue, liabilityShareValue decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	utilizationRate := totalLiabilitiesAmount.Div(totalAssetsAmount)

	lendingApr, borrowingApr, groupFeeApr, insuranceFeeApr, err := interestRateConfig.CalcInterestRate(utilizationRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, err
	}

	log.Info().Msgf("timeDelta=%d utilization=%s lendingApr=%s borrowingApr=%s groupFeeApr=%s insuranceFeeApr=%s",
		timeDelta, utilizationRate, lendingApr, borrowingApr, groupFeeApr, insuranceFeeApr)

	accruedAssetShareValue, err := CalcAccruedInterestPaymentPerPeriod(lendingApr, timeDelta, assetShareValue)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	accruedLiabilityShareValue, err := CalcAccruedInterestPaymentPerPeriod(borrowingApr, timeDelta, liabilityShareValue)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, err
	}

	groupFeePaymentForPeriod, err := CalcInterestPaymentForPeriod(groupFeeApr, timeDelta, totalLiabilitiesAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	insuranceFeePaymentForPeriod, err := CalcInterestPaymentForPeriod(insuranceFeeApr, timeDelta, totalLiabilitiesAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, err
	}

	return accruedAssetShareValue, accruedLiabilityShareValue, groupFeePaymentForPeriod, insuranceFeePaymentForPeriod, nil
}

func CalcAccruedInterestPaymentPerPeriod(apr decimal.Decimal, timeDelta uint64, value decimal.Decimal) (decimal.Decimal, error) {
	irPerPeriod := apr.Mul(decimal.NewFromInt(int64(timeDelta))).Div(decimal.NewFromInt(SecondsPerYear))
	return value.Mul(One.Add(irPerPeriod)), nil
}

func CalcInterestPaymentForPeriod(apr decimal.Decimal, timeDelta uint64, value decimal.Decimal) (decimal.Decimal, error) {
	return value.Mul(apr).Mul(decimal.NewFromInt(int64(timeDelta))).Div(decimal.NewFromInt(SecondsPerYear)), nil
}
