package core

import (
	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
)

// BankruptcyResult is the audit record of one bankruptcy resolution:
// how much of the liability the insurance fund covered and how much
// was socialized across the bank's remaining depositors.
type BankruptcyResult struct {
	LiabilityBank       *Bank           `json:"liabilityBank"`
	CoveredByInsurance  decimal.Decimal `json:"coveredByInsurance"`
	SocializedLoss      decimal.Decimal `json:"socializedLoss"`
	WrittenOffLiability decimal.Decimal `json:"writtenOffLiability"`
}

// HandleBankruptcy is admin-only: it requires CheckAccountBankrupt to
// have already confirmed the account is insolvent on liabBank before
// calling. It clears the account's liability shares on liabBank
// entirely — insurance funds repayment first, and any shortfall past
// what the insurance vault can cover is socialized by reducing the
// bank's AssetShareValue so remaining depositors absorb the loss pro
// rata, preserving I1 (total shares track total amounts). The bad
// balance slot is deactivated once its debt is gone.
func HandleBankruptcy(log Log, clk clock.Clock, account *LendingAccount, liabBank *Bank) (*BankruptcyResult, error) {
	balance := account.FindBalance(liabBank.Id)
	if balance == nil {
		return nil, ErrBalanceNotFound
	}
	if balance.IsEmpty(BalanceSideLiabilities) {
		return nil, ErrNoLiabilityFound
	}

	liabilityShares := balance.LiabilityShares
	liabilityAmount, err := liabBank.GetLiabilityAmount(liabilityShares)
	if err != nil {
		return nil, err
	}

	coveredByInsurance := decimal.Min(liabilityAmount, liabBank.InsuranceVault)
	if coveredByInsurance.GreaterThan(decimal.Zero) {
		liabBank.InsuranceVault = liabBank.InsuranceVault.Sub(coveredByInsurance)
		liabBank.LiquidityVault = liabBank.LiquidityVault.Add(coveredByInsurance)
	}

	shortfall := liabilityAmount.Sub(coveredByInsurance)
	if shortfall.GreaterThan(decimal.Zero) {
		if err := liabBank.SocializeLoss(shortfall); err != nil {
			return nil, err
		}
	}

	log.Warn().Msgf("bankruptcy: account=%s bank=%s liability=%s covered_by_insurance=%s socialized=%s",
		account.Id, liabBank.Id, liabilityAmount, coveredByInsurance, shortfall)

	if err := liabBank.ChangeLiabilityShares(liabilityShares.Neg(), true); err != nil {
		return nil, err
	}
	if err := balance.ChangeLiabilityShares(liabilityShares.Neg()); err != nil {
		return nil, err
	}

	if balance.IsEmpty(BalanceSideAssets) && balance.IsEmpty(BalanceSideLiabilities) {
		if err := balance.Close(clk); err != nil {
			return nil, err
		}
	}

	return &BankruptcyResult{
		LiabilityBank:       liabBank,
		CoveredByInsurance:  coveredByInsurance,
		SocializedLoss:      shortfall,
		WrittenOffLiability: liabilityAmount,
	}, nil
}
