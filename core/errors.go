package core

import "github.com/pkg/errors"

// Single sentinel-error vocabulary for the whole module. Compare with
// == or errors.Is; dispatcher boundaries wrap these with errors.Wrap to
// add instruction context without losing the sentinel identity.
var (
	ErrMathError = errors.New("math error")

	ErrGroupNotFound = errors.New("group not found")
	ErrGroupPaused   = errors.New("group is paused")

	ErrBankNotFound        = errors.New("bank not found")
	ErrBalanceNotFound     = errors.New("lending account balance not found")
	ErrSlotsFull           = errors.New("lending account has no free balance slots")
	ErrDepositCapExceeded  = errors.New("bank deposit capacity exceeded")
	ErrBorrowLimitExceeded = errors.New("bank borrow limit exceeded")

	ErrBankPaused              = errors.New("bank is paused")
	ErrBankReduceOnly          = errors.New("bank is in reduce-only mode")
	ErrIllegalUtilizationRatio = errors.New("bank utilization ratio would exceed 1")
	ErrBankLiquidityDeficit    = errors.New("bank liquidity vault deficit")

	ErrStaleOracle          = errors.New("oracle price is stale")
	ErrInvalidOracleAccount = errors.New("invalid oracle account")
	ErrOracleMaxAgeTooLong  = errors.New("oracle max age exceeds the allowed bound")
	ErrUnknownOracleSetup   = errors.New("unknown oracle setup")
	ErrNegativeInterestRate = errors.New("interest rate curve produced a negative rate")

	ErrOptimalUtilizationRate = errors.New("optimal utilization rate must be in (0, 1)")
	ErrPlateauInterestRate    = errors.New("plateau interest rate must be positive")
	ErrMaxInterestRate        = errors.New("max interest rate must be positive")
	ErrPlateauGreaterThanMax  = errors.New("plateau interest rate must be below max interest rate")
	ErrInvalidConfig          = errors.New("invalid bank configuration")

	ErrNoAssetFound        = errors.New("no asset balance found")
	ErrNoLiabilityFound    = errors.New("no liability balance found")
	ErrNegativeShares      = errors.New("share change would drive shares negative")
	ErrIllegalBalanceState = errors.New("balance has both nonzero asset and liability shares")
	ErrOperationDepositOnly  = errors.New("operation would increase a liability; only deposits are allowed here")
	ErrOperationRepayOnly    = errors.New("operation would increase an asset; only repayments are allowed here")
	ErrOperationWithdrawOnly = errors.New("operation would increase a liability; only withdrawals are allowed here")
	ErrOperationBorrowOnly   = errors.New("operation would decrease an asset; only borrows are allowed here")
	ErrCannotCloseOutstandingEmissions = errors.New("cannot close balance with outstanding emissions")

	ErrAccountUnhealthy              = errors.New("account health below requirement, initialization rejected")
	ErrBadAccountHealth              = errors.New("account health below requirement")
	ErrAccountNotUnhealthy           = errors.New("account is not below the maintenance requirement")
	ErrIllegalLiquidation            = errors.New("liquidation preconditions not met")
	ErrAccountIllegalPostLiquidationState = errors.New("account health did not improve across liquidation")
	ErrAccountNotBankrupt            = errors.New("account is not bankrupt")
	ErrBalanceNotBadDebt             = errors.New("balance is not bad debt")
	ErrIsolatedAccountIllegalState   = errors.New("isolated-tier liability cannot be mixed with other liabilities")

	ErrAccountInFlashloan          = errors.New("account is mid-flashloan")
	ErrAccountNotInFlashloan       = errors.New("flashloan_end called without a matching flashloan_start")
	ErrFlashloanIxsSysvarInvalid   = errors.New("flashloan instruction sysvar verification failed")
	ErrFlashloanNestingForbidden   = errors.New("flashloans cannot be nested")

	ErrInvalidTransfer = errors.New("invalid transfer amount")
)
