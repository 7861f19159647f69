package dispatch

import (
	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/domeliquid/lendingcore/core"
)

// Every handler follows the same ordering the dispatcher enforces
// across every instruction that touches a bank: accrue interest on
// every touched bank first, then mutate the balance book, then (only
// if collateral fell or debt rose) run the risk engine against the
// post-mutation state.

func accrueAll(log core.Log, clk clock.Clock, banks ...*core.Bank) error {
	now := clk.Now().Unix()
	for _, b := range banks {
		if b == nil {
			continue
		}
		if err := b.AccrueInterest(log, now); err != nil {
			return err
		}
	}
	return nil
}

func HandleBankDeposit(log core.Log, clk clock.Clock, group *core.Group, account *core.LendingAccount, bank *core.Bank, amount decimal.Decimal) error {
	if err := group.AssertActive(); err != nil {
		return err
	}
	if err := accrueAll(log, clk, bank); err != nil {
		return err
	}
	wrapper, err := core.FindOrCreateBankAccountWrapper(clk, bank, account)
	if err != nil {
		return err
	}
	return wrapper.Deposit(log, amount)
}

func HandleBankRepay(log core.Log, clk clock.Clock, group *core.Group, account *core.LendingAccount, bank *core.Bank, amount decimal.Decimal, all bool) error {
	if err := group.AssertActive(); err != nil {
		return err
	}
	if err := accrueAll(log, clk, bank); err != nil {
		return err
	}
	wrapper, err := core.FindOrCreateBankAccountWrapper(clk, bank, account)
	if err != nil {
		return err
	}
	if all {
		_, err := wrapper.RepayAll(log)
		return err
	}
	return wrapper.Repay(log, amount)
}

// HandleBankWithdraw and HandleBankBorrow both reduce collateral or
// incur debt, so both must pass an Initial health check against the
// account's full post-mutation position across every bank before
// they're allowed to stand.
func HandleBankWithdraw(log core.Log, clk clock.Clock, group *core.Group, account *core.LendingAccount, bank *core.Bank, amount decimal.Decimal, all bool, banks map[uuid.UUID]*core.Bank, priceFeedMgr core.PriceAdapterMgr) error {
	if err := group.AssertActive(); err != nil {
		return err
	}
	if err := accrueAll(log, clk, bank); err != nil {
		return err
	}
	wrapper, err := core.FindOrCreateBankAccountWrapper(clk, bank, account)
	if err != nil {
		return err
	}
	if all {
		if _, err := wrapper.WithdrawAll(log); err != nil {
			return err
		}
	} else if err := wrapper.Withdraw(log, amount); err != nil {
		return err
	}
	return checkInitHealth(account, banks, []*core.BankAccountWrapper{wrapper}, priceFeedMgr)
}

func HandleBankBorrow(log core.Log, clk clock.Clock, group *core.Group, account *core.LendingAccount, bank *core.Bank, amount decimal.Decimal, banks map[uuid.UUID]*core.Bank, priceFeedMgr core.PriceAdapterMgr) error {
	if err := group.AssertActive(); err != nil {
		return err
	}
	if err := accrueAll(log, clk, bank); err != nil {
		return err
	}
	wrapper, err := core.FindOrCreateBankAccountWrapper(clk, bank, account)
	if err != nil {
		return err
	}
	if err := wrapper.Borrow(log, amount); err != nil {
		return err
	}
	return checkInitHealth(account, banks, []*core.BankAccountWrapper{wrapper}, priceFeedMgr)
}

func checkInitHealth(account *core.LendingAccount, banks map[uuid.UUID]*core.Bank, changed []*core.BankAccountWrapper, priceFeedMgr core.PriceAdapterMgr) error {
	engine, err := core.NewRiskEngineNoFlashloanCheck(account, banks, changed, priceFeedMgr)
	if err != nil {
		return err
	}
	return engine.CheckAccountInitHealth(banks, changed, priceFeedMgr)
}

// HandleLiquidate applies the liquidation and confirms both of its
// post-state invariants: the liquidatee ends up healthier (but not
// over-liquidated) and the liquidator's resulting position clears its
// own Initial health check.
func HandleLiquidate(log core.Log, clk clock.Clock, group *core.Group, assetBank, liabBank *core.Bank, liquidatorAccount, liquidateeAccount *core.LendingAccount, assetQuantity, assetPrice, liabPrice decimal.Decimal, banks map[uuid.UUID]*core.Bank, priceFeedMgr core.PriceAdapterMgr) (*core.LiquidationResult, error) {
	if err := group.AssertActive(); err != nil {
		return nil, err
	}
	if err := accrueAll(log, clk, assetBank, liabBank); err != nil {
		return nil, err
	}

	preEngine, err := core.NewRiskEngine(liquidateeAccount, banks, nil, priceFeedMgr)
	if err != nil {
		return nil, err
	}
	preHealth, err := preEngine.CheckPreLiquidationConditionAndGetAccountHealth(liabBank.Id)
	if err != nil {
		return nil, err
	}

	result, err := core.LiquidateLendingAccount(log, clk, assetBank, liabBank, liquidatorAccount, liquidateeAccount, assetQuantity, assetPrice, liabPrice)
	if err != nil {
		return nil, err
	}
	result.LiquidateePreHealth = preHealth

	postEngine, err := core.NewRiskEngine(liquidateeAccount, banks, []*core.BankAccountWrapper{result.LiquidateeAssetBalance, result.LiquidateeLiabilityBalance}, priceFeedMgr)
	if err != nil {
		return nil, err
	}
	postHealth, err := postEngine.CheckPostLiquidationConditionAndGetAccountHealth(liabBank.Id, preHealth)
	if err != nil {
		return nil, err
	}
	result.LiquidateePostHealth = postHealth

	liquidatorEngine, err := core.NewRiskEngine(liquidatorAccount, banks, []*core.BankAccountWrapper{result.LiquidatorAssetBalance, result.LiquidatorLiabilityBalance}, priceFeedMgr)
	if err != nil {
		return nil, err
	}
	if err := liquidatorEngine.CheckAccountHealth(core.Initial); err != nil {
		return nil, err
	}

	return result, nil
}

func HandleFlashloanStart(log core.Log, group *core.Group, account *core.LendingAccount, sysvar core.InstructionSysvar, endIndex int, programId string) error {
	if err := group.AssertActive(); err != nil {
		return err
	}
	return core.StartFlashloan(log, account, sysvar, endIndex, programId)
}

// HandleFlashloanEnd is deliberately not gated on group.AssertActive:
// a bracket already open before a pause took effect must still be
// closeable, the same way Withdraw/Repay stay legal under a bank's own
// reduce-only state.
func HandleFlashloanEnd(log core.Log, account *core.LendingAccount, banks map[uuid.UUID]*core.Bank, priceFeedMgr core.PriceAdapterMgr) error {
	return core.EndFlashloan(log, account, banks, nil, priceFeedMgr)
}

func HandleAccrueBankInterest(log core.Log, clk clock.Clock, bank *core.Bank) error {
	return accrueAll(log, clk, bank)
}

func HandleBankruptcy(log core.Log, clk clock.Clock, account *core.LendingAccount, liabBank *core.Bank, banks map[uuid.UUID]*core.Bank, priceFeedMgr core.PriceAdapterMgr) (*core.BankruptcyResult, error) {
	engine, err := core.NewRiskEngine(account, banks, nil, priceFeedMgr)
	if err != nil {
		return nil, err
	}
	if err := engine.CheckAccountBankrupt(log); err != nil {
		return nil, err
	}
	return core.HandleBankruptcy(log, clk, account, liabBank)
}
