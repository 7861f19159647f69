package dispatch

import (
	"testing"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/domeliquid/lendingcore/core"
)

// testPriceAdapter is a constant-price test double for core.PriceAdapter.
type testPriceAdapter struct {
	price decimal.Decimal
}

func (p testPriceAdapter) GetPriceOfType(core.OraclePriceType, core.PriceBias) (decimal.Decimal, error) {
	return p.price, nil
}

func (p testPriceAdapter) GetAllPriceType() (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	return p.price, p.price, p.price, nil
}

type testPriceAdapterMgr struct {
	price decimal.Decimal
}

func (m testPriceAdapterMgr) GetPriceAdapter(bank *core.Bank) (core.PriceAdapter, error) {
	return testPriceAdapter{price: m.price}, nil
}

func testBankConfig() core.BankConfig {
	return core.BankConfig{
		AssetWeightInit:      decimal.NewFromFloat(0.8),
		AssetWeightMaint:     decimal.NewFromFloat(0.9),
		LiabilityWeightInit:  decimal.NewFromFloat(1.2),
		LiabilityWeightMaint: decimal.NewFromFloat(1.1),
		DepositLimit:         decimal.NewFromInt(1000000),
		LiabilityLimit:       decimal.NewFromInt(1000000),
		OperationalState:     core.BankOperationalStateOperational,
		RiskTier:             core.Collateral,
		OracleSetup:          core.PullOracle,
		OracleMaxAge:         60,
		InterestRateConfig: core.InterestRateConfig{
			OptimalUtilizationRate: decimal.NewFromFloat(0.8),
			PlateauInterestRate:    decimal.NewFromFloat(0.1),
			MaxInterestRate:        decimal.NewFromFloat(1),
		},
	}
}

func newTestBank(clk clock.Clock, groupId uuid.UUID, name, assetId string) *core.Bank {
	return core.NewBank(clk, groupId, name, assetId, testBankConfig())
}

func testActiveGroup(clk clock.Clock) *core.Group {
	return core.NewGroup(clk, "admin-key", "test-group", "")
}

func TestHandleBankDepositCreditsAssetShares(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()
	groupId := uuid.Must(uuid.NewV4())
	bank := newTestBank(clk, groupId, "usdc-pool", "usdc")
	account := &core.LendingAccount{}
	group := testActiveGroup(clk)

	assert.NoError(t, HandleBankDeposit(log, clk, group, account, bank, decimal.NewFromInt(100)))

	wrapper, err := core.FindOrCreateBankAccountWrapper(clk, bank, account)
	assert.NoError(t, err)
	amount, err := bank.GetAssetAmount(wrapper.Balance.AssetShares)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(amount))
}

func TestHandleBankDepositRejectsWhenGroupPaused(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()
	groupId := uuid.Must(uuid.NewV4())
	bank := newTestBank(clk, groupId, "usdc-pool", "usdc")
	account := &core.LendingAccount{}
	group := testActiveGroup(clk)
	group.SetPaused(clk, true)

	err := HandleBankDeposit(log, clk, group, account, bank, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, core.ErrGroupPaused)
}

func TestHandleBankBorrowRejectsWhenUnhealthy(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()
	groupId := uuid.Must(uuid.NewV4())

	bank := newTestBank(clk, groupId, "usdc-pool", "usdc")
	bank.LiquidityVault = decimal.NewFromInt(1000)
	bank.TotalAssetShares = decimal.NewFromInt(1000)
	account := &core.LendingAccount{}

	banks := map[uuid.UUID]*core.Bank{bank.Id: bank}
	mgr := testPriceAdapterMgr{price: decimal.NewFromInt(1)}
	group := testActiveGroup(clk)

	err := HandleBankBorrow(log, clk, group, account, bank, decimal.NewFromInt(100), banks, mgr)
	assert.Error(t, err, "borrowing with no collateral must fail the post-borrow health check")
}

func TestHandleBankDepositBorrowWithdrawRoundTrip(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()
	groupId := uuid.Must(uuid.NewV4())

	collateralBank := newTestBank(clk, groupId, "usdc-pool", "usdc")
	borrowBank := newTestBank(clk, groupId, "eth-pool", "eth")
	borrowBank.LiquidityVault = decimal.NewFromInt(1000)
	borrowBank.TotalAssetShares = decimal.NewFromInt(1000)
	account := &core.LendingAccount{}
	group := testActiveGroup(clk)

	assert.NoError(t, HandleBankDeposit(log, clk, group, account, collateralBank, decimal.NewFromInt(1000)))

	banks := map[uuid.UUID]*core.Bank{collateralBank.Id: collateralBank, borrowBank.Id: borrowBank}
	mgr := testPriceAdapterMgr{price: decimal.NewFromInt(1)}

	assert.NoError(t, HandleBankBorrow(log, clk, group, account, borrowBank, decimal.NewFromInt(100), banks, mgr))
	assert.NoError(t, HandleBankRepay(log, clk, group, account, borrowBank, decimal.NewFromInt(100), false))
	assert.NoError(t, HandleBankWithdraw(log, clk, group, account, collateralBank, decimal.Zero, true, banks, mgr))
}

func TestHandleFlashloanStartAndEnd(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()
	groupId := uuid.Must(uuid.NewV4())
	bank := newTestBank(clk, groupId, "usdc-pool", "usdc")
	bank.LiquidityVault = decimal.NewFromInt(1000)
	account := &core.LendingAccount{}
	group := testActiveGroup(clk)

	assert.NoError(t, HandleBankDeposit(log, clk, group, account, bank, decimal.NewFromInt(1000)))

	sysvar := testInstructionSysvar{instructions: map[int]*core.FlashloanInstruction{
		2: {Kind: core.FlashloanEndInstructionKind, ProgramId: "prog-1", AccountId: account.Id},
	}}

	assert.NoError(t, HandleFlashloanStart(log, group, account, sysvar, 2, "prog-1"))
	assert.True(t, account.GetFlag(core.InFlashloanFlag))

	banks := map[uuid.UUID]*core.Bank{bank.Id: bank}
	mgr := testPriceAdapterMgr{price: decimal.NewFromInt(1)}
	assert.NoError(t, HandleFlashloanEnd(log, account, banks, mgr))
	assert.False(t, account.GetFlag(core.InFlashloanFlag))
}

type testInstructionSysvar struct {
	instructions map[int]*core.FlashloanInstruction
}

func (s testInstructionSysvar) InstructionAt(index int) (*core.FlashloanInstruction, error) {
	instr, ok := s.instructions[index]
	if !ok {
		return nil, nil
	}
	return instr, nil
}

func TestHandleAccrueBankInterestAdvancesLastUpdate(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()
	groupId := uuid.Must(uuid.NewV4())
	bank := newTestBank(clk, groupId, "usdc-pool", "usdc")
	preUpdate := bank.LastUpdate

	clk.Add(3600000000000)
	assert.NoError(t, HandleAccrueBankInterest(log, clk, bank))
	assert.Greater(t, bank.LastUpdate, preUpdate)
}

func TestHandleBankruptcyRejectsSolventAccount(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()
	groupId := uuid.Must(uuid.NewV4())
	bank := newTestBank(clk, groupId, "usdc-pool", "usdc")
	account := &core.LendingAccount{}
	group := testActiveGroup(clk)

	assert.NoError(t, HandleBankDeposit(log, clk, group, account, bank, decimal.NewFromInt(100)))

	banks := map[uuid.UUID]*core.Bank{bank.Id: bank}
	mgr := testPriceAdapterMgr{price: decimal.NewFromInt(1)}

	_, err := HandleBankruptcy(log, clk, account, bank, banks, mgr)
	assert.ErrorIs(t, err, core.ErrAccountNotBankrupt)
}
