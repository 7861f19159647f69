package core

import (
	"testing"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRiskEngineHealthyAccountPassesInitCheck(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()

	bank := newTestBank(clk)
	bank.LiquidityVault = decimal.NewFromInt(1000)
	account := &LendingAccount{}

	wrapper, err := FindOrCreateBankAccountWrapper(clk, bank, account)
	assert.NoError(t, err)
	assert.NoError(t, wrapper.Deposit(log, decimal.NewFromInt(1000)))

	banks := map[uuid.UUID]*Bank{bank.Id: bank}
	mgr := testPriceAdapterMgr{price: decimal.NewFromInt(1)}

	engine, err := NewRiskEngine(account, banks, nil, mgr)
	assert.NoError(t, err)
	assert.NoError(t, engine.CheckAccountHealth(Initial))
}

func TestRiskEngineRejectsWhenFlashloanInProgress(t *testing.T) {
	account := &LendingAccount{}
	account.SetFlag(InFlashloanFlag)

	_, err := NewRiskEngine(account, map[uuid.UUID]*Bank{}, nil, testPriceAdapterMgr{})
	assert.ErrorIs(t, err, ErrAccountInFlashloan)
}

func TestCheckAccountInitHealthNoOpDuringFlashloan(t *testing.T) {
	clk := clock.NewMock()
	bank := newTestBank(clk)
	account := &LendingAccount{}

	banks := map[uuid.UUID]*Bank{bank.Id: bank}
	engine, err := NewRiskEngineNoFlashloanCheck(account, banks, nil, testPriceAdapterMgr{price: decimal.NewFromInt(1)})
	assert.NoError(t, err)

	account.SetFlag(InFlashloanFlag)
	assert.NoError(t, engine.CheckAccountInitHealth(banks, nil, testPriceAdapterMgr{price: decimal.NewFromInt(1)}))
}

func TestCheckAccountRiskTiersAllowsSingleIsolatedLiability(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()

	isolatedCfg := testBankConfig()
	isolatedCfg.RiskTier = Isolated
	isolatedCfg.AssetWeightInit = decimal.Zero
	isolatedCfg.AssetWeightMaint = decimal.Zero
	isolatedBank := NewBank(clk, uuid.Must(uuid.NewV4()), "isolated-pool", "meme", isolatedCfg)
	isolatedBank.LiquidityVault = decimal.NewFromInt(1000)
	isolatedBank.TotalAssetShares = decimal.NewFromInt(1000)

	collateralBank := newTestBank(clk)
	collateralBank.LiquidityVault = decimal.NewFromInt(1000)

	account := &LendingAccount{}

	collateralWrapper, err := FindOrCreateBankAccountWrapper(clk, collateralBank, account)
	assert.NoError(t, err)
	assert.NoError(t, collateralWrapper.Deposit(log, decimal.NewFromInt(1000)))

	isolatedWrapper, err := FindOrCreateBankAccountWrapper(clk, isolatedBank, account)
	assert.NoError(t, err)
	assert.NoError(t, isolatedWrapper.Borrow(log, decimal.NewFromInt(10)))

	banks := map[uuid.UUID]*Bank{isolatedBank.Id: isolatedBank, collateralBank.Id: collateralBank}
	engine, err := NewRiskEngineNoFlashloanCheck(account, banks, nil, testPriceAdapterMgr{price: decimal.NewFromInt(1)})
	assert.NoError(t, err)

	assert.NoError(t, engine.CheckAccountRiskTiers(), "a single isolated liability alongside collateral is legal")
}

func TestCheckAccountRiskTiersRejectsIsolatedMixedWithAnotherLiability(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()

	isolatedCfg := testBankConfig()
	isolatedCfg.RiskTier = Isolated
	isolatedCfg.AssetWeightInit = decimal.Zero
	isolatedCfg.AssetWeightMaint = decimal.Zero
	isolatedBank := NewBank(clk, uuid.Must(uuid.NewV4()), "isolated-pool", "meme", isolatedCfg)
	isolatedBank.LiquidityVault = decimal.NewFromInt(1000)
	isolatedBank.TotalAssetShares = decimal.NewFromInt(1000)

	collateralBank := newTestBank(clk)
	collateralBank.LiquidityVault = decimal.NewFromInt(1000)

	secondBorrowBank := NewBank(clk, collateralBank.GroupId, "sol-pool", "sol", testBankConfig())
	secondBorrowBank.LiquidityVault = decimal.NewFromInt(1000)
	secondBorrowBank.TotalAssetShares = decimal.NewFromInt(1000)

	account := &LendingAccount{}

	collateralWrapper, err := FindOrCreateBankAccountWrapper(clk, collateralBank, account)
	assert.NoError(t, err)
	assert.NoError(t, collateralWrapper.Deposit(log, decimal.NewFromInt(1000)))

	isolatedWrapper, err := FindOrCreateBankAccountWrapper(clk, isolatedBank, account)
	assert.NoError(t, err)
	assert.NoError(t, isolatedWrapper.Borrow(log, decimal.NewFromInt(10)))

	secondWrapper, err := FindOrCreateBankAccountWrapper(clk, secondBorrowBank, account)
	assert.NoError(t, err)
	assert.NoError(t, secondWrapper.Borrow(log, decimal.NewFromInt(10)))

	banks := map[uuid.UUID]*Bank{
		isolatedBank.Id:     isolatedBank,
		collateralBank.Id:   collateralBank,
		secondBorrowBank.Id: secondBorrowBank,
	}
	engine, err := NewRiskEngineNoFlashloanCheck(account, banks, nil, testPriceAdapterMgr{price: decimal.NewFromInt(1)})
	assert.NoError(t, err)

	assert.ErrorIs(t, engine.CheckAccountRiskTiers(), ErrIsolatedAccountIllegalState)
}
