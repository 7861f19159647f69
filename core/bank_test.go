package core

import (
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testInterestRateConfig() InterestRateConfig {
	return InterestRateConfig{
		OptimalUtilizationRate: decimal.NewFromFloat(0.8),
		PlateauInterestRate:    decimal.NewFromFloat(0.1),
		MaxInterestRate:        decimal.NewFromFloat(1.0),
	}
}

func testBankConfig() BankConfig {
	return BankConfig{
		AssetWeightInit:      decimal.NewFromFloat(0.8),
		AssetWeightMaint:     decimal.NewFromFloat(0.9),
		LiabilityWeightInit:  decimal.NewFromFloat(1.2),
		LiabilityWeightMaint: decimal.NewFromFloat(1.1),
		DepositLimit:         decimal.NewFromInt(1_000_000),
		LiabilityLimit:       decimal.NewFromInt(1_000_000),
		InterestRateConfig:   testInterestRateConfig(),
		OperationalState:     BankOperationalStateOperational,
		RiskTier:             Collateral,
		OracleSetup:          PullOracle,
		OracleMaxAge:         60,
	}
}

func newTestBank(clk clock.Clock) *Bank {
	return NewBank(clk, uuid.Must(uuid.NewV4()), "usdc-pool", "usdc", testBankConfig())
}

func TestNewBankIsDeterministicPerGroupNameAsset(t *testing.T) {
	clk := clock.NewMock()
	groupId := uuid.Must(uuid.NewV4())
	cfg := testBankConfig()

	b1 := NewBank(clk, groupId, "usdc-pool", "usdc", cfg)
	b2 := NewBank(clk, groupId, "usdc-pool", "usdc", cfg)
	assert.Equal(t, b1.Id, b2.Id, "same (group, name, asset) must resolve to the same bank id")

	b3 := NewBank(clk, groupId, "eth-pool", "eth", cfg)
	assert.NotEqual(t, b1.Id, b3.Id)
}

func TestBankConfigValidate(t *testing.T) {
	cfg := testBankConfig()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.LiabilityWeightInit = decimal.NewFromFloat(0.9)
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	isolated := cfg
	isolated.RiskTier = Isolated
	assert.ErrorIs(t, isolated.Validate(), ErrInvalidConfig, "isolated-tier banks must zero their asset weights")
}

func TestChangeAssetSharesRespectsDepositLimit(t *testing.T) {
	clk := clock.NewMock()
	bank := newTestBank(clk)
	bank.BankConfig.DepositLimit = decimal.NewFromInt(100)

	assert.NoError(t, bank.ChangeAssetShares(decimal.NewFromInt(100), false))
	err := bank.ChangeAssetShares(decimal.NewFromInt(1), false)
	assert.ErrorIs(t, err, ErrDepositCapExceeded)
}

func TestChangeLiabilitySharesRespectsBorrowLimit(t *testing.T) {
	clk := clock.NewMock()

	atLimit := newTestBank(clk)
	atLimit.BankConfig.LiabilityLimit = decimal.NewFromInt(100)
	assert.ErrorIs(t, atLimit.ChangeLiabilityShares(decimal.NewFromInt(100), false), ErrBorrowLimitExceeded)

	underLimit := newTestBank(clk)
	underLimit.BankConfig.LiabilityLimit = decimal.NewFromInt(100)
	assert.NoError(t, underLimit.ChangeLiabilityShares(decimal.NewFromInt(50), false))
}

func TestAccrueInterestGrowsShareValuesAndFees(t *testing.T) {
	clk := clock.NewMock()
	bank := newTestBank(clk)
	bank.BankConfig.InterestRateConfig.ProtocolFixedFeeApr = decimal.NewFromFloat(0.01)
	bank.TotalAssetShares = decimal.NewFromInt(1000)
	bank.TotalLiabilityShares = decimal.NewFromInt(500)
	bank.LiquidityVault = decimal.NewFromInt(1000)

	log := zerolog.Nop()
	clk.Add(365 * 24 * time.Hour)

	assert.NoError(t, bank.AccrueInterest(log, clk.Now().Unix()))
	assert.True(t, bank.AssetShareValue.GreaterThan(One))
	assert.True(t, bank.LiabilityShareValue.GreaterThan(One))
	assert.True(t, bank.CollectedGroupFeesOutstanding.IsPositive())
}

func TestAccrueInterestNoOpWithoutElapsedTime(t *testing.T) {
	clk := clock.NewMock()
	bank := newTestBank(clk)
	bank.TotalAssetShares = decimal.NewFromInt(1000)
	bank.TotalLiabilityShares = decimal.NewFromInt(500)

	log := zerolog.Nop()
	assert.NoError(t, bank.AccrueInterest(log, bank.LastUpdate))
	assert.True(t, bank.AssetShareValue.Equal(One))
}

func TestSocializeLossReducesAssetShareValue(t *testing.T) {
	clk := clock.NewMock()
	bank := newTestBank(clk)
	bank.TotalAssetShares = decimal.NewFromInt(1000)

	assert.NoError(t, bank.SocializeLoss(decimal.NewFromInt(100)))
	assert.True(t, bank.AssetShareValue.Equal(decimal.NewFromFloat(0.9)), "expected 0.9, got %s", bank.AssetShareValue)
}

func TestGetPriceAppliesConfidenceBias(t *testing.T) {
	clk := clock.NewMock()
	bank := newTestBank(clk)
	price := decimal.NewFromInt(100)

	low := bank.GetPrice(price, Low)
	high := bank.GetPrice(price, High)
	original := bank.GetPrice(price, Original)

	assert.True(t, low.LessThan(original))
	assert.True(t, high.GreaterThan(original))
	assert.True(t, original.Equal(price))
}

func TestAssertOperationalMode(t *testing.T) {
	clk := clock.NewMock()
	bank := newTestBank(clk)

	bank.BankConfig.OperationalState = BankOperationalStatePaused
	assert.ErrorIs(t, bank.AssertOperationalMode(true), ErrBankPaused)
	assert.ErrorIs(t, bank.AssertOperationalMode(false), ErrBankPaused)

	bank.BankConfig.OperationalState = BankOperationalStateReduceOnly
	assert.ErrorIs(t, bank.AssertOperationalMode(true), ErrBankReduceOnly)
	assert.NoError(t, bank.AssertOperationalMode(false))

	bank.BankConfig.OperationalState = BankOperationalStateOperational
	assert.NoError(t, bank.AssertOperationalMode(true))
}
