package core

import (
	"testing"

	"github.com/facebookgo/clock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// TestLiquidateLendingAccountAppliesTwoDiscountSequence covers spec
// worked example S4: a 10-unit asset seizure at a 5% combined discount
// credits the liquidatee 9.5 units of value, while the liquidator only
// pays in at the 2.5% single discount (9.75), with the 0.25 gap
// funding the insurance vault.
func TestLiquidateLendingAccountAppliesTwoDiscountSequence(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()

	assetBank := newTestBank(clk)
	assetBank.LiquidityVault = decimal.NewFromInt(1000)
	liabBank := NewBank(clk, assetBank.GroupId, "usdt-pool", "usdt", testBankConfig())
	liabBank.LiquidityVault = decimal.NewFromInt(1000)
	liabBank.TotalAssetShares = decimal.NewFromInt(1000)

	liquidator := &LendingAccount{}
	liquidatee := &LendingAccount{}

	liquidateeAssetWrapper, err := FindOrCreateBankAccountWrapper(clk, assetBank, liquidatee)
	assert.NoError(t, err)
	assert.NoError(t, liquidateeAssetWrapper.Deposit(log, decimal.NewFromInt(100)))

	liquidateeLiabWrapper, err := FindOrCreateBankAccountWrapper(clk, liabBank, liquidatee)
	assert.NoError(t, err)
	assert.NoError(t, liquidateeLiabWrapper.Borrow(log, decimal.NewFromInt(90)))

	result, err := LiquidateLendingAccount(log, clk, assetBank, liabBank, liquidator, liquidatee,
		decimal.NewFromInt(10), decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.NoError(t, err)

	assert.True(t, decimal.NewFromFloat(9.75).Equal(result.LiquidatorLiabilityBalance.Balance.LiabilityShares),
		"liquidator should be charged 10*(1-0.025) = 9.75, got %s", result.LiquidatorLiabilityBalance.Balance.LiabilityShares)
	assert.True(t, decimal.NewFromInt(10).Equal(result.LiquidatorAssetBalance.Balance.AssetShares))
	assert.True(t, decimal.NewFromFloat(0.25).Equal(result.InsuranceFundFee),
		"insurance fee should be 9.75 - 9.5 = 0.25, got %s", result.InsuranceFundFee)

	liquidateeLiabRemaining, err := liabBank.GetLiabilityAmount(liquidateeLiabWrapper.Balance.LiabilityShares)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(80.5).Equal(liquidateeLiabRemaining),
		"liquidatee debt should drop by 10*(1-0.05) = 9.5, from 90 to 80.5, got %s", liquidateeLiabRemaining)

	assert.True(t, decimal.NewFromFloat(0.25).Equal(liabBank.InsuranceVault),
		"the insurance fee must actually land in the liab bank's insurance vault, got %s", liabBank.InsuranceVault)
}

func TestLiquidateLendingAccountRejectsSelfLiquidation(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()
	assetBank := newTestBank(clk)
	liabBank := NewBank(clk, assetBank.GroupId, "usdt-pool", "usdt", testBankConfig())

	account := &LendingAccount{}
	_, err := FindOrCreateBankAccountWrapper(clk, assetBank, account)
	assert.NoError(t, err)

	_, err = LiquidateLendingAccount(log, clk, assetBank, liabBank, account, account,
		decimal.NewFromInt(10), decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrIllegalLiquidation)
}

func TestLiquidateLendingAccountRejectsZeroQuantity(t *testing.T) {
	clk := clock.NewMock()
	log := zerolog.Nop()
	assetBank := newTestBank(clk)
	liabBank := NewBank(clk, assetBank.GroupId, "usdt-pool", "usdt", testBankConfig())

	liquidator := &LendingAccount{}
	liquidatee := &LendingAccount{}

	_, err := LiquidateLendingAccount(log, clk, assetBank, liabBank, liquidator, liquidatee,
		decimal.Zero, decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrInvalidTransfer)
}
