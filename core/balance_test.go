package core

import (
	"testing"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewBalanceIsEmptyAndActive(t *testing.T) {
	clk := clock.NewMock()
	bankId := uuid.Must(uuid.NewV4())
	bal := NewBalance(clk, bankId)

	assert.True(t, bal.Active)
	assert.Equal(t, bankId, bal.BankId)
	assert.True(t, bal.IsEmpty(BalanceSideAssets))
	assert.True(t, bal.IsEmpty(BalanceSideLiabilities))
}

func TestBalanceChangeSharesRejectsNegative(t *testing.T) {
	clk := clock.NewMock()
	bal := NewBalance(clk, uuid.Must(uuid.NewV4()))

	assert.NoError(t, bal.ChangeAssetShares(decimal.NewFromInt(10)))
	assert.ErrorIs(t, bal.ChangeAssetShares(decimal.NewFromInt(-20)), ErrNegativeShares)

	assert.NoError(t, bal.ChangeLiabilityShares(decimal.NewFromInt(5)))
	assert.ErrorIs(t, bal.ChangeLiabilityShares(decimal.NewFromInt(-10)), ErrNegativeShares)
}

func TestBalanceGetSide(t *testing.T) {
	clk := clock.NewMock()

	empty := NewBalance(clk, uuid.Must(uuid.NewV4()))
	side, err := empty.GetSide()
	assert.NoError(t, err)
	assert.Equal(t, BalanceSideEmpty, side)

	assetSide := NewBalance(clk, uuid.Must(uuid.NewV4()))
	assert.NoError(t, assetSide.ChangeAssetShares(decimal.NewFromInt(100)))
	side, err = assetSide.GetSide()
	assert.NoError(t, err)
	assert.Equal(t, BalanceSideAssets, side)

	liabSide := NewBalance(clk, uuid.Must(uuid.NewV4()))
	assert.NoError(t, liabSide.ChangeLiabilityShares(decimal.NewFromInt(100)))
	side, err = liabSide.GetSide()
	assert.NoError(t, err)
	assert.Equal(t, BalanceSideLiabilities, side)

	illegal := NewBalance(clk, uuid.Must(uuid.NewV4()))
	assert.NoError(t, illegal.ChangeAssetShares(decimal.NewFromInt(100)))
	assert.NoError(t, illegal.ChangeLiabilityShares(decimal.NewFromInt(100)))
	_, err = illegal.GetSide()
	assert.ErrorIs(t, err, ErrIllegalBalanceState)
}

func TestBalanceClose(t *testing.T) {
	clk := clock.NewMock()
	bal := NewBalance(clk, uuid.Must(uuid.NewV4()))
	bal.EmissionsOutstanding = decimal.NewFromInt(5)

	assert.ErrorIs(t, bal.Close(clk), ErrCannotCloseOutstandingEmissions)

	bal.EmissionsOutstanding = decimal.Zero
	assert.NoError(t, bal.ChangeAssetShares(decimal.NewFromInt(100)))
	assert.NoError(t, bal.Close(clk))
	assert.False(t, bal.Active)
	assert.True(t, bal.AssetShares.IsZero())
}

func TestBalanceUsdValueAppliesPriceBias(t *testing.T) {
	clk := clock.NewMock()
	bank := newTestBank(clk)
	bank.TotalAssetShares = decimal.NewFromInt(1000)
	bank.TotalLiabilityShares = decimal.NewFromInt(500)

	bal := NewBalance(clk, bank.Id)
	assert.NoError(t, bal.ChangeAssetShares(decimal.NewFromInt(100)))
	assert.NoError(t, bal.ChangeLiabilityShares(decimal.NewFromInt(50)))

	price := decimal.NewFromInt(10)
	plainAssets, plainLiabs := bal.ComputeUsdValue(bank, price, Initial)
	biasedAssets, biasedLiabs := bal.GetUsdValueWithPriceBias(bank, price, Initial)

	assert.True(t, biasedAssets.LessThan(plainAssets), "asset value should shrink under conservative bias")
	assert.True(t, biasedLiabs.GreaterThan(plainLiabs), "liability value should grow under conservative bias")
}

func TestBalanceIncreaseDecreaseTypeStringers(t *testing.T) {
	assert.Equal(t, "DepositOnly", BalanceIncreaseTypeDepositOnly.String())
	assert.Equal(t, "Unknown", BalanceIncreaseType(0).String())
	assert.Equal(t, "BorrowOnly", BalanceDecreaseTypeBorrowOnly.String())
	assert.Equal(t, "Unknown", BalanceDecreaseType(0).String())
}
