package oracle

import (
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/domeliquid/lendingcore/core"
)

func TestFeedGetPriceOfType(t *testing.T) {
	clk := clock.NewMock()
	clk.Add(1000 * time.Second)

	tests := []struct {
		name  string
		bias  core.PriceBias
		price decimal.Decimal
		conf  decimal.Decimal
		want  decimal.Decimal
	}{
		{"low biases down", core.Low, decimal.NewFromInt(100), decimal.NewFromInt(2), decimal.NewFromInt(98)},
		{"high biases up", core.High, decimal.NewFromInt(100), decimal.NewFromInt(2), decimal.NewFromInt(102)},
		{"original unbiased", core.Original, decimal.NewFromInt(100), decimal.NewFromInt(2), decimal.NewFromInt(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := NewStaticFeed(clk, tt.price, tt.conf)
			got, err := feed.GetPriceOfType(core.RealTime, tt.bias)
			assert.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestFeedGetAllPriceType(t *testing.T) {
	clk := clock.NewMock()
	clk.Add(1000 * time.Second)

	feed := NewStaticFeed(clk, decimal.NewFromInt(50), decimal.NewFromInt(1))
	price, low, high, err := feed.GetAllPriceType()
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(price))
	assert.True(t, decimal.NewFromInt(49).Equal(low))
	assert.True(t, decimal.NewFromInt(51).Equal(high))
}

func TestFeedStaleOracleRejected(t *testing.T) {
	clk := clock.NewMock()
	clk.Add(1000 * time.Second)

	feed := NewStaleFeed(clk, decimal.NewFromInt(100), core.DefaultOracleMaxAgeSeconds)
	_, err := feed.GetPriceOfType(core.RealTime, core.Original)
	assert.ErrorIs(t, err, core.ErrStaleOracle)
}

func TestFeedNonPositivePriceRejected(t *testing.T) {
	clk := clock.NewMock()
	clk.Add(1000 * time.Second)

	zero := NewStaticFeed(clk, decimal.Zero, decimal.Zero)
	_, err := zero.GetPriceOfType(core.RealTime, core.Original)
	assert.ErrorIs(t, err, core.ErrInvalidOracleAccount)

	negative := NewStaticFeed(clk, decimal.NewFromInt(-1), decimal.Zero)
	_, err = negative.GetPriceOfType(core.RealTime, core.Original)
	assert.ErrorIs(t, err, core.ErrInvalidOracleAccount)
}

func TestFeedFetchErrorPropagates(t *testing.T) {
	clk := clock.NewMock()
	boom := assert.AnError
	feed := NewFeed(clk, 0, func() (Quote, error) {
		return Quote{}, boom
	})
	_, err := feed.GetPriceOfType(core.RealTime, core.Original)
	assert.ErrorIs(t, err, boom)
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	reg := NewRegistry()
	bank := &core.Bank{Id: uuid.Must(uuid.NewV4())}

	_, err := reg.GetPriceAdapter(bank)
	assert.ErrorIs(t, err, core.ErrInvalidOracleAccount)

	clk := clock.NewMock()
	feed := NewStaticFeed(clk, decimal.NewFromInt(1), decimal.Zero)
	reg.Register(bank.Id, feed)

	adapter, err := reg.GetPriceAdapter(bank)
	assert.NoError(t, err)
	assert.Equal(t, feed, adapter)
}
