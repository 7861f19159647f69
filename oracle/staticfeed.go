package oracle

import (
	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
)

// NewStaticFeed builds a Feed whose quote never changes and is always
// considered fresh, for tests that need a predictable PriceAdapter
// without a network round trip.
func NewStaticFeed(clk clock.Clock, price, confidence decimal.Decimal) *Feed {
	return NewFeed(clk, 0, func() (Quote, error) {
		return Quote{
			Price:       price,
			Confidence:  confidence,
			PublishedAt: clk.Now().Unix(),
		}, nil
	})
}

// NewStaleFeed builds a Feed whose quote is always older than maxAgeSecs,
// for tests exercising the ErrStaleOracle path deterministically.
func NewStaleFeed(clk clock.Clock, price decimal.Decimal, maxAgeSecs int64) *Feed {
	return NewFeed(clk, maxAgeSecs, func() (Quote, error) {
		return Quote{
			Price:       price,
			Confidence:  decimal.Zero,
			PublishedAt: clk.Now().Unix() - maxAgeSecs - 1,
		}, nil
	})
}
