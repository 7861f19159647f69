// Package oracle provides concrete core.PriceAdapter implementations:
// a live Mixin market-data feed and a static test double.
package oracle

import (
	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/domeliquid/lendingcore/core"
)

// Quote is one oracle reading: a price plus a symmetric confidence
// interval, the way every core.PriceAdapter.GetPriceOfType bias split
// (Low = price−confidence, High = price+confidence) expects to read
// from it.
type Quote struct {
	Price       decimal.Decimal
	Confidence  decimal.Decimal
	PublishedAt int64
}

// Feed adapts a Quote source into a core.PriceAdapter, enforcing the
// staleness bound every pull-style oracle is subject to regardless of
// which concrete source backs it.
type Feed struct {
	clk        clock.Clock
	maxAgeSecs int64
	fetch      func() (Quote, error)
}

func NewFeed(clk clock.Clock, maxAgeSecs int64, fetch func() (Quote, error)) *Feed {
	if maxAgeSecs <= 0 {
		maxAgeSecs = core.DefaultOracleMaxAgeSeconds
	}
	return &Feed{clk: clk, maxAgeSecs: maxAgeSecs, fetch: fetch}
}

func (f *Feed) quote() (Quote, error) {
	q, err := f.fetch()
	if err != nil {
		return Quote{}, err
	}
	if f.clk.Now().Unix()-q.PublishedAt > f.maxAgeSecs {
		return Quote{}, core.ErrStaleOracle
	}
	if !q.Price.IsPositive() {
		return Quote{}, core.ErrInvalidOracleAccount
	}
	return q, nil
}

func (f *Feed) GetPriceOfType(_ core.OraclePriceType, bias core.PriceBias) (decimal.Decimal, error) {
	q, err := f.quote()
	if err != nil {
		return decimal.Zero, err
	}
	switch bias {
	case core.Low:
		return q.Price.Sub(q.Confidence), nil
	case core.High:
		return q.Price.Add(q.Confidence), nil
	default:
		return q.Price, nil
	}
}

func (f *Feed) GetAllPriceType() (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	q, err := f.quote()
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	return q.Price, q.Price.Sub(q.Confidence), q.Price.Add(q.Confidence), nil
}

// Registry resolves each bank's oracle setup to a Feed, implementing
// core.PriceAdapterMgr over whatever feeds were registered for it.
type Registry struct {
	feeds map[uuid.UUID]core.PriceAdapter
}

func NewRegistry() *Registry {
	return &Registry{feeds: make(map[uuid.UUID]core.PriceAdapter)}
}

func (r *Registry) Register(bankId uuid.UUID, adapter core.PriceAdapter) {
	r.feeds[bankId] = adapter
}

func (r *Registry) GetPriceAdapter(bank *core.Bank) (core.PriceAdapter, error) {
	adapter, ok := r.feeds[bank.Id]
	if !ok {
		return nil, core.ErrInvalidOracleAccount
	}
	return adapter, nil
}
