package oracle

import (
	"fmt"

	"github.com/facebookgo/clock"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// MarketAssetInfo is the subset of Mixin's market-data response this
// feed actually needs: a live price and the day's high/low, the latter
// standing in for a confidence interval when the upstream API doesn't
// publish one directly.
type MarketAssetInfo struct {
	CoinID       string          `json:"coin_id"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	High24H      decimal.Decimal `json:"high_24h"`
	Low24H       decimal.Decimal `json:"low_24h"`
	UpdatedAt    int64           `json:"updated_at"`
}

// MixinMarketClient pulls market data from Mixin's public asset-market
// endpoint over HTTP.
type MixinMarketClient struct {
	http    *resty.Client
	baseURL string
}

func NewMixinMarketClient(baseURL string) *MixinMarketClient {
	return &MixinMarketClient{
		http:    resty.New(),
		baseURL: baseURL,
	}
}

func (c *MixinMarketClient) GetMarketAssetInfo(coinId string) (*MarketAssetInfo, error) {
	var info MarketAssetInfo
	resp, err := c.http.R().
		SetResult(&info).
		Get(fmt.Sprintf("%s/network/assets/%s", c.baseURL, coinId))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("mixin market data: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	return &info, nil
}

// NewMixinFeed wraps a MixinMarketClient into a Feed, deriving the
// confidence interval from half the day's high/low spread — wider
// swings in the last 24h widen the conservative band the risk engine
// applies on top, the same direction real confidence-interval oracles
// move under volatility.
func NewMixinFeed(clk clock.Clock, client *MixinMarketClient, coinId string, maxAgeSecs int64) *Feed {
	fetch := func() (Quote, error) {
		info, err := client.GetMarketAssetInfo(coinId)
		if err != nil {
			return Quote{}, err
		}
		confidence := info.High24H.Sub(info.Low24H).Div(decimal.NewFromInt(2)).Abs()
		return Quote{
			Price:       info.CurrentPrice,
			Confidence:  confidence,
			PublishedAt: info.UpdatedAt,
		}, nil
	}
	return NewFeed(clk, maxAgeSecs, fetch)
}
