package connections

import (
	"context"
	"net/http"

	"github.com/xrpscan/ledgerlens/config"
	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/ledgerlens/models"
)

// RLUSD is pegged to the dollar and is always priced at 1.
const stablecoinPrice = 1.0

// PriceFeed reads the current XRP/USD price from a CoinGecko style
// simple-price endpoint.
type PriceFeed struct {
	url    string
	client *http.Client
}

func NewPriceFeed(url string, client *http.Client) *PriceFeed {
	if client == nil {
		client = newHTTPClient()
	}
	return &PriceFeed{url: url, client: client}
}

func NewPriceFeedFromEnv() *PriceFeed {
	return NewPriceFeed(config.EnvPriceAPIURL(), nil)
}

type simplePriceResponse struct {
	Ripple struct {
		USD float64 `json:"usd"`
	} `json:"ripple"`
}

// Prices never fails. When the endpoint cannot be read the XRP price is 0,
// which callers treat as "unknown".
func (p *PriceFeed) Prices(ctx context.Context) models.Prices {
	prices := models.Prices{
		models.BASE_ASSET: 0,
		"RLUSD":           stablecoinPrice,
	}

	var body simplePriceResponse
	if err := getJSON(ctx, p.client, p.url, &body); err != nil {
		logger.Log.Warn().Err(err).Msg("Price feed unavailable; using fallback prices")
		return prices
	}

	prices[models.BASE_ASSET] = body.Ripple.USD
	return prices
}
