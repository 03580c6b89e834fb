// Package price adapts the Dexscreener token-price endpoint. Price lookups
// are best-effort: any failure degrades to an empty map so callers render
// unpriced rows instead of failing the whole request.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/borkprotocol/bork-wallet-sdk/pkg/fetch"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultEndpoint is the public Dexscreener API host.
const DefaultEndpoint = "https://api.dexscreener.com"

// DexscreenerClient fetches USD prices for Sui coin types in one batch call.
type DexscreenerClient struct {
	endpoint string
	fetcher  *fetch.Client
	log      *zap.Logger
}

// NewDexscreenerClient creates a price client against the given endpoint.
func NewDexscreenerClient(endpoint string, fetcher *fetch.Client, log *zap.Logger) *DexscreenerClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DexscreenerClient{endpoint: endpoint, fetcher: fetcher, log: log}
}

type pairEntry struct {
	BaseToken struct {
		Address string `json:"address"`
	} `json:"baseToken"`
	PriceUsd string `json:"priceUsd"`
}

// FetchPrices returns USD prices keyed by coin type for every token the
// endpoint knows about. Tokens without a listed price are omitted. An empty
// input makes no network call.
func (c *DexscreenerClient) FetchPrices(ctx context.Context, tokenIDs []string) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal)
	if len(tokenIDs) == 0 {
		return prices
	}

	url := fmt.Sprintf("%s/tokens/v1/sui/%s", c.endpoint, strings.Join(tokenIDs, ","))
	raw, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodGet,
		URL:    url,
		Header: http.Header{"Accept": []string{"application/json"}},
	})
	if err != nil {
		c.log.Warn("price lookup failed, continuing without prices",
			zap.Int("tokens", len(tokenIDs)), zap.Error(err))
		return prices
	}

	var pairs []pairEntry
	if err := json.Unmarshal(raw, &pairs); err != nil {
		c.log.Warn("malformed price response, continuing without prices", zap.Error(err))
		return prices
	}

	for _, pair := range pairs {
		if pair.PriceUsd == "" {
			continue
		}
		value, err := decimal.NewFromString(pair.PriceUsd)
		if err != nil {
			c.log.Warn("unparseable price, skipping token",
				zap.String("token", pair.BaseToken.Address), zap.String("priceUsd", pair.PriceUsd))
			continue
		}
		prices[pair.BaseToken.Address] = value
	}
	return prices
}
