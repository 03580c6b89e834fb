// Package defillama adapts the DefiLlama protocol listing endpoint.
package defillama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"github.com/borkprotocol/bork-wallet-sdk/pkg/fetch"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultEndpoint is the public DefiLlama API host.
const DefaultEndpoint = "https://api.llama.fi"

// Client fetches the full protocol universe in one call.
type Client struct {
	endpoint string
	fetcher  *fetch.Client
	log      *zap.Logger
}

// NewClient creates a protocol listing client.
func NewClient(endpoint string, fetcher *fetch.Client, log *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{endpoint: endpoint, fetcher: fetcher, log: log}
}

type protocolEntry struct {
	Name        string           `json:"name"`
	URL         string           `json:"url"`
	Description string           `json:"description"`
	TVL         decimal.Decimal  `json:"tvl"`
	Slug        string           `json:"slug"`
	Logo        string           `json:"logo"`
	Change1h    *decimal.Decimal `json:"change_1h"`
	Change1d    *decimal.Decimal `json:"change_1d"`
	Change7d    *decimal.Decimal `json:"change_7d"`
	Chain       string           `json:"chain"`
	Chains      []string         `json:"chains"`
}

// Protocols returns every protocol the endpoint lists, across all chains.
func (c *Client) Protocols(ctx context.Context) ([]domain.Protocol, error) {
	raw, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodGet,
		URL:    c.endpoint + "/protocols",
		Header: http.Header{"Accept": []string{"application/json"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}

	var entries []protocolEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("malformed protocol listing: %w", fetch.ErrUnavailable)
	}

	protocols := make([]domain.Protocol, 0, len(entries))
	for _, entry := range entries {
		protocols = append(protocols, domain.Protocol{
			Name:        entry.Name,
			URL:         entry.URL,
			Description: entry.Description,
			TVL:         entry.TVL,
			Slug:        entry.Slug,
			LogoURL:     entry.Logo,
			Change1h:    entry.Change1h,
			Change1d:    entry.Change1d,
			Change7d:    entry.Change7d,
			Chain:       entry.Chain,
			Chains:      entry.Chains,
		})
	}
	return protocols, nil
}
