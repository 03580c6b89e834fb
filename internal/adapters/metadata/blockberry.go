// Package metadata adapts the Blockberry object-metadata endpoint. Like
// pricing, metadata is decorative: failures degrade to nil so NFT listings
// render without images rather than not at all.
package metadata

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"github.com/borkprotocol/bork-wallet-sdk/pkg/fetch"
	"go.uber.org/zap"
)

// DefaultEndpoint is the public Blockberry API host.
const DefaultEndpoint = "https://api.blockberry.one"

// BlockberryClient resolves display metadata for Sui objects in one batch.
type BlockberryClient struct {
	endpoint string
	apiKey   string
	fetcher  *fetch.Client
	log      *zap.Logger
}

// NewBlockberryClient creates a metadata client. The API key is sent as the
// x-api-key header on every request.
func NewBlockberryClient(endpoint, apiKey string, fetcher *fetch.Client, log *zap.Logger) *BlockberryClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BlockberryClient{endpoint: endpoint, apiKey: apiKey, fetcher: fetcher, log: log}
}

type metadataEntry struct {
	ImgURL *string `json:"imgUrl"`
}

// FetchMetadata returns metadata keyed by object ID for every object the
// endpoint resolves. An empty input makes no network call; any failure
// returns nil.
func (c *BlockberryClient) FetchMetadata(ctx context.Context, objectIDs []string) map[string]domain.ObjectMetadata {
	if len(objectIDs) == 0 {
		return map[string]domain.ObjectMetadata{}
	}

	body, err := json.Marshal(map[string][]string{"hashes": objectIDs})
	if err != nil {
		c.log.Warn("failed to marshal metadata request", zap.Error(err))
		return nil
	}

	raw, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodPost,
		URL:    c.endpoint + "/sui/v1/metadata/objects",
		Header: http.Header{
			"Accept":       []string{"application/json"},
			"Content-Type": []string{"application/json"},
			"X-Api-Key":    []string{c.apiKey},
		},
		Body: body,
	})
	if err != nil {
		c.log.Warn("metadata lookup failed, continuing without metadata",
			zap.Int("objects", len(objectIDs)), zap.Error(err))
		return nil
	}

	var entries map[string]metadataEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.log.Warn("malformed metadata response, continuing without metadata", zap.Error(err))
		return nil
	}

	result := make(map[string]domain.ObjectMetadata, len(entries))
	for id, entry := range entries {
		result[id] = domain.ObjectMetadata{ImgURL: entry.ImgURL}
	}
	return result
}
