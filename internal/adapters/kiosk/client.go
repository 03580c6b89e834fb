// Package kiosk adapts the collaborator kiosk-index endpoint that enumerates
// a wallet's kiosks and their held objects. Unlike pricing and metadata,
// enumeration failures surface as errors: without the object list there is
// nothing to render.
package kiosk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"github.com/borkprotocol/bork-wallet-sdk/pkg/fetch"
	"go.uber.org/zap"
)

// Client queries one kiosk-index endpoint.
type Client struct {
	endpoint string
	fetcher  *fetch.Client
	log      *zap.Logger
}

// NewClient creates a kiosk-index client.
func NewClient(endpoint string, fetcher *fetch.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{endpoint: endpoint, fetcher: fetcher, log: log}
}

// OwnedKiosks returns the IDs of every kiosk owned by the wallet.
func (c *Client) OwnedKiosks(ctx context.Context, addr domain.Address) ([]string, error) {
	raw, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/kiosks/owned?address=%s", c.endpoint, url.QueryEscape(string(addr))),
		Header: http.Header{"Accept": []string{"application/json"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list owned kiosks: %w", err)
	}

	var payload struct {
		KioskIDs []string `json:"kioskIds"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("malformed kiosk list response: %w", fetch.ErrUnavailable)
	}
	return payload.KioskIDs, nil
}

type itemEntry struct {
	ObjectID string          `json:"objectId"`
	Type     string          `json:"type"`
	IsLocked bool            `json:"isLocked"`
	KioskID  string          `json:"kioskId"`
	Listing  json.RawMessage `json:"listing"`
	Data     json.RawMessage `json:"data"`
}

// KioskItems returns the objects held by one kiosk.
func (c *Client) KioskItems(ctx context.Context, kioskID string) ([]domain.KioskListing, error) {
	raw, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/kiosks/%s/items", c.endpoint, url.PathEscape(kioskID)),
		Header: http.Header{"Accept": []string{"application/json"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list kiosk items: %w", err)
	}

	var payload struct {
		Items []itemEntry `json:"items"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("malformed kiosk items response: %w", fetch.ErrUnavailable)
	}

	listings := make([]domain.KioskListing, 0, len(payload.Items))
	for _, item := range payload.Items {
		listings = append(listings, domain.KioskListing{
			ObjectID: item.ObjectID,
			Type:     item.Type,
			IsLocked: item.IsLocked,
			KioskID:  item.KioskID,
			Listing:  item.Listing,
			Data:     item.Data,
		})
	}
	return listings, nil
}
