package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// UnknownToken is the sentinel token id for a transaction that was kept even
// though it carries no balance-change entries.
const UnknownToken = "UNKNOWN"

// SuiCoinDecimals is the implicit scale of raw balance units.
const SuiCoinDecimals = 9

// TransactionLeg is one token movement within a transaction block.
// PriceUsd stays nil when the price oracle does not know the token.
type TransactionLeg struct {
	TokenID  string           `json:"coinType"`
	Amount   decimal.Decimal  `json:"amount"`
	PriceUsd *decimal.Decimal `json:"priceUsd"`
}

// TransactionRecord is one successful transaction that touched the queried
// wallet. Legs is never empty: blocks without balance changes carry a single
// sentinel leg instead.
type TransactionRecord struct {
	TimestampMs int64            `json:"timestamp"`
	Legs        []TransactionLeg `json:"legs"`
}

// BalanceEntry is one token balance held by the wallet, enriched with its
// current USD price. BalanceUsd is zero when the price is unknown; PriceUsd
// distinguishes "unknown" (nil) from "worth nothing".
type BalanceEntry struct {
	TokenID         string           `json:"coinType"`
	RawUnits        decimal.Decimal  `json:"totalBalance"`
	CoinObjectCount int              `json:"coinObjectCount"`
	Decimals        int              `json:"decimals"`
	DisplayName     string           `json:"displayName"`
	Scaled          decimal.Decimal  `json:"balance"`
	PriceUsd        *decimal.Decimal `json:"priceUsd"`
	BalanceUsd      decimal.Decimal  `json:"balanceUsd"`
}

// KioskItem is one NFT held in a kiosk. LatestPrice is the price paid when
// the item last changed hands, nil when no trade could be found; FloorPrice
// is supplied by the caller and applied uniformly; ImgURL comes from the
// metadata service and is nil when the lookup failed or had no entry.
type KioskItem struct {
	ObjectID     string           `json:"objectId"`
	CollectionID string           `json:"collectionId"`
	KioskID      string           `json:"kioskId"`
	IsLocked     bool             `json:"isLocked"`
	LatestPrice  *decimal.Decimal `json:"latestPrice"`
	FloorPrice   *decimal.Decimal `json:"floorPrice"`
	ImgURL       *string          `json:"imgUrl"`

	// Listing and Data carry the collaborator's marketplace listing and
	// raw object content untouched, so cached enumerations keep everything
	// the upstream reported.
	Listing json.RawMessage `json:"listing,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Kiosk is a wallet-owned container of NFT items. Index is 1-based.
type Kiosk struct {
	Index int         `json:"kioskIndex"`
	Items []KioskItem `json:"items"`
}

// WalletSnapshot aggregates the three independent views of a wallet. A
// section that could not be fetched records its reason in Unavailable; an
// empty slice with no entry there genuinely means "no data".
type WalletSnapshot struct {
	Address      Address             `json:"walletAddress"`
	Transactions []TransactionRecord `json:"transactions"`
	Balances     []BalanceEntry      `json:"balances"`
	Kiosks       []Kiosk             `json:"kiosks"`
	Unavailable  map[string]string   `json:"unavailable,omitempty"`
}

// BalanceChange is one balance-change entry of a transaction block as
// reported by the graph endpoint.
type BalanceChange struct {
	Owner   string
	Amount  decimal.Decimal
	TokenID string
}

// TransactionBlock is one raw transaction block from the graph endpoint,
// before filtering.
type TransactionBlock struct {
	Status         string
	TimestampMs    int64
	BalanceChanges []BalanceChange
}

// ActivityPage is one page of transaction blocks.
type ActivityPage struct {
	Blocks  []TransactionBlock
	HasNext bool
}

// RawBalance is one unenriched balance node from the graph endpoint.
type RawBalance struct {
	TokenID         string
	CoinObjectCount int
	TotalBalance    decimal.Decimal
}

// BalancePage is one page of balance nodes.
type BalancePage struct {
	Balances []RawBalance
	HasNext  bool
}

// KioskListing is one item as reported by the kiosk collaborator, before
// enrichment.
type KioskListing struct {
	ObjectID string
	Type     string
	IsLocked bool
	KioskID  string
	Listing  json.RawMessage
	Data     json.RawMessage
}

// ObjectMetadata is the per-object slice of a batch metadata response.
type ObjectMetadata struct {
	ImgURL *string
}

// CoinDisplayName derives a short name from a coin type identifier: the
// third "::"-delimited segment of e.g. "0x2::sui::SUI", or the full
// identifier when it does not follow that shape.
func CoinDisplayName(tokenID string) string {
	parts := strings.Split(tokenID, "::")
	if len(parts) >= 3 && parts[2] != "" {
		return parts[2]
	}
	return tokenID
}
