package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// ActivityPager walks the pages of one transaction-history fetch. The
// continuation cursor lives inside the pager and is never reused across
// operations.
type ActivityPager interface {
	// Next fetches the next page. A rate-limit abort or exhausted retry
	// budget surfaces as an error; the caller decides whether pages
	// aggregated so far still count.
	Next(ctx context.Context) (*ActivityPage, error)
}

// BalancePager walks the pages of one balance fetch.
type BalancePager interface {
	Next(ctx context.Context) (*BalancePage, error)
}

// ActivitySource provides paginated transaction history and per-object
// trade lookups for the graph endpoint.
type ActivitySource interface {
	// Activity starts a paginated history fetch for the wallet.
	Activity(addr Address) ActivityPager

	// LastTransaction returns the balance changes of the most recent
	// transaction block that affected the object, oldest entry first.
	LastTransaction(ctx context.Context, objectID string) ([]BalanceChange, error)
}

// BalanceSource provides paginated token balances for a wallet.
type BalanceSource interface {
	Balances(addr Address) BalancePager
}

// PriceService batches current USD price lookups. Failures degrade to an
// empty map: a missing key means "unknown", never zero.
type PriceService interface {
	FetchPrices(ctx context.Context, tokenIDs []string) map[string]decimal.Decimal
}

// KioskLister is the kiosk enumeration collaborator.
type KioskLister interface {
	// OwnedKiosks returns the kiosk ids owned by the wallet.
	OwnedKiosks(ctx context.Context, addr Address) ([]string, error)

	// KioskItems returns the items held in one kiosk.
	KioskItems(ctx context.Context, kioskID string) ([]KioskListing, error)
}

// MetadataService batches NFT metadata lookups. Failures degrade to nil.
type MetadataService interface {
	FetchMetadata(ctx context.Context, objectIDs []string) map[string]ObjectMetadata
}
