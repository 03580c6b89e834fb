package service

import (
	"context"
	"time"

	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"github.com/borkprotocol/bork-wallet-sdk/pkg/cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultKioskCacheTTL is the durable-store expiry stamped on cached
	// kiosk enumerations.
	DefaultKioskCacheTTL = 5 * time.Minute
	// DefaultNFTConcurrency bounds the per-item last-trade fan-out.
	DefaultNFTConcurrency = 4

	// KioskCacheNamespace isolates kiosk keys from unrelated data sharing
	// the same durable store.
	KioskCacheNamespace = "sui/kiosk"

	kioskCachePrefix = "kiosk-nfts-"
)

// KioskService aggregates a wallet's kiosk-held NFTs. Enumeration is cached
// per wallet; price and image enrichment always run fresh on top of the
// cached item list.
type KioskService struct {
	lister      domain.KioskLister
	trades      domain.ActivitySource
	metadata    domain.MetadataService
	cache       cache.Store
	cacheTTL    time.Duration
	concurrency int
	log         *zap.Logger
}

// NewKioskService creates a kiosk service with default cache TTL and fan-out.
func NewKioskService(lister domain.KioskLister, trades domain.ActivitySource, metadata domain.MetadataService, store cache.Store, log *zap.Logger) *KioskService {
	if store == nil {
		store = cache.NoOpStore{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &KioskService{
		lister:      lister,
		trades:      trades,
		metadata:    metadata,
		cache:       store,
		cacheTTL:    DefaultKioskCacheTTL,
		concurrency: DefaultNFTConcurrency,
		log:         log,
	}
}

// SetConcurrency overrides the enrichment fan-out limit.
func (s *KioskService) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// SetCacheTTL overrides the durable-store expiry of cached enumerations.
func (s *KioskService) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// FetchKiosks returns the wallet's kiosks with their items enriched with
// last-trade prices and image metadata. The caller supplies the collection
// floor price, which is stamped uniformly onto every item; a nil floor
// leaves items without one. If enumeration fails the error distinguishes
// "could not determine" from a wallet that simply owns no kiosks.
func (s *KioskService) FetchKiosks(ctx context.Context, addr domain.Address, floorPrice *decimal.Decimal) ([]domain.Kiosk, error) {
	if addr == "" {
		return nil, domain.ErrMissingWallet
	}

	kiosks, err := s.enumerate(ctx, addr)
	if err != nil {
		return nil, err
	}

	s.enrichTrades(ctx, kiosks)
	s.enrichMetadata(ctx, kiosks)

	if floorPrice != nil {
		for i := range kiosks {
			for j := range kiosks[i].Items {
				floor := *floorPrice
				kiosks[i].Items[j].FloorPrice = &floor
			}
		}
	}
	return kiosks, nil
}

// enumerate lists the wallet's kiosks and their items, serving from cache
// when an unexpired enumeration exists.
func (s *KioskService) enumerate(ctx context.Context, addr domain.Address) ([]domain.Kiosk, error) {
	key := kioskCachePrefix + string(addr)

	var cached []domain.Kiosk
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("kiosk cache read failed, refetching", zap.Error(err))
	}
	if hit {
		s.log.Debug("serving kiosk enumeration from cache",
			zap.String("wallet", string(addr)), zap.Int("kiosks", len(cached)))
		return cached, nil
	}

	kioskIDs, err := s.lister.OwnedKiosks(ctx, addr)
	if err != nil {
		return nil, classifyFetchError("kiosk enumeration", err)
	}

	kiosks := make([]domain.Kiosk, 0, len(kioskIDs))
	for i, kioskID := range kioskIDs {
		listings, err := s.lister.KioskItems(ctx, kioskID)
		if err != nil {
			return nil, classifyFetchError("kiosk item listing", err)
		}

		kiosk := domain.Kiosk{Index: i + 1}
		for _, listing := range listings {
			kiosk.Items = append(kiosk.Items, domain.KioskItem{
				ObjectID:     listing.ObjectID,
				CollectionID: listing.Type,
				KioskID:      listing.KioskID,
				IsLocked:     listing.IsLocked,
				Listing:      listing.Listing,
				Data:         listing.Data,
			})
		}
		kiosks = append(kiosks, kiosk)
	}

	if err := s.cache.Set(ctx, key, kiosks, s.cacheTTL); err != nil {
		s.log.Warn("kiosk cache write failed", zap.Error(err))
	}
	return kiosks, nil
}

// enrichTrades resolves each item's last trade price with a bounded fan-out.
// The price is the absolute value of the first negative balance change in
// the most recent transaction touching the object; items with no negative
// change, or whose lookup fails, stay unpriced.
func (s *KioskService) enrichTrades(ctx context.Context, kiosks []domain.Kiosk) {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for i := range kiosks {
		for j := range kiosks[i].Items {
			item := &kiosks[i].Items[j]
			group.Go(func() error {
				changes, err := s.trades.LastTransaction(groupCtx, item.ObjectID)
				if err != nil {
					s.log.Warn("last-trade lookup failed, leaving item unpriced",
						zap.String("objectId", item.ObjectID), zap.Error(err))
					return nil
				}
				for _, change := range changes {
					if change.Amount.IsNegative() {
						price := change.Amount.Abs()
						item.LatestPrice = &price
						break
					}
				}
				return nil
			})
		}
	}
	group.Wait()
}

// enrichMetadata resolves image URLs for every item in one batch call.
func (s *KioskService) enrichMetadata(ctx context.Context, kiosks []domain.Kiosk) {
	var objectIDs []string
	for i := range kiosks {
		for j := range kiosks[i].Items {
			objectIDs = append(objectIDs, kiosks[i].Items[j].ObjectID)
		}
	}
	if len(objectIDs) == 0 {
		return
	}

	meta := s.metadata.FetchMetadata(ctx, objectIDs)
	if meta == nil {
		return
	}
	for i := range kiosks {
		for j := range kiosks[i].Items {
			if entry, ok := meta[kiosks[i].Items[j].ObjectID]; ok {
				kiosks[i].Items[j].ImgURL = entry.ImgURL
			}
		}
	}
}
