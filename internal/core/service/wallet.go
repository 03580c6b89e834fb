package service

import (
	"context"
	"sync"

	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WalletService composes the three fetchers into one wallet snapshot.
type WalletService struct {
	activity *ActivityService
	balances *BalanceService
	kiosks   *KioskService
	log      *zap.Logger
}

// NewWalletService creates a wallet snapshot service.
func NewWalletService(activity *ActivityService, balances *BalanceService, kiosks *KioskService, log *zap.Logger) *WalletService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WalletService{activity: activity, balances: balances, kiosks: kiosks, log: log}
}

// Snapshot fetches transactions, balances, and kiosk NFTs concurrently.
// Each section fails independently: a section that errors is recorded in
// Unavailable while the others still populate.
func (s *WalletService) Snapshot(ctx context.Context, addr domain.Address, floorPrice *decimal.Decimal) (*domain.WalletSnapshot, error) {
	if addr == "" {
		return nil, domain.ErrMissingWallet
	}

	snap := &domain.WalletSnapshot{
		Address:     addr,
		Unavailable: make(map[string]string),
	}
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		records, err := s.activity.FetchActivity(groupCtx, addr)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			s.log.Warn("transaction section unavailable", zap.Error(err))
			snap.Unavailable["transactions"] = err.Error()
			return nil
		}
		snap.Transactions = records
		return nil
	})

	group.Go(func() error {
		entries, err := s.balances.FetchBalances(groupCtx, addr)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			s.log.Warn("balance section unavailable", zap.Error(err))
			snap.Unavailable["balances"] = err.Error()
			return nil
		}
		snap.Balances = entries
		return nil
	})

	group.Go(func() error {
		kiosks, err := s.kiosks.FetchKiosks(groupCtx, addr, floorPrice)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			s.log.Warn("kiosk section unavailable", zap.Error(err))
			snap.Unavailable["kiosks"] = err.Error()
			return nil
		}
		snap.Kiosks = kiosks
		return nil
	})

	group.Wait()
	return snap, nil
}
