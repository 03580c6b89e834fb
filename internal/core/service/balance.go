package service

import (
	"context"
	"sort"

	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"go.uber.org/zap"
)

// BalanceService fetches every coin balance a wallet holds, scales the raw
// on-chain units into coin units, and values each position in USD.
type BalanceService struct {
	source domain.BalanceSource
	prices domain.PriceService
	log    *zap.Logger
}

// NewBalanceService creates a balance service.
func NewBalanceService(source domain.BalanceSource, prices domain.PriceService, log *zap.Logger) *BalanceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BalanceService{source: source, prices: prices, log: log}
}

// FetchBalances returns the wallet's full balance sheet sorted by USD value,
// largest first. Unlike history paging this is all or nothing: a failure on
// any page fails the whole call, since a partial balance sheet misstates
// what the wallet holds.
func (s *BalanceService) FetchBalances(ctx context.Context, addr domain.Address) ([]domain.BalanceEntry, error) {
	if addr == "" {
		return nil, domain.ErrMissingWallet
	}

	pager := s.source.Balances(addr)
	var raw []domain.RawBalance
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, classifyFetchError("balance", err)
		}
		raw = append(raw, page.Balances...)
		if !page.HasNext {
			break
		}
	}

	entries := make([]domain.BalanceEntry, 0, len(raw))
	tokenIDs := make([]string, 0, len(raw))
	for _, balance := range raw {
		entries = append(entries, domain.BalanceEntry{
			TokenID:         balance.TokenID,
			RawUnits:        balance.TotalBalance,
			CoinObjectCount: balance.CoinObjectCount,
			Decimals:        domain.SuiCoinDecimals,
			DisplayName:     domain.CoinDisplayName(balance.TokenID),
			Scaled:          balance.TotalBalance.Shift(-domain.SuiCoinDecimals),
		})
		tokenIDs = append(tokenIDs, balance.TokenID)
	}

	priced := s.prices.FetchPrices(ctx, tokenIDs)
	for i := range entries {
		if value, ok := priced[entries[i].TokenID]; ok {
			price := value
			entries[i].PriceUsd = &price
			entries[i].BalanceUsd = entries[i].Scaled.Mul(price)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].BalanceUsd.GreaterThan(entries[j].BalanceUsd)
	})
	return entries, nil
}
