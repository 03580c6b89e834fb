package service

import (
	"context"
	"errors"
	"sync"

	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"github.com/shopspring/decimal"
)

const testWallet = domain.Address("0x" +
	"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

var errBoom = errors.New("boom")

type pageResult struct {
	page *domain.ActivityPage
	err  error
}

type stubActivityPager struct {
	results []pageResult
	calls   int
}

func (p *stubActivityPager) Next(ctx context.Context) (*domain.ActivityPage, error) {
	if p.calls >= len(p.results) {
		return &domain.ActivityPage{}, nil
	}
	result := p.results[p.calls]
	p.calls++
	return result.page, result.err
}

type stubActivitySource struct {
	pager      *stubActivityPager
	lastTrades map[string][]domain.BalanceChange
	lastErrs   map[string]error

	mu        sync.Mutex
	lastCalls int
}

func (s *stubActivitySource) Activity(addr domain.Address) domain.ActivityPager {
	return s.pager
}

func (s *stubActivitySource) LastTransaction(ctx context.Context, objectID string) ([]domain.BalanceChange, error) {
	s.mu.Lock()
	s.lastCalls++
	s.mu.Unlock()
	if err, ok := s.lastErrs[objectID]; ok {
		return nil, err
	}
	return s.lastTrades[objectID], nil
}

type balancePageResult struct {
	page *domain.BalancePage
	err  error
}

type stubBalancePager struct {
	results []balancePageResult
	calls   int
}

func (p *stubBalancePager) Next(ctx context.Context) (*domain.BalancePage, error) {
	if p.calls >= len(p.results) {
		return &domain.BalancePage{}, nil
	}
	result := p.results[p.calls]
	p.calls++
	return result.page, result.err
}

type stubBalanceSource struct {
	pager *stubBalancePager
}

func (s *stubBalanceSource) Balances(addr domain.Address) domain.BalancePager {
	return s.pager
}

type stubPrices struct {
	prices     map[string]decimal.Decimal
	calls      int
	lastTokens []string
}

func (s *stubPrices) FetchPrices(ctx context.Context, tokenIDs []string) map[string]decimal.Decimal {
	s.calls++
	s.lastTokens = tokenIDs
	result := make(map[string]decimal.Decimal)
	for _, id := range tokenIDs {
		if value, ok := s.prices[id]; ok {
			result[id] = value
		}
	}
	return result
}

type stubLister struct {
	kioskIDs   []string
	items      map[string][]domain.KioskListing
	ownedErr   error
	itemsErr   error
	ownedCalls int
}

func (s *stubLister) OwnedKiosks(ctx context.Context, addr domain.Address) ([]string, error) {
	s.ownedCalls++
	if s.ownedErr != nil {
		return nil, s.ownedErr
	}
	return s.kioskIDs, nil
}

func (s *stubLister) KioskItems(ctx context.Context, kioskID string) ([]domain.KioskListing, error) {
	if s.itemsErr != nil {
		return nil, s.itemsErr
	}
	return s.items[kioskID], nil
}

type stubMetadata struct {
	meta  map[string]domain.ObjectMetadata
	calls int
}

func (s *stubMetadata) FetchMetadata(ctx context.Context, objectIDs []string) map[string]domain.ObjectMetadata {
	s.calls++
	return s.meta
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
