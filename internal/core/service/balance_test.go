package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchBalancesMissingWallet(t *testing.T) {
	svc := NewBalanceService(&stubBalanceSource{pager: &stubBalancePager{}}, &stubPrices{}, zap.NewNop())

	_, err := svc.FetchBalances(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrMissingWallet)
}

func TestFetchBalancesScalesAndValues(t *testing.T) {
	source := &stubBalanceSource{pager: &stubBalancePager{results: []balancePageResult{
		{page: &domain.BalancePage{Balances: []domain.RawBalance{
			{TokenID: "0x2::sui::SUI", CoinObjectCount: 3, TotalBalance: decimal.NewFromInt(5000000000)},
		}}},
	}}}
	prices := &stubPrices{prices: map[string]decimal.Decimal{
		"0x2::sui::SUI": decimal.RequireFromString("3.42"),
	}}
	svc := NewBalanceService(source, prices, zap.NewNop())

	entries, err := svc.FetchBalances(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "SUI", entry.DisplayName)
	assert.Equal(t, 9, entry.Decimals)
	assert.Equal(t, 3, entry.CoinObjectCount)
	assert.True(t, entry.Scaled.Equal(decimal.NewFromInt(5)))
	require.NotNil(t, entry.PriceUsd)
	assert.True(t, entry.BalanceUsd.Equal(decimal.RequireFromString("17.1")))
}

func TestFetchBalancesTwoPagesOneUnpriced(t *testing.T) {
	// 50 entries on the first page, 3 on the second, prices known for all
	// tokens but one.
	var page1 []domain.RawBalance
	priceTable := make(map[string]decimal.Decimal)
	for i := 0; i < 50; i++ {
		token := fmt.Sprintf("0x%02d::coin::C%02d", i, i)
		page1 = append(page1, domain.RawBalance{
			TokenID:      token,
			TotalBalance: decimal.NewFromInt(1000000000),
		})
		priceTable[token] = decimal.NewFromInt(int64(i + 1))
	}
	page2 := []domain.RawBalance{
		{TokenID: "0xf0::coin::RICH", TotalBalance: decimal.NewFromInt(2000000000)},
		{TokenID: "0xf1::coin::DUST", TotalBalance: decimal.NewFromInt(1)},
		{TokenID: "0xf2::coin::GHOST", TotalBalance: decimal.NewFromInt(1000000000)},
	}
	priceTable["0xf0::coin::RICH"] = decimal.NewFromInt(100)
	priceTable["0xf1::coin::DUST"] = decimal.NewFromInt(1)
	// GHOST has no listed price.

	source := &stubBalanceSource{pager: &stubBalancePager{results: []balancePageResult{
		{page: &domain.BalancePage{Balances: page1, HasNext: true}},
		{page: &domain.BalancePage{Balances: page2}},
	}}}
	prices := &stubPrices{prices: priceTable}
	svc := NewBalanceService(source, prices, zap.NewNop())

	entries, err := svc.FetchBalances(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, entries, 53)

	// One batched price call covering every token.
	assert.Equal(t, 1, prices.calls)
	assert.Len(t, prices.lastTokens, 53)

	unpriced := 0
	for _, entry := range entries {
		if entry.PriceUsd == nil {
			unpriced++
			assert.True(t, entry.BalanceUsd.IsZero())
		}
	}
	assert.Equal(t, 1, unpriced)

	// Descending by USD value: RICH (200) leads, then C49 (50), C48, ...
	assert.Equal(t, "0xf0::coin::RICH", entries[0].TokenID)
	assert.Equal(t, "0x49::coin::C49", entries[1].TokenID)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].BalanceUsd.GreaterThanOrEqual(entries[i].BalanceUsd))
	}
}

func TestFetchBalancesTiesKeepInputOrder(t *testing.T) {
	source := &stubBalanceSource{pager: &stubBalancePager{results: []balancePageResult{
		{page: &domain.BalancePage{Balances: []domain.RawBalance{
			{TokenID: "0xa::coin::FIRST", TotalBalance: decimal.NewFromInt(1000000000)},
			{TokenID: "0xb::coin::SECOND", TotalBalance: decimal.NewFromInt(1000000000)},
			{TokenID: "0xc::coin::BIG", TotalBalance: decimal.NewFromInt(9000000000)},
		}}},
	}}}
	prices := &stubPrices{prices: map[string]decimal.Decimal{
		"0xa::coin::FIRST":  decimal.NewFromInt(2),
		"0xb::coin::SECOND": decimal.NewFromInt(2),
		"0xc::coin::BIG":    decimal.NewFromInt(1),
	}}
	svc := NewBalanceService(source, prices, zap.NewNop())

	entries, err := svc.FetchBalances(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "0xc::coin::BIG", entries[0].TokenID)
	assert.Equal(t, "0xa::coin::FIRST", entries[1].TokenID)
	assert.Equal(t, "0xb::coin::SECOND", entries[2].TokenID)
}

func TestFetchBalancesAllOrNothing(t *testing.T) {
	source := &stubBalanceSource{pager: &stubBalancePager{results: []balancePageResult{
		{page: &domain.BalancePage{Balances: []domain.RawBalance{
			{TokenID: "0x2::sui::SUI", TotalBalance: decimal.NewFromInt(1)},
		}, HasNext: true}},
		{err: errBoom},
	}}}
	svc := NewBalanceService(source, &stubPrices{}, zap.NewNop())

	entries, err := svc.FetchBalances(context.Background(), testWallet)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Nil(t, entries)
}
