package service

import (
	"context"
	"testing"
	"time"

	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"github.com/borkprotocol/bork-wallet-sdk/pkg/fetch"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newActivityService(source domain.ActivitySource, prices domain.PriceService) *ActivityService {
	svc := NewActivityService(source, prices, zap.NewNop())
	svc.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return svc
}

func ownBlock(status string, amounts ...string) domain.TransactionBlock {
	block := domain.TransactionBlock{Status: status, TimestampMs: 1700000000000}
	for _, amount := range amounts {
		block.BalanceChanges = append(block.BalanceChanges, domain.BalanceChange{
			Owner:   string(testWallet),
			Amount:  decimal.RequireFromString(amount),
			TokenID: "0x2::sui::SUI",
		})
	}
	return block
}

func TestFetchActivityMissingWallet(t *testing.T) {
	svc := newActivityService(&stubActivitySource{pager: &stubActivityPager{}}, &stubPrices{})

	_, err := svc.FetchActivity(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrMissingWallet)
}

func TestFetchActivityFiltersBlocks(t *testing.T) {
	foreign := domain.TransactionBlock{
		Status: "success",
		BalanceChanges: []domain.BalanceChange{
			{Owner: "0xsomeoneelse", Amount: decimal.NewFromInt(5), TokenID: "0x2::sui::SUI"},
		},
	}
	failed := ownBlock("failure", "-10")
	upperOwner := domain.TransactionBlock{
		Status: "SUCCESS",
		BalanceChanges: []domain.BalanceChange{
			{Owner: "0x" + "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
				Amount: decimal.NewFromInt(7), TokenID: "0x2::sui::SUI"},
		},
	}

	source := &stubActivitySource{pager: &stubActivityPager{results: []pageResult{
		{page: &domain.ActivityPage{Blocks: []domain.TransactionBlock{
			foreign, failed, ownBlock("success", "-10", "3"), upperOwner,
		}}},
	}}}
	svc := newActivityService(source, &stubPrices{})

	records, err := svc.FetchActivity(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Len(t, records[0].Legs, 2)
	assert.Len(t, records[1].Legs, 1)
}

func TestFetchActivityFirstPageRateLimited(t *testing.T) {
	source := &stubActivitySource{pager: &stubActivityPager{results: []pageResult{
		{err: fetch.ErrRateLimited},
	}}}
	svc := newActivityService(source, &stubPrices{})

	_, err := svc.FetchActivity(context.Background(), testWallet)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestFetchActivityFirstPageUnavailable(t *testing.T) {
	source := &stubActivitySource{pager: &stubActivityPager{results: []pageResult{
		{err: errBoom},
	}}}
	svc := newActivityService(source, &stubPrices{})

	_, err := svc.FetchActivity(context.Background(), testWallet)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestFetchActivityPartialSuccess(t *testing.T) {
	source := &stubActivitySource{pager: &stubActivityPager{results: []pageResult{
		{page: &domain.ActivityPage{Blocks: []domain.TransactionBlock{ownBlock("success", "-1")}, HasNext: true}},
		{err: fetch.ErrUnavailable},
	}}}
	svc := newActivityService(source, &stubPrices{})

	records, err := svc.FetchActivity(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFetchActivityRespectsPageCap(t *testing.T) {
	var results []pageResult
	for i := 0; i < 10; i++ {
		results = append(results, pageResult{
			page: &domain.ActivityPage{Blocks: []domain.TransactionBlock{ownBlock("success", "-1")}, HasNext: true},
		})
	}
	pager := &stubActivityPager{results: results}
	svc := newActivityService(&stubActivitySource{pager: pager}, &stubPrices{})

	var delays []time.Duration
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	records, err := svc.FetchActivity(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Len(t, records, DefaultMaxActivityPages)
	assert.Equal(t, DefaultMaxActivityPages, pager.calls)

	// One pause between each pair of consecutive pages.
	require.Len(t, delays, DefaultMaxActivityPages-1)
	for _, d := range delays {
		assert.Equal(t, DefaultPageDelay, d)
	}
}

func TestFetchActivityStopsWhenExhausted(t *testing.T) {
	pager := &stubActivityPager{results: []pageResult{
		{page: &domain.ActivityPage{Blocks: []domain.TransactionBlock{ownBlock("success", "-1")}, HasNext: false}},
	}}
	svc := newActivityService(&stubActivitySource{pager: pager}, &stubPrices{})

	_, err := svc.FetchActivity(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, 1, pager.calls)
}

func TestFetchActivityEnrichesPrices(t *testing.T) {
	block := domain.TransactionBlock{
		Status: "success",
		BalanceChanges: []domain.BalanceChange{
			{Owner: string(testWallet), Amount: decimal.NewFromInt(-5), TokenID: "0x2::sui::SUI"},
			{Owner: string(testWallet), Amount: decimal.NewFromInt(100), TokenID: "0xabc::bork::BORK"},
		},
	}
	prices := &stubPrices{prices: map[string]decimal.Decimal{
		"0x2::sui::SUI": decimal.RequireFromString("3.42"),
	}}
	source := &stubActivitySource{pager: &stubActivityPager{results: []pageResult{
		{page: &domain.ActivityPage{Blocks: []domain.TransactionBlock{block}}},
	}}}
	svc := newActivityService(source, prices)

	records, err := svc.FetchActivity(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, 1, prices.calls)
	assert.ElementsMatch(t, []string{"0x2::sui::SUI", "0xabc::bork::BORK"}, prices.lastTokens)

	require.NotNil(t, records[0].Legs[0].PriceUsd)
	assert.True(t, records[0].Legs[0].PriceUsd.Equal(decimal.RequireFromString("3.42")))
	assert.Nil(t, records[0].Legs[1].PriceUsd)
}

func TestFetchActivityNoTokensSkipsPriceCall(t *testing.T) {
	prices := &stubPrices{}
	source := &stubActivitySource{pager: &stubActivityPager{results: []pageResult{
		{page: &domain.ActivityPage{}},
	}}}
	svc := newActivityService(source, prices)

	records, err := svc.FetchActivity(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, prices.calls)
}

func TestKeepBlockIsIdempotent(t *testing.T) {
	svc := newActivityService(&stubActivitySource{pager: &stubActivityPager{}}, &stubPrices{})

	blocks := []domain.TransactionBlock{
		ownBlock("success", "-10", "3"),
		ownBlock("SUCCESS", "7"),
		ownBlock("failure", "-10"),
		{Status: "success", BalanceChanges: []domain.BalanceChange{
			{Owner: "0xsomeoneelse", Amount: decimal.NewFromInt(5), TokenID: "0x2::sui::SUI"},
		}},
	}

	var kept []domain.TransactionBlock
	for _, block := range blocks {
		if svc.keepBlock(testWallet, block) {
			kept = append(kept, block)
		}
	}
	require.Len(t, kept, 2)

	// Filtering what already passed the filter changes nothing.
	for _, block := range kept {
		assert.True(t, svc.keepBlock(testWallet, block))
	}
}

func TestToRecordSentinelLeg(t *testing.T) {
	record := toRecord(domain.TransactionBlock{Status: "success", TimestampMs: 42})
	require.Len(t, record.Legs, 1)
	assert.Equal(t, domain.UnknownToken, record.Legs[0].TokenID)
	assert.True(t, record.Legs[0].Amount.IsZero())
	assert.Nil(t, record.Legs[0].PriceUsd)
}
