package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"github.com/borkprotocol/bork-wallet-sdk/pkg/fetch"
	"go.uber.org/zap"
)

const (
	// DefaultMaxActivityPages bounds how deep the history walk goes.
	DefaultMaxActivityPages = 5
	// DefaultPageDelay is the pause between successive history pages.
	DefaultPageDelay = 1500 * time.Millisecond
)

// ActivityService walks a wallet's recent transaction history, keeps the
// successful transactions that touched the wallet's own balances, and
// decorates the resulting legs with USD prices.
type ActivityService struct {
	source    domain.ActivitySource
	prices    domain.PriceService
	maxPages  int
	pageDelay time.Duration
	log       *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewActivityService creates an activity service with default paging bounds.
func NewActivityService(source domain.ActivitySource, prices domain.PriceService, log *zap.Logger) *ActivityService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivityService{
		source:    source,
		prices:    prices,
		maxPages:  DefaultMaxActivityPages,
		pageDelay: DefaultPageDelay,
		log:       log,
		sleep:     sleepContext,
	}
}

// SetPageDelay overrides the pause between history pages.
func (s *ActivityService) SetPageDelay(d time.Duration) {
	if d >= 0 {
		s.pageDelay = d
	}
}

// FetchActivity returns the wallet's recent transactions, newest data first
// as served by the chain. If paging fails after the first page the records
// collected so far are returned rather than discarded.
func (s *ActivityService) FetchActivity(ctx context.Context, addr domain.Address) ([]domain.TransactionRecord, error) {
	if addr == "" {
		return nil, domain.ErrMissingWallet
	}

	pager := s.source.Activity(addr)
	var records []domain.TransactionRecord

	for page := 0; page < s.maxPages; page++ {
		if page > 0 {
			if err := s.sleep(ctx, s.pageDelay); err != nil {
				return nil, err
			}
		}

		result, err := pager.Next(ctx)
		if err != nil {
			if page == 0 {
				return nil, classifyFetchError("transaction history", err)
			}
			s.log.Warn("history paging stopped early, returning partial results",
				zap.String("wallet", string(addr)), zap.Int("pages", page), zap.Error(err))
			break
		}

		for _, block := range result.Blocks {
			if !s.keepBlock(addr, block) {
				continue
			}
			records = append(records, toRecord(block))
		}

		if !result.HasNext {
			break
		}
	}

	s.enrichPrices(ctx, records)
	return records, nil
}

// keepBlock keeps only executed transactions that moved coins owned by the
// wallet itself.
func (s *ActivityService) keepBlock(addr domain.Address, block domain.TransactionBlock) bool {
	if !strings.EqualFold(block.Status, "success") {
		return false
	}
	for _, change := range block.BalanceChanges {
		if strings.EqualFold(change.Owner, string(addr)) {
			return true
		}
	}
	return false
}

func toRecord(block domain.TransactionBlock) domain.TransactionRecord {
	record := domain.TransactionRecord{TimestampMs: block.TimestampMs}
	for _, change := range block.BalanceChanges {
		record.Legs = append(record.Legs, domain.TransactionLeg{
			TokenID: change.TokenID,
			Amount:  change.Amount,
		})
	}
	if len(record.Legs) == 0 {
		record.Legs = []domain.TransactionLeg{{TokenID: domain.UnknownToken}}
	}
	return record
}

func (s *ActivityService) enrichPrices(ctx context.Context, records []domain.TransactionRecord) {
	seen := make(map[string]struct{})
	var tokenIDs []string
	for _, record := range records {
		for _, leg := range record.Legs {
			if leg.TokenID == domain.UnknownToken {
				continue
			}
			if _, ok := seen[leg.TokenID]; ok {
				continue
			}
			seen[leg.TokenID] = struct{}{}
			tokenIDs = append(tokenIDs, leg.TokenID)
		}
	}
	if len(tokenIDs) == 0 {
		return
	}

	priced := s.prices.FetchPrices(ctx, tokenIDs)
	for i := range records {
		for j := range records[i].Legs {
			if value, ok := priced[records[i].Legs[j].TokenID]; ok {
				price := value
				records[i].Legs[j].PriceUsd = &price
			}
		}
	}
}

// classifyFetchError maps transport failures onto the domain sentinels so
// callers can tell throttling apart from an outage.
func classifyFetchError(what string, err error) error {
	if errors.Is(err, fetch.ErrRateLimited) {
		return fmt.Errorf("%s fetch throttled: %w", what, domain.ErrRateLimited)
	}
	return fmt.Errorf("%s fetch failed: %w", what, domain.ErrUnavailable)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
