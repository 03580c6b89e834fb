package service

import (
	"context"
	"strings"

	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"go.uber.org/zap"
)

// ProtocolService summarizes the DeFi protocol universe for one chain.
type ProtocolService struct {
	source domain.ProtocolSource
	log    *zap.Logger
}

// NewProtocolService creates a protocol summary service.
func NewProtocolService(source domain.ProtocolSource, log *zap.Logger) *ProtocolService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProtocolService{source: source, log: log}
}

// FetchProtocols returns the protocols deployed on the given chain with
// their TVL figures. An empty chain falls back to the default. Listing
// failures degrade to an empty summary so a protocol overview never blocks
// the caller.
func (s *ProtocolService) FetchProtocols(ctx context.Context, chain string) *domain.ProtocolSummary {
	if chain == "" {
		chain = domain.DefaultChain
	}
	chain = strings.ToLower(chain)

	summary := &domain.ProtocolSummary{Chain: chain, Protocols: []domain.Protocol{}}

	protocols, err := s.source.Protocols(ctx)
	if err != nil {
		s.log.Warn("protocol listing failed, returning empty summary",
			zap.String("chain", chain), zap.Error(err))
		return summary
	}

	for _, protocol := range protocols {
		if protocol.OnChain(chain) {
			summary.Protocols = append(summary.Protocols, protocol)
		}
	}
	summary.TotalProtocols = len(summary.Protocols)
	return summary
}
