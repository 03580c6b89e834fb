package domain

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultChain is the chain protocol listings fall back to when no chain
// can be resolved from the input.
const DefaultChain = "sui"

var chainPattern = regexp.MustCompile(`(?i)\b(sui|solana|ethereum|binance|polygon)\b`)

// Protocol is one DeFi protocol listing with its locked-value summary.
// The change fields are percentages and stay nil when the listing service
// does not report them.
type Protocol struct {
	Name        string           `json:"name"`
	URL         string           `json:"url"`
	Description string           `json:"description"`
	TVL         decimal.Decimal  `json:"tvl"`
	Slug        string           `json:"slug"`
	LogoURL     string           `json:"logoUrl"`
	Change1h    *decimal.Decimal `json:"change_1h"`
	Change1d    *decimal.Decimal `json:"change_1d"`
	Change7d    *decimal.Decimal `json:"change_7d"`

	// Chain and Chains carry the listing's chain membership; some listings
	// report a single chain, others a list.
	Chain  string   `json:"-"`
	Chains []string `json:"-"`
}

// OnChain reports whether the protocol is deployed on the given chain,
// matching either the single-chain field or the chain list.
func (p Protocol) OnChain(chain string) bool {
	if strings.EqualFold(p.Chain, chain) {
		return true
	}
	for _, c := range p.Chains {
		if strings.EqualFold(c, chain) {
			return true
		}
	}
	return false
}

// ProtocolSummary is the per-chain view of the protocol universe.
type ProtocolSummary struct {
	Chain          string     `json:"chain"`
	TotalProtocols int        `json:"totalProtocols"`
	Protocols      []Protocol `json:"protocols"`
}

// ProtocolSource lists every known DeFi protocol across all chains.
type ProtocolSource interface {
	Protocols(ctx context.Context) ([]Protocol, error)
}

// ExtractChain resolves a chain name from free text, falling back to
// DefaultChain when none of the known chains is mentioned.
func ExtractChain(text string) string {
	if match := chainPattern.FindString(text); match != "" {
		return strings.ToLower(match)
	}
	return DefaultChain
}
