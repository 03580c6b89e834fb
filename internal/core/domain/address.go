package domain

import (
	"fmt"
	"regexp"
)

// Address is a Sui wallet address: "0x" followed by 64 hex characters.
type Address string

var (
	addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
	extractPattern = regexp.MustCompile(`0x[a-fA-F0-9]{64}`)
)

// ParseAddress validates s as a wallet address.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return "", ErrMissingWallet
	}
	if !addressPattern.MatchString(s) {
		return "", fmt.Errorf("invalid wallet address %q: expected 0x followed by 64 hex characters", s)
	}
	return Address(s), nil
}

// ExtractAddress finds the first well-formed wallet address in free text,
// e.g. a chat message asking about a wallet.
func ExtractAddress(text string) (Address, bool) {
	match := extractPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return Address(match), true
}

func (a Address) String() string {
	return string(a)
}
