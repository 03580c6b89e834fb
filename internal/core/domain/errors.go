package domain

import "errors"

// ErrMissingWallet indicates no wallet address could be resolved. It fails
// fast before any network call so callers can prompt for input instead of
// retrying.
var ErrMissingWallet = errors.New("no wallet address provided")

// ErrRateLimited indicates the upstream throttled past the retry and abort
// thresholds.
var ErrRateLimited = errors.New("rate limited by upstream")

// ErrUnavailable indicates the upstream could not be fetched at all, as
// opposed to returning no data.
var ErrUnavailable = errors.New("upstream data unavailable")
