package driven

import "context"

// HoldingsLookup answers which agencies hold items for a bibliographic id.
type HoldingsLookup interface {
	// AgenciesWithHoldings returns the agencies holding items, sorted ascending.
	AgenciesWithHoldings(ctx context.Context, bibliographicRecordID string) ([]int, error)
}

// HoldingsStore is a writable holdings lookup used for administration.
type HoldingsStore interface {
	HoldingsLookup

	// SetHoldings records whether agencyID holds items for the id.
	SetHoldings(ctx context.Context, bibliographicRecordID string, agencyID int, holds bool) error
}
