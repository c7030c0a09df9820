package driving

import "context"

// HoldingsService administers the holdings consulted by the update flow.
type HoldingsService interface {
	// Agencies returns the agencies holding items for the id, sorted ascending.
	Agencies(ctx context.Context, bibliographicRecordID string) ([]int, error)

	// Set records whether agencyID holds items for the id.
	Set(ctx context.Context, bibliographicRecordID string, agencyID int, holds bool) error
}
