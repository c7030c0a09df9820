package driving

import (
	"context"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

// UpdateService decomposes incoming records into physical repository records.
type UpdateService interface {
	// UpdateRecord splits, validates, links and persists rec.
	// Writes committed before a failure are not rolled back.
	UpdateRecord(ctx context.Context, rec *domain.MarcRecord, userID, groupID string) error
}
