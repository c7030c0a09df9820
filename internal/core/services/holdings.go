package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
)

// Ensure HoldingsService implements the interface.
var _ driving.HoldingsService = (*HoldingsService)(nil)

// HoldingsService administers holdings through a HoldingsStore.
type HoldingsService struct {
	store driven.HoldingsStore
}

// NewHoldingsService creates a new holdings service.
func NewHoldingsService(store driven.HoldingsStore) *HoldingsService {
	return &HoldingsService{store: store}
}

// Agencies returns the agencies holding items for the id.
func (s *HoldingsService) Agencies(ctx context.Context, bibliographicRecordID string) ([]int, error) {
	if bibliographicRecordID == "" {
		return nil, domain.ErrInvalidInput
	}
	agencies, err := s.store.AgenciesWithHoldings(ctx, bibliographicRecordID)
	if err != nil {
		return nil, fmt.Errorf("holdings for %s: %w", bibliographicRecordID, err)
	}
	return agencies, nil
}

// Set records whether agencyID holds items for the id.
func (s *HoldingsService) Set(ctx context.Context, bibliographicRecordID string, agencyID int, holds bool) error {
	if bibliographicRecordID == "" || agencyID <= 0 {
		return domain.ErrInvalidInput
	}
	if err := s.store.SetHoldings(ctx, bibliographicRecordID, agencyID, holds); err != nil {
		return fmt.Errorf("set holdings %s: %w", domain.NewRecordID(bibliographicRecordID, agencyID), err)
	}
	return nil
}
