package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
)

// Ensure HoldingsStore implements the interface.
var _ driven.HoldingsStore = (*HoldingsStore)(nil)

// HoldingsStore is an in-memory implementation of driven.HoldingsStore.
type HoldingsStore struct {
	mu       sync.RWMutex
	holdings map[string]map[int]struct{}
}

// NewHoldingsStore creates a new in-memory holdings store.
func NewHoldingsStore() *HoldingsStore {
	return &HoldingsStore{
		holdings: make(map[string]map[int]struct{}),
	}
}

// AgenciesWithHoldings returns the agencies holding items, sorted ascending.
func (s *HoldingsStore) AgenciesWithHoldings(_ context.Context, bibliographicRecordID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var agencies []int
	for agencyID := range s.holdings[bibliographicRecordID] {
		agencies = append(agencies, agencyID)
	}
	slices.Sort(agencies)
	return agencies, nil
}

// SetHoldings records whether agencyID holds items for the id.
func (s *HoldingsStore) SetHoldings(_ context.Context, bibliographicRecordID string, agencyID int, holds bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	agencies := s.holdings[bibliographicRecordID]
	if !holds {
		delete(agencies, agencyID)
		if len(agencies) == 0 {
			delete(s.holdings, bibliographicRecordID)
		}
		return nil
	}
	if agencies == nil {
		agencies = make(map[int]struct{})
		s.holdings[bibliographicRecordID] = agencies
	}
	agencies[agencyID] = struct{}{}
	return nil
}
