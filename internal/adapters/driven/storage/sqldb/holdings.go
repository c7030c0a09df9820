package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
)

// ==================== Holdings Store ====================

var _ driven.HoldingsStore = (*HoldingsStore)(nil)

// HoldingsStore implements driven.HoldingsStore over the holdings table.
type HoldingsStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewHoldingsStore creates a holdings store on an opened, migrated database.
func NewHoldingsStore(db *sql.DB, d Dialect) *HoldingsStore {
	return &HoldingsStore{db: db, dialect: d}
}

// AgenciesWithHoldings returns the agencies holding items, sorted ascending.
func (s *HoldingsStore) AgenciesWithHoldings(ctx context.Context, bibliographicRecordID string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(`
		SELECT agency_id FROM holdings WHERE bibliographic_record_id = ? ORDER BY agency_id
	`), bibliographicRecordID)
	if err != nil {
		return nil, fmt.Errorf("querying holdings: %w", err)
	}
	defer rows.Close()
	return scanAgencies(rows)
}

// SetHoldings records whether agencyID holds items for the id.
func (s *HoldingsStore) SetHoldings(ctx context.Context, bibliographicRecordID string, agencyID int, holds bool) error {
	query := "DELETE FROM holdings WHERE bibliographic_record_id = ? AND agency_id = ?"
	if holds {
		query = `
			INSERT INTO holdings (bibliographic_record_id, agency_id) VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), bibliographicRecordID, agencyID); err != nil {
		return fmt.Errorf("saving holdings: %w", err)
	}
	return nil
}
