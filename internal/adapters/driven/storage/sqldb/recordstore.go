package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
)

// ==================== Record Store ====================

var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore implements driven.RecordStore over the records, relations and
// queue tables.
type RecordStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewRecordStore creates a record store on an opened, migrated database.
func NewRecordStore(db *sql.DB, d Dialect) *RecordStore {
	return &RecordStore{
		db:      db,
		dialect: d,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Exists reports whether a live record exists for the key.
func (s *RecordStore) Exists(ctx context.Context, id domain.RecordID) (bool, error) {
	return s.exists(ctx, `
		SELECT COUNT(*) FROM records
		WHERE bibliographic_record_id = ? AND agency_id = ? AND deleted = ?
	`, id.BibliographicRecordID, id.AgencyID, false)
}

// ExistsMaybeDeleted reports whether any record exists for the key.
func (s *RecordStore) ExistsMaybeDeleted(ctx context.Context, id domain.RecordID) (bool, error) {
	return s.exists(ctx, `
		SELECT COUNT(*) FROM records
		WHERE bibliographic_record_id = ? AND agency_id = ?
	`, id.BibliographicRecordID, id.AgencyID)
}

func (s *RecordStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query), args...).Scan(&count); err != nil {
		return false, fmt.Errorf("checking record: %w", err)
	}
	return count > 0, nil
}

// Fetch retrieves a record by key.
func (s *RecordStore) Fetch(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(`
		SELECT content, mime_type, deleted, created_at, modified_at
		FROM records WHERE bibliographic_record_id = ? AND agency_id = ?
	`), id.BibliographicRecordID, id.AgencyID)

	rec := domain.Record{ID: id}
	var mime string
	var createdAt, modifiedAt sql.NullTime
	if err := row.Scan(&rec.Content, &mime, &rec.Deleted, &createdAt, &modifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	rec.MimeType = domain.MimeType(mime)
	if createdAt.Valid {
		rec.Created = createdAt.Time
	}
	if modifiedAt.Valid {
		rec.Modified = modifiedAt.Time
	}
	return &rec, nil
}

// Save writes the record and replaces its outgoing relations in one transaction.
func (s *RecordStore) Save(ctx context.Context, rec domain.Record, relations []domain.RecordID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := s.now()
	_, err = tx.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO records (bibliographic_record_id, agency_id, content, mime_type, deleted, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(bibliographic_record_id, agency_id) DO UPDATE SET
			content = excluded.content,
			mime_type = excluded.mime_type,
			deleted = excluded.deleted,
			modified_at = excluded.modified_at
	`), rec.ID.BibliographicRecordID, rec.ID.AgencyID, rec.Content, string(rec.MimeType),
		rec.Deleted, now, now)
	if err != nil {
		return fmt.Errorf("saving record: %w", err)
	}

	_, err = tx.ExecContext(ctx, s.dialect.Rebind(`
		DELETE FROM relations WHERE from_record_id = ? AND from_agency_id = ?
	`), rec.ID.BibliographicRecordID, rec.ID.AgencyID)
	if err != nil {
		return fmt.Errorf("clearing relations: %w", err)
	}

	for _, to := range relations {
		_, err = tx.ExecContext(ctx, s.dialect.Rebind(`
			INSERT INTO relations (from_record_id, from_agency_id, to_record_id, to_agency_id)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`), rec.ID.BibliographicRecordID, rec.ID.AgencyID, to.BibliographicRecordID, to.AgencyID)
		if err != nil {
			return fmt.Errorf("saving relation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// RelationsFrom returns the keys the record points at.
func (s *RecordStore) RelationsFrom(ctx context.Context, id domain.RecordID) ([]domain.RecordID, error) {
	return s.queryIDs(ctx, `
		SELECT to_record_id, to_agency_id FROM relations
		WHERE from_record_id = ? AND from_agency_id = ?
		ORDER BY to_record_id, to_agency_id
	`, id.BibliographicRecordID, id.AgencyID)
}

// RelationsTo returns the keys of records pointing at id.
func (s *RecordStore) RelationsTo(ctx context.Context, id domain.RecordID) ([]domain.RecordID, error) {
	return s.queryIDs(ctx, `
		SELECT from_record_id, from_agency_id FROM relations
		WHERE to_record_id = ? AND to_agency_id = ?
		ORDER BY from_record_id, from_agency_id
	`, id.BibliographicRecordID, id.AgencyID)
}

func (s *RecordStore) queryIDs(ctx context.Context, query string, args ...any) ([]domain.RecordID, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying relations: %w", err)
	}
	defer rows.Close()

	var ids []domain.RecordID //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id domain.RecordID
		if err := rows.Scan(&id.BibliographicRecordID, &id.AgencyID); err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AgenciesFor returns every agency with a live record for the id.
func (s *RecordStore) AgenciesFor(ctx context.Context, bibliographicRecordID string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(`
		SELECT agency_id FROM records
		WHERE bibliographic_record_id = ? AND deleted = ?
		ORDER BY agency_id
	`), bibliographicRecordID, false)
	if err != nil {
		return nil, fmt.Errorf("querying agencies: %w", err)
	}
	defer rows.Close()
	return scanAgencies(rows)
}

// Enqueue registers a change signal.
func (s *RecordStore) Enqueue(ctx context.Context, job domain.QueueJob) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO queue (id, bibliographic_record_id, agency_id, provider, mime_type, queued_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), job.ID, job.RecordID.BibliographicRecordID, job.RecordID.AgencyID, job.Provider,
		string(job.MimeType), job.QueuedAt.UTC())
	if err != nil {
		return fmt.Errorf("enqueuing record: %w", err)
	}
	return nil
}

// Queued returns up to limit pending change signals, oldest first.
func (s *RecordStore) Queued(ctx context.Context, limit int) ([]domain.QueueJob, error) {
	query := `
		SELECT id, bibliographic_record_id, agency_id, provider, mime_type, queued_at
		FROM queue ORDER BY seq
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying queue: %w", err)
	}
	defer rows.Close()

	var jobs []domain.QueueJob //nolint:prealloc // size unknown from query
	for rows.Next() {
		var job domain.QueueJob
		var mime string
		var queuedAt sql.NullTime
		if err := rows.Scan(&job.ID, &job.RecordID.BibliographicRecordID, &job.RecordID.AgencyID,
			&job.Provider, &mime, &queuedAt); err != nil {
			return nil, fmt.Errorf("scanning queue job: %w", err)
		}
		job.MimeType = domain.MimeType(mime)
		if queuedAt.Valid {
			job.QueuedAt = queuedAt.Time
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Purge hard-deletes the record, its outgoing relations and queue entries.
func (s *RecordStore) Purge(ctx context.Context, id domain.RecordID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, s.dialect.Rebind(`
		DELETE FROM records WHERE bibliographic_record_id = ? AND agency_id = ?
	`), id.BibliographicRecordID, id.AgencyID)
	if err != nil {
		return fmt.Errorf("purging record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}

	for _, query := range []string{
		"DELETE FROM relations WHERE from_record_id = ? AND from_agency_id = ?",
		"DELETE FROM queue WHERE bibliographic_record_id = ? AND agency_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(query), id.BibliographicRecordID, id.AgencyID); err != nil {
			return fmt.Errorf("purging record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *RecordStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging %s: %w", s.dialect.Name, err)
	}
	return nil
}

func scanAgencies(rows *sql.Rows) ([]int, error) {
	var agencies []int //nolint:prealloc // size unknown from query
	for rows.Next() {
		var agencyID int
		if err := rows.Scan(&agencyID); err != nil {
			return nil, fmt.Errorf("scanning agency: %w", err)
		}
		agencies = append(agencies, agencyID)
	}
	return agencies, rows.Err()
}
