package driven

import (
	"context"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

// RecordStore persists physical records, their outgoing relations and the
// change queue. Implementations must make Save atomic per key: the record row
// and its complete relation set are written in one transaction.
type RecordStore interface {
	// Exists reports whether a live (not deleted) record exists for the key.
	Exists(ctx context.Context, id domain.RecordID) (bool, error)

	// ExistsMaybeDeleted reports whether any record, including tombstones, exists.
	ExistsMaybeDeleted(ctx context.Context, id domain.RecordID) (bool, error)

	// Fetch retrieves a record by key.
	// Returns domain.ErrNotFound if the key has never been written.
	Fetch(ctx context.Context, id domain.RecordID) (*domain.Record, error)

	// Save writes the record and replaces its outgoing relations.
	// Created is preserved for existing records; Modified is set by the store.
	Save(ctx context.Context, rec domain.Record, relations []domain.RecordID) error

	// RelationsFrom returns the keys the record points at.
	RelationsFrom(ctx context.Context, id domain.RecordID) ([]domain.RecordID, error)

	// RelationsTo returns the keys of records pointing at id.
	RelationsTo(ctx context.Context, id domain.RecordID) ([]domain.RecordID, error)

	// AgenciesFor returns every agency with a live record for the
	// bibliographic id, including the common agency. Sorted ascending.
	AgenciesFor(ctx context.Context, bibliographicRecordID string) ([]int, error)

	// Enqueue registers a change signal. Duplicate signals are allowed.
	Enqueue(ctx context.Context, job domain.QueueJob) error

	// Queued returns up to limit pending change signals, oldest first.
	// A limit <= 0 returns all.
	Queued(ctx context.Context, limit int) ([]domain.QueueJob, error)

	// Purge hard-deletes the record, its outgoing relations and queue entries.
	Purge(ctx context.Context, id domain.RecordID) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
