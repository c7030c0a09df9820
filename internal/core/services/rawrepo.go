package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
)

// RawRepo is the repository facade used by the update flow.
// It enforces the structural rules of the repository on top of a RecordStore:
// a record may not be its own parent, an enrichment may not declare a parent,
// and every save replaces the record's outgoing relations.
type RawRepo struct {
	store driven.RecordStore
	codec driven.RecordCodec
	now   func() time.Time
}

// NewRawRepo creates a new repository facade.
func NewRawRepo(store driven.RecordStore, codec driven.RecordCodec) *RawRepo {
	return &RawRepo{
		store: store,
		codec: codec,
		now:   time.Now,
	}
}

// RecordExists reports whether a live record exists for the key.
func (r *RawRepo) RecordExists(ctx context.Context, id string, agencyID int) (bool, error) {
	exists, err := r.store.Exists(ctx, domain.NewRecordID(id, agencyID))
	if err != nil {
		return false, fmt.Errorf("check record %s:%d: %w", id, agencyID, err)
	}
	return exists, nil
}

// RecordExistsMaybeDeleted reports whether any record exists for the key,
// tombstones included.
func (r *RawRepo) RecordExistsMaybeDeleted(ctx context.Context, id string, agencyID int) (bool, error) {
	exists, err := r.store.ExistsMaybeDeleted(ctx, domain.NewRecordID(id, agencyID))
	if err != nil {
		return false, fmt.Errorf("check record %s:%d: %w", id, agencyID, err)
	}
	return exists, nil
}

// FetchRecord retrieves the record for the key. A key that has never been
// written yields an empty placeholder carrying the key.
func (r *RawRepo) FetchRecord(ctx context.Context, id string, agencyID int) (*domain.Record, error) {
	key := domain.NewRecordID(id, agencyID)
	rec, err := r.store.Fetch(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewRecord(key), nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch record %s: %w", key, err)
	}
	return rec, nil
}

// SaveRecord validates and persists rec, replacing its relation set.
func (r *RawRepo) SaveRecord(ctx context.Context, rec *domain.Record, parentID string) error {
	id := rec.ID.BibliographicRecordID
	agencyID := rec.ID.AgencyID

	if id == parentID {
		shown := agencyID
		if shown == domain.CommonAgency {
			shown = domain.PublicCommonAgency
		}
		return domain.NewUpdateError(domain.ErrStructuralConflict, domain.KeyParentPointsToItself, nil, id, shown)
	}

	commonExists := false
	if agencyID != domain.CommonAgency {
		exists, err := r.RecordExists(ctx, id, domain.CommonAgency)
		if err != nil {
			return err
		}
		commonExists = exists
	}
	if agencyID != domain.CommonAgency && parentID != "" && commonExists {
		return domain.NewUpdateError(domain.ErrStructuralConflict, domain.KeyEnrichmentHasParent, nil, id, agencyID)
	}

	var relations []domain.RecordID
	switch {
	case rec.Deleted:
		// Tombstones never point anywhere.
	case agencyID == domain.CommonAgency && parentID != "":
		relations = []domain.RecordID{domain.NewRecordID(parentID, domain.CommonAgency)}
	case agencyID != domain.CommonAgency && commonExists:
		relations = []domain.RecordID{domain.NewRecordID(id, domain.CommonAgency)}
	}

	if err := r.store.Save(ctx, *rec, relations); err != nil {
		return fmt.Errorf("save record %s: %w", rec.ID, err)
	}
	return nil
}

// ChangedRecord registers the key for downstream processing.
// It must be called after the save it reflects.
func (r *RawRepo) ChangedRecord(ctx context.Context, provider string, id domain.RecordID, mime domain.MimeType) error {
	job := domain.QueueJob{
		ID:       uuid.NewString(),
		RecordID: id,
		Provider: provider,
		MimeType: mime,
		QueuedAt: r.now(),
	}
	if err := r.store.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue record %s: %w", id, err)
	}
	return nil
}

// Children returns the records declaring id as their parent.
func (r *RawRepo) Children(ctx context.Context, id domain.RecordID) ([]domain.RecordID, error) {
	incoming, err := r.RelationsToRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	var children []domain.RecordID
	for _, from := range incoming {
		if from.BibliographicRecordID != id.BibliographicRecordID {
			children = append(children, from)
		}
	}
	return children, nil
}

// RelationsToRecord returns every record pointing at id: children and
// enrichments alike.
func (r *RawRepo) RelationsToRecord(ctx context.Context, id domain.RecordID) ([]domain.RecordID, error) {
	incoming, err := r.store.RelationsTo(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("relations to %s: %w", id, err)
	}
	return incoming, nil
}

// RelationsFromRecord returns the keys id points at.
func (r *RawRepo) RelationsFromRecord(ctx context.Context, id domain.RecordID) ([]domain.RecordID, error) {
	outgoing, err := r.store.RelationsFrom(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("relations from %s: %w", id, err)
	}
	return outgoing, nil
}

// AgenciesForRecord returns every agency with a live record for the id,
// including the common agency.
func (r *RawRepo) AgenciesForRecord(ctx context.Context, id string) ([]int, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	agencies, err := r.store.AgenciesFor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("agencies for %s: %w", id, err)
	}
	return agencies, nil
}

// PurgeRecord hard-deletes the record. Not part of the update flow.
func (r *RawRepo) PurgeRecord(ctx context.Context, id domain.RecordID) error {
	if err := r.store.Purge(ctx, id); err != nil {
		return fmt.Errorf("purge record %s: %w", id, err)
	}
	return nil
}

// QueuedJobs returns pending change signals, oldest first.
func (r *RawRepo) QueuedJobs(ctx context.Context, limit int) ([]domain.QueueJob, error) {
	jobs, err := r.store.Queued(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	return jobs, nil
}

// RecordType resolves the routing class of a key.
func (r *RawRepo) RecordType(ctx context.Context, id domain.RecordID) (domain.RecordType, error) {
	if id.IsCommon() {
		return domain.RecordTypeCommon, nil
	}
	commonExists, err := r.RecordExists(ctx, id.BibliographicRecordID, domain.CommonAgency)
	if err != nil {
		return "", err
	}
	if commonExists {
		return domain.RecordTypeEnrichment, nil
	}
	return domain.RecordTypeLocal, nil
}

// Ping verifies the underlying store.
func (r *RawRepo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// Encode serialises a logical record. An empty record encodes to nil.
func (r *RawRepo) Encode(rec *domain.MarcRecord) ([]byte, error) {
	if rec.IsEmpty() {
		return nil, nil
	}
	content, err := r.codec.Encode(rec)
	if err != nil {
		return nil, &domain.UpdateError{Kind: domain.ErrEncoding, Err: err}
	}
	return content, nil
}

// Decode parses stored content. Empty content decodes to an empty record.
func (r *RawRepo) Decode(content []byte) (*domain.MarcRecord, error) {
	if len(content) == 0 {
		return &domain.MarcRecord{}, nil
	}
	rec, err := r.codec.Decode(content)
	if err != nil {
		return nil, &domain.UpdateError{Kind: domain.ErrEncoding, Err: err}
	}
	return rec, nil
}
