package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
)

// Ensure RecordService implements the interface.
var _ driving.RecordService = (*RecordService)(nil)

// RecordService provides read and administrative access to stored records.
type RecordService struct {
	rawRepo *RawRepo
}

// NewRecordService creates a new record service.
func NewRecordService(rawRepo *RawRepo) *RecordService {
	return &RecordService{rawRepo: rawRepo}
}

// Get retrieves a physical record and its decoded content.
// Returns domain.ErrNotFound when the key has never been written.
func (s *RecordService) Get(ctx context.Context, id domain.RecordID) (*driving.RecordView, error) {
	if id.BibliographicRecordID == "" {
		return nil, domain.ErrInvalidInput
	}
	exists, err := s.rawRepo.RecordExistsMaybeDeleted(ctx, id.BibliographicRecordID, id.AgencyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}

	rec, err := s.rawRepo.FetchRecord(ctx, id.BibliographicRecordID, id.AgencyID)
	if err != nil {
		return nil, err
	}
	recordType, err := s.rawRepo.RecordType(ctx, id)
	if err != nil {
		return nil, err
	}
	marc, err := s.rawRepo.Decode(rec.Content)
	if err != nil {
		// Undecodable content is still shown raw.
		marc = &domain.MarcRecord{}
	}
	return &driving.RecordView{Record: *rec, Type: recordType, Marc: marc}, nil
}

// Agencies returns all agencies with a live record for the id.
func (s *RecordService) Agencies(ctx context.Context, bibliographicRecordID string) ([]int, error) {
	return s.rawRepo.AgenciesForRecord(ctx, bibliographicRecordID)
}

// Relations returns the outgoing and incoming relations of the record.
func (s *RecordService) Relations(ctx context.Context, id domain.RecordID) (*driving.RelationsView, error) {
	if id.BibliographicRecordID == "" {
		return nil, domain.ErrInvalidInput
	}
	from, err := s.rawRepo.RelationsFromRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	incoming, err := s.rawRepo.RelationsToRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &driving.RelationsView{ID: id, From: from}
	for _, other := range incoming {
		if other.BibliographicRecordID == id.BibliographicRecordID {
			view.Siblings = append(view.Siblings, other)
		} else {
			view.Children = append(view.Children, other)
		}
	}
	return view, nil
}

// Purge hard-deletes the record.
// Returns domain.ErrNotFound when the key has never been written.
func (s *RecordService) Purge(ctx context.Context, id domain.RecordID) error {
	if id.BibliographicRecordID == "" {
		return domain.ErrInvalidInput
	}
	return s.rawRepo.PurgeRecord(ctx, id)
}

// Queue returns pending change signals.
func (s *RecordService) Queue(ctx context.Context, limit int) ([]domain.QueueJob, error) {
	return s.rawRepo.QueuedJobs(ctx, limit)
}
