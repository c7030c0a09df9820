package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
// A single mutex serialises writes, so Save is atomic per key.
type RecordStore struct {
	mu        sync.RWMutex
	records   map[domain.RecordID]domain.Record
	relations map[domain.RecordID][]domain.RecordID
	queue     []domain.QueueJob
	now       func() time.Time
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records:   make(map[domain.RecordID]domain.Record),
		relations: make(map[domain.RecordID][]domain.RecordID),
		now:       time.Now,
	}
}

// Exists reports whether a live record exists for the key.
func (s *RecordStore) Exists(_ context.Context, id domain.RecordID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return ok && !rec.Deleted, nil
}

// ExistsMaybeDeleted reports whether any record exists for the key.
func (s *RecordStore) ExistsMaybeDeleted(_ context.Context, id domain.RecordID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok, nil
}

// Fetch retrieves a record by key.
func (s *RecordStore) Fetch(_ context.Context, id domain.RecordID) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec.Content = slices.Clone(rec.Content)
	return &rec, nil
}

// Save writes the record and replaces its outgoing relations.
func (s *RecordStore) Save(_ context.Context, rec domain.Record, relations []domain.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.records[rec.ID]; ok {
		rec.Created = existing.Created
	} else {
		rec.Created = now
	}
	rec.Modified = now
	rec.Content = slices.Clone(rec.Content)
	s.records[rec.ID] = rec

	if len(relations) == 0 {
		delete(s.relations, rec.ID)
	} else {
		s.relations[rec.ID] = slices.Clone(relations)
	}
	return nil
}

// RelationsFrom returns the keys the record points at.
func (s *RecordStore) RelationsFrom(_ context.Context, id domain.RecordID) ([]domain.RecordID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.relations[id]), nil
}

// RelationsTo returns the keys of records pointing at id.
func (s *RecordStore) RelationsTo(_ context.Context, id domain.RecordID) ([]domain.RecordID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.RecordID
	for from, targets := range s.relations {
		if slices.Contains(targets, id) {
			result = append(result, from)
		}
	}
	sortRecordIDs(result)
	return result, nil
}

// AgenciesFor returns every agency with a live record for the id.
func (s *RecordStore) AgenciesFor(_ context.Context, bibliographicRecordID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var agencies []int
	for id, rec := range s.records {
		if id.BibliographicRecordID == bibliographicRecordID && !rec.Deleted {
			agencies = append(agencies, id.AgencyID)
		}
	}
	slices.Sort(agencies)
	return agencies, nil
}

// Enqueue registers a change signal.
func (s *RecordStore) Enqueue(_ context.Context, job domain.QueueJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, job)
	return nil
}

// Queued returns up to limit pending change signals, oldest first.
func (s *RecordStore) Queued(_ context.Context, limit int) ([]domain.QueueJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.queue) {
		limit = len(s.queue)
	}
	return slices.Clone(s.queue[:limit]), nil
}

// Purge hard-deletes the record, its outgoing relations and queue entries.
func (s *RecordStore) Purge(_ context.Context, id domain.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, id)
	delete(s.relations, id)
	s.queue = slices.DeleteFunc(s.queue, func(job domain.QueueJob) bool {
		return job.RecordID == id
	})
	return nil
}

// Ping always succeeds.
func (s *RecordStore) Ping(_ context.Context) error {
	return nil
}

func sortRecordIDs(ids []domain.RecordID) {
	slices.SortFunc(ids, func(a, b domain.RecordID) int {
		if a.BibliographicRecordID != b.BibliographicRecordID {
			if a.BibliographicRecordID < b.BibliographicRecordID {
				return -1
			}
			return 1
		}
		return a.AgencyID - b.AgencyID
	})
}
