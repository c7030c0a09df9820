package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/codec/marcxchange"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
)

// ==================== Record builders ====================

func sf(name, value string) domain.Subfield {
	return domain.Subfield{Name: name, Value: value}
}

func field(name string, subfields ...domain.Subfield) domain.Field {
	return domain.NewField(name, "00", subfields...)
}

func marc(id string, agencyID int, fields ...domain.Field) *domain.MarcRecord {
	rec := &domain.MarcRecord{}
	rec.Append(field(domain.FieldID, sf("a", id), sf("b", strconv.Itoa(agencyID))))
	rec.Append(fields...)
	return rec
}

func deleted(rec *domain.MarcRecord) *domain.MarcRecord {
	c := rec.Clone()
	c.AddOrReplaceSubfield(domain.FieldStatus, domain.SubfieldStatus, domain.StatusDeleted)
	return c
}

func classified(value string) domain.Field {
	return field("652", sf("m", value))
}

// ==================== Mock Rule Host ====================

// mockRules is a scriptable rule host. A record has classification data when
// it carries a 652 field.
type mockRules struct {
	mu sync.Mutex

	changed     bool
	createEmpty bool
	updateEmpty bool
	split       func(rec *domain.MarcRecord) []*domain.MarcRecord
	correct     func(common, candidate *domain.MarcRecord) *domain.MarcRecord
	splitErr    error

	splitCalls   int
	createCalls  []int
	updateCalls  int
	correctCalls int
}

var _ driven.RuleHost = (*mockRules)(nil)

func (m *mockRules) HasClassificationData(rec *domain.MarcRecord) bool {
	return rec.HasField("652")
}

func (m *mockRules) HasClassificationsChanged(_, _ *domain.MarcRecord) bool {
	return m.changed
}

func (m *mockRules) CreateExtendedRecord(common *domain.MarcRecord, agencyID int) (*domain.MarcRecord, error) {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, agencyID)
	m.mu.Unlock()
	if m.createEmpty {
		return &domain.MarcRecord{}, nil
	}
	ext := marc(common.RecordID(), agencyID)
	for _, f := range common.FieldsNamed("652") {
		ext.Append(f.Clone())
	}
	return ext, nil
}

func (m *mockRules) UpdateExtendedRecord(common, extended *domain.MarcRecord) (*domain.MarcRecord, error) {
	m.mu.Lock()
	m.updateCalls++
	m.mu.Unlock()
	if m.updateEmpty {
		return &domain.MarcRecord{}, nil
	}
	ext := extended.Clone()
	for _, f := range common.FieldsNamed("652") {
		ext.Append(f.Clone())
	}
	return ext, nil
}

func (m *mockRules) CorrectExtendedRecord(common, candidate *domain.MarcRecord) (*domain.MarcRecord, error) {
	m.mu.Lock()
	m.correctCalls++
	m.mu.Unlock()
	if m.correct != nil {
		return m.correct(common, candidate), nil
	}
	return candidate.Clone(), nil
}

func (m *mockRules) SplitForStorage(rec *domain.MarcRecord, _, _ string) ([]*domain.MarcRecord, error) {
	m.mu.Lock()
	m.splitCalls++
	m.mu.Unlock()
	if m.splitErr != nil {
		return nil, m.splitErr
	}
	if m.split != nil {
		return m.split(rec), nil
	}
	c := rec.Clone()
	if agencyID, _ := c.AgencyID(); agencyID == domain.PublicCommonAgency { //nolint:errcheck // validated by caller
		c.AddOrReplaceSubfield(domain.FieldID, domain.SubfieldAgencyID, strconv.Itoa(domain.CommonAgency))
	}
	return []*domain.MarcRecord{c}, nil
}

// ==================== Mock Metrics ====================

type mockMetrics struct {
	mu       sync.Mutex
	saved    map[domain.MimeType]int
	deleted  map[domain.MimeType]int
	enqueued int
	finished []string
}

var _ driven.Metrics = (*mockMetrics)(nil)

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		saved:   make(map[domain.MimeType]int),
		deleted: make(map[domain.MimeType]int),
	}
}

func (m *mockMetrics) RecordSaved(mime domain.MimeType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[mime]++
}

func (m *mockMetrics) RecordDeleted(mime domain.MimeType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted[mime]++
}

func (m *mockMetrics) RecordEnqueued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued++
}

func (m *mockMetrics) UpdateFinished(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = append(m.finished, kind)
}

// ==================== Failing Store ====================

var errStoreDown = errors.New("store down")

// failingStore fails Save for one agency and records the order of saves.
type failingStore struct {
	*memory.RecordStore
	failAgency int
	saves      []domain.RecordID
}

func (s *failingStore) Save(ctx context.Context, rec domain.Record, relations []domain.RecordID) error {
	if rec.ID.AgencyID == s.failAgency {
		return errStoreDown
	}
	s.saves = append(s.saves, rec.ID)
	return s.RecordStore.Save(ctx, rec, relations)
}

// failingHoldings always fails.
type failingHoldings struct{}

func (failingHoldings) AgenciesWithHoldings(context.Context, string) ([]int, error) {
	return nil, errStoreDown
}

// ==================== Fixture ====================

type fixture struct {
	store    *failingStore
	holdings *memory.HoldingsStore
	rules    *mockRules
	metrics  *mockMetrics
	rawRepo  *RawRepo
	updater  *Updater
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &failingStore{RecordStore: memory.NewRecordStore(), failAgency: -1}
	f := &fixture{
		store:    store,
		holdings: memory.NewHoldingsStore(),
		rules:    &mockRules{},
		metrics:  newMockMetrics(),
		rawRepo:  NewRawRepo(store, marcxchange.NewCodec()),
	}
	f.updater = NewUpdater(f.rawRepo, f.holdings, f.rules, f.metrics, "")
	return f
}

// seed writes rec directly to the repository, bypassing the update flow.
func (f *fixture) seed(t *testing.T, rec *domain.MarcRecord, mime domain.MimeType, parentID string) {
	t.Helper()
	agencyID, err := rec.AgencyID()
	require.NoError(t, err)
	content, err := f.rawRepo.Encode(rec)
	require.NoError(t, err)
	stored := &domain.Record{
		ID:       domain.NewRecordID(rec.RecordID(), agencyID),
		Content:  content,
		MimeType: mime,
	}
	require.NoError(t, f.rawRepo.SaveRecord(context.Background(), stored, parentID))
	f.store.saves = nil
}

func (f *fixture) hold(t *testing.T, id string, agencies ...int) {
	t.Helper()
	for _, a := range agencies {
		require.NoError(t, f.holdings.SetHoldings(context.Background(), id, a, true))
	}
}

// stored decodes the physical record for the key.
func (f *fixture) stored(t *testing.T, id string, agencyID int) (*domain.Record, *domain.MarcRecord) {
	t.Helper()
	rec, err := f.rawRepo.FetchRecord(context.Background(), id, agencyID)
	require.NoError(t, err)
	decoded, err := f.rawRepo.Decode(rec.Content)
	require.NoError(t, err)
	return rec, decoded
}

func (f *fixture) exists(t *testing.T, id string, agencyID int) bool {
	t.Helper()
	ok, err := f.rawRepo.RecordExists(context.Background(), id, agencyID)
	require.NoError(t, err)
	return ok
}

// queueCounts counts change signals per key.
func (f *fixture) queueCounts(t *testing.T) map[domain.RecordID]int {
	t.Helper()
	jobs, err := f.rawRepo.QueuedJobs(context.Background(), 0)
	require.NoError(t, err)
	counts := make(map[domain.RecordID]int)
	for _, j := range jobs {
		counts[j.RecordID]++
	}
	return counts
}

func (f *fixture) queueLen(t *testing.T) int {
	t.Helper()
	jobs, err := f.rawRepo.QueuedJobs(context.Background(), 0)
	require.NoError(t, err)
	return len(jobs)
}

func key(id string, agencyID int) domain.RecordID {
	return domain.NewRecordID(id, agencyID)
}
