package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

func requireUpdateError(t *testing.T, err error, kind error, msgKey string) *domain.UpdateError {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	var ue *domain.UpdateError
	require.True(t, errors.As(err, &ue), "expected *domain.UpdateError, got %T", err)
	assert.Equal(t, msgKey, ue.Key)
	return ue
}

func TestUpdateRecord_NilRecord(t *testing.T) {
	f := newFixture(t)

	err := f.updater.UpdateRecord(context.Background(), nil, "user", "group")

	requireUpdateError(t, err, domain.ErrNilRecord, domain.KeyRecordIsNull)
	assert.Zero(t, f.rules.splitCalls)
	assert.Empty(t, f.metrics.finished)
}

func TestUpdateRecord_InvalidAgency(t *testing.T) {
	f := newFixture(t)
	rec := &domain.MarcRecord{}
	rec.Append(field("001", sf("a", "1"), sf("b", "abc")))

	err := f.updater.UpdateRecord(context.Background(), rec, "user", "group")

	ue := requireUpdateError(t, err, domain.ErrInvalidAgency, domain.KeyInvalidAgency)
	assert.Contains(t, ue.Error(), "abc")
	assert.Zero(t, f.rules.splitCalls)
	assert.Equal(t, []string{"invalid_agency"}, f.metrics.finished)
}

func TestUpdateRecord_SplitError(t *testing.T) {
	f := newFixture(t)
	f.rules.splitErr = errors.New("rules unavailable")

	err := f.updater.UpdateRecord(context.Background(), marc("1", domain.PublicCommonAgency), "user", "group")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules unavailable")
	assert.Equal(t, []string{"error"}, f.metrics.finished)
}

func TestUpdateRecord_NewCommonRecord(t *testing.T) {
	f := newFixture(t)

	err := f.updater.UpdateRecord(context.Background(),
		marc("1", domain.PublicCommonAgency, field("245", sf("a", "Titel"))), "user", "group")
	require.NoError(t, err)

	stored, decoded := f.stored(t, "1", domain.CommonAgency)
	assert.Equal(t, domain.MimeMarcXchange, stored.MimeType)
	assert.False(t, stored.Deleted)
	assert.Equal(t, "Titel", decoded.Value("245", "a"))

	jobs, err := f.rawRepo.QueuedJobs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, key("1", domain.CommonAgency), jobs[0].RecordID)
	assert.Equal(t, domain.Provider, jobs[0].Provider)
	assert.Equal(t, domain.MimeMarcXchange, jobs[0].MimeType)

	assert.Empty(t, f.rules.createCalls)
	assert.Equal(t, 1, f.metrics.saved[domain.MimeMarcXchange])
	assert.Equal(t, 1, f.metrics.enqueued)
	assert.Equal(t, []string{"ok"}, f.metrics.finished)
}

func TestUpdateRecord_CustomProvider(t *testing.T) {
	f := newFixture(t)
	f.updater = NewUpdater(f.rawRepo, f.holdings, f.rules, nil, "dataio-update")

	require.NoError(t, f.updater.UpdateRecord(context.Background(), marc("1", domain.PublicCommonAgency), "u", "g"))

	jobs, err := f.rawRepo.QueuedJobs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "dataio-update", jobs[0].Provider)
}

func TestUpdateRecord_UnchangedClassification(t *testing.T) {
	f := newFixture(t)
	holders := []int{700400, 700500, 700600}

	f.seed(t, marc("1", domain.CommonAgency, classified("86")), domain.MimeMarcXchange, "")
	f.seed(t, marc("1", domain.DBCEnrichmentAgency, field("s12", sf("t", "x"))), domain.MimeEnrichment, "")
	for _, a := range holders {
		f.seed(t, marc("1", a, field("990", sf("a", "lokal"))), domain.MimeEnrichment, "")
	}
	f.hold(t, "1", holders...)
	f.rules.changed = false

	err := f.updater.UpdateRecord(context.Background(),
		marc("1", domain.PublicCommonAgency, classified("86"), field("245", sf("a", "Ny"))), "user", "group")
	require.NoError(t, err)

	_, common := f.stored(t, "1", domain.CommonAgency)
	assert.Equal(t, "Ny", common.Value("245", "a"))

	assert.Empty(t, f.rules.createCalls)
	assert.Zero(t, f.rules.updateCalls)
	for _, a := range holders {
		_, ext := f.stored(t, "1", a)
		assert.False(t, ext.HasField("652"), "enrichment %d must not gain classification", a)
	}

	counts := f.queueCounts(t)
	assert.Equal(t, 1, counts[key("1", domain.CommonAgency)])
	assert.Equal(t, 1, counts[key("1", domain.DBCEnrichmentAgency)])
	for _, a := range holders {
		assert.Equal(t, 1, counts[key("1", a)], "agency %d", a)
	}
	assert.Equal(t, 1, f.metrics.saved[domain.MimeMarcXchange])
	assert.Zero(t, f.metrics.saved[domain.MimeEnrichment])
}

func TestUpdateRecord_ChangedClassificationCreatesEnrichments(t *testing.T) {
	f := newFixture(t)
	holders := []int{700400, 700500, 700600}

	f.seed(t, marc("1", domain.CommonAgency, classified("86")), domain.MimeMarcXchange, "")
	f.seed(t, marc("1", domain.DBCEnrichmentAgency, field("s12", sf("t", "x"))), domain.MimeEnrichment, "")
	f.hold(t, "1", holders...)
	f.rules.changed = true

	err := f.updater.UpdateRecord(context.Background(),
		marc("1", domain.PublicCommonAgency, classified("87")), "user", "group")
	require.NoError(t, err)

	assert.Equal(t, holders, f.rules.createCalls)

	counts := f.queueCounts(t)
	for _, a := range holders {
		stored, ext := f.stored(t, "1", a)
		assert.Equal(t, domain.MimeEnrichment, stored.MimeType)
		// The enrichment keeps the classification it was catalogued against.
		assert.Equal(t, "86", ext.Value("652", "m"))

		from, err := f.rawRepo.RelationsFromRecord(context.Background(), key("1", a))
		require.NoError(t, err)
		assert.Equal(t, []domain.RecordID{key("1", domain.CommonAgency)}, from)

		// Once for the write and once for the common record change.
		assert.Equal(t, 2, counts[key("1", a)], "agency %d", a)
	}
	assert.Equal(t, 1, counts[key("1", domain.CommonAgency)])
	assert.Equal(t, 1, counts[key("1", domain.DBCEnrichmentAgency)])
	assert.Equal(t, 3, f.metrics.saved[domain.MimeEnrichment])
}

func TestUpdateRecord_CascadeSkipsEmptyCreation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency, classified("86")), domain.MimeMarcXchange, "")
	f.hold(t, "1", 700400)
	f.rules.changed = true
	f.rules.createEmpty = true

	require.NoError(t, f.updater.UpdateRecord(context.Background(),
		marc("1", domain.PublicCommonAgency, classified("87")), "user", "group"))

	assert.Equal(t, []int{700400}, f.rules.createCalls)
	assert.False(t, f.exists(t, "1", 700400))
	assert.Equal(t, 1, f.queueLen(t))
}

func TestUpdateRecord_CascadePreservesOwnClassification(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency, classified("86")), domain.MimeMarcXchange, "")
	f.seed(t, marc("1", 700400, classified("99.4")), domain.MimeEnrichment, "")
	f.hold(t, "1", 700400)
	f.rules.changed = true

	require.NoError(t, f.updater.UpdateRecord(context.Background(),
		marc("1", domain.PublicCommonAgency, classified("87")), "user", "group"))

	_, ext := f.stored(t, "1", 700400)
	assert.Equal(t, "99.4", ext.Value("652", "m"))
	assert.Len(t, ext.FieldsNamed("652"), 1)
	assert.Zero(t, f.rules.updateCalls)
	assert.Zero(t, f.metrics.saved[domain.MimeEnrichment])
	assert.Equal(t, 2, f.queueCounts(t)[key("1", 700400)])
}

func TestUpdateRecord_CascadeUpdatesEnrichmentWithoutClassification(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency, classified("86")), domain.MimeMarcXchange, "")
	f.seed(t, marc("1", 700400, field("990", sf("a", "lokal"))), domain.MimeEnrichment, "")
	f.hold(t, "1", 700400)
	f.rules.changed = true

	require.NoError(t, f.updater.UpdateRecord(context.Background(),
		marc("1", domain.PublicCommonAgency, classified("87")), "user", "group"))

	assert.Equal(t, 1, f.rules.updateCalls)
	_, ext := f.stored(t, "1", 700400)
	assert.Equal(t, "lokal", ext.Value("990", "a"))
	assert.Equal(t, "86", ext.Value("652", "m"))
}

func TestUpdateRecord_CascadeTombstonesEmptyUpdate(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency, classified("86")), domain.MimeMarcXchange, "")
	f.seed(t, marc("1", 700400, field("990", sf("a", "lokal"))), domain.MimeEnrichment, "")
	f.hold(t, "1", 700400)
	f.rules.changed = true
	f.rules.updateEmpty = true

	require.NoError(t, f.updater.UpdateRecord(context.Background(),
		marc("1", domain.PublicCommonAgency, classified("87")), "user", "group"))

	stored, ext := f.stored(t, "1", 700400)
	assert.True(t, stored.Deleted)
	assert.True(t, ext.IsDeleted())
	assert.False(t, ext.HasField("990"))
	assert.Equal(t, 1, f.metrics.deleted[domain.MimeEnrichment])
}

func TestUpdateRecord_NoCascadeWithoutOldClassification(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency, field("245", sf("a", "Titel"))), domain.MimeMarcXchange, "")
	f.hold(t, "1", 700400)
	f.rules.changed = true

	require.NoError(t, f.updater.UpdateRecord(context.Background(),
		marc("1", domain.PublicCommonAgency, classified("87")), "user", "group"))

	assert.Empty(t, f.rules.createCalls)
	assert.False(t, f.exists(t, "1", 700400))
}

func TestUpdateRecord_CascadeHoldingsFailure(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency, classified("86")), domain.MimeMarcXchange, "")
	f.rules.changed = true
	f.updater = NewUpdater(f.rawRepo, failingHoldings{}, f.rules, f.metrics, "")

	err := f.updater.UpdateRecord(context.Background(),
		marc("1", domain.PublicCommonAgency, classified("87")), "user", "group")

	assert.ErrorIs(t, err, errStoreDown)
	// The common record write is not rolled back.
	_, common := f.stored(t, "1", domain.CommonAgency)
	assert.Equal(t, "87", common.Value("652", "m"))
}

func TestUpdateRecord_CommonWithLocals(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", 700400, field("245", sf("a", "Lokal"))), domain.MimeDecentral, "")

	err := f.updater.UpdateRecord(context.Background(),
		marc("1", domain.PublicCommonAgency, field("245", sf("a", "Titel"))), "user", "group")

	ue := requireUpdateError(t, err, domain.ErrStructuralConflict, domain.KeyCommonWithLocals)
	assert.Equal(t, []int{700400}, ue.Agencies)
	assert.False(t, f.exists(t, "1", domain.CommonAgency))
	assert.Zero(t, f.queueLen(t))
	assert.Equal(t, []string{"structural"}, f.metrics.finished)
}

func TestUpdateRecord_CommonBeforeEnrichment(t *testing.T) {
	f := newFixture(t)
	f.rules.split = func(rec *domain.MarcRecord) []*domain.MarcRecord {
		return []*domain.MarcRecord{
			marc("1", domain.DBCEnrichmentAgency, field("s12", sf("t", "x"))),
			marc("1", domain.CommonAgency, field("245", sf("a", "Titel"))),
		}
	}

	require.NoError(t, f.updater.UpdateRecord(context.Background(), marc("1", domain.PublicCommonAgency), "u", "g"))

	assert.Equal(t, []domain.RecordID{
		key("1", domain.CommonAgency),
		key("1", domain.DBCEnrichmentAgency),
	}, f.store.saves)

	stored, _ := f.stored(t, "1", domain.DBCEnrichmentAgency)
	assert.Equal(t, domain.MimeEnrichment, stored.MimeType)
	from, err := f.rawRepo.RelationsFromRecord(context.Background(), key("1", domain.DBCEnrichmentAgency))
	require.NoError(t, err)
	assert.Equal(t, []domain.RecordID{key("1", domain.CommonAgency)}, from)
}

func TestUpdateRecord_DeletionReversesOrder(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency, field("245", sf("a", "Titel"))), domain.MimeMarcXchange, "")
	f.seed(t, marc("1", domain.DBCEnrichmentAgency, field("s12", sf("t", "x"))), domain.MimeEnrichment, "")
	f.rules.split = func(rec *domain.MarcRecord) []*domain.MarcRecord {
		return []*domain.MarcRecord{
			deleted(marc("1", domain.CommonAgency)),
			deleted(marc("1", domain.DBCEnrichmentAgency)),
		}
	}

	require.NoError(t, f.updater.UpdateRecord(context.Background(),
		deleted(marc("1", domain.PublicCommonAgency)), "u", "g"))

	assert.Equal(t, []domain.RecordID{
		key("1", domain.DBCEnrichmentAgency),
		key("1", domain.CommonAgency),
	}, f.store.saves)

	common, _ := f.stored(t, "1", domain.CommonAgency)
	assert.True(t, common.Deleted)
	dbc, _ := f.stored(t, "1", domain.DBCEnrichmentAgency)
	assert.True(t, dbc.Deleted)
	assert.Equal(t, 1, f.metrics.deleted[domain.MimeMarcXchange])
	assert.Equal(t, 1, f.metrics.deleted[domain.MimeEnrichment])
}

func TestUpdateRecord_DeleteBlockedByChildren(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("H", domain.CommonAgency, field("245", sf("a", "Hovedpost"))), domain.MimeMarcXchange, "")
	f.seed(t, marc("V", domain.CommonAgency, field("014", sf("a", "H"))), domain.MimeMarcXchange, "H")

	err := f.updater.UpdateRecord(context.Background(), deleted(marc("H", domain.PublicCommonAgency)), "u", "g")

	ue := requireUpdateError(t, err, domain.ErrReferentialIntegrity, domain.KeyDeleteChildren)
	assert.Equal(t, []domain.RecordID{key("V", domain.CommonAgency)}, ue.Blocking)
	assert.Zero(t, f.rules.splitCalls)
	assert.True(t, f.exists(t, "H", domain.CommonAgency))
	assert.Empty(t, f.store.saves)
	assert.Zero(t, f.queueLen(t))
}

func TestUpdateRecord_DeleteCommonStillReferenced(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency, field("245", sf("a", "Titel"))), domain.MimeMarcXchange, "")
	f.seed(t, marc("1", 700400, field("990", sf("a", "lokal"))), domain.MimeEnrichment, "")

	err := f.updater.UpdateRecord(context.Background(), deleted(marc("1", domain.PublicCommonAgency)), "u", "g")

	ue := requireUpdateError(t, err, domain.ErrReferentialIntegrity, domain.KeyDeleteReferenced)
	assert.Equal(t, []domain.RecordID{key("1", 700400)}, ue.Blocking)
	assert.True(t, f.exists(t, "1", domain.CommonAgency))
}

func TestUpdateRecord_DeleteCommonRecord(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency,
		field("004", sf("r", "n"), sf("a", "e")),
		field("245", sf("a", "Titel"))), domain.MimeMarcXchange, "")

	require.NoError(t, f.updater.UpdateRecord(context.Background(),
		deleted(marc("1", domain.PublicCommonAgency, field("004", sf("r", "n"), sf("a", "e")))), "u", "g"))

	stored, tombstone := f.stored(t, "1", domain.CommonAgency)
	assert.True(t, stored.Deleted)
	assert.Equal(t, domain.MimeMarcXchange, stored.MimeType)
	assert.Equal(t, "191919", tombstone.Value("001", "b"))
	assert.Equal(t, "d", tombstone.Value("004", "r"))
	assert.Equal(t, "e", tombstone.Value("004", "a"))
	assert.False(t, tombstone.HasField("245"))
	assert.Equal(t, 1, f.queueCounts(t)[key("1", domain.CommonAgency)])
}

func TestUpdateRecord_VolumeWithMissingParent(t *testing.T) {
	f := newFixture(t)

	err := f.updater.UpdateRecord(context.Background(),
		marc("V", domain.PublicCommonAgency, field("014", sf("a", "missing"))), "u", "g")

	requireUpdateError(t, err, domain.ErrStructuralConflict, domain.KeyReferenceNotExist)
	assert.False(t, f.exists(t, "V", domain.CommonAgency))
	assert.Zero(t, f.queueLen(t))
}

func TestUpdateRecord_VolumeLinkedToParent(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("H", domain.CommonAgency, field("245", sf("a", "Hovedpost"))), domain.MimeMarcXchange, "")

	require.NoError(t, f.updater.UpdateRecord(context.Background(),
		marc("V", domain.PublicCommonAgency, field("014", sf("a", "H"))), "u", "g"))

	from, err := f.rawRepo.RelationsFromRecord(context.Background(), key("V", domain.CommonAgency))
	require.NoError(t, err)
	assert.Equal(t, []domain.RecordID{key("H", domain.CommonAgency)}, from)

	children, err := f.rawRepo.Children(context.Background(), key("H", domain.CommonAgency))
	require.NoError(t, err)
	assert.Equal(t, []domain.RecordID{key("V", domain.CommonAgency)}, children)
}

func TestUpdateRecord_DeleteEnrichmentWithHoldings(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency, field("245", sf("a", "Titel"))), domain.MimeMarcXchange, "")
	f.seed(t, marc("1", 700400, field("990", sf("a", "lokal"))), domain.MimeEnrichment, "")
	f.hold(t, "1", 700400)

	err := f.updater.UpdateRecord(context.Background(), deleted(marc("1", 700400)), "u", "g")

	ue := requireUpdateError(t, err, domain.ErrReferentialIntegrity, domain.KeyDeleteHoldings)
	assert.Equal(t, []int{700400}, ue.Agencies)

	stored, ext := f.stored(t, "1", 700400)
	assert.False(t, stored.Deleted)
	assert.Equal(t, "lokal", ext.Value("990", "a"))
	assert.Zero(t, f.queueLen(t))
}

func TestUpdateRecord_DeleteEnrichment(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency, field("245", sf("a", "Titel"))), domain.MimeMarcXchange, "")
	f.seed(t, marc("1", 700400, field("990", sf("a", "lokal"))), domain.MimeEnrichment, "")

	require.NoError(t, f.updater.UpdateRecord(context.Background(), deleted(marc("1", 700400)), "u", "g"))

	stored, _ := f.stored(t, "1", 700400)
	assert.True(t, stored.Deleted)
	from, err := f.rawRepo.RelationsFromRecord(context.Background(), key("1", 700400))
	require.NoError(t, err)
	assert.Empty(t, from)
	assert.Equal(t, 1, f.queueCounts(t)[key("1", 700400)])
}

func TestUpdateRecord_EnrichmentWithParentRejected(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency, field("245", sf("a", "Titel"))), domain.MimeMarcXchange, "")

	err := f.updater.UpdateRecord(context.Background(),
		marc("1", 700400, field("014", sf("a", "H")), field("990", sf("a", "lokal"))), "u", "g")

	requireUpdateError(t, err, domain.ErrStructuralConflict, domain.KeyEnrichmentHasParent)
	assert.False(t, f.exists(t, "1", 700400))
	assert.Zero(t, f.queueLen(t))
}

func TestUpdateRecord_SaveEnrichment(t *testing.T) {
	f := newFixture(t)
	f.seed(t, marc("1", domain.CommonAgency, field("245", sf("a", "Titel"))), domain.MimeMarcXchange, "")

	require.NoError(t, f.updater.UpdateRecord(context.Background(),
		marc("1", 700400, field("990", sf("a", "lokal"))), "u", "g"))

	assert.Equal(t, 1, f.rules.correctCalls)
	stored, ext := f.stored(t, "1", 700400)
	assert.Equal(t, domain.MimeEnrichment, stored.MimeType)
	assert.Equal(t, "lokal", ext.Value("990", "a"))
	from, err := f.rawRepo.RelationsFromRecord(context.Background(), key("1", 700400))
	require.NoError(t, err)
	assert.Equal(t, []domain.RecordID{key("1", domain.CommonAgency)}, from)
}

func TestUpdateRecord_EmptyEnrichment(t *testing.T) {
	empty := func(_, _ *domain.MarcRecord) *domain.MarcRecord { return &domain.MarcRecord{} }

	t.Run("new enrichment is not stored", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, marc("1", domain.CommonAgency, field("245", sf("a", "Titel"))), domain.MimeMarcXchange, "")
		f.rules.correct = empty

		require.NoError(t, f.updater.UpdateRecord(context.Background(),
			marc("1", 700400, field("245", sf("a", "Titel"))), "u", "g"))

		exists, err := f.rawRepo.RecordExistsMaybeDeleted(context.Background(), "1", 700400)
		require.NoError(t, err)
		assert.False(t, exists)
		assert.Empty(t, f.store.saves)
		assert.Zero(t, f.queueLen(t))
	})

	t.Run("existing enrichment is tombstoned", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, marc("1", domain.CommonAgency, field("245", sf("a", "Titel"))), domain.MimeMarcXchange, "")
		f.seed(t, marc("1", 700400, field("990", sf("a", "lokal"))), domain.MimeEnrichment, "")
		f.rules.correct = empty

		require.NoError(t, f.updater.UpdateRecord(context.Background(),
			marc("1", 700400, field("245", sf("a", "Titel"))), "u", "g"))

		stored, _ := f.stored(t, "1", 700400)
		assert.True(t, stored.Deleted)
		assert.Equal(t, 1, f.queueLen(t))
	})
}

func TestUpdateRecord_LocalRecord(t *testing.T) {
	t.Run("save", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.updater.UpdateRecord(context.Background(),
			marc("L", 700400, field("245", sf("a", "Lokal"))), "u", "g"))

		stored, _ := f.stored(t, "L", 700400)
		assert.Equal(t, domain.MimeDecentral, stored.MimeType)
		from, err := f.rawRepo.RelationsFromRecord(context.Background(), key("L", 700400))
		require.NoError(t, err)
		assert.Empty(t, from)
		assert.Zero(t, f.rules.correctCalls)
	})

	t.Run("delete with holdings", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, marc("L", 700400, field("245", sf("a", "Lokal"))), domain.MimeDecentral, "")
		f.hold(t, "L", 700400)

		err := f.updater.UpdateRecord(context.Background(), deleted(marc("L", 700400)), "u", "g")

		ue := requireUpdateError(t, err, domain.ErrReferentialIntegrity, domain.KeyDeleteLocalHoldings)
		assert.Equal(t, []int{700400}, ue.Agencies)
		assert.True(t, f.exists(t, "L", 700400))
	})

	t.Run("delete", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, marc("L", 700400, field("245", sf("a", "Lokal"))), domain.MimeDecentral, "")

		require.NoError(t, f.updater.UpdateRecord(context.Background(), deleted(marc("L", 700400)), "u", "g"))

		stored, _ := f.stored(t, "L", 700400)
		assert.True(t, stored.Deleted)
		assert.Equal(t, domain.MimeDecentral, stored.MimeType)
	})

	t.Run("delete missing", func(t *testing.T) {
		f := newFixture(t)

		err := f.updater.UpdateRecord(context.Background(), deleted(marc("L", 700400)), "u", "g")

		requireUpdateError(t, err, domain.ErrNotFound, domain.KeyDeleteNotExist)
		assert.Equal(t, []string{"not_found"}, f.metrics.finished)
	})
}

func TestUpdateRecord_FailureKeepsEarlierWrites(t *testing.T) {
	f := newFixture(t)
	f.store.failAgency = domain.DBCEnrichmentAgency
	f.rules.split = func(rec *domain.MarcRecord) []*domain.MarcRecord {
		return []*domain.MarcRecord{
			marc("1", domain.CommonAgency, field("245", sf("a", "Titel"))),
			marc("1", domain.DBCEnrichmentAgency, field("s12", sf("t", "x"))),
		}
	}

	err := f.updater.UpdateRecord(context.Background(), marc("1", domain.PublicCommonAgency), "u", "g")

	assert.ErrorIs(t, err, errStoreDown)
	assert.True(t, f.exists(t, "1", domain.CommonAgency))
	assert.False(t, f.exists(t, "1", domain.DBCEnrichmentAgency))
	assert.Equal(t, []string{"error"}, f.metrics.finished)
}

func TestFailureKind(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{nil, "ok"},
		{domain.NewUpdateError(domain.ErrNilRecord, domain.KeyRecordIsNull, nil), "nil_record"},
		{domain.NewUpdateError(domain.ErrStructuralConflict, domain.KeySaveEmptyRecord, nil, "1", 1), "structural"},
		{domain.NewUpdateError(domain.ErrReferentialIntegrity, domain.KeyDeleteHoldings, nil, "1", 1, nil), "referential"},
		{&domain.UpdateError{Kind: domain.ErrEncoding, Err: errors.New("bad xml")}, "encoding"},
		{errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, failureKind(tt.err))
		})
	}
}
