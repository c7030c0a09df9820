package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
)

// mockUpdateService records the updated ids.
type mockUpdateService struct {
	updated []string
	failOn  string
}

func (m *mockUpdateService) UpdateRecord(_ context.Context, rec *domain.MarcRecord, _, _ string) error {
	if rec.RecordID() == m.failOn {
		return domain.NewUpdateError(domain.ErrReferentialIntegrity, domain.KeyDeleteChildren, nil, rec.RecordID(), domain.PublicCommonAgency, []string{"2"})
	}
	m.updated = append(m.updated, rec.RecordID())
	return nil
}

// mockRecordService is a mock implementation of driving.RecordService.
type mockRecordService struct {
	view      *driving.RecordView
	relations *driving.RelationsView
	agencies  []int
	jobs      []domain.QueueJob
	purged    []domain.RecordID
	limit     int
	err       error
}

func (m *mockRecordService) Get(_ context.Context, _ domain.RecordID) (*driving.RecordView, error) {
	return m.view, m.err
}

func (m *mockRecordService) Agencies(_ context.Context, _ string) ([]int, error) {
	return m.agencies, m.err
}

func (m *mockRecordService) Relations(_ context.Context, _ domain.RecordID) (*driving.RelationsView, error) {
	return m.relations, m.err
}

func (m *mockRecordService) Purge(_ context.Context, id domain.RecordID) error {
	if m.err != nil {
		return m.err
	}
	m.purged = append(m.purged, id)
	return nil
}

func (m *mockRecordService) Queue(_ context.Context, limit int) ([]domain.QueueJob, error) {
	m.limit = limit
	return m.jobs, m.err
}

// mockImportService drains the reader and counts records.
type mockImportService struct {
	ids    []string
	failed int
	err    error
}

func (m *mockImportService) Import(_ context.Context, reader driving.RecordReader, _, _ string) (*driving.ImportSummary, error) {
	summary := &driving.ImportSummary{}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, err
		}
		m.ids = append(m.ids, rec.RecordID())
		summary.Processed++
		summary.Updated++
	}
	if m.failed > 0 {
		summary.Updated -= m.failed
		summary.Failed = m.failed
		summary.Failures = []driving.ImportFailure{{Position: 1, RecordID: domain.NewRecordID("1", 700400), Err: domain.ErrStructuralConflict}}
	}
	return summary, m.err
}

// mockHoldingsService is a map-backed holdings service.
type mockHoldingsService struct {
	holdings map[string][]int
	removed  []domain.RecordID
}

func (m *mockHoldingsService) Agencies(_ context.Context, id string) ([]int, error) {
	return m.holdings[id], nil
}

func (m *mockHoldingsService) Set(_ context.Context, id string, agencyID int, holds bool) error {
	if m.holdings == nil {
		m.holdings = make(map[string][]int)
	}
	if !holds {
		m.removed = append(m.removed, domain.NewRecordID(id, agencyID))
		return nil
	}
	m.holdings[id] = append(m.holdings[id], agencyID)
	return nil
}

// mockReadiness returns a fixed result.
type mockReadiness struct {
	err error
}

func (m *mockReadiness) Ready(_ context.Context) error {
	return m.err
}

// mockBlobSource serves objects from a map.
type mockBlobSource struct {
	objects map[string]string
}

func (m *mockBlobSource) Open(_ context.Context, location string) (io.ReadCloser, error) {
	body, ok := m.objects[location]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func commonRecordXML(ids ...string) string {
	var b strings.Builder
	b.WriteString(`<collection xmlns="info:lc/xmlns/marcxchange-v1">`)
	for _, id := range ids {
		b.WriteString(`<record><datafield tag="001" ind1="0" ind2="0"><subfield code="a">`)
		b.WriteString(id)
		b.WriteString(`</subfield><subfield code="b">870970</subfield></datafield></record>`)
	}
	b.WriteString(`</collection>`)
	return b.String()
}

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// withServices installs s for the duration of the test.
func withServices(t *testing.T, s Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() { SetServices(Services{}) })
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	recordRaw, recordJSON, queueLimit = false, false, 50
	holdingsRemove, versionShort = false, false
	updateUserID, updateGroupID = "", ""
	importUserID, importGroupID = "", ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
