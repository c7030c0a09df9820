package mcp

import (
	"context"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
)

// mockUpdateService is a mock implementation of driving.UpdateService.
type mockUpdateService struct {
	updated []string
	users   []string
	failOn  string
	err     error
}

func (m *mockUpdateService) UpdateRecord(_ context.Context, rec *domain.MarcRecord, userID, _ string) error {
	if m.err != nil && (m.failOn == "" || m.failOn == rec.RecordID()) {
		return m.err
	}
	m.updated = append(m.updated, rec.RecordID())
	m.users = append(m.users, userID)
	return nil
}

// mockRecordService is a mock implementation of driving.RecordService.
type mockRecordService struct {
	view      *driving.RecordView
	relations *driving.RelationsView
	agencies  []int
	jobs      []domain.QueueJob
	err       error

	requested []domain.RecordID
}

func (m *mockRecordService) Get(_ context.Context, id domain.RecordID) (*driving.RecordView, error) {
	m.requested = append(m.requested, id)
	return m.view, m.err
}

func (m *mockRecordService) Agencies(_ context.Context, _ string) ([]int, error) {
	return m.agencies, m.err
}

func (m *mockRecordService) Relations(_ context.Context, id domain.RecordID) (*driving.RelationsView, error) {
	m.requested = append(m.requested, id)
	return m.relations, m.err
}

func (m *mockRecordService) Purge(_ context.Context, _ domain.RecordID) error {
	return m.err
}

func (m *mockRecordService) Queue(_ context.Context, _ int) ([]domain.QueueJob, error) {
	return m.jobs, m.err
}
