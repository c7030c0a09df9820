package driving

import (
	"context"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

// RecordService provides read and administrative access to stored records.
type RecordService interface {
	// Get retrieves a physical record and its decoded content.
	Get(ctx context.Context, id domain.RecordID) (*RecordView, error)

	// Agencies returns all agencies with a live record for the id.
	Agencies(ctx context.Context, bibliographicRecordID string) ([]int, error)

	// Relations returns the outgoing and incoming relations of the record.
	Relations(ctx context.Context, id domain.RecordID) (*RelationsView, error)

	// Purge hard-deletes the record.
	Purge(ctx context.Context, id domain.RecordID) error

	// Queue returns pending change signals.
	Queue(ctx context.Context, limit int) ([]domain.QueueJob, error)
}

// RecordView is a physical record with decoded content.
type RecordView struct {
	// Record is the stored physical record.
	Record domain.Record

	// Type is the routing class of the record.
	Type domain.RecordType

	// Marc is the decoded content. Empty for anchors and undecodable content.
	Marc *domain.MarcRecord
}

// RelationsView groups the relations touching one record.
type RelationsView struct {
	ID       domain.RecordID
	From     []domain.RecordID
	Children []domain.RecordID
	Siblings []domain.RecordID
}
