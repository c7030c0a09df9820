package driven

import "github.com/custodia-labs/rawrepo-update/internal/core/domain"

// Metrics records update activity.
type Metrics interface {
	// RecordSaved counts a physical record write.
	RecordSaved(mime domain.MimeType)

	// RecordDeleted counts a tombstone write.
	RecordDeleted(mime domain.MimeType)

	// RecordEnqueued counts a change signal.
	RecordEnqueued()

	// UpdateFinished counts a finished UpdateRecord call. kind is "ok" or
	// the failure class.
	UpdateFinished(kind string)
}
