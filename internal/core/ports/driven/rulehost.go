package driven

import "github.com/custodia-labs/rawrepo-update/internal/core/domain"

// RuleHost exposes the classification and splitting rules consumed by the
// update flow. The update flow treats every result opaquely; an empty record
// means "no record needed".
type RuleHost interface {
	// HasClassificationData reports whether the record carries classification fields.
	HasClassificationData(rec *domain.MarcRecord) bool

	// HasClassificationsChanged reports whether classification data differs
	// between the old and the new version of a record.
	HasClassificationsChanged(oldRec, newRec *domain.MarcRecord) bool

	// CreateExtendedRecord builds a new enrichment record for agencyID from a
	// common record.
	CreateExtendedRecord(common *domain.MarcRecord, agencyID int) (*domain.MarcRecord, error)

	// UpdateExtendedRecord refreshes an existing enrichment record from a
	// common record.
	UpdateExtendedRecord(common, extended *domain.MarcRecord) (*domain.MarcRecord, error)

	// CorrectExtendedRecord strips data from a candidate enrichment record
	// that duplicates the common record.
	CorrectExtendedRecord(common, candidate *domain.MarcRecord) (*domain.MarcRecord, error)

	// SplitForStorage turns one incoming record into the ordered records to persist.
	SplitForStorage(incoming *domain.MarcRecord, userID, groupID string) ([]*domain.MarcRecord, error)
}
