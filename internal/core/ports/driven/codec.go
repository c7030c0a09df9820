package driven

import "github.com/custodia-labs/rawrepo-update/internal/core/domain"

// RecordCodec converts logical records to and from stored content.
type RecordCodec interface {
	// Encode serialises the record. An empty record encodes to nil.
	Encode(rec *domain.MarcRecord) ([]byte, error)

	// Decode parses stored content. Empty content decodes to an empty record.
	Decode(content []byte) (*domain.MarcRecord, error)
}
