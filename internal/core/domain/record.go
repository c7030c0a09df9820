package domain

import (
	"fmt"
	"time"
)

// Agency numbers with special meaning in the repository.
const (
	// CommonAgency owns the shared common records.
	CommonAgency = 191919

	// PublicCommonAgency is the public number of the common catalogue. Incoming
	// records and user-facing messages use it in place of CommonAgency.
	PublicCommonAgency = 870970

	// DBCEnrichmentAgency owns the enrichment records split off common records.
	DBCEnrichmentAgency = 870979
)

// Provider is the default provider name used when registering changed records.
const Provider = "opencataloging-update"

// MimeType classifies the content of a physical record.
type MimeType string

// Supported mime types.
const (
	MimeMarcXchange MimeType = "text/marcxchange"
	MimeEnrichment  MimeType = "text/enrichment+marcxchange"
	MimeDecentral   MimeType = "text/decentral+marcxchange"
)

// RecordType is the routing class of a record for a given id and agency.
type RecordType string

// Record types.
const (
	RecordTypeCommon     RecordType = "common"
	RecordTypeEnrichment RecordType = "enrichment"
	RecordTypeLocal      RecordType = "local"
)

// RecordID is the key of a physical record.
type RecordID struct {
	BibliographicRecordID string `json:"bibliographic_record_id"`
	AgencyID              int    `json:"agency_id"`
}

// NewRecordID creates a record key.
func NewRecordID(id string, agencyID int) RecordID {
	return RecordID{BibliographicRecordID: id, AgencyID: agencyID}
}

// String renders the key as "[id:agency]".
func (id RecordID) String() string {
	return fmt.Sprintf("[%s:%d]", id.BibliographicRecordID, id.AgencyID)
}

// IsCommon reports whether the key belongs to the common agency.
func (id RecordID) IsCommon() bool {
	return id.AgencyID == CommonAgency
}

// Record is a physical record in the repository.
// A nil Content means the record only exists as a relation anchor.
type Record struct {
	ID       RecordID  `json:"id"`
	Content  []byte    `json:"content,omitempty"`
	MimeType MimeType  `json:"mime_type"`
	Deleted  bool      `json:"deleted"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// NewRecord creates an empty placeholder record for the key.
func NewRecord(id RecordID) *Record {
	return &Record{ID: id}
}

// HasContent reports whether the record carries encoded content.
func (r *Record) HasContent() bool {
	return r != nil && len(r.Content) > 0
}

// QueueJob is a change signal registered for downstream processing.
type QueueJob struct {
	ID       string    `json:"id"`
	RecordID RecordID  `json:"record_id"`
	Provider string    `json:"provider"`
	MimeType MimeType  `json:"mime_type"`
	QueuedAt time.Time `json:"queued_at"`
}

// Relation is a directed edge between two physical records.
type Relation struct {
	From RecordID `json:"from"`
	To   RecordID `json:"to"`
}

// IsSibling reports whether the relation links two records sharing an id
// (an enrichment pointing at its common record).
func (r Relation) IsSibling() bool {
	return r.From.BibliographicRecordID == r.To.BibliographicRecordID
}
