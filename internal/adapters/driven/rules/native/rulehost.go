// Package native implements the classification and splitting rules as a
// native rule table.
//
// The rule table decides which fields count as classification data, how a
// change in them is detected, how enrichment records are derived from a
// common record, and how an incoming record is split into the records to
// store. The set of classification fields is configurable; the change checks
// of a field only run when the field is part of the set.
package native

import (
	"time"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
)

// DefaultClassificationFields are the fields treated as classification data.
var DefaultClassificationFields = []string{"004", "008", "009", "038", "039", "100", "110", "239", "245", "652"}

// controlFields are kept in every enrichment record.
var controlFields = []string{domain.FieldID, domain.FieldStatus, domain.FieldOwnership}

// ignorableSubfields are skipped when comparing enrichment and common fields.
var ignorableSubfields = map[string]bool{"&": true, "0": true, "1": true, "4": true}

// Config configures the rule table.
type Config struct {
	// ClassificationFields overrides DefaultClassificationFields when non-empty.
	ClassificationFields []string

	// DBCEnrichment moves the fields with lowercase tags of a common record
	// into a separate DBC enrichment record.
	DBCEnrichment bool
}

// Ensure RuleHost implements the interface.
var _ driven.RuleHost = (*RuleHost)(nil)

// RuleHost is the native rule table.
type RuleHost struct {
	fields        []string
	isField       map[string]bool
	dbcEnrichment bool
	now           func() time.Time
}

// New creates a rule host from cfg.
func New(cfg Config) *RuleHost {
	fields := cfg.ClassificationFields
	if len(fields) == 0 {
		fields = DefaultClassificationFields
	}
	h := &RuleHost{
		fields:        append([]string(nil), fields...),
		isField:       make(map[string]bool, len(fields)),
		dbcEnrichment: cfg.DBCEnrichment,
		now:           time.Now,
	}
	for _, f := range fields {
		h.isField[f] = true
	}
	return h
}

// ClassificationFields returns the configured classification fields.
func (h *RuleHost) ClassificationFields() []string {
	return append([]string(nil), h.fields...)
}

// HasClassificationData reports whether rec has any classification field.
func (h *RuleHost) HasClassificationData(rec *domain.MarcRecord) bool {
	if rec == nil {
		return false
	}
	for _, f := range rec.Fields {
		if h.isField[f.Name] {
			return true
		}
	}
	return false
}

func (h *RuleHost) classificationFieldsOf(rec *domain.MarcRecord) []domain.Field {
	var result []domain.Field
	for _, f := range rec.Fields {
		if h.isField[f.Name] {
			result = append(result, f.Clone())
		}
	}
	return result
}

func isControlField(name string) bool {
	for _, c := range controlFields {
		if c == name {
			return true
		}
	}
	return false
}
