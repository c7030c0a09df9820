package native

import (
	"strconv"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

// CreateExtendedRecord builds a new enrichment record for agencyID holding a
// copy of the common record's classification data.
func (h *RuleHost) CreateExtendedRecord(common *domain.MarcRecord, agencyID int) (*domain.MarcRecord, error) {
	now := h.now()
	ext := &domain.MarcRecord{}
	ext.Append(domain.NewField(domain.FieldID, "00",
		domain.Subfield{Name: "a", Value: common.RecordID()},
		domain.Subfield{Name: "b", Value: strconv.Itoa(agencyID)},
		domain.Subfield{Name: "c", Value: now.Format("20060102150405")},
		domain.Subfield{Name: "d", Value: now.Format("20060102")},
		domain.Subfield{Name: "f", Value: "a"},
	))
	return h.UpdateExtendedRecord(common, ext)
}

// UpdateExtendedRecord copies the common record's classification data into
// extended when extended carries none, and refreshes the 004 status field.
func (h *RuleHost) UpdateExtendedRecord(common, extended *domain.MarcRecord) (*domain.MarcRecord, error) {
	result := extended.Clone()
	if result == nil {
		result = &domain.MarcRecord{}
	}
	if !h.HasClassificationData(result) {
		result.Append(h.classificationFieldsOf(common)...)
	}
	result.RemoveFields(domain.FieldStatus)
	for _, f := range common.FieldsNamed(domain.FieldStatus) {
		result.Append(f.Clone())
	}
	return correctIfEmpty(result), nil
}

// CorrectExtendedRecord removes from candidate the classification data that
// equals the common record's, and the fields it duplicates verbatim.
func (h *RuleHost) CorrectExtendedRecord(common, candidate *domain.MarcRecord) (*domain.MarcRecord, error) {
	result := candidate.Clone()
	if result == nil {
		return &domain.MarcRecord{}, nil
	}
	if h.HasClassificationData(common) && !h.HasClassificationsChanged(common, result) {
		for _, name := range h.fields {
			result.RemoveFields(name)
		}
	}
	return correctIfEmpty(h.cleanup(common, result)), nil
}

// cleanup drops the fields of ext that appear unchanged in common. Control
// fields and classification fields always stay.
func (h *RuleHost) cleanup(common, ext *domain.MarcRecord) *domain.MarcRecord {
	result := &domain.MarcRecord{}
	for _, f := range ext.Fields {
		if isControlField(f.Name) || h.isField[f.Name] || !duplicates(common, f) {
			result.Append(f)
		}
	}
	return result
}

func duplicates(common *domain.MarcRecord, f domain.Field) bool {
	want := withoutIgnorable(f)
	for _, cf := range common.FieldsNamed(f.Name) {
		if withoutIgnorable(cf) == want {
			return true
		}
	}
	return false
}

func withoutIgnorable(f domain.Field) string {
	c := domain.Field{Name: f.Name, Indicator: f.Indicator}
	for _, sf := range f.Subfields {
		if !ignorableSubfields[sf.Name] {
			c.Subfields = append(c.Subfields, sf)
		}
	}
	return c.String()
}

// correctIfEmpty returns an empty record when rec carries nothing but
// control fields. Records of the common and DBC enrichment agencies, and
// records with a 004n value, are kept.
func correctIfEmpty(rec *domain.MarcRecord) *domain.MarcRecord {
	agencyID, err := rec.AgencyID()
	if err == nil && (agencyID == domain.CommonAgency || agencyID == domain.DBCEnrichmentAgency) {
		return rec
	}
	if rec.Value(domain.FieldStatus, "n") != "" {
		return rec
	}
	for _, f := range rec.Fields {
		if !isControlField(f.Name) {
			return rec
		}
	}
	return &domain.MarcRecord{}
}
