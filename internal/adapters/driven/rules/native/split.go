package native

import (
	"strconv"
	"unicode"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/logger"
)

// SplitForStorage turns an incoming record into the records to persist.
// A record for the public common agency is stored under the common agency.
// With DBC enrichment enabled its lowercase-tagged fields move to a separate
// DBC enrichment record. Other records are stored as they are.
func (h *RuleHost) SplitForStorage(incoming *domain.MarcRecord, userID, groupID string) ([]*domain.MarcRecord, error) {
	agencyID, err := incoming.AgencyID()
	if err != nil {
		return nil, err
	}
	logger.Debug("split record %s:%d for user %q group %q", incoming.RecordID(), agencyID, userID, groupID)

	if agencyID != domain.PublicCommonAgency {
		return []*domain.MarcRecord{incoming.Clone()}, nil
	}

	common := &domain.MarcRecord{}
	dbc := &domain.MarcRecord{}
	for _, f := range incoming.Fields {
		if h.dbcEnrichment && isLocalTag(f.Name) {
			dbc.Append(f.Clone())
			continue
		}
		common.Append(f.Clone())
	}
	common.AddOrReplaceSubfield(domain.FieldID, domain.SubfieldAgencyID, strconv.Itoa(domain.CommonAgency))

	if dbc.IsEmpty() {
		return []*domain.MarcRecord{common}, nil
	}

	enrichment := &domain.MarcRecord{}
	for _, f := range common.FieldsNamed(domain.FieldID) {
		enrichment.Append(f.Clone())
	}
	enrichment.AddOrReplaceSubfield(domain.FieldID, domain.SubfieldAgencyID, strconv.Itoa(domain.DBCEnrichmentAgency))
	for _, f := range common.FieldsNamed(domain.FieldStatus) {
		enrichment.Append(f.Clone())
	}
	enrichment.Append(dbc.Fields...)
	return []*domain.MarcRecord{common, enrichment}, nil
}

// isLocalTag reports whether a field tag starts with a lowercase letter.
func isLocalTag(name string) bool {
	for _, r := range name {
		return unicode.IsLower(r)
	}
	return false
}
