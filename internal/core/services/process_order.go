package services

import (
	"slices"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

// CompareProcessOrder orders records for persistence: records owned by the
// common agency come first, and the order is inverted when either record
// carries the deletion mark. Unparseable agencies count as non-common.
// The inversion is decided per pair, so a set mixing marked and unmarked
// records is not totally ordered and sorts according to its input order.
func CompareProcessOrder(a, b *domain.MarcRecord) int {
	result := 0
	aCommon, bCommon := isCommonAgency(a), isCommonAgency(b)
	switch {
	case aCommon && !bCommon:
		result = -1
	case !aCommon && bCommon:
		result = 1
	}
	if a.IsDeleted() || b.IsDeleted() {
		return -result
	}
	return result
}

// SortByProcessOrder sorts records in place by CompareProcessOrder.
// Records that compare equal keep their relative order.
func SortByProcessOrder(records []*domain.MarcRecord) {
	slices.SortStableFunc(records, CompareProcessOrder)
}

func isCommonAgency(rec *domain.MarcRecord) bool {
	agencyID, err := rec.AgencyID()
	return err == nil && agencyID == domain.CommonAgency
}
