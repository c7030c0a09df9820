package cli

import (
	"fmt"
	"strconv"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

// parseRecordID parses an id and agency argument pair.
func parseRecordID(id, agency string) (domain.RecordID, error) {
	if id == "" {
		return domain.RecordID{}, fmt.Errorf("empty record id: %w", errUsage)
	}
	agencyID, err := parseAgency(agency)
	if err != nil {
		return domain.RecordID{}, err
	}
	return domain.NewRecordID(id, agencyID), nil
}

func parseAgency(s string) (int, error) {
	agencyID, err := strconv.Atoi(s)
	if err != nil || agencyID <= 0 {
		return 0, fmt.Errorf("agency %q: %w", s, errUsage)
	}
	return agencyID, nil
}
