package driving

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

// ImportService feeds bulk record sources through the update flow.
type ImportService interface {
	// Import updates every record read from reader. Per-record failures are
	// collected in the summary and do not stop the import.
	Import(ctx context.Context, reader RecordReader, userID, groupID string) (*ImportSummary, error)
}

// RecordReader yields records one at a time from a bulk source.
type RecordReader interface {
	// Read returns the next record, or io.EOF when the source is exhausted.
	Read() (*domain.MarcRecord, error)
}

// ImportSummary reports the outcome of an import.
type ImportSummary struct {
	Processed int
	Updated   int
	Failed    int
	Failures  []ImportFailure
}

// ImportFailure describes one record that could not be updated.
type ImportFailure struct {
	Position int
	RecordID domain.RecordID
	Err      error
}

// Err joins the per-record failures, or returns nil when none occurred.
func (s *ImportSummary) Err() error {
	if s == nil || len(s.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(s.Failures))
	for i, f := range s.Failures {
		errs[i] = fmt.Errorf("record %d %s: %w", f.Position, f.RecordID, f.Err)
	}
	return errors.Join(errs...)
}
