package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
	"github.com/custodia-labs/rawrepo-update/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.ImportService = (*ImportService)(nil)

// ImportService feeds bulk record sources through an UpdateService.
type ImportService struct {
	updater driving.UpdateService
	limiter *rate.Limiter
}

// NewImportService creates a new import service.
// A ratePerSecond <= 0 disables throttling. burst is raised to at least 1.
func NewImportService(updater driving.UpdateService, ratePerSecond float64, burst int) *ImportService {
	s := &ImportService{updater: updater}
	if ratePerSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return s
}

// Import updates every record read from reader.
// A read error other than io.EOF stops the import; update failures are
// collected and the import continues.
func (s *ImportService) Import(
	ctx context.Context,
	reader driving.RecordReader,
	userID, groupID string,
) (*driving.ImportSummary, error) {
	if reader == nil {
		return nil, domain.ErrInvalidInput
	}

	summary := &driving.ImportSummary{}
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("read record %d: %w", summary.Processed+1, err)
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return summary, err
			}
		}

		summary.Processed++
		if err := s.updater.UpdateRecord(ctx, rec, userID, groupID); err != nil {
			logger.Warn("import record %d failed: %v", summary.Processed, err)
			summary.Failed++
			summary.Failures = append(summary.Failures, driving.ImportFailure{
				Position: summary.Processed,
				RecordID: importRecordID(rec),
				Err:      err,
			})
			continue
		}
		summary.Updated++
	}

	logger.Info("import finished: %d processed, %d updated, %d failed",
		summary.Processed, summary.Updated, summary.Failed)
	return summary, nil
}

func importRecordID(rec *domain.MarcRecord) domain.RecordID {
	agencyID, _ := rec.AgencyID() //nolint:errcheck // zero agency marks an unparseable id
	return domain.NewRecordID(rec.RecordID(), agencyID)
}
