package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
	"github.com/custodia-labs/rawrepo-update/internal/logger"
)

// Ensure Updater implements the interface.
var _ driving.UpdateService = (*Updater)(nil)

// Updater decomposes incoming records into physical repository records.
//
// One call splits the record through the rule host, orders the result so
// common records are written before their enrichments (and deleted after
// them), dispatches every record to the common, enrichment or local path,
// and cascades classification changes on a common record to the enrichment
// records of agencies holding items.
//
// Each physical write is committed on its own. A failure stops the call and
// leaves earlier writes in place.
type Updater struct {
	rawRepo  *RawRepo
	holdings driven.HoldingsLookup
	rules    driven.RuleHost
	metrics  driven.Metrics
	provider string
}

// NewUpdater creates a new updater.
// metrics is optional. An empty provider falls back to domain.Provider.
func NewUpdater(
	rawRepo *RawRepo,
	holdings driven.HoldingsLookup,
	rules driven.RuleHost,
	metrics driven.Metrics,
	provider string,
) *Updater {
	if provider == "" {
		provider = domain.Provider
	}
	return &Updater{
		rawRepo:  rawRepo,
		holdings: holdings,
		rules:    rules,
		metrics:  metrics,
		provider: provider,
	}
}

// UpdateRecord splits, validates, links and persists rec.
func (u *Updater) UpdateRecord(ctx context.Context, rec *domain.MarcRecord, userID, groupID string) (err error) {
	if rec == nil {
		return domain.NewUpdateError(domain.ErrNilRecord, domain.KeyRecordIsNull, nil)
	}

	trackingID := uuid.NewString()
	logger.Section("Update " + trackingID)
	logger.Debug("user %q group %q record %s:%s", userID, groupID,
		rec.RecordID(), rec.Value(domain.FieldID, domain.SubfieldAgencyID))
	defer func() {
		if err != nil {
			logger.Debug("update %s failed: %v", trackingID, err)
		}
		if u.metrics != nil {
			u.metrics.UpdateFinished(failureKind(err))
		}
	}()

	if _, err := rec.AgencyID(); err != nil {
		return err
	}
	if err := u.checkDeletable(ctx, rec); err != nil {
		return err
	}

	split, err := u.rules.SplitForStorage(rec, userID, groupID)
	if err != nil {
		return fmt.Errorf("split record: %w", err)
	}
	records := slices.Clone(split)
	SortByProcessOrder(records)
	logger.Debug("split into %d records", len(records))

	for _, r := range records {
		if err := u.dispatch(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// checkDeletable refuses deletion of a record that still has children.
func (u *Updater) checkDeletable(ctx context.Context, rec *domain.MarcRecord) error {
	if !rec.IsDeleted() {
		return nil
	}
	agencyID, err := rec.AgencyID()
	if err != nil {
		return err
	}
	if agencyID == domain.PublicCommonAgency {
		agencyID = domain.CommonAgency
	}
	key := domain.NewRecordID(rec.RecordID(), agencyID)

	children, err := u.rawRepo.Children(ctx, key)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		e := domain.NewUpdateError(domain.ErrReferentialIntegrity, domain.KeyDeleteChildren, nil,
			key.BibliographicRecordID, key.AgencyID, children)
		e.Blocking = children
		return e
	}
	return nil
}

// dispatch routes one split record. The routing questions are asked in a
// fixed order: common agency, common record exists, deletion mark.
func (u *Updater) dispatch(ctx context.Context, rec *domain.MarcRecord) error {
	recID := rec.RecordID()
	agencyID, err := rec.AgencyID()
	if err != nil {
		return err
	}

	if agencyID == domain.CommonAgency {
		if rec.IsDeleted() {
			return u.deleteCommonRecord(ctx, rec, recID)
		}
		return u.updateCommonRecord(ctx, rec, recID)
	}

	commonExists, err := u.rawRepo.RecordExists(ctx, recID, domain.CommonAgency)
	if err != nil {
		return err
	}
	if commonExists {
		if rec.IsDeleted() {
			return u.deleteEnrichmentRecord(ctx, rec, recID, agencyID)
		}
		return u.saveLibraryExtendedRecord(ctx, rec, recID, agencyID)
	}
	return u.updateLibraryLocalRecord(ctx, rec, recID, agencyID)
}

func (u *Updater) deleteCommonRecord(ctx context.Context, rec *domain.MarcRecord, recID string) error {
	key := domain.NewRecordID(recID, domain.CommonAgency)
	refs, err := u.rawRepo.RelationsToRecord(ctx, key)
	if err != nil {
		return err
	}
	if len(refs) > 0 {
		e := domain.NewUpdateError(domain.ErrReferentialIntegrity, domain.KeyDeleteReferenced, nil,
			recID, domain.PublicCommonAgency, refs)
		e.Blocking = refs
		return e
	}
	return u.deleteRecord(ctx, rec, recID, domain.CommonAgency)
}

// updateCommonRecord overwrites the common record, cascades classification
// changes to holding agencies and signals every existing enrichment.
func (u *Updater) updateCommonRecord(ctx context.Context, rec *domain.MarcRecord, recID string) error {
	agencies, err := u.rawRepo.AgenciesForRecord(ctx, recID)
	if err != nil {
		return err
	}
	var locals []int
	for _, a := range agencies {
		if a != domain.CommonAgency && a != domain.PublicCommonAgency {
			locals = append(locals, a)
		}
	}
	exists, err := u.rawRepo.RecordExists(ctx, recID, domain.CommonAgency)
	if err != nil {
		return err
	}
	if !exists && len(locals) > 0 {
		e := domain.NewUpdateError(domain.ErrStructuralConflict, domain.KeyCommonWithLocals, nil, locals)
		e.Agencies = locals
		return e
	}

	stored, err := u.rawRepo.FetchRecord(ctx, recID, domain.CommonAgency)
	if err != nil {
		return err
	}
	oldRec, err := u.rawRepo.Decode(stored.Content)
	if err != nil {
		return err
	}

	if err := u.saveRecord(ctx, rec, recID, domain.CommonAgency, rec.ParentID()); err != nil {
		return err
	}

	if u.rules.HasClassificationData(oldRec) && u.rules.HasClassificationData(rec) &&
		u.rules.HasClassificationsChanged(oldRec, rec) {
		logger.Info("classifications changed for %s, updating enrichments", recID)
		if err := u.cascadeClassifications(ctx, oldRec, recID); err != nil {
			return err
		}
	}

	return u.enqueueExtendedRecords(ctx, recID)
}

// cascadeClassifications brings the enrichment records of holding agencies
// in line with a changed common record. The previous common record is the
// source so libraries keep the classification they catalogued against.
func (u *Updater) cascadeClassifications(ctx context.Context, oldCommon *domain.MarcRecord, recID string) error {
	holders, err := u.holdings.AgenciesWithHoldings(ctx, recID)
	if err != nil {
		return fmt.Errorf("holdings for %s: %w", recID, err)
	}

	for _, agencyID := range holders {
		if agencyID == domain.CommonAgency {
			continue
		}
		exists, err := u.rawRepo.RecordExists(ctx, recID, agencyID)
		if err != nil {
			return err
		}

		if !exists {
			created, err := u.rules.CreateExtendedRecord(oldCommon, agencyID)
			if err != nil {
				return fmt.Errorf("create enrichment %s:%d: %w", recID, agencyID, err)
			}
			if created.IsEmpty() {
				logger.Debug("no enrichment needed for %s:%d", recID, agencyID)
				continue
			}
			if err := u.saveRecord(ctx, created, recID, agencyID, ""); err != nil {
				return err
			}
			continue
		}

		stored, err := u.rawRepo.FetchRecord(ctx, recID, agencyID)
		if err != nil {
			return err
		}
		extended, err := u.rawRepo.Decode(stored.Content)
		if err != nil {
			return err
		}
		if u.rules.HasClassificationData(extended) {
			logger.Debug("enrichment %s:%d has own classifications", recID, agencyID)
			if err := u.enqueueRecord(ctx, recID, agencyID); err != nil {
				return err
			}
			continue
		}

		updated, err := u.rules.UpdateExtendedRecord(oldCommon, extended)
		if err != nil {
			return fmt.Errorf("update enrichment %s:%d: %w", recID, agencyID, err)
		}
		if updated.IsEmpty() {
			err = u.deleteRecord(ctx, extended, recID, agencyID)
		} else {
			err = u.saveRecord(ctx, updated, recID, agencyID, "")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// enqueueExtendedRecords signals every agency with a live record for the id.
// Agencies touched by the cascade are signalled again.
func (u *Updater) enqueueExtendedRecords(ctx context.Context, recID string) error {
	agencies, err := u.rawRepo.AgenciesForRecord(ctx, recID)
	if err != nil {
		return err
	}
	for _, agencyID := range agencies {
		if agencyID == domain.CommonAgency {
			continue
		}
		if err := u.enqueueRecord(ctx, recID, agencyID); err != nil {
			return err
		}
	}
	return nil
}

func (u *Updater) deleteEnrichmentRecord(ctx context.Context, rec *domain.MarcRecord, recID string, agencyID int) error {
	holders, err := u.holdings.AgenciesWithHoldings(ctx, recID)
	if err != nil {
		return fmt.Errorf("holdings for %s: %w", recID, err)
	}
	if len(holders) > 0 {
		e := domain.NewUpdateError(domain.ErrReferentialIntegrity, domain.KeyDeleteHoldings, nil,
			recID, agencyID, holders)
		e.Agencies = holders
		return e
	}
	return u.deleteRecord(ctx, rec, recID, agencyID)
}

// saveLibraryExtendedRecord stores an enrichment after stripping what it
// duplicates from the common record. An enrichment left empty is tombstoned.
func (u *Updater) saveLibraryExtendedRecord(ctx context.Context, rec *domain.MarcRecord, recID string, agencyID int) error {
	common, err := u.rawRepo.FetchRecord(ctx, recID, domain.CommonAgency)
	if err != nil {
		return err
	}

	corrected := rec
	if common.HasContent() {
		commonRec, err := u.rawRepo.Decode(common.Content)
		if err != nil {
			return err
		}
		corrected, err = u.rules.CorrectExtendedRecord(commonRec, rec)
		if err != nil {
			return fmt.Errorf("correct enrichment %s:%d: %w", recID, agencyID, err)
		}
	}

	if corrected.IsEmpty() {
		exists, err := u.rawRepo.RecordExists(ctx, recID, agencyID)
		if err != nil {
			return err
		}
		if !exists {
			logger.Debug("enrichment %s:%d is empty, nothing to store", recID, agencyID)
			return nil
		}
		return u.deleteRecord(ctx, rec, recID, agencyID)
	}
	return u.saveRecord(ctx, corrected, recID, agencyID, rec.ParentID())
}

func (u *Updater) updateLibraryLocalRecord(ctx context.Context, rec *domain.MarcRecord, recID string, agencyID int) error {
	if !rec.IsDeleted() {
		return u.saveRecord(ctx, rec, recID, agencyID, rec.ParentID())
	}

	holders, err := u.holdings.AgenciesWithHoldings(ctx, recID)
	if err != nil {
		return fmt.Errorf("holdings for %s: %w", recID, err)
	}
	if len(holders) > 0 {
		e := domain.NewUpdateError(domain.ErrReferentialIntegrity, domain.KeyDeleteLocalHoldings, nil,
			recID, agencyID, holders)
		e.Agencies = holders
		return e
	}
	return u.deleteRecord(ctx, rec, recID, agencyID)
}

// saveRecord encodes rec and writes it as a live record, then signals it.
func (u *Updater) saveRecord(ctx context.Context, rec *domain.MarcRecord, recID string, agencyID int, parentID string) error {
	content, err := u.rawRepo.Encode(rec)
	if err != nil {
		return err
	}
	if content == nil {
		return domain.NewUpdateError(domain.ErrStructuralConflict, domain.KeySaveEmptyRecord, nil, recID, agencyID)
	}

	mime, err := u.mimeTypeForRecord(ctx, recID, agencyID)
	if err != nil {
		return err
	}

	// Enrichments declaring a parent are rejected by SaveRecord.
	if parentID != "" && mime != domain.MimeEnrichment {
		exists, err := u.rawRepo.RecordExists(ctx, parentID, agencyID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NewUpdateError(domain.ErrStructuralConflict, domain.KeyReferenceNotExist, nil,
				recID, agencyID, parentID, agencyID)
		}
	}

	stored, err := u.rawRepo.FetchRecord(ctx, recID, agencyID)
	if err != nil {
		return err
	}
	stored.Content = content
	stored.MimeType = mime
	stored.Deleted = false

	if err := u.rawRepo.SaveRecord(ctx, stored, parentID); err != nil {
		return err
	}
	logger.Info("saved %s as %s", stored.ID, mime)
	if u.metrics != nil {
		u.metrics.RecordSaved(mime)
	}
	return u.changed(ctx, stored.ID, mime)
}

// deleteRecord writes a tombstone carrying only 001 and 004 with the
// deletion mark, and signals it.
func (u *Updater) deleteRecord(ctx context.Context, rec *domain.MarcRecord, recID string, agencyID int) error {
	exists, err := u.rawRepo.RecordExistsMaybeDeleted(ctx, recID, agencyID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewUpdateError(domain.ErrNotFound, domain.KeyDeleteNotExist, nil, recID, agencyID)
	}

	tombstone := &domain.MarcRecord{}
	for _, f := range rec.Fields {
		if f.Name == domain.FieldID || f.Name == domain.FieldStatus {
			tombstone.Append(f.Clone())
		}
	}
	tombstone.AddOrReplaceSubfield(domain.FieldID, domain.SubfieldRecordID, recID)
	tombstone.AddOrReplaceSubfield(domain.FieldID, domain.SubfieldAgencyID, fmt.Sprint(agencyID))
	tombstone.AddOrReplaceSubfield(domain.FieldStatus, domain.SubfieldStatus, domain.StatusDeleted)

	content, err := u.rawRepo.Encode(tombstone)
	if err != nil {
		return err
	}

	stored, err := u.rawRepo.FetchRecord(ctx, recID, agencyID)
	if err != nil {
		return err
	}
	if stored.MimeType == "" {
		if stored.MimeType, err = u.mimeTypeForRecord(ctx, recID, agencyID); err != nil {
			return err
		}
	}
	stored.Content = content
	stored.Deleted = true

	if err := u.rawRepo.SaveRecord(ctx, stored, ""); err != nil {
		return err
	}
	logger.Info("deleted %s", stored.ID)
	if u.metrics != nil {
		u.metrics.RecordDeleted(stored.MimeType)
	}
	return u.changed(ctx, stored.ID, stored.MimeType)
}

// enqueueRecord signals an existing record without rewriting it.
func (u *Updater) enqueueRecord(ctx context.Context, recID string, agencyID int) error {
	stored, err := u.rawRepo.FetchRecord(ctx, recID, agencyID)
	if err != nil {
		return err
	}
	mime := stored.MimeType
	if mime == "" {
		if mime, err = u.mimeTypeForRecord(ctx, recID, agencyID); err != nil {
			return err
		}
	}
	return u.changed(ctx, stored.ID, mime)
}

func (u *Updater) changed(ctx context.Context, id domain.RecordID, mime domain.MimeType) error {
	if err := u.rawRepo.ChangedRecord(ctx, u.provider, id, mime); err != nil {
		return err
	}
	logger.Debug("enqueued %s", id)
	if u.metrics != nil {
		u.metrics.RecordEnqueued()
	}
	return nil
}

func (u *Updater) mimeTypeForRecord(ctx context.Context, recID string, agencyID int) (domain.MimeType, error) {
	if agencyID == domain.CommonAgency {
		return domain.MimeMarcXchange, nil
	}
	commonExists, err := u.rawRepo.RecordExists(ctx, recID, domain.CommonAgency)
	if err != nil {
		return "", err
	}
	if commonExists {
		return domain.MimeEnrichment, nil
	}
	return domain.MimeDecentral, nil
}

// failureKind classifies an update result for metrics.
func failureKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNilRecord):
		return "nil_record"
	case errors.Is(err, domain.ErrInvalidAgency):
		return "invalid_agency"
	case errors.Is(err, domain.ErrStructuralConflict):
		return "structural"
	case errors.Is(err, domain.ErrReferentialIntegrity):
		return "referential"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEncoding):
		return "encoding"
	default:
		return "error"
	}
}
