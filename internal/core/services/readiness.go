package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
)

// Ensure Readiness implements the interface.
var _ driving.ReadinessService = (*Readiness)(nil)

// Readiness owns the warmed-up state of the service.
// Warmup runs its checks once; after a failure it can be retried.
type Readiness struct {
	rawRepo *RawRepo
	rules   driven.RuleHost

	mu    sync.Mutex
	ready atomic.Bool
}

// NewReadiness creates a readiness probe over the repository and rule host.
// rules is optional.
func NewReadiness(rawRepo *RawRepo, rules driven.RuleHost) *Readiness {
	return &Readiness{rawRepo: rawRepo, rules: rules}
}

// Warmup pings the store, round-trips a probe record through the codec and
// runs the probe through the rule host.
// Calling it again after success is a no-op.
func (r *Readiness) Warmup(ctx context.Context) error {
	if r.ready.Load() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready.Load() {
		return nil
	}

	if err := r.rawRepo.Ping(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}

	probe := &domain.MarcRecord{Fields: []domain.Field{
		domain.NewField(domain.FieldID, "00",
			domain.Subfield{Name: domain.SubfieldRecordID, Value: "warmup"},
			domain.Subfield{Name: domain.SubfieldAgencyID, Value: fmt.Sprint(domain.CommonAgency)}),
	}}
	content, err := r.rawRepo.Encode(probe)
	if err != nil {
		return fmt.Errorf("encode probe: %w", err)
	}
	decoded, err := r.rawRepo.Decode(content)
	if err != nil {
		return fmt.Errorf("decode probe: %w", err)
	}
	if decoded.RecordID() != probe.RecordID() {
		return fmt.Errorf("codec round trip: got %q: %w", decoded.RecordID(), domain.ErrEncoding)
	}

	if r.rules != nil {
		split, err := r.rules.SplitForStorage(probe, "", "")
		if err != nil {
			return fmt.Errorf("split probe: %w", err)
		}
		if len(split) == 0 {
			return fmt.Errorf("split probe: no records: %w", domain.ErrInvalidInput)
		}
	}

	r.ready.Store(true)
	return nil
}

// Ready returns nil once warm-up has succeeded.
func (r *Readiness) Ready(_ context.Context) error {
	if !r.ready.Load() {
		return domain.ErrNotReady
	}
	return nil
}
