package native

import "time"

// SetNow overrides the clock used for new enrichment records.
func (h *RuleHost) SetNow(now func() time.Time) {
	h.now = now
}
