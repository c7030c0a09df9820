package driving

import "context"

// ReadinessService reports whether the service is warmed up.
type ReadinessService interface {
	// Ready returns nil once warm-up has succeeded, domain.ErrNotReady otherwise.
	Ready(ctx context.Context) error
}
