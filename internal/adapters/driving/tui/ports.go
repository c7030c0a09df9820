// Package tui provides an interactive terminal browser for the raw repository.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"errors"

	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
)

// ErrMissingRecordService is returned when the record service is not provided.
var ErrMissingRecordService = errors.New("tui: record service is required")

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Records provides read access to stored records.
	Records driving.RecordService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Records == nil {
		return ErrMissingRecordService
	}
	return nil
}
