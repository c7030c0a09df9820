package mcp

import (
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
)

// Ports holds the services the MCP server drives.
type Ports struct {
	// Update runs records through the update flow.
	Update driving.UpdateService

	// Records provides read access to stored records. Optional.
	Records driving.RecordService
}

// Validate reports ErrMissingUpdateService unless Update is set.
func (p *Ports) Validate() error {
	if p == nil || p.Update == nil {
		return ErrMissingUpdateService
	}
	return nil
}
