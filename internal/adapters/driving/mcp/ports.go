package mcp

import (
	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Offline exposes the sync queue, replay and status.
	Offline driving.OfflineService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Offline == nil {
		return ErrMissingOfflineService
	}
	return nil
}
