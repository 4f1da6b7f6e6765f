// Package tui provides the live terminal monitor for tillsync.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Offline provides status, the queue and manual sync.
	Offline driving.OfflineService
}

// NewPorts creates a Ports aggregate.
func NewPorts(offline driving.OfflineService) *Ports {
	return &Ports{Offline: offline}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Offline == nil {
		return ErrMissingOfflineService
	}
	return nil
}
