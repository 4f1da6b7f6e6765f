package connectivity

import (
	"fmt"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
)

// New creates the source selected by cfg. Manual sources start online.
func New(cfg domain.ConnectivitySettings) (driven.ConnectivitySource, error) {
	switch cfg.Source {
	case domain.ConnectivityNoop, "":
		return NewNoop(), nil
	case domain.ConnectivityManual:
		return NewManual(true), nil
	case domain.ConnectivityFile:
		if cfg.StatusFile == "" {
			return nil, fmt.Errorf("%w: connectivity.status_file is required for the file source", domain.ErrInvalidInput)
		}
		return NewFileSource(cfg.StatusFile), nil
	default:
		return nil, fmt.Errorf("%w: unknown connectivity source %q", domain.ErrInvalidInput, cfg.Source)
	}
}
