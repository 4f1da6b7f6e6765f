package connectivity

import (
	"context"

	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
)

// Ensure Noop implements the interface.
var _ driven.ConnectivitySource = (*Noop)(nil)

// Noop is a source that is always online.
type Noop struct{}

// NewNoop creates a Noop source.
func NewNoop() *Noop {
	return &Noop{}
}

// Online always returns true.
func (n *Noop) Online() bool {
	return true
}

// Watch returns a channel that never carries a value and is closed when
// ctx is done.
func (n *Noop) Watch(ctx context.Context) (<-chan bool, error) {
	ch := make(chan bool)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
