// Package domain defines the core business entities for tillsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types of the offline-sync core:
//
//   - PendingSale: A sale recorded locally while the register was offline
//   - CachedProduct: A snapshot of a remote product, partitioned by shop
//   - QueueItem: One outstanding operation awaiting replay
//   - DeadLetter: A queue item dropped after exhausting its attempts
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, github.com/shopspring/decimal for money
//   - Cannot Import: Any internal/ package, any other external dependency
package domain
