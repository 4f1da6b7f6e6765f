// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - OfflineStore: Durable store (sales, products, sync queue, dead letters)
//   - RemoteAPI: REST backend for sales and products
//   - ConnectivitySource: Online/offline signals
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ReplayLog: Scheduled replay history. Without it, no scheduler runs.
//   - SyncMetrics: Replay counters. Without it, nothing is exported.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
