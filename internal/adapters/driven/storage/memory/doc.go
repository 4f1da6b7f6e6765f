// Package memory provides in-memory implementations of driven port interfaces.
//
// Store is the fallback offline store used when SQLite is unavailable.
// ConfigStore backs settings in tests.
package memory
