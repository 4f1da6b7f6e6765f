// Package mcp provides an MCP (Model Context Protocol) server adapter for tillsync.
// It lets AI assistants inspect the offline sync queue and trigger replays.
package mcp

import "errors"

// ErrMissingOfflineService is returned when the offline service is not provided.
var ErrMissingOfflineService = errors.New("mcp: offline service is required")
