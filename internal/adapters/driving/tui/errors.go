package tui

import "errors"

// ErrMissingOfflineService is returned when the offline service is not provided.
var ErrMissingOfflineService = errors.New("tui: offline service is required")
