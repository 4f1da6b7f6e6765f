package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a replay pass is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// Offline Errors.

	// ErrOffline indicates the operation needs connectivity and the register is offline.
	ErrOffline = errors.New("offline")

	// ErrStorageUnavailable indicates the durable store could not be opened.
	// The register runs memory-only without offline support.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrEnqueueFailed indicates the queue write failed after the pending
	// entity was stored. The entity exists but will not sync on its own.
	ErrEnqueueFailed = errors.New("enqueue failed")

	// ErrReplayFailed indicates the remote API rejected or never received
	// a replayed operation. Transient and permanent failures are not distinguished.
	ErrReplayFailed = errors.New("replay failed")

	// ErrRemoteUnreachable indicates the remote API could not be reached at
	// the transport level. The request may be retried offline.
	ErrRemoteUnreachable = errors.New("remote unreachable")

	// ErrNoReplayHandler indicates a queued operation has no registered handler.
	ErrNoReplayHandler = errors.New("no replay handler")
)
