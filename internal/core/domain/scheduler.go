package domain

import "time"

// DefaultReplayInterval is the gap between periodic replay passes.
const DefaultReplayInterval = 15 * time.Minute

// SchedulerConfig controls the periodic replay pass.
type SchedulerConfig struct {
	// Enabled turns periodic replay on.
	Enabled bool

	// Interval is the gap between the start of one pass and the next.
	Interval time.Duration
}

// DefaultSchedulerConfig returns the scheduler defaults. Periodic replay is
// off: queue items are retried on online transitions and manual triggers only.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{Enabled: false, Interval: DefaultReplayInterval}
}

// ReplaySkip says why a scheduled pass did not touch the queue.
type ReplaySkip string

const (
	// SkipNone means the pass ran.
	SkipNone ReplaySkip = ""
	// SkipOffline means the register was offline.
	SkipOffline ReplaySkip = "offline"
	// SkipBusy means another pass was already running.
	SkipBusy ReplaySkip = "busy"
)

// ReplayRun is the log entry for one scheduled replay pass.
type ReplayRun struct {
	ID        int64      `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   time.Time  `json:"ended_at"`
	Report    SyncReport `json:"report"`
	Skipped   ReplaySkip `json:"skipped,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Succeeded reports whether the pass ran to the end without error.
func (r ReplayRun) Succeeded() bool {
	return r.Error == "" && r.Skipped == SkipNone
}

// NextDue returns when the pass after r should start.
func (r ReplayRun) NextDue(interval time.Duration) time.Time {
	return r.StartedAt.Add(interval)
}
