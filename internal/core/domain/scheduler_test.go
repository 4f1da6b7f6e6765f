package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	assert.False(t, config.Enabled)
	assert.Equal(t, 15*time.Minute, config.Interval)
}

func TestReplayRun_Succeeded(t *testing.T) {
	assert.True(t, ReplayRun{}.Succeeded())
	assert.False(t, ReplayRun{Skipped: SkipOffline}.Succeeded())
	assert.False(t, ReplayRun{Error: "disk full"}.Succeeded())
}

func TestReplayRun_NextDue(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	run := ReplayRun{StartedAt: start, EndedAt: start.Add(40 * time.Second)}

	assert.Equal(t, start.Add(5*time.Minute), run.NextDue(5*time.Minute))
}
