package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunStartsInNewState(t *testing.T) {
	run := NewRun("user-1", 10)

	assert.Equal(t, RunStatusNew, run.Status)
	assert.Equal(t, "user-1", run.UserID)
	assert.Equal(t, 10, run.RequestedCount)
	assert.Nil(t, run.FinishedAt)
	assert.False(t, run.StartedAt.IsZero())
}

func TestRunTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    RunStatus
		to      RunStatus
		wantErr bool
	}{
		{"new to processing", RunStatusNew, RunStatusProcessing, false},
		{"processing to completed", RunStatusProcessing, RunStatusCompleted, false},
		{"processing to failed", RunStatusProcessing, RunStatusFailed, false},
		{"new to completed skips processing", RunStatusNew, RunStatusCompleted, true},
		{"new to failed skips processing", RunStatusNew, RunStatusFailed, true},
		{"completed is terminal", RunStatusCompleted, RunStatusProcessing, true},
		{"failed is terminal", RunStatusFailed, RunStatusProcessing, true},
		{"completed cannot fail", RunStatusCompleted, RunStatusFailed, true},
		{"failed cannot complete", RunStatusFailed, RunStatusCompleted, true},
		{"no self transition", RunStatusProcessing, RunStatusProcessing, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &Run{Status: tt.from}
			err := run.TransitionTo(tt.to)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.from, run.Status, "status must not change on rejected transition")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, run.Status)
			}
		})
	}
}

func TestRunFinishStampsTimeAndError(t *testing.T) {
	run := NewRun("user-1", 5)
	require.NoError(t, run.TransitionTo(RunStatusProcessing))

	require.NoError(t, run.Finish(RunStatusCompleted, "Labeling error: quota exceeded"))

	assert.Equal(t, RunStatusCompleted, run.Status)
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, "Labeling error: quota exceeded", run.Error)
}

func TestRunFinishRejectedFromNew(t *testing.T) {
	run := NewRun("user-1", 5)

	err := run.Finish(RunStatusCompleted, "")

	assert.Error(t, err)
	assert.Nil(t, run.FinishedAt)
}
