package domain

import (
	"fmt"
	"time"
)

// RunStatus represents the lifecycle state of a cleaning run
type RunStatus string

const (
	RunStatusNew        RunStatus = "NEW"
	RunStatusProcessing RunStatus = "PROCESSING"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
)

// runTransitions is the closed set of legal transitions. A run moves
// monotonically through NEW -> PROCESSING -> (COMPLETED | FAILED) and
// becomes immutable once terminal.
var runTransitions = map[RunStatus][]RunStatus{
	RunStatusNew:        {RunStatusProcessing},
	RunStatusProcessing: {RunStatusCompleted, RunStatusFailed},
}

// Run is one invocation of "clean N emails for user U"
type Run struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	UserID         string     `json:"user_id" gorm:"index;not null"`
	RequestedCount int        `json:"requested_count" gorm:"not null"`
	Status         RunStatus  `json:"status" gorm:"index;not null"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// NewRun creates a run in the NEW state
func NewRun(userID string, requestedCount int) *Run {
	return &Run{
		UserID:         userID,
		RequestedCount: requestedCount,
		Status:         RunStatusNew,
		StartedAt:      time.Now(),
	}
}

// TransitionTo moves the run to the target status, rejecting any
// transition outside the allowed set.
func (r *Run) TransitionTo(target RunStatus) error {
	for _, allowed := range runTransitions[r.Status] {
		if allowed == target {
			r.Status = target
			return nil
		}
	}
	return fmt.Errorf("illegal run transition %s -> %s", r.Status, target)
}

// Finish moves the run to a terminal status and stamps the finish time.
// errText is recorded as-is; a COMPLETED run may carry a non-fatal
// labeling error for diagnostics.
func (r *Run) Finish(target RunStatus, errText string) error {
	if err := r.TransitionTo(target); err != nil {
		return err
	}
	now := time.Now()
	r.FinishedAt = &now
	r.Error = errText
	return nil
}
