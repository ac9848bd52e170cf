package progress

import (
	"errors"
	"time"
)

// State is the lifecycle of an import job.
type State string

const (
	StateQueued  State = "QUEUED"
	StateRunning State = "RUNNING"
	StateDone    State = "DONE"
	StateFailed  State = "FAILED"
)

// Job is stored as a Redis hash under import:job:<id>.
type Job struct {
	ID         string
	Source     string
	State      State
	Total      int
	Done       int
	Stored     int
	Duplicates int
	Pending    bool
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Finished reports whether the job reached a terminal state.
func (j *Job) Finished() bool {
	return j != nil && (j.State == StateDone || j.State == StateFailed)
}

var ErrJobNotFound = errors.New("import job not found or expired")
