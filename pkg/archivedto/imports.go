package archivedto

import "time"

type ImportAccepted struct {
	JobID string `json:"job_id"`
}

type ImportJob struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	State      string    `json:"state"`
	Total      int       `json:"total"`
	Done       int       `json:"done"`
	Stored     int       `json:"stored"`
	Duplicates int       `json:"duplicates"`
	Pending    bool      `json:"pending"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
