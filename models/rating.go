package models

import "time"

// Rating is one user rating for a completed run. Ratings are append-only and
// are accepted even when the run identifier is not recognized.
type Rating struct {
	RunID     string    `json:"run_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
