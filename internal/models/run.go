package models

import "time"

// Run records one invocation of the reload pipeline.
type Run struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Wallpaper  string       `json:"wallpaper,omitempty"`
	Palette    string       `json:"palette,omitempty"` // background hex, empty when unavailable
	Succeeded  bool         `json:"succeeded"`
	Error      string       `json:"error,omitempty"`
	Steps      []StepResult `json:"steps"`
}

// Counts tallies step outcomes by status.
func (r *Run) Counts() (succeeded, skipped, failed int) {
	for _, step := range r.Steps {
		switch step.Status {
		case StatusSucceeded:
			succeeded++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return succeeded, skipped, failed
}
