package apimodel

import "fmt"

// JobStatus is the payload the sync process pushes to the panel: a job
// title, a one-line status message and an optional completion fraction.
type JobStatus struct {
	Title    string   `json:"title" yaml:"title"`
	Message  string   `json:"message" yaml:"message"`
	Progress *float64 `json:"progress,omitempty" yaml:"progress,omitempty"`
}

// Check validates the payload. Progress, when present, is a fraction.
func (s *JobStatus) Check() error {
	if s.Title == "" {
		return fmt.Errorf("title is required")
	}
	if s.Progress != nil && (*s.Progress < 0 || *s.Progress > 1) {
		return fmt.Errorf("progress %g outside [0,1]", *s.Progress)
	}
	return nil
}
