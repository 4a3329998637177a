// Package models defines the outcome types shared by the theme writers, the
// reload steps and the history store.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the tri-state outcome of a single pipeline step.
type Status string

const (
	// StatusSucceeded means the step changed or reloaded its consumer.
	StatusSucceeded Status = "succeeded"
	// StatusSkipped means the consumer is absent; this is not an error.
	StatusSkipped Status = "skipped"
	// StatusFailed means the consumer is present but the step errored.
	StatusFailed Status = "failed"
)

// ParseStatus converts a stored status string back to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusSucceeded:
		return StatusSucceeded, nil
	case StatusSkipped:
		return StatusSkipped, nil
	case StatusFailed:
		return StatusFailed, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// StepKind separates config writers from process reloads.
type StepKind string

const (
	StepKindWriter StepKind = "writer"
	StepKindReload StepKind = "reload"
)

// StepResult is what every writer and reload step reports.
type StepResult struct {
	Name     string        `json:"name"`
	Kind     StepKind      `json:"kind"`
	Status   Status        `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Succeeded builds a successful result.
func Succeeded(name, reason string) StepResult {
	return StepResult{Name: name, Status: StatusSucceeded, Reason: reason}
}

// Skipped builds a skip result.
func Skipped(name, reason string) StepResult {
	return StepResult{Name: name, Status: StatusSkipped, Reason: reason}
}

// Failed builds a failure result. The reason defaults to err's message.
func Failed(name string, err error, reason string) StepResult {
	if reason == "" && err != nil {
		reason = err.Error()
	}
	return StepResult{Name: name, Status: StatusFailed, Reason: reason, Err: err}
}

// MarshalJSON adds the error text, which the default encoding drops.
func (r StepResult) MarshalJSON() ([]byte, error) {
	type alias StepResult
	out := struct {
		alias
		Error string `json:"error,omitempty"`
	}{alias: alias(r)}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}
