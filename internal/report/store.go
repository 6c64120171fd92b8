// Package report defines the structured results of a phase run and an
// in-memory store for looking them up again by run ID.
package report

import (
	"fmt"
	"time"
)

// Version is the schema version of PhaseResult documents.
const Version = 1

// Status is the terminal state of a gate or phase.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Store persists and retrieves phase results.
type Store interface {
	Save(result *PhaseResult) error
	Load(runID string) (*PhaseResult, error)
}

// Highlight is a structured diagnostic extracted from a gate's output.
type Highlight struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
	Tool    string `json:"tool"`
}

// GateResult is the outcome of one gate in a phase run. It is created once
// and not modified after it is appended to PhaseResult.Gates.
type GateResult struct {
	Name       string      `json:"name"`
	Status     Status      `json:"status"`
	Command    string      `json:"command"`
	ExitCode   *int        `json:"exitCode"` // nil for skipped gates
	DurationMs int64       `json:"durationMs"`
	Reason     string      `json:"reason,omitempty"` // set only for skipped gates
	Highlights []Highlight `json:"highlights"`
	LogTail    string      `json:"logTail"`
}

// Failed reports whether the gate ran and failed.
func (g *GateResult) Failed() bool { return g.Status == StatusFail }

// PhaseResult is the outcome of running every gate of a phase.
type PhaseResult struct {
	ID          string       `json:"-"` // run ID, used by Store
	Version     int          `json:"version"`
	Phase       string       `json:"phase"`
	Status      Status       `json:"status"`
	StartedAt   time.Time    `json:"startedAt"`
	DurationMs  int64        `json:"durationMs"`
	FailedGate  string       `json:"failedGate,omitempty"` // first failed gate; empty on pass
	FailedGates []string     `json:"failedGates"`
	Gates       []GateResult `json:"gates"`
}

// Passed reports whether no gate in the phase failed.
func (r *PhaseResult) Passed() bool { return r.Status == StatusPass }

// Gate returns the result for the named gate.
func (r *PhaseResult) Gate(name string) (*GateResult, error) {
	for i := range r.Gates {
		if r.Gates[i].Name == name {
			return &r.Gates[i], nil
		}
	}
	return nil, fmt.Errorf("gate %q is not part of run %s (phase %s)", name, r.ID, r.Phase)
}

// ExitCode returns the process exit code for the phase: 0 on pass, 1 on fail.
func (r *PhaseResult) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}

// IntPtr returns a pointer to n, for GateResult.ExitCode.
func IntPtr(n int) *int { return &n }
